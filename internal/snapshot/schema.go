package snapshot

// Entity describes one table of the exportable graph: its name and the
// tables it references through foreign keys. The slice below is the single
// source of truth for what the subsystem covers; adding an entity type means
// adding a row here plus its document entry, nothing is discovered at
// runtime.
type Entity struct {
	Name       string
	Table      string
	References []string
}

// Entities lists the full graph in leaf-to-root order: children precede the
// tables they reference, so iterating forward yields a safe deletion order
// and iterating backward a safe insertion order.
var Entities = []Entity{
	{Name: "audit_log", Table: "audit_log", References: []string{"formularios_envio"}},
	{Name: "otras_actividades", Table: "otras_actividades_academicas", References: []string{"formularios_envio"}},
	{Name: "certificaciones", Table: "certificaciones", References: []string{"formularios_envio"}},
	{Name: "reconocimientos", Table: "reconocimientos", References: []string{"formularios_envio"}},
	{Name: "movilidades", Table: "experiencias_movilidad", References: []string{"formularios_envio"}},
	{Name: "disenos", Table: "disenos_curriculares", References: []string{"formularios_envio"}},
	{Name: "eventos", Table: "eventos_academicos", References: []string{"formularios_envio"}},
	{Name: "publicaciones", Table: "publicaciones", References: []string{"formularios_envio"}},
	{Name: "cursos", Table: "cursos_capacitacion", References: []string{"formularios_envio"}},
	{Name: "notificaciones", Table: "notificaciones_email", References: []string{"maestros_autorizados"}},
	{Name: "formularios", Table: "formularios_envio", References: []string{"formularios_envio"}},
	{Name: "maestros", Table: "maestros_autorizados", References: nil},
}

// DeletionOrder returns the tables in an order that never violates a foreign
// key constraint when clearing the whole graph with plain deletes.
func DeletionOrder() []string {
	tables := make([]string, 0, len(Entities))
	for _, entity := range Entities {
		tables = append(tables, entity.Table)
	}
	return tables
}

// InsertionOrder returns the reverse of DeletionOrder: parents before the
// records that reference them.
func InsertionOrder() []string {
	tables := DeletionOrder()
	for i, j := 0, len(tables)-1; i < j; i, j = i+1, j-1 {
		tables[i], tables[j] = tables[j], tables[i]
	}
	return tables
}

// entityIndex returns the position of a table in the schema, or -1.
func entityIndex(table string) int {
	for i, entity := range Entities {
		if entity.Table == table {
			return i
		}
	}
	return -1
}
