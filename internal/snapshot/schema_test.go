package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeletionOrderChildrenBeforeParents(t *testing.T) {
	for _, entity := range Entities {
		for _, parent := range entity.References {
			if parent == entity.Table {
				continue // self reference (formulario correction chain)
			}
			require.Less(t, entityIndex(entity.Table), entityIndex(parent),
				"%s must be cleared before %s", entity.Table, parent)
		}
	}
}

func TestInsertionOrderIsReverseOfDeletion(t *testing.T) {
	deletion := DeletionOrder()
	insertion := InsertionOrder()
	require.Len(t, insertion, len(deletion))
	for i := range deletion {
		require.Equal(t, deletion[i], insertion[len(insertion)-1-i])
	}
}

func TestSchemaCoversAllTables(t *testing.T) {
	expected := []string{
		"maestros_autorizados", "formularios_envio", "cursos_capacitacion",
		"publicaciones", "eventos_academicos", "disenos_curriculares",
		"experiencias_movilidad", "reconocimientos", "certificaciones",
		"otras_actividades_academicas", "notificaciones_email", "audit_log",
	}
	for _, table := range expected {
		require.GreaterOrEqual(t, entityIndex(table), 0, "schema is missing %s", table)
	}
	require.Len(t, Entities, len(expected))
}
