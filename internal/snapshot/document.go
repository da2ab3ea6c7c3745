// Package snapshot defines the portable backup document for the reporting
// portal and the pure logic needed to validate and restore it: the entity
// schema, the reference validator, the identifier remapper and the deletion
// planner. Nothing in this package touches a database.
package snapshot

import "time"

// Version is the snapshot schema version this build reads and writes.
const Version = "1.0"

// SupportedVersions lists every snapshot schema version a restore accepts.
var SupportedVersions = []string{Version}

// Timestamp layouts accepted when parsing snapshot date fields. Export always
// writes RFC 3339; older hand-edited files sometimes carry bare dates.
const (
	DateTimeLayout = time.RFC3339
	DateLayout     = "2006-01-02"
)

// Document is the self-describing snapshot of the full exportable graph.
// Every date is an ISO-8601 string and every enumerated value its canonical
// tag, so the file stays human-readable and engine-independent. AuditLogs is
// a pointer: a nil value means audit data was deliberately not captured, an
// empty non-nil slice means it was captured and there were no entries.
type Document struct {
	ExportDate     string              `json:"export_date"`
	Version        string              `json:"version"`
	Maestros       []MaestroEntry      `json:"maestros_autorizados"`
	Formularios    []FormularioEntry   `json:"formularios"`
	Notificaciones []NotificacionEntry `json:"notificaciones"`
	AuditLogs      *[]AuditLogEntry    `json:"audit_logs,omitempty"`
}

// MaestroEntry is one authorized teacher in the snapshot. The validate tags
// drive the per-record structural check during restore.
type MaestroEntry struct {
	ID                  uint   `json:"id"`
	NombreCompleto      string `json:"nombre_completo" validate:"required"`
	CorreoInstitucional string `json:"correo_institucional" validate:"required,email"`
	Activo              bool   `json:"activo"`
	FechaCreacion       string `json:"fecha_creacion"`
	FechaActualizacion  string `json:"fecha_actualizacion"`
}

// FormularioEntry is one submission with all of its activity records.
type FormularioEntry struct {
	ID                   uint    `json:"id"`
	NombreCompleto       string  `json:"nombre_completo" validate:"required"`
	CorreoInstitucional  string  `json:"correo_institucional" validate:"required,email"`
	AnioAcademico        int     `json:"año_academico" validate:"required"`
	Trimestre            string  `json:"trimestre" validate:"required"`
	FechaEnvio           string  `json:"fecha_envio"`
	Estado               string  `json:"estado"`
	FechaRevision        *string `json:"fecha_revision"`
	RevisadoPor          *string `json:"revisado_por"`
	EsVersionActiva      bool    `json:"es_version_activa"`
	Version              int     `json:"version"`
	TokenCorreccion      *string `json:"token_correccion"`
	FormularioOriginalID *uint   `json:"formulario_original_id"`

	Cursos           []CursoEntry          `json:"cursos"`
	Publicaciones    []PublicacionEntry    `json:"publicaciones"`
	Eventos          []EventoEntry         `json:"eventos"`
	Disenos          []DisenoEntry         `json:"disenos"`
	Movilidades      []MovilidadEntry      `json:"movilidades"`
	Reconocimientos  []ReconocimientoEntry `json:"reconocimientos"`
	Certificaciones  []CertificacionEntry  `json:"certificaciones"`
	OtrasActividades []OtraActividadEntry  `json:"otras_actividades"`
}

// CursoEntry is a training course inside a FormularioEntry.
type CursoEntry struct {
	FormularioID uint   `json:"formulario_id"`
	NombreCurso  string `json:"nombre_curso"`
	Fecha        string `json:"fecha"`
	Horas        int    `json:"horas"`
}

// PublicacionEntry is a publication inside a FormularioEntry.
type PublicacionEntry struct {
	FormularioID  uint   `json:"formulario_id"`
	Autores       string `json:"autores"`
	Titulo        string `json:"titulo"`
	EventoRevista string `json:"evento_revista"`
	Estatus       string `json:"estatus"`
}

// EventoEntry is an academic event inside a FormularioEntry.
type EventoEntry struct {
	FormularioID      uint   `json:"formulario_id"`
	NombreEvento      string `json:"nombre_evento"`
	Fecha             string `json:"fecha"`
	TipoParticipacion string `json:"tipo_participacion"`
}

// DisenoEntry is a curriculum design inside a FormularioEntry.
type DisenoEntry struct {
	FormularioID uint   `json:"formulario_id"`
	NombreCurso  string `json:"nombre_curso"`
	Descripcion  string `json:"descripcion"`
}

// MovilidadEntry is a mobility experience inside a FormularioEntry.
type MovilidadEntry struct {
	FormularioID uint   `json:"formulario_id"`
	Descripcion  string `json:"descripcion"`
	Tipo         string `json:"tipo"`
	Fecha        string `json:"fecha"`
}

// ReconocimientoEntry is a recognition inside a FormularioEntry.
type ReconocimientoEntry struct {
	FormularioID uint   `json:"formulario_id"`
	Nombre       string `json:"nombre"`
	Tipo         string `json:"tipo"`
	Fecha        string `json:"fecha"`
}

// CertificacionEntry is a certification inside a FormularioEntry.
type CertificacionEntry struct {
	FormularioID     uint    `json:"formulario_id"`
	Nombre           string  `json:"nombre"`
	FechaObtencion   string  `json:"fecha_obtencion"`
	FechaVencimiento *string `json:"fecha_vencimiento"`
	Vigente          bool    `json:"vigente"`
}

// OtraActividadEntry is a free-form activity inside a FormularioEntry.
type OtraActividadEntry struct {
	FormularioID  uint    `json:"formulario_id"`
	Categoria     string  `json:"categoria"`
	Titulo        string  `json:"titulo"`
	Descripcion   string  `json:"descripcion"`
	Fecha         *string `json:"fecha"`
	Cantidad      *int    `json:"cantidad"`
	Observaciones string  `json:"observaciones"`
}

// NotificacionEntry is one email notification in the snapshot. MaestroID
// refers to the teacher's id in the source database; restore re-links it
// through the teacher's institutional email.
type NotificacionEntry struct {
	MaestroID        uint   `json:"maestro_id"`
	TipoNotificacion string `json:"tipo_notificacion" validate:"required"`
	Asunto           string `json:"asunto" validate:"required"`
	Mensaje          string `json:"mensaje"`
	FechaEnvio       string `json:"fecha_envio"`
	Estado           string `json:"estado"`
	PeriodoAcademico string `json:"periodo_academico"`
}

// AuditLogEntry is one audit record in the snapshot. Informational only;
// restore never reinserts audit entries.
type AuditLogEntry struct {
	FormularioID *uint   `json:"formulario_id"`
	Accion       string  `json:"accion"`
	Usuario      *string `json:"usuario"`
	Fecha        string  `json:"fecha"`
	Comentario   string  `json:"comentario"`
}

// ParseTime parses a snapshot date field, accepting an RFC 3339 timestamp or
// a bare ISO date.
func ParseTime(value string) (time.Time, error) {
	if t, err := time.Parse(DateTimeLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(DateLayout, value)
}

// FormatTime renders a timestamp the way export writes it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}

// IsVersionSupported reports whether a restore may proceed with the given
// snapshot schema version.
func IsVersionSupported(version string) bool {
	for _, v := range SupportedVersions {
		if version == v {
			return true
		}
	}
	return false
}
