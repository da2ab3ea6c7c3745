package models

import "time"

const (
	// EstadoPendiente marks a submission awaiting administrative review.
	EstadoPendiente = "PENDIENTE"
	// EstadoAprobado marks a submission accepted by a reviewer.
	EstadoAprobado = "APROBADO"
	// EstadoRechazado marks a submission rejected by a reviewer.
	EstadoRechazado = "RECHAZADO"
)

const (
	// EstatusPublicacionAceptado marks a publication accepted for publishing.
	EstatusPublicacionAceptado = "ACEPTADO"
	// EstatusPublicacionEnRevision marks a publication under editorial review.
	EstatusPublicacionEnRevision = "EN_REVISION"
	// EstatusPublicacionPublicado marks a publication already published.
	EstatusPublicacionPublicado = "PUBLICADO"
	// EstatusPublicacionRechazado marks a publication rejected by the venue.
	EstatusPublicacionRechazado = "RECHAZADO"
)

const (
	// TipoParticipacionOrganizador marks event participation as organizer.
	TipoParticipacionOrganizador = "ORGANIZADOR"
	// TipoParticipacionParticipante marks event participation as attendee.
	TipoParticipacionParticipante = "PARTICIPANTE"
	// TipoParticipacionPonente marks event participation as speaker.
	TipoParticipacionPonente = "PONENTE"
)

const (
	// TipoMovilidadNacional marks a mobility experience within the country.
	TipoMovilidadNacional = "NACIONAL"
	// TipoMovilidadInternacional marks a mobility experience abroad.
	TipoMovilidadInternacional = "INTERNACIONAL"
)

const (
	// TipoReconocimientoGrado marks an academic degree recognition.
	TipoReconocimientoGrado = "GRADO"
	// TipoReconocimientoPremio marks an award.
	TipoReconocimientoPremio = "PREMIO"
	// TipoReconocimientoDistincion marks a distinction.
	TipoReconocimientoDistincion = "DISTINCION"
)

// EstadosFormulario lists the canonical review states for a submission.
var EstadosFormulario = []string{EstadoPendiente, EstadoAprobado, EstadoRechazado}

// Formulario is one teacher's activity report for one academic term. It owns
// every activity record attached to it; older versions of the same report stay
// in the table with EsVersionActiva unset.
type Formulario struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	NombreCompleto       string     `gorm:"size:255;not null" json:"nombre_completo"`
	CorreoInstitucional  string     `gorm:"size:255;not null;index" json:"correo_institucional"`
	AnioAcademico        int        `gorm:"column:año_academico;not null" json:"año_academico"`
	Trimestre            string     `gorm:"size:50;not null" json:"trimestre"`
	Estado               string     `gorm:"size:32;not null;default:PENDIENTE" json:"estado"`
	FechaEnvio           time.Time  `json:"fecha_envio"`
	FechaRevision        *time.Time `json:"fecha_revision"`
	RevisadoPor          *string    `gorm:"size:255" json:"revisado_por"`
	FormularioOriginalID *uint      `json:"formulario_original_id"`
	Version              int        `gorm:"not null;default:1" json:"version"`
	TokenCorreccion      *string    `gorm:"size:255;uniqueIndex" json:"token_correccion"`
	// No column default: GORM omits fields with defaults from INSERT when
	// the value is the zero value, which would flip false to true.
	EsVersionActiva bool `gorm:"not null" json:"es_version_activa"`

	Cursos           []CursoCapacitacion    `gorm:"foreignKey:FormularioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"cursos"`
	Publicaciones    []Publicacion          `gorm:"foreignKey:FormularioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"publicaciones"`
	Eventos          []EventoAcademico      `gorm:"foreignKey:FormularioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"eventos"`
	Disenos          []DisenoCurricular     `gorm:"foreignKey:FormularioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"disenos"`
	Movilidades      []ExperienciaMovilidad `gorm:"foreignKey:FormularioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"movilidades"`
	Reconocimientos  []Reconocimiento       `gorm:"foreignKey:FormularioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"reconocimientos"`
	Certificaciones  []Certificacion        `gorm:"foreignKey:FormularioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"certificaciones"`
	OtrasActividades []OtraActividad        `gorm:"foreignKey:FormularioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"otras_actividades"`
}

// TableName keeps the historical table name used by the reporting portal.
func (Formulario) TableName() string {
	return "formularios_envio"
}

// EsEstadoValido reports whether the given review state is one of the
// canonical tags.
func EsEstadoValido(estado string) bool {
	for _, valid := range EstadosFormulario {
		if estado == valid {
			return true
		}
	}
	return false
}

// CursoCapacitacion is a training course reported in a submission.
type CursoCapacitacion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FormularioID uint      `gorm:"not null;index" json:"formulario_id"`
	NombreCurso  string    `gorm:"size:500;not null" json:"nombre_curso"`
	Fecha        time.Time `json:"fecha"`
	Horas        int       `gorm:"not null" json:"horas"`
}

// TableName keeps the historical table name used by the reporting portal.
func (CursoCapacitacion) TableName() string {
	return "cursos_capacitacion"
}

// Publicacion is an academic publication reported in a submission.
type Publicacion struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	FormularioID  uint   `gorm:"not null;index" json:"formulario_id"`
	Autores       string `gorm:"type:text;not null" json:"autores"`
	Titulo        string `gorm:"type:text;not null" json:"titulo"`
	EventoRevista string `gorm:"size:500;not null" json:"evento_revista"`
	Estatus       string `gorm:"size:32;not null" json:"estatus"`
}

// TableName keeps the historical table name used by the reporting portal.
func (Publicacion) TableName() string {
	return "publicaciones"
}

// EventoAcademico is an academic event attended or organized by the teacher.
type EventoAcademico struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	FormularioID      uint      `gorm:"not null;index" json:"formulario_id"`
	NombreEvento      string    `gorm:"size:500;not null" json:"nombre_evento"`
	Fecha             time.Time `json:"fecha"`
	TipoParticipacion string    `gorm:"size:32;not null" json:"tipo_participacion"`
}

// TableName keeps the historical table name used by the reporting portal.
func (EventoAcademico) TableName() string {
	return "eventos_academicos"
}

// DisenoCurricular is a curriculum design product reported in a submission.
type DisenoCurricular struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	FormularioID uint   `gorm:"not null;index" json:"formulario_id"`
	NombreCurso  string `gorm:"size:500;not null" json:"nombre_curso"`
	Descripcion  string `gorm:"type:text" json:"descripcion"`
}

// TableName keeps the historical table name used by the reporting portal.
func (DisenoCurricular) TableName() string {
	return "disenos_curriculares"
}

// ExperienciaMovilidad is a national or international mobility experience.
type ExperienciaMovilidad struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FormularioID uint      `gorm:"not null;index" json:"formulario_id"`
	Descripcion  string    `gorm:"type:text;not null" json:"descripcion"`
	Tipo         string    `gorm:"size:32;not null" json:"tipo"`
	Fecha        time.Time `json:"fecha"`
}

// TableName keeps the historical table name used by the reporting portal.
func (ExperienciaMovilidad) TableName() string {
	return "experiencias_movilidad"
}

// Reconocimiento is a degree, award or distinction reported in a submission.
type Reconocimiento struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FormularioID uint      `gorm:"not null;index" json:"formulario_id"`
	Nombre       string    `gorm:"size:500;not null" json:"nombre"`
	Tipo         string    `gorm:"size:32;not null" json:"tipo"`
	Fecha        time.Time `json:"fecha"`
}

// TableName keeps the historical table name used by the reporting portal.
func (Reconocimiento) TableName() string {
	return "reconocimientos"
}

// Certificacion is a professional certification reported in a submission.
type Certificacion struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	FormularioID     uint       `gorm:"not null;index" json:"formulario_id"`
	Nombre           string     `gorm:"size:500;not null" json:"nombre"`
	FechaObtencion   time.Time  `json:"fecha_obtencion"`
	FechaVencimiento *time.Time `json:"fecha_vencimiento"`
	Vigente          bool       `gorm:"not null" json:"vigente"`
}

// TableName keeps the historical table name used by the reporting portal.
func (Certificacion) TableName() string {
	return "certificaciones"
}

// OtraActividad is a free-form academic activity that does not fit the seven
// fixed categories. Added in schema version 1.0 of the snapshot format.
type OtraActividad struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	FormularioID  uint       `gorm:"not null;index" json:"formulario_id"`
	Categoria     string     `gorm:"size:255;not null" json:"categoria"`
	Titulo        string     `gorm:"size:500;not null" json:"titulo"`
	Descripcion   string     `gorm:"type:text" json:"descripcion"`
	Fecha         *time.Time `json:"fecha"`
	Cantidad      *int       `json:"cantidad"`
	Observaciones string     `gorm:"type:text" json:"observaciones"`
}

// TableName keeps the historical table name used by the reporting portal.
func (OtraActividad) TableName() string {
	return "otras_actividades_academicas"
}
