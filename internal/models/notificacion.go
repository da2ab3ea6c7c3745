package models

import "time"

const (
	// NotificacionEnviada marks an email that was delivered.
	NotificacionEnviada = "ENVIADO"
	// NotificacionError marks an email that failed to deliver.
	NotificacionError = "ERROR"
	// NotificacionPendiente marks an email queued for delivery.
	NotificacionPendiente = "PENDIENTE"
)

// NotificacionEmail records an email sent to a teacher about an academic
// period. It always belongs to exactly one Maestro.
type NotificacionEmail struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	MaestroID        uint      `gorm:"not null;index" json:"maestro_id"`
	TipoNotificacion string    `gorm:"size:100;not null" json:"tipo_notificacion"`
	Asunto           string    `gorm:"size:500;not null" json:"asunto"`
	Mensaje          string    `gorm:"type:text;not null" json:"mensaje"`
	FechaEnvio       time.Time `json:"fecha_envio"`
	Estado           string    `gorm:"size:50;not null;default:ENVIADO" json:"estado"`
	PeriodoAcademico string    `gorm:"size:100" json:"periodo_academico"`

	Maestro Maestro `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// TableName keeps the historical table name used by the reporting portal.
func (NotificacionEmail) TableName() string {
	return "notificaciones_email"
}
