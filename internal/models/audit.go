package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is an immutable record of an administrative action over a
// submission. Audit entries are exported on request but never restored; a
// fresh database starts with an empty audit trail.
type AuditLog struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	FormularioID *uint             `gorm:"index" json:"formulario_id"`
	Accion       string            `gorm:"size:100;not null" json:"accion"`
	Usuario      *string           `gorm:"size:255" json:"usuario"`
	Fecha        time.Time         `json:"fecha"`
	Comentario   string            `gorm:"type:text" json:"comentario"`
	Detalle      datatypes.JSONMap `gorm:"type:json" json:"detalle"`
}

// TableName keeps the historical table name used by the reporting portal.
func (AuditLog) TableName() string {
	return "audit_log"
}
