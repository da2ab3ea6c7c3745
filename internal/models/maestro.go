package models

import "time"

// Maestro represents an authorized teacher who may submit activity reports.
// The institutional email is the natural key used to re-link restored data
// across database instances.
type Maestro struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	NombreCompleto      string    `gorm:"size:255;not null" json:"nombre_completo"`
	CorreoInstitucional string    `gorm:"size:255;uniqueIndex;not null" json:"correo_institucional"`
	Activo              bool      `gorm:"not null" json:"activo"`
	CreatedAt           time.Time `gorm:"column:fecha_creacion" json:"fecha_creacion"`
	UpdatedAt           time.Time `gorm:"column:fecha_actualizacion" json:"fecha_actualizacion"`
}

// TableName keeps the historical table name used by the reporting portal.
func (Maestro) TableName() string {
	return "maestros_autorizados"
}
