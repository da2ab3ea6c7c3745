package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/reportes-go-api/internal/models"
	"github.com/noah-isme/reportes-go-api/internal/snapshot"
)

// SnapshotRepository handles the bulk reads and writes behind backup export
// and restore. Export reads the full graph; restore clears the destination
// and reinserts record by record so one bad row never aborts the pass.
type SnapshotRepository interface {
	ListMaestrosActivos(ctx context.Context) ([]models.Maestro, error)
	ListFormularios(ctx context.Context) ([]models.Formulario, error)
	ListNotificacionesDeMaestrosActivos(ctx context.Context) ([]models.NotificacionEmail, error)
	ListAuditLogs(ctx context.Context) ([]models.AuditLog, error)

	// CountRows sums the rows of every snapshot table. A zero count lets a
	// restore skip the deletion phase entirely.
	CountRows(ctx context.Context) (int64, error)

	// ExecuteDeletePlan clears every snapshot table and returns the strategy
	// that actually completed. A bulk-cascade plan that the engine rejects is
	// rolled back and retried with the ordered fallback.
	ExecuteDeletePlan(ctx context.Context, plan snapshot.DeletePlan) (snapshot.Strategy, error)

	// InsertMaestro upserts on the institutional email so a later record
	// with the same email overwrites the earlier one. The struct's ID is set
	// to the surviving row either way.
	InsertMaestro(ctx context.Context, maestro *models.Maestro) error
	InsertFormulario(ctx context.Context, formulario *models.Formulario) error
	InsertNotificacion(ctx context.Context, notificacion *models.NotificacionEmail) error

	// LinkFormularioOriginal re-points a restored submission at the
	// destination id of the submission it corrects.
	LinkFormularioOriginal(ctx context.Context, formularioID, originalID uint) error

	// DialectName exposes the GORM dialect so callers can plan deletion.
	DialectName() string
}

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository constructs a repository backed by GORM.
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) ListMaestrosActivos(ctx context.Context) ([]models.Maestro, error) {
	var maestros []models.Maestro
	if err := r.db.WithContext(ctx).
		Where("activo = ?", true).
		Order("id").
		Find(&maestros).Error; err != nil {
		return nil, err
	}
	return maestros, nil
}

func (r *snapshotRepository) ListFormularios(ctx context.Context) ([]models.Formulario, error) {
	var formularios []models.Formulario
	if err := r.db.WithContext(ctx).
		Preload("Cursos").
		Preload("Publicaciones").
		Preload("Eventos").
		Preload("Disenos").
		Preload("Movilidades").
		Preload("Reconocimientos").
		Preload("Certificaciones").
		Preload("OtrasActividades").
		Order("id").
		Find(&formularios).Error; err != nil {
		return nil, err
	}
	return formularios, nil
}

func (r *snapshotRepository) ListNotificacionesDeMaestrosActivos(ctx context.Context) ([]models.NotificacionEmail, error) {
	var notificaciones []models.NotificacionEmail
	if err := r.db.WithContext(ctx).
		Joins("JOIN maestros_autorizados ON maestros_autorizados.id = notificaciones_email.maestro_id").
		Where("maestros_autorizados.activo = ?", true).
		Order("notificaciones_email.id").
		Find(&notificaciones).Error; err != nil {
		return nil, err
	}
	return notificaciones, nil
}

func (r *snapshotRepository) ListAuditLogs(ctx context.Context) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := r.db.WithContext(ctx).Order("id").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *snapshotRepository) CountRows(ctx context.Context) (int64, error) {
	var total int64
	for _, table := range snapshot.DeletionOrder() {
		var count int64
		if err := r.db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

func (r *snapshotRepository) ExecuteDeletePlan(ctx context.Context, plan snapshot.DeletePlan) (snapshot.Strategy, error) {
	if err := r.runDeletePlan(ctx, plan); err != nil {
		if plan.Strategy != snapshot.StrategyBulkCascade {
			return plan.Strategy, err
		}
		fallback := plan.Fallback()
		if err := r.runDeletePlan(ctx, fallback); err != nil {
			return fallback.Strategy, err
		}
		return fallback.Strategy, nil
	}
	return plan.Strategy, nil
}

func (r *snapshotRepository) runDeletePlan(ctx context.Context, plan snapshot.DeletePlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, step := range plan.Steps {
			var stmt string
			switch plan.Strategy {
			case snapshot.StrategyBulkCascade:
				stmt = fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", step.Table)
			default:
				stmt = fmt.Sprintf("DELETE FROM %s", step.Table)
			}
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("clearing %s: %w", step.Table, err)
			}
		}
		return nil
	})
}

func (r *snapshotRepository) InsertMaestro(ctx context.Context, maestro *models.Maestro) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "correo_institucional"}},
		DoUpdates: clause.AssignmentColumns([]string{"nombre_completo", "activo", "fecha_creacion", "fecha_actualizacion"}),
	}).Create(maestro).Error; err != nil {
		return err
	}

	// The conflict path does not report the surviving row id; read it back.
	var row models.Maestro
	if err := r.db.WithContext(ctx).
		Where("correo_institucional = ?", maestro.CorreoInstitucional).
		First(&row).Error; err != nil {
		return err
	}
	maestro.ID = row.ID
	return nil
}

func (r *snapshotRepository) InsertFormulario(ctx context.Context, formulario *models.Formulario) error {
	return r.db.WithContext(ctx).Create(formulario).Error
}

func (r *snapshotRepository) InsertNotificacion(ctx context.Context, notificacion *models.NotificacionEmail) error {
	return r.db.WithContext(ctx).Create(notificacion).Error
}

func (r *snapshotRepository) LinkFormularioOriginal(ctx context.Context, formularioID, originalID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Formulario{}).
		Where("id = ?", formularioID).
		Update("formulario_original_id", originalID).Error
}

func (r *snapshotRepository) DialectName() string {
	return r.db.Dialector.Name()
}
