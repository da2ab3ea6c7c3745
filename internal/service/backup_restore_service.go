package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/reportes-go-api/internal/dto"
	"github.com/noah-isme/reportes-go-api/internal/events"
	"github.com/noah-isme/reportes-go-api/internal/models"
	"github.com/noah-isme/reportes-go-api/internal/observability"
	"github.com/noah-isme/reportes-go-api/internal/repository"
	"github.com/noah-isme/reportes-go-api/internal/snapshot"
)

// Restore phases in execution order. A restore that fails mid-pass reports
// the phase it was in; earlier phases stay committed.
const (
	PhaseValidating              = "validating"
	PhaseDeleting                = "deleting"
	PhaseInsertingMaestros       = "inserting_maestros"
	PhaseInsertingFormularios    = "inserting_formularios"
	PhaseInsertingNotificaciones = "inserting_notificaciones"
	PhaseDone                    = "done"
)

// BackupRestoreService replaces the full database contents with a snapshot
// document. Validation failures reject the document before anything is
// written; after deletion starts, individual bad records are skipped and
// reported rather than aborting the pass.
type BackupRestoreService interface {
	Restore(ctx context.Context, raw []byte) (dto.RestoreResultResponse, error)
}

type backupRestoreService struct {
	repo      repository.SnapshotRepository
	publisher events.Publisher
	status    BackupStatusService
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewBackupRestoreService constructs a restore service.
func NewBackupRestoreService(repo repository.SnapshotRepository, publisher events.Publisher, status BackupStatusService, logger zerolog.Logger) BackupRestoreService {
	return &backupRestoreService{
		repo:      repo,
		publisher: publisher,
		status:    status,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.With().Str("component", "backup_restore_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/reportes-go-api/internal/service/backup"),
	}
}

// restorePass carries the mutable state of one restore call.
type restorePass struct {
	result   dto.RestoreResultResponse
	identity *snapshot.IdentityMap
}

func (p *restorePass) recordError(entity, key, reason string) {
	p.result.RecordErrors = append(p.result.RecordErrors, dto.RestoreRecordError{
		Entity: entity, Key: key, Reason: reason,
	})
	observability.BackupRecordErrors().WithLabelValues(entity).Inc()
}

func (s *backupRestoreService) Restore(ctx context.Context, raw []byte) (dto.RestoreResultResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "backup.restore", trace.WithAttributes(
		attribute.Int("backup.document_bytes", len(raw)),
	))
	defer span.End()

	start := time.Now()
	pass := &restorePass{
		result:   dto.RestoreResultResponse{Phase: PhaseValidating},
		identity: snapshot.NewIdentityMap(),
	}

	doc, err := snapshot.Decode(raw)
	if err != nil {
		return s.reject(span, pass, err)
	}

	if validation := snapshot.Validate(doc); !validation.OK {
		pass.result.ValidationErrors = validation.Errors
		return s.reject(span, pass, validation.Cause)
	}

	if err := s.deletePhase(spanCtx, pass); err != nil {
		return s.fail(spanCtx, span, pass, start, err)
	}

	if err := s.insertMaestros(spanCtx, pass, doc.Maestros); err != nil {
		return s.fail(spanCtx, span, pass, start, err)
	}
	if err := s.insertFormularios(spanCtx, pass, doc.Formularios); err != nil {
		return s.fail(spanCtx, span, pass, start, err)
	}
	if err := s.insertNotificaciones(spanCtx, pass, doc.Notificaciones); err != nil {
		return s.fail(spanCtx, span, pass, start, err)
	}

	pass.result.Phase = PhaseDone
	pass.result.Success = true
	pass.result.Message = fmt.Sprintf("restored %d maestros, %d formularios, %d notificaciones",
		pass.result.Inserted.Maestros, pass.result.Inserted.Formularios, pass.result.Inserted.Notificaciones)

	observability.BackupRestores().WithLabelValues("success").Inc()
	observability.BackupRestoreDuration().Observe(time.Since(start).Seconds())

	s.publisher.BackupRestored(events.BackupRestoredEvent{
		Success:    true,
		Phase:      PhaseDone,
		Strategy:   pass.result.Strategy,
		Inserted:   pass.result.Inserted.Maestros + pass.result.Inserted.Formularios + pass.result.Inserted.Actividades + pass.result.Inserted.Notificaciones,
		Skipped:    len(pass.result.RecordErrors),
		RestoredAt: time.Now().UTC(),
	})
	s.status.RecordRestore(spanCtx, true, pass.result.Message)

	s.logger.Info().
		Int("maestros", pass.result.Inserted.Maestros).
		Int("formularios", pass.result.Inserted.Formularios).
		Int("actividades", pass.result.Inserted.Actividades).
		Int("notificaciones", pass.result.Inserted.Notificaciones).
		Int("record_errors", len(pass.result.RecordErrors)).
		Str("strategy", pass.result.Strategy).
		Msg("backup restore completed")

	return pass.result, nil
}

// reject handles failures before any write: the document never touched the
// database, so the caller gets the validation detail and a sentinel error.
func (s *backupRestoreService) reject(span trace.Span, pass *restorePass, cause error) (dto.RestoreResultResponse, error) {
	span.RecordError(cause)
	observability.BackupRestores().WithLabelValues("rejected").Inc()
	s.logger.Warn().Err(cause).Strs("validation_errors", pass.result.ValidationErrors).Msg("backup document rejected")
	pass.result.Message = cause.Error()
	return pass.result, cause
}

// fail handles a fatal phase failure after writes began. Counts reflect the
// work committed before the failing phase.
func (s *backupRestoreService) fail(ctx context.Context, span trace.Span, pass *restorePass, start time.Time, cause error) (dto.RestoreResultResponse, error) {
	span.RecordError(cause)
	observability.BackupRestores().WithLabelValues("error").Inc()
	observability.BackupRestoreDuration().Observe(time.Since(start).Seconds())

	pass.result.Message = cause.Error()
	s.publisher.BackupRestored(events.BackupRestoredEvent{
		Success:     false,
		Phase:       pass.result.Phase,
		Strategy:    pass.result.Strategy,
		Inserted:    pass.result.Inserted.Maestros + pass.result.Inserted.Formularios + pass.result.Inserted.Actividades + pass.result.Inserted.Notificaciones,
		Skipped:     len(pass.result.RecordErrors),
		RestoredAt:  time.Now().UTC(),
		FailureNote: cause.Error(),
	})
	s.status.RecordRestore(ctx, false, cause.Error())
	s.logger.Error().Err(cause).Str("phase", pass.result.Phase).Msg("backup restore failed")

	return pass.result, cause
}

func (s *backupRestoreService) deletePhase(ctx context.Context, pass *restorePass) error {
	pass.result.Phase = PhaseDeleting

	total, err := s.repo.CountRows(ctx)
	if err != nil {
		return fmt.Errorf("counting destination rows: %w", err)
	}
	if total == 0 {
		// Nothing to clear; skip straight to insertion.
		return nil
	}

	plan := snapshot.PlanDeletion(snapshot.CapabilitiesFor(s.repo.DialectName()))
	used, err := s.repo.ExecuteDeletePlan(ctx, plan)
	if err != nil {
		return fmt.Errorf("clearing destination: %w", err)
	}
	if used != plan.Strategy {
		s.logger.Warn().
			Str("planned", string(plan.Strategy)).
			Str("used", string(used)).
			Msg("bulk cascade unavailable, destination cleared with ordered deletes")
	}

	pass.result.Strategy = string(used)
	observability.BackupDeleteStrategy().WithLabelValues(string(used)).Inc()
	return nil
}

// isFatalInsertError separates losing the database from losing one row.
// Context cancellation and connection-level failures abort the pass; anything
// else (constraint violations, bad values) stays a per-record error.
func isFatalInsertError(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn)
}

func (s *backupRestoreService) insertMaestros(ctx context.Context, pass *restorePass, entries []snapshot.MaestroEntry) error {
	pass.result.Phase = PhaseInsertingMaestros

	for _, entry := range entries {
		key := entry.CorreoInstitucional

		if err := s.validator.Struct(entry); err != nil {
			pass.recordError("maestro", key, err.Error())
			continue
		}
		creado, err := snapshot.ParseTime(entry.FechaCreacion)
		if err != nil {
			pass.recordError("maestro", key, fmt.Sprintf("invalid fecha_creacion %q", entry.FechaCreacion))
			continue
		}
		actualizado, err := snapshot.ParseTime(entry.FechaActualizacion)
		if err != nil {
			pass.recordError("maestro", key, fmt.Sprintf("invalid fecha_actualizacion %q", entry.FechaActualizacion))
			continue
		}

		// A later entry with the same email overwrites the earlier row, so
		// only the first occurrence counts as an insert.
		_, replaced := pass.identity.ResolveMaestroByEmail(entry.CorreoInstitucional)

		maestro := models.Maestro{
			NombreCompleto:      entry.NombreCompleto,
			CorreoInstitucional: entry.CorreoInstitucional,
			Activo:              entry.Activo,
			CreatedAt:           creado,
			UpdatedAt:           actualizado,
		}
		if err := s.repo.InsertMaestro(ctx, &maestro); err != nil {
			if isFatalInsertError(err) {
				return fmt.Errorf("inserting maestro %s: %w", key, err)
			}
			pass.recordError("maestro", key, err.Error())
			continue
		}

		pass.identity.RecordMaestro(entry.CorreoInstitucional, entry.ID, maestro.ID)
		if !replaced {
			pass.result.Inserted.Maestros++
		}
	}
	return nil
}

func (s *backupRestoreService) insertFormularios(ctx context.Context, pass *restorePass, entries []snapshot.FormularioEntry) error {
	pass.result.Phase = PhaseInsertingFormularios

	for _, entry := range entries {
		key := fmt.Sprintf("%d", entry.ID)

		if err := s.validator.Struct(entry); err != nil {
			pass.recordError("formulario", key, err.Error())
			continue
		}
		if !models.EsEstadoValido(entry.Estado) {
			pass.recordError("formulario", key, fmt.Sprintf("unknown estado %q", entry.Estado))
			continue
		}
		fechaEnvio, err := snapshot.ParseTime(entry.FechaEnvio)
		if err != nil {
			pass.recordError("formulario", key, fmt.Sprintf("invalid fecha_envio %q", entry.FechaEnvio))
			continue
		}
		fechaRevision, err := parseOptionalTime(entry.FechaRevision)
		if err != nil {
			pass.recordError("formulario", key, fmt.Sprintf("invalid fecha_revision %q", *entry.FechaRevision))
			continue
		}

		formulario := models.Formulario{
			NombreCompleto:      entry.NombreCompleto,
			CorreoInstitucional: entry.CorreoInstitucional,
			AnioAcademico:       entry.AnioAcademico,
			Trimestre:           entry.Trimestre,
			Estado:              entry.Estado,
			FechaEnvio:          fechaEnvio,
			FechaRevision:       fechaRevision,
			RevisadoPor:         entry.RevisadoPor,
			EsVersionActiva:     entry.EsVersionActiva,
			Version:             entry.Version,
			TokenCorreccion:     entry.TokenCorreccion,
		}

		actividades := s.collectActividades(pass, &formulario, entry)

		if err := s.repo.InsertFormulario(ctx, &formulario); err != nil {
			if isFatalInsertError(err) {
				return fmt.Errorf("inserting formulario %s: %w", key, err)
			}
			pass.recordError("formulario", key, err.Error())
			continue
		}

		pass.identity.RecordFormulario(entry.ID, formulario.ID)
		pass.result.Inserted.Formularios++
		pass.result.Inserted.Actividades += actividades
	}

	// Correction chains reference other formularios by id; re-link them once
	// every submission has its destination id.
	for _, entry := range entries {
		if entry.FormularioOriginalID == nil {
			continue
		}
		newID, ok := pass.identity.ResolveFormulario(entry.ID)
		if !ok {
			continue
		}
		originalID, ok := pass.identity.ResolveFormulario(*entry.FormularioOriginalID)
		if !ok {
			pass.recordError("formulario", fmt.Sprintf("%d", entry.ID),
				fmt.Sprintf("original formulario %d not found in snapshot", *entry.FormularioOriginalID))
			continue
		}
		if err := s.repo.LinkFormularioOriginal(ctx, newID, originalID); err != nil {
			if isFatalInsertError(err) {
				return fmt.Errorf("linking formulario %d: %w", entry.ID, err)
			}
			pass.recordError("formulario", fmt.Sprintf("%d", entry.ID), err.Error())
		}
	}
	return nil
}

// collectActividades converts the activity arrays of one snapshot entry into
// the formulario's association slices. Rows with unparseable dates are
// reported and dropped; everything else inserts together with the formulario.
func (s *backupRestoreService) collectActividades(pass *restorePass, formulario *models.Formulario, entry snapshot.FormularioEntry) int {
	key := fmt.Sprintf("%d", entry.ID)
	count := 0

	for _, c := range entry.Cursos {
		fecha, err := snapshot.ParseTime(c.Fecha)
		if err != nil {
			pass.recordError("curso", key, fmt.Sprintf("invalid fecha %q", c.Fecha))
			continue
		}
		formulario.Cursos = append(formulario.Cursos, models.CursoCapacitacion{
			NombreCurso: c.NombreCurso, Fecha: fecha, Horas: c.Horas,
		})
		count++
	}
	for _, p := range entry.Publicaciones {
		formulario.Publicaciones = append(formulario.Publicaciones, models.Publicacion{
			Autores: p.Autores, Titulo: p.Titulo, EventoRevista: p.EventoRevista, Estatus: p.Estatus,
		})
		count++
	}
	for _, e := range entry.Eventos {
		fecha, err := snapshot.ParseTime(e.Fecha)
		if err != nil {
			pass.recordError("evento", key, fmt.Sprintf("invalid fecha %q", e.Fecha))
			continue
		}
		formulario.Eventos = append(formulario.Eventos, models.EventoAcademico{
			NombreEvento: e.NombreEvento, Fecha: fecha, TipoParticipacion: e.TipoParticipacion,
		})
		count++
	}
	for _, d := range entry.Disenos {
		formulario.Disenos = append(formulario.Disenos, models.DisenoCurricular{
			NombreCurso: d.NombreCurso, Descripcion: d.Descripcion,
		})
		count++
	}
	for _, m := range entry.Movilidades {
		fecha, err := snapshot.ParseTime(m.Fecha)
		if err != nil {
			pass.recordError("movilidad", key, fmt.Sprintf("invalid fecha %q", m.Fecha))
			continue
		}
		formulario.Movilidades = append(formulario.Movilidades, models.ExperienciaMovilidad{
			Descripcion: m.Descripcion, Tipo: m.Tipo, Fecha: fecha,
		})
		count++
	}
	for _, r := range entry.Reconocimientos {
		fecha, err := snapshot.ParseTime(r.Fecha)
		if err != nil {
			pass.recordError("reconocimiento", key, fmt.Sprintf("invalid fecha %q", r.Fecha))
			continue
		}
		formulario.Reconocimientos = append(formulario.Reconocimientos, models.Reconocimiento{
			Nombre: r.Nombre, Tipo: r.Tipo, Fecha: fecha,
		})
		count++
	}
	for _, c := range entry.Certificaciones {
		obtencion, err := snapshot.ParseTime(c.FechaObtencion)
		if err != nil {
			pass.recordError("certificacion", key, fmt.Sprintf("invalid fecha_obtencion %q", c.FechaObtencion))
			continue
		}
		vencimiento, err := parseOptionalTime(c.FechaVencimiento)
		if err != nil {
			pass.recordError("certificacion", key, fmt.Sprintf("invalid fecha_vencimiento %q", *c.FechaVencimiento))
			continue
		}
		formulario.Certificaciones = append(formulario.Certificaciones, models.Certificacion{
			Nombre: c.Nombre, FechaObtencion: obtencion, FechaVencimiento: vencimiento, Vigente: c.Vigente,
		})
		count++
	}
	for _, o := range entry.OtrasActividades {
		fecha, err := parseOptionalTime(o.Fecha)
		if err != nil {
			pass.recordError("otra_actividad", key, fmt.Sprintf("invalid fecha %q", *o.Fecha))
			continue
		}
		formulario.OtrasActividades = append(formulario.OtrasActividades, models.OtraActividad{
			Categoria: o.Categoria, Titulo: o.Titulo, Descripcion: o.Descripcion,
			Fecha: fecha, Cantidad: o.Cantidad, Observaciones: o.Observaciones,
		})
		count++
	}

	return count
}

func (s *backupRestoreService) insertNotificaciones(ctx context.Context, pass *restorePass, entries []snapshot.NotificacionEntry) error {
	pass.result.Phase = PhaseInsertingNotificaciones

	for i, entry := range entries {
		key := fmt.Sprintf("#%d (maestro %d)", i, entry.MaestroID)

		if err := s.validator.Struct(entry); err != nil {
			pass.recordError("notificacion", key, err.Error())
			continue
		}
		maestroID, ok := pass.identity.ResolveMaestro(entry.MaestroID)
		if !ok {
			pass.recordError("notificacion", key, "maestro was not restored, notification skipped")
			continue
		}
		fechaEnvio, err := snapshot.ParseTime(entry.FechaEnvio)
		if err != nil {
			pass.recordError("notificacion", key, fmt.Sprintf("invalid fecha_envio %q", entry.FechaEnvio))
			continue
		}

		notificacion := models.NotificacionEmail{
			MaestroID:        maestroID,
			TipoNotificacion: entry.TipoNotificacion,
			Asunto:           entry.Asunto,
			Mensaje:          entry.Mensaje,
			FechaEnvio:       fechaEnvio,
			Estado:           entry.Estado,
			PeriodoAcademico: entry.PeriodoAcademico,
		}
		if err := s.repo.InsertNotificacion(ctx, &notificacion); err != nil {
			if isFatalInsertError(err) {
				return fmt.Errorf("inserting notificacion %s: %w", key, err)
			}
			pass.recordError("notificacion", key, err.Error())
			continue
		}
		pass.result.Inserted.Notificaciones++
	}
	return nil
}

func parseOptionalTime(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := snapshot.ParseTime(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
