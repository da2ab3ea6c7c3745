package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/reportes-go-api/internal/events"
	"github.com/noah-isme/reportes-go-api/internal/models"
	"github.com/noah-isme/reportes-go-api/internal/observability"
	"github.com/noah-isme/reportes-go-api/internal/repository"
	"github.com/noah-isme/reportes-go-api/internal/snapshot"
)

// BackupExportService builds the portable snapshot of the reporting database.
type BackupExportService interface {
	Export(ctx context.Context, includeAuditLogs bool) (*snapshot.Document, error)
}

type backupExportService struct {
	repo      repository.SnapshotRepository
	publisher events.Publisher
	status    BackupStatusService
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewBackupExportService constructs an export service.
func NewBackupExportService(repo repository.SnapshotRepository, publisher events.Publisher, status BackupStatusService, logger zerolog.Logger) BackupExportService {
	return &backupExportService{
		repo:      repo,
		publisher: publisher,
		status:    status,
		logger:    logger.With().Str("component", "backup_export_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/reportes-go-api/internal/service/backup"),
	}
}

// ExportFilename names a snapshot file after the moment it was generated.
func ExportFilename(at time.Time) string {
	return fmt.Sprintf("backup_reportes_docentes_%s.json", at.UTC().Format("20060102_150405"))
}

func (s *backupExportService) Export(ctx context.Context, includeAuditLogs bool) (*snapshot.Document, error) {
	spanCtx, span := s.tracer.Start(ctx, "backup.export", trace.WithAttributes(
		attribute.Bool("backup.include_audit_logs", includeAuditLogs),
	))
	defer span.End()

	start := time.Now()

	maestros, err := s.repo.ListMaestrosActivos(spanCtx)
	if err != nil {
		return nil, s.fail(span, "reading teachers", err)
	}

	formularios, err := s.repo.ListFormularios(spanCtx)
	if err != nil {
		return nil, s.fail(span, "reading submissions", err)
	}

	notificaciones, err := s.repo.ListNotificacionesDeMaestrosActivos(spanCtx)
	if err != nil {
		return nil, s.fail(span, "reading notifications", err)
	}

	now := time.Now()
	doc := &snapshot.Document{
		ExportDate:     snapshot.FormatTime(now),
		Version:        snapshot.Version,
		Maestros:       make([]snapshot.MaestroEntry, 0, len(maestros)),
		Formularios:    make([]snapshot.FormularioEntry, 0, len(formularios)),
		Notificaciones: make([]snapshot.NotificacionEntry, 0, len(notificaciones)),
	}

	for _, m := range maestros {
		doc.Maestros = append(doc.Maestros, maestroEntry(m))
	}
	for _, f := range formularios {
		doc.Formularios = append(doc.Formularios, formularioEntry(f))
	}
	for _, n := range notificaciones {
		doc.Notificaciones = append(doc.Notificaciones, notificacionEntry(n))
	}

	if includeAuditLogs {
		logs, err := s.repo.ListAuditLogs(spanCtx)
		if err != nil {
			return nil, s.fail(span, "reading audit log", err)
		}
		entries := make([]snapshot.AuditLogEntry, 0, len(logs))
		for _, l := range logs {
			entries = append(entries, auditEntry(l))
		}
		doc.AuditLogs = &entries
	}

	observability.BackupExports().WithLabelValues("success").Inc()
	observability.BackupExportDuration().Observe(time.Since(start).Seconds())

	s.publisher.BackupExported(events.BackupExportedEvent{
		ExportDate:     now,
		Maestros:       len(doc.Maestros),
		Formularios:    len(doc.Formularios),
		Notificaciones: len(doc.Notificaciones),
		IncludesAudit:  includeAuditLogs,
	})
	s.status.RecordExport(spanCtx, true, fmt.Sprintf("%d maestros, %d formularios", len(doc.Maestros), len(doc.Formularios)))

	s.logger.Info().
		Int("maestros", len(doc.Maestros)).
		Int("formularios", len(doc.Formularios)).
		Int("notificaciones", len(doc.Notificaciones)).
		Bool("audit_logs", includeAuditLogs).
		Msg("backup export completed")

	return doc, nil
}

func (s *backupExportService) fail(span trace.Span, stage string, err error) error {
	span.RecordError(err)
	observability.BackupExports().WithLabelValues("error").Inc()
	s.logger.Error().Err(err).Str("stage", stage).Msg("backup export failed")
	return fmt.Errorf("%s: %w", stage, err)
}

func maestroEntry(m models.Maestro) snapshot.MaestroEntry {
	return snapshot.MaestroEntry{
		ID:                  m.ID,
		NombreCompleto:      m.NombreCompleto,
		CorreoInstitucional: m.CorreoInstitucional,
		Activo:              m.Activo,
		FechaCreacion:       snapshot.FormatTime(m.CreatedAt),
		FechaActualizacion:  snapshot.FormatTime(m.UpdatedAt),
	}
}

func formularioEntry(f models.Formulario) snapshot.FormularioEntry {
	entry := snapshot.FormularioEntry{
		ID:                   f.ID,
		NombreCompleto:       f.NombreCompleto,
		CorreoInstitucional:  f.CorreoInstitucional,
		AnioAcademico:        f.AnioAcademico,
		Trimestre:            f.Trimestre,
		FechaEnvio:           snapshot.FormatTime(f.FechaEnvio),
		Estado:               f.Estado,
		FechaRevision:        optionalTime(f.FechaRevision),
		RevisadoPor:          f.RevisadoPor,
		EsVersionActiva:      f.EsVersionActiva,
		Version:              f.Version,
		TokenCorreccion:      f.TokenCorreccion,
		FormularioOriginalID: f.FormularioOriginalID,
		Cursos:               make([]snapshot.CursoEntry, 0, len(f.Cursos)),
		Publicaciones:        make([]snapshot.PublicacionEntry, 0, len(f.Publicaciones)),
		Eventos:              make([]snapshot.EventoEntry, 0, len(f.Eventos)),
		Disenos:              make([]snapshot.DisenoEntry, 0, len(f.Disenos)),
		Movilidades:          make([]snapshot.MovilidadEntry, 0, len(f.Movilidades)),
		Reconocimientos:      make([]snapshot.ReconocimientoEntry, 0, len(f.Reconocimientos)),
		Certificaciones:      make([]snapshot.CertificacionEntry, 0, len(f.Certificaciones)),
		OtrasActividades:     make([]snapshot.OtraActividadEntry, 0, len(f.OtrasActividades)),
	}

	for _, c := range f.Cursos {
		entry.Cursos = append(entry.Cursos, snapshot.CursoEntry{
			FormularioID: c.FormularioID,
			NombreCurso:  c.NombreCurso,
			Fecha:        snapshot.FormatTime(c.Fecha),
			Horas:        c.Horas,
		})
	}
	for _, p := range f.Publicaciones {
		entry.Publicaciones = append(entry.Publicaciones, snapshot.PublicacionEntry{
			FormularioID:  p.FormularioID,
			Autores:       p.Autores,
			Titulo:        p.Titulo,
			EventoRevista: p.EventoRevista,
			Estatus:       p.Estatus,
		})
	}
	for _, e := range f.Eventos {
		entry.Eventos = append(entry.Eventos, snapshot.EventoEntry{
			FormularioID:      e.FormularioID,
			NombreEvento:      e.NombreEvento,
			Fecha:             snapshot.FormatTime(e.Fecha),
			TipoParticipacion: e.TipoParticipacion,
		})
	}
	for _, d := range f.Disenos {
		entry.Disenos = append(entry.Disenos, snapshot.DisenoEntry{
			FormularioID: d.FormularioID,
			NombreCurso:  d.NombreCurso,
			Descripcion:  d.Descripcion,
		})
	}
	for _, m := range f.Movilidades {
		entry.Movilidades = append(entry.Movilidades, snapshot.MovilidadEntry{
			FormularioID: m.FormularioID,
			Descripcion:  m.Descripcion,
			Tipo:         m.Tipo,
			Fecha:        snapshot.FormatTime(m.Fecha),
		})
	}
	for _, r := range f.Reconocimientos {
		entry.Reconocimientos = append(entry.Reconocimientos, snapshot.ReconocimientoEntry{
			FormularioID: r.FormularioID,
			Nombre:       r.Nombre,
			Tipo:         r.Tipo,
			Fecha:        snapshot.FormatTime(r.Fecha),
		})
	}
	for _, c := range f.Certificaciones {
		entry.Certificaciones = append(entry.Certificaciones, snapshot.CertificacionEntry{
			FormularioID:     c.FormularioID,
			Nombre:           c.Nombre,
			FechaObtencion:   snapshot.FormatTime(c.FechaObtencion),
			FechaVencimiento: optionalTime(c.FechaVencimiento),
			Vigente:          c.Vigente,
		})
	}
	for _, o := range f.OtrasActividades {
		entry.OtrasActividades = append(entry.OtrasActividades, snapshot.OtraActividadEntry{
			FormularioID:  o.FormularioID,
			Categoria:     o.Categoria,
			Titulo:        o.Titulo,
			Descripcion:   o.Descripcion,
			Fecha:         optionalTime(o.Fecha),
			Cantidad:      o.Cantidad,
			Observaciones: o.Observaciones,
		})
	}

	return entry
}

func notificacionEntry(n models.NotificacionEmail) snapshot.NotificacionEntry {
	return snapshot.NotificacionEntry{
		MaestroID:        n.MaestroID,
		TipoNotificacion: n.TipoNotificacion,
		Asunto:           n.Asunto,
		Mensaje:          n.Mensaje,
		FechaEnvio:       snapshot.FormatTime(n.FechaEnvio),
		Estado:           n.Estado,
		PeriodoAcademico: n.PeriodoAcademico,
	}
}

func auditEntry(l models.AuditLog) snapshot.AuditLogEntry {
	return snapshot.AuditLogEntry{
		FormularioID: l.FormularioID,
		Accion:       l.Accion,
		Usuario:      l.Usuario,
		Fecha:        snapshot.FormatTime(l.Fecha),
		Comentario:   l.Comentario,
	}
}

func optionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := snapshot.FormatTime(*t)
	return &formatted
}
