package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/reportes-go-api/internal/events"
	"github.com/noah-isme/reportes-go-api/internal/models"
	"github.com/noah-isme/reportes-go-api/internal/repository"
	"github.com/noah-isme/reportes-go-api/internal/snapshot"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func setupBackupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Maestro{},
		&models.Formulario{},
		&models.CursoCapacitacion{},
		&models.Publicacion{},
		&models.EventoAcademico{},
		&models.DisenoCurricular{},
		&models.ExperienciaMovilidad{},
		&models.Reconocimiento{},
		&models.Certificacion{},
		&models.OtraActividad{},
		&models.NotificacionEmail{},
		&models.AuditLog{},
	))
	return db
}

func newExportService(db *gorm.DB) BackupExportService {
	repo := repository.NewSnapshotRepository(db)
	publisher := events.NewPublisher(nil, testLogger())
	status := NewBackupStatusService(nil, 0, testLogger())
	return NewBackupExportService(repo, publisher, status, testLogger())
}

func seedBackupData(t *testing.T, db *gorm.DB) (models.Maestro, models.Formulario) {
	t.Helper()

	activo := models.Maestro{NombreCompleto: "Ana García", CorreoInstitucional: "ana@uni.edu", Activo: true}
	inactivo := models.Maestro{NombreCompleto: "Luis Pérez", CorreoInstitucional: "luis@uni.edu", Activo: false}
	require.NoError(t, db.Create(&activo).Error)
	require.NoError(t, db.Create(&inactivo).Error)

	formulario := models.Formulario{
		NombreCompleto:      "Ana García",
		CorreoInstitucional: "ana@uni.edu",
		AnioAcademico:       2024,
		Trimestre:           "Q1",
		Estado:              models.EstadoAprobado,
		FechaEnvio:          time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		EsVersionActiva:     true,
		Version:             1,
		Cursos: []models.CursoCapacitacion{
			{NombreCurso: "Didáctica", Fecha: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Horas: 20},
		},
		Publicaciones: []models.Publicacion{
			{Autores: "García, A.", Titulo: "Un estudio", EventoRevista: "Revista X", Estatus: models.EstatusPublicacionPublicado},
		},
		Certificaciones: []models.Certificacion{
			{Nombre: "Cert A", FechaObtencion: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), Vigente: true},
		},
	}
	require.NoError(t, db.Create(&formulario).Error)

	require.NoError(t, db.Create(&models.NotificacionEmail{
		MaestroID: activo.ID, TipoNotificacion: "RECORDATORIO", Asunto: "Entrega", Mensaje: "m",
		FechaEnvio: time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC), Estado: models.NotificacionEnviada,
	}).Error)
	require.NoError(t, db.Create(&models.NotificacionEmail{
		MaestroID: inactivo.ID, TipoNotificacion: "RECORDATORIO", Asunto: "Ignorada", Mensaje: "m",
		FechaEnvio: time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC), Estado: models.NotificacionEnviada,
	}).Error)
	require.NoError(t, db.Create(&models.AuditLog{
		FormularioID: &formulario.ID, Accion: "APROBACION", Fecha: time.Date(2024, 2, 3, 8, 0, 0, 0, time.UTC), Comentario: "ok",
	}).Error)

	return activo, formulario
}

func TestBackupExportOnlyActiveTeachersAndTheirNotifications(t *testing.T) {
	db := setupBackupDB(t)
	seedBackupData(t, db)

	doc, err := newExportService(db).Export(context.Background(), false)
	require.NoError(t, err)

	require.Equal(t, snapshot.Version, doc.Version)
	require.Len(t, doc.Maestros, 1)
	require.Equal(t, "ana@uni.edu", doc.Maestros[0].CorreoInstitucional)
	require.Len(t, doc.Notificaciones, 1)
	require.Equal(t, "Entrega", doc.Notificaciones[0].Asunto)
	require.Nil(t, doc.AuditLogs)
}

func TestBackupExportIncludesAllActivities(t *testing.T) {
	db := setupBackupDB(t)
	_, formulario := seedBackupData(t, db)

	doc, err := newExportService(db).Export(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, doc.Formularios, 1)
	entry := doc.Formularios[0]
	require.Equal(t, formulario.ID, entry.ID)
	require.Len(t, entry.Cursos, 1)
	require.Len(t, entry.Publicaciones, 1)
	require.Len(t, entry.Certificaciones, 1)
	require.Empty(t, entry.Eventos)
	require.Equal(t, "2024-02-01T10:00:00Z", entry.FechaEnvio)
}

func TestBackupExportIncludesAuditLogOnRequest(t *testing.T) {
	db := setupBackupDB(t)
	seedBackupData(t, db)

	doc, err := newExportService(db).Export(context.Background(), true)
	require.NoError(t, err)
	require.NotNil(t, doc.AuditLogs)
	require.Len(t, *doc.AuditLogs, 1)
	require.Equal(t, "APROBACION", (*doc.AuditLogs)[0].Accion)
}

func TestBackupExportDocumentPassesItsOwnValidation(t *testing.T) {
	db := setupBackupDB(t)
	seedBackupData(t, db)

	doc, err := newExportService(db).Export(context.Background(), false)
	require.NoError(t, err)

	result := snapshot.Validate(doc)
	require.True(t, result.OK, "exported document must validate cleanly: %v", result.Errors)
}

func TestExportFilenameCarriesTimestamp(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 30, 9, 0, time.UTC)
	require.Equal(t, "backup_reportes_docentes_20240305_143009.json", ExportFilename(at))
}
