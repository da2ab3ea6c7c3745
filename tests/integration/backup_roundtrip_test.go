package integration_test

import (
	"context"
	"encoding/json"
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
	"github.com/noah-isme/reportes-go-api/internal/service"
	"github.com/noah-isme/reportes-go-api/internal/snapshot"
)

func openDatabase(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", t.Name(), name)
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

func backupServices(db *gorm.DB) (service.BackupExportService, service.BackupRestoreService) {
	repo := repository.NewSnapshotRepository(db)
	logger := zerolog.Nop()
	publisher := events.NewPublisher(nil, logger)
	status := service.NewBackupStatusService(nil, 0, logger)
	return service.NewBackupExportService(repo, publisher, status, logger),
		service.NewBackupRestoreService(repo, publisher, status, logger)
}

// seedPortal loads the reference scenario: two teachers with one inactive,
// one submission with activities, and notifications for both teachers.
func seedPortal(t *testing.T, db *gorm.DB) {
	t.Helper()

	activa := models.Maestro{NombreCompleto: "Ana García", CorreoInstitucional: "ana@uni.edu", Activo: true}
	inactivo := models.Maestro{NombreCompleto: "Luis Pérez", CorreoInstitucional: "luis@uni.edu", Activo: false}
	require.NoError(t, db.Create(&activa).Error)
	require.NoError(t, db.Create(&inactivo).Error)

	require.NoError(t, db.Create(&models.Formulario{
		NombreCompleto: "Ana García", CorreoInstitucional: "ana@uni.edu",
		AnioAcademico: 2024, Trimestre: "Q1", Estado: models.EstadoAprobado,
		FechaEnvio: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), EsVersionActiva: true, Version: 1,
		Cursos: []models.CursoCapacitacion{
			{NombreCurso: "Didáctica", Fecha: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Horas: 20},
			{NombreCurso: "Evaluación", Fecha: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), Horas: 10},
		},
		Publicaciones: []models.Publicacion{
			{Autores: "García, A.", Titulo: "Un estudio", EventoRevista: "Revista X", Estatus: models.EstatusPublicacionPublicado},
		},
		Movilidades: []models.ExperienciaMovilidad{
			{Descripcion: "Estancia", Tipo: models.TipoMovilidadInternacional, Fecha: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		},
	}).Error)

	require.NoError(t, db.Create(&models.NotificacionEmail{
		MaestroID: activa.ID, TipoNotificacion: "RECORDATORIO", Asunto: "Entrega Q1", Mensaje: "m",
		FechaEnvio: time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC), Estado: models.NotificacionEnviada,
	}).Error)
	require.NoError(t, db.Create(&models.NotificacionEmail{
		MaestroID: inactivo.ID, TipoNotificacion: "RECORDATORIO", Asunto: "Ignorada", Mensaje: "m",
		FechaEnvio: time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC), Estado: models.NotificacionEnviada,
	}).Error)
}

func TestBackupRoundTripPreservesCounts(t *testing.T) {
	source := openDatabase(t, "source")
	seedPortal(t, source)

	exporter, _ := backupServices(source)
	doc, err := exporter.Export(context.Background(), false)
	require.NoError(t, err)

	// Only the active teacher and her notification leave with the snapshot.
	require.Len(t, doc.Maestros, 1)
	require.Len(t, doc.Formularios, 1)
	require.Len(t, doc.Notificaciones, 1)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	destination := openDatabase(t, "destination")
	_, restorer := backupServices(destination)
	result, err := restorer.Restore(context.Background(), raw)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 1, result.Inserted.Maestros)
	require.Equal(t, 1, result.Inserted.Formularios)
	require.Equal(t, 4, result.Inserted.Actividades)
	require.Equal(t, 1, result.Inserted.Notificaciones)
	require.Empty(t, result.RecordErrors)

	var cursos int64
	require.NoError(t, destination.Model(&models.CursoCapacitacion{}).Count(&cursos).Error)
	require.Equal(t, int64(2), cursos)
}

func TestBackupReExportMatchesExceptExportDate(t *testing.T) {
	source := openDatabase(t, "source")
	seedPortal(t, source)

	exporter, _ := backupServices(source)
	first, err := exporter.Export(context.Background(), false)
	require.NoError(t, err)

	raw, err := json.Marshal(first)
	require.NoError(t, err)

	destination := openDatabase(t, "destination")
	destExporter, restorer := backupServices(destination)
	_, err = restorer.Restore(context.Background(), raw)
	require.NoError(t, err)

	second, err := destExporter.Export(context.Background(), false)
	require.NoError(t, err)

	// Ids may shift between databases; the content must not.
	require.Len(t, second.Maestros, len(first.Maestros))
	require.Equal(t, first.Maestros[0].CorreoInstitucional, second.Maestros[0].CorreoInstitucional)
	require.Len(t, second.Formularios, len(first.Formularios))

	normalize := func(doc *snapshot.Document) *snapshot.Document {
		clone := *doc
		clone.ExportDate = ""
		clone.Maestros = nil
		clone.Formularios = nil
		clone.Notificaciones = nil
		return &clone
	}
	require.Equal(t, normalize(first), normalize(second))

	require.Equal(t, first.Formularios[0].Trimestre, second.Formularios[0].Trimestre)
	require.Len(t, second.Formularios[0].Cursos, len(first.Formularios[0].Cursos))
	require.Equal(t, first.Notificaciones[0].Asunto, second.Notificaciones[0].Asunto)
}

func TestBackupRestoreRemapsAcrossDivergedSequences(t *testing.T) {
	source := openDatabase(t, "source")
	seedPortal(t, source)

	exporter, _ := backupServices(source)
	doc, err := exporter.Export(context.Background(), false)
	require.NoError(t, err)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	destination := openDatabase(t, "destination")
	// Diverge the destination id sequences from the source ones.
	for i := 0; i < 5; i++ {
		require.NoError(t, destination.Create(&models.Maestro{
			NombreCompleto: "Relleno", CorreoInstitucional: fmt.Sprintf("relleno%d@uni.edu", i), Activo: false,
		}).Error)
	}

	_, restorer := backupServices(destination)
	result, err := restorer.Restore(context.Background(), raw)
	require.NoError(t, err)
	require.True(t, result.Success)

	var ana models.Maestro
	require.NoError(t, destination.Where("correo_institucional = ?", "ana@uni.edu").First(&ana).Error)
	require.NotEqual(t, doc.Maestros[0].ID, ana.ID, "destination must assign fresh ids")

	var notificaciones []models.NotificacionEmail
	require.NoError(t, destination.Find(&notificaciones).Error)
	require.Len(t, notificaciones, 1)
	require.Equal(t, ana.ID, notificaciones[0].MaestroID)

	var formulario models.Formulario
	require.NoError(t, destination.First(&formulario).Error)
	var actividades []models.CursoCapacitacion
	require.NoError(t, destination.Find(&actividades).Error)
	for _, a := range actividades {
		require.Equal(t, formulario.ID, a.FormularioID)
	}
}
