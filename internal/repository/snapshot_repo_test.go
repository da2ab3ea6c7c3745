package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/reportes-go-api/internal/models"
	"github.com/noah-isme/reportes-go-api/internal/snapshot"
)

func setupSnapshotDB(t *testing.T) *gorm.DB {
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

func TestSnapshotRepositoryListMaestrosActivosFiltersInactive(t *testing.T) {
	db := setupSnapshotDB(t)
	repo := NewSnapshotRepository(db)

	activo := models.Maestro{NombreCompleto: "Ana García", CorreoInstitucional: "ana@uni.edu", Activo: true}
	inactivo := models.Maestro{NombreCompleto: "Luis Pérez", CorreoInstitucional: "luis@uni.edu", Activo: false}
	require.NoError(t, db.Create(&activo).Error)
	require.NoError(t, db.Create(&inactivo).Error)

	maestros, err := repo.ListMaestrosActivos(context.Background())
	require.NoError(t, err)
	require.Len(t, maestros, 1)
	require.Equal(t, "ana@uni.edu", maestros[0].CorreoInstitucional)
}

func TestSnapshotRepositoryFalseBooleansSurviveInsert(t *testing.T) {
	db := setupSnapshotDB(t)

	inactivo := models.Maestro{NombreCompleto: "Luis Pérez", CorreoInstitucional: "luis@uni.edu", Activo: false}
	require.NoError(t, db.Create(&inactivo).Error)

	vieja := models.Formulario{
		NombreCompleto: "Luis Pérez", CorreoInstitucional: "luis@uni.edu",
		AnioAcademico: 2023, Trimestre: "Q4", Estado: models.EstadoAprobado,
		FechaEnvio: time.Now(), EsVersionActiva: false, Version: 1,
		Certificaciones: []models.Certificacion{
			{Nombre: "Vencida", FechaObtencion: time.Now(), Vigente: false},
		},
	}
	require.NoError(t, db.Create(&vieja).Error)

	var maestro models.Maestro
	require.NoError(t, db.First(&maestro, inactivo.ID).Error)
	require.False(t, maestro.Activo)

	var formulario models.Formulario
	require.NoError(t, db.Preload("Certificaciones").First(&formulario, vieja.ID).Error)
	require.False(t, formulario.EsVersionActiva)
	require.Len(t, formulario.Certificaciones, 1)
	require.False(t, formulario.Certificaciones[0].Vigente)
}

func TestSnapshotRepositoryInsertMaestroUpsertsOnEmail(t *testing.T) {
	db := setupSnapshotDB(t)
	repo := NewSnapshotRepository(db)

	first := models.Maestro{NombreCompleto: "Versión Vieja", CorreoInstitucional: "dup@uni.edu", Activo: false}
	require.NoError(t, repo.InsertMaestro(context.Background(), &first))

	second := models.Maestro{NombreCompleto: "Versión Nueva", CorreoInstitucional: "dup@uni.edu", Activo: true}
	require.NoError(t, repo.InsertMaestro(context.Background(), &second))
	require.Equal(t, first.ID, second.ID, "conflicting insert must report the surviving row id")

	var maestros []models.Maestro
	require.NoError(t, db.Find(&maestros).Error)
	require.Len(t, maestros, 1)
	require.Equal(t, "Versión Nueva", maestros[0].NombreCompleto)
	require.True(t, maestros[0].Activo)
}

func TestSnapshotRepositoryListFormulariosPreloadsActivities(t *testing.T) {
	db := setupSnapshotDB(t)
	repo := NewSnapshotRepository(db)

	formulario := models.Formulario{
		NombreCompleto:      "Ana García",
		CorreoInstitucional: "ana@uni.edu",
		AnioAcademico:       2024,
		Trimestre:           "Q1",
		Estado:              models.EstadoPendiente,
		FechaEnvio:          time.Now(),
		EsVersionActiva:     true,
		Version:             1,
		Cursos: []models.CursoCapacitacion{
			{NombreCurso: "Didáctica", Fecha: time.Now(), Horas: 20},
		},
		Publicaciones: []models.Publicacion{
			{Autores: "García, A.", Titulo: "Un estudio", EventoRevista: "Revista X", Estatus: models.EstatusPublicacionPublicado},
		},
	}
	require.NoError(t, db.Create(&formulario).Error)

	formularios, err := repo.ListFormularios(context.Background())
	require.NoError(t, err)
	require.Len(t, formularios, 1)
	require.Len(t, formularios[0].Cursos, 1)
	require.Len(t, formularios[0].Publicaciones, 1)
	require.Equal(t, formulario.ID, formularios[0].Cursos[0].FormularioID)
}

func TestSnapshotRepositoryNotificationsOnlyFromActiveTeachers(t *testing.T) {
	db := setupSnapshotDB(t)
	repo := NewSnapshotRepository(db)

	activo := models.Maestro{NombreCompleto: "Ana García", CorreoInstitucional: "ana@uni.edu", Activo: true}
	inactivo := models.Maestro{NombreCompleto: "Luis Pérez", CorreoInstitucional: "luis@uni.edu", Activo: false}
	require.NoError(t, db.Create(&activo).Error)
	require.NoError(t, db.Create(&inactivo).Error)

	require.NoError(t, db.Create(&models.NotificacionEmail{
		MaestroID: activo.ID, TipoNotificacion: "RECORDATORIO", Asunto: "a", Mensaje: "m",
		FechaEnvio: time.Now(), Estado: models.NotificacionEnviada,
	}).Error)
	require.NoError(t, db.Create(&models.NotificacionEmail{
		MaestroID: inactivo.ID, TipoNotificacion: "RECORDATORIO", Asunto: "b", Mensaje: "m",
		FechaEnvio: time.Now(), Estado: models.NotificacionEnviada,
	}).Error)

	notificaciones, err := repo.ListNotificacionesDeMaestrosActivos(context.Background())
	require.NoError(t, err)
	require.Len(t, notificaciones, 1)
	require.Equal(t, activo.ID, notificaciones[0].MaestroID)
}

func TestSnapshotRepositoryCountRows(t *testing.T) {
	db := setupSnapshotDB(t)
	repo := NewSnapshotRepository(db)

	total, err := repo.CountRows(context.Background())
	require.NoError(t, err)
	require.Zero(t, total)

	require.NoError(t, db.Create(&models.Maestro{NombreCompleto: "Ana", CorreoInstitucional: "ana@uni.edu", Activo: true}).Error)

	total, err = repo.CountRows(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestSnapshotRepositoryOrderedDeleteClearsEverything(t *testing.T) {
	db := setupSnapshotDB(t)
	repo := NewSnapshotRepository(db)

	maestro := models.Maestro{NombreCompleto: "Ana", CorreoInstitucional: "ana@uni.edu", Activo: true}
	require.NoError(t, db.Create(&maestro).Error)
	require.NoError(t, db.Create(&models.NotificacionEmail{
		MaestroID: maestro.ID, TipoNotificacion: "RECORDATORIO", Asunto: "a", Mensaje: "m",
		FechaEnvio: time.Now(), Estado: models.NotificacionEnviada,
	}).Error)

	plan := snapshot.PlanDeletion(snapshot.CapabilitiesFor(repo.DialectName()))
	require.Equal(t, snapshot.StrategyOrdered, plan.Strategy)

	used, err := repo.ExecuteDeletePlan(context.Background(), plan)
	require.NoError(t, err)
	require.Equal(t, snapshot.StrategyOrdered, used)

	total, err := repo.CountRows(context.Background())
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestSnapshotRepositoryBulkCascadeFallsBackOnUnsupportedEngine(t *testing.T) {
	db := setupSnapshotDB(t)
	repo := NewSnapshotRepository(db)

	require.NoError(t, db.Create(&models.Maestro{NombreCompleto: "Ana", CorreoInstitucional: "ana@uni.edu", Activo: true}).Error)

	// SQLite has no TRUNCATE; the bulk plan must roll back and finish ordered.
	plan := snapshot.PlanDeletion(snapshot.Capabilities{BulkCascadeDelete: true})
	used, err := repo.ExecuteDeletePlan(context.Background(), plan)
	require.NoError(t, err)
	require.Equal(t, snapshot.StrategyOrdered, used)

	total, err := repo.CountRows(context.Background())
	require.NoError(t, err)
	require.Zero(t, total)
}
