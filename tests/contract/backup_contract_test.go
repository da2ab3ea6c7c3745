package contract_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/reportes-go-api/internal/events"
	"github.com/noah-isme/reportes-go-api/internal/handler"
	"github.com/noah-isme/reportes-go-api/internal/models"
	"github.com/noah-isme/reportes-go-api/internal/repository"
	"github.com/noah-isme/reportes-go-api/internal/service"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func newBackupApp(t *testing.T) (*fiber.App, *gorm.DB) {
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

	repo := repository.NewSnapshotRepository(db)
	logger := zerolog.Nop()
	publisher := events.NewPublisher(nil, logger)
	status := service.NewBackupStatusService(nil, 0, logger)
	exporter := service.NewBackupExportService(repo, publisher, status, logger)
	restorer := service.NewBackupRestoreService(repo, publisher, status, logger)

	app := fiber.New()
	handler.NewBackupHandler(exporter, restorer, status, logger).Register(app.Group("/api/admin/backup"))
	return app, db
}

func TestBackupExportContract(t *testing.T) {
	schema := compileSchema(t, "backup_document.schema.json")
	app, db := newBackupApp(t)

	maestro := models.Maestro{NombreCompleto: "Ana García", CorreoInstitucional: "ana@uni.edu", Activo: true}
	require.NoError(t, db.Create(&maestro).Error)
	require.NoError(t, db.Create(&models.Formulario{
		NombreCompleto: "Ana García", CorreoInstitucional: "ana@uni.edu",
		AnioAcademico: 2024, Trimestre: "Q1", Estado: models.EstadoPendiente,
		FechaEnvio: time.Now(), EsVersionActiva: true, Version: 1,
		Cursos: []models.CursoCapacitacion{{NombreCurso: "Didáctica", Fecha: time.Now(), Horas: 20}},
	}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/backup/export", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestBackupRestoreContract(t *testing.T) {
	schema := compileSchema(t, "backup_restore_result.schema.json")
	app, _ := newBackupApp(t)

	document := map[string]interface{}{
		"export_date": "2024-03-01T00:00:00Z",
		"version":     "1.0",
		"maestros_autorizados": []map[string]interface{}{
			{"id": 1, "nombre_completo": "Ana García", "correo_institucional": "ana@uni.edu", "activo": true,
				"fecha_creacion": "2023-01-01T00:00:00Z", "fecha_actualizacion": "2024-01-01T00:00:00Z"},
		},
		"formularios":    []interface{}{},
		"notificaciones": []interface{}{},
	}
	body, err := json.Marshal(document)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/backup/restore", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.NoError(t, schema.Validate(payload))
}
