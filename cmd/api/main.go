package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/reportes-go-api/internal/config"
	"github.com/noah-isme/reportes-go-api/internal/database"
	"github.com/noah-isme/reportes-go-api/internal/events"
	"github.com/noah-isme/reportes-go-api/internal/handler"
	"github.com/noah-isme/reportes-go-api/internal/middleware"
	"github.com/noah-isme/reportes-go-api/internal/models"
	"github.com/noah-isme/reportes-go-api/internal/repository"
	"github.com/noah-isme/reportes-go-api/internal/router"
	"github.com/noah-isme/reportes-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(
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
		); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, backup status cache disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, backup events disabled")
		} else {
			defer natsConn.Drain()
		}
	}

	snapshotRepo := repository.NewSnapshotRepository(db)
	publisher := events.NewPublisher(natsConn, logger)
	statusService := service.NewBackupStatusService(redisClient, cfg.BackupStatusTTL, logger)
	exportService := service.NewBackupExportService(snapshotRepo, publisher, statusService, logger)
	restoreService := service.NewBackupRestoreService(snapshotRepo, publisher, statusService, logger)

	backupHandler := handler.NewBackupHandler(exportService, restoreService, statusService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    128 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		BackupHandler: backupHandler,
		JWTMiddleware: middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
