package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/reportes-go-api/internal/service"
	"github.com/noah-isme/reportes-go-api/internal/snapshot"
	"github.com/noah-isme/reportes-go-api/internal/utils"
)

// BackupHandler exposes the admin endpoints for exporting and restoring the
// full reporting database.
type BackupHandler struct {
	exporter service.BackupExportService
	restorer service.BackupRestoreService
	status   service.BackupStatusService
	logger   zerolog.Logger
}

// NewBackupHandler constructs a backup handler.
func NewBackupHandler(exporter service.BackupExportService, restorer service.BackupRestoreService, status service.BackupStatusService, logger zerolog.Logger) *BackupHandler {
	return &BackupHandler{
		exporter: exporter,
		restorer: restorer,
		status:   status,
		logger:   logger.With().Str("component", "backup_handler").Logger(),
	}
}

// Register wires backup routes. Extra guards (rate limiting) apply to the
// restore route only, since restore is destructive and export is not.
func (h *BackupHandler) Register(router fiber.Router, restoreGuards ...fiber.Handler) {
	router.Get("/export", h.export)
	router.Post("/restore", append(restoreGuards, h.restore)...)
	router.Get("/status", h.statusReport)
}

func (h *BackupHandler) export(c *fiber.Ctx) error {
	includeAudit := c.QueryBool("include_audit_logs", false)

	doc, err := h.exporter.Export(c.Context(), includeAudit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("backup export failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "backup export failed")
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "backup export failed")
	}

	filename := service.ExportFilename(time.Now())
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(payload)
}

func (h *BackupHandler) restore(c *fiber.Ctx) error {
	raw, err := h.restorePayload(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.restorer.Restore(c.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, snapshot.ErrMalformedDocument),
			errors.Is(err, snapshot.ErrUnsupportedVersion),
			errors.Is(err, snapshot.ErrIntegrityViolation):
			return utils.SendErrorWithData(c, fiber.StatusBadRequest, "backup document rejected", result)
		default:
			requestLogger(h.logger, c).Error().Err(err).Str("phase", result.Phase).Msg("backup restore failed")
			return utils.SendErrorWithData(c, fiber.StatusInternalServerError, "backup restore failed", result)
		}
	}

	return utils.SendSuccess(c, "backup restored", result)
}

// restorePayload accepts either a multipart upload under "file" or a raw JSON
// body, and rejects anything that does not look like a JSON document before
// the restore service sees it.
func (h *BackupHandler) restorePayload(c *fiber.Ctx) ([]byte, error) {
	var raw []byte

	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return nil, errors.New("uploaded file could not be read")
		}
		defer func() { _ = src.Close() }()

		data, err := io.ReadAll(src)
		if err != nil {
			return nil, errors.New("uploaded file could not be read")
		}
		raw = data
	} else {
		raw = c.Body()
	}

	if len(raw) == 0 {
		return nil, errors.New("backup document is required")
	}

	mtype := mimetype.Detect(raw)
	if !mtype.Is("application/json") && !strings.HasPrefix(mtype.String(), "text/") {
		return nil, fmt.Errorf("unsupported content type %s, expected a JSON document", mtype)
	}

	return raw, nil
}

func (h *BackupHandler) statusReport(c *fiber.Ctx) error {
	status, err := h.status.Status(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("backup status lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "backup status unavailable")
	}
	return utils.SendSuccess(c, "backup status", status)
}
