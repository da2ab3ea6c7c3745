package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/reportes-go-api/internal/dto"
)

const (
	backupLastExportKey  = "reportes:backup:last_export"
	backupLastRestoreKey = "reportes:backup:last_restore"
)

// BackupStatusService caches the outcome of the latest export and restore so
// the admin dashboard can show them without replaying logs. Built without a
// Redis client it degrades to a no-op and Status reports nothing.
type BackupStatusService interface {
	RecordExport(ctx context.Context, success bool, detail string)
	RecordRestore(ctx context.Context, success bool, detail string)
	Status(ctx context.Context) (dto.BackupStatusResponse, error)
}

type backupStatusService struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewBackupStatusService constructs a status cache over Redis.
func NewBackupStatusService(redisClient *redis.Client, ttl time.Duration, logger zerolog.Logger) BackupStatusService {
	return &backupStatusService{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger.With().Str("component", "backup_status_service").Logger(),
	}
}

func (s *backupStatusService) RecordExport(ctx context.Context, success bool, detail string) {
	s.record(ctx, backupLastExportKey, success, detail)
}

func (s *backupStatusService) RecordRestore(ctx context.Context, success bool, detail string) {
	s.record(ctx, backupLastRestoreKey, success, detail)
}

func (s *backupStatusService) record(ctx context.Context, key string, success bool, detail string) {
	if s.redis == nil {
		return
	}

	run := dto.BackupRunStatus{At: time.Now().UTC(), Success: success, Detail: detail}
	payload, err := json.Marshal(run)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to encode backup run status")
		return
	}

	if err := s.redis.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache backup run status")
	}
}

func (s *backupStatusService) Status(ctx context.Context) (dto.BackupStatusResponse, error) {
	var status dto.BackupStatusResponse
	if s.redis == nil {
		return status, nil
	}

	export, err := s.load(ctx, backupLastExportKey)
	if err != nil {
		return status, err
	}
	restore, err := s.load(ctx, backupLastRestoreKey)
	if err != nil {
		return status, err
	}

	status.LastExport = export
	status.LastRestore = restore
	return status, nil
}

func (s *backupStatusService) load(ctx context.Context, key string) (*dto.BackupRunStatus, error) {
	payload, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var run dto.BackupRunStatus
	if err := json.Unmarshal(payload, &run); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable backup run status")
		return nil, nil
	}
	return &run, nil
}
