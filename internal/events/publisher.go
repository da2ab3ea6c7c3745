// Package events publishes backup lifecycle notifications over NATS so other
// portal services can react to exports and restores without polling.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	// SubjectBackupExported is published after every completed export.
	SubjectBackupExported = "reportes.backup.exported"
	// SubjectBackupRestored is published after every restore attempt,
	// successful or not.
	SubjectBackupRestored = "reportes.backup.restored"
)

// BackupExportedEvent announces a completed export.
type BackupExportedEvent struct {
	ExportDate     time.Time `json:"export_date"`
	Maestros       int       `json:"maestros"`
	Formularios    int       `json:"formularios"`
	Notificaciones int       `json:"notificaciones"`
	IncludesAudit  bool      `json:"includes_audit"`
}

// BackupRestoredEvent announces the outcome of a restore attempt.
type BackupRestoredEvent struct {
	Success     bool      `json:"success"`
	Phase       string    `json:"phase"`
	Strategy    string    `json:"strategy,omitempty"`
	Inserted    int       `json:"inserted"`
	Skipped     int       `json:"skipped"`
	RestoredAt  time.Time `json:"restored_at"`
	FailureNote string    `json:"failure_note,omitempty"`
}

// Publisher emits backup lifecycle events. A Publisher built without a NATS
// connection drops events silently, so callers never have to branch on
// whether messaging is configured.
type Publisher interface {
	BackupExported(event BackupExportedEvent)
	BackupRestored(event BackupRestoredEvent)
}

type natsPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher constructs a publisher over the given NATS connection. A nil
// connection yields a no-op publisher.
func NewPublisher(conn *nats.Conn, logger zerolog.Logger) Publisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "backup_events").Logger(),
	}
}

func (p *natsPublisher) BackupExported(event BackupExportedEvent) {
	p.publish(SubjectBackupExported, event)
}

func (p *natsPublisher) BackupRestored(event BackupRestoredEvent) {
	p.publish(SubjectBackupRestored, event)
}

func (p *natsPublisher) publish(subject string, event any) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode backup event")
		return
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish backup event")
	}
}
