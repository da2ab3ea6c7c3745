package dto

import "time"

// RestoreRecordError describes one record that could not be reinserted during
// a restore. The pass continues past these; they are reported, not fatal.
type RestoreRecordError struct {
	Entity string `json:"entity"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// RestoreCounts tallies how many records of each kind a restore inserted.
type RestoreCounts struct {
	Maestros       int `json:"maestros"`
	Formularios    int `json:"formularios"`
	Actividades    int `json:"actividades"`
	Notificaciones int `json:"notificaciones"`
}

// RestoreResultResponse is the outcome of one restore attempt. Phase names the
// last phase reached; on failure the counts cover the work committed before
// the failing phase.
type RestoreResultResponse struct {
	Success          bool                 `json:"success"`
	Phase            string               `json:"phase"`
	Strategy         string               `json:"strategy,omitempty"`
	Inserted         RestoreCounts        `json:"inserted"`
	RecordErrors     []RestoreRecordError `json:"record_errors,omitempty"`
	ValidationErrors []string             `json:"validation_errors,omitempty"`
	Message          string               `json:"message,omitempty"`
}

// BackupStatusResponse summarizes the most recent export and restore runs, as
// cached for the admin dashboard.
type BackupStatusResponse struct {
	LastExport  *BackupRunStatus `json:"last_export"`
	LastRestore *BackupRunStatus `json:"last_restore"`
}

// BackupRunStatus is one cached export or restore run.
type BackupRunStatus struct {
	At      time.Time `json:"at"`
	Success bool      `json:"success"`
	Detail  string    `json:"detail,omitempty"`
}
