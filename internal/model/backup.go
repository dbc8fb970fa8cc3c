package model

import "time"

type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusUploading BackupStatus = "uploading"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

// Backup is one encrypted snapshot of the day-record store.
type Backup struct {
	ID          int64        `json:"id"`
	S3Key       string       `json:"s3_key"`
	Status      BackupStatus `json:"status"`
	SizeBytes   int64        `json:"size_bytes"`
	RecordCount int          `json:"record_count"`
	Error       string       `json:"error,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
