package chat

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// ArchiveJob tracks one write-behind snapshot request. The queue carries only
// the job id; the worker re-reads the session, so a job always archives the
// latest state no matter how stale the delivery is.
type ArchiveJob struct {
	ID        string    `gorm:"primaryKey;size:26"` // ULID
	SessionID string    `gorm:"size:26;index;not null"`
	Status    JobStatus `gorm:"type:varchar(16);index;not null"`

	// filled when failed
	Error *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ArchiveJob) TableName() string { return "archive_jobs" }
