package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-tutoring/docpipe/constants"
)

// ProcessingJob is one month/year batch of payroll + feedback documents.
// External callers address everything through its id.
type ProcessingJob struct {
	ID          uuid.UUID           `json:"id"`
	Month       string              `json:"month"`
	Year        int                 `json:"year"`
	Status      constants.JobStatus `json:"status"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// Document is one uploaded source file attached to a job.
type Document struct {
	ID          uuid.UUID          `json:"id"`
	JobID       uuid.UUID          `json:"job_id"`
	FileType    constants.FileType `json:"file_type"`
	Filename    string             `json:"filename"`
	SourcePath  string             `json:"source_path"`
	FileExt     string             `json:"file_ext"`
	FileSize    int64              `json:"file_size"`
	ContentHash []byte             `json:"content_hash"`
	UploadedAt  time.Time          `json:"uploaded_at"`
}
