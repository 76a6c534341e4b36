package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/common"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
	"github.com/brightpath-tutoring/docpipe/internal/repository"
)

// IngestionResult summarizes one registered source document.
type IngestionResult struct {
	DocumentID   string
	SourcePath   string
	FileType     constants.FileType
	FileExt      string
	HashHex      string
	Deduplicated bool
	UploadedAt   time.Time
}

// Ingestor registers monthly source documents against a job. Each job takes
// at most one payroll and one feedback document; re-registering the same
// content is a dedup no-op, different content replaces the previous upload.
type Ingestor struct {
	jobs   repository.JobRepository
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewIngestor(jobs repository.JobRepository, docs repository.DocumentRepository, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{jobs: jobs, docs: docs, logger: logger}
}

// IngestPath registers the file at path under the given type. Pass an empty
// fileType to detect it from the filename.
func (i *Ingestor) IngestPath(ctx context.Context, jobID uuid.UUID, path string, fileType constants.FileType) (*IngestionResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, common.WrapError(err, "resolve path")
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return nil, common.NewAppError("UNSUPPORTED_EXTENSION",
			fmt.Sprintf("unsupported or missing extension: %q", ext), common.ErrInvalidInput)
	}

	if fileType == "" {
		fileType = DetectFileType(abs)
	}
	if fileType != constants.FilePayroll && fileType != constants.FileFeedback {
		return nil, common.NewAppError("UNKNOWN_FILE_TYPE",
			fmt.Sprintf("cannot determine file type for %s", filepath.Base(abs)), common.ErrInvalidInput)
	}

	// the job must exist and be in a state that still accepts uploads
	job, err := i.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return nil, common.NewAppError("JOB_CLOSED",
			fmt.Sprintf("job %s is %s and accepts no more uploads", jobID, job.Status), common.ErrInvalidInput)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, common.WrapError(err, "open source file")
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return nil, common.WrapError(err, "hash source file")
	}
	sum := h.Sum(nil)
	now := time.Now().UTC()

	doc := &entity.Document{
		ID:          uuid.New(),
		JobID:       jobID,
		FileType:    fileType,
		Filename:    filepath.Base(abs),
		SourcePath:  abs,
		FileExt:     ext,
		FileSize:    size,
		ContentHash: sum,
		UploadedAt:  now,
	}
	dedup, err := i.docs.UpsertByType(ctx, doc)
	if err != nil {
		return nil, err
	}

	i.logger.Info("document ingested",
		"job_id", jobID, "file_type", fileType, "filename", doc.Filename,
		"size", size, "deduplicated", dedup)
	return &IngestionResult{
		DocumentID:   doc.ID.String(),
		SourcePath:   abs,
		FileType:     fileType,
		FileExt:      ext,
		HashHex:      fmt.Sprintf("%x", sum),
		Deduplicated: dedup,
		UploadedAt:   now,
	}, nil
}

// DetectFileType guesses the document type from the filename: an explicit
// hint in the name wins, otherwise the extension decides (payroll arrives
// as PDF, feedback as a workbook).
func DetectFileType(path string) constants.FileType {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "payroll"):
		return constants.FilePayroll
	case strings.Contains(name, "feedback"):
		return constants.FileFeedback
	}
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.PDF:
		return constants.FilePayroll
	case constants.XLSX:
		return constants.FileFeedback
	}
	return ""
}
