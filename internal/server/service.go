package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/status"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/async"
	"github.com/brightpath-tutoring/docpipe/internal/common"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
	"github.com/brightpath-tutoring/docpipe/internal/export"
	"github.com/brightpath-tutoring/docpipe/internal/extract"
	"github.com/brightpath-tutoring/docpipe/internal/ingest"
	"github.com/brightpath-tutoring/docpipe/internal/parse"
	"github.com/brightpath-tutoring/docpipe/internal/pipeline"
	"github.com/brightpath-tutoring/docpipe/internal/repository"
	"github.com/brightpath-tutoring/docpipe/internal/validate"
)

// PipelineService is the transport-agnostic facade over the whole
// pipeline. Its errors follow the gRPC status vocabulary so any wire
// surface put in front of it maps codes one to one.
type PipelineService struct {
	Jobs        repository.JobRepository
	Validations repository.ValidationRepository
	Ingestor    *ingest.Ingestor
	Processor   *pipeline.Processor
	Exporter    *export.Service
	Cascade     *extract.Cascade
	Queue       async.Queue
	Logger      *slog.Logger
}

func NewPipelineService(
	jobs repository.JobRepository,
	validations repository.ValidationRepository,
	ingestor *ingest.Ingestor,
	processor *pipeline.Processor,
	exporter *export.Service,
	cascade *extract.Cascade,
	queue async.Queue,
	logger *slog.Logger,
) *PipelineService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineService{
		Jobs:        jobs,
		Validations: validations,
		Ingestor:    ingestor,
		Processor:   processor,
		Exporter:    exporter,
		Cascade:     cascade,
		Queue:       queue,
		Logger:      logger,
	}
}

// ExtractPayroll runs the OCR cascade and payroll parser on a file
// directly, store untouched. Ad-hoc inspection of a source document.
func (s *PipelineService) ExtractPayroll(ctx context.Context, path string) (*entity.PayrollExtraction, error) {
	if path == "" {
		return nil, common.InvalidArgumentError("path is required")
	}
	text, err := s.Cascade.ExtractText(ctx, path)
	if err != nil {
		return nil, s.mapError(err, "extract payroll failed")
	}
	return parse.ParsePayroll(text), nil
}

// ExtractFeedback parses a feedback workbook directly, store untouched.
func (s *PipelineService) ExtractFeedback(ctx context.Context, path string) (*entity.FeedbackExtraction, error) {
	if path == "" {
		return nil, common.InvalidArgumentError("path is required")
	}
	data, err := parse.ParseFeedback(path)
	if err != nil {
		s.Logger.Warn("extract feedback failed", "path", path, "error", err)
		return nil, common.InvalidArgumentError(fmt.Sprintf("parse workbook: %v", err))
	}
	return data, nil
}

// CreateJob opens a new monthly processing job.
func (s *PipelineService) CreateJob(ctx context.Context, month string, year int) (*entity.ProcessingJob, error) {
	if month == "" {
		return nil, common.InvalidArgumentError("month is required")
	}
	if year <= 0 {
		return nil, common.InvalidArgumentError("year is required")
	}
	job, err := s.Jobs.Create(ctx, month, year)
	if err != nil {
		s.Logger.Warn("create job failed", "error", err)
		return nil, common.InternalError("create job failed")
	}
	return job, nil
}

// GetJob fetches one job by id.
func (s *PipelineService) GetJob(ctx context.Context, jobID uuid.UUID) (*entity.ProcessingJob, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, s.mapError(err, "get job failed")
	}
	return job, nil
}

// ListJobs returns the most recent jobs.
func (s *PipelineService) ListJobs(ctx context.Context, limit int) ([]*entity.ProcessingJob, error) {
	jobs, err := s.Jobs.List(ctx, limit)
	if err != nil {
		s.Logger.Warn("list jobs failed", "error", err)
		return nil, common.InternalError("list jobs failed")
	}
	return jobs, nil
}

// UploadDocument registers one source file against a job. An empty
// fileType means detect from the filename.
func (s *PipelineService) UploadDocument(ctx context.Context, jobID uuid.UUID, path string, fileType constants.FileType) (*ingest.IngestionResult, error) {
	if path == "" {
		return nil, common.InvalidArgumentError("path is required")
	}
	res, err := s.Ingestor.IngestPath(ctx, jobID, path, fileType)
	if err != nil {
		return nil, s.mapError(err, "upload document failed")
	}
	return res, nil
}

// ProcessJob runs extraction and validation synchronously.
func (s *PipelineService) ProcessJob(ctx context.Context, jobID uuid.UUID) (*entity.ValidationResult, error) {
	result, err := s.Processor.ProcessJob(ctx, jobID)
	if err != nil {
		return nil, s.mapError(err, "process job failed")
	}
	return result, nil
}

// EnqueueJob hands the job to the background workers.
func (s *PipelineService) EnqueueJob(ctx context.Context, jobID uuid.UUID) error {
	if err := s.Queue.Enqueue(ctx, async.Job{JobID: jobID}); err != nil {
		if errors.Is(err, async.ErrQueueFull) {
			return common.FailedPreconditionError("processing queue is full, retry later")
		}
		s.Logger.Warn("enqueue failed", "job_id", jobID, "error", err)
		return common.InternalError("enqueue failed")
	}
	return nil
}

// GetValidationResult returns the stored result for a job.
func (s *PipelineService) GetValidationResult(ctx context.Context, jobID uuid.UUID) (*entity.ValidationResult, error) {
	result, err := s.Validations.GetByJob(ctx, jobID)
	if err != nil {
		return nil, s.mapError(err, "get validation result failed")
	}
	return result, nil
}

// ResolveIssues applies resolution annotations to a job's stored issues.
func (s *PipelineService) ResolveIssues(ctx context.Context, jobID uuid.UUID, resolutions []entity.Resolution) (*entity.ValidationResult, bool, error) {
	if len(resolutions) == 0 {
		return nil, false, common.InvalidArgumentError("at least one resolution is required")
	}
	result, allResolved, err := s.Processor.Resolve(ctx, jobID, resolutions)
	if err != nil {
		return nil, false, s.mapError(err, "resolve issues failed")
	}
	return result, allResolved, nil
}

// GetValidationSummary counts a job's issues on the reporting scale.
func (s *PipelineService) GetValidationSummary(ctx context.Context, jobID uuid.UUID) (*entity.ValidationSummary, error) {
	result, err := s.Validations.GetByJob(ctx, jobID)
	if err != nil {
		return nil, s.mapError(err, "get validation summary failed")
	}
	return validate.Summarize(result), nil
}

// ExportIssueReport renders a job's issues as XLSX bytes.
func (s *PipelineService) ExportIssueReport(ctx context.Context, jobID uuid.UUID) ([]byte, error) {
	data, err := s.Exporter.ExportIssueReportXLSX(ctx, jobID)
	if err != nil {
		return nil, s.mapError(err, "export issue report failed")
	}
	return data, nil
}

// mapError translates repository/pipeline errors into status errors. A
// status error coming up from a lower layer passes through untouched.
func (s *PipelineService) mapError(err error, msg string) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return common.NotFoundError(err.Error())
	case errors.Is(err, common.ErrInvalidInput):
		return common.InvalidArgumentError(err.Error())
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		s.Logger.Warn(msg, "code", appErr.Code, "error", err)
		return common.InternalErrorf("%s: %s", msg, appErr.Code)
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	s.Logger.Warn(msg, "error", err)
	return common.InternalError(fmt.Sprintf("%s: %v", msg, err))
}
