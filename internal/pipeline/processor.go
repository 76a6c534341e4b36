package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
	"github.com/brightpath-tutoring/docpipe/internal/repository"
	"github.com/brightpath-tutoring/docpipe/internal/validate"
)

// Processor drives a job through the state machine: extraction, then
// validation, then issue resolution. Every path out of PROCESSING lands
// on VALIDATED or FAILED.
type Processor struct {
	Jobs        repository.JobRepository
	Validations repository.ValidationRepository
	Extract     *ExtractStage
	Validate    *ValidateStage
	Logger      *slog.Logger
}

func NewProcessor(jobs repository.JobRepository, validations repository.ValidationRepository, extract *ExtractStage, validateStage *ValidateStage, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Jobs:        jobs,
		Validations: validations,
		Extract:     extract,
		Validate:    validateStage,
		Logger:      logger,
	}
}

// ProcessJob runs extraction and validation for one job. The returned
// result reflects the job's validation outcome; rule violations are inside
// it, not in the error.
func (p *Processor) ProcessJob(ctx context.Context, jobID uuid.UUID) (*entity.ValidationResult, error) {
	if _, err := p.Jobs.UpdateStatus(ctx, jobID, constants.JobStatusProcessing); err != nil {
		return nil, err
	}

	if _, _, err := p.Extract.Run(ctx, jobID); err != nil {
		p.fail(ctx, jobID)
		return nil, err
	}

	result, err := p.Validate.Run(ctx, jobID)
	if err != nil {
		p.fail(ctx, jobID)
		return nil, err
	}

	if _, err := p.Jobs.UpdateStatus(ctx, jobID, constants.JobStatusValidated); err != nil {
		return result, err
	}
	p.Logger.Info("job processed", "job_id", jobID, "status", result.Status, "issues", result.TotalIssues)
	return result, nil
}

// Resolve applies resolutions to the job's stored result. When every issue
// is resolved the job moves straight from VALIDATED to COMPLETED.
func (p *Processor) Resolve(ctx context.Context, jobID uuid.UUID, resolutions []entity.Resolution) (*entity.ValidationResult, bool, error) {
	result, err := p.Validations.GetByJob(ctx, jobID)
	if err != nil {
		return nil, false, err
	}

	allResolved, err := validate.ApplyResolutions(result, resolutions)
	if err != nil {
		return nil, false, err
	}
	if err := p.Validations.Save(ctx, result); err != nil {
		return nil, false, err
	}

	if allResolved {
		job, err := p.Jobs.GetByID(ctx, jobID)
		if err != nil {
			return result, true, err
		}
		if job.Status == constants.JobStatusValidated {
			if _, err := p.Jobs.UpdateStatus(ctx, jobID, constants.JobStatusCompleted); err != nil {
				return result, true, err
			}
			p.Logger.Info("all issues resolved, job completed", "job_id", jobID)
		}
	}
	return result, allResolved, nil
}

func (p *Processor) fail(ctx context.Context, jobID uuid.UUID) {
	if _, err := p.Jobs.UpdateStatus(ctx, jobID, constants.JobStatusFailed); err != nil {
		p.Logger.Error("failed to mark job failed", "job_id", jobID, "error", err)
	}
}
