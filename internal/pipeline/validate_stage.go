package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/brightpath-tutoring/docpipe/internal/entity"
	"github.com/brightpath-tutoring/docpipe/internal/repository"
	"github.com/brightpath-tutoring/docpipe/internal/validate"
)

// ValidateStage reconciles a job's two stored extractions. Validation runs
// once per job: a re-run returns the stored result untouched, so resolution
// annotations survive pipeline retries.
type ValidateStage struct {
	Extractions repository.ExtractionRepository
	Validations repository.ValidationRepository
	Validator   *validate.Validator
	Logger      *slog.Logger
}

func NewValidateStage(extractions repository.ExtractionRepository, validations repository.ValidationRepository, validator *validate.Validator, logger *slog.Logger) *ValidateStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateStage{Extractions: extractions, Validations: validations, Validator: validator, Logger: logger}
}

// Run produces (or returns) the job's validation result. Both extractions
// must already be stored.
func (s *ValidateStage) Run(ctx context.Context, jobID uuid.UUID) (*entity.ValidationResult, error) {
	if existing, err := s.Validations.GetByJob(ctx, jobID); err == nil {
		s.Logger.Info("validation already exists, returning stored result", "job_id", jobID, "status", existing.Status)
		return existing, nil
	}

	payroll, err := s.Extractions.GetPayroll(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load payroll extraction: %w", err)
	}
	feedback, err := s.Extractions.GetFeedback(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load feedback extraction: %w", err)
	}

	result := s.Validator.Validate(payroll, feedback)
	result.JobID = jobID.String()

	if err := s.Validations.Save(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}
