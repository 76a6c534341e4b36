package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
	"github.com/brightpath-tutoring/docpipe/internal/extract"
	"github.com/brightpath-tutoring/docpipe/internal/parse"
	"github.com/brightpath-tutoring/docpipe/internal/repository"
)

// ExtractStage pulls both source documents for a job through their
// extractors and persists the results. The two extractions are independent
// and run in parallel; each one that succeeds is persisted even when the
// other fails, so a rerun only redoes the broken side.
type ExtractStage struct {
	Docs        repository.DocumentRepository
	Extractions repository.ExtractionRepository
	Cascade     *extract.Cascade
	Logger      *slog.Logger
}

func NewExtractStage(docs repository.DocumentRepository, extractions repository.ExtractionRepository, cascade *extract.Cascade, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Docs: docs, Extractions: extractions, Cascade: cascade, Logger: logger}
}

// Run extracts payroll and feedback for the job and returns both documents.
func (s *ExtractStage) Run(ctx context.Context, jobID uuid.UUID) (*entity.PayrollExtraction, *entity.FeedbackExtraction, error) {
	var (
		payroll  *entity.PayrollExtraction
		feedback *entity.FeedbackExtraction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payroll, err = s.runPayroll(gctx, jobID)
		return err
	})
	g.Go(func() error {
		var err error
		feedback, err = s.runFeedback(gctx, jobID)
		return err
	})
	if err := g.Wait(); err != nil {
		return payroll, feedback, err
	}
	return payroll, feedback, nil
}

func (s *ExtractStage) runPayroll(ctx context.Context, jobID uuid.UUID) (*entity.PayrollExtraction, error) {
	doc, err := s.Docs.GetByJobAndType(ctx, jobID, constants.FilePayroll)
	if err != nil {
		return nil, fmt.Errorf("get payroll document: %w", err)
	}

	text, err := s.Cascade.ExtractText(ctx, doc.SourcePath)
	if err != nil {
		s.Logger.Error("payroll text extraction failed", "job_id", jobID, "path", doc.SourcePath, "error", err)
		return nil, fmt.Errorf("extract payroll text: %w", err)
	}

	data := parse.ParsePayroll(text)
	s.Logger.Info("payroll extracted", "job_id", jobID, "tutors", len(data.Tutors), "period", data.Period)

	if err := s.Extractions.SavePayroll(ctx, jobID, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *ExtractStage) runFeedback(ctx context.Context, jobID uuid.UUID) (*entity.FeedbackExtraction, error) {
	doc, err := s.Docs.GetByJobAndType(ctx, jobID, constants.FileFeedback)
	if err != nil {
		return nil, fmt.Errorf("get feedback document: %w", err)
	}

	data, err := parse.ParseFeedback(doc.SourcePath)
	if err != nil {
		s.Logger.Error("feedback workbook parse failed", "job_id", jobID, "path", doc.SourcePath, "error", err)
		return nil, fmt.Errorf("parse feedback workbook: %w", err)
	}
	s.Logger.Info("feedback extracted", "job_id", jobID, "students", len(data.Students), "sessions", len(data.Sessions))

	if err := s.Extractions.SaveFeedback(ctx, jobID, data); err != nil {
		return nil, err
	}
	return data, nil
}
