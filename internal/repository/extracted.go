package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-tutoring/docpipe/internal/common"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
)

// ExtractionRepository persists parser outputs as JSON documents, one per
// (job, document type). Payloads are schema-checked on the way in.
type ExtractionRepository interface {
	SavePayroll(ctx context.Context, jobID uuid.UUID, data *entity.PayrollExtraction) error
	SaveFeedback(ctx context.Context, jobID uuid.UUID, data *entity.FeedbackExtraction) error
	GetPayroll(ctx context.Context, jobID uuid.UUID) (*entity.PayrollExtraction, error)
	GetFeedback(ctx context.Context, jobID uuid.UUID) (*entity.FeedbackExtraction, error)
}

type extractionRepo struct {
	store  *Store
	logger *slog.Logger
}

func NewExtractionRepository(store *Store, logger *slog.Logger) ExtractionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &extractionRepo{store: store, logger: logger}
}

func (r *extractionRepo) SavePayroll(ctx context.Context, jobID uuid.UUID, data *entity.PayrollExtraction) error {
	return r.save(ctx, jobID, "payroll", data)
}

func (r *extractionRepo) SaveFeedback(ctx context.Context, jobID uuid.UUID, data *entity.FeedbackExtraction) error {
	return r.save(ctx, jobID, "feedback", data)
}

func (r *extractionRepo) GetPayroll(ctx context.Context, jobID uuid.UUID) (*entity.PayrollExtraction, error) {
	var out entity.PayrollExtraction
	if err := r.load(ctx, jobID, "payroll", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *extractionRepo) GetFeedback(ctx context.Context, jobID uuid.UUID) (*entity.FeedbackExtraction, error) {
	var out entity.FeedbackExtraction
	if err := r.load(ctx, jobID, "feedback", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *extractionRepo) save(ctx context.Context, jobID uuid.UUID, docType string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return common.WrapError(err, "marshal extraction")
	}
	if err := validatePayload(docType, raw); err != nil {
		r.logger.Error("extraction payload failed schema check", "job_id", jobID, "doc_type", docType, "error", err)
		return common.NewAppError("SCHEMA_VIOLATION", "extraction payload failed schema check", err)
	}

	_, err = r.store.db.ExecContext(ctx, r.store.rebind(
		`INSERT INTO extractions (job_id, doc_type, payload, extracted_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (job_id, doc_type) DO UPDATE SET
			payload = excluded.payload,
			extracted_at = excluded.extracted_at`),
		jobID.String(), docType, string(raw), formatTime(time.Now()))
	if err != nil {
		r.logger.Error("failed to save extraction", "job_id", jobID, "doc_type", docType, "error", err)
		return common.WrapError(err, "save extraction")
	}
	r.logger.Info("extraction saved", "job_id", jobID, "doc_type", docType, "bytes", len(raw))
	return nil
}

func (r *extractionRepo) load(ctx context.Context, jobID uuid.UUID, docType string, out interface{}) error {
	var payload string
	err := r.store.db.QueryRowContext(ctx, r.store.rebind(
		`SELECT payload FROM extractions WHERE job_id = ? AND doc_type = ?`),
		jobID.String(), docType).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return common.NewAppError("EXTRACTION_NOT_FOUND", "no "+docType+" extraction for job", common.ErrNotFound)
	}
	if err != nil {
		return common.WrapError(err, "load extraction")
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return common.WrapError(err, "unmarshal extraction")
	}
	return nil
}
