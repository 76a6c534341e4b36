package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/brightpath-tutoring/docpipe/internal/common"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
)

// ValidationRepository stores at most one result per job. Save replaces any
// previous result wholesale; issue resolution goes through Save too, since
// resolution only mutates fields inside the stored document.
type ValidationRepository interface {
	Save(ctx context.Context, result *entity.ValidationResult) error
	GetByJob(ctx context.Context, jobID uuid.UUID) (*entity.ValidationResult, error)
	Exists(ctx context.Context, jobID uuid.UUID) (bool, error)
}

type validationRepo struct {
	store  *Store
	logger *slog.Logger
}

func NewValidationRepository(store *Store, logger *slog.Logger) ValidationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &validationRepo{store: store, logger: logger}
}

func (r *validationRepo) Save(ctx context.Context, result *entity.ValidationResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return common.WrapError(err, "marshal validation result")
	}
	_, err = r.store.db.ExecContext(ctx, r.store.rebind(
		`INSERT INTO validation_results (job_id, payload, validated_at) VALUES (?, ?, ?)
		 ON CONFLICT (job_id) DO UPDATE SET
			payload = excluded.payload,
			validated_at = excluded.validated_at`),
		result.JobID, string(raw), formatTime(result.ValidationDate))
	if err != nil {
		r.logger.Error("failed to save validation result", "job_id", result.JobID, "error", err)
		return common.WrapError(err, "save validation result")
	}
	r.logger.Info("validation result saved", "job_id", result.JobID, "status", result.Status, "issues", result.TotalIssues)
	return nil
}

func (r *validationRepo) GetByJob(ctx context.Context, jobID uuid.UUID) (*entity.ValidationResult, error) {
	var payload string
	err := r.store.db.QueryRowContext(ctx, r.store.rebind(
		`SELECT payload FROM validation_results WHERE job_id = ?`),
		jobID.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("VALIDATION_NOT_FOUND", "no validation result for job", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "load validation result")
	}

	var result entity.ValidationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, common.WrapError(err, "unmarshal validation result")
	}
	return &result, nil
}

func (r *validationRepo) Exists(ctx context.Context, jobID uuid.UUID) (bool, error) {
	var one int
	err := r.store.db.QueryRowContext(ctx, r.store.rebind(
		`SELECT 1 FROM validation_results WHERE job_id = ?`),
		jobID.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, common.WrapError(err, "check validation result")
	}
	return true, nil
}
