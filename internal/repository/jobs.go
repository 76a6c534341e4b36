package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/common"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
)

type JobRepository interface {
	Create(ctx context.Context, month string, year int) (*entity.ProcessingJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ProcessingJob, error)
	List(ctx context.Context, limit int) ([]*entity.ProcessingJob, error)
	// UpdateStatus enforces the job state machine; an illegal edge is an
	// error and leaves the row untouched.
	UpdateStatus(ctx context.Context, id uuid.UUID, next constants.JobStatus) (*entity.ProcessingJob, error)
}

type jobRepo struct {
	store  *Store
	logger *slog.Logger
}

func NewJobRepository(store *Store, logger *slog.Logger) JobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &jobRepo{store: store, logger: logger}
}

func (r *jobRepo) Create(ctx context.Context, month string, year int) (*entity.ProcessingJob, error) {
	job := &entity.ProcessingJob{
		ID:        uuid.New(),
		Month:     month,
		Year:      year,
		Status:    constants.JobStatusUploaded,
		StartedAt: time.Now().UTC(),
	}
	_, err := r.store.db.ExecContext(ctx, r.store.rebind(
		`INSERT INTO jobs (id, month, year, status, started_at) VALUES (?, ?, ?, ?, ?)`),
		job.ID.String(), job.Month, job.Year, string(job.Status), formatTime(job.StartedAt))
	if err != nil {
		r.logger.Error("failed to create job", "month", month, "year", year, "error", err)
		return nil, common.WrapError(err, "create job")
	}
	r.logger.Info("job created", "job_id", job.ID, "month", month, "year", year)
	return job, nil
}

func (r *jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ProcessingJob, error) {
	row := r.store.db.QueryRowContext(ctx, r.store.rebind(
		`SELECT id, month, year, status, started_at, completed_at FROM jobs WHERE id = ?`),
		id.String())
	return scanJob(row)
}

func (r *jobRepo) List(ctx context.Context, limit int) ([]*entity.ProcessingJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(
		`SELECT id, month, year, status, started_at, completed_at FROM jobs ORDER BY started_at DESC LIMIT ?`),
		limit)
	if err != nil {
		return nil, common.WrapError(err, "list jobs")
	}
	defer func() { _ = rows.Close() }()

	var jobs []*entity.ProcessingJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *jobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, next constants.JobStatus) (*entity.ProcessingJob, error) {
	job, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.Status.CanTransition(next) {
		return nil, common.NewAppError("ILLEGAL_TRANSITION",
			fmt.Sprintf("job %s cannot move from %s to %s", id, job.Status, next),
			common.ErrInvalidInput)
	}

	var completedAt *time.Time
	if next == constants.JobStatusCompleted || next == constants.JobStatusFailed {
		now := time.Now().UTC()
		completedAt = &now
	}

	var completedVal interface{}
	if completedAt != nil {
		completedVal = formatTime(*completedAt)
	}
	_, err = r.store.db.ExecContext(ctx, r.store.rebind(
		`UPDATE jobs SET status = ?, completed_at = ? WHERE id = ?`),
		string(next), completedVal, id.String())
	if err != nil {
		r.logger.Error("failed to update job status", "job_id", id, "status", next, "error", err)
		return nil, common.WrapError(err, "update job status")
	}

	r.logger.Info("job status updated", "job_id", id, "from", job.Status, "to", next)
	job.Status = next
	job.CompletedAt = completedAt
	return job, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*entity.ProcessingJob, error) {
	var (
		idStr       string
		statusStr   string
		startedAt   string
		completedAt sql.NullString
		job         entity.ProcessingJob
	)
	err := row.Scan(&idStr, &job.Month, &job.Year, &statusStr, &startedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("JOB_NOT_FOUND", "job not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "scan job")
	}

	job.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, common.WrapError(err, "parse job id")
	}
	job.Status = constants.JobStatus(statusStr)
	job.StartedAt = parseTime(startedAt)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		job.CompletedAt = &t
	}
	return &job, nil
}
