package repository

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/common"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
)

type DocumentRepository interface {
	GetByJobAndType(ctx context.Context, jobID uuid.UUID, fileType constants.FileType) (*entity.Document, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.Document, error)
	// UpsertByType registers the document, replacing any previous upload of
	// the same type for the job. Reports whether the same content was
	// already registered (a hash match makes the write a no-op).
	UpsertByType(ctx context.Context, doc *entity.Document) (bool, error)
}

type documentRepo struct {
	store  *Store
	logger *slog.Logger
}

func NewDocumentRepository(store *Store, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{store: store, logger: logger}
}

func (r *documentRepo) GetByJobAndType(ctx context.Context, jobID uuid.UUID, fileType constants.FileType) (*entity.Document, error) {
	row := r.store.db.QueryRowContext(ctx, r.store.rebind(
		`SELECT id, job_id, file_type, filename, source_path, file_ext, file_size, content_hash, uploaded_at
		 FROM documents WHERE job_id = ? AND file_type = ?`),
		jobID.String(), string(fileType))
	return scanDocument(row)
}

func (r *documentRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.Document, error) {
	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(
		`SELECT id, job_id, file_type, filename, source_path, file_ext, file_size, content_hash, uploaded_at
		 FROM documents WHERE job_id = ? ORDER BY file_type`),
		jobID.String())
	if err != nil {
		return nil, common.WrapError(err, "list documents")
	}
	defer func() { _ = rows.Close() }()

	var docs []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *documentRepo) UpsertByType(ctx context.Context, doc *entity.Document) (bool, error) {
	if existing, err := r.GetByJobAndType(ctx, doc.JobID, doc.FileType); err == nil {
		if hex.EncodeToString(existing.ContentHash) == hex.EncodeToString(doc.ContentHash) {
			r.logger.Info("document already registered", "job_id", doc.JobID, "file_type", doc.FileType)
			doc.ID = existing.ID
			return true, nil
		}
	}

	_, err := r.store.db.ExecContext(ctx, r.store.rebind(
		`INSERT INTO documents (id, job_id, file_type, filename, source_path, file_ext, file_size, content_hash, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (job_id, file_type) DO UPDATE SET
			id = excluded.id,
			filename = excluded.filename,
			source_path = excluded.source_path,
			file_ext = excluded.file_ext,
			file_size = excluded.file_size,
			content_hash = excluded.content_hash,
			uploaded_at = excluded.uploaded_at`),
		doc.ID.String(), doc.JobID.String(), string(doc.FileType), doc.Filename, doc.SourcePath,
		doc.FileExt, doc.FileSize, hex.EncodeToString(doc.ContentHash), formatTime(doc.UploadedAt))
	if err != nil {
		r.logger.Error("failed to upsert document", "job_id", doc.JobID, "file_type", doc.FileType, "error", err)
		return false, common.WrapError(err, "upsert document")
	}
	r.logger.Info("document registered", "job_id", doc.JobID, "file_type", doc.FileType, "filename", doc.Filename)
	return false, nil
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		idStr      string
		jobIDStr   string
		typeStr    string
		hashHex    string
		uploadedAt string
		doc        entity.Document
	)
	err := row.Scan(&idStr, &jobIDStr, &typeStr, &doc.Filename, &doc.SourcePath,
		&doc.FileExt, &doc.FileSize, &hashHex, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("DOCUMENT_NOT_FOUND", "document not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "scan document")
	}

	doc.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, common.WrapError(err, "parse document id")
	}
	doc.JobID, err = uuid.Parse(jobIDStr)
	if err != nil {
		return nil, common.WrapError(err, "parse document job id")
	}
	doc.FileType = constants.FileType(typeStr)
	doc.ContentHash, err = hex.DecodeString(hashHex)
	if err != nil {
		return nil, common.WrapError(err, "decode content hash")
	}
	doc.UploadedAt = parseTime(uploadedAt)
	return &doc, nil
}
