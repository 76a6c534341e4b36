package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/common"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), Config{
		DSN:         filepath.Join(t.TempDir(), "test.db"),
		DialTimeout: 3 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestJobLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	jobs := NewJobRepository(store, nil)

	job, err := jobs.Create(ctx, "March", 2025)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Status != constants.JobStatusUploaded {
		t.Errorf("new job status = %s", job.Status)
	}

	got, err := jobs.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Month != "March" || got.Year != 2025 || got.Status != constants.JobStatusUploaded {
		t.Errorf("got %+v", got)
	}

	if _, err := jobs.UpdateStatus(ctx, job.ID, constants.JobStatusValidated); err == nil {
		t.Fatalf("UPLOADED -> VALIDATED must be rejected")
	}

	if _, err := jobs.UpdateStatus(ctx, job.ID, constants.JobStatusProcessing); err != nil {
		t.Fatalf("to processing: %v", err)
	}
	if _, err := jobs.UpdateStatus(ctx, job.ID, constants.JobStatusValidated); err != nil {
		t.Fatalf("to validated: %v", err)
	}
	done, err := jobs.UpdateStatus(ctx, job.ID, constants.JobStatusCompleted)
	if err != nil {
		t.Fatalf("to completed: %v", err)
	}
	if done.CompletedAt == nil {
		t.Errorf("terminal transition must stamp completed_at")
	}

	if _, err := jobs.GetByID(ctx, uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("unknown id: want ErrNotFound, got %v", err)
	}
}

func TestDocumentUpsertByType(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	jobs := NewJobRepository(store, nil)
	docs := NewDocumentRepository(store, nil)

	job, err := jobs.Create(ctx, "March", 2025)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	doc := &entity.Document{
		ID:          uuid.New(),
		JobID:       job.ID,
		FileType:    constants.FilePayroll,
		Filename:    "payroll.pdf",
		SourcePath:  "/tmp/payroll.pdf",
		FileExt:     "pdf",
		FileSize:    1234,
		ContentHash: []byte{0x01, 0x02},
		UploadedAt:  time.Now().UTC(),
	}
	dedup, err := docs.UpsertByType(ctx, doc)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if dedup {
		t.Errorf("first upload is not a duplicate")
	}

	// same content again: dedup no-op
	again := *doc
	again.ID = uuid.New()
	dedup, err = docs.UpsertByType(ctx, &again)
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if !dedup {
		t.Errorf("identical content must deduplicate")
	}

	// different content replaces the previous upload
	replacement := *doc
	replacement.ID = uuid.New()
	replacement.Filename = "payroll_v2.pdf"
	replacement.ContentHash = []byte{0x0a, 0x0b}
	dedup, err = docs.UpsertByType(ctx, &replacement)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if dedup {
		t.Errorf("changed content is not a duplicate")
	}

	got, err := docs.GetByJobAndType(ctx, job.ID, constants.FilePayroll)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Filename != "payroll_v2.pdf" {
		t.Errorf("filename = %q, want the replacement", got.Filename)
	}

	list, err := docs.ListByJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("documents = %d, want 1 after replacement", len(list))
	}
}

func TestExtractionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	jobs := NewJobRepository(store, nil)
	extractions := NewExtractionRepository(store, nil)

	job, err := jobs.Create(ctx, "March", 2025)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	payroll := &entity.PayrollExtraction{
		Period: "March 2025",
		Tutors: []entity.TutorRecord{
			{ID: "T001", Name: "Jane Smith", TotalHours: 42.5, Sessions: []entity.ClockEntry{}},
		},
	}
	if err := extractions.SavePayroll(ctx, job.ID, payroll); err != nil {
		t.Fatalf("save payroll: %v", err)
	}

	got, err := extractions.GetPayroll(ctx, job.ID)
	if err != nil {
		t.Fatalf("get payroll: %v", err)
	}
	if got.Period != "March 2025" || len(got.Tutors) != 1 || got.Tutors[0].Name != "Jane Smith" {
		t.Errorf("round trip lost data: %+v", got)
	}

	if _, err := extractions.GetFeedback(ctx, job.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("missing extraction: want ErrNotFound, got %v", err)
	}
}

func TestExtractionSchemaRejectsBadPayload(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	jobs := NewJobRepository(store, nil)
	extractions := NewExtractionRepository(store, nil)

	job, err := jobs.Create(ctx, "March", 2025)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	// a tutor with an empty id must never reach the store
	bad := &entity.PayrollExtraction{
		Tutors: []entity.TutorRecord{{ID: "", Name: "Nameless", Sessions: []entity.ClockEntry{}}},
	}
	if err := extractions.SavePayroll(ctx, job.ID, bad); err == nil {
		t.Fatalf("schema violation must fail the save")
	}
	if _, err := extractions.GetPayroll(ctx, job.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("rejected payload must not be stored, got %v", err)
	}
}

func TestValidationResultStorage(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	jobs := NewJobRepository(store, nil)
	validations := NewValidationRepository(store, nil)

	job, err := jobs.Create(ctx, "March", 2025)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	exists, err := validations.Exists(ctx, job.ID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Errorf("no result stored yet")
	}

	result := &entity.ValidationResult{
		JobID:  job.ID.String(),
		Status: "invalid",
		Issues: []entity.ValidationIssue{
			{IssueType: constants.IssueTutorNotFound, Severity: constants.SeverityHigh, Description: "ghost"},
		},
		TotalIssues:    1,
		ValidationDate: time.Now().UTC(),
	}
	if err := validations.Save(ctx, result); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := validations.GetByJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "invalid" || len(got.Issues) != 1 || got.Issues[0].IssueType != constants.IssueTutorNotFound {
		t.Errorf("round trip lost data: %+v", got)
	}

	// saving again replaces, never duplicates
	got.Issues[0].Resolved = true
	if err := validations.Save(ctx, got); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	final, err := validations.GetByJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !final.Issues[0].Resolved {
		t.Errorf("resolution flag lost on re-save")
	}
}
