package validate

import (
	"testing"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
)

func twoIssueResult() *entity.ValidationResult {
	return &entity.ValidationResult{
		JobID:  "job-1",
		Status: "invalid",
		Issues: []entity.ValidationIssue{
			{IssueType: constants.IssueTutorHoursMismatch, Severity: constants.SeverityHigh, Description: "mismatch"},
			{IssueType: constants.IssueExcessNoShows, Severity: constants.SeverityMedium, Description: "no-shows"},
		},
		TotalIssues: 2,
	}
}

func TestApplyResolutions(t *testing.T) {
	result := twoIssueResult()

	allResolved, err := ApplyResolutions(result, []entity.Resolution{
		{IssueID: 0, Note: "timesheet corrected", CorrectedValue: "42.5"},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if allResolved {
		t.Fatalf("one unresolved issue remains")
	}

	issue := result.Issues[0]
	if !issue.Resolved || issue.ResolutionNote != "timesheet corrected" || issue.CorrectedValue != "42.5" {
		t.Errorf("issue 0 = %+v", issue)
	}
	if result.Issues[1].Resolved {
		t.Errorf("issue 1 must stay unresolved")
	}

	allResolved, err = ApplyResolutions(result, []entity.Resolution{
		{IssueID: 1, Note: "confirmed with caregiver"},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !allResolved {
		t.Fatalf("every issue is resolved now")
	}
}

func TestApplyResolutionsIdempotent(t *testing.T) {
	result := twoIssueResult()

	if _, err := ApplyResolutions(result, []entity.Resolution{{IssueID: 0, Note: "first pass"}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := ApplyResolutions(result, []entity.Resolution{{IssueID: 0, Note: "second pass"}}); err != nil {
		t.Fatalf("re-apply: %v", err)
	}
	if result.Issues[0].ResolutionNote != "second pass" {
		t.Errorf("latest note must win, got %q", result.Issues[0].ResolutionNote)
	}
	if !result.Issues[0].Resolved {
		t.Errorf("issue must stay resolved")
	}
}

func TestApplyResolutionsBadIndex(t *testing.T) {
	result := twoIssueResult()
	if _, err := ApplyResolutions(result, []entity.Resolution{{IssueID: 5, Note: "nope"}}); err == nil {
		t.Fatalf("out-of-range index must fail")
	}
	if _, err := ApplyResolutions(result, []entity.Resolution{{IssueID: -1, Note: "nope"}}); err == nil {
		t.Fatalf("negative index must fail")
	}
	if _, err := ApplyResolutions(result, []entity.Resolution{{IssueID: 0, Note: "   "}}); err == nil {
		t.Fatalf("blank note must fail")
	}
}

func TestAllResolvedEmptyResult(t *testing.T) {
	result := &entity.ValidationResult{Status: "valid"}
	if !AllResolved(result) {
		t.Errorf("zero issues counts as fully resolved")
	}
}

func TestSummarize(t *testing.T) {
	result := twoIssueResult()
	result.Issues[0].Resolved = true
	result.Issues = append(result.Issues, entity.ValidationIssue{
		IssueType: constants.IssueUnparseableTime,
		Severity:  constants.SeverityLow,
	})

	s := Summarize(result)
	if s.TotalIssues != 3 {
		t.Errorf("total = %d", s.TotalIssues)
	}
	if s.Errors != 1 || s.Warnings != 2 {
		t.Errorf("errors/warnings = %d/%d", s.Errors, s.Warnings)
	}
	if s.Resolved != 1 || s.Unresolved != 2 {
		t.Errorf("resolved/unresolved = %d/%d", s.Resolved, s.Unresolved)
	}
	if s.ByType["tutor_hours_mismatch"] != 1 || s.ByType["excess_no_shows"] != 1 || s.ByType["unparseable_time"] != 1 {
		t.Errorf("by type = %v", s.ByType)
	}
	if s.BySeverity["error"] != 1 || s.BySeverity["warning"] != 2 {
		t.Errorf("by severity = %v", s.BySeverity)
	}
}
