package entity

import (
	"time"

	"github.com/brightpath-tutoring/docpipe/constants"
)

// IssueDetails is the per-type detail bag attached to a validation issue.
// Only the fields relevant to the issue type are populated.
type IssueDetails struct {
	TutorName     string        `json:"tutor_name,omitempty"`
	PayrollHours  float64       `json:"payroll_hours,omitempty"`
	FeedbackHours float64       `json:"feedback_hours,omitempty"`
	Difference    float64       `json:"difference,omitempty"`
	Students      []string      `json:"students,omitempty"`
	StudentID     string        `json:"student_id,omitempty"`
	StudentName   string        `json:"student_name,omitempty"`
	Date          string        `json:"date,omitempty"`
	TimeIn        string        `json:"time_in,omitempty"`
	TimeOut       string        `json:"time_out,omitempty"`
	Week          string        `json:"week,omitempty"`
	Month         string        `json:"month,omitempty"`
	TotalHours    float64       `json:"total_hours,omitempty"`
	ExcessHours   float64       `json:"excess_hours,omitempty"`
	Sessions      []WeekSession `json:"sessions,omitempty"`
	NoShowCount   int           `json:"no_show_count,omitempty"`
	ExcessCount   int           `json:"excess_count,omitempty"`
	NoShowDates   []string      `json:"no_show_dates,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// WeekSession is one contributor to an excess_weekly_hours finding.
type WeekSession struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// ValidationIssue is a single flagged inconsistency. Issues are addressed
// by their position in the owning result's list, so the order is part of
// the contract and never changes after creation.
type ValidationIssue struct {
	IssueType      constants.IssueType `json:"issue_type"`
	Severity       constants.Severity  `json:"severity"`
	Description    string              `json:"description"`
	Details        IssueDetails        `json:"details"`
	Resolved       bool                `json:"resolved"`
	ResolutionNote string              `json:"resolution_note,omitempty"`
	CorrectedValue string              `json:"corrected_value,omitempty"`
}

// ValidationResult owns the ordered issue list and aggregate counts for one
// job. Computed once; afterwards only the resolution fields of its issues
// are mutated.
type ValidationResult struct {
	JobID          string            `json:"job_id"`
	Status         string            `json:"status"` // "valid" | "invalid"
	Issues         []ValidationIssue `json:"issues"`
	TotalIssues    int               `json:"total_issues"`
	TotalSessions  int               `json:"total_sessions"`
	TotalStudents  int               `json:"total_students"`
	TotalTutors    int               `json:"total_tutors"`
	TotalHours     float64           `json:"total_hours"`
	ValidationDate time.Time         `json:"validation_date"`
}

// Resolution annotates one issue, addressed by its index in the issue list.
type Resolution struct {
	IssueID        int    `json:"issue_id"`
	Note           string `json:"resolution"`
	CorrectedValue string `json:"corrected_value,omitempty"`
}

// ValidationSummary is the reporting view over a result, counted on the
// two-level severity scale.
type ValidationSummary struct {
	TotalIssues int            `json:"total_issues"`
	Errors      int            `json:"errors"`
	Warnings    int            `json:"warnings"`
	Resolved    int            `json:"resolved"`
	Unresolved  int            `json:"unresolved"`
	ByType      map[string]int `json:"by_type"`
	BySeverity  map[string]int `json:"by_severity"`
}
