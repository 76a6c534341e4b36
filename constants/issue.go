package constants

// IssueType identifies one class of validation finding. The strings are
// stable: they are stored in validation result documents.
type IssueType string

const (
	IssueTutorHoursMismatch      IssueType = "tutor_hours_mismatch"
	IssueTutorNotFound           IssueType = "tutor_not_found"
	IssueTutorMissingFromPayroll IssueType = "tutor_missing_from_payroll"
	IssueInvalidStartTime        IssueType = "invalid_start_time"
	IssueInvalidEndTime          IssueType = "invalid_end_time"
	IssueUnparseableTime         IssueType = "unparseable_time"
	IssueExcessWeeklyHours       IssueType = "excess_weekly_hours"
	IssueExcessNoShows           IssueType = "excess_no_shows"
)

// Severity is the validator's internal three-level scale.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// APISeverity is the two-level scale the summary/reporting surface expects.
type APISeverity string

const (
	APISeverityError   APISeverity = "error"
	APISeverityWarning APISeverity = "warning"
)

// API maps the internal scale onto the reporting scale: high means someone
// must look before the month closes, everything else is advisory.
func (s Severity) API() APISeverity {
	if s == SeverityHigh {
		return APISeverityError
	}
	return APISeverityWarning
}
