package validate

import (
	"fmt"
	"strings"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/common"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
)

// ApplyResolutions marks the addressed issues resolved, recording the note
// and optional corrected value. Issues are addressed by index into the
// result's list. Re-resolving an already resolved issue is idempotent: the
// latest note and value win. Reports whether every issue in the result is
// now resolved.
func ApplyResolutions(result *entity.ValidationResult, resolutions []entity.Resolution) (bool, error) {
	for _, res := range resolutions {
		if res.IssueID < 0 || res.IssueID >= len(result.Issues) {
			return false, common.InvalidArgumentError(
				fmt.Sprintf("issue %d does not exist, result has %d issues", res.IssueID, len(result.Issues)))
		}
		if strings.TrimSpace(res.Note) == "" {
			return false, common.InvalidArgumentError(fmt.Sprintf("resolution for issue %d has no note", res.IssueID))
		}
		issue := &result.Issues[res.IssueID]
		issue.Resolved = true
		issue.ResolutionNote = res.Note
		if res.CorrectedValue != "" {
			issue.CorrectedValue = res.CorrectedValue
		}
	}
	return AllResolved(result), nil
}

// AllResolved reports whether the result has no outstanding issues. A
// result with zero issues counts as fully resolved.
func AllResolved(result *entity.ValidationResult) bool {
	for _, issue := range result.Issues {
		if !issue.Resolved {
			return false
		}
	}
	return true
}

// Summarize counts a result's issues on the two-level reporting scale.
func Summarize(result *entity.ValidationResult) *entity.ValidationSummary {
	summary := &entity.ValidationSummary{
		TotalIssues: len(result.Issues),
		ByType:      map[string]int{},
		BySeverity:  map[string]int{},
	}
	for _, issue := range result.Issues {
		summary.ByType[string(issue.IssueType)]++
		summary.BySeverity[string(issue.Severity.API())]++
		if issue.Severity.API() == constants.APISeverityError {
			summary.Errors++
		} else {
			summary.Warnings++
		}
		if issue.Resolved {
			summary.Resolved++
		} else {
			summary.Unresolved++
		}
	}
	return summary
}
