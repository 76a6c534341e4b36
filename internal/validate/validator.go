package validate

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
	"github.com/brightpath-tutoring/docpipe/internal/parse"
)

// Config holds the business-rule thresholds. Zero values fall back to the
// documented defaults so a bare Validator behaves per SOP.
type Config struct {
	HourGapThreshold float64 // flag tutor gaps above this, default 0.5
	HighGapThreshold float64 // gaps above this are high severity, default 2
	WeeklyHourCap    float64 // per-student ISO-week cap, default 4
	MonthlyNoShowCap int     // per-student calendar-month cap, default 2
	WorkdayStart     string  // earliest session start, default "10:00 AM"
	WorkdayEnd       string  // latest session end, default "7:00 PM"
}

// Validator reconciles the two extractions against each other and the
// business rules. Rule violations are data, not errors: Validate never
// fails, it grades.
type Validator struct {
	cfg    Config
	logger *slog.Logger
}

func NewValidator(cfg Config, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HourGapThreshold <= 0 {
		cfg.HourGapThreshold = 0.5
	}
	if cfg.HighGapThreshold <= 0 {
		cfg.HighGapThreshold = 2
	}
	if cfg.WeeklyHourCap <= 0 {
		cfg.WeeklyHourCap = 4
	}
	if cfg.MonthlyNoShowCap <= 0 {
		cfg.MonthlyNoShowCap = 2
	}
	if cfg.WorkdayStart == "" {
		cfg.WorkdayStart = "10:00 AM"
	}
	if cfg.WorkdayEnd == "" {
		cfg.WorkdayEnd = "7:00 PM"
	}
	return &Validator{cfg: cfg, logger: logger}
}

// Validate runs the four checks in fixed order (tutor hours, working
// hours, weekly cap, no-show cap) and concatenates their issues. The
// order is part of the contract: issues are later addressed by index.
// Status is a binary gate: any issue at all, regardless of severity,
// makes the result invalid.
func (v *Validator) Validate(payroll *entity.PayrollExtraction, feedback *entity.FeedbackExtraction) *entity.ValidationResult {
	var issues []entity.ValidationIssue
	issues = append(issues, v.checkTutorHours(payroll, feedback)...)
	issues = append(issues, v.checkWorkingHours(feedback)...)
	issues = append(issues, v.checkWeeklyHours(feedback)...)
	issues = append(issues, v.checkNoShows(feedback)...)

	status := "valid"
	if len(issues) > 0 {
		status = "invalid"
	}

	totalHours := 0.0
	for _, s := range feedback.Sessions {
		totalHours += s.Hours
	}

	result := &entity.ValidationResult{
		Status:         status,
		Issues:         issues,
		TotalIssues:    len(issues),
		TotalSessions:  len(feedback.Sessions),
		TotalStudents:  len(feedback.Students),
		TotalTutors:    len(payroll.Tutors),
		TotalHours:     totalHours,
		ValidationDate: time.Now().UTC(),
	}
	v.logger.Info("validation complete",
		"status", status,
		"issues", len(issues),
		"sessions", result.TotalSessions,
		"students", result.TotalStudents,
		"tutors", result.TotalTutors,
	)
	return result
}

type tutorTally struct {
	students []string
	hours    float64
}

// checkTutorHours reconciles payroll-reported totals against hours summed
// from feedback sessions, per tutor name. Matching is exact after
// trimming, no fuzzy matching.
func (v *Validator) checkTutorHours(payroll *entity.PayrollExtraction, feedback *entity.FeedbackExtraction) []entity.ValidationIssue {
	var issues []entity.ValidationIssue

	// tutor name per student id, and tallies keyed by tutor in
	// first-seen order so issue order is deterministic
	tallies := map[string]*tutorTally{}
	var tutorOrder []string
	studentTutor := map[string]string{}
	for _, student := range feedback.Students {
		tutor := strings.TrimSpace(student.TutorAssigned)
		if tutor == "" {
			continue
		}
		if _, ok := tallies[tutor]; !ok {
			tallies[tutor] = &tutorTally{}
			tutorOrder = append(tutorOrder, tutor)
		}
		tallies[tutor].students = append(tallies[tutor].students, student.FullName)
		studentTutor[student.ID] = tutor
	}
	for _, session := range feedback.Sessions {
		if tutor, ok := studentTutor[session.StudentID]; ok {
			tallies[tutor].hours += session.Hours
		}
	}

	payrollTutors := map[string]bool{}
	for _, tutor := range payroll.Tutors {
		name := strings.TrimSpace(tutor.Name)
		payrollTutors[name] = true

		tally, ok := tallies[name]
		if !ok {
			issues = append(issues, entity.ValidationIssue{
				IssueType:   constants.IssueTutorNotFound,
				Severity:    constants.SeverityHigh,
				Description: fmt.Sprintf("Tutor %s found in payroll but not in feedback data", name),
				Details: entity.IssueDetails{
					TutorName:    name,
					PayrollHours: tutor.TotalHours,
				},
			})
			continue
		}

		diff := math.Abs(tutor.TotalHours - tally.hours)
		if diff > v.cfg.HourGapThreshold {
			severity := constants.SeverityMedium
			if diff > v.cfg.HighGapThreshold {
				severity = constants.SeverityHigh
			}
			issues = append(issues, entity.ValidationIssue{
				IssueType:   constants.IssueTutorHoursMismatch,
				Severity:    severity,
				Description: fmt.Sprintf("Tutor hours mismatch for %s", name),
				Details: entity.IssueDetails{
					TutorName:     name,
					PayrollHours:  tutor.TotalHours,
					FeedbackHours: tally.hours,
					Difference:    diff,
					Students:      tally.students,
				},
			})
		}
	}

	for _, name := range tutorOrder {
		if payrollTutors[name] {
			continue
		}
		issues = append(issues, entity.ValidationIssue{
			IssueType:   constants.IssueTutorMissingFromPayroll,
			Severity:    constants.SeverityHigh,
			Description: fmt.Sprintf("Tutor %s found in feedback data but not in payroll", name),
			Details: entity.IssueDetails{
				TutorName:     name,
				FeedbackHours: tallies[name].hours,
				Students:      tallies[name].students,
			},
		})
	}
	return issues
}

// checkWorkingHours flags sessions outside the allowed window. Sessions
// whose stored times cannot be parsed back into a time of day get a low
// severity unparseable_time finding instead.
func (v *Validator) checkWorkingHours(feedback *entity.FeedbackExtraction) []entity.ValidationIssue {
	var issues []entity.ValidationIssue

	workStart, _ := time.Parse(parse.TimeLayout, v.cfg.WorkdayStart)
	workEnd, _ := time.Parse(parse.TimeLayout, v.cfg.WorkdayEnd)

	for _, session := range feedback.Sessions {
		if session.IsNoShow {
			continue
		}
		if session.TimeIn == "" || session.TimeOut == "" {
			continue
		}

		timeIn, errIn := time.Parse(parse.TimeLayout, session.TimeIn)
		timeOut, errOut := time.Parse(parse.TimeLayout, session.TimeOut)
		if errIn != nil || errOut != nil {
			parseErr := errIn
			if parseErr == nil {
				parseErr = errOut
			}
			issues = append(issues, entity.ValidationIssue{
				IssueType:   constants.IssueUnparseableTime,
				Severity:    constants.SeverityLow,
				Description: fmt.Sprintf("Unable to parse time for %s", session.StudentName),
				Details: entity.IssueDetails{
					StudentName: session.StudentName,
					Date:        session.Date,
					TimeIn:      session.TimeIn,
					TimeOut:     session.TimeOut,
					Error:       parseErr.Error(),
				},
			})
			continue
		}

		if minutesOfDay(timeIn) < minutesOfDay(workStart) {
			issues = append(issues, entity.ValidationIssue{
				IssueType:   constants.IssueInvalidStartTime,
				Severity:    constants.SeverityMedium,
				Description: fmt.Sprintf("Session for %s starts before %s", session.StudentName, v.cfg.WorkdayStart),
				Details: entity.IssueDetails{
					StudentName: session.StudentName,
					Date:        session.Date,
					TimeIn:      session.TimeIn,
					TimeOut:     session.TimeOut,
				},
			})
		}
		if minutesOfDay(timeOut) > minutesOfDay(workEnd) {
			issues = append(issues, entity.ValidationIssue{
				IssueType:   constants.IssueInvalidEndTime,
				Severity:    constants.SeverityMedium,
				Description: fmt.Sprintf("Session for %s ends after %s", session.StudentName, v.cfg.WorkdayEnd),
				Details: entity.IssueDetails{
					StudentName: session.StudentName,
					Date:        session.Date,
					TimeIn:      session.TimeIn,
					TimeOut:     session.TimeOut,
				},
			})
		}
	}
	return issues
}

type weekTally struct {
	studentID   string
	studentName string
	week        string
	hours       float64
	sessions    []entity.WeekSession
}

// checkWeeklyHours groups non-no-show sessions by student and ISO calendar
// week. Sessions whose dates never parsed are silently excluded from the
// grouping.
func (v *Validator) checkWeeklyHours(feedback *entity.FeedbackExtraction) []entity.ValidationIssue {
	var issues []entity.ValidationIssue

	tallies := map[string]*weekTally{}
	var order []string
	for _, session := range feedback.Sessions {
		if session.IsNoShow || session.StudentID == "" {
			continue
		}
		date, err := time.Parse(parse.DateLayout, session.Date)
		if err != nil {
			continue
		}
		year, week := date.ISOWeek()
		key := fmt.Sprintf("%s|%d-W%d", session.StudentID, year, week)
		tally, ok := tallies[key]
		if !ok {
			tally = &weekTally{
				studentID:   session.StudentID,
				studentName: session.StudentName,
				week:        fmt.Sprintf("%d-W%d", year, week),
			}
			tallies[key] = tally
			order = append(order, key)
		}
		tally.hours += session.Hours
		tally.sessions = append(tally.sessions, entity.WeekSession{Date: session.Date, Hours: session.Hours})
	}

	for _, key := range order {
		tally := tallies[key]
		if tally.hours <= v.cfg.WeeklyHourCap {
			continue
		}
		issues = append(issues, entity.ValidationIssue{
			IssueType:   constants.IssueExcessWeeklyHours,
			Severity:    constants.SeverityHigh,
			Description: fmt.Sprintf("Student %s exceeds %g hours in week %s", tally.studentName, v.cfg.WeeklyHourCap, tally.week),
			Details: entity.IssueDetails{
				StudentID:   tally.studentID,
				StudentName: tally.studentName,
				Week:        tally.week,
				TotalHours:  tally.hours,
				ExcessHours: tally.hours - v.cfg.WeeklyHourCap,
				Sessions:    tally.sessions,
			},
		})
	}
	return issues
}

type monthTally struct {
	studentID   string
	studentName string
	month       string
	dates       []string
}

// checkNoShows groups no-show sessions by student and calendar month.
func (v *Validator) checkNoShows(feedback *entity.FeedbackExtraction) []entity.ValidationIssue {
	var issues []entity.ValidationIssue

	tallies := map[string]*monthTally{}
	var order []string
	for _, session := range feedback.Sessions {
		if !session.IsNoShow || session.StudentID == "" {
			continue
		}
		date, err := time.Parse(parse.DateLayout, session.Date)
		if err != nil {
			continue
		}
		month := fmt.Sprintf("%d-%02d", date.Year(), int(date.Month()))
		key := session.StudentID + "|" + month
		tally, ok := tallies[key]
		if !ok {
			tally = &monthTally{
				studentID:   session.StudentID,
				studentName: session.StudentName,
				month:       month,
			}
			tallies[key] = tally
			order = append(order, key)
		}
		tally.dates = append(tally.dates, session.Date)
	}

	for _, key := range order {
		tally := tallies[key]
		count := len(tally.dates)
		if count <= v.cfg.MonthlyNoShowCap {
			continue
		}
		issues = append(issues, entity.ValidationIssue{
			IssueType:   constants.IssueExcessNoShows,
			Severity:    constants.SeverityMedium,
			Description: fmt.Sprintf("Student %s has %d no-shows in month %s", tally.studentName, count, tally.month),
			Details: entity.IssueDetails{
				StudentID:   tally.studentID,
				StudentName: tally.studentName,
				Month:       tally.month,
				NoShowCount: count,
				ExcessCount: count - v.cfg.MonthlyNoShowCap,
				NoShowDates: tally.dates,
			},
		})
	}
	return issues
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
