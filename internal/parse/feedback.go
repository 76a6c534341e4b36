package parse

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
)

// Canonical overview fields, resolved against actual headers by substring.
var overviewFields = []string{
	"student_name",
	"grade",
	"subjects",
	"caretaker_name",
	"phone_number",
	"email_address",
	"tutor_assigned",
}

// Session-sheet fields. The first synonym list per slot that matches wins.
var (
	sessionDateSynonyms    = []string{"date"}
	sessionTimeInSynonyms  = []string{"time_in", "clock_in"}
	sessionTimeOutSynonyms = []string{"time_out", "clock_out"}
	sessionHoursSynonyms   = []string{"hours", "duration"}
	sessionGoalSynonyms    = []string{"goal", "objective", "notes"}
	noShowSynonyms         = []string{"no_show", "noshow"}
	caseNumberSynonyms     = []string{"case"}
	startDateSynonyms      = []string{"start_date", "tutoring_start"}
)

// Sheet names that are never a student's session log.
var skipSheets = map[string]struct{}{
	"sheet1":   {},
	"overview": {},
	"main":     {},
}

// ParseFeedback reads the workbook at path and extracts students from the
// overview sheet plus sessions from every per-student sheet. A pure
// function of the workbook contents: same input, same output.
func ParseFeedback(path string) (*entity.FeedbackExtraction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseFeedbackFile(f)
}

// ParseFeedbackReader is ParseFeedback over a stream.
func ParseFeedbackReader(r io.Reader) (*entity.FeedbackExtraction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseFeedbackFile(f)
}

// ParseFeedbackFile extracts from an already-open workbook.
func ParseFeedbackFile(f *excelize.File) (*entity.FeedbackExtraction, error) {
	out := &entity.FeedbackExtraction{
		Students: []entity.StudentRecord{},
		Sessions: []entity.SessionRecord{},
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return out, nil
	}

	overview, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read overview sheet: %w", err)
	}
	out.Students = parseOverview(overview)

	for i, name := range sheets {
		if i == 0 {
			continue
		}
		if _, skip := skipSheets[strings.ToLower(name)]; skip {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			// a broken tab contributes nothing; the rest still parse
			continue
		}
		out.Sessions = append(out.Sessions, parseSessionSheet(rows, name)...)
	}
	return out, nil
}

func parseOverview(rows [][]string) []entity.StudentRecord {
	students := []entity.StudentRecord{}
	if len(rows) < 2 {
		return students
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = NormalizeHeader(h)
	}
	cols := ResolveColumns(headers, overviewFields)

	colorCol := -1
	for i, h := range headers {
		if h == "color_code" {
			colorCol = i
			break
		}
	}

	for _, row := range rows[1:] {
		fullName := strings.TrimSpace(cell(row, cols, "student_name"))
		if fullName == "" {
			continue
		}

		first, last := splitName(fullName)
		student := entity.StudentRecord{
			ID:             entity.StudentID(fullName),
			FirstName:      first,
			LastName:       last,
			FullName:       fullName,
			Grade:          cell(row, cols, "grade"),
			Subjects:       cell(row, cols, "subjects"),
			CaregiverName:  cell(row, cols, "caretaker_name"),
			CaregiverPhone: cell(row, cols, "phone_number"),
			CaregiverEmail: cell(row, cols, "email_address"),
			TutorAssigned:  cell(row, cols, "tutor_assigned"),
			Status:         constants.StudentUnknown,
			CaseNumber:     scanRow(headers, row, caseNumberSynonyms),
			TutorStartDate: normalizeStartDate(scanRow(headers, row, startDateSynonyms)),
		}
		if colorCol >= 0 && colorCol < len(row) {
			student.Status = constants.StatusFromColor(row[colorCol])
		}
		students = append(students, student)
	}
	return students
}

// parseSessionSheet treats one tab as a single student's session log keyed
// by the sheet name. If any of the four required columns cannot be
// resolved, the sheet contributes zero sessions.
func parseSessionSheet(rows [][]string, sheetName string) []entity.SessionRecord {
	sessions := []entity.SessionRecord{}
	if len(rows) < 2 {
		return sessions
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = NormalizeHeader(h)
	}

	dateCol := findColumn(headers, sessionDateSynonyms)
	timeInCol := findColumn(headers, sessionTimeInSynonyms)
	timeOutCol := findColumn(headers, sessionTimeOutSynonyms)
	hoursCol := findColumn(headers, sessionHoursSynonyms)
	goalCol := findColumn(headers, sessionGoalSynonyms)
	if dateCol < 0 || timeInCol < 0 || timeOutCol < 0 || hoursCol < 0 {
		return sessions
	}

	studentID := entity.StudentID(sheetName)
	for _, row := range rows[1:] {
		rawDate := strings.TrimSpace(at(row, dateCol))
		if rawDate == "" {
			continue
		}

		session := entity.SessionRecord{
			StudentID:   studentID,
			StudentName: sheetName,
			Date:        ParseDate(rawDate).Text,
			TimeIn:      ParseTime(at(row, timeInCol)).Text,
			TimeOut:     ParseTime(at(row, timeOutCol)).Text,
			Hours:       parseFloat(at(row, hoursCol)),
		}
		if goalCol >= 0 {
			session.Goal = strings.TrimSpace(at(row, goalCol))
		}
		for i, h := range headers {
			if containsAny(h, noShowSynonyms) && Truthy(at(row, i)) {
				session.IsNoShow = true
				break
			}
		}
		sessions = append(sessions, session)
	}
	return sessions
}

// findColumn returns the first header index containing any synonym.
func findColumn(headers []string, synonyms []string) int {
	for i, h := range headers {
		if containsAny(h, synonyms) {
			return i
		}
	}
	return -1
}

func containsAny(h string, synonyms []string) bool {
	for _, s := range synonyms {
		if strings.Contains(h, s) {
			return true
		}
	}
	return false
}

// scanRow returns the first non-empty cell whose header contains any of
// the synonyms.
func scanRow(headers []string, row []string, synonyms []string) string {
	for i, h := range headers {
		if !containsAny(h, synonyms) {
			continue
		}
		if v := strings.TrimSpace(at(row, i)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeStartDate(s string) string {
	if s == "" {
		return ""
	}
	return ParseDate(s).Text
}

func cell(row []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok {
		return ""
	}
	return strings.TrimSpace(at(row, i))
}

// at is a bounds-safe row access; excelize trims trailing empty cells.
func at(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func splitName(full string) (first, last string) {
	parts := strings.SplitN(full, " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}
