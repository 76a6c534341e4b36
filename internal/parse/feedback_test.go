package parse

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/entity"
)

func buildFeedbackWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()

	overview := [][]interface{}{
		{"Student Name", "Grade", "Subjects", "Caretaker Name", "Phone Number", "Email Address", "Tutor Assigned", "Color Code", "Case #", "Tutoring Start Date"},
		{"Emma Johnson", "5", "Math", "Lisa Johnson", "555-0101", "lisa@example.com", "Jane Smith", "green", "C-100", "2025-01-06"},
		{"Liam Chen", "7", "Reading", "Wei Chen", "555-0102", "wei@example.com", "Carlos Rivera", "purple", "", ""},
		{"", "", "", "", "", "", "", "", "", ""},
	}
	for i, row := range overview {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set overview row: %v", err)
		}
	}

	if _, err := f.NewSheet("Emma Johnson"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	sessions := [][]interface{}{
		{"Date", "Clock In", "Clock Out", "Duration", "Objective", "No Show"},
		{"2025-03-03", "10:00", "12:00", 2.0, "fractions", ""},
		{"03/05/2025", "2:00 PM", "4:30 PM", 2.5, "decimals", "yes"},
		{"", "9:00", "10:00", 1.0, "skipped, no date", ""},
		{"sometime in march", "after lunch", "3:00 PM", 1.0, "raw fallback", ""},
	}
	for i, row := range sessions {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Emma Johnson", cell, &row); err != nil {
			t.Fatalf("set session row: %v", err)
		}
	}

	// a tab with no usable headers contributes zero sessions
	if _, err := f.NewSheet("Broken Tab"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	broken := []interface{}{"Foo", "Bar"}
	if err := f.SetSheetRow("Broken Tab", "A1", &broken); err != nil {
		t.Fatalf("set broken row: %v", err)
	}
	brokenData := []interface{}{"x", "y"}
	if err := f.SetSheetRow("Broken Tab", "A2", &brokenData); err != nil {
		t.Fatalf("set broken row: %v", err)
	}

	return f
}

func TestParseFeedbackOverview(t *testing.T) {
	f := buildFeedbackWorkbook(t)
	defer func() { _ = f.Close() }()

	out, err := ParseFeedbackFile(f)
	if err != nil {
		t.Fatalf("parse feedback: %v", err)
	}
	if len(out.Students) != 2 {
		t.Fatalf("students = %d, want 2", len(out.Students))
	}

	emma := out.Students[0]
	if emma.FullName != "Emma Johnson" || emma.FirstName != "Emma" || emma.LastName != "Johnson" {
		t.Errorf("name fields = %q %q %q", emma.FullName, emma.FirstName, emma.LastName)
	}
	if emma.ID != entity.StudentID("Emma Johnson") {
		t.Errorf("id = %q", emma.ID)
	}
	if emma.Status != constants.StudentActive {
		t.Errorf("status = %s, want active", emma.Status)
	}
	if emma.TutorAssigned != "Jane Smith" {
		t.Errorf("tutor = %q", emma.TutorAssigned)
	}
	if emma.CaseNumber != "C-100" {
		t.Errorf("case number = %q", emma.CaseNumber)
	}
	if emma.TutorStartDate != "01/06/2025" {
		t.Errorf("start date = %q", emma.TutorStartDate)
	}

	liam := out.Students[1]
	if liam.Status != constants.StudentUnknown {
		t.Errorf("unmapped color should be unknown, got %s", liam.Status)
	}
}

func TestParseFeedbackSessions(t *testing.T) {
	f := buildFeedbackWorkbook(t)
	defer func() { _ = f.Close() }()

	out, err := ParseFeedbackFile(f)
	if err != nil {
		t.Fatalf("parse feedback: %v", err)
	}
	// 3 qualifying rows on Emma's sheet, empty-date row skipped, broken tab ignored
	if len(out.Sessions) != 3 {
		t.Fatalf("sessions = %d, want 3", len(out.Sessions))
	}

	first := out.Sessions[0]
	if first.StudentID != entity.StudentID("Emma Johnson") || first.StudentName != "Emma Johnson" {
		t.Errorf("student link = %q %q", first.StudentID, first.StudentName)
	}
	if first.Date != "03/03/2025" {
		t.Errorf("date = %q, want canonical 03/03/2025", first.Date)
	}
	if first.TimeIn != "10:00 AM" || first.TimeOut != "12:00 PM" {
		t.Errorf("times = %q %q", first.TimeIn, first.TimeOut)
	}
	if first.Hours != 2.0 || first.IsNoShow {
		t.Errorf("hours/noshow = %v %v", first.Hours, first.IsNoShow)
	}
	if first.Goal != "fractions" {
		t.Errorf("goal = %q", first.Goal)
	}

	second := out.Sessions[1]
	if !second.IsNoShow {
		t.Errorf("second session should be a no-show")
	}

	// unknown formats carry the raw cell text through unchanged
	raw := out.Sessions[2]
	if raw.Date != "sometime in march" {
		t.Errorf("raw date = %q", raw.Date)
	}
	if raw.TimeIn != "after lunch" {
		t.Errorf("raw time in = %q", raw.TimeIn)
	}
	if raw.TimeOut != "3:00 PM" {
		t.Errorf("time out = %q", raw.TimeOut)
	}
}

func TestParseFeedbackEmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	out, err := ParseFeedbackFile(f)
	if err != nil {
		t.Fatalf("parse feedback: %v", err)
	}
	if len(out.Students) != 0 || len(out.Sessions) != 0 {
		t.Errorf("empty workbook should yield nothing, got %d/%d", len(out.Students), len(out.Sessions))
	}
}
