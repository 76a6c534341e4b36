package parse

import "testing"

const samplePayrollText = `BrightPath Tutoring Agency
Payroll Report
Period: March 2025

Tutor ID: T001
Name: Jane Smith
Assignment: District 12
Regular Hours: 38.5
Total Hours: 42.5
Rate: $35.00
03/03/2025 10:00 AM - 12:00 PM 2.0 hours
03/05/2025 2:00 PM - 4:30 PM 2.5 hours

Tutor ID: T002
Name: Carlos Rivera
Total Hours: 18.0

Tutor ID: T003
Assignment: District 9
Total Hours: 11.0
`

func TestParsePayroll(t *testing.T) {
	out := ParsePayroll(samplePayrollText)

	if out.Period != "March 2025" {
		t.Errorf("period = %q, want %q", out.Period, "March 2025")
	}
	// T003 has no name and must be dropped
	if len(out.Tutors) != 2 {
		t.Fatalf("tutors = %d, want 2", len(out.Tutors))
	}

	jane := out.Tutors[0]
	if jane.ID != "T001" || jane.Name != "Jane Smith" {
		t.Errorf("first tutor = %q %q", jane.ID, jane.Name)
	}
	if jane.Assignment != "District 12" {
		t.Errorf("assignment = %q", jane.Assignment)
	}
	if jane.RegularHours != 38.5 || jane.TotalHours != 42.5 {
		t.Errorf("hours = %v / %v", jane.RegularHours, jane.TotalHours)
	}
	if jane.HourlyRate != 35.0 {
		t.Errorf("rate = %v", jane.HourlyRate)
	}
	if len(jane.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(jane.Sessions))
	}
	first := jane.Sessions[0]
	if first.Date != "03/03/2025" || first.ClockIn != "10:00 AM" || first.ClockOut != "12:00 PM" || first.Hours != 2.0 {
		t.Errorf("first session = %+v", first)
	}

	carlos := out.Tutors[1]
	if carlos.ID != "T002" || carlos.Name != "Carlos Rivera" {
		t.Errorf("second tutor = %q %q", carlos.ID, carlos.Name)
	}
	// missing fields stay zero, the tutor is still kept
	if carlos.Assignment != "" || carlos.HourlyRate != 0 {
		t.Errorf("unexpected optional fields: %+v", carlos)
	}
	if carlos.TotalHours != 18.0 {
		t.Errorf("total hours = %v", carlos.TotalHours)
	}
}

func TestParsePayrollNoTutors(t *testing.T) {
	out := ParsePayroll("garbage text with no markers")
	if out.Period != "" {
		t.Errorf("period = %q, want empty", out.Period)
	}
	if len(out.Tutors) != 0 {
		t.Errorf("tutors = %d, want 0", len(out.Tutors))
	}
}
