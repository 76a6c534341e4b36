package entity

// ClockEntry is one clocked session line pulled out of the payroll PDF.
// Times keep their source formatting ("9:30 AM"); dates are MM/DD/YYYY.
type ClockEntry struct {
	Date     string  `json:"date"`
	ClockIn  string  `json:"clock_in"`
	ClockOut string  `json:"clock_out"`
	Hours    float64 `json:"hours,omitempty"`
}

// TutorRecord is one tutor as extracted from the payroll document.
// Only ID and Name are guaranteed; every other field is best-effort and
// stays zero when the source text did not match.
type TutorRecord struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Assignment   string       `json:"assignment,omitempty"`
	RegularHours float64      `json:"regular_hours,omitempty"`
	TotalHours   float64      `json:"total_hours"`
	HourlyRate   float64      `json:"hourly_rate,omitempty"`
	Sessions     []ClockEntry `json:"sessions"`
}

// PayrollExtraction is the payroll parser's complete output for one document.
type PayrollExtraction struct {
	Period string        `json:"period,omitempty"`
	Tutors []TutorRecord `json:"tutors"`
}
