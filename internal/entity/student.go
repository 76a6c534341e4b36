package entity

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/brightpath-tutoring/docpipe/constants"
)

// StudentID derives the deterministic 8-hex-character id used to link the
// overview sheet to per-student session sheets. Both sides must derive from
// the same normalized name, so the scheme cannot distinguish two students
// sharing a full name; callers should treat collisions as a data problem,
// not patch the derivation.
func StudentID(name string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(name))))
	return hex.EncodeToString(sum[:])[:8]
}

// StudentRecord is one row of the feedback workbook's overview sheet.
type StudentRecord struct {
	ID             string                  `json:"id"`
	FirstName      string                  `json:"first_name"`
	LastName       string                  `json:"last_name"`
	FullName       string                  `json:"full_name"`
	Grade          string                  `json:"grade,omitempty"`
	Subjects       string                  `json:"subjects,omitempty"`
	CaregiverName  string                  `json:"caregiver_name,omitempty"`
	CaregiverPhone string                  `json:"caregiver_phone,omitempty"`
	CaregiverEmail string                  `json:"caregiver_email,omitempty"`
	TutorAssigned  string                  `json:"tutor_assigned,omitempty"`
	Status         constants.StudentStatus `json:"status"`
	CaseNumber     string                  `json:"case_number,omitempty"`
	TutorStartDate string                  `json:"tutor_start_date,omitempty"`
}

// SessionRecord is one qualifying row of a per-student session sheet.
// Date is canonical MM/DD/YYYY and times canonical 12-hour "3:04 PM" when
// parseable; otherwise the raw cell text is carried through unchanged.
type SessionRecord struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	Date        string  `json:"date"`
	TimeIn      string  `json:"time_in"`
	TimeOut     string  `json:"time_out"`
	Hours       float64 `json:"hours"`
	Goal        string  `json:"goal,omitempty"`
	IsNoShow    bool    `json:"is_no_show"`
}

// FeedbackExtraction is the feedback parser's complete output for one workbook.
type FeedbackExtraction struct {
	Students []StudentRecord `json:"students"`
	Sessions []SessionRecord `json:"sessions"`
}
