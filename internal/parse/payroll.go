package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/brightpath-tutoring/docpipe/internal/entity"
)

// Payroll text is free-form OCR output, so every field is pulled out
// independently: a regex that fails to match leaves the field unset
// instead of discarding the tutor. Only id and name are mandatory.
var (
	rePeriod       = regexp.MustCompile(`Period[:\s]+([A-Za-z0-9 ,]+)`)
	reTutorSplit   = regexp.MustCompile(`Tutor ID[:\s]+`)
	reTutorID      = regexp.MustCompile(`^([A-Z0-9]+)`)
	reTutorName    = regexp.MustCompile(`Name[:\s]+([A-Za-z ,]+)`)
	reAssignment   = regexp.MustCompile(`Assignment[:\s]+([A-Za-z0-9 \-]+)`)
	reRegularHours = regexp.MustCompile(`Regular Hours[:\s]+([\d.]+)`)
	reTotalHours   = regexp.MustCompile(`Total Hours[:\s]+([\d.]+)`)
	reHourlyRate   = regexp.MustCompile(`Rate[:\s]+\$([\d.]+)`)
	reSessionLine  = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2,4})\s+(\d{1,2}:\d{2}\s*[AP]M)\s*-\s*(\d{1,2}:\d{2}\s*[AP]M)\s+([\d.]+)\s+hours`)
)

// ParsePayroll turns raw payroll text into tutor records. The text is
// split into one segment per "Tutor ID:" marker; a segment yields a tutor
// only when both id and name are present. Missing fields are silent
// omissions, never errors.
func ParsePayroll(text string) *entity.PayrollExtraction {
	out := &entity.PayrollExtraction{Tutors: []entity.TutorRecord{}}

	if m := rePeriod.FindStringSubmatch(text); m != nil {
		out.Period = strings.TrimSpace(m[1])
	}

	segments := reTutorSplit.Split(text, -1)
	if len(segments) < 2 {
		return out
	}
	for _, segment := range segments[1:] {
		tutor := parseTutorSegment(segment)
		if tutor.ID == "" || tutor.Name == "" {
			continue
		}
		out.Tutors = append(out.Tutors, tutor)
	}
	return out
}

func parseTutorSegment(segment string) entity.TutorRecord {
	tutor := entity.TutorRecord{Sessions: []entity.ClockEntry{}}

	if m := reTutorID.FindStringSubmatch(segment); m != nil {
		tutor.ID = strings.TrimSpace(m[1])
	}
	if m := reTutorName.FindStringSubmatch(segment); m != nil {
		tutor.Name = strings.TrimSpace(m[1])
	}
	if m := reAssignment.FindStringSubmatch(segment); m != nil {
		tutor.Assignment = strings.TrimSpace(m[1])
	}
	if m := reRegularHours.FindStringSubmatch(segment); m != nil {
		tutor.RegularHours = parseFloat(m[1])
	}
	if m := reTotalHours.FindStringSubmatch(segment); m != nil {
		tutor.TotalHours = parseFloat(m[1])
	}
	if m := reHourlyRate.FindStringSubmatch(segment); m != nil {
		tutor.HourlyRate = parseFloat(m[1])
	}

	for _, m := range reSessionLine.FindAllStringSubmatch(segment, -1) {
		tutor.Sessions = append(tutor.Sessions, entity.ClockEntry{
			Date:     m[1],
			ClockIn:  m[2],
			ClockOut: m[3],
			Hours:    parseFloat(m[4]),
		})
	}
	return tutor
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
