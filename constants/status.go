package constants

import "strings"

// JobStatus is the canonical status for a monthly processing job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusUploaded   JobStatus = "UPLOADED"   // documents registered, nothing run yet
	JobStatusProcessing JobStatus = "PROCESSING" // extraction in progress
	JobStatusValidated  JobStatus = "VALIDATED"  // validation result produced
	JobStatusGenerating JobStatus = "GENERATING" // document generation in progress
	JobStatusCompleted  JobStatus = "COMPLETED"  // terminal success
	JobStatusFailed     JobStatus = "FAILED"     // terminal failure
)

// transitions is the closed state machine:
// UPLOADED -> PROCESSING -> {VALIDATED | FAILED};
// VALIDATED -> {GENERATING | COMPLETED | FAILED}; GENERATING -> {COMPLETED | FAILED}.
// VALIDATED -> COMPLETED is the issue-resolution shortcut taken when every
// issue is resolved and no generation step is wired in.
var transitions = map[JobStatus][]JobStatus{
	JobStatusUploaded:   {JobStatusProcessing, JobStatusFailed},
	JobStatusProcessing: {JobStatusValidated, JobStatusFailed},
	JobStatusValidated:  {JobStatusGenerating, JobStatusCompleted, JobStatusFailed},
	JobStatusGenerating: {JobStatusCompleted, JobStatusFailed},
}

// CanTransition reports whether s -> to is a legal edge.
func (s JobStatus) CanTransition(to JobStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
func (s JobStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// StudentStatus is derived from the overview sheet's color-code convention.
type StudentStatus string

const (
	StudentActive          StudentStatus = "active"
	StudentTerminated      StudentStatus = "terminated"
	StudentInitialCall     StudentStatus = "initial_call"
	StudentAssignTutor     StudentStatus = "assign_tutor"
	StudentOnHold          StudentStatus = "on_hold"
	StudentLanguageRequest StudentStatus = "language_request"
	StudentUnknown         StudentStatus = "unknown"
)

var colorStatus = map[string]StudentStatus{
	"green":  StudentActive,
	"red":    StudentTerminated,
	"yellow": StudentInitialCall,
	"orange": StudentAssignTutor,
	"pink":   StudentOnHold,
	"blue":   StudentLanguageRequest,
}

// StatusFromColor maps a color_code cell to a student status. Anything
// outside the closed mapping (including an empty cell) is unknown.
func StatusFromColor(code string) StudentStatus {
	if s, ok := colorStatus[strings.ToLower(strings.TrimSpace(code))]; ok {
		return s
	}
	return StudentUnknown
}
