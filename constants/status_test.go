package constants

import "testing"

func TestJobStatusTransitions(t *testing.T) {
	cases := []struct {
		from  JobStatus
		to    JobStatus
		legal bool
	}{
		{JobStatusUploaded, JobStatusProcessing, true},
		{JobStatusUploaded, JobStatusFailed, true},
		{JobStatusUploaded, JobStatusValidated, false},
		{JobStatusProcessing, JobStatusValidated, true},
		{JobStatusProcessing, JobStatusFailed, true},
		{JobStatusProcessing, JobStatusCompleted, false},
		{JobStatusValidated, JobStatusGenerating, true},
		{JobStatusValidated, JobStatusCompleted, true},
		{JobStatusValidated, JobStatusFailed, true},
		{JobStatusGenerating, JobStatusCompleted, true},
		{JobStatusGenerating, JobStatusFailed, true},
		{JobStatusCompleted, JobStatusProcessing, false},
		{JobStatusFailed, JobStatusProcessing, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.legal {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.legal)
		}
	}
}

func TestJobStatusTerminal(t *testing.T) {
	for _, s := range []JobStatus{JobStatusCompleted, JobStatusFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []JobStatus{JobStatusUploaded, JobStatusProcessing, JobStatusValidated, JobStatusGenerating} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestStatusFromColor(t *testing.T) {
	cases := []struct {
		code string
		want StudentStatus
	}{
		{"green", StudentActive},
		{"GREEN", StudentActive},
		{"  Red ", StudentTerminated},
		{"yellow", StudentInitialCall},
		{"orange", StudentAssignTutor},
		{"pink", StudentOnHold},
		{"blue", StudentLanguageRequest},
		{"purple", StudentUnknown},
		{"", StudentUnknown},
	}
	for _, c := range cases {
		if got := StatusFromColor(c.code); got != c.want {
			t.Errorf("StatusFromColor(%q) = %s, want %s", c.code, got, c.want)
		}
	}
}
