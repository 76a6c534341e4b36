package constants

import "testing"

func TestSeverityAPI(t *testing.T) {
	if got := SeverityHigh.API(); got != APISeverityError {
		t.Errorf("high maps to %s, want error", got)
	}
	if got := SeverityMedium.API(); got != APISeverityWarning {
		t.Errorf("medium maps to %s, want warning", got)
	}
	if got := SeverityLow.API(); got != APISeverityWarning {
		t.Errorf("low maps to %s, want warning", got)
	}
}
