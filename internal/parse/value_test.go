package parse

import "testing"

func TestParseDateFormats(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"03/15/2025", "03/15/2025"},
		{"2025-03-15", "03/15/2025"},
		{"15-03-2025", "03/15/2025"},
		{"03-15-2025", "03/15/2025"},
		{" 03/15/2025 ", "03/15/2025"},
	}
	for _, c := range cases {
		got := ParseDate(c.in)
		if !got.Parsed {
			t.Errorf("ParseDate(%q) not parsed", c.in)
			continue
		}
		if got.Text != c.want {
			t.Errorf("ParseDate(%q) = %q, want %q", c.in, got.Text, c.want)
		}
	}
}

func TestParseDateFallback(t *testing.T) {
	got := ParseDate("mid march")
	if got.Parsed {
		t.Fatalf("expected fallback for unknown format")
	}
	if got.Text != "mid march" {
		t.Fatalf("fallback must carry the raw text, got %q", got.Text)
	}
}

func TestParseTimeFormats(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"3:30 PM", "3:30 PM"},
		{"15:30", "3:30 PM"},
		{"3:30PM", "3:30 PM"},
		{"9:05", "9:05 AM"},
		{"09:05", "9:05 AM"},
	}
	for _, c := range cases {
		got := ParseTime(c.in)
		if !got.Parsed {
			t.Errorf("ParseTime(%q) not parsed", c.in)
			continue
		}
		if got.Text != c.want {
			t.Errorf("ParseTime(%q) = %q, want %q", c.in, got.Text, c.want)
		}
	}
}

func TestParseTimeFallback(t *testing.T) {
	got := ParseTime("after lunch")
	if got.Parsed {
		t.Fatalf("expected fallback for unknown format")
	}
	if got.Text != "after lunch" {
		t.Fatalf("fallback must carry the raw text, got %q", got.Text)
	}
}

func TestNormalizeHeader(t *testing.T) {
	if got := NormalizeHeader("  Student Name "); got != "student_name" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeHeader("Time In"); got != "time_in" {
		t.Errorf("got %q", got)
	}
}

func TestResolveColumns(t *testing.T) {
	headers := []string{"student_name_full", "grade_level", "notes"}
	cols := ResolveColumns(headers, []string{"student_name", "grade", "missing"})
	if cols["student_name"] != 0 {
		t.Errorf("student_name resolved to %d", cols["student_name"])
	}
	if cols["grade"] != 1 {
		t.Errorf("grade resolved to %d", cols["grade"])
	}
	if _, ok := cols["missing"]; ok {
		t.Errorf("missing field should not resolve")
	}
}

func TestTruthy(t *testing.T) {
	for _, s := range []string{"yes", "Y", "TRUE", "1", " yes "} {
		if !Truthy(s) {
			t.Errorf("Truthy(%q) = false", s)
		}
	}
	for _, s := range []string{"", "no", "0", "false", "maybe"} {
		if Truthy(s) {
			t.Errorf("Truthy(%q) = true", s)
		}
	}
}
