package parse

import (
	"strings"
	"time"
)

// Value is a best-effort parse result. Parsed means the text is canonical;
// otherwise Text carries the raw source string unchanged. Extraction never
// fails on an unrecognized format; the tag lets callers see which path
// was taken.
type Value struct {
	Text   string
	Parsed bool
}

// Canonical output formats.
const (
	DateLayout = "01/02/2006" // MM/DD/YYYY
	TimeLayout = "3:04 PM"    // 12-hour %I:%M %p
)

// Ordered format tables. New source layouts are added here, not as code
// branches.
var (
	dateLayouts = []string{
		"01/02/2006", // MM/DD/YYYY
		"2006-01-02", // YYYY-MM-DD
		"02-01-2006", // DD-MM-YYYY
		"01-02-2006", // MM-DD-YYYY
	}
	timeLayouts = []string{
		"3:04 PM",
		"15:04",
		"3:04PM",
		"3:04",
	}
)

// ParseDate normalizes a date cell to MM/DD/YYYY, falling back to the raw
// string when no known layout matches.
func ParseDate(s string) Value {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Value{Text: t.Format(DateLayout), Parsed: true}
		}
	}
	return Value{Text: s}
}

// ParseTime normalizes a time cell to 12-hour "3:04 PM", falling back to
// the raw string when no known layout matches.
func ParseTime(s string) Value {
	trimmed := strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Value{Text: t.Format(TimeLayout), Parsed: true}
		}
	}
	return Value{Text: s}
}

// NormalizeHeader canonicalizes a column header: trim, lowercase,
// spaces to underscores.
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// ResolveColumns maps each canonical field to the index of the first
// header that contains it as a substring. Headers must already be
// normalized. Fields with no match are absent from the result.
func ResolveColumns(headers []string, fields []string) map[string]int {
	resolved := make(map[string]int, len(fields))
	for _, field := range fields {
		for i, h := range headers {
			if strings.Contains(h, field) {
				resolved[field] = i
				break
			}
		}
	}
	return resolved
}

// Truthy reports whether a cell marks a yes: boolean true or one of
// "yes"/"y"/"true"/"1", case-insensitive.
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}
