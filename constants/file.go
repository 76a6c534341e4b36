package constants

import "strings"

// FileType tags one of the two monthly source documents.
type FileType string

const (
	FilePayroll  FileType = "payroll"
	FileFeedback FileType = "feedback"
)

// Document formats accepted by the extractors.
const (
	PDF  = "PDF"
	XLSX = "XLSX"
)

// AllowedExtensions holds the file extensions accepted at ingest time.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"xlsx": {},
	"xlsm": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the document format for a normalized extension,
// or "" when the extension is not supported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "xlsx", "xlsm":
		return XLSX
	default:
		return ""
	}
}
