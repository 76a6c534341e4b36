package extract

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFTextEngine reads the embedded text layer directly. Pure Go, no
// external processes; exact when the PDF is born-digital and useless when
// it is a scan, which is why it sits first in the cascade behind the
// plausibility threshold.
type PDFTextEngine struct{}

func NewPDFTextEngine() *PDFTextEngine {
	return &PDFTextEngine{}
}

func (e *PDFTextEngine) Name() string { return "pdf-text" }

func (e *PDFTextEngine) Capabilities() Capability { return CapText | CapDirect }

func (e *PDFTextEngine) ExtractText(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", &EngineError{Engine: e.Name(), Err: err}
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", &EngineError{Engine: e.Name(), Err: err}
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// image-only pages are expected; keep going
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(text))
	}
	return b.String(), nil
}
