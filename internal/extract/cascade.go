package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/brightpath-tutoring/docpipe/internal/common"
)

// Config tunes the cascade itself; engine-specific knobs live with the
// engines.
type Config struct {
	// MinTextLength is the plausibility threshold: direct text-layer output
	// shorter than this is treated as insufficient and the cascade
	// escalates to OCR. Injectable for tests; default 100.
	MinTextLength int
}

// Cascade tries extraction backends in a fixed preference order:
// cheap/exact first, local/approximate next, networked/paid last. A
// backend's failure is logged and control moves on; the cascade only fails
// when every backend has.
type Cascade struct {
	cfg    Config
	text   []TextEngine
	table  []TableEngine
	logger *slog.Logger
}

// NewCascade takes the two engine lists in their respective preference
// orders. They differ: table extraction prefers the cloud engine because
// local OCR only approximates cell geometry.
func NewCascade(cfg Config, text []TextEngine, table []TableEngine, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 100
	}
	return &Cascade{cfg: cfg, text: text, table: table, logger: logger}
}

// ExtractText walks the text engines in order. Direct-layer output below
// the plausibility threshold is kept as a partial result and the cascade
// escalates; if every later engine fails, that partial text is returned
// rather than nothing.
func (c *Cascade) ExtractText(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", common.NewAppError("FILE_NOT_FOUND", fmt.Sprintf("document not found: %s", path), common.ErrNotFound)
	}
	if len(c.text) == 0 {
		return "", common.NewAppError("NO_ENGINE", "no text extraction engine configured", common.ErrNoEngineAvailable)
	}

	var partial string
	var errs []error
	for _, eng := range c.text {
		text, err := eng.ExtractText(ctx, path)
		if err != nil {
			c.logger.Warn("text engine failed, trying next", "engine", eng.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		if eng.Capabilities()&CapDirect != 0 && len(text) < c.cfg.MinTextLength {
			c.logger.Info("direct text extraction insufficient, escalating",
				"engine", eng.Name(), "bytes", len(text), "threshold", c.cfg.MinTextLength)
			partial = text
			continue
		}
		c.logger.Debug("text extraction ok", "engine", eng.Name(), "bytes", len(text))
		return text, nil
	}

	if partial != "" {
		c.logger.Warn("all ocr engines failed, returning partial direct text", "bytes", len(partial))
		return partial, nil
	}
	return "", common.NewAppError("EXTRACTION_FAILED",
		fmt.Sprintf("every engine failed for %s", path),
		errors.Join(append(errs, common.ErrExtraction)...))
}

// ExtractTable walks the table engines in order. The first engine that
// answers wins, even with an empty grid; "no table on this page" is a
// result, not a failure.
func (c *Cascade) ExtractTable(ctx context.Context, path string, page int) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, common.NewAppError("FILE_NOT_FOUND", fmt.Sprintf("document not found: %s", path), common.ErrNotFound)
	}
	if len(c.table) == 0 {
		return nil, common.NewAppError("NO_ENGINE", "no table extraction engine configured", common.ErrNoEngineAvailable)
	}

	var errs []error
	for _, eng := range c.table {
		grid, err := eng.ExtractTable(ctx, path, page)
		if err != nil {
			c.logger.Warn("table engine failed, trying next", "engine", eng.Name(), "page", page, "error", err)
			errs = append(errs, err)
			continue
		}
		c.logger.Debug("table extraction ok", "engine", eng.Name(), "page", page, "rows", len(grid))
		return grid, nil
	}
	return nil, common.NewAppError("EXTRACTION_FAILED",
		fmt.Sprintf("every table engine failed for %s page %d", path, page),
		errors.Join(append(errs, common.ErrExtraction)...))
}

// BuildCascade wires the standard engine order from configuration:
// pdf-text -> tesseract -> textract for text; textract -> tesseract for
// tables. The Textract client is optional; without it the cloud stage is
// simply absent.
func BuildCascade(cfg common.OCRConfig, textractClient TextractAPI, runner Runner, logger *slog.Logger) *Cascade {
	tess := NewTesseractEngine(TesseractConfig{
		Pdftoppm:    cfg.Pdftoppm,
		Tesseract:   cfg.Tesseract,
		Lang:        cfg.TesseractLang,
		DPI:         cfg.DPI,
		MaxPages:    cfg.MaxPages,
		TessdataDir: cfg.TessdataDir,
	}, runner, logger)

	text := []TextEngine{NewPDFTextEngine(), tess}
	table := []TableEngine{}
	if textractClient != nil {
		tx := NewTextractEngine(textractClient, runner, cfg.Pdftoppm, cfg.DPI, logger)
		text = append(text, tx)
		table = append(table, tx)
	}
	table = append(table, tess)

	return NewCascade(Config{MinTextLength: cfg.MinTextLength}, text, table, logger)
}
