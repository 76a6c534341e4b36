package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// TesseractConfig configures the local OCR engine.
type TesseractConfig struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang        string // default "eng"
	DPI         int    // rasterization DPI for scanned PDFs, default 300
	MaxPages    int    // 0 = no limit
	TessdataDir string
}

// TesseractEngine rasterizes PDF pages with pdftoppm and recognizes each
// page with tesseract. Table extraction reconstructs rows from the TSV
// output's line numbers.
type TesseractEngine struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseractEngine(cfg TesseractConfig, runner Runner, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &TesseractEngine{cfg: cfg, runner: runner, logger: logger}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) Capabilities() Capability { return CapText | CapTable }

func (e *TesseractEngine) ExtractText(ctx context.Context, path string) (string, error) {
	images, cleanup, err := e.renderPages(ctx, path, 0, 0)
	if err != nil {
		return "", &EngineError{Engine: e.Name(), Err: err}
	}
	defer cleanup()

	var b strings.Builder
	for _, img := range images {
		txt, err := e.ocrPage(ctx, img, "")
		if err != nil {
			e.logger.Warn("page ocr failed", "image", filepath.Base(img), "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(txt)
	}
	if b.Len() == 0 {
		return "", &EngineError{Engine: e.Name(), Err: fmt.Errorf("no page produced text")}
	}
	return b.String(), nil
}

// ExtractTable runs tesseract in TSV mode on the requested page and groups
// recognized words into rows by line number, padding short rows to the
// widest row observed.
func (e *TesseractEngine) ExtractTable(ctx context.Context, path string, page int) ([][]string, error) {
	images, cleanup, err := e.renderPages(ctx, path, page+1, page+1)
	if err != nil {
		return nil, &EngineError{Engine: e.Name(), Err: err}
	}
	defer cleanup()
	if len(images) == 0 {
		return [][]string{}, nil
	}

	tsv, err := e.ocrPage(ctx, images[0], "tsv")
	if err != nil {
		return nil, &EngineError{Engine: e.Name(), Err: err}
	}
	return rowsFromTSV(tsv), nil
}

// renderPages runs pdftoppm and returns sorted page image paths plus a
// cleanup func for the temp dir. first/last are 1-indexed; 0 means all.
func (e *TesseractEngine) renderPages(ctx context.Context, path string, first, last int) ([]string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "dp-pp-*")
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png"}
	if first > 0 {
		args = append(args, "-f", fmt.Sprintf("%d", first), "-l", fmt.Sprintf("%d", last))
	}
	args = append(args, path, prefix)
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		cleanup()
		return nil, func() {}, fmt.Errorf("pdftoppm produced no images")
	}
	return matches, cleanup, nil
}

// ocrPage runs tesseract on one image. outFormat "" means plain text,
// "tsv" the tab-separated word table.
func (e *TesseractEngine) ocrPage(ctx context.Context, img, outFormat string) (string, error) {
	args := []string{img, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	if outFormat != "" {
		args = append(args, outFormat)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// rowsFromTSV rebuilds a grid from tesseract TSV output. Words sharing a
// line number become one row; every row is padded to the maximum column
// count observed.
func rowsFromTSV(tsv string) [][]string {
	var rows [][]string
	var current []string
	currentLine := -1

	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 { // skip header
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		key := -1
		if n, err := strconv.Atoi(cols[4]); err == nil {
			key = n
		}
		if key != currentLine {
			if len(current) > 0 {
				rows = append(rows, current)
			}
			current = nil
			currentLine = key
		}
		current = append(current, word)
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	if len(rows) == 0 {
		return [][]string{}
	}

	maxCols := 0
	for _, r := range rows {
		if len(r) > maxCols {
			maxCols = len(r)
		}
	}
	grid := make([][]string, 0, len(rows))
	for _, r := range rows {
		for len(r) < maxCols {
			r = append(r, "")
		}
		grid = append(grid, r)
	}
	return grid
}
