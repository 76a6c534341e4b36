package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/common"
	"github.com/brightpath-tutoring/docpipe/internal/extract"
	"github.com/brightpath-tutoring/docpipe/internal/ingest"
	"github.com/brightpath-tutoring/docpipe/internal/parse"
)

// runextract runs a single document through its extractor, no database
// involved, and prints the extraction JSON to stdout. Useful for poking at
// a problematic source file.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <payroll.pdf | feedback.xlsx>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var result interface{}
	start := time.Now()

	switch ingest.DetectFileType(path) {
	case constants.FilePayroll:
		var textractClient extract.TextractAPI
		if cfg.OCR.EnableTextract {
			textractClient, err = extract.NewTextractClient(ctx, cfg.OCR.AWSRegion)
			if err != nil {
				logger.Warn("textract unavailable, continuing without cloud OCR", "error", err)
			}
		}
		cascade := extract.BuildCascade(cfg.OCR, textractClient, extract.NewExecRunner(), logger)

		text, err := cascade.ExtractText(ctx, path)
		if err != nil {
			logger.Error("text extraction failed", "path", path, "error", err)
			os.Exit(1)
		}
		result = parse.ParsePayroll(text)

	case constants.FileFeedback:
		data, err := parse.ParseFeedback(path)
		if err != nil {
			logger.Error("workbook parse failed", "path", path, "error", err)
			os.Exit(1)
		}
		result = data

	default:
		logger.Error("cannot determine file type", "path", path)
		os.Exit(2)
	}

	logger.Info("extraction OK", "path", path, "duration_ms", time.Since(start).Milliseconds())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}
