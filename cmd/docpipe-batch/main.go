package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/brightpath-tutoring/docpipe/constants"
	"github.com/brightpath-tutoring/docpipe/internal/common"
	"github.com/brightpath-tutoring/docpipe/internal/export"
	"github.com/brightpath-tutoring/docpipe/internal/extract"
	"github.com/brightpath-tutoring/docpipe/internal/ingest"
	"github.com/brightpath-tutoring/docpipe/internal/pipeline"
	"github.com/brightpath-tutoring/docpipe/internal/repository"
	"github.com/brightpath-tutoring/docpipe/internal/validate"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// findDocuments scans dir (non-recursive) for one payroll and one feedback
// document by filename detection.
func findDocuments(dir string) (payroll, feedback string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("read dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		switch ingest.DetectFileType(path) {
		case constants.FilePayroll:
			if payroll == "" {
				payroll = path
			}
		case constants.FileFeedback:
			if feedback == "" {
				feedback = path
			}
		}
	}
	if payroll == "" || feedback == "" {
		return "", "", fmt.Errorf("dir %s must hold one payroll PDF and one feedback workbook", dir)
	}
	return payroll, feedback, nil
}

func main() {
	var (
		dir          = flag.String("dir", "", "directory holding the month's two documents (detected by filename)")
		payrollPath  = flag.String("payroll", "", "payroll PDF path (overrides --dir detection)")
		feedbackPath = flag.String("feedback", "", "feedback workbook path (overrides --dir detection)")
		month        = flag.String("month", "", "job month name (defaults to current month)")
		year         = flag.Int("year", 0, "job year (defaults to current year)")
		out          = flag.String("out", "", "issue report XLSX path (defaults next to the payroll file)")
	)
	flag.Parse()

	if *dir != "" {
		foundPayroll, foundFeedback, err := findDocuments(*dir)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		if *payrollPath == "" {
			*payrollPath = foundPayroll
		}
		if *feedbackPath == "" {
			*feedbackPath = foundFeedback
		}
	}
	if *payrollPath == "" || *feedbackPath == "" {
		printError("Error: --dir or both --payroll and --feedback are required\n")
		os.Exit(1)
	}
	now := time.Now()
	if *month == "" {
		*month = now.Month().String()
	}
	if *year == 0 {
		*year = now.Year()
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*payrollPath), "issue_report.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := repository.Open(ctx, repository.Config{
		DSN:         cfg.Database.DSN,
		MaxConns:    cfg.Database.MaxConns,
		DialTimeout: time.Duration(cfg.Database.DialTimeout) * time.Second,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	jobsRepo := repository.NewJobRepository(store, logger)
	docsRepo := repository.NewDocumentRepository(store, logger)
	extractionsRepo := repository.NewExtractionRepository(store, logger)
	validationsRepo := repository.NewValidationRepository(store, logger)

	var textractClient extract.TextractAPI
	if cfg.OCR.EnableTextract {
		textractClient, err = extract.NewTextractClient(ctx, cfg.OCR.AWSRegion)
		if err != nil {
			logger.Warn("textract unavailable, continuing without cloud OCR", "error", err)
		}
	}
	cascade := extract.BuildCascade(cfg.OCR, textractClient, extract.NewExecRunner(), logger)

	validator := validate.NewValidator(validate.Config{
		HourGapThreshold: cfg.Validation.HourGapThreshold,
		HighGapThreshold: cfg.Validation.HighGapThreshold,
		WeeklyHourCap:    cfg.Validation.WeeklyHourCap,
		MonthlyNoShowCap: cfg.Validation.MonthlyNoShowCap,
		WorkdayStart:     cfg.Validation.WorkdayStart,
		WorkdayEnd:       cfg.Validation.WorkdayEnd,
	}, logger)

	extractStage := pipeline.NewExtractStage(docsRepo, extractionsRepo, cascade, logger)
	validateStage := pipeline.NewValidateStage(extractionsRepo, validationsRepo, validator, logger)
	processor := pipeline.NewProcessor(jobsRepo, validationsRepo, extractStage, validateStage, logger)
	ingestor := ingest.NewIngestor(jobsRepo, docsRepo, logger)
	exporter := export.NewService(validationsRepo, logger)

	job, err := jobsRepo.Create(ctx, *month, *year)
	if err != nil {
		logger.Error("failed to create job", "error", err)
		os.Exit(1)
	}
	logger.Info("job created", "job_id", job.ID, "month", job.Month, "year", job.Year)

	if _, err := ingestor.IngestPath(ctx, job.ID, *payrollPath, constants.FilePayroll); err != nil {
		logger.Error("failed to ingest payroll document", "error", err)
		os.Exit(1)
	}
	if _, err := ingestor.IngestPath(ctx, job.ID, *feedbackPath, constants.FileFeedback); err != nil {
		logger.Error("failed to ingest feedback document", "error", err)
		os.Exit(1)
	}

	result, err := processor.ProcessJob(ctx, job.ID)
	if err != nil {
		logger.Error("job processing failed", "job_id", job.ID, "error", err)
		os.Exit(1)
	}

	if result.TotalIssues > 0 {
		xlsxBytes, err := exporter.ExportIssueReportXLSX(ctx, job.ID)
		if err != nil {
			logger.Error("failed to export issue report", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
			logger.Error("failed to write issue report", "error", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Job: %s (%s %d)\n", job.ID, job.Month, job.Year)
	fmt.Printf("- Status: %s\n", result.Status)
	fmt.Printf("- Tutors: %d, Students: %d, Sessions: %d\n", result.TotalTutors, result.TotalStudents, result.TotalSessions)
	fmt.Printf("- Issues: %d\n", result.TotalIssues)
	if result.TotalIssues > 0 {
		fmt.Printf("- Report: %s\n", *out)
	}
}
