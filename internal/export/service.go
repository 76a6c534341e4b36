package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/brightpath-tutoring/docpipe/internal/repository"
)

// Service produces XLSX bytes for reporting exports.
type Service struct {
	validations repository.ValidationRepository
	logger      *slog.Logger
}

func NewService(validations repository.ValidationRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{validations: validations, logger: logger}
}

// ExportIssueReportXLSX renders a job's validation issues as a workbook, one
// row per issue in stored order so the row number minus one is the issue's
// resolution index.
func (s *Service) ExportIssueReportXLSX(ctx context.Context, jobID uuid.UUID) ([]byte, error) {
	start := time.Now()

	result, err := s.validations.GetByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load validation result: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Issues"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Issue #",
		"Type",
		"Severity",
		"Description",
		"Tutor",
		"Student",
		"Resolved",
		"Resolution Note",
		"Corrected Value",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for i, issue := range result.Issues {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, i)
		write(2, string(issue.IssueType))
		write(3, string(issue.Severity.API()))
		write(4, issue.Description)
		write(5, issue.Details.TutorName)
		write(6, issue.Details.StudentName)
		if issue.Resolved {
			write(7, "yes")
		} else {
			write(7, "no")
		}
		write(8, issue.ResolutionNote)
		write(9, issue.CorrectedValue)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "C", 22)
	_ = f.SetColWidth(sheet, "D", "D", 60)
	_ = f.SetColWidth(sheet, "E", "F", 24)
	_ = f.SetColWidth(sheet, "G", "G", 10)
	_ = f.SetColWidth(sheet, "H", "I", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"job_id", jobID.String(),
		"rows", len(result.Issues),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
