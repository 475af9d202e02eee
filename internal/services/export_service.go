package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Results"

var resultHeaders = []string{"Student", "Grade", "Score", "Total Questions", "Percentage", "Submitted At"}

type exportService struct {
	quizzes QuizService
	logger  *slog.Logger
}

func NewExportService(quizzes QuizService, logger *slog.Logger) ExportService {
	return &exportService{quizzes: quizzes, logger: logger}
}

// ExportResults renders a quiz's attempts as an xlsx workbook. Access rules
// are the same as for viewing results.
func (s *exportService) ExportResults(ctx context.Context, principal *identity.Principal, quizID string) ([]byte, error) {
	results, err := s.quizzes.Results(ctx, principal, quizID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(resultsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for i, header := range resultHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(resultsSheet, cell, header)
	}

	for rowIndex, attempt := range results.Attempts {
		row := []interface{}{
			attempt.StudentName,
			string(attempt.StudentGrade),
			attempt.Score,
			attempt.TotalQuestions,
			attempt.Percentage(),
			attempt.SubmittedAt.Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(resultsSheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported quiz results", "quiz_id", quizID, "rows", len(results.Attempts))
	return buf.Bytes(), nil
}
