// Package report builds spreadsheet progress reports.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/KeitoID/GoLangStudyApp/internal/content"
)

const sheetName = "Progress"

// Build produces a workbook with one row per lesson: chapter, lesson
// ID, title, and completion status, followed by a totals row.
func Build(username string, chapters []content.Chapter, completed map[string]struct{}) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Chapter", "Lesson ID", "Lesson", "Completed"}
	if err := setRow(f, 1, header); err != nil {
		return nil, err
	}

	row := 2
	total := 0
	done := 0
	for _, ch := range chapters {
		for _, l := range ch.Lessons {
			total++
			status := "no"
			if _, ok := completed[l.ID]; ok {
				status = "yes"
				done++
			}
			if err := setRow(f, row, []any{ch.Title, l.ID, l.Title, status}); err != nil {
				return nil, err
			}
			row++
		}
	}

	summary := []any{
		"Total", "", fmt.Sprintf("%s: %d of %d lessons", username, done, total), "",
	}
	if err := setRow(f, row+1, summary); err != nil {
		return nil, err
	}

	return f, nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell := fmt.Sprintf("A%d", row)
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("set row %d: %w", row, err)
	}
	return nil
}
