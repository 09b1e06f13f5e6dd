// Package export writes a local Excel snapshot of a screening run, as an
// offline complement to the shared tracker spreadsheet.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"screenflow/internal/models"
)

// WriteWorkbook generates a workbook with a summary sheet plus one sheet
// each for matched and rejected candidates.
func WriteWorkbook(records []models.ScreeningRecord, stats models.WorkflowStats, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	summarySheet := "Summary"
	matchedSheet := "Matched"
	rejectedSheet := "Rejected"

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(matchedSheet); err != nil {
		return fmt.Errorf("create matched sheet: %w", err)
	}
	if _, err := f.NewSheet(rejectedSheet); err != nil {
		return fmt.Errorf("create rejected sheet: %w", err)
	}

	if err := writeSummarySheet(f, summarySheet, records, stats); err != nil {
		return fmt.Errorf("write summary sheet: %w", err)
	}
	if err := writeCandidateSheet(f, matchedSheet, records, true); err != nil {
		return fmt.Errorf("write matched sheet: %w", err)
	}
	if err := writeCandidateSheet(f, rejectedSheet, records, false); err != nil {
		return fmt.Errorf("write rejected sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		// Fall back to writing through a buffer; some filesystems reject
		// the direct save path.
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return fmt.Errorf("save workbook: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0o644); fileErr != nil {
			return fmt.Errorf("save workbook: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return nil
}

func writeSummarySheet(f *excelize.File, sheet string, records []models.ScreeningRecord, stats models.WorkflowStats) error {
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 50)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1D4ED8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Candidate Screening Report")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row += 2

	matched, rejected := 0, 0
	for _, rec := range records {
		if rec.Result.IsMatch {
			matched++
		} else {
			rejected++
		}
	}

	summary := []struct {
		label string
		value interface{}
	}{
		{"Generated:", time.Now().Format("2006-01-02 15:04:05")},
		{"Candidates Screened:", len(records)},
		{"Matched:", matched},
		{"Rejected:", rejected},
		{"Total Processed (lifetime):", stats.TotalProcessed},
		{"Replies Sent (lifetime):", stats.EmailsSent},
		{"Errors (lifetime):", stats.Errors},
	}

	for _, item := range summary {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.label)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.value)
		row++
	}
	row++

	// Keyword frequency across this run.
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Keyword Frequency")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row++

	counts := make(map[string]int)
	var order []string
	for _, rec := range records {
		for _, kw := range rec.Result.Matched {
			if counts[kw] == 0 {
				order = append(order, kw)
			}
			counts[kw]++
		}
	}
	for _, kw := range order {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), kw)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), counts[kw])
		row++
	}

	return nil
}

func writeCandidateSheet(f *excelize.File, sheet string, records []models.ScreeningRecord, wantMatch bool) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"374151"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	headers := []string{"Screened At", "Name", "Email", "Subject", "Matched Keywords", "Match Count", "Resume", "Note"}
	widths := []float64{20, 22, 30, 40, 30, 12, 30, 50}

	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		f.SetColWidth(sheet, col, col, widths[i])
		cell := fmt.Sprintf("%s1", col)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 2
	for _, rec := range records {
		if rec.Result.IsMatch != wantMatch {
			continue
		}

		values := []interface{}{
			rec.ScreenedAt.Format("2006-01-02 15:04:05"),
			rec.Candidate.Name,
			rec.Candidate.Email,
			rec.Subject,
			strings.Join(rec.Result.Matched, ", "),
			rec.Result.Count,
			rec.ResumePath,
			rec.Note,
		}
		for i, v := range values {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v)
		}
		row++
	}

	return nil
}
