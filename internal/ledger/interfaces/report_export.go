package interfaces

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"osi-dues/internal/ledger/application"
)

// ReportFiles are the paths written by WriteReports.
type ReportFiles struct {
	PDF  string
	XLSX string
}

// WriteReports renders the run report as PDF and XLSX into dir.
func WriteReports(dir string, report *application.Report, fontPath string) (ReportFiles, error) {
	if report == nil {
		return ReportFiles{}, errors.New("report export: nil report")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ReportFiles{}, err
	}
	base := filepath.Join(dir, "run-"+report.StartedAt.Format("20060102-150405")+"-"+shortID(report.RunID))

	pdfData, err := BuildReportPDF(report, fontPath)
	if err != nil {
		return ReportFiles{}, err
	}
	xlsxData, err := BuildReportXLSX(report)
	if err != nil {
		return ReportFiles{}, err
	}
	files := ReportFiles{PDF: base + ".pdf", XLSX: base + ".xlsx"}
	if err := os.WriteFile(files.PDF, pdfData, 0o644); err != nil {
		return ReportFiles{}, err
	}
	if err := os.WriteFile(files.XLSX, xlsxData, 0o644); err != nil {
		return ReportFiles{}, err
	}
	return files, nil
}

// BuildReportPDF renders a run summary. fontPath names a UTF-8 TrueType font;
// without it the core Arial font is used and Cyrillic text is not legible.
func BuildReportPDF(report *application.Report, fontPath string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath != "" {
		family = "report"
		pdf.AddUTF8Font(family, "", fontPath)
		pdf.AddUTF8Font(family, "B", fontPath)
		tr = func(s string) string { return s }
	}
	pdf.SetFont(family, "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Reconciliation Run")
	pdf.Ln(10)
	pdf.SetFont(family, "", 10)
	for _, line := range summaryLines(report) {
		pdf.Cell(0, 6, tr(line[0]+": "+line[1]))
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont(family, "B", 9)
	headers := []string{"Unit", "Date", "Amount", "Status", "Debt", "Fees", "Period"}
	widths := []float64{15, 25, 22, 32, 20, 20, 56}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(family, "", 9)
	for _, a := range report.Allocations {
		status := string(a.Status)
		if a.Reason != "" && a.Status != application.StatusAllocated {
			status = string(a.Reason)
		}
		cells := []string{a.UnitID, a.Date, a.Amount.String(), status, a.DebtApplied.String(), a.Distributed().String(), a.Period}
		for i, c := range cells {
			align := "L"
			if i == 2 || i == 4 || i == 5 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportXLSX renders the summary, allocations and events on three sheets.
func BuildReportXLSX(report *application.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	allocationsSheet := "allocations"
	eventsSheet := "events"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(allocationsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(eventsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Reconciliation Run")
	for i, line := range summaryLines(report) {
		row := i + 3
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), line[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), line[1])
	}

	_ = f.SetSheetRow(allocationsSheet, "A1", &[]any{"Unit", "Date", "Account", "Amount", "Status", "Reason", "Debt", "Fees", "Period"})
	for i, a := range report.Allocations {
		_ = f.SetSheetRow(allocationsSheet, fmt.Sprintf("A%d", i+2), &[]any{
			a.UnitID, a.Date, a.AccountType, int64(a.Amount), string(a.Status), string(a.Reason),
			int64(a.DebtApplied), int64(a.Distributed()), a.Period,
		})
	}

	_ = f.SetSheetRow(eventsSheet, "A1", &[]any{"Level", "Code", "Message", "Row", "Column", "Raw", "Parsed"})
	for i, e := range report.Events {
		_ = f.SetSheetRow(eventsSheet, fmt.Sprintf("A%d", i+2), &[]any{
			string(e.Level), string(e.Code), e.Message, e.Row, e.Column, e.Raw, e.Parsed,
		})
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summaryLines(report *application.Report) [][2]string {
	lines := [][2]string{
		{"Run", report.RunID},
		{"Started", report.StartedAt.Format(time.RFC3339)},
		{"Duration", report.Duration().String()},
		{"Rows read", fmt.Sprint(report.RowsRead)},
		{"Rows rejected", fmt.Sprint(report.RowsRejected)},
		{"Payments", fmt.Sprint(report.Payments)},
		{"Allocated", fmt.Sprintf("%d (%s)", report.Count(application.StatusAllocated), report.Allocated())},
		{"Already recorded", fmt.Sprint(report.Count(application.StatusAlreadyRecorded))},
		{"Skipped", fmt.Sprint(report.Count(application.StatusSkipped))},
		{"Cell writes", fmt.Sprint(report.Writes)},
	}
	if rec := report.Reconciliation; rec != nil {
		lines = append(lines,
			[2]string{"Extract total", rec.ExtractTotal.String()},
			[2]string{"Recorded", rec.Recorded.String()},
			[2]string{"Reconciliation", rec.Message()},
		)
	}
	if report.Aborted {
		lines = append(lines, [2]string{"Aborted", report.AbortReason})
	}
	return lines
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
