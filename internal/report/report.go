package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"

	"github.com/pfrederiksen/sz-deals/internal/record"
)

const (
	// DateLayout formats the run date used for the sheet and file names.
	DateLayout = "01-02"

	// SpreadsheetMIME is the content type of the attachment.
	SpreadsheetMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	titlePrefix = "苏州市成交数据"
	filePrefix  = "成交"
)

// Report is a fully built mail ready to be sent
type Report struct {
	DateLabel  string
	Subject    string
	Body       string
	Filename   string
	Attachment []byte
	Summaries  []record.Summary
}

// DateLabel returns the month-day label for t.
func DateLabel(t time.Time) string {
	return t.Format(DateLayout)
}

// Build encodes summaries into a workbook and renders the text body. At most
// previewRows summaries appear in the body; the workbook holds all of them.
func Build(summaries []record.Summary, now time.Time, previewRows int) (*Report, error) {
	label := DateLabel(now)

	data, err := EncodeSpreadsheet(summaries, label)
	if err != nil {
		return nil, fmt.Errorf("encoding spreadsheet: %w", err)
	}

	title := fmt.Sprintf("%s - %s", titlePrefix, label)
	body := title + "\n\n" + Preview(summaries, previewRows)

	return &Report{
		DateLabel:  label,
		Subject:    title,
		Body:       body,
		Filename:   fmt.Sprintf("%s-%s.xlsx", filePrefix, label),
		Attachment: data,
		Summaries:  summaries,
	}, nil
}

// Preview renders the first limit summaries as an aligned text table with a
// header line. A negative limit means no limit. Columns are padded by display
// width, so wide CJK characters occupy two cells.
func Preview(summaries []record.Summary, limit int) string {
	if limit >= 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}

	lines := make([][]string, 0, len(summaries)+1)
	lines = append(lines, record.Columns())
	for _, s := range summaries {
		lines = append(lines, s.Values())
	}

	widths := make([]int, len(lines[0]))
	for _, line := range lines {
		for i, cell := range line {
			widths[i] = max(widths[i], DisplayWidth(cell))
		}
	}

	var b strings.Builder
	for _, line := range lines {
		for i, cell := range line {
			b.WriteString(cell)
			if i < len(line)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-DisplayWidth(cell)+columnGap))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

const columnGap = 2

// DisplayWidth returns the number of terminal cells s occupies. East Asian
// wide and fullwidth characters count as two.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// EncodeSpreadsheet writes summaries to a single-sheet workbook named sheet.
// The first row holds the column labels. All values are stored as text.
func EncodeSpreadsheet(summaries []record.Summary, sheet string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	header := toRow(record.Columns())
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return nil, fmt.Errorf("styling header: %w", err)
	}

	for i, s := range summaries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := toRow(s.Values())
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	// GetRows drops trailing rows without values, so the used range records
	// how many summaries were written.
	dim, err := excelize.CoordinatesToCellName(len(header), len(summaries)+1)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetDimension(sheet, "A1:"+dim); err != nil {
		return nil, fmt.Errorf("setting used range: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadSpreadsheet decodes a workbook written by EncodeSpreadsheet. The header
// row is checked and skipped. Rows inside the used range that hold no values
// decode as empty summaries.
func ReadSpreadsheet(data []byte, sheet string) ([]record.Summary, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close() // nolint:errcheck

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	columns := record.Columns()
	for i, label := range columns {
		if i >= len(rows[0]) || rows[0][i] != label {
			return nil, fmt.Errorf("unexpected header %v", rows[0])
		}
	}

	used, err := usedRows(f, sheet)
	if err != nil {
		return nil, err
	}
	for len(rows) < used {
		rows = append(rows, nil)
	}

	summaries := make([]record.Summary, 0, len(rows)-1)
	for _, row := range rows[1:] {
		summaries = append(summaries, record.SummaryFromValues(row))
	}
	return summaries, nil
}

// usedRows returns the last row of the sheet's used range, or 0 when the
// workbook does not declare one.
func usedRows(f *excelize.File, sheet string) (int, error) {
	ref, err := f.GetSheetDimension(sheet)
	if err != nil {
		return 0, fmt.Errorf("reading used range of %q: %w", sheet, err)
	}
	if ref == "" {
		return 0, nil
	}
	cells := strings.Split(ref, ":")
	_, row, err := excelize.CellNameToCoordinates(cells[len(cells)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid used range %q: %w", ref, err)
	}
	return row, nil
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
