package report

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/sz-deals/internal/record"
)

func sampleSummaries(n int) []record.Summary {
	summaries := make([]record.Summary, n)
	for i := range summaries {
		summaries[i] = record.Summary{
			Region:        fmt.Sprintf("区域%02d", i+1),
			SubtotalCount: fmt.Sprintf("%d", 100+i),
			SubtotalArea:  fmt.Sprintf("%d.50", 9000+i),
			DetailCount:   fmt.Sprintf("%d", 80+i),
			DetailArea:    "-",
		}
	}
	return summaries
}

func TestDateLabel(t *testing.T) {
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), "10-19"},
		{time.Date(2026, 1, 5, 23, 59, 0, 0, time.UTC), "01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := DateLabel(tt.t); got != tt.want {
				t.Errorf("DateLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 3, 7, 9, 30, 0, 0, time.Local)
	summaries := sampleSummaries(12)

	rep, err := Build(summaries, now, 10)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if rep.DateLabel != "03-07" {
		t.Errorf("DateLabel = %q, want 03-07", rep.DateLabel)
	}
	if rep.Filename != "成交-03-07.xlsx" {
		t.Errorf("Filename = %q, want 成交-03-07.xlsx", rep.Filename)
	}
	if rep.Subject != "苏州市成交数据 - 03-07" {
		t.Errorf("Subject = %q", rep.Subject)
	}
	if !strings.HasPrefix(rep.Body, "苏州市成交数据 - 03-07\n\n") {
		t.Errorf("Body does not start with the banner: %q", rep.Body)
	}
	if !strings.Contains(rep.Body, "区域10") {
		t.Error("Body is missing the 10th summary")
	}
	if strings.Contains(rep.Body, "区域11") {
		t.Error("Body contains more than 10 summaries")
	}

	got, err := ReadSpreadsheet(rep.Attachment, rep.DateLabel)
	if err != nil {
		t.Fatalf("ReadSpreadsheet() error = %v", err)
	}
	if len(got) != 12 {
		t.Errorf("workbook holds %d rows, want all 12", len(got))
	}
}

func TestPreview(t *testing.T) {
	summaries := sampleSummaries(3)

	out := Preview(summaries, 2)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 3 {
		t.Fatalf("Preview() has %d lines, want header + 2:\n%s", len(lines), out)
	}
	for _, label := range record.Columns() {
		if !strings.Contains(lines[0], label) {
			t.Errorf("header line %q is missing %q", lines[0], label)
		}
	}
	if !strings.HasPrefix(lines[1], "区域01") {
		t.Errorf("first data line = %q, want 区域01 first", lines[1])
	}

	if all := Preview(summaries, -1); strings.Count(all, "\n") != 4 {
		t.Errorf("Preview(-1) should include every summary:\n%s", all)
	}
	if empty := Preview(nil, 10); strings.Count(empty, "\n") != 1 {
		t.Errorf("Preview(nil) = %q, want only the header", empty)
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"SIP", 3},
		{"姑苏区", 6},
		{"区域01", 6},
		{"４２", 4},
		{"4200.00*", 8},
		{"—", 1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := DisplayWidth(tt.in); got != tt.want {
				t.Errorf("DisplayWidth(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestPreview_AlignsWideText(t *testing.T) {
	summaries := []record.Summary{
		{Region: "姑苏区", SubtotalCount: "25", SubtotalArea: "2650.12", DetailCount: "20", DetailArea: "2100.50"},
		{Region: "SIP", SubtotalCount: "7", SubtotalArea: "1.5", DetailCount: "6", DetailArea: "1.00"},
		{Region: "", SubtotalCount: "123", SubtotalArea: "88.00", DetailCount: "9", DetailArea: "-"},
	}

	lines := strings.Split(strings.TrimRight(Preview(summaries, -1), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Preview() has %d lines, want 4", len(lines))
	}

	// Each line's second column must start at the same display column.
	starts := []string{record.LabelSubtotalCount, "25", "7", "123"}
	want := -1
	for i, line := range lines {
		idx := strings.Index(line, starts[i])
		if idx < 0 {
			t.Fatalf("line %d = %q, missing %q", i, line, starts[i])
		}
		col := DisplayWidth(line[:idx])
		if want < 0 {
			want = col
		}
		if col != want {
			t.Errorf("line %d second column at %d, want %d:\n%s", i, col, want, strings.Join(lines, "\n"))
		}
	}
	if want != DisplayWidth("姑苏区")+columnGap {
		t.Errorf("second column at %d, want widest region plus gap", want)
	}

	for i, line := range lines {
		if strings.HasSuffix(line, " ") {
			t.Errorf("line %d has trailing padding: %q", i, line)
		}
	}
}

func TestSpreadsheet_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		summaries []record.Summary
	}{
		{name: "empty", summaries: []record.Summary{}},
		{name: "one", summaries: sampleSummaries(1)},
		{name: "many", summaries: sampleSummaries(25)},
		{
			name: "free text values",
			summaries: []record.Summary{
				{Region: "", SubtotalCount: "0012", SubtotalArea: "1,234.5", DetailCount: "—", DetailArea: "7.10*"},
				{Region: "工业园区", SubtotalCount: "1e3", SubtotalArea: "-", DetailCount: "3", DetailArea: "3.00"},
			},
		},
		{
			name: "trailing empty summary",
			summaries: []record.Summary{
				{Region: "a", SubtotalCount: "1"},
				{},
			},
		},
		{
			name:      "only empty summaries",
			summaries: []record.Summary{{}, {}, {}},
		},
		{
			name: "empty summary between values",
			summaries: []record.Summary{
				{Region: "相城区", DetailCount: "2"},
				{},
				{Region: "", SubtotalArea: "9.9"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeSpreadsheet(tt.summaries, "10-19")
			if err != nil {
				t.Fatalf("EncodeSpreadsheet() error = %v", err)
			}

			got, err := ReadSpreadsheet(data, "10-19")
			if err != nil {
				t.Fatalf("ReadSpreadsheet() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.summaries) {
				t.Errorf("round trip =\n%+v\nwant\n%+v", got, tt.summaries)
			}
		})
	}
}

func TestEncodeSpreadsheet_Layout(t *testing.T) {
	data, err := EncodeSpreadsheet(sampleSummaries(2), "12-31")
	if err != nil {
		t.Fatalf("EncodeSpreadsheet() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close() // nolint:errcheck

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "12-31" {
		t.Errorf("sheets = %v, want [12-31]", sheets)
	}

	header, err := f.GetCellValue("12-31", "A1")
	if err != nil || header != "区域" {
		t.Errorf("A1 = %q, %v; want 区域", header, err)
	}

	count, err := f.GetCellValue("12-31", "B2")
	if err != nil || count != "100" {
		t.Errorf("B2 = %q, %v; want 100", count, err)
	}
	typ, err := f.GetCellType("12-31", "B2")
	if err != nil {
		t.Fatalf("GetCellType() error = %v", err)
	}
	if typ == excelize.CellTypeNumber {
		t.Error("B2 stored as a number, want text")
	}

	if dim, err := f.GetSheetDimension("12-31"); err != nil || dim != "A1:E3" {
		t.Errorf("GetSheetDimension() = %q, %v; want A1:E3", dim, err)
	}
}

func TestReadSpreadsheet_Errors(t *testing.T) {
	if _, err := ReadSpreadsheet([]byte("not a workbook"), "x"); err == nil {
		t.Error("ReadSpreadsheet() expected error for invalid data")
	}

	data, err := EncodeSpreadsheet(nil, "10-19")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSpreadsheet(data, "10-20"); err == nil {
		t.Error("ReadSpreadsheet() expected error for a missing sheet")
	}

	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "wrong") // nolint:errcheck
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSpreadsheet(buf.Bytes(), "Sheet1"); err == nil {
		t.Error("ReadSpreadsheet() expected error for an unexpected header")
	}
}
