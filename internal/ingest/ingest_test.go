package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/smelens-cli/internal/config"
)

// buildWorkbook writes rows into named sheets and returns the xlsx bytes.
func buildWorkbook(t *testing.T, sheets map[string][][]string, order []string) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, name := range order {
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), name)
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("NewSheet(%s): %v", name, err)
			}
		}
		for r, row := range sheets[name] {
			for c, cell := range row {
				axis, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("CoordinatesToCellName: %v", err)
				}
				if err := f.SetCellStr(name, axis, cell); err != nil {
					t.Fatalf("SetCellStr: %v", err)
				}
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func portfolioGrid(dataRows int) [][]string {
	grid := [][]string{
		{"Acme Capital — SME Portfolio Export"},
		{},
		{"Acc ID", "Biz Sector", "State", "Loan Amt (RM)", "Purpose", "No. of Employees", "PD", "Net Margin", "Repayment", "Litigation"},
	}
	for i := 0; i < dataRows; i++ {
		grid = append(grid, []string{
			fmt.Sprintf("A%03d", i+1), "services", "Johor", "RM 150,000", "working capital",
			"12", "9.5", "6.2", "late", "No Litigation",
		})
	}
	return grid
}

func TestIngestWorkbookSkipsTitleRows(t *testing.T) {
	b := buildWorkbook(t, map[string][][]string{"Portfolio": portfolioGrid(6)}, []string{"Portfolio"})

	got, err := Ingest(FromBytes(b, "portfolio.xlsx"), config.Default())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	wantCols := []string{
		"acc_id", "biz_sector", "state", "loan_amt_rm", "purpose",
		"no_of_employees", "pd", "net_margin", "repayment", "litigation",
	}
	if !reflect.DeepEqual(got.Names(), wantCols) {
		t.Fatalf("columns = %v, want %v", got.Names(), wantCols)
	}
	if got.Len() != 6 {
		t.Fatalf("rows = %d, want 6", got.Len())
	}
	vals, _ := got.Strings("loan_amt_rm")
	if vals[0] != "RM 150,000" {
		t.Fatalf("loan_amt_rm[0] = %q, want raw cell preserved", vals[0])
	}
}

func TestIngestPicksLargestSheet(t *testing.T) {
	cover := [][]string{
		{"Cover"},
		{"Prepared by Treasury"},
	}
	b := buildWorkbook(t, map[string][][]string{
		"Cover":     cover,
		"Portfolio": portfolioGrid(8),
	}, []string{"Cover", "Portfolio"})

	got, err := Ingest(FromBytes(b, "export.xlsx"), config.Default())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got.Len() != 8 {
		t.Fatalf("rows = %d, want 8 (data sheet, not cover)", got.Len())
	}
	if !got.Has("acc_id") {
		t.Fatalf("columns = %v, expected data sheet columns", got.Names())
	}
}

func TestIngestAllSheetsUndersizedFallsBackToFirst(t *testing.T) {
	small := [][]string{
		{"a", "b"},
		{"1", "2"},
	}
	b := buildWorkbook(t, map[string][][]string{"Notes": small}, []string{"Notes"})

	got, err := Ingest(FromBytes(b, "notes.xlsx"), config.Default())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("rows = %d, want 1", got.Len())
	}
}

func TestIngestCSV(t *testing.T) {
	csv := strings.Join([]string{
		"Acc ID,Biz Sector,State",
		"A001,services,Johor",
		"A002,retail,Penang",
	}, "\n")
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	got, err := Ingest(FromPath(path), config.Default())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !reflect.DeepEqual(got.Names(), []string{"acc_id", "biz_sector", "state"}) {
		t.Fatalf("columns = %v", got.Names())
	}
	if got.Len() != 2 {
		t.Fatalf("rows = %d, want 2", got.Len())
	}
}

func TestIngestTSV(t *testing.T) {
	tsv := "sme_id\tregion\nA001\tJohor\n"
	got, err := Ingest(FromBytes([]byte(tsv), "export.tsv"), config.Default())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !got.Has("sme_id") || !got.Has("region") {
		t.Fatalf("columns = %v", got.Names())
	}
	if got.Len() != 1 {
		t.Fatalf("rows = %d, want 1", got.Len())
	}
}

func TestIngestUnreadableWorkbook(t *testing.T) {
	_, err := Ingest(FromBytes([]byte("this is not a zip archive"), "junk.xlsx"), config.Default())
	if err == nil {
		t.Fatalf("expected error for non-xlsx bytes")
	}
	var ue *UnreadableSourceError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %T, want *UnreadableSourceError", err)
	}
	if ue.Name != "junk.xlsx" {
		t.Fatalf("Name = %q, want junk.xlsx", ue.Name)
	}
}

func TestIngestMissingFile(t *testing.T) {
	_, err := Ingest(FromPath(filepath.Join(t.TempDir(), "absent.csv")), config.Default())
	var ue *UnreadableSourceError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want *UnreadableSourceError", err)
	}
}

func TestSnakeColumns(t *testing.T) {
	got := SnakeColumns([]string{"Loan Amt (RM)", "  PD %  ", "", "Region", "Region", "Region"})
	want := []string{"loan_amt_rm", "pd", "col", "region", "region_2", "region_3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SnakeColumns = %v, want %v", got, want)
	}
}

func TestTrimGridDropsEmptyRowsAndColumns(t *testing.T) {
	grid := [][]string{
		{"", "a", "", "b"},
		{"", "", "", ""},
		{"", "1", "", "2"},
	}
	got := trimGrid(grid)
	want := [][]string{
		{"a", "b"},
		{"1", "2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("trimGrid = %v, want %v", got, want)
	}
}

func TestHeaderRowFallbackMostlyFilled(t *testing.T) {
	// No schema vocabulary anywhere: the first row with at least
	// max(5, width/2) non-empty cells becomes the header.
	grid := [][]string{
		{"report", "", "", "", "", ""},
		{"alpha", "beta", "gamma", "delta", "eps", "zeta"},
		{"1", "2", "3", "4", "5", "6"},
	}
	if got := headerRow(grid, config.Default()); got != 1 {
		t.Fatalf("headerRow = %d, want 1", got)
	}
}
