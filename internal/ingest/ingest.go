package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/smelens-cli/internal/config"
	"github.com/KaramelBytes/smelens-cli/internal/schema"
	"github.com/KaramelBytes/smelens-cli/internal/table"
)

// Source identifies a spreadsheet to ingest: either a filesystem path or an
// in-memory byte buffer with an associated filename.
type Source struct {
	Path  string
	Bytes []byte
	Name  string
}

// FromPath returns a file-backed source.
func FromPath(path string) Source {
	return Source{Path: path, Name: path}
}

// FromBytes returns an in-memory source. The name is used only to pick a
// decoder by extension.
func FromBytes(b []byte, name string) Source {
	return Source{Bytes: b, Name: name}
}

// Ingest decodes the source into a raw table: the most plausible sheet is
// selected, the true header row located, and column names normalized to
// snake_case. It fails only with *UnreadableSourceError; a sheet with no
// usable tabular region still yields a (possibly empty) table.
func Ingest(src Source, cfg config.Pipeline) (*table.Table, error) {
	name := strings.ToLower(src.Name)
	if strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") {
		return ingestDelimited(src, cfg)
	}
	return ingestWorkbook(src, cfg)
}

func ingestWorkbook(src Source, cfg config.Pipeline) (*table.Table, error) {
	var (
		f   *excelize.File
		err error
	)
	if src.Path != "" {
		f, err = excelize.OpenFile(src.Path)
	} else {
		f, err = excelize.OpenReader(bytes.NewReader(src.Bytes))
	}
	if err != nil {
		return nil, &UnreadableSourceError{Name: src.Name, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &UnreadableSourceError{Name: src.Name, Err: errors.New("workbook has no sheets")}
	}

	// Score each sheet by the size of its non-empty preview region; the
	// largest plausible table wins. Undersized sheets are skipped so a cover
	// sheet or notes tab never shadows the real data.
	best := sheets[0]
	bestScore := -1
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) > cfg.SheetPreviewRows {
			rows = rows[:cfg.SheetPreviewRows]
		}
		preview := trimGrid(rows)
		if len(preview) < cfg.SheetMinRows || gridWidth(preview) < cfg.SheetMinCols {
			continue
		}
		if score := len(preview) * gridWidth(preview); score > bestScore {
			bestScore = score
			best = sheet
		}
	}

	rows, err := f.GetRows(best)
	if err != nil {
		return nil, &UnreadableSourceError{Name: src.Name, Err: err}
	}
	return tableFromGrid(trimGrid(rows), cfg), nil
}

func ingestDelimited(src Source, cfg config.Pipeline) (*table.Table, error) {
	var rd io.Reader
	if src.Path != "" {
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, &UnreadableSourceError{Name: src.Name, Err: err}
		}
		defer f.Close()
		rd = f
	} else {
		rd = bytes.NewReader(src.Bytes)
	}
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if strings.HasSuffix(strings.ToLower(src.Name), ".tsv") {
		r.Comma = '\t'
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &UnreadableSourceError{Name: src.Name, Err: err}
	}
	return tableFromGrid(trimGrid(rows), cfg), nil
}

// tableFromGrid locates the header row within the blank-trimmed grid and
// builds the raw table from everything strictly below it.
func tableFromGrid(grid [][]string, cfg config.Pipeline) *table.Table {
	if len(grid) == 0 {
		return table.New(0)
	}
	idx := headerRow(grid, cfg)
	header := SnakeColumns(padRow(grid[idx], gridWidth(grid)))
	return table.FromRows(header, grid[idx+1:])
}

// headerRow scans the first HeaderSearchWindow rows and picks the one whose
// cells best match the known schema vocabulary, tie-broken by non-empty cell
// count. With zero vocabulary matches it falls back to the first row that is
// mostly filled, and finally to row 0.
func headerRow(grid [][]string, cfg config.Pipeline) int {
	vocab := schema.HeaderVocabulary()
	limit := cfg.HeaderSearchWindow
	if limit > len(grid) {
		limit = len(grid)
	}

	bestIdx := 0
	bestMatch, bestNonEmpty := -1, -1
	for i := 0; i < limit; i++ {
		match, nonEmpty := 0, 0
		for _, cell := range grid[i] {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			nonEmpty++
			if _, ok := vocab[schema.NormalizeToken(cell)]; ok {
				match++
			}
		}
		if match > bestMatch || (match == bestMatch && nonEmpty > bestNonEmpty) {
			bestMatch, bestNonEmpty = match, nonEmpty
			bestIdx = i
		}
	}

	if bestMatch <= 0 {
		width := gridWidth(grid)
		need := width / 2
		if need < 5 {
			need = 5
		}
		for i := 0; i < limit; i++ {
			nonEmpty := 0
			for _, cell := range grid[i] {
				if strings.TrimSpace(cell) != "" {
					nonEmpty++
				}
			}
			if nonEmpty >= need {
				return i
			}
		}
		return 0
	}
	return bestIdx
}

// trimGrid drops rows and columns that are entirely empty.
func trimGrid(rows [][]string) [][]string {
	var kept [][]string
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	width := gridWidth(kept)
	used := make([]bool, width)
	for _, row := range kept {
		for j, cell := range row {
			if strings.TrimSpace(cell) != "" {
				used[j] = true
			}
		}
	}
	out := make([][]string, len(kept))
	for i, row := range kept {
		var nr []string
		for j := 0; j < width; j++ {
			if !used[j] {
				continue
			}
			if j < len(row) {
				nr = append(nr, row[j])
			} else {
				nr = append(nr, "")
			}
		}
		out[i] = nr
	}
	return out
}

func gridWidth(rows [][]string) int {
	w := 0
	for _, row := range rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
