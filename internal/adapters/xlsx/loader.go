package xlsx

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/ports"
)

// Loader implements ports.DatasetLoader for .xlsx workbooks.
type Loader struct{}

var _ ports.DatasetLoader = (*Loader)(nil)

// NewLoader creates a workbook loader.
func NewLoader() *Loader { return &Loader{} }

// LoadFile opens path and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) (*curriculum.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.Load(ctx, path, f)
}

// Load reads the six dataset sheets. Cells are NFC-normalized and trimmed;
// code cleanup and edge explosion happen in curriculum.Build.
func (l *Loader) Load(ctx context.Context, source string, r io.Reader) (*curriculum.Tables, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &curriculum.LoadError{Source: source, Err: err}
	}
	defer wb.Close()

	s := &sheetReader{wb: wb, source: source, sheets: wb.GetSheetList()}
	t := &curriculum.Tables{}

	regs := [4]*[]curriculum.Entry{&t.SSBB, &t.CE, &t.CEv, &t.DO}
	for i, rs := range registrySheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := s.read(rs.name, rs.codeCol, rs.descCol)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if row[0] == "" {
				continue
			}
			*regs[i] = append(*regs[i], curriculum.Entry{Code: row[0], Description: row[1]})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.read(SheetSBJoin, ColSB, ColCE, ColCEv)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row[0] == "" {
			continue
		}
		t.SBLinks = append(t.SBLinks, curriculum.SBLink{SB: row[0], CE: row[1], CEv: row[2]})
	}

	rows, err = s.read(SheetCEDO, ColCE, ColDOList)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row[0] == "" {
			continue
		}
		t.CEDOLinks = append(t.CEDOLinks, curriculum.CEDOLink{CE: row[0], DOs: row[1]})
	}
	return t, nil
}

// sheetReader projects named columns out of workbook sheets.
type sheetReader struct {
	wb     *excelize.File
	source string
	sheets []string
}

// read returns, for every data row of sheet, the cells under cols in that
// order. Row 1 is the header; short rows are padded with "".
func (s *sheetReader) read(sheet string, cols ...string) ([][]string, error) {
	if !slices.Contains(s.sheets, sheet) {
		return nil, &curriculum.LoadError{Source: s.source, Sheet: sheet}
	}
	rows, err := s.wb.GetRows(sheet)
	if err != nil {
		return nil, &curriculum.LoadError{Source: s.source, Sheet: sheet, Err: err}
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	pos := make([]int, len(cols))
	for i, col := range cols {
		pos[i] = slices.IndexFunc(header, func(h string) bool { return clean(h) == col })
		if pos[i] < 0 {
			return nil, &curriculum.LoadError{Source: s.source, Sheet: sheet, Column: col}
		}
	}

	if len(rows) < 2 {
		return nil, nil
	}
	out := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		vals := make([]string, len(cols))
		for i, p := range pos {
			if p < len(row) {
				vals[i] = clean(row[p])
			}
		}
		out = append(out, vals)
	}
	return out, nil
}

func clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// sheetHeaders returns the header row the loader expects for each sheet.
func sheetHeaders() map[string][]string {
	out := make(map[string][]string, 6)
	for _, rs := range registrySheets {
		out[rs.name] = []string{rs.codeCol, rs.descCol}
	}
	out[SheetSBJoin] = []string{ColSB, ColCE, ColCEv}
	out[SheetCEDO] = []string{ColCE, ColDOList}
	return out
}

// WriteDataset writes t as a workbook the Loader reads back. A nil t writes
// the empty template with headers only.
func WriteDataset(w io.Writer, t *curriculum.Tables) error {
	if t == nil {
		t = &curriculum.Tables{}
	}
	f := excelize.NewFile()
	defer f.Close()

	headers := sheetHeaders()
	data := map[string][][]string{}
	regs := [4][]curriculum.Entry{t.SSBB, t.CE, t.CEv, t.DO}
	for i, rs := range registrySheets {
		for _, e := range regs[i] {
			data[rs.name] = append(data[rs.name], []string{e.Code, e.Description})
		}
	}
	for _, l := range t.SBLinks {
		data[SheetSBJoin] = append(data[SheetSBJoin], []string{l.SB, l.CE, l.CEv})
	}
	for _, l := range t.CEDOLinks {
		data[SheetCEDO] = append(data[SheetCEDO], []string{l.CE, l.DOs})
	}

	order := []string{SheetSSBB, SheetCE, SheetCEv, SheetDO, SheetSBJoin, SheetCEDO}
	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}
		rows := append([][]string{headers[name]}, data[name]...)
		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("write %s row %d: %w", name, r+1, err)
			}
		}
	}
	return f.Write(w)
}
