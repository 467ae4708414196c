package xlsx

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/domain/report"
	"github.com/corey/curricula/internal/ports"
)

// Report sheet names.
const (
	SheetSummary      = "Relaciones por tipo"
	SheetExpansions   = "Relaciones individuales"
	SheetDescriptions = "Descr. de elementos mostrados"
)

// Selected codes are bold red in code-list cells.
const (
	selectedColor = "FF0000"
	maxColWidth   = 100
)

var (
	summaryHeader     = []string{"Tipo", "Elementos seleccionados", "SSBB relacionados", "CE relacionados", "CEv relacionados", "DO relacionados"}
	expansionHeader   = []string{"Código", "SSBB", "CE", "CEv", "DO"}
	descriptionHeader = []string{"Elemento", "Tipo", "Descripción"}
)

// Exporter implements ports.Exporter.
type Exporter struct{}

var _ ports.Exporter = (*Exporter)(nil)

// NewExporter creates a report workbook writer.
func NewExporter() *Exporter { return &Exporter{} }

// Export writes the bundle as a three-sheet workbook.
func (e *Exporter) Export(w io.Writer, b *report.Bundle) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	selected := report.SelectionSet(b.Selection)

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetExpansions, SheetDescriptions} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	sw := newSheetWriter(f, SheetSummary, bold, selected)
	sw.header(summaryHeader)
	for _, row := range b.Summary {
		sw.text(row.ClassLabel)
		sw.codes(row.Selected)
		for _, c := range curriculum.Classes {
			sw.codes(row.Related(c))
		}
		sw.next()
	}
	if err := sw.finish(); err != nil {
		return err
	}

	sw = newSheetWriter(f, SheetExpansions, bold, selected)
	for _, c := range curriculum.Classes {
		sw.title(fmt.Sprintf("%s seleccionados y relacionados", c))
		sw.header(expansionHeader)
		for _, row := range b.Expansions.Anchored(c) {
			sw.codes(row.Code)
			for _, col := range curriculum.Classes {
				sw.codes(report.JoinCodes(row.Column(col), ""))
			}
			sw.next()
		}
		sw.next()
	}
	sw.title("Descripciones")
	writeDescriptions(sw, b.Closure)
	if err := sw.finish(); err != nil {
		return err
	}

	sw = newSheetWriter(f, SheetDescriptions, bold, selected)
	writeDescriptions(sw, b.Closure)
	if err := sw.finish(); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeDescriptions(sw *sheetWriter, rows []report.ClosureRow) {
	sw.header(descriptionHeader)
	for _, row := range rows {
		sw.codes(row.Element)
		sw.text(row.Class.Label())
		sw.text(row.Description)
		sw.next()
	}
}

// sheetWriter appends cells row by row and tracks column widths. The first
// write error sticks and is returned by finish.
type sheetWriter struct {
	f        *excelize.File
	sheet    string
	bold     int
	selected map[string]bool
	row, col int
	widths   map[int]int
	err      error
}

func newSheetWriter(f *excelize.File, sheet string, bold int, selected map[string]bool) *sheetWriter {
	return &sheetWriter{f: f, sheet: sheet, bold: bold, selected: selected, row: 1, col: 1, widths: map[int]int{}}
}

func (s *sheetWriter) cell() string {
	name, err := excelize.CoordinatesToCellName(s.col, s.row)
	if err != nil && s.err == nil {
		s.err = err
	}
	return name
}

func (s *sheetWriter) track(v string) {
	if n := utf8.RuneCountInString(v); n > s.widths[s.col] {
		s.widths[s.col] = n
	}
	s.col++
}

func (s *sheetWriter) text(v string) {
	if s.err == nil {
		s.err = s.f.SetCellStr(s.sheet, s.cell(), v)
	}
	s.track(v)
}

func (s *sheetWriter) boldText(v string) {
	if s.err == nil {
		cell := s.cell()
		if s.err = s.f.SetCellStr(s.sheet, cell, v); s.err == nil {
			s.err = s.f.SetCellStyle(s.sheet, cell, cell, s.bold)
		}
	}
	s.track(v)
}

// codes writes a rendered code list. Lists holding a selected code become
// rich text with those codes bold red.
func (s *sheetWriter) codes(v string) {
	parts := report.SplitCell(v)
	marked := false
	for _, p := range parts {
		if s.selected[p] {
			marked = true
			break
		}
	}
	if !marked {
		s.text(v)
		return
	}

	runs := make([]excelize.RichTextRun, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			runs = append(runs, excelize.RichTextRun{Text: report.Separator})
		}
		run := excelize.RichTextRun{Text: p}
		if s.selected[p] {
			run.Font = &excelize.Font{Bold: true, Color: selectedColor}
		}
		runs = append(runs, run)
	}
	if s.err == nil {
		s.err = s.f.SetCellRichText(s.sheet, s.cell(), runs)
	}
	s.track(v)
}

func (s *sheetWriter) header(cols []string) {
	for _, c := range cols {
		s.boldText(c)
	}
	s.next()
}

func (s *sheetWriter) title(v string) {
	s.boldText(v)
	s.next()
}

func (s *sheetWriter) next() {
	s.row++
	s.col = 1
}

// finish applies column widths: the longest value plus two.
func (s *sheetWriter) finish() error {
	if s.err != nil {
		return fmt.Errorf("sheet %q: %w", s.sheet, s.err)
	}
	for col, n := range s.widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		width := float64(min(n+2, maxColWidth))
		if err := s.f.SetColWidth(s.sheet, name, name, width); err != nil {
			return err
		}
	}
	return nil
}
