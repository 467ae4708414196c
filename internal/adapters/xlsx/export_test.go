package xlsx

import (
	"bytes"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/domain/report"
)

func exportBundle(t *testing.T, selection []string) *excelize.File {
	t.Helper()
	idx := curriculum.Build(*testTables())
	var buf bytes.Buffer
	require.NoError(t, NewExporter().Export(&buf, report.Generate(selection, idx)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExporter_Sheets(t *testing.T) {
	f := exportBundle(t, []string{"2"})
	assert.Equal(t, []string{SheetSummary, SheetExpansions, SheetDescriptions}, f.GetSheetList())
}

func TestExporter_SummarySheet(t *testing.T) {
	f := exportBundle(t, []string{"2"})

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, summaryHeader, rows[0])
	assert.Equal(t, []string{"Competencia Específica", "2", "1.A.1, 1.A.2", "-", "2.1", "CCL1, STEM4"}, rows[1])

	styleID, err := f.GetCellStyle(SheetSummary, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.True(t, style.Font.Bold)

	width, err := f.GetColWidth(SheetSummary, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(utf8.RuneCountInString("Competencia Específica")+2), width)
}

func TestExporter_MarksSelectedCodes(t *testing.T) {
	f := exportBundle(t, []string{"2", "CCL1"})

	// Row 2 is the CE row; its DO column lists CCL1 (selected) and STEM4.
	runs, err := f.GetCellRichText(SheetSummary, "F2")
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "CCL1", runs[0].Text)
	require.NotNil(t, runs[0].Font)
	assert.True(t, runs[0].Font.Bold)
	assert.Equal(t, selectedColor, runs[0].Font.Color)
	assert.Equal(t, ", ", runs[1].Text)
	assert.Equal(t, "STEM4", runs[2].Text)
	if runs[2].Font != nil {
		assert.False(t, runs[2].Font.Bold)
	}
}

func TestExporter_ExpansionsAndDescriptions(t *testing.T) {
	f := exportBundle(t, []string{"1.A.1"})

	rows, err := f.GetRows(SheetExpansions)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"SSBB seleccionados y relacionados"}, rows[0])
	assert.Equal(t, expansionHeader, rows[1])
	assert.Equal(t, []string{"1.A.1", "", "2", "2.1", "CCL1, STEM4"}, rows[2])

	var titles []string
	for _, r := range rows {
		if len(r) == 1 {
			titles = append(titles, r[0])
		}
	}
	assert.Equal(t, []string{
		"SSBB seleccionados y relacionados",
		"CE seleccionados y relacionados",
		"CEv seleccionados y relacionados",
		"DO seleccionados y relacionados",
		"Descripciones",
	}, titles)

	desc, err := f.GetRows(SheetDescriptions)
	require.NoError(t, err)
	assert.Equal(t, descriptionHeader, desc[0])
	assert.Equal(t, []string{"1.A.1", "Saber Básico", "Geografía física"}, desc[1])
	assert.Equal(t, []string{"STEM4", "Descriptor Operativo", "Datos"}, desc[len(desc)-1])
}
