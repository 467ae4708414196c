package report

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corey/curricula/internal/domain/curriculum"
)

// geographyIndex is a small history/geography dataset with one dangling CE
// reference ("99") and a DO shared between two CEs.
func geographyIndex(t *testing.T) *curriculum.Index {
	t.Helper()
	idx := curriculum.Build(curriculum.Tables{
		SSBB: []curriculum.Entry{
			{Code: "1.A.1", Description: "Geografía física"},
			{Code: "1.A.2", Description: "Relieve"},
			{Code: "2.B.1", Description: "Prehistoria"},
			{Code: "2.B.10", Description: "Edad Antigua"},
		},
		CE: []curriculum.Entry{
			{Code: "1", Description: "Buscar información"},
			{Code: "2", Description: "Analizar el territorio"},
			{Code: "10", Description: "Ciudadanía"},
		},
		CEv: []curriculum.Entry{
			{Code: "1.1", Description: "Localiza fuentes"},
			{Code: "1.2", Description: "Contrasta fuentes"},
			{Code: "2.1", Description: "Describe el relieve"},
			{Code: "10.1", Description: "Participa"},
		},
		DO: []curriculum.Entry{
			{Code: "CCL1", Description: "Comunicación oral"},
			{Code: "CD2", Description: "Búsqueda digital"},
			{Code: "STEM4", Description: "Interpretación de datos"},
		},
		SBLinks: []curriculum.SBLink{
			{SB: "1.A.1", CE: "2", CEv: "2.1"},
			{SB: "1.A.2", CE: "1, 2", CEv: "1.1, 2.1"},
			{SB: "2.B.1", CE: "1", CEv: "1.2"},
			{SB: "2.B.10", CE: "10, 99", CEv: "10.1"},
		},
		CEDOLinks: []curriculum.CEDOLink{
			{CE: "1", DOs: "CCL1, CD2"},
			{CE: "2", DOs: "STEM4"},
			{CE: "10", DOs: "CCL1"},
		},
	})
	require.Len(t, idx.Dangling(), 1)
	return idx
}

// treeIndex has no shared joins: every CE hangs off one SB and owns one DO.
func treeIndex(t *testing.T) *curriculum.Index {
	t.Helper()
	return curriculum.Build(curriculum.Tables{
		SSBB: []curriculum.Entry{{Code: "1.A.1", Description: "Mapas"}, {Code: "3.C.1", Description: "Clima"}},
		CE:   []curriculum.Entry{{Code: "2", Description: "Territorio"}, {Code: "3"}},
		CEv:  []curriculum.Entry{{Code: "2.1", Description: "Lee mapas"}, {Code: "3.1", Description: "Clasifica climas"}},
		DO:   []curriculum.Entry{{Code: "D1", Description: "Datos"}, {Code: "D3", Description: "Argumenta"}},
		SBLinks: []curriculum.SBLink{
			{SB: "1.A.1", CE: "2", CEv: "2.1"},
			{SB: "3.C.1", CE: "3", CEv: "3.1"},
		},
		CEDOLinks: []curriculum.CEDOLink{
			{CE: "2", DOs: "D1"},
			{CE: "3", DOs: "D3"},
		},
	})
}

func allCodes(idx *curriculum.Index) []string {
	var out []string
	for _, c := range curriculum.Classes {
		out = append(out, idx.Codes(c)...)
	}
	return out
}
