package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTables is a small but complete dataset: two CE trees, shared SSBB
// units, a multi-DO cell and a dangling join reference.
func sampleTables() Tables {
	return Tables{
		SSBB: []Entry{
			{Code: "1.A.1", Description: "Geografía física"},
			{Code: "1.A.2.", Description: "Relieve"},
			{Code: "2.B.1", Description: "Prehistoria"},
			{Code: " 2.B.10 ", Description: "Edad Antigua"},
		},
		CE: []Entry{
			{Code: "1", Description: "Buscar información"},
			{Code: "2", Description: "Analizar el territorio"},
			{Code: "10", Description: "Ciudadanía"},
		},
		CEv: []Entry{
			{Code: "1.1", Description: "Localiza fuentes"},
			{Code: "1.2", Description: "Contrasta fuentes"},
			{Code: "2.1", Description: "Describe el relieve"},
			{Code: "10.1", Description: "Participa"},
		},
		DO: []Entry{
			{Code: "CCL1", Description: "Comunicación oral"},
			{Code: "CD2", Description: "Búsqueda digital"},
			{Code: "STEM4", Description: "Interpretación de datos"},
		},
		SBLinks: []SBLink{
			{SB: "1.A.1", CE: "2", CEv: "2.1"},
			{SB: "1.A.2", CE: "1, 2.", CEv: "1.1,2.1"},
			{SB: "2.B.1", CE: "1", CEv: " 1.2 , "},
			{SB: "2.B.10", CE: "10, 99", CEv: "10.1"},
		},
		CEDOLinks: []CEDOLink{
			{CE: "1", DOs: "CCL1, CD2"},
			{CE: "2.", DOs: "STEM4"},
			{CE: "10", DOs: "CCL1"},
		},
	}
}

func sampleIndex(t *testing.T) *Index {
	t.Helper()
	idx := Build(sampleTables())
	require.NotNil(t, idx)
	return idx
}

func TestBuild_RegistriesCleanedAndSorted(t *testing.T) {
	idx := sampleIndex(t)

	assert.Equal(t, []string{"1.A.1", "1.A.2", "2.B.1", "2.B.10"}, idx.Codes(SSBB))
	assert.Equal(t, []string{"1", "2", "10"}, idx.Codes(CE))
	assert.Equal(t, []string{"1.1", "1.2", "2.1", "10.1"}, idx.Codes(CEv))
	assert.Equal(t, []string{"CCL1", "CD2", "STEM4"}, idx.Codes(DO))
	assert.Equal(t, 4, idx.Count(SSBB))
	assert.Nil(t, idx.Codes(Unknown))
}

func TestBuild_ExplodesJoinCells(t *testing.T) {
	idx := sampleIndex(t)

	edges := idx.SBEdges()
	assert.Contains(t, edges, SBEdge{SB: "1.A.2", Code: "1", Class: CE})
	assert.Contains(t, edges, SBEdge{SB: "1.A.2", Code: "2", Class: CE})
	assert.Contains(t, edges, SBEdge{SB: "1.A.2", Code: "1.1", Class: CEv})
	assert.Contains(t, edges, SBEdge{SB: "2.B.1", Code: "1.2", Class: CEv})
	// 1 + 1 + 2 + 2 + 1 + 1 + 2 + 1 tokens; empty tokens discarded.
	assert.Len(t, edges, 11)

	do := idx.CEDOEdges()
	assert.ElementsMatch(t, []CEDOEdge{
		{CE: "1", DO: "CCL1"}, {CE: "1", DO: "CD2"}, {CE: "2", DO: "STEM4"}, {CE: "10", DO: "CCL1"},
	}, do)
}

func TestBuild_DanglingEdgesExcludedFromLookups(t *testing.T) {
	idx := sampleIndex(t)

	assert.Contains(t, idx.SBEdges(), SBEdge{SB: "2.B.10", Code: "99", Class: CE})
	assert.Equal(t, []DanglingRef{{Code: "99", Class: CE, From: "2.B.10"}}, idx.Dangling())
	assert.Equal(t, []string{"10"}, idx.RelatedOf("2.B.10", CE))
}

func TestBuild_RecordsBothEndsOfDanglingEdge(t *testing.T) {
	tables := sampleTables()
	tables.SBLinks = []SBLink{{SB: "9.Z.9", CE: "99"}}
	tables.CEDOLinks = []CEDOLink{{CE: "77", DOs: "XX1"}}
	idx := Build(tables)

	assert.Equal(t, []DanglingRef{
		{Code: "9.Z.9", Class: SSBB, From: "99"},
		{Code: "99", Class: CE, From: "9.Z.9"},
		{Code: "77", Class: CE, From: "XX1"},
		{Code: "XX1", Class: DO, From: "77"},
	}, idx.Dangling())
	assert.Empty(t, idx.RelatedOf("9.Z.9", CE))
	assert.Empty(t, idx.DOsOf("77"))
}

func TestIndex_Lookups(t *testing.T) {
	idx := sampleIndex(t)

	assert.Equal(t, []string{"1.A.1", "1.A.2"}, idx.SBsOf("2"))
	assert.Equal(t, []string{"1.A.2"}, idx.SBsOf("1.1"))
	assert.Nil(t, idx.SBsOf("CCL1"))
	assert.Equal(t, []string{"1", "2"}, idx.RelatedOf("1.A.2", CE))
	assert.Equal(t, []string{"1.1", "2.1"}, idx.RelatedOf("1.A.2", CEv))
	assert.Equal(t, []string{"CCL1", "CD2"}, idx.DOsOf("1"))
	assert.Equal(t, []string{"1", "10"}, idx.CEsOf("CCL1"))
	assert.Equal(t, []string{"1.1", "1.2"}, idx.CEvsUnder("1"))
	assert.Equal(t, []string{"10.1"}, idx.CEvsUnder("10"))
}

func TestIndex_ParentCE(t *testing.T) {
	idx := sampleIndex(t)

	p, ok := idx.ParentCE("10.1")
	assert.True(t, ok)
	assert.Equal(t, "10", p)

	_, ok = idx.ParentCE("7.1")
	assert.False(t, ok, "prefix must be a registered CE")
	_, ok = idx.ParentCE("10")
	assert.False(t, ok, "no dot, no parent")
}

func TestIndex_ClassifyAndDescription(t *testing.T) {
	idx := sampleIndex(t)

	assert.Equal(t, SSBB, idx.Classify("2.B.10"))
	assert.Equal(t, CE, idx.Classify("10"))
	assert.Equal(t, CEv, idx.Classify("10.1"))
	assert.Equal(t, DO, idx.Classify("STEM4"))
	assert.Equal(t, Unknown, idx.Classify("99"))
	assert.True(t, idx.Has("CD2"))
	assert.False(t, idx.Has(""))

	d, ok := idx.Description("1.A.2")
	assert.True(t, ok)
	assert.Equal(t, "Relieve", d)
	_, ok = idx.Description("99")
	assert.False(t, ok)
}

func TestIndex_AccessorsReturnCopies(t *testing.T) {
	idx := sampleIndex(t)

	codes := idx.Codes(CE)
	codes[0] = "mutated"
	assert.Equal(t, "1", idx.Codes(CE)[0])

	dos := idx.DOsOf("1")
	dos[0] = "mutated"
	assert.Equal(t, "CCL1", idx.DOsOf("1")[0])
}

func TestSplitCell(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, SplitCell("1, 2.,3 "))
	assert.Nil(t, SplitCell(" , ,"))
	assert.Nil(t, SplitCell(""))
}

func TestCleanCode(t *testing.T) {
	assert.Equal(t, "1.A.1", CleanCode("  1.A.1.. "))
	assert.Equal(t, "", CleanCode(" . "))
}

func TestClass_StringsAndParse(t *testing.T) {
	assert.Equal(t, "CEv", CEv.String())
	assert.Equal(t, "Otro", Unknown.String())
	assert.Equal(t, "Competencia Específica", CE.Label())
	assert.Less(t, SSBB.Rank(), CE.Rank())
	assert.Less(t, DO.Rank(), Unknown.Rank())

	for in, want := range map[string]Class{"sb": SSBB, "SSBB": SSBB, "cev": CEv, " DO ": DO} {
		got, ok := ParseClass(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseClass("XX")
	assert.False(t, ok)

	var c Class
	require.NoError(t, c.UnmarshalText([]byte("CE")))
	assert.Equal(t, CE, c)
	b, err := DO.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "DO", string(b))
}
