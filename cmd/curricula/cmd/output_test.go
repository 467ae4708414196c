package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/domain/report"
	"github.com/corey/curricula/internal/ports"
)

func plainOutput(t *testing.T) {
	t.Helper()
	prevUse, prevNo := useColor, color.NoColor
	useColor, color.NoColor = false, true
	t.Cleanup(func() { useColor, color.NoColor = prevUse, prevNo })
}

func testIndex() *curriculum.Index {
	return curriculum.Build(curriculum.Tables{
		SSBB: []curriculum.Entry{
			{Code: "1.A.1", Description: "Geografía física"},
			{Code: "2.A.1", Description: "Clima"},
		},
		CE:        []curriculum.Entry{{Code: "2", Description: "Analizar el territorio"}},
		CEv:       []curriculum.Entry{{Code: "2.1", Description: "Describe el relieve"}},
		DO:        []curriculum.Entry{{Code: "D1"}},
		SBLinks:   []curriculum.SBLink{{SB: "1.A.1", CE: "2", CEv: "2.1"}},
		CEDOLinks: []curriculum.CEDOLink{{CE: "2", DOs: "D1"}},
	})
}

func TestHighlight_Plain(t *testing.T) {
	plainOutput(t)
	sel := map[string]bool{"2": true}
	assert.Equal(t, "1, »2«, 3", highlight("1, 2, 3", sel))
	assert.Equal(t, report.Placeholder, highlight(report.Placeholder, sel))
	assert.Equal(t, "", highlight("", sel))
}

func TestHighlight_Color(t *testing.T) {
	prevUse, prevNo := useColor, color.NoColor
	useColor, color.NoColor = true, false
	t.Cleanup(func() { useColor, color.NoColor = prevUse, prevNo })

	out := highlight("1, 2", map[string]bool{"2": true})
	assert.True(t, strings.HasPrefix(out, "1, "))
	assert.Contains(t, out, "\x1b[")
	assert.NotContains(t, out, report.MarkOpen)
}

func TestFormatReport_Plain(t *testing.T) {
	plainOutput(t)
	b := report.Generate([]string{"1.A.1"}, testIndex())

	out := formatReport(b)
	assert.Contains(t, out, "⚡ Relaciones por tipo")
	assert.Contains(t, out, "⚡ Relaciones individuales")
	assert.Contains(t, out, "│ 4 elementos")
	assert.Contains(t, out, "»1.A.1«")
	assert.Contains(t, out, "CE 2 │ CEv 2.1 │ DO D1")
	assert.Contains(t, out, "  SSBB  »1.A.1«  Geografía física")
	assert.Contains(t, out, "D1  "+report.DescriptionNotFound)
	assert.NotContains(t, out, "\x1b[")
}

func TestFormatReport_EmptySelection(t *testing.T) {
	plainOutput(t)
	out := formatReport(report.Generate(nil, testIndex()))
	assert.Contains(t, out, "(sin códigos seleccionados)")
	assert.Contains(t, out, "│ 0 elementos")
}

func TestFormatNormalizeFailure(t *testing.T) {
	plainOutput(t)
	idx := testIndex()
	_, err := curriculum.NormalizeCodes([]string{"A.1", "ZZ9"}, idx)
	require.Error(t, err)

	out := formatNormalizeFailure(err, idx)
	assert.Contains(t, out, "write the full SSBB code, e.g. 1.A.1")
	assert.Contains(t, out, "⚡ Códigos de ejemplo")
	assert.Contains(t, out, "  SSBB  1.A.1, 2.A.1")
	assert.Contains(t, out, "  DO    D1")
}

func TestFormatJobs(t *testing.T) {
	plainOutput(t)
	jobs := []*ports.ExportJob{
		{ID: "0123456789abcdef", CodesRaw: "CE2", Status: ports.JobSuccess, OutputPath: "/tmp/x.xlsx"},
		{ID: "short", CodesRaw: "ZZ", Status: ports.JobFailed, ErrorMessage: "unknown code\nstack"},
	}
	out := formatJobs("geh", jobs)
	assert.Contains(t, out, "⚡ 2 exports │ geh")
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "/tmp/x.xlsx")
	assert.Contains(t, out, "unknown code")
	assert.NotContains(t, out, "stack")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  int
		print bool
	}{
		{"plain", errors.New("boom"), 1, true},
		{"not found", fmt.Errorf("wrap: %w", curriculum.ErrNotFound), 2, true},
		{"ambiguous", curriculum.ErrAmbiguousCode, 2, true},
		{"silent exit", exitError{code: 2, err: curriculum.ErrNotFound, silent: true}, 2, false},
		{"loud exit", exitError{code: 3}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, print := ExitCode(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.print, print)
		})
	}
}

func TestCodesInput(t *testing.T) {
	raw, err := codesInput("CE2", []string{"A.1", "2.1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "CE2, A.1, 2.1", raw)

	raw, err = codesInput("", []string{"-"}, strings.NewReader("CE1 CE2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CE1", "CE2"}, curriculum.SplitTokens(raw))

	_, err = codesInput("", nil, nil)
	assert.Error(t, err)
	_, err = codesInput(" , ", nil, nil)
	assert.Error(t, err)
}

func TestResolveColor(t *testing.T) {
	assert.False(t, resolveColor("always", true))
	assert.True(t, resolveColor("always", false))
	assert.False(t, resolveColor("never", false))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, resolveColor("auto", false))
}

func TestDecodePlan(t *testing.T) {
	p, err := decodePlan(strings.NewReader("name: t1\nunits:\n  - name: Relieve\n    ssbb: [1.A.1]\n"))
	require.NoError(t, err)
	assert.Equal(t, "t1", p.Name)
	require.Len(t, p.Units, 1)
	assert.Equal(t, []string{"1.A.1"}, p.Units[0].SSBB)

	_, err = decodePlan(strings.NewReader(""))
	assert.Error(t, err)
	_, err = decodePlan(strings.NewReader("name: t1\nbogus: 1\n"))
	assert.Error(t, err)
}
