package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/curricula/internal/domain/curriculum"
)

func testIndex() *curriculum.Index {
	return curriculum.Build(curriculum.Tables{
		SSBB: []curriculum.Entry{
			{Code: "1.A.1", Description: "Mapas"},
			{Code: "1.A.2", Description: "Relieve"},
			{Code: "1.A.10", Description: "Clima"},
		},
		CE:  []curriculum.Entry{{Code: "1"}},
		CEv: []curriculum.Entry{{Code: "1.1", Description: "Lee mapas"}, {Code: "1.2", Description: "Compara"}},
	})
}

func TestPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr string
	}{
		{"ok", Plan{Name: "Trimestre 1", Units: []Unit{{Name: "U1"}, {Name: "U2"}}}, ""},
		{"no units", Plan{Name: "Vacío"}, ""},
		{"missing name", Plan{Units: []Unit{{Name: "U1"}}}, "Name"},
		{"missing unit name", Plan{Name: "P", Units: []Unit{{SSBB: []string{"1.A.1"}}}}, "Name"},
		{"duplicate unit", Plan{Name: "P", Units: []Unit{{Name: "U1"}, {Name: " U1"}}}, "duplicate unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidPlan)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPlan_CodesCleaned(t *testing.T) {
	p := Plan{Name: "P", Units: []Unit{
		{Name: "U1", SSBB: []string{" 1.A.10.", "1.A.1"}, CEv: []string{"1.1, 1.2"}},
		{Name: "U2", SSBB: []string{"1.A.1", ""}},
	}}
	assert.Equal(t, []string{"1.A.1", "1.A.10"}, p.Codes(curriculum.SSBB))
	assert.Equal(t, []string{"1.1", "1.2"}, p.Codes(curriculum.CEv))
	assert.Empty(t, p.Codes(curriculum.DO))
}

func TestAnalyze(t *testing.T) {
	idx := testIndex()
	p := &Plan{Name: "P", Subject: "GeH", Units: []Unit{
		{Name: "U1", SSBB: []string{"1.A.10", "9.Z.9"}, CEv: []string{"1.2."}},
	}}

	cov := Analyze(p, idx)
	assert.Equal(t, "P", cov.Plan)
	assert.Equal(t, 1, cov.Units)
	assert.Equal(t, 3, cov.AllSSBB)
	assert.Equal(t, 2, cov.AllCEv)
	assert.Equal(t, 1, cov.UsedSSBB)
	assert.Equal(t, 1, cov.UsedCEv)
	assert.Equal(t, []Labeled{{Code: "1.A.1", Description: "Mapas"}, {Code: "1.A.2", Description: "Relieve"}}, cov.MissingSSBB)
	assert.Equal(t, []Labeled{{Code: "1.1", Description: "Lee mapas"}}, cov.MissingCEv)
	assert.Equal(t, []string{"9.Z.9"}, cov.UnknownCodes)
	assert.False(t, cov.Complete())
	assert.InDelta(t, 40.0, cov.Percent(), 0.001)
}

func TestAnalyze_FullCoverage(t *testing.T) {
	idx := testIndex()
	p := &Plan{Name: "P", Units: []Unit{
		{Name: "U1", SSBB: []string{"1.A.1", "1.A.2"}, CEv: []string{"1.1"}},
		{Name: "U2", SSBB: []string{"1.A.10"}, CEv: []string{"1.2"}},
	}}

	cov := Analyze(p, idx)
	assert.True(t, cov.Complete())
	assert.Empty(t, cov.MissingSSBB)
	assert.NotNil(t, cov.MissingSSBB)
	assert.Empty(t, cov.UnknownCodes)
	assert.Equal(t, 100.0, cov.Percent())
}
