package planner

import (
	"github.com/corey/curricula/internal/domain/curriculum"
)

// Labeled is a registry code with its description.
type Labeled struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Coverage reports which SSBB and CEv codes a plan leaves out.
type Coverage struct {
	Plan         string    `json:"plan"`
	Subject      string    `json:"subject,omitempty"`
	Units        int       `json:"units"`
	AllSSBB      int       `json:"all_ssbb"`
	AllCEv       int       `json:"all_cev"`
	UsedSSBB     int       `json:"used_ssbb"`
	UsedCEv      int       `json:"used_cev"`
	MissingSSBB  []Labeled `json:"missing_ssbb"`
	MissingCEv   []Labeled `json:"missing_cev"`
	UnknownCodes []string  `json:"unknown_codes,omitempty"`
}

// Complete reports whether every SSBB and CEv code is covered.
func (c Coverage) Complete() bool {
	return len(c.MissingSSBB) == 0 && len(c.MissingCEv) == 0
}

// Percent returns the share of SSBB plus CEv codes used, in [0, 100].
func (c Coverage) Percent() float64 {
	total := c.AllSSBB + c.AllCEv
	if total == 0 {
		return 100
	}
	return float64(c.UsedSSBB+c.UsedCEv) * 100 / float64(total)
}

// Analyze compares the codes used by plan against the registries of idx.
// Used codes not present in the matching registry are reported as unknown
// and do not count as used.
func Analyze(plan *Plan, idx *curriculum.Index) Coverage {
	cov := Coverage{
		Plan:        plan.Name,
		Subject:     plan.Subject,
		Units:       len(plan.Units),
		AllSSBB:     idx.Count(curriculum.SSBB),
		AllCEv:      idx.Count(curriculum.CEv),
		MissingSSBB: []Labeled{},
		MissingCEv:  []Labeled{},
	}

	var unknown []string
	for _, c := range []curriculum.Class{curriculum.SSBB, curriculum.CEv} {
		used := make(map[string]bool)
		for _, code := range plan.Codes(c) {
			if !idx.In(code, c) {
				unknown = append(unknown, code)
				continue
			}
			used[code] = true
		}

		var missing []Labeled
		for _, code := range idx.Codes(c) {
			if used[code] {
				continue
			}
			desc, _ := idx.Description(code)
			missing = append(missing, Labeled{Code: code, Description: desc})
		}

		switch c {
		case curriculum.SSBB:
			cov.UsedSSBB = len(used)
			if missing != nil {
				cov.MissingSSBB = missing
			}
		case curriculum.CEv:
			cov.UsedCEv = len(used)
			if missing != nil {
				cov.MissingCEv = missing
			}
		}
	}
	cov.UnknownCodes = curriculum.SortedUnique(unknown)
	return cov
}
