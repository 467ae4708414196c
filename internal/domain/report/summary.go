// Package report builds the three cross-reference reports for a selection of
// curriculum codes: the per-class relation summary (table 1), the
// per-anchor relation expansions (table 2) and the transitive closure with
// descriptions (table 3).
//
// Builders are pure functions over an immutable *curriculum.Index. They never
// call each other and never fail for a selection of registry-valid codes.
package report

import (
	"github.com/corey/curricula/internal/domain/curriculum"
)

// Placeholder renders an empty related-code list in table 1.
const Placeholder = "-"

// SummaryRow is one table-1 row: the selected codes of one class and the
// codes of every other class related to them.
type SummaryRow struct {
	Class       curriculum.Class `json:"class"`
	ClassLabel  string           `json:"class_label"`
	Selected    string           `json:"selected"`
	RelatedSSBB string           `json:"related_ssbb"`
	RelatedCE   string           `json:"related_ce"`
	RelatedCEv  string           `json:"related_cev"`
	RelatedDO   string           `json:"related_do"`
}

// Related returns the rendered related column for class c.
func (r SummaryRow) Related(c curriculum.Class) string {
	switch c {
	case curriculum.SSBB:
		return r.RelatedSSBB
	case curriculum.CE:
		return r.RelatedCE
	case curriculum.CEv:
		return r.RelatedCEv
	case curriculum.DO:
		return r.RelatedDO
	}
	return ""
}

// BuildRelationSummary partitions the selection by class and emits one row
// per non-empty class in class order. A class's own related column is always
// the placeholder; Unknown codes are ignored.
func BuildRelationSummary(selection []string, idx *curriculum.Index) []SummaryRow {
	byClass := partition(selection, idx)

	var rows []SummaryRow
	for _, c := range curriculum.Classes {
		selected := byClass[c]
		if len(selected) == 0 {
			continue
		}
		var related [4]codeSet
		for i := range related {
			related[i] = codeSet{}
		}

		switch c {
		case curriculum.CE:
			for _, ce := range selected {
				related[curriculum.SSBB].add(idx.SBsOf(ce)...)
				related[curriculum.CEv].add(idx.CEvsUnder(ce)...)
				related[curriculum.DO].add(idx.DOsOf(ce)...)
			}

		case curriculum.SSBB:
			for _, sb := range selected {
				related[curriculum.CE].add(idx.RelatedOf(sb, curriculum.CE)...)
				related[curriculum.CEv].add(idx.RelatedOf(sb, curriculum.CEv)...)
			}
			for _, ce := range related[curriculum.CE].list() {
				related[curriculum.DO].add(idx.DOsOf(ce)...)
			}

		case curriculum.CEv:
			for _, cev := range selected {
				related[curriculum.SSBB].add(idx.SBsOf(cev)...)
				if parent, ok := idx.ParentCE(cev); ok {
					related[curriculum.CE].add(parent)
				}
			}
			for _, ce := range related[curriculum.CE].list() {
				related[curriculum.DO].add(idx.DOsOf(ce)...)
			}

		case curriculum.DO:
			for _, do := range selected {
				related[curriculum.CE].add(idx.CEsOf(do)...)
			}
			for _, ce := range related[curriculum.CE].list() {
				related[curriculum.SSBB].add(idx.SBsOf(ce)...)
				related[curriculum.CEv].add(idx.CEvsUnder(ce)...)
			}
		}

		// Self-exclusion: a class never lists itself in its own row.
		related[c] = codeSet{}

		rows = append(rows, SummaryRow{
			Class:       c,
			ClassLabel:  c.Label(),
			Selected:    JoinCodes(selected, Placeholder),
			RelatedSSBB: JoinCodes(related[curriculum.SSBB].list(), Placeholder),
			RelatedCE:   JoinCodes(related[curriculum.CE].list(), Placeholder),
			RelatedCEv:  JoinCodes(related[curriculum.CEv].list(), Placeholder),
			RelatedDO:   JoinCodes(related[curriculum.DO].list(), Placeholder),
		})
	}
	return rows
}

// partition groups selection codes by registry class, dropping duplicates
// and Unknown codes. Order within a class follows the selection.
func partition(selection []string, idx *curriculum.Index) [4][]string {
	var out [4][]string
	seen := codeSet{}
	for _, code := range selection {
		c := idx.Classify(code)
		if c == curriculum.Unknown || seen.has(code) {
			continue
		}
		seen.add(code)
		out[c] = append(out[c], code)
	}
	return out
}
