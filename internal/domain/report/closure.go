package report

import (
	"slices"

	"github.com/corey/curricula/internal/domain/curriculum"
)

// DescriptionNotFound stands in for a code with no or a blank registry
// description.
const DescriptionNotFound = "description not found"

// ClosureRow is one table-3 row.
type ClosureRow struct {
	Element     string           `json:"element"`
	Class       curriculum.Class `json:"class"`
	Description string           `json:"description"`
}

// BuildTransitiveClosure expands the selection to every code worth
// describing, in four fixed steps:
//
//  1. CEs joined to any DO in the set
//  2. SSBB codes joined to any code in the set
//  3. CE and CEv codes joined to those SSBB codes
//  4. DOs joined to the CEs in the set
//
// Rows are ordered by class rank, then natural code order. Selected codes
// outside every registry are kept and classed Unknown.
//
// The steps run once. When a DO or SSBB code is shared by several CEs,
// feeding the result back in can reach further codes, so the function is
// idempotent only on tree-shaped data.
func BuildTransitiveClosure(selection []string, idx *curriculum.Index) []ClosureRow {
	set := codeSet{}
	set.add(selection...)

	for _, code := range set.list() {
		if idx.In(code, curriculum.DO) {
			set.add(idx.CEsOf(code)...)
		}
	}

	sbs := codeSet{}
	for _, code := range set.list() {
		if idx.In(code, curriculum.SSBB) {
			sbs.add(code)
		}
		sbs.add(idx.SBsOf(code)...)
	}
	set.add(sbs.list()...)

	for _, sb := range sbs.list() {
		set.add(idx.RelatedOf(sb, curriculum.CE)...)
		set.add(idx.RelatedOf(sb, curriculum.CEv)...)
	}

	for _, code := range set.list() {
		if idx.In(code, curriculum.CE) {
			set.add(idx.DOsOf(code)...)
		}
	}

	rows := make([]ClosureRow, 0, len(set))
	for _, code := range set.list() {
		desc, ok := idx.Description(code)
		if !ok || desc == "" {
			desc = DescriptionNotFound
		}
		rows = append(rows, ClosureRow{
			Element:     code,
			Class:       idx.Classify(code),
			Description: desc,
		})
	}
	// set.list() is already in natural order; a stable sort by rank keeps it.
	slices.SortStableFunc(rows, func(a, b ClosureRow) int {
		return a.Class.Rank() - b.Class.Rank()
	})
	return rows
}

// Elements returns the codes of closure rows in row order.
func Elements(rows []ClosureRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Element
	}
	return out
}
