package report

import (
	"strings"

	"github.com/corey/curricula/internal/domain/curriculum"
)

// Separator joins codes inside one rendered cell.
const Separator = ", "

// Selection markers wrap selected codes in plain-text output.
const (
	MarkOpen  = "»"
	MarkClose = "«"
)

// codeSet is an unordered set of codes.
type codeSet map[string]struct{}

func (s codeSet) add(codes ...string) {
	for _, c := range codes {
		s[c] = struct{}{}
	}
}

func (s codeSet) has(code string) bool {
	_, ok := s[code]
	return ok
}

// list returns the members in natural order.
func (s codeSet) list() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	curriculum.Sort(out)
	return out
}

// JoinCodes dedupes codes, orders them naturally and joins them with
// Separator. An empty list renders as placeholder.
func JoinCodes(codes []string, placeholder string) string {
	if len(codes) == 0 {
		return placeholder
	}
	return strings.Join(curriculum.SortedUnique(codes), Separator)
}

// SplitCell is the inverse of JoinCodes. The placeholder and blank cells
// yield nil.
func SplitCell(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == Placeholder {
		return nil
	}
	parts := strings.Split(cell, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MarkSelected wraps every part of a rendered cell that is a selected code
// as »code«. Other parts and the placeholder are left as they are.
func MarkSelected(cell string, selected map[string]bool) string {
	parts := SplitCell(cell)
	if len(parts) == 0 {
		return cell
	}
	for i, p := range parts {
		if selected[p] {
			parts[i] = MarkOpen + p + MarkClose
		}
	}
	return strings.Join(parts, Separator)
}

// SelectionSet indexes a selection for MarkSelected.
func SelectionSet(selection []string) map[string]bool {
	out := make(map[string]bool, len(selection))
	for _, c := range selection {
		out[c] = true
	}
	return out
}

// Bundle is the complete report for one selection.
type Bundle struct {
	Selection  []string     `json:"selection"`
	Summary    []SummaryRow `json:"summary"`
	Expansions Expansions   `json:"expansions"`
	Closure    []ClosureRow `json:"closure"`
}

// Generate runs the three builders over one selection.
func Generate(selection []string, idx *curriculum.Index) *Bundle {
	return &Bundle{
		Selection:  selection,
		Summary:    BuildRelationSummary(selection, idx),
		Expansions: BuildRelationExpansions(selection, idx),
		Closure:    BuildTransitiveClosure(selection, idx),
	}
}
