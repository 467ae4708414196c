package curriculum

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Entry is one registry row: a code and its free-text description.
type Entry struct {
	Code        string
	Description string
}

// SBLink is one row of the SSBB↔(CE, CEv) join table. CE and CEv cells may
// hold comma-separated lists.
type SBLink struct {
	SB  string
	CE  string
	CEv string
}

// CEDOLink is one row of the CE↔DO join table. DOs may hold a
// comma-separated list.
type CEDOLink struct {
	CE  string
	DOs string
}

// Tables is the raw tabular input produced by a dataset loader: four
// registries and two join tables, cells already trimmed by the loader.
type Tables struct {
	SSBB      []Entry
	CE        []Entry
	CEv       []Entry
	DO        []Entry
	SBLinks   []SBLink
	CEDOLinks []CEDOLink
}

// SBEdge relates an SSBB code to a CE or CEv code. Class is the class of
// Code as tagged by the join-table column it came from.
type SBEdge struct {
	SB    string
	Code  string
	Class Class
}

// CEDOEdge relates a CE code to a DO code.
type CEDOEdge struct {
	CE string
	DO string
}

// DanglingRef records an edge endpoint missing from the registry of its class.
type DanglingRef struct {
	Code  string // the missing code
	Class Class  // registry it was expected in
	From  string // the other endpoint of the edge
}

// Index is the immutable curriculum index built once per dataset load.
// All methods are safe for concurrent use; nothing mutates an Index after
// Build returns.
type Index struct {
	registry    [4]map[string]struct{}
	sorted      [4][]string
	description map[string]string

	sbEdges   []SBEdge
	ceDOEdges []CEDOEdge
	dangling  []DanglingRef

	// Adjacency over registry-valid edges only, values natural-sorted.
	sbToCE  map[string][]string
	sbToCEv map[string][]string
	ceToSB  map[string][]string
	cevToSB map[string][]string
	ceToDO  map[string][]string
	doToCE  map[string][]string
	ceToCEv map[string][]string
}

// CleanCode normalizes a registry or join-table cell: NFC, surrounding
// whitespace trimmed, trailing dots removed.
func CleanCode(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	s = strings.TrimRight(s, ".")
	return strings.TrimSpace(s)
}

// SplitCell explodes a comma-separated join-table cell into cleaned,
// non-empty codes.
func SplitCell(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ",") {
		if c := CleanCode(part); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Build constructs an Index from raw tables. Registries are deduplicated;
// join cells are exploded into one edge per surviving token.
func Build(t Tables) *Index {
	idx := &Index{description: make(map[string]string)}

	regs := [4][]Entry{t.SSBB, t.CE, t.CEv, t.DO}
	for c, entries := range regs {
		set := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			code := CleanCode(e.Code)
			if code == "" {
				continue
			}
			set[code] = struct{}{}
		}
		idx.registry[c] = set
		idx.sorted[c] = SortedUnique(keys(set))
	}

	// Later classes win on duplicate descriptions: SSBB, CEv, CE, DO.
	for _, entries := range [][]Entry{t.SSBB, t.CEv, t.CE, t.DO} {
		for _, e := range entries {
			if code := CleanCode(e.Code); code != "" {
				idx.description[code] = e.Description
			}
		}
	}

	sbToCE, sbToCEv := newLinkSet(), newLinkSet()
	ceToSB, cevToSB := newLinkSet(), newLinkSet()
	for _, row := range t.SBLinks {
		sb := CleanCode(row.SB)
		if sb == "" {
			continue
		}
		for _, col := range []struct {
			cell  string
			class Class
		}{{row.CE, CE}, {row.CEv, CEv}} {
			for _, code := range SplitCell(col.cell) {
				idx.sbEdges = append(idx.sbEdges, SBEdge{SB: sb, Code: code, Class: col.class})
				okSB := idx.checkEdge(sb, SSBB, code)
				okCode := idx.checkEdge(code, col.class, sb)
				if !okSB || !okCode {
					continue
				}
				if col.class == CE {
					sbToCE.add(sb, code)
					ceToSB.add(code, sb)
				} else {
					sbToCEv.add(sb, code)
					cevToSB.add(code, sb)
				}
			}
		}
	}

	ceToDO, doToCE := newLinkSet(), newLinkSet()
	for _, row := range t.CEDOLinks {
		ce := CleanCode(row.CE)
		if ce == "" {
			continue
		}
		for _, do := range SplitCell(row.DOs) {
			idx.ceDOEdges = append(idx.ceDOEdges, CEDOEdge{CE: ce, DO: do})
			okCE := idx.checkEdge(ce, CE, do)
			okDO := idx.checkEdge(do, DO, ce)
			if !okCE || !okDO {
				continue
			}
			ceToDO.add(ce, do)
			doToCE.add(do, ce)
		}
	}

	ceToCEv := newLinkSet()
	for _, cev := range idx.sorted[CEv] {
		for i := 1; i < len(cev); i++ {
			if cev[i] != '.' {
				continue
			}
			if parent := cev[:i]; idx.In(parent, CE) {
				ceToCEv.add(parent, cev)
			}
		}
	}

	idx.sbToCE, idx.sbToCEv = sbToCE.freeze(), sbToCEv.freeze()
	idx.ceToSB, idx.cevToSB = ceToSB.freeze(), cevToSB.freeze()
	idx.ceToDO, idx.doToCE = ceToDO.freeze(), doToCE.freeze()
	idx.ceToCEv = ceToCEv.freeze()
	return idx
}

// checkEdge reports whether code is in the registry of class, recording a
// dangling reference when it is not.
func (idx *Index) checkEdge(code string, class Class, from string) bool {
	if idx.In(code, class) {
		return true
	}
	idx.dangling = append(idx.dangling, DanglingRef{Code: code, Class: class, From: from})
	return false
}

// In reports whether code is a member of the given class registry.
func (idx *Index) In(code string, c Class) bool {
	if c < SSBB || c > DO {
		return false
	}
	_, ok := idx.registry[c][code]
	return ok
}

// Has reports whether code belongs to any of the four registries.
func (idx *Index) Has(code string) bool {
	return idx.Classify(code) != Unknown
}

// Classify returns the registry class of code, checking SSBB, CE, CEv, DO in
// that order, or Unknown.
func (idx *Index) Classify(code string) Class {
	for _, c := range Classes {
		if idx.In(code, c) {
			return c
		}
	}
	return Unknown
}

// Codes returns the registry of class c in natural order.
func (idx *Index) Codes(c Class) []string {
	if c < SSBB || c > DO {
		return nil
	}
	return slices.Clone(idx.sorted[c])
}

// Count returns the registry size of class c.
func (idx *Index) Count(c Class) int {
	if c < SSBB || c > DO {
		return 0
	}
	return len(idx.sorted[c])
}

// Description returns the free-text description of code.
func (idx *Index) Description(code string) (string, bool) {
	d, ok := idx.description[code]
	return d, ok
}

// SBEdges returns every exploded SSBB↔(CE, CEv) edge, including dangling ones.
func (idx *Index) SBEdges() []SBEdge { return slices.Clone(idx.sbEdges) }

// CEDOEdges returns every exploded CE↔DO edge, including dangling ones.
func (idx *Index) CEDOEdges() []CEDOEdge { return slices.Clone(idx.ceDOEdges) }

// Dangling returns edge endpoints that are missing from their registry.
// Such edges are ignored by every relation lookup.
func (idx *Index) Dangling() []DanglingRef { return slices.Clone(idx.dangling) }

// RelatedOf returns the codes of class c (CE or CEv) joined to SSBB code sb.
func (idx *Index) RelatedOf(sb string, c Class) []string {
	switch c {
	case CE:
		return slices.Clone(idx.sbToCE[sb])
	case CEv:
		return slices.Clone(idx.sbToCEv[sb])
	}
	return nil
}

// SBsOf returns the SSBB codes joined to a CE or CEv code. The class of code
// decides which join column is consulted.
func (idx *Index) SBsOf(code string) []string {
	switch idx.Classify(code) {
	case CE:
		return slices.Clone(idx.ceToSB[code])
	case CEv:
		return slices.Clone(idx.cevToSB[code])
	}
	return nil
}

// DOsOf returns the DO codes joined to CE code ce.
func (idx *Index) DOsOf(ce string) []string { return slices.Clone(idx.ceToDO[ce]) }

// CEsOf returns the CE codes joined to DO code do.
func (idx *Index) CEsOf(do string) []string { return slices.Clone(idx.doToCE[do]) }

// CEvsUnder returns the CEv registry entries that start with "<ce>.".
func (idx *Index) CEvsUnder(ce string) []string { return slices.Clone(idx.ceToCEv[ce]) }

// ParentCE returns the text before the first dot of cev when that text is a
// registered CE code.
func (idx *Index) ParentCE(cev string) (string, bool) {
	head, _, found := strings.Cut(cev, ".")
	if !found || !idx.In(head, CE) {
		return "", false
	}
	return head, true
}

// linkSet accumulates deduplicated adjacency during Build.
type linkSet map[string]map[string]struct{}

func newLinkSet() linkSet { return make(linkSet) }

func (l linkSet) add(from, to string) {
	m, ok := l[from]
	if !ok {
		m = make(map[string]struct{})
		l[from] = m
	}
	m[to] = struct{}{}
}

func (l linkSet) freeze() map[string][]string {
	out := make(map[string][]string, len(l))
	for from, set := range l {
		out[from] = SortedUnique(keys(set))
	}
	return out
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
