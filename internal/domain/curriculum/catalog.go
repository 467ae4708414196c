package curriculum

import (
	"slices"
	"strings"
)

// Default result caps for Search.
const (
	DefaultSearchLimit  = 50
	DefaultCatalogLimit = 500
)

// CodeEntry is one selectable code with its class and display label.
type CodeEntry struct {
	Code        string `json:"code"`
	Class       Class  `json:"class"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Catalog lists every registry code ordered by class rank, then natural order.
func Catalog(idx *Index) []CodeEntry {
	total := 0
	for _, c := range Classes {
		total += idx.Count(c)
	}
	out := make([]CodeEntry, 0, total)
	for _, c := range Classes {
		for _, code := range idx.sorted[c] {
			out = append(out, idx.entry(code, c))
		}
	}
	return out
}

func (idx *Index) entry(code string, c Class) CodeEntry {
	desc, _ := idx.Description(code)
	return CodeEntry{
		Code:        code,
		Class:       c,
		Label:       c.String() + " | " + code,
		Description: desc,
	}
}

// Search returns catalog entries matching q in three tiers: codes starting
// with q, codes containing q, then entries whose label or description
// contains q. Matching is case-insensitive; each tier is in natural order.
// An empty q returns the catalog head. limit <= 0 selects the defaults.
func Search(idx *Index, q string, limit int) []CodeEntry {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		if limit <= 0 {
			limit = DefaultCatalogLimit
		}
		all := Catalog(idx)
		SortEntries(all)
		return head(all, limit)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var starts, contains, described []CodeEntry
	for _, e := range Catalog(idx) {
		code := strings.ToLower(e.Code)
		switch {
		case strings.HasPrefix(code, q):
			starts = append(starts, e)
		case strings.Contains(code, q):
			contains = append(contains, e)
		case strings.Contains(strings.ToLower(e.Label), q),
			strings.Contains(strings.ToLower(e.Description), q):
			described = append(described, e)
		}
	}

	out := make([]CodeEntry, 0, min(limit, len(starts)+len(contains)+len(described)))
	for _, tier := range [][]CodeEntry{starts, contains, described} {
		SortEntries(tier)
		for _, e := range tier {
			if len(out) == limit {
				return out
			}
			out = append(out, e)
		}
	}
	return out
}

// SortEntries orders entries by natural code order, keeping the relative
// order of entries that share a code.
func SortEntries(entries []CodeEntry) {
	slices.SortStableFunc(entries, func(a, b CodeEntry) int {
		return Compare(a.Code, b.Code)
	})
}

func head(entries []CodeEntry, n int) []CodeEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
