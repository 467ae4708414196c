package curriculum

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// KeyPart is one maximal run of a natural sort key.
type KeyPart struct {
	Text  string // case-folded text for non-digit runs, digits without leading zeros for numeric runs
	IsNum bool
}

// Key splits s into alternating non-digit and digit runs. The first part is
// always a (possibly empty) non-digit run, so two keys align part by part.
//
//	"CE10"  -> ["ce", 10]
//	"1.A.2" -> ["", 1, ".a.", 2]
func Key(s string) []KeyPart {
	fold := cases.Fold()
	parts := make([]KeyPart, 0, 4)
	start := 0
	inDigits := false
	flush := func(end int) {
		run := s[start:end]
		if inDigits {
			n := strings.TrimLeft(run, "0")
			if n == "" {
				n = "0"
			}
			parts = append(parts, KeyPart{Text: n, IsNum: true})
		} else {
			parts = append(parts, KeyPart{Text: fold.String(run)})
		}
		start = end
	}
	for i := 0; i < len(s); i++ {
		d := s[i] >= '0' && s[i] <= '9'
		if d != inDigits {
			flush(i)
			inDigits = d
		}
	}
	flush(len(s))
	return parts
}

// CompareKeys orders two keys element by element. Digit runs compare as
// integers, text runs as case-folded strings; a key that is a prefix of the
// other sorts first.
func CompareKeys(a, b []KeyPart) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := comparePart(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func comparePart(a, b KeyPart) int {
	if a.IsNum && b.IsNum {
		if len(a.Text) != len(b.Text) {
			return len(a.Text) - len(b.Text)
		}
	}
	return strings.Compare(a.Text, b.Text)
}

// Compare is the natural order over codes: "CE2" < "CE10", "a.2" < "a.10".
// Codes with equal keys ("a01", "a1") fall back to byte order so the order
// stays total.
func Compare(a, b string) int {
	if c := CompareKeys(Key(a), Key(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Sort orders codes in place by natural order.
func Sort(codes []string) {
	type keyed struct {
		code string
		key  []KeyPart
	}
	ks := make([]keyed, len(codes))
	for i, c := range codes {
		ks[i] = keyed{c, Key(c)}
	}
	slices.SortFunc(ks, func(a, b keyed) int {
		if c := CompareKeys(a.key, b.key); c != 0 {
			return c
		}
		return strings.Compare(a.code, b.code)
	})
	for i := range ks {
		codes[i] = ks[i].code
	}
}

// SortedUnique returns a deduplicated, naturally ordered copy of codes.
func SortedUnique(codes []string) []string {
	out := slices.Clone(codes)
	Sort(out)
	return slices.Compact(out)
}
