// Package curriculum holds the immutable curriculum index and the code-level
// operations built on it: classification, natural ordering, and resolution of
// free-text user tokens to canonical codes.
//
// The taxonomy has four classes. SSBB (basic knowledge) units are joined to
// CE (specific competency) and CEv (evaluation criterion) codes through one
// join table; CE codes are joined to DO (operational descriptor) codes through
// another. CEv codes are namespaced under their parent CE ("<CE>.<suffix>"),
// and that textual prefix is the only CE↔CEv link.
package curriculum

import "strings"

// Class identifies which registry a code belongs to.
// The numeric value is the display rank: SSBB < CE < CEv < DO < Unknown.
type Class int

const (
	SSBB Class = iota
	CE
	CEv
	DO
	Unknown
)

// Classes lists the four registry classes in display order.
var Classes = [...]Class{SSBB, CE, CEv, DO}

// String returns the short tag used in labels and reports.
func (c Class) String() string {
	switch c {
	case SSBB:
		return "SSBB"
	case CE:
		return "CE"
	case CEv:
		return "CEv"
	case DO:
		return "DO"
	default:
		return "Otro"
	}
}

// Label returns the long human-readable class name shown in report rows.
func (c Class) Label() string {
	switch c {
	case SSBB:
		return "Saber Básico"
	case CE:
		return "Competencia Específica"
	case CEv:
		return "Criterio de Evaluación"
	case DO:
		return "Descriptor Operativo"
	default:
		return "Otro"
	}
}

// Rank returns the sort rank of the class.
func (c Class) Rank() int {
	if c < SSBB || c > Unknown {
		return int(Unknown)
	}
	return int(c)
}

// ParseClass maps a class tag (case-insensitive; "SB" accepted for SSBB)
// to its Class. Returns Unknown, false for anything else.
func ParseClass(s string) (Class, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SSBB", "SB":
		return SSBB, true
	case "CE":
		return CE, true
	case "CEV":
		return CEv, true
	case "DO":
		return DO, true
	}
	return Unknown, false
}

// MarshalText encodes the class as its short tag.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a short tag. Unrecognized tags decode to Unknown.
func (c *Class) UnmarshalText(b []byte) error {
	*c, _ = ParseClass(string(b))
	return nil
}
