package curriculum

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// typePrefixes are stripped from user tokens, longest tags before the
// two-letter tags they contain.
var typePrefixes = []string{"CEV", "CE", "DO", "SSBB", "SB"}

// SplitTokens splits free text on commas and whitespace (including
// newlines), dropping empty parts.
//
//	"CE1, A.1\n1.2" -> ["CE1", "A.1", "1.2"]
func SplitTokens(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// basicNormalize trims, removes every internal space and strips trailing dots.
func basicNormalize(raw string) string {
	s := strings.TrimSpace(norm.NFC.String(raw))
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimRight(s, ".")
}

// stripTypePrefix removes one leading class tag, case-insensitively.
func stripTypePrefix(s string) string {
	for _, p := range typePrefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return s[len(p):]
		}
	}
	return s
}

// NormalizeUserCode resolves one free-text token to a canonical code.
//
// The token is cleaned, a leading class tag (CEv, CE, DO, SSBB, SB) is
// removed, and the result is returned if it is a registry member. Otherwise
// it is tried as an SSBB shortcut ("A.1" for "1.A.1"). A token that resolves
// to nothing is returned unchanged; callers check membership.
func NormalizeUserCode(raw string, idx *Index) (string, error) {
	s := basicNormalize(stripTypePrefix(basicNormalize(raw)))
	if idx.Has(s) {
		return s, nil
	}
	return ResolveSSBBShortcut(s, idx)
}

// ResolveSSBBShortcut finds SSBB entries equal to code or ending in
// "."+code. One match is returned; none returns code unchanged; several
// fail with *AmbiguousCodeError.
func ResolveSSBBShortcut(code string, idx *Index) (string, error) {
	if idx.In(code, SSBB) {
		return code, nil
	}
	suffix := "." + code
	var candidates []string
	for _, c := range idx.sorted[SSBB] {
		if c == code || strings.HasSuffix(c, suffix) {
			candidates = append(candidates, c)
		}
	}
	switch len(candidates) {
	case 0:
		return code, nil
	case 1:
		return candidates[0], nil
	default:
		return "", &AmbiguousCodeError{Code: code, Candidates: candidates}
	}
}

// NormalizeCodes normalizes every token independently and preserves input
// order. Ambiguity failures are collected across all tokens into one
// *NormalizationError. If every token resolved, any result outside the
// registries fails with a single *NotFoundError listing all of them.
func NormalizeCodes(raw []string, idx *Index) ([]string, error) {
	out := make([]string, 0, len(raw))
	var errs []error
	for _, tok := range raw {
		code, err := NormalizeUserCode(tok, idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, code)
	}
	if len(errs) > 0 {
		return nil, &NormalizationError{Errs: errs}
	}

	var missing []string
	for _, c := range out {
		if !idx.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Codes: missing}
	}
	return out, nil
}
