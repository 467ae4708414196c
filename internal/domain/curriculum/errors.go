package curriculum

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched through errors.Is by the concrete error types below.
var (
	ErrAmbiguousCode = errors.New("ambiguous code")
	ErrNotFound      = errors.New("code not found")
	ErrLoad          = errors.New("dataset load failed")
)

// maxCandidates caps how many candidates an ambiguity message lists.
const maxCandidates = 20

// AmbiguousCodeError is returned when an SSBB shortcut matches more than one
// registry entry.
type AmbiguousCodeError struct {
	Code       string
	Candidates []string // natural order, complete
}

func (e *AmbiguousCodeError) Error() string {
	shown := e.Candidates
	if len(shown) > maxCandidates {
		shown = shown[:maxCandidates]
	}
	return fmt.Sprintf("ambiguous SSBB '%s'; matches: %s", e.Code, strings.Join(shown, ", "))
}

func (e *AmbiguousCodeError) Is(target error) bool { return target == ErrAmbiguousCode }

// NotFoundError lists normalized codes that are in none of the registries.
type NotFoundError struct {
	Codes []string
}

func (e *NotFoundError) Error() string {
	quoted := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return "codes not found: [" + strings.Join(quoted, ", ") + "]"
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NormalizationError aggregates every per-token failure of one
// NormalizeCodes call.
type NormalizationError struct {
	Errs []error
}

func (e *NormalizationError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, " | ")
}

func (e *NormalizationError) Unwrap() []error { return e.Errs }

// LoadError reports a missing sheet or column in the source dataset.
// It is fatal for that dataset and never retried.
type LoadError struct {
	Source string
	Sheet  string
	Column string // empty when the whole sheet is missing
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("load ")
	b.WriteString(e.Source)
	switch {
	case e.Column != "":
		fmt.Fprintf(&b, ": sheet %q has no column %q", e.Sheet, e.Column)
	case e.Sheet != "":
		fmt.Fprintf(&b, ": missing sheet %q", e.Sheet)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

func (e *LoadError) Unwrap() error { return e.Err }
