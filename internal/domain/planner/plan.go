// Package planner models teaching plans (sequences of units, each covering
// SSBB and CEv codes) and measures how much of a curriculum a plan covers.
package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/corey/curricula/internal/domain/curriculum"
)

// ErrInvalidPlan wraps every validation failure of a plan.
var ErrInvalidPlan = errors.New("invalid plan")

var planValidate = validator.New()

// Unit is one teaching unit of a plan.
type Unit struct {
	Name string   `yaml:"name" json:"name" validate:"required"`
	SSBB []string `yaml:"ssbb,omitempty" json:"ssbb,omitempty"`
	CEv  []string `yaml:"cev,omitempty" json:"cev,omitempty"`
}

// Plan is a named sequence of units for one subject.
type Plan struct {
	Name    string `yaml:"name" json:"name" validate:"required"`
	Subject string `yaml:"subject,omitempty" json:"subject,omitempty"`
	Units   []Unit `yaml:"units" json:"units" validate:"dive"`
}

// Validate checks required fields and rejects duplicate unit names.
func (p *Plan) Validate() error {
	if err := planValidate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	seen := make(map[string]bool, len(p.Units))
	for _, u := range p.Units {
		key := strings.TrimSpace(u.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate unit %q", ErrInvalidPlan, key)
		}
		seen[key] = true
	}
	return nil
}

// Codes returns the cleaned, deduplicated codes of class c (SSBB or CEv)
// used anywhere in the plan, in natural order.
func (p *Plan) Codes(c curriculum.Class) []string {
	var raw []string
	for _, u := range p.Units {
		switch c {
		case curriculum.SSBB:
			raw = append(raw, u.SSBB...)
		case curriculum.CEv:
			raw = append(raw, u.CEv...)
		}
	}
	return cleanCodes(raw)
}

// cleanCodes trims codes, strips trailing dots, drops empties and splits
// comma-joined entries.
func cleanCodes(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if code := curriculum.CleanCode(part); code != "" {
				out = append(out, code)
			}
		}
	}
	return curriculum.SortedUnique(out)
}
