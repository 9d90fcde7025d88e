// Package fixture reads YAML seed files holding the operator roster and the
// KPI templates of each operator.
package fixture

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/huangsam/kpiboard/schema"
	"gopkg.in/yaml.v3"
)

// Seed is the content of one seed file.
type Seed struct {
	Source    string                              `yaml:"-"`
	Operators []schema.Operator                   `yaml:"operators"`
	Templates map[string][]schema.KpiTemplateItem `yaml:"templates"`
}

// ValidationError captures a single field-specific problem in a seed file.
type ValidationError struct {
	File    string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
}

// ValidationErrors aggregates multiple validation problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(data []byte, source string) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return nil, ValidationErrors{{File: source, Field: "yaml", Message: err.Error()}}
	}
	seed.Source = source
	return &seed, nil
}

// LoadFile reads and decodes a seed file.
func LoadFile(path string) (*Seed, error) {
	if path == "" {
		return nil, fmt.Errorf("a seed file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data, path)
}

// People returns the operators that carry a template, sorted by name.
func (s *Seed) People() []string {
	return slices.Sorted(maps.Keys(s.Templates))
}

// Validate checks names and ids. Templates may name operators that only
// exist in the store already.
func (s *Seed) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{File: s.Source, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(s.Operators) == 0 && len(s.Templates) == 0 {
		add("", "must contain operators or templates")
	}

	names := make(map[string]struct{}, len(s.Operators))
	for i, op := range s.Operators {
		path := fmt.Sprintf("operators[%d]", i)
		name := strings.TrimSpace(op.OperatorName)
		switch {
		case name == "":
			add(path+".operator_name", "is required")
		case name != op.OperatorName:
			add(path+".operator_name", "%q has surrounding whitespace", op.OperatorName)
		}
		if _, dup := names[name]; dup && name != "" {
			add(path+".operator_name", "duplicate operator %q", name)
		}
		names[name] = struct{}{}
		if op.StoreCount < 0 {
			add(path+".store_count", "must not be negative")
		}
	}

	for _, person := range s.People() {
		if strings.TrimSpace(person) == "" {
			add("templates", "operator name is required")
			continue
		}
		ids := make(map[schema.ItemID]struct{})
		for i, item := range s.Templates[person] {
			path := fmt.Sprintf("templates.%s[%d]", person, i)
			if item.ID == "" {
				add(path+".id", "is required")
			} else if _, dup := ids[item.ID]; dup {
				add(path+".id", "duplicate id %q", item.ID)
			}
			ids[item.ID] = struct{}{}
			if strings.TrimSpace(item.Indicator) == "" {
				add(path+".indicator", "is required")
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CheckFormulas runs check over every non-blank formula and describes the
// ones it rejects. Such items still import and score 0.
func (s *Seed) CheckFormulas(check func(string) error) []string {
	var problems []string
	for _, person := range s.People() {
		for _, item := range s.Templates[person] {
			if !item.HasFormula() {
				continue
			}
			if err := check(item.Formula); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %q (id %s): %v", person, item.Indicator, item.ID, err))
			}
		}
	}
	return problems
}
