package encoding

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/spigell/perf-predictor/internal/employee"
)

// Vocabulary maps a categorical attribute to its value codes.
type Vocabulary map[string]map[string]int

// DefaultVocabulary codes every categorical option set in sorted order,
// the way a label encoder fitted on the form options would.
func DefaultVocabulary() Vocabulary {
	v := make(Vocabulary)
	for _, f := range employee.CategoricalFields() {
		options := slices.Clone(f.Options)
		sort.Strings(options)

		codes := make(map[string]int, len(options))
		for i, option := range options {
			codes[option] = i
		}
		v[f.Name] = codes
	}
	return v
}

// With returns a copy where every attribute in override replaces the
// attribute table as a whole.
func (v Vocabulary) With(override Vocabulary) Vocabulary {
	merged := make(Vocabulary, len(v))
	for attr, codes := range v {
		merged[attr] = maps.Clone(codes)
	}
	for attr, codes := range override {
		if len(codes) == 0 {
			continue
		}
		merged[attr] = maps.Clone(codes)
	}
	return merged
}

// Validate checks that every categorical attribute has a table and that
// no two values share a code.
func (v Vocabulary) Validate() error {
	for _, f := range employee.CategoricalFields() {
		codes, ok := v[f.Name]
		if !ok || len(codes) == 0 {
			return fmt.Errorf("vocabulary has no codes for %s", f.Name)
		}

		owners := make(map[int]string, len(codes))
		for value, code := range codes {
			if other, taken := owners[code]; taken {
				return fmt.Errorf("vocabulary for %s maps both %q and %q to %d", f.Name, other, value, code)
			}
			owners[code] = value
		}
	}

	for attr := range v {
		if f, ok := employee.FieldByName(attr); !ok || f.Kind != employee.Categorical {
			return fmt.Errorf("vocabulary names %s which is not a categorical attribute", attr)
		}
	}
	return nil
}

// Code returns the code of value for the attribute.
func (v Vocabulary) Code(attr, value string) (int, bool) {
	codes, ok := v[attr]
	if !ok {
		return 0, false
	}
	code, ok := codes[value]
	return code, ok
}

// Equal reports whether both vocabularies code every value identically.
func (v Vocabulary) Equal(other Vocabulary) bool {
	return maps.EqualFunc(v, other, func(a, b map[string]int) bool {
		return maps.Equal(a, b)
	})
}

// Diff lists the attributes coded differently by the two vocabularies.
func (v Vocabulary) Diff(other Vocabulary) []string {
	attrs := make(map[string]bool)
	for attr := range v {
		attrs[attr] = true
	}
	for attr := range other {
		attrs[attr] = true
	}

	var diff []string
	for attr := range attrs {
		if !maps.Equal(v[attr], other[attr]) {
			diff = append(diff, attr)
		}
	}
	sort.Strings(diff)
	return diff
}

// LoadVocabulary reads a per-attribute override from a YAML file.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %q: %w", path, err)
	}

	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing vocabulary %q: %w", path, err)
	}
	return v, nil
}
