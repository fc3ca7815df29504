// Package form builds one employee record from manually entered values.
package form

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/perf-predictor/internal/employee"
)

// ErrIncomplete is returned when a field has no value and nobody can be asked for one.
var ErrIncomplete = errors.New("form is incomplete")

// Values holds raw field values keyed by column name.
type Values map[string]string

// ParseAssignments reads Field=Value pairs as given to --set.
func ParseAssignments(pairs []string) (Values, error) {
	values := make(Values, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected Field=Value, got %q", employee.ErrValidation, pair)
		}
		values[name] = value
	}
	return values, nil
}

// LoadValues reads a YAML mapping of column names to values.
func LoadValues(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading values file %q: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: values file %q: %v", employee.ErrParse, path, err)
	}

	values := make(Values, len(raw))
	for name, v := range raw {
		switch v := v.(type) {
		case nil:
			values[name] = ""
		case map[string]any, []any:
			return nil, fmt.Errorf("%w: values file %q: %s must be a scalar", employee.ErrParse, path, name)
		default:
			values[name] = fmt.Sprint(v)
		}
	}
	return values, nil
}

// Merge returns a copy of v overlaid with other.
func (v Values) Merge(other Values) Values {
	merged := make(Values, len(v)+len(other))
	for name, value := range v {
		merged[name] = value
	}
	for name, value := range other {
		merged[name] = value
	}
	return merged
}

// Missing lists schema fields without a value, in column order.
func (v Values) Missing() []employee.Field {
	missing := make([]employee.Field, 0)
	for _, f := range employee.Schema {
		if _, ok := v[f.Name]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Prompter asks for the value of one field.
type Prompter interface {
	Ask(field employee.Field) (string, error)
}

// Form collects field values and turns them into a validated record.
type Form struct {
	prompter Prompter
}

// New returns a form that asks prompter for missing fields. A nil prompter
// makes missing fields an error.
func New(prompter Prompter) *Form {
	return &Form{prompter: prompter}
}

// Complete asks for every field that has no value yet.
func (f *Form) Complete(values Values) (Values, error) {
	completed := values.Merge(nil)

	missing := values.Missing()
	if len(missing) == 0 {
		return completed, nil
	}

	if f.prompter == nil {
		names := make([]string, 0, len(missing))
		for _, field := range missing {
			names = append(names, field.Name)
		}
		return nil, fmt.Errorf("%w: no value for %s", ErrIncomplete, strings.Join(names, ", "))
	}

	for _, field := range missing {
		value, err := f.prompter.Ask(field)
		if err != nil {
			return nil, fmt.Errorf("asking for %s: %w", field.Name, err)
		}
		completed[field.Name] = value
	}
	return completed, nil
}

// Submit completes the values and builds the record.
func (f *Form) Submit(values Values) (employee.Record, error) {
	completed, err := f.Complete(values)
	if err != nil {
		return employee.Record{}, err
	}
	return Build(completed)
}

// Build checks every value against the schema and returns the record.
// Out of range values are rejected, never clamped.
func Build(values Values) (employee.Record, error) {
	var problems []string

	unknown := make([]string, 0)
	for name := range values {
		if _, ok := employee.FieldByName(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		problems = append(problems, fmt.Sprintf("unknown field %s", name))
	}

	parsed := make(map[string]string, len(employee.Schema))
	for _, field := range employee.Schema {
		raw, ok := values[field.Name]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s is required", field.Name))
			continue
		}
		value, err := field.Parse(raw)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		parsed[field.Name] = value
	}

	if len(problems) > 0 {
		return employee.Record{}, fmt.Errorf("%w: %s", employee.ErrValidation, strings.Join(problems, "; "))
	}

	record, err := employee.DecodeRecord(parsed)
	if err != nil {
		return employee.Record{}, fmt.Errorf("%w: %v", employee.ErrValidation, err)
	}

	if err := employee.Validate(record); err != nil {
		return employee.Record{}, err
	}
	return record, nil
}
