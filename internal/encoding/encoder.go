package encoding

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/perf-predictor/internal/employee"
)

// ErrUnknownCategory is returned when a categorical value is not in the vocabulary.
var ErrUnknownCategory = errors.New("unknown category")

// Policy decides what happens to a record with an unknown categorical value.
type Policy string

const (
	// PolicyReject fails the whole batch.
	PolicyReject Policy = "reject"
	// PolicyDrop excludes the offending record and keeps the rest.
	PolicyDrop Policy = "drop"
)

// ParsePolicy accepts reject and drop; an empty value means reject.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyReject, nil
	case PolicyReject, PolicyDrop:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported unknown-category policy %q (want %s or %s)", s, PolicyReject, PolicyDrop)
	}
}

// FeatureNames lists every attribute that can be fed to a model, in
// column order. EmpNumber identifies a record and is not a feature.
func FeatureNames() []string {
	names := make([]string, 0, len(employee.Columns)-1)
	for _, column := range employee.Columns {
		if column == employee.ColumnEmpNumber {
			continue
		}
		names = append(names, column)
	}
	return names
}

// Encoded is a record with categorical values replaced by their codes.
type Encoded struct {
	EmpNumber string
	Features  map[string]float64
}

// Dropped describes a record excluded under PolicyDrop.
type Dropped struct {
	Row       int
	EmpNumber string
	Reason    string
}

// Batch is the result of encoding a list of records. Rows[i] is the index
// of the source record that produced Encoded[i].
type Batch struct {
	Rows    []int
	Encoded []Encoded
	Dropped []Dropped
}

func (b *Batch) Len() int {
	return len(b.Encoded)
}

type Encoder struct {
	vocabulary Vocabulary
	policy     Policy
}

func NewEncoder(vocabulary Vocabulary, policy Policy) (*Encoder, error) {
	if err := vocabulary.Validate(); err != nil {
		return nil, err
	}
	policy, err := ParsePolicy(string(policy))
	if err != nil {
		return nil, err
	}

	return &Encoder{vocabulary: vocabulary.With(nil), policy: policy}, nil
}

func (e *Encoder) Vocabulary() Vocabulary {
	return e.vocabulary.With(nil)
}

func (e *Encoder) Policy() Policy {
	return e.policy
}

// Encode converts one record. The record is taken by value and never modified.
func (e *Encoder) Encode(r employee.Record) (Encoded, error) {
	features := make(map[string]float64, len(employee.Columns)-1)
	for column, n := range r.Numbers() {
		features[column] = float64(n)
	}

	categories := r.Categories()
	columns := make([]string, 0, len(categories))
	for column := range categories {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var unknown []string
	for _, column := range columns {
		value := categories[column]
		code, ok := e.vocabulary.Code(column, value)
		if !ok {
			unknown = append(unknown, fmt.Sprintf("%s=%q", column, value))
			continue
		}
		features[column] = float64(code)
	}

	if len(unknown) > 0 {
		return Encoded{}, fmt.Errorf("%w: %s", ErrUnknownCategory, strings.Join(unknown, ", "))
	}

	return Encoded{EmpNumber: r.EmpNumber, Features: features}, nil
}

// EncodeAll encodes records applying the encoder policy to unknown values.
func (e *Encoder) EncodeAll(records []employee.Record) (*Batch, error) {
	batch := &Batch{
		Rows:    make([]int, 0, len(records)),
		Encoded: make([]Encoded, 0, len(records)),
	}

	for i, r := range records {
		encoded, err := e.Encode(r)
		if err != nil {
			if e.policy == PolicyDrop && errors.Is(err, ErrUnknownCategory) {
				batch.Dropped = append(batch.Dropped, Dropped{Row: i, EmpNumber: r.EmpNumber, Reason: err.Error()})
				continue
			}
			return nil, fmt.Errorf("record %d (%s): %w", i+1, r.EmpNumber, err)
		}

		batch.Rows = append(batch.Rows, i)
		batch.Encoded = append(batch.Encoded, encoded)
	}

	if batch.Len() == 0 && len(records) > 0 {
		return batch, fmt.Errorf("%w: every record was dropped", ErrUnknownCategory)
	}

	return batch, nil
}
