package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spigell/perf-predictor/internal/employee"
	"github.com/spigell/perf-predictor/internal/model"
)

// PredictionColumn is appended after the record attributes.
const PredictionColumn = "Predicted PerformanceRating"

// Columns is the fixed display order: every attribute, then the prediction.
var Columns = append(append([]string{}, employee.Columns...), PredictionColumn)

// Table is the human-readable prediction result of one request.
type Table struct {
	RequestID string     `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Origin    string     `json:"origin,omitempty" yaml:"origin,omitempty"`
	Model     string     `json:"model,omitempty" yaml:"model,omitempty"`
	Legend    string     `json:"legend" yaml:"legend"`
	Columns   []string   `json:"columns" yaml:"columns"`
	Rows      [][]string `json:"rows" yaml:"rows"`
	Dropped   []string   `json:"dropped,omitempty" yaml:"dropped,omitempty"`
	Narrative string     `json:"narrative,omitempty" yaml:"narrative,omitempty"`

	labels []model.Label
}

// LabelCount is the number of rows predicted with one label.
type LabelCount struct {
	Label model.Label `json:"label" yaml:"label"`
	Name  string      `json:"name" yaml:"name"`
	Count int         `json:"count" yaml:"count"`
}

// Assemble joins predictions onto the original records. rows[i] is the index
// into records of the record that got labels[i].
func Assemble(records []employee.Record, rows []int, labels []model.Label) (*Table, error) {
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("got %d predictions for %d records", len(labels), len(rows))
	}

	t := &Table{
		Legend:  model.Legend,
		Columns: append([]string{}, Columns...),
		Rows:    make([][]string, 0, len(rows)),
		labels:  append([]model.Label(nil), labels...),
	}

	for i, idx := range rows {
		if idx < 0 || idx >= len(records) {
			return nil, fmt.Errorf("prediction %d points at record %d of %d", i, idx, len(records))
		}
		cells := append(records[idx].Values(), strconv.Itoa(int(labels[i])))
		t.Rows = append(t.Rows, cells)
	}

	return t, nil
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Summary counts rows per label, in label order.
func (t *Table) Summary() []LabelCount {
	counts := make(map[model.Label]int, len(model.Labels))
	for _, l := range t.labels {
		counts[l]++
	}

	summary := make([]LabelCount, 0, len(model.Labels))
	for _, l := range model.Labels {
		summary = append(summary, LabelCount{Label: l, Name: l.String(), Count: counts[l]})
	}
	return summary
}

// DumpToTmpFile writes the table as JSON into a new temporary file.
func (t *Table) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "predictions_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ToFile writes the table as JSON to path, replacing any previous content.
func (t *Table) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}
