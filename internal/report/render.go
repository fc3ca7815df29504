package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format selects how a table is rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatYAML}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatTable, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// Render writes the table in the requested format.
func Render(w io.Writer, t *Table, format Format) error {
	switch format {
	case FormatTable, "":
		return renderText(w, t)
	case FormatCSV:
		return renderCSV(w, t)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func renderText(w io.Writer, t *Table) error {
	if _, err := fmt.Fprintf(w, "Predictions:\n%s\n\n", t.Legend); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := make([]string, 0, len(t.Summary()))
	for _, c := range t.Summary() {
		counts = append(counts, fmt.Sprintf("%s=%d", c.Name, c.Count))
	}
	if _, err := fmt.Fprintf(w, "\n%d rows: %s\n", t.Len(), strings.Join(counts, ", ")); err != nil {
		return err
	}

	for _, d := range t.Dropped {
		if _, err := fmt.Fprintf(w, "dropped: %s\n", d); err != nil {
			return err
		}
	}

	if t.Narrative != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", t.Narrative); err != nil {
			return err
		}
	}
	return nil
}

// renderCSV puts the legend on a leading comment line.
func renderCSV(w io.Writer, t *Table) error {
	if _, err := fmt.Fprintf(w, "# %s\n", t.Legend); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
