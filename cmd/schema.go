package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spigell/perf-predictor/internal/employee"
	"github.com/spigell/perf-predictor/internal/encoding"
	"github.com/spigell/perf-predictor/internal/model"
)

var schemaCmd = &cobra.Command{
	Use:          "schema",
	Short:        "Print the upload columns, their bounds, options and category codes",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		asYAML, err := cmd.Flags().GetBool("yaml")
		if err != nil {
			return err
		}

		config, err := getConfig()
		if err != nil {
			return err
		}

		encoder, err := newEncoder(config)
		if err != nil {
			return err
		}

		entries := describeSchema(encoder.Vocabulary())
		if asYAML {
			return writeSchemaYAML(cmd.OutOrStdout(), entries)
		}
		return writeSchemaTable(cmd.OutOrStdout(), entries)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().Bool("yaml", false, "print the schema as YAML")
}

type schemaEntry struct {
	Column string         `yaml:"column"`
	Kind   string         `yaml:"kind"`
	Bounds string         `yaml:"bounds,omitempty"`
	Help   string         `yaml:"help,omitempty"`
	Codes  map[string]int `yaml:"codes,omitempty"`
}

func describeSchema(vocabulary encoding.Vocabulary) []schemaEntry {
	entries := make([]schemaEntry, 0, len(employee.Schema))
	for _, f := range employee.Schema {
		entry := schemaEntry{Column: f.Name, Kind: f.Kind.String(), Help: f.Help}
		switch f.Kind {
		case employee.Integer:
			entry.Bounds = f.Bounds()
		case employee.Categorical:
			entry.Codes = vocabulary[f.Name]
		}
		entries = append(entries, entry)
	}
	return entries
}

func writeSchemaTable(w io.Writer, entries []schemaEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tKIND\tACCEPTS")
	for _, e := range entries {
		accepts := e.Bounds
		if e.Codes != nil {
			accepts = formatCodes(e.Codes)
		}
		if accepts == "" {
			accepts = "any text"
		}
		if e.Help != "" {
			accepts = fmt.Sprintf("%s (%s)", accepts, e.Help)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Column, e.Kind, accepts)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nOptional column %s is ignored for prediction.\nPredicted ratings: %s\n", employee.RatingColumn, model.Legend)
	return err
}

// formatCodes lists category values in code order, e.g. "0=Female, 1=Male".
func formatCodes(codes map[string]int) string {
	values := make([]string, 0, len(codes))
	for value := range codes {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool {
		return codes[values[i]] < codes[values[j]]
	})

	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, fmt.Sprintf("%d=%s", codes[value], value))
	}
	return strings.Join(parts, ", ")
}

func writeSchemaYAML(w io.Writer, entries []schemaEntry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}
