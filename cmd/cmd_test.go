package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/perf-predictor/internal/employee"
	"github.com/spigell/perf-predictor/internal/employee/employeetest"
	"github.com/spigell/perf-predictor/internal/encoding"
	"github.com/spigell/perf-predictor/internal/form"
	"github.com/spigell/perf-predictor/internal/model"
	"github.com/spigell/perf-predictor/internal/pipeline"
	"github.com/spigell/perf-predictor/internal/report"
	"github.com/spigell/perf-predictor/internal/watch"
)

func emptyConfig() *Config {
	return &Config{
		Model:    &ModelConfig{},
		Encoding: &EncodingConfig{},
		Output:   &OutputConfig{},
		Watch:    &watch.Config{},
		AI:       &AIConfig{Gemini: &GeminiConfig{}},
	}
}

func TestApplyOutputFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addOutputFlags(cmd)
	require.NoError(t, cmd.Flags().Set("format", "json"))
	require.NoError(t, cmd.Flags().Set("dump", "true"))
	require.NoError(t, cmd.Flags().Set("explain", "true"))

	config := emptyConfig()
	config.Output.File = "from-config.json"

	require.NoError(t, applyOutputFlags(cmd, config))
	assert.Equal(t, "json", config.Output.Format)
	assert.True(t, config.Output.Dump)
	assert.True(t, config.AI.Enabled)
	assert.Equal(t, "from-config.json", config.Output.File)
}

func TestNewEncoderFromConfig(t *testing.T) {
	config := emptyConfig()

	encoder, err := newEncoder(config)
	require.NoError(t, err)
	assert.Equal(t, encoding.PolicyReject, encoder.Policy())

	config.Encoding.UnknownPolicy = "ignore"
	_, err = newEncoder(config)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "vocabulary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("OverTime:\n  \"No\": 1\n  \"Yes\": 0\n"), 0o600))
	config.Encoding.UnknownPolicy = "drop"
	config.Encoding.VocabularyFile = path

	encoder, err = newEncoder(config)
	require.NoError(t, err)
	assert.Equal(t, encoding.PolicyDrop, encoder.Policy())
	code, ok := encoder.Vocabulary().Code(employee.ColumnOverTime, "No")
	require.True(t, ok)
	assert.Equal(t, 1, code)
}

func TestNewLoaderRequiresPath(t *testing.T) {
	_, err := newLoader(emptyConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrLoad)
	assert.Equal(t, pipeline.KindLoad, pipeline.Classify(err))
}

func TestPresenterOutputPath(t *testing.T) {
	single := &presenter{output: &OutputConfig{File: "out/predictions.json"}}
	assert.Equal(t, "out/predictions.json", single.outputPath("uploads/march.csv"))

	multi := &presenter{output: &OutputConfig{File: "out/predictions.json"}, multi: true}
	assert.Equal(t, "out/predictions-march.json", multi.outputPath("uploads/march.csv"))
	assert.Equal(t, "out/predictions.json", multi.outputPath(""))
}

func TestPresenterRunsRequests(t *testing.T) {
	var out, errOut bytes.Buffer
	dir := t.TempDir()

	config := emptyConfig()
	config.Model.Path = filepath.Join("..", "internal", "model", "testdata", "forest.json")
	config.Output.File = filepath.Join(dir, "predictions.json")

	p, err := newPipeline(context.Background(), config, zap.NewNop())
	require.NoError(t, err)

	format, err := report.ParseFormat("csv")
	require.NoError(t, err)
	pr := &presenter{out: &out, errOut: &errOut, format: format, output: config.Output, logger: zap.NewNop()}

	require.NoError(t, pr.run(context.Background(), p, pipeline.FromForm(employeetest.Record())))
	assert.True(t, strings.HasPrefix(out.String(), "# "+model.Legend+"\nEmpNumber,Age,"))
	assert.FileExists(t, config.Output.File)
	assert.Empty(t, errOut.String())

	unknown := employeetest.Record()
	unknown.Gender = "Robot"
	err = pr.run(context.Background(), p, pipeline.FromForm(unknown))
	require.Error(t, err)
	assert.True(t, errors.Is(err, encoding.ErrUnknownCategory))
	assert.Contains(t, errOut.String(), "encoding error:")
}

func TestCollectValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employee.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Age: 30\nGender: Male\n"), 0o600))

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringArray("set", nil, "")
	cmd.Flags().String("values", "", "")
	require.NoError(t, cmd.Flags().Set("values", path))
	require.NoError(t, cmd.Flags().Set("set", "Age=41"))

	values, err := collectValues(cmd)
	require.NoError(t, err)
	assert.Equal(t, "41", values["Age"])
	assert.Equal(t, "Male", values["Gender"])
}

func TestDescribeSchema(t *testing.T) {
	entries := describeSchema(encoding.DefaultVocabulary())
	require.Len(t, entries, len(employee.Columns))

	var out bytes.Buffer
	require.NoError(t, writeSchemaTable(&out, entries))
	assert.Contains(t, out.String(), "18..100")
	assert.Contains(t, out.String(), "0=Female, 1=Male, 2=Other")
	assert.Contains(t, out.String(), model.Legend)

	out.Reset()
	require.NoError(t, writeSchemaYAML(&out, entries))
	assert.Contains(t, out.String(), "column: EmpNumber")
}

func TestExampleFiles(t *testing.T) {
	config := emptyConfig()
	config.Model.Path = filepath.Join("..", "examples", "model.json")

	p, err := newPipeline(context.Background(), config, zap.NewNop())
	require.NoError(t, err)

	req, err := pipeline.ReadUpload(zap.NewNop(), pipeline.SourceUpload, filepath.Join("..", "examples", "upload.csv"))
	require.NoError(t, err)
	assert.True(t, req.HasRating)

	table, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	values, err := form.LoadValues(filepath.Join("..", "examples", "employee.yaml"))
	require.NoError(t, err)
	record, err := form.Build(values)
	require.NoError(t, err)
	assert.Equal(t, "E1001999", record.EmpNumber)
}
