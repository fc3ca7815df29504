package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/perf-predictor/internal/employee"
	"github.com/spigell/perf-predictor/internal/employee/employeetest"
	"github.com/spigell/perf-predictor/internal/encoding"
	"github.com/spigell/perf-predictor/internal/model"
	"github.com/spigell/perf-predictor/internal/pipeline"
	"github.com/spigell/perf-predictor/internal/report"
)

// satisfactionClassifier rates an employee by environment satisfaction.
type satisfactionClassifier struct {
	vocabulary encoding.Vocabulary
	labels     []model.Label
}

func (c *satisfactionClassifier) Name() string { return "satisfaction@test" }
func (c *satisfactionClassifier) Type() string { return "stub" }
func (c *satisfactionClassifier) Classes() []model.Label {
	return append([]model.Label(nil), model.Labels...)
}
func (c *satisfactionClassifier) Vocabulary() encoding.Vocabulary { return c.vocabulary }
func (c *satisfactionClassifier) Features() []string {
	return []string{employee.ColumnEmpEnvironmentSatisfaction, employee.ColumnGender}
}

func (c *satisfactionClassifier) Predict(rows [][]float64) ([]model.Label, error) {
	if c.labels != nil {
		return c.labels, nil
	}
	labels := make([]model.Label, 0, len(rows))
	for _, row := range rows {
		l := model.Label(int(row[0]) - 1)
		if l < model.Low {
			l = model.Low
		}
		labels = append(labels, l)
	}
	return labels, nil
}

type stubLoader struct {
	classifier model.Classifier
	err        error
	calls      int
}

func (l *stubLoader) Load(ctx context.Context) (model.Classifier, error) {
	l.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.classifier, nil
}

type stubNarrator struct {
	text string
	err  error
}

func (n *stubNarrator) Summarize(_ context.Context, _ *report.Table) (string, error) {
	return n.text, n.err
}

func newEncoder(t *testing.T, policy encoding.Policy) *encoding.Encoder {
	t.Helper()
	enc, err := encoding.NewEncoder(encoding.DefaultVocabulary(), policy)
	require.NoError(t, err)
	return enc
}

func newDeps(t *testing.T, policy encoding.Policy) (pipeline.Deps, *stubLoader, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	loader := &stubLoader{classifier: &satisfactionClassifier{}}
	return pipeline.Deps{
		Encoder: newEncoder(t, policy),
		Loader:  loader,
		Logger:  zap.New(core),
	}, loader, logs
}

func writeUpload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunSingleRowUpload(t *testing.T) {
	deps, _, logs := newDeps(t, encoding.PolicyReject)
	path := writeUpload(t, employeetest.CSV([]employee.Record{employeetest.Record()}, nil))

	req, err := pipeline.ReadUpload(deps.Logger, pipeline.SourceUpload, path)
	require.NoError(t, err)

	table, err := pipeline.New(deps).Run(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, 1, table.Len())
	assert.Len(t, table.Columns, 28)
	assert.Len(t, table.Rows[0], 28)
	assert.Equal(t, report.PredictionColumn, table.Columns[27])

	label, err := strconv.Atoi(table.Rows[0][27])
	require.NoError(t, err)
	assert.True(t, model.Label(label).Valid())
	assert.Equal(t, int(model.Outstanding), label)

	assert.Equal(t, req.ID, table.RequestID)
	assert.Equal(t, path, table.Origin)
	assert.Equal(t, "satisfaction@test", table.Model)
	assert.Equal(t, model.Legend, table.Legend)

	steps := logs.FilterMessage("pipeline step").All()
	require.Len(t, steps, 4)
	assert.Equal(t, "encode", steps[0].ContextMap()["name"])
	assert.Equal(t, "assemble", steps[3].ContextMap()["name"])
	assert.Equal(t, 1, logs.FilterMessage("data preview").Len())
}

func TestReadUploadMissingColumn(t *testing.T) {
	content := employeetest.Without(employeetest.CSV([]employee.Record{employeetest.Record()}, nil), employee.ColumnAge)
	path := writeUpload(t, content)

	_, err := pipeline.ReadUpload(zap.NewNop(), pipeline.SourceUpload, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, employee.ErrMissingColumn)
	assert.Equal(t, pipeline.KindEncoding, pipeline.Classify(err))
	assert.Contains(t, pipeline.Describe(err), "encoding error")
	assert.Contains(t, err.Error(), employee.ColumnAge)
}

func TestReadUploadMissingFile(t *testing.T) {
	_, err := pipeline.ReadUpload(nil, pipeline.SourceUpload, filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Equal(t, pipeline.KindParse, pipeline.Classify(err))
}

func TestReadUploadRatingAndExtraColumns(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	content := employeetest.CSV([]employee.Record{employeetest.Record()}, map[string][]string{
		employee.RatingColumn: {"3"},
	})
	path := writeUpload(t, content)

	req, err := pipeline.ReadUpload(zap.New(core), pipeline.SourceUpload, path)
	require.NoError(t, err)
	assert.True(t, req.HasRating)
	assert.Equal(t, 0, logs.FilterMessage("data preview").Len())

	deps, _, runLogs := newDeps(t, encoding.PolicyReject)
	table, err := pipeline.New(deps).Run(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, table.Rows[0], 28)
	assert.Equal(t, 1, runLogs.FilterMessage("historical PerformanceRating column is excluded from the model input").Len())
}

func TestRunIsIdempotent(t *testing.T) {
	deps, _, _ := newDeps(t, encoding.PolicyReject)
	low := employeetest.Record()
	low.EmpNumber = "E1001001"
	low.EmpEnvironmentSatisfaction = 1
	req := pipeline.NewRequest(pipeline.SourceUpload, "batch.csv", []employee.Record{employeetest.Record(), low})

	p := pipeline.New(deps)
	first, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, "0", first.Rows[1][27])
	assert.Equal(t, "E1001001", first.Rows[1][0])
}

func TestRunDoesNotModifyRequest(t *testing.T) {
	deps, _, _ := newDeps(t, encoding.PolicyReject)
	record := employeetest.Record()
	req := pipeline.FromForm(record)

	_, err := pipeline.New(deps).Run(context.Background(), req)
	require.NoError(t, err)

	records := req.Records()
	require.Len(t, records, 1)
	assert.Equal(t, record, records[0])
	assert.Equal(t, pipeline.SourceManual, req.Source)
	assert.Equal(t, pipeline.FormOrigin, req.Origin)

	records[0].Age = 99
	assert.Equal(t, 30, req.Records()[0].Age)
}

func TestRunUnknownCategory(t *testing.T) {
	unknown := employeetest.Record()
	unknown.EmpNumber = "E1001002"
	unknown.EmpDepartment = "Legal"
	records := []employee.Record{employeetest.Record(), unknown}

	t.Run("reject", func(t *testing.T) {
		deps, loader, _ := newDeps(t, encoding.PolicyReject)
		table, err := pipeline.New(deps).Run(context.Background(), pipeline.NewRequest(pipeline.SourceUpload, "u.csv", records))
		require.Error(t, err)
		assert.Nil(t, table)
		assert.ErrorIs(t, err, encoding.ErrUnknownCategory)
		assert.Equal(t, pipeline.KindEncoding, pipeline.Classify(err))
		assert.Contains(t, err.Error(), "E1001002")
		assert.Equal(t, 0, loader.calls)
	})

	t.Run("drop", func(t *testing.T) {
		deps, _, logs := newDeps(t, encoding.PolicyDrop)
		table, err := pipeline.New(deps).Run(context.Background(), pipeline.NewRequest(pipeline.SourceUpload, "u.csv", records))
		require.NoError(t, err)
		require.Equal(t, 1, table.Len())
		assert.Equal(t, "E1001000", table.Rows[0][0])
		require.Len(t, table.Dropped, 1)
		assert.Contains(t, table.Dropped[0], "row 2 (E1001002)")
		assert.Equal(t, 1, logs.FilterMessage("record dropped").Len())
	})
}

func TestRunLoadFailure(t *testing.T) {
	deps, loader, _ := newDeps(t, encoding.PolicyReject)
	loader.err = fmt.Errorf("%w: read model.json: no such file", model.ErrLoad)

	table, err := pipeline.New(deps).Run(context.Background(), pipeline.FromForm(employeetest.Record()))
	require.Error(t, err)
	assert.Nil(t, table)
	assert.Equal(t, pipeline.KindLoad, pipeline.Classify(err))
	assert.Contains(t, err.Error(), "load_model")
}

func TestRunVocabularyMismatch(t *testing.T) {
	deps, loader, _ := newDeps(t, encoding.PolicyReject)
	loader.classifier = &satisfactionClassifier{vocabulary: encoding.Vocabulary{
		employee.ColumnGender: {"Male": 0, "Female": 1},
	}}

	_, err := pipeline.New(deps).Run(context.Background(), pipeline.FromForm(employeetest.Record()))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrShapeMismatch)
	assert.Equal(t, pipeline.KindShape, pipeline.Classify(err))
}

func TestRunRejectsLabelsOutsideClasses(t *testing.T) {
	deps, loader, _ := newDeps(t, encoding.PolicyReject)
	loader.classifier = &satisfactionClassifier{labels: []model.Label{model.Label(9)}}

	_, err := pipeline.New(deps).Run(context.Background(), pipeline.FromForm(employeetest.Record()))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrShapeMismatch)
}

func TestRunNarrator(t *testing.T) {
	t.Run("narrative attached", func(t *testing.T) {
		deps, _, _ := newDeps(t, encoding.PolicyReject)
		deps.Narrator = &stubNarrator{text: "Everyone is Outstanding."}

		p := pipeline.New(deps)
		assert.Equal(t, []string{"encode", "load_model", "predict", "assemble", "narrate"}, p.Describe())

		table, err := p.Run(context.Background(), pipeline.FromForm(employeetest.Record()))
		require.NoError(t, err)
		assert.Equal(t, "Everyone is Outstanding.", table.Narrative)
	})

	t.Run("failure ignored", func(t *testing.T) {
		deps, _, logs := newDeps(t, encoding.PolicyReject)
		deps.Narrator = &stubNarrator{err: errors.New("quota exceeded")}

		table, err := pipeline.New(deps).Run(context.Background(), pipeline.FromForm(employeetest.Record()))
		require.NoError(t, err)
		assert.Empty(t, table.Narrative)
		assert.Equal(t, 1, table.Len())
		assert.Equal(t, 1, logs.FilterMessage("skipping narrative").Len())
	})

	t.Run("disabled without narrator", func(t *testing.T) {
		deps, _, _ := newDeps(t, encoding.PolicyReject)
		assert.NotContains(t, pipeline.New(deps).Describe(), "narrate")
	})
}

func TestRunCanceled(t *testing.T) {
	deps, loader, _ := newDeps(t, encoding.PolicyReject)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.New(deps).Run(ctx, pipeline.FromForm(employeetest.Record()))
	require.Error(t, err)
	assert.Equal(t, pipeline.KindCanceled, pipeline.Classify(err))
	assert.Equal(t, 0, loader.calls)
}

func TestRunRequiresDependencies(t *testing.T) {
	_, err := pipeline.New(pipeline.Deps{}).Run(context.Background(), pipeline.FromForm(employeetest.Record()))
	require.Error(t, err)

	_, err = pipeline.New(pipeline.Deps{Encoder: newEncoder(t, encoding.PolicyReject)}).Run(context.Background(), pipeline.FromForm(employeetest.Record()))
	require.Error(t, err)
}

func TestRunWithForestArtifact(t *testing.T) {
	deps, _, _ := newDeps(t, encoding.PolicyReject)
	deps.Loader = model.FileLoader{Path: filepath.Join("..", "model", "testdata", "forest.json")}

	table, err := pipeline.New(deps).Run(context.Background(), pipeline.FromForm(employeetest.Record()))
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(int(model.Good)), table.Rows[0][27])
	assert.Equal(t, "performance-forest@1", table.Model)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want pipeline.Kind
	}{
		{err: fmt.Errorf("x: %w", employee.ErrParse), want: pipeline.KindParse},
		{err: fmt.Errorf("x: %w", employee.ErrMissingColumn), want: pipeline.KindEncoding},
		{err: fmt.Errorf("x: %w", encoding.ErrUnknownCategory), want: pipeline.KindEncoding},
		{err: fmt.Errorf("x: %w", model.ErrLoad), want: pipeline.KindLoad},
		{err: fmt.Errorf("x: %w", model.ErrShapeMismatch), want: pipeline.KindShape},
		{err: fmt.Errorf("x: %w", employee.ErrValidation), want: pipeline.KindValidation},
		{err: context.DeadlineExceeded, want: pipeline.KindCanceled},
		{err: errors.New("boom"), want: pipeline.KindInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.Classify(tt.err))
		})
	}

	assert.Empty(t, pipeline.Describe(nil))
	assert.Equal(t, "internal error: boom", pipeline.Describe(errors.New("boom")))
}
