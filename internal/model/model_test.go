package model_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/perf-predictor/internal/employee"
	"github.com/spigell/perf-predictor/internal/employee/employeetest"
	"github.com/spigell/perf-predictor/internal/encoding"
	"github.com/spigell/perf-predictor/internal/model"
)

func load(t *testing.T, name string) model.Classifier {
	t.Helper()
	c, err := model.FileLoader{Path: filepath.Join("testdata", name)}.Load(context.Background())
	require.NoError(t, err)
	return c
}

func encode(t *testing.T, records ...employee.Record) *encoding.Batch {
	t.Helper()
	enc, err := encoding.NewEncoder(encoding.DefaultVocabulary(), encoding.PolicyReject)
	require.NoError(t, err)
	batch, err := enc.EncodeAll(records)
	require.NoError(t, err)
	return batch
}

func TestForestPredict(t *testing.T) {
	c := load(t, "forest.json")
	assert.Equal(t, "performance-forest@1", c.Name())
	assert.Equal(t, model.TypeForest, c.Type())
	assert.Equal(t, []model.Label{model.Low, model.Good, model.Excellent, model.Outstanding}, c.Classes())

	good := employeetest.Record()

	low := employeetest.Record()
	low.EmpEnvironmentSatisfaction = 1
	low.EmpLastSalaryHikePercent = 22
	low.YearsSinceLastPromotion = 7

	tie := employeetest.Record()
	tie.EmpLastSalaryHikePercent = 22
	tie.YearsSinceLastPromotion = 7

	rows, err := model.Matrix(c.Features(), encode(t, good, low, tie))
	require.NoError(t, err)

	labels, err := c.Predict(rows)
	require.NoError(t, err)
	assert.Equal(t, []model.Label{model.Good, model.Low, model.Low}, labels)
}

func TestLinearPredict(t *testing.T) {
	c := load(t, "linear.yaml")
	assert.Equal(t, model.TypeLinear, c.Type())

	tests := []struct {
		name string
		env  float64
		hike float64
		want model.Label
	}{
		{name: "excellent", env: 4, hike: 12, want: model.Excellent},
		{name: "low", env: 1, hike: 5, want: model.Low},
		{name: "tie goes to lower class", env: 4, hike: 20, want: model.Excellent},
		{name: "outstanding", env: 4, hike: 24, want: model.Outstanding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, err := c.Predict([][]float64{{tt.env, tt.hike}})
			require.NoError(t, err)
			assert.Equal(t, []model.Label{tt.want}, labels)
		})
	}
}

func TestLinearStandardisation(t *testing.T) {
	c, err := model.Build(&model.Artifact{
		Name:     "scaled",
		Type:     "linear",
		Features: []string{"Age"},
		Classes:  []int{0, 3},
		Linear: &model.LinearSpec{
			Weights:    [][]float64{{-1}, {1}},
			Intercepts: []float64{0, 0},
			Means:      []float64{40},
			Scales:     []float64{10},
		},
	})
	require.NoError(t, err)

	labels, err := c.Predict([][]float64{{30}, {50}})
	require.NoError(t, err)
	assert.Equal(t, []model.Label{model.Low, model.Outstanding}, labels)
}

func TestPredictIsIdempotent(t *testing.T) {
	c := load(t, "forest.json")
	rows, err := model.Matrix(c.Features(), encode(t, employeetest.Record()))
	require.NoError(t, err)

	first, err := c.Predict(rows)
	require.NoError(t, err)
	second, err := c.Predict(rows)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPredictShapeMismatch(t *testing.T) {
	c := load(t, "forest.json")

	_, err := c.Predict([][]float64{{1, 2, 3}})
	require.ErrorIs(t, err, model.ErrShapeMismatch)

	_, err = model.Matrix([]string{"Age", "Salary"}, encode(t, employeetest.Record()))
	require.ErrorIs(t, err, model.ErrShapeMismatch)
	assert.Contains(t, err.Error(), `"Salary"`)
}

func TestCheckVocabulary(t *testing.T) {
	vocabulary := encoding.DefaultVocabulary()

	plain := load(t, "forest.json")
	require.NoError(t, model.CheckVocabulary(plain, vocabulary))

	same, err := model.Build(&model.Artifact{
		Name: "same", Type: "linear", Features: []string{"Gender"}, Classes: []int{0},
		Vocabulary: encoding.Vocabulary{employee.ColumnGender: vocabulary[employee.ColumnGender]},
		Linear:     &model.LinearSpec{Weights: [][]float64{{1}}, Intercepts: []float64{0}},
	})
	require.NoError(t, err)
	require.NoError(t, model.CheckVocabulary(same, vocabulary))

	other, err := model.Build(&model.Artifact{
		Name: "other", Type: "linear", Features: []string{"Gender"}, Classes: []int{0},
		Vocabulary: encoding.Vocabulary{employee.ColumnGender: {"Male": 0, "Female": 1, "Other": 2}},
		Linear:     &model.LinearSpec{Weights: [][]float64{{1}}, Intercepts: []float64{0}},
	})
	require.NoError(t, err)

	err = model.CheckVocabulary(other, vocabulary)
	require.ErrorIs(t, err, model.ErrShapeMismatch)
	assert.Contains(t, err.Error(), employee.ColumnGender)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join("testdata", "absent.json")},
		{name: "corrupt file", path: filepath.Join("testdata", "broken.json")},
		{name: "empty path", path: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.FileLoader{Path: tt.path}.Load(context.Background())
			require.ErrorIs(t, err, model.ErrLoad)
		})
	}
}

func TestLoadHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := model.FileLoader{Path: filepath.Join("testdata", "forest.json")}.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuildRejectsInvalidArtifacts(t *testing.T) {
	leaf := model.Node{Leaf: true, Class: 0}
	tests := []struct {
		name     string
		artifact *model.Artifact
	}{
		{name: "nil", artifact: nil},
		{name: "unknown type", artifact: &model.Artifact{Type: "svm", Features: []string{"Age"}, Classes: []int{0}}},
		{name: "no features", artifact: &model.Artifact{Type: "forest", Classes: []int{0}}},
		{name: "duplicate features", artifact: &model.Artifact{Type: "forest", Features: []string{"Age", "Age"}, Classes: []int{0}}},
		{name: "class out of range", artifact: &model.Artifact{Type: "forest", Features: []string{"Age"}, Classes: []int{4}}},
		{name: "no trees", artifact: &model.Artifact{Type: "forest", Features: []string{"Age"}, Classes: []int{0}, Forest: &model.ForestSpec{}}},
		{
			name: "leaf class outside classes",
			artifact: &model.Artifact{Type: "forest", Features: []string{"Age"}, Classes: []int{0},
				Forest: &model.ForestSpec{Trees: []model.Tree{{Nodes: []model.Node{{Leaf: true, Class: 2}}}}}},
		},
		{
			name: "cyclic tree",
			artifact: &model.Artifact{Type: "forest", Features: []string{"Age"}, Classes: []int{0},
				Forest: &model.ForestSpec{Trees: []model.Tree{{Nodes: []model.Node{
					{Feature: 0, Threshold: 1, Left: 1, Right: 2},
					{Feature: 0, Threshold: 1, Left: 0, Right: 2},
					leaf,
				}}}}},
		},
		{
			name: "split on unknown feature",
			artifact: &model.Artifact{Type: "forest", Features: []string{"Age"}, Classes: []int{0},
				Forest: &model.ForestSpec{Trees: []model.Tree{{Nodes: []model.Node{
					{Feature: 3, Threshold: 1, Left: 1, Right: 2}, leaf, leaf,
				}}}}},
		},
		{
			name: "linear weight rows",
			artifact: &model.Artifact{Type: "linear", Features: []string{"Age"}, Classes: []int{0, 1},
				Linear: &model.LinearSpec{Weights: [][]float64{{1}}, Intercepts: []float64{0, 0}}},
		},
		{
			name: "linear zero scale",
			artifact: &model.Artifact{Type: "linear", Features: []string{"Age"}, Classes: []int{0},
				Linear: &model.LinearSpec{Weights: [][]float64{{1}}, Intercepts: []float64{0}, Scales: []float64{0}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.Build(tt.artifact)
			require.ErrorIs(t, err, model.ErrLoad)
		})
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := model.Decode([]byte(`{"name":"x","type":"forest","weights":[]}`), "json")
	require.ErrorIs(t, err, model.ErrLoad)

	_, err = model.Decode([]byte("name: x\nkind: forest\n"), "yaml")
	require.ErrorIs(t, err, model.ErrLoad)

	_, err = model.Decode([]byte("{}"), "pickle")
	require.ErrorIs(t, err, model.ErrLoad)
}

func TestLabelString(t *testing.T) {
	assert.Equal(t, "Low", model.Low.String())
	assert.Equal(t, "Outstanding", model.Outstanding.String())
	assert.Equal(t, "Label(7)", model.Label(7).String())
	assert.False(t, model.Label(-1).Valid())
}
