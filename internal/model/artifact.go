package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/perf-predictor/internal/encoding"
)

// Artifact is the on-disk form of a trained classifier.
type Artifact struct {
	Name       string              `json:"name" yaml:"name"`
	Version    string              `json:"version,omitempty" yaml:"version,omitempty"`
	Type       string              `json:"type" yaml:"type"`
	Features   []string            `json:"features" yaml:"features"`
	Classes    []int               `json:"classes" yaml:"classes"`
	Vocabulary encoding.Vocabulary `json:"vocabulary,omitempty" yaml:"vocabulary,omitempty"`
	Forest     *ForestSpec         `json:"forest,omitempty" yaml:"forest,omitempty"`
	Linear     *LinearSpec         `json:"linear,omitempty" yaml:"linear,omitempty"`
}

type builder func(h *header, a *Artifact) (Classifier, error)

var builders = map[string]builder{
	TypeForest: buildForest,
	TypeLinear: buildLinear,
}

// Decode parses an artifact. Format is "yaml" or "json".
func Decode(data []byte, format string) (*Artifact, error) {
	var a Artifact
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("%w: decoding yaml: %v", ErrLoad, err)
		}
	case "json", "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("%w: decoding json: %v", ErrLoad, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported artifact format %q", ErrLoad, format)
	}
	return &a, nil
}

// Build checks the artifact and turns it into a classifier.
func Build(a *Artifact) (Classifier, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: artifact is empty", ErrLoad)
	}

	build, ok := builders[strings.ToLower(strings.TrimSpace(a.Type))]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported model type %q", ErrLoad, a.Type)
	}

	h, err := newHeader(a)
	if err != nil {
		return nil, err
	}

	return build(h, a)
}

func newHeader(a *Artifact) (*header, error) {
	if len(a.Features) == 0 {
		return nil, fmt.Errorf("%w: artifact lists no features", ErrLoad)
	}
	seen := make(map[string]bool, len(a.Features))
	for _, f := range a.Features {
		if strings.TrimSpace(f) == "" || seen[f] {
			return nil, fmt.Errorf("%w: feature names must be unique and non-empty, got %q", ErrLoad, f)
		}
		seen[f] = true
	}

	if len(a.Classes) == 0 {
		return nil, fmt.Errorf("%w: artifact lists no classes", ErrLoad)
	}
	classes := make([]Label, 0, len(a.Classes))
	known := make(map[Label]bool, len(a.Classes))
	for _, c := range a.Classes {
		l := Label(c)
		if !l.Valid() || known[l] {
			return nil, fmt.Errorf("%w: class %d is unsupported or repeated", ErrLoad, c)
		}
		known[l] = true
		classes = append(classes, l)
	}

	name := strings.TrimSpace(a.Name)
	if a.Version != "" {
		name = fmt.Sprintf("%s@%s", name, a.Version)
	}

	return &header{
		name:       name,
		kind:       strings.ToLower(strings.TrimSpace(a.Type)),
		features:   append([]string(nil), a.Features...),
		classes:    classes,
		vocabulary: a.Vocabulary,
	}, nil
}

// FileLoader reads the artifact from disk on every Load call.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(ctx context.Context) (Classifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimSpace(l.Path)
	if path == "" {
		return nil, fmt.Errorf("%w: model path is not configured", ErrLoad)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %v", ErrLoad, path, err)
	}

	a, err := Decode(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return Build(a)
}
