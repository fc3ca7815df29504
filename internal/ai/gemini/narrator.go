package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/perf-predictor/internal/logger"
	"github.com/spigell/perf-predictor/internal/report"
	"github.com/spigell/perf-predictor/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	// maxPromptRows keeps large uploads from producing oversized prompts.
	maxPromptRows = 200
)

// Narrator asks Gemini for a short summary of a predictions table.
type Narrator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewNarrator(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Narrator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Narrator{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (n *Narrator) Summarize(ctx context.Context, table *report.Table) (string, error) {
	if table == nil || table.Len() == 0 {
		return "", fmt.Errorf("predictions table is empty")
	}

	prompt, err := buildPrompt(table)
	if err != nil {
		return "", err
	}

	n.logger.Debug("gemini generate content request",
		zap.String(logger.FieldRequestID, table.RequestID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, n.maxLogLen)),
	)

	raw, err := n.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	n.logger.Debug("gemini generate content response",
		zap.String(logger.FieldRequestID, table.RequestID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, n.maxLogLen)),
	)

	return cleanResponse(raw), nil
}

func buildPrompt(table *report.Table) (string, error) {
	rows := table.Rows
	if len(rows) > maxPromptRows {
		rows = rows[:maxPromptRows]
	}

	payload, err := json.Marshal(map[string]any{
		"columns": table.Columns,
		"rows":    rows,
	})
	if err != nil {
		return "", fmt.Errorf("marshal predictions: %w", err)
	}

	var summary strings.Builder
	for _, c := range table.Summary() {
		fmt.Fprintf(&summary, "- %d (%s): %d\n", c.Label, c.Name, c.Count)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Legend: {{LEGEND}}\n\nSummary:\n{{SUMMARY}}\nTable:\n{{TABLE_JSON}}\n\nSummary in plain text:"
	}

	prompt := strings.ReplaceAll(template, "{{LEGEND}}", table.Legend)
	prompt = strings.ReplaceAll(prompt, "{{SUMMARY}}", strings.TrimRight(summary.String(), "\n"))
	prompt = strings.ReplaceAll(prompt, "{{TABLE_JSON}}", string(payload))
	return prompt, nil
}

func cleanResponse(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```text")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
