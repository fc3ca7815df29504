package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/perf-predictor/internal/employee"
	"github.com/spigell/perf-predictor/internal/utils"
)

// Source is the kind of user action that produced a request.
type Source string

const (
	SourceUpload Source = "upload"
	SourceManual Source = "manual"
	SourceWatch  Source = "watch"
)

// FormOrigin is the origin of manually entered requests.
const FormOrigin = "form"

const (
	previewRows      = 5
	previewRowLength = 160
)

// Request captures the full input of one user action. It is passed by
// value and its records are never modified by the pipeline.
type Request struct {
	ID     string
	Source Source
	Origin string
	// HasRating is set when the upload carried a historical PerformanceRating column.
	HasRating bool

	records []employee.Record
}

// NewRequest copies records into a new request with a fresh id.
func NewRequest(source Source, origin string, records []employee.Record) Request {
	return Request{
		ID:      uuid.NewString(),
		Source:  source,
		Origin:  origin,
		records: append([]employee.Record(nil), records...),
	}
}

// FromForm wraps one manually entered record.
func FromForm(r employee.Record) Request {
	return NewRequest(SourceManual, FormOrigin, []employee.Record{r})
}

// Records returns a copy of the request records.
func (r Request) Records() []employee.Record {
	return append([]employee.Record(nil), r.records...)
}

func (r Request) Len() int {
	return len(r.records)
}

// ReadUpload reads one uploaded file into a request and logs a preview of it.
func ReadUpload(logger *zap.Logger, source Source, path string) (Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", employee.ErrParse, err)
	}
	defer file.Close()

	table, err := employee.ReadCSV(file)
	if err != nil {
		return Request{}, fmt.Errorf("%s: %w", path, err)
	}

	req := NewRequest(source, path, table.Records)
	req.HasRating = table.HasRating

	if logger != nil {
		logger.Info("upload read",
			zap.String("path", path),
			zap.Strings("columns", table.Header),
			zap.Int("records", table.Len()),
			zap.Bool("has_rating", table.HasRating),
		)
		if len(table.Ignored) > 0 {
			logger.Info("ignoring unknown columns", zap.Strings("columns", table.Ignored))
		}
		for i, r := range table.Head(previewRows) {
			logger.Debug("data preview",
				zap.Int("row", i+1),
				zap.String("values", utils.TruncateForLog(strings.Join(r.Values(), ","), previewRowLength)),
			)
		}
	}

	return req, nil
}
