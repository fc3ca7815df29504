package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldRequestID identifies one upload or form submission across log entries.
	FieldRequestID = "request_id"
	// FieldSource is the kind of user action: upload, manual or watch.
	FieldSource = "source"
	// FieldOrigin is the uploaded file path or "form".
	FieldOrigin = "origin"
	// FieldModelPath is where the model artifact is read from.
	FieldModelPath = "model_path"
	// FieldModel is the loaded artifact name.
	FieldModel = "model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// RequestFields describes one prediction request.
func RequestFields(id, source, origin string) []zap.Field {
	return StringFields(
		StringField{Key: FieldRequestID, Value: id},
		StringField{Key: FieldSource, Value: source},
		StringField{Key: FieldOrigin, Value: origin},
	)
}

// WithRequest attaches the request fields to the logger.
func WithRequest(logger *zap.Logger, id, source, origin string) *zap.Logger {
	return WithFields(logger, RequestFields(id, source, origin)...)
}
