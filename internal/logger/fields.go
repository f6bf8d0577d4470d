package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/skills"
	"github.com/spigell/skill-matcher/internal/utils"
)

const (
	// FieldRequestID is the structured log field key for the analysis request id.
	FieldRequestID = "request_id"
	// FieldTransport is the structured log field key for the caller transport (cli, http, mcp, amqp).
	FieldTransport = "transport"
	// FieldJobPreview is the structured log field key for the shortened job description.
	FieldJobPreview = "job_preview"

	jobPreviewLen = 80
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

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithRequestFields attaches the request id and transport to the logger.
func WithRequestFields(logger *zap.Logger, requestID, transport string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldRequestID, Value: requestID},
		StringField{Key: FieldTransport, Value: transport},
	)...)
}

// AnalysisFields summarizes a match result for logging without dumping skill lists.
func AnalysisFields(result skills.MatchResult) []zap.Field {
	return []zap.Field{
		zap.Int("score", result.Score),
		zap.Int("matched_count", len(result.MatchedSkills)),
		zap.Int("missing_count", len(result.MissingSkills)),
	}
}

// JobPreview returns the first characters of a job description as a log field.
func JobPreview(jobDescription string) zap.Field {
	return zap.String(FieldJobPreview, utils.TruncateForLog(jobDescription, jobPreviewLen))
}
