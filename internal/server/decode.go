package server

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/skill-matcher/internal/skills"
)

// AnalyzeRequest is shared by the JSON and multipart endpoints.
// Skills accept either a list or a comma separated string.
type AnalyzeRequest struct {
	JobDescription string   `mapstructure:"job_description" validate:"required,max=1000000"`
	Skills         []string `mapstructure:"skills" validate:"max=500,dive,max=100"`
}

func (s *Server) decodeRequest(raw map[string]any) (AnalyzeRequest, error) {
	var req AnalyzeRequest

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		Result:           &req,
	})
	if err != nil {
		return req, err
	}

	if err := decoder.Decode(raw); err != nil {
		return req, &ErrValidation{Field: "(request)", Message: fmt.Sprintf("invalid request: %v", err)}
	}

	req.JobDescription = strings.TrimSpace(req.JobDescription)
	req.Skills = skills.Normalize(req.Skills)

	if err := s.validate.Struct(req); err != nil {
		return req, toValidationError(err)
	}

	return req, nil
}

// flattenForm turns single-valued form fields into scalars so they decode like JSON.
func flattenForm(values map[string][]string) map[string]any {
	raw := make(map[string]any, len(values))
	for key, value := range values {
		switch len(value) {
		case 0:
		case 1:
			raw[key] = value[0]
		default:
			raw[key] = value
		}
	}
	return raw
}
