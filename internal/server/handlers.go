package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/document"
	"github.com/spigell/skill-matcher/internal/logger"
	"github.com/spigell/skill-matcher/internal/presentation"
	"github.com/spigell/skill-matcher/internal/skills"
)

const multipartMemory = 32 << 20

// AnalysisResponse is the body returned by the analyze endpoints.
type AnalysisResponse struct {
	ID string `json:"id"`
	skills.MatchResult
	View presentation.View `json:"view"`
}

// UploadResponse adds the accepted resume metadata to the analysis.
type UploadResponse struct {
	AnalysisResponse
	Resume ResumeInfo `json:"resume"`
}

type ResumeInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size string `json:"size"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVocabulary(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string][]string{"terms": s.deps.Vocabulary.Terms()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&raw); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := s.decodeRequest(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, s.analyze(r, req))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadSize+maxJSONBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, r, fmt.Errorf("%w: request body exceeds %s", document.ErrTooLarge, document.FormatSize(maxErr.Limit)))
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	resume, err := s.formUpload(r, "resume", document.ResumePolicy())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if resume == nil {
		s.writeError(w, r, fmt.Errorf("resume: %w", document.ErrEmpty))
		return
	}

	raw := flattenForm(r.MultipartForm.Value)
	if text, _ := raw["job_description"].(string); strings.TrimSpace(text) == "" {
		text, err := s.jobFileText(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		raw["job_description"] = text
	}

	req, err := s.decodeRequest(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, UploadResponse{
		AnalysisResponse: s.analyze(r, req),
		Resume: ResumeInfo{
			Name: resume.Name,
			Type: resume.ContentType,
			Size: document.FormatSize(resume.Size),
		},
	})
}

// formUpload validates the named file part. A missing part yields nil without error.
func (s *Server) formUpload(r *http.Request, field string, policy document.Policy) (*document.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &ErrValidation{Field: field, Message: fmt.Sprintf("%s: invalid file", field)}
	}
	file.Close()

	policy.MaxSize = s.cfg.MaxUploadSize
	upload := document.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}

	contentType, err := document.Validate(upload, policy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	upload.ContentType = contentType

	return &upload, nil
}

func (s *Server) jobFileText(r *http.Request) (string, error) {
	upload, err := s.formUpload(r, "job_file", document.JobDescriptionPolicy())
	if err != nil || upload == nil {
		return "", err
	}

	file, _, err := r.FormFile("job_file")
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("reading job file: %w", err)
	}

	text, err := document.ExtractText(upload.ContentType, data)
	if err != nil {
		if errors.Is(err, document.ErrUnsupportedType) {
			return "", fmt.Errorf("job_file: %w", err)
		}
		return "", &ErrValidation{Field: "job_file", Message: fmt.Sprintf("job_file: %v", err)}
	}
	return text, nil
}

func (s *Server) analyze(r *http.Request, req AnalyzeRequest) AnalysisResponse {
	candidate := s.deps.Candidate
	if len(req.Skills) > 0 {
		candidate = req.Skills
	}

	result := skills.Analyze(req.JobDescription, candidate, s.deps.Vocabulary)

	logger.WithRequestFields(s.logger, RequestID(r.Context()), "http").
		Debug("analysis completed", append(logger.AnalysisFields(result), logger.JobPreview(req.JobDescription))...)

	return AnalysisResponse{
		ID:          RequestID(r.Context()),
		MatchResult: result,
		View:        presentation.NewView(result, s.deps.Display, s.deps.Badge),
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.WithRequestFields(s.logger, RequestID(r.Context()), "http").Error("request failed", zap.Error(err))
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
