// Package mcptool exposes the skill matcher as Model Context Protocol tools.
package mcptool

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/logger"
	"github.com/spigell/skill-matcher/internal/presentation"
	"github.com/spigell/skill-matcher/internal/skills"
)

const (
	MatchToolName      = "skill_match"
	VocabularyToolName = "skill_vocabulary"
)

type MatchInput struct {
	JobDescription string   `json:"job_description" jsonschema:"Full job description text to extract required skills from"`
	Skills         []string `json:"skills,omitempty" jsonschema:"Candidate skills; the configured candidate profile is used when empty"`
}

type MatchOutput struct {
	Score         int               `json:"score"`
	MatchedSkills []string          `json:"matchedSkills"`
	MissingSkills []string          `json:"missingSkills"`
	Message       string            `json:"message"`
	View          presentation.View `json:"view"`
}

type VocabularyInput struct{}

type VocabularyOutput struct {
	Terms []string `json:"terms"`
}

// Tools holds the matching inputs shared by every call.
type Tools struct {
	Logger     *zap.Logger
	Vocabulary *skills.Vocabulary
	Candidate  skills.SkillSet
	Display    *presentation.Scale
	Badge      *presentation.Scale
}

// NewServer creates an MCP server with both tools registered.
func NewServer(version string, tools *Tools) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "skill-matcher",
		Version: version,
	}, nil)

	tools.Register(server)
	return server
}

// Serve runs the server over stdin/stdout until the client disconnects or ctx is done.
func Serve(ctx context.Context, version string, tools *Tools) error {
	return NewServer(version, tools).Run(ctx, &mcp.StdioTransport{})
}

func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        MatchToolName,
		Description: "Match candidate skills against a job description. Returns a 0-100 score, matched and missing skills, an advice message and display hints.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.match)

	mcp.AddTool(server, &mcp.Tool{
		Name:        VocabularyToolName,
		Description: "List the skill terms recognised in job descriptions, in extraction order.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.vocabulary)
}

func (t *Tools) match(_ context.Context, _ *mcp.CallToolRequest, input MatchInput) (*mcp.CallToolResult, MatchOutput, error) {
	jobDescription := strings.TrimSpace(input.JobDescription)
	if jobDescription == "" {
		return nil, MatchOutput{}, errors.New("job_description is required")
	}

	candidate := t.candidate()
	if requested := skills.Normalize(input.Skills); len(requested) > 0 {
		candidate = requested
	}

	result := skills.Analyze(jobDescription, candidate, t.vocabularyOrDefault())
	view := presentation.NewView(result, t.scale(t.Display, presentation.DisplayScale), t.scale(t.Badge, presentation.BadgeScale))

	log := logger.WithRequestFields(t.Logger, uuid.NewString(), "mcp")
	log.Info("skill match tool called", append(logger.AnalysisFields(result), logger.JobPreview(jobDescription))...)

	return nil, MatchOutput{
		Score:         result.Score,
		MatchedSkills: result.MatchedSkills,
		MissingSkills: result.MissingSkills,
		Message:       result.Message,
		View:          view,
	}, nil
}

func (t *Tools) vocabulary(_ context.Context, _ *mcp.CallToolRequest, _ VocabularyInput) (*mcp.CallToolResult, VocabularyOutput, error) {
	return nil, VocabularyOutput{Terms: t.vocabularyOrDefault().Terms()}, nil
}

func (t *Tools) vocabularyOrDefault() *skills.Vocabulary {
	if t.Vocabulary == nil {
		return skills.DefaultVocabulary()
	}
	return t.Vocabulary
}

func (t *Tools) candidate() skills.SkillSet {
	if t.Candidate == nil {
		return skills.DemoCandidateSkills()
	}
	return t.Candidate
}

func (t *Tools) scale(s *presentation.Scale, def func() *presentation.Scale) *presentation.Scale {
	if s == nil {
		return def()
	}
	return s
}
