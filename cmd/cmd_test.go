package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/document"
	"github.com/spigell/skill-matcher/internal/postings"
	"github.com/spigell/skill-matcher/internal/presentation"
	"github.com/spigell/skill-matcher/internal/schemas"
	"github.com/spigell/skill-matcher/internal/skills"
)

const sampleConfig = `
candidate:
  skills: [Python, " SQL "]
presentation:
  badge:
    - {min: 50, category: Pass, style: bg-success}
    - {min: 0, category: Fail, style: bg-danger}
server:
  addr: ":9000"
  rate-limit: 2.5
rank:
  min-score: 40
  exclude-companies: [Acme]
queue:
  url-file: /run/secrets/amqp
`

func decodeConfig(t *testing.T, content string) *Config {
	t.Helper()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		t.Fatalf("reading config: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		t.Fatalf("decoding config: %v", err)
	}
	return &config
}

func TestConfigDecoding(t *testing.T) {
	config := decodeConfig(t, sampleConfig)

	if config.Server.Addr != ":9000" || config.Server.RateLimit != 2.5 {
		t.Fatalf("unexpected server config: %+v", config.Server)
	}
	if config.Server.Burst != 20 {
		t.Fatalf("expected default burst, got %d", config.Server.Burst)
	}
	if !reflect.DeepEqual(config.Server.CORSOrigins, []string{"http://localhost:3000"}) {
		t.Fatalf("unexpected cors origins: %v", config.Server.CORSOrigins)
	}
	if config.Upload.MaxSize != document.DefaultMaxSize {
		t.Fatalf("expected default upload size, got %d", config.Upload.MaxSize)
	}
	if config.Rank.MinScore != 40 || config.Rank.Workers != 4 {
		t.Fatalf("unexpected rank config: %+v", config.Rank)
	}
	if config.Queue.URLFile != "/run/secrets/amqp" || config.Queue.Queue != "skill-matcher.analyze" || config.Queue.Prefetch != 8 {
		t.Fatalf("unexpected queue config: %+v", config.Queue)
	}

	fc := config.Rank.filteringConfig()
	if fc.MinScore != 40 || !reflect.DeepEqual(fc.ExcludeCompanies, []string{"Acme"}) {
		t.Fatalf("unexpected filtering config: %+v", fc)
	}
}

func TestLoadInputs(t *testing.T) {
	in, err := loadInputs(decodeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(in.candidate, skills.SkillSet{"Python", "SQL"}) {
		t.Fatalf("expected configured spelling kept, got %v", in.candidate)
	}
	if in.vocabulary.Len() != skills.DefaultVocabulary().Len() {
		t.Fatalf("expected default vocabulary")
	}
	if got := in.badge.RenderBadge(55); got != `<span class="badge bg-success">Pass (55%)</span>` {
		t.Fatalf("unexpected badge: %s", got)
	}
	if got := in.display.Classify(55).Category; got != "medium" {
		t.Fatalf("expected default display scale, got %s", got)
	}

	override := in.withCandidate([]string{"Go"})
	if !reflect.DeepEqual(override.candidate, skills.SkillSet{"Go"}) {
		t.Fatalf("unexpected override: %v", override.candidate)
	}
	if !reflect.DeepEqual(in.candidate, skills.SkillSet{"Python", "SQL"}) {
		t.Fatalf("override must not change the original inputs")
	}
}

func TestConfiguredSkillsKeepCaseThroughAnalysis(t *testing.T) {
	in, err := loadInputs(decodeConfig(t, "candidate:\n  skills: [React, \" Node.js \"]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := skills.Analyze("react and node.js", in.candidate, in.vocabulary)
	if !reflect.DeepEqual(result.MatchedSkills, skills.SkillSet{"React", "Node.js"}) {
		t.Fatalf("expected configured spelling in matched skills, got %v", result.MatchedSkills)
	}
}

func TestLoadInputsDefaults(t *testing.T) {
	in, err := loadInputs(&Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(in.candidate, skills.DemoCandidateSkills()) {
		t.Fatalf("expected demo candidate, got %v", in.candidate)
	}
}

func TestLoadInputsErrors(t *testing.T) {
	config := &Config{}
	config.Vocabulary.File = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := loadInputs(config); err == nil {
		t.Fatalf("expected error for missing vocabulary file")
	}

	config = &Config{}
	config.Presentation.Display = []presentation.Band{{Min: 50, Category: "only"}}
	if _, err := loadInputs(config); err == nil {
		t.Fatalf("expected error for a scale without a zero band")
	}
}

func TestPrintReport(t *testing.T) {
	result := skills.Analyze("Python, SQL and AWS", skills.SkillSet{"python", "sql"}, skills.DefaultVocabulary())
	report := AnalysisReport{
		MatchResult: result,
		View:        presentation.NewView(result, presentation.DisplayScale(), presentation.BadgeScale()),
	}

	var text bytes.Buffer
	if err := printReport(&text, FormatText, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expect := "Score: 67% (Medium match - good potential)\n" +
		"Matched skills: python, sql\n" +
		"Missing skills: aws\n" +
		"Good match! Add 1 missing skills to improve your chances.\n"
	if text.String() != expect {
		t.Fatalf("expected %q, got %q", expect, text.String())
	}

	var out bytes.Buffer
	if err := printReport(&out, FormatJSON, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := schemas.ValidateResult(out.Bytes()); err != nil {
		t.Fatalf("json report does not match the schema: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if _, ok := decoded["view"]; !ok {
		t.Fatalf("expected view in json report: %s", out.String())
	}
}

func TestPrintReportWithoutSkills(t *testing.T) {
	result := skills.Analyze("no skills here", skills.SkillSet{"python"}, skills.NewVocabulary("rust"))

	var text bytes.Buffer
	if err := printReport(&text, FormatText, AnalysisReport{MatchResult: result}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text.String(), "Matched skills: none\nMissing skills: none") {
		t.Fatalf("unexpected report: %q", text.String())
	}
}

func TestHandleAnalyzeActionDumpsValidResult(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	result := skills.Analyze("Docker", skills.SkillSet{"docker"}, skills.DefaultVocabulary())
	report := AnalysisReport{MatchResult: result}

	filename, err := dumpReport(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	if err := schemas.ValidateResult(data); err != nil {
		t.Fatalf("dumped result is invalid: %v", err)
	}

	if err := handleAnalyzeAction(PromptExit, zap.NewNop(), report); err != errExit {
		t.Fatalf("expected errExit, got %v", err)
	}
	if err := handleAnalyzeAction("unknown", zap.NewNop(), report); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestReadJobFile(t *testing.T) {
	dir := t.TempDir()

	html := filepath.Join(dir, "job.html")
	if err := os.WriteFile(html, []byte("<h1>Role</h1><p>Go and Kubernetes</p>"), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	text, err := readJobFile(html, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "RoleGo and Kubernetes" {
		t.Fatalf("unexpected text: %q", text)
	}

	image := filepath.Join(dir, "job.png")
	if err := os.WriteFile(image, []byte("png"), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if _, err := readJobFile(image, 0); err == nil {
		t.Fatalf("expected error for unsupported file")
	}

	if _, err := readJobFile(html, 4); err == nil {
		t.Fatalf("expected error for file over the size limit")
	}
}

func TestAppendToExcludeFile(t *testing.T) {
	excludeFile := filepath.Join(t.TempDir(), "exclude.json")
	list := &postings.Postings{Items: []*postings.Posting{
		{ID: "1", Company: "Acme"},
		{ID: "2", Company: "Globex"},
	}}

	selected := &postings.Postings{Items: []*postings.Posting{list.Items[0]}}
	if err := appendToExcludeFile(zap.NewNop(), excludeFile, selected, list); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Len() != 1 || list.Items[0].ID != "2" {
		t.Fatalf("expected posting 1 to be dropped, got %d postings", list.Len())
	}

	excluded, err := postings.GetExcludedPostingsFromFile(excludeFile)
	if err != nil {
		t.Fatalf("reading exclude file: %v", err)
	}
	if !reflect.DeepEqual(excluded.IDs(), []string{"1"}) {
		t.Fatalf("unexpected excluded ids: %v", excluded.IDs())
	}

	if err := appendToExcludeFile(zap.NewNop(), "", list, list); err == nil {
		t.Fatalf("expected error without exclude file")
	}
}

func TestPrintRanking(t *testing.T) {
	list := &postings.Postings{Items: []*postings.Posting{
		{ID: "a", Title: "Backend", Company: "Acme", Match: &skills.MatchResult{Score: 100}},
		{ID: "b", Title: "Data", Company: "Globex", Match: &skills.MatchResult{Score: 7}},
	}}

	var out bytes.Buffer
	printRanking(&out, list)

	expect := " 1. [100%] a Backend / Acme\n 2. [  7%] b Data / Globex\n"
	if out.String() != expect {
		t.Fatalf("expected %q, got %q", expect, out.String())
	}
}
