package skills

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExtractSkills(t *testing.T) {
	t.Parallel()

	vocabulary := NewVocabulary("python", "java", "javascript", "react", "sql")

	tests := []struct {
		name   string
		text   string
		expect SkillSet
	}{
		{
			name:   "empty text",
			text:   "",
			expect: SkillSet{},
		},
		{
			name:   "vocabulary order, not text order",
			text:   "SQL first, then Python",
			expect: SkillSet{"python", "sql"},
		},
		{
			name:   "substring inside longer word",
			text:   "javascript role",
			expect: SkillSet{"java", "javascript"},
		},
		{
			name:   "no known skills",
			text:   "we value kindness",
			expect: SkillSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractSkills(tt.text, vocabulary)
			if !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestExtractSkillsIsSubsequenceOfVocabulary(t *testing.T) {
	vocabulary := DefaultVocabulary()
	text := "Looking for a Go engineer with Kubernetes, AWS, Docker and some SQL. Python/pandas welcome."

	got := ExtractSkills(text, vocabulary)
	again := ExtractSkills(text, vocabulary)
	if !reflect.DeepEqual(got, again) {
		t.Fatalf("expected identical output on repeated calls, got %v and %v", got, again)
	}

	terms := vocabulary.Terms()
	pos := 0
	for _, skill := range got {
		for pos < len(terms) && terms[pos] != skill {
			pos++
		}
		if pos == len(terms) {
			t.Fatalf("skill %q is not in vocabulary order (result %v)", skill, got)
		}
		pos++
	}
}

func TestExtractSkillsKeepsVocabularyDuplicates(t *testing.T) {
	got := ExtractSkills("docker", NewVocabulary("docker", "docker"))
	if len(got) != 2 {
		t.Fatalf("expected duplicated entry twice, got %v", got)
	}
}

func TestExtractSkillsNilVocabulary(t *testing.T) {
	if got := ExtractSkills("python", nil); len(got) != 0 {
		t.Fatalf("expected no skills, got %v", got)
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate SkillSet
		job       SkillSet
		matched   SkillSet
		missing   SkillSet
	}{
		{
			name:      "exact overlap",
			candidate: SkillSet{"python", "javascript", "sql", "git"},
			job:       SkillSet{"python", "sql"},
			matched:   SkillSet{"python", "sql"},
			missing:   SkillSet{},
		},
		{
			name:      "case insensitive",
			candidate: SkillSet{"Docker"},
			job:       SkillSet{"docker", "aws"},
			matched:   SkillSet{"Docker"},
			missing:   SkillSet{"aws"},
		},
		{
			name:      "candidate contains job skill",
			candidate: SkillSet{"javascript"},
			job:       SkillSet{"java"},
			matched:   SkillSet{"javascript"},
			missing:   SkillSet{},
		},
		{
			name:      "job skill contains candidate skill",
			candidate: SkillSet{"go"},
			job:       SkillSet{"mongodb"},
			matched:   SkillSet{"go"},
			missing:   SkillSet{},
		},
		{
			name:      "job skill covered by a different candidate skill",
			candidate: SkillSet{"node.js"},
			job:       SkillSet{"node.js", "js"},
			matched:   SkillSet{"node.js"},
			missing:   SkillSet{},
		},
		{
			name:      "no job skills",
			candidate: SkillSet{"python"},
			job:       SkillSet{},
			matched:   SkillSet{},
			missing:   SkillSet{},
		},
		{
			name:      "no candidate skills",
			candidate: nil,
			job:       SkillSet{"rust"},
			matched:   SkillSet{},
			missing:   SkillSet{"rust"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			matched, missing := Match(tt.candidate, tt.job)
			if !reflect.DeepEqual(matched, tt.matched) {
				t.Fatalf("expected matched %v, got %v", tt.matched, matched)
			}
			if !reflect.DeepEqual(missing, tt.missing) {
				t.Fatalf("expected missing %v, got %v", tt.missing, missing)
			}
		})
	}
}

func TestMatchCountsAreNotComplementary(t *testing.T) {
	// Two candidate skills match one job skill, so matched outnumbers the job side.
	matched, missing := Match(SkillSet{"java", "javascript"}, SkillSet{"javascript"})
	if len(matched)+len(missing) == 1 {
		t.Fatalf("expected matched+missing to differ from job skill count, got %v / %v", matched, missing)
	}
	if len(matched) != 2 {
		t.Fatalf("expected both candidate skills to match, got %v", matched)
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		matched int
		job     int
		expect  int
	}{
		{name: "empty sets", matched: 0, job: 0, expect: 0},
		{name: "full match", matched: 3, job: 3, expect: 100},
		{name: "division guard", matched: 1, job: 0, expect: 100},
		{name: "not clamped without job skills", matched: 2, job: 0, expect: 200},
		{name: "not clamped above job skills", matched: 4, job: 2, expect: 200},
		{name: "rounds down", matched: 1, job: 3, expect: 33},
		{name: "rounds up", matched: 2, job: 3, expect: 67},
		{name: "half rounds up", matched: 1, job: 8, expect: 13},
		{name: "exact half", matched: 1, job: 2, expect: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Score(make(SkillSet, tt.matched), make(SkillSet, tt.job)); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestGenerateMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score   int
		missing int
		expect  string
	}{
		{70, 0, "Excellent match! Your resume aligns well with this job."},
		{95, 4, "Excellent match! Your resume aligns well with this job."},
		{69, 0, "Good match! Consider highlighting more relevant experience."},
		{55, 2, "Good match! Add 2 missing skills to improve your chances."},
		{40, 1, "Good match! Add 1 missing skills to improve your chances."},
		{39, 0, "Low match. Consider reformatting your resume to highlight relevant skills."},
		{0, 5, "Low match. Add 5 key skills to significantly improve your chances."},
		{10, -1, "Low match. Consider reformatting your resume to highlight relevant skills."},
	}

	for _, tt := range tests {
		if got := GenerateMessage(tt.score, tt.missing); got != tt.expect {
			t.Fatalf("GenerateMessage(%d, %d): expected %q, got %q", tt.score, tt.missing, tt.expect, got)
		}
	}
}

func TestAnalyze(t *testing.T) {
	vocabulary := NewVocabulary("python", "react", "sql")
	candidate := SkillSet{"python", "javascript", "sql", "git"}

	result := Analyze("looking for a python and sql developer", candidate, vocabulary)

	if !reflect.DeepEqual(result.MatchedSkills, SkillSet{"python", "sql"}) {
		t.Fatalf("unexpected matched skills: %v", result.MatchedSkills)
	}
	if len(result.MissingSkills) != 0 {
		t.Fatalf("expected no missing skills, got %v", result.MissingSkills)
	}
	if result.Score != 100 {
		t.Fatalf("expected score 100, got %d", result.Score)
	}
	if result.Message != "Excellent match! Your resume aligns well with this job." {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestAnalyzeWithoutJobSkills(t *testing.T) {
	result := Analyze("we need a florist", DemoCandidateSkills(), DefaultVocabulary())
	if result.Score != 0 {
		t.Fatalf("expected score 0, got %d", result.Score)
	}
	if result.Message != "Low match. Consider reformatting your resume to highlight relevant skills." {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestMatchResultJSONUsesEmptyArrays(t *testing.T) {
	result := Analyze("", nil, DefaultVocabulary())

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"score":0,"matchedSkills":[],"missingSkills":[],"message":"Low match. Consider reformatting your resume to highlight relevant skills."}`
	if string(data) != expected {
		t.Fatalf("unexpected json: %s", data)
	}
}

func TestVocabularyIsImmutable(t *testing.T) {
	terms := []string{"go", "rust"}
	vocabulary := NewVocabulary(terms...)
	terms[0] = "cobol"

	got := vocabulary.Terms()
	got[1] = "perl"

	if !reflect.DeepEqual(vocabulary.Terms(), []string{"go", "rust"}) {
		t.Fatalf("vocabulary changed: %v", vocabulary.Terms())
	}
	if !vocabulary.Contains("go") || vocabulary.Contains("cobol") {
		t.Fatalf("unexpected Contains result")
	}
	if DefaultVocabulary().Len() != 38 {
		t.Fatalf("expected 38 default terms, got %d", DefaultVocabulary().Len())
	}
}

func TestLoadVocabulary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		expect  []string
		wantErr bool
	}{
		{
			name:    "yaml mapping",
			content: "terms:\n  - Python\n  - ' SQL '\n  - ''\n",
			expect:  []string{"python", "sql"},
		},
		{
			name:    "yaml list",
			content: "- go\n- rust\n",
			expect:  []string{"go", "rust"},
		},
		{
			name:    "json list",
			content: `["react", "vue"]`,
			expect:  []string{"react", "vue"},
		},
		{
			name:    "json object",
			content: `{"terms": ["docker"]}`,
			expect:  []string{"docker"},
		},
		{
			name:    "empty file",
			content: "",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			content: "terms: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "vocabulary.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("writing file: %v", err)
			}

			vocabulary, err := LoadVocabulary(path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got vocabulary %v", vocabulary.Terms())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(vocabulary.Terms(), tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, vocabulary.Terms())
			}
		})
	}
}

func TestLoadVocabularyMissingFile(t *testing.T) {
	if _, err := LoadVocabulary(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got := Normalize([]string{" Python ", "", "SQL", "  ", "sql"})
	if !reflect.DeepEqual(got, SkillSet{"Python", "SQL", "sql"}) {
		t.Fatalf("unexpected result: %v", got)
	}

	if got := Normalize(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil set, got %#v", got)
	}
}

func TestAnalyzeKeepsCandidateCase(t *testing.T) {
	t.Parallel()

	result := Analyze("react and node.js", Normalize([]string{"React", " Node.js "}), DefaultVocabulary())
	if !reflect.DeepEqual(result.MatchedSkills, SkillSet{"React", "Node.js"}) {
		t.Fatalf("expected caller spelling in matched skills, got %v", result.MatchedSkills)
	}
	if result.Score != 100 {
		t.Fatalf("expected score 100, got %d", result.Score)
	}
}
