package presentation

import (
	"testing"

	"github.com/spigell/skill-matcher/internal/skills"
)

func TestDisplayScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score    int
		category string
		style    string
	}{
		{score: 250, category: "high", style: "success"},
		{score: 70, category: "high", style: "success"},
		{score: 69, category: "medium", style: "warning"},
		{score: 40, category: "medium", style: "warning"},
		{score: 39, category: "low", style: "danger"},
		{score: 0, category: "low", style: "danger"},
		{score: -5, category: "low", style: "danger"},
	}

	scale := DisplayScale()
	for _, tt := range tests {
		band := scale.Classify(tt.score)
		if band.Category != tt.category || band.Style != tt.style {
			t.Fatalf("score %d: expected %s/%s, got %s/%s", tt.score, tt.category, tt.style, band.Category, band.Style)
		}
	}
}

func TestBadgeScaleUsesOwnThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score  int
		expect string
	}{
		{score: 85, expect: `<span class="badge bg-success">Excellent (85%)</span>`},
		{score: 80, expect: `<span class="badge bg-success">Excellent (80%)</span>`},
		{score: 75, expect: `<span class="badge bg-warning">Good (75%)</span>`},
		{score: 60, expect: `<span class="badge bg-warning">Good (60%)</span>`},
		{score: 45, expect: `<span class="badge bg-info">Fair (45%)</span>`},
		{score: 12, expect: `<span class="badge bg-danger">Poor (12%)</span>`},
	}

	scale := BadgeScale()
	for _, tt := range tests {
		if got := scale.RenderBadge(tt.score); got != tt.expect {
			t.Fatalf("score %d: expected %q, got %q", tt.score, tt.expect, got)
		}
	}

	// 75 is "high" on the display scale but only "Good" on the badge scale.
	if DisplayScale().Classify(75).Category != "high" {
		t.Fatalf("expected display scale to treat 75 as high")
	}
}

func TestNewScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bands   []Band
		wantErr bool
	}{
		{name: "empty", bands: nil, wantErr: true},
		{name: "no floor", bands: []Band{{Min: 50}, {Min: 10}}, wantErr: true},
		{name: "duplicate", bands: []Band{{Min: 50}, {Min: 50}, {Min: 0}}, wantErr: true},
		{name: "unsorted input", bands: []Band{{Min: 0, Category: "low"}, {Min: 90, Category: "top"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			scale, err := NewScale("custom", tt.bands)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if scale.Bands()[0].Category != "top" {
				t.Fatalf("expected bands sorted highest first, got %+v", scale.Bands())
			}
			if scale.Classify(95).Category != "top" || scale.Classify(89).Category != "low" {
				t.Fatalf("unexpected classification for custom scale")
			}
		})
	}
}

func TestScaleOrDefault(t *testing.T) {
	def := BadgeScale()

	scale, err := ScaleOrDefault(BadgeScaleName, nil, def)
	if err != nil || scale != def {
		t.Fatalf("expected default scale, got %v (%v)", scale, err)
	}

	scale, err = ScaleOrDefault(BadgeScaleName, []Band{{Min: 0, Category: "any", Style: "bg-dark"}}, def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scale.Classify(99).Category != "any" {
		t.Fatalf("expected configured scale to be used")
	}

	if _, err := ScaleOrDefault(BadgeScaleName, nil, nil); err == nil {
		t.Fatalf("expected error without default")
	}
}

func TestNewView(t *testing.T) {
	result := skills.MatchResult{Score: 50, MissingSkills: skills.SkillSet{"aws"}}

	view := NewView(result, DisplayScale(), BadgeScale())

	if view.Category != "medium" || view.Style != "warning" {
		t.Fatalf("unexpected display band: %+v", view)
	}
	if view.Label != "Medium match - good potential" {
		t.Fatalf("unexpected label: %q", view.Label)
	}
	if view.Badge != `<span class="badge bg-info">Fair (50%)</span>` {
		t.Fatalf("unexpected badge: %q", view.Badge)
	}
	if view.MessageBox != "message-box warning" {
		t.Fatalf("unexpected message box class: %q", view.MessageBox)
	}

	if MessageBoxClass(0) != "message-box" {
		t.Fatalf("expected plain message box without missing skills")
	}
}
