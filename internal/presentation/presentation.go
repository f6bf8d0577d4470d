// Package presentation maps match scores onto the score bands used by the front ends.
//
// The result panel and the badge helper use different cut-offs. They are kept as
// separate scales and are never merged.
package presentation

import (
	"errors"
	"fmt"
	"html"
	"sort"

	"github.com/spigell/skill-matcher/internal/skills"
)

const (
	DisplayScaleName = "display"
	BadgeScaleName   = "badge"

	messageBoxClass        = "message-box"
	messageBoxWarningClass = "message-box warning"
)

// Band is one score range of a scale. A score belongs to the band with the
// highest Min that is less than or equal to it.
type Band struct {
	Min      int    `mapstructure:"min" json:"min"`
	Category string `mapstructure:"category" json:"category"`
	Style    string `mapstructure:"style" json:"style"`
	Label    string `mapstructure:"label" json:"label,omitempty"`
}

// Scale is an ordered set of bands.
type Scale struct {
	name  string
	bands []Band
}

// NewScale validates bands and returns a scale with bands sorted by Min, highest first.
func NewScale(name string, bands []Band) (*Scale, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("scale %q: at least one band is required", name)
	}

	sorted := make([]Band, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Min == sorted[i-1].Min {
			return nil, fmt.Errorf("scale %q: duplicate band minimum %d", name, sorted[i].Min)
		}
	}

	if sorted[len(sorted)-1].Min > 0 {
		return nil, fmt.Errorf("scale %q: lowest band must start at 0 or below, got %d", name, sorted[len(sorted)-1].Min)
	}

	return &Scale{name: name, bands: sorted}, nil
}

// DisplayScale returns the bands used by the result panel (70/40).
func DisplayScale() *Scale {
	return mustScale(DisplayScaleName, []Band{
		{Min: 70, Category: "high", Style: "success", Label: "High match - strong candidate"},
		{Min: 40, Category: "medium", Style: "warning", Label: "Medium match - good potential"},
		{Min: 0, Category: "low", Style: "danger", Label: "Low match - needs improvement"},
	})
}

// BadgeScale returns the bands used by the match badge helper (80/60/40).
func BadgeScale() *Scale {
	return mustScale(BadgeScaleName, []Band{
		{Min: 80, Category: "Excellent", Style: "bg-success"},
		{Min: 60, Category: "Good", Style: "bg-warning"},
		{Min: 40, Category: "Fair", Style: "bg-info"},
		{Min: 0, Category: "Poor", Style: "bg-danger"},
	})
}

func mustScale(name string, bands []Band) *Scale {
	scale, err := NewScale(name, bands)
	if err != nil {
		panic(err)
	}
	return scale
}

// ScaleOrDefault builds a scale from configured bands, falling back to def when none are configured.
func ScaleOrDefault(name string, bands []Band, def *Scale) (*Scale, error) {
	if len(bands) == 0 {
		if def == nil {
			return nil, errors.New("default scale is required")
		}
		return def, nil
	}
	return NewScale(name, bands)
}

func (s *Scale) Name() string { return s.name }

// Bands returns a copy of the bands, highest first.
func (s *Scale) Bands() []Band {
	out := make([]Band, len(s.bands))
	copy(out, s.bands)
	return out
}

// Classify returns the band the score falls into. Scores below the lowest
// minimum fall into the lowest band.
func (s *Scale) Classify(score int) Band {
	for _, band := range s.bands {
		if score >= band.Min {
			return band
		}
	}
	return s.bands[len(s.bands)-1]
}

// RenderBadge renders the score as a Bootstrap badge.
func (s *Scale) RenderBadge(score int) string {
	band := s.Classify(score)
	return fmt.Sprintf(`<span class="badge %s">%s (%d%%)</span>`,
		html.EscapeString(band.Style), html.EscapeString(band.Category), score)
}

// MessageBoxClass returns the CSS class of the message box for a result.
func MessageBoxClass(missingCount int) string {
	if missingCount > 0 {
		return messageBoxWarningClass
	}
	return messageBoxClass
}

// View is the presentation data sent alongside a match result.
type View struct {
	Category   string `json:"category"`
	Style      string `json:"style"`
	Label      string `json:"label"`
	Badge      string `json:"badge"`
	MessageBox string `json:"messageBox"`
}

// NewView classifies the result on both scales.
func NewView(result skills.MatchResult, display, badge *Scale) View {
	band := display.Classify(result.Score)
	return View{
		Category:   band.Category,
		Style:      band.Style,
		Label:      band.Label,
		Badge:      badge.RenderBadge(result.Score),
		MessageBox: MessageBoxClass(len(result.MissingSkills)),
	}
}
