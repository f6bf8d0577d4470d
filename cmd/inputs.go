package cmd

import (
	"fmt"

	"github.com/spigell/skill-matcher/internal/presentation"
	"github.com/spigell/skill-matcher/internal/skills"
)

// matchInputs are shared by every command that analyzes job descriptions.
type matchInputs struct {
	vocabulary *skills.Vocabulary
	candidate  skills.SkillSet
	display    *presentation.Scale
	badge      *presentation.Scale
}

func loadInputs(config *Config) (*matchInputs, error) {
	in := &matchInputs{
		vocabulary: skills.DefaultVocabulary(),
		candidate:  skills.DemoCandidateSkills(),
	}

	if file := config.Vocabulary.File; file != "" {
		vocabulary, err := skills.LoadVocabulary(file)
		if err != nil {
			return nil, fmt.Errorf("loading vocabulary: %w", err)
		}
		in.vocabulary = vocabulary
	}

	if requested := skills.Normalize(config.Candidate.Skills); len(requested) > 0 {
		in.candidate = requested
	}

	var err error
	in.display, err = presentation.ScaleOrDefault(presentation.DisplayScaleName, config.Presentation.Display, presentation.DisplayScale())
	if err != nil {
		return nil, fmt.Errorf("presentation.display: %w", err)
	}

	in.badge, err = presentation.ScaleOrDefault(presentation.BadgeScaleName, config.Presentation.Badge, presentation.BadgeScale())
	if err != nil {
		return nil, fmt.Errorf("presentation.badge: %w", err)
	}

	return in, nil
}

// withCandidate returns a copy that uses the given skills when any are set.
func (in *matchInputs) withCandidate(requested []string) *matchInputs {
	out := *in
	if normalized := skills.Normalize(requested); len(normalized) > 0 {
		out.candidate = normalized
	}
	return &out
}
