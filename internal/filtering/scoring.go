package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/skill-matcher/internal/logger"
	"github.com/spigell/skill-matcher/internal/postings"
	"github.com/spigell/skill-matcher/internal/skills"
)

const defaultWorkers = 4

type scoringFilter struct {
	toggle
	workers int
}

// NewScoring creates the step that attaches a match result to every posting.
func NewScoring() Filter {
	return &scoringFilter{}
}

func (f *scoringFilter) Name() string { return "scoring" }

func (f *scoringFilter) Validate(cfg *Config) error {
	f.workers = defaultWorkers
	if cfg != nil && cfg.Workers != 0 {
		if cfg.Workers < 0 {
			return fmt.Errorf("workers must be positive, got %d", cfg.Workers)
		}
		f.workers = cfg.Workers
	}
	return nil
}

func (f *scoringFilter) Apply(ctx context.Context, deps Deps, p *postings.Postings) (*postings.Postings, Step, error) {
	initial := p.Len()
	if deps.Candidate == nil {
		return p, Step{}, fmt.Errorf("candidate skills are required")
	}

	vocabulary := deps.Vocabulary
	if vocabulary == nil {
		vocabulary = skills.DefaultVocabulary()
	}

	workers := f.workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, posting := range p.Items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result := skills.Analyze(posting.Description, deps.Candidate, vocabulary)
			posting.Match = &result

			deps.Logger.Debug("posting scored",
				append(logger.AnalysisFields(result), zap.String("posting_id", posting.ID))...,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return p, Step{}, fmt.Errorf("scoring postings: %w", err)
	}

	return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
}

func (f *scoringFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"workers": strconv.Itoa(f.workers)},
	}
}
