package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kindseek/leadscout/internal/model"
	"github.com/kindseek/leadscout/internal/scorer"
	"github.com/kindseek/leadscout/internal/store"
)

// RescoreResult summarizes a rescore pass over the tracked leads.
type RescoreResult struct {
	Total   int
	Changed int
}

// Rescore re-evaluates every tracked lead against the current ruleset and
// rewrites score and tier where they moved. Status, owner and notes are
// untouched.
func Rescore(ctx context.Context, st store.Store, sc scorer.Scorer, maxParallel int, dryRun bool) (RescoreResult, error) {
	if maxParallel <= 0 {
		maxParallel = 1
	}

	known, err := st.KnownLeads(ctx)
	if err != nil {
		return RescoreResult{}, err
	}

	type change struct {
		id       string
		score    int
		priority model.Priority
	}
	changes := make([]*change, len(known))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i := range known {
		g.Go(func() error {
			eval, err := sc.Evaluate(gctx, known[i].RawLead)
			if err != nil {
				return err
			}
			if eval.Score != known[i].Score || eval.Priority != known[i].Priority {
				changes[i] = &change{id: known[i].ID, score: eval.Score, priority: eval.Priority}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RescoreResult{}, err
	}

	res := RescoreResult{Total: len(known)}
	for _, c := range changes {
		if c == nil {
			continue
		}
		res.Changed++
		if dryRun {
			continue
		}
		if err := st.UpdateScore(ctx, c.id, c.score, c.priority); err != nil {
			return res, err
		}
	}

	zap.L().Info("pipeline: rescore complete",
		zap.Int("total", res.Total),
		zap.Int("changed", res.Changed),
		zap.Bool("dry_run", dryRun),
	)
	return res, nil
}
