// Package pipeline orchestrates one batch run: fetch, validate, dedup,
// score, persist, deliver.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kindseek/leadscout/internal/dedup"
	"github.com/kindseek/leadscout/internal/model"
	"github.com/kindseek/leadscout/internal/scorer"
	"github.com/kindseek/leadscout/internal/source"
	"github.com/kindseek/leadscout/internal/store"
)

// Sink receives the processed batch after persistence. Sink failures are
// logged and do not fail the run; the data is already saved.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, leads []model.ProcessedLead, summary *model.BatchSummary) error
}

// Options tunes a Pipeline.
type Options struct {
	MaxScoreParallel int  // concurrent scoring calls, AI path
	DryRun           bool // skip all writes
}

// Pipeline wires the batch stages together.
type Pipeline struct {
	sources []source.Source
	store   store.Store
	dedup   *dedup.Deduplicator
	scorer  scorer.Scorer
	sinks   []Sink
	opts    Options
}

// New creates a Pipeline.
func New(sources []source.Source, st store.Store, d *dedup.Deduplicator, sc scorer.Scorer, sinks []Sink, opts Options) *Pipeline {
	if opts.MaxScoreParallel <= 0 {
		opts.MaxScoreParallel = 1
	}
	return &Pipeline{
		sources: sources,
		store:   st,
		dedup:   d,
		scorer:  sc,
		sinks:   sinks,
		opts:    opts,
	}
}

// Run executes one full batch and returns its summary. A run fails only on
// infrastructure errors (store unreachable); individual source failures and
// scoring degradations are recorded in the summary instead.
func (p *Pipeline) Run(ctx context.Context) (*model.BatchSummary, error) {
	summary := model.NewBatchSummary(uuid.New().String(), time.Now().UTC())
	start := time.Now()

	zap.L().Info("pipeline: run starting",
		zap.String("run_id", summary.RunID),
		zap.Int("sources", len(p.sources)),
		zap.Bool("dry_run", p.opts.DryRun),
	)

	raw := p.fetchAll(ctx, summary)

	valid, rejected := partition(raw)
	summary.Rejected = rejected

	known, err := p.store.KnownLeads(ctx)
	if err != nil {
		return nil, err
	}
	knownByID := make(map[string]model.KnownLead, len(known))
	for _, k := range known {
		knownByID[k.ID] = k
	}

	result := p.dedup.Deduplicate(valid, known)

	// Updates are completed from the matched record before scoring so the
	// score reflects the merged view.
	for i := range result.Leads {
		lead := &result.Leads[i]
		if lead.Decision == model.DecisionUpdate {
			if k, ok := knownByID[lead.MatchedID]; ok {
				dedup.MergeFromKnown(lead, k)
			}
		}
	}

	if err := p.scoreAll(ctx, result.Leads); err != nil {
		return nil, err
	}

	if err := p.persist(ctx, result.Leads); err != nil {
		return nil, err
	}

	for i := range result.Leads {
		summary.Record(result.Leads[i])
	}

	p.deliver(ctx, result.Leads, summary)

	if !p.opts.DryRun {
		if err := p.store.SaveSummary(ctx, summary); err != nil {
			return nil, err
		}
	}

	zap.L().Info("pipeline: run complete",
		zap.String("run_id", summary.RunID),
		zap.Int("new", summary.New),
		zap.Int("updated", summary.Updated),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("rejected", summary.Rejected),
		zap.Int("degraded", summary.Degraded),
		zap.Duration("elapsed", time.Since(start)),
	)
	return summary, nil
}

// fetchAll runs every source concurrently. A failing source contributes an
// error entry to the summary and an empty slice to the batch.
func (p *Pipeline) fetchAll(ctx context.Context, summary *model.BatchSummary) []model.RawLead {
	var (
		mu      sync.Mutex
		g, gctx = errgroup.WithContext(ctx)
	)
	batches := make([][]model.RawLead, len(p.sources))
	statuses := make([]model.SourceStatus, len(p.sources))

	for i, src := range p.sources {
		g.Go(func() error {
			leads, err := src.Fetch(gctx)
			mu.Lock()
			defer mu.Unlock()
			statuses[i] = model.SourceStatus{Name: src.Name(), Fetched: len(leads)}
			if err != nil {
				statuses[i].Error = err.Error()
				zap.L().Error("pipeline: source failed",
					zap.String("source", src.Name()),
					zap.Error(err),
				)
				return nil
			}
			batches[i] = leads
			return nil
		})
	}
	_ = g.Wait()

	summary.Sources = statuses

	var raw []model.RawLead
	for _, b := range batches {
		raw = append(raw, b...)
	}
	return raw
}

// partition splits a batch into valid leads and a rejected count. Rejected
// leads never reach deduplication.
func partition(raw []model.RawLead) ([]model.RawLead, int) {
	valid := make([]model.RawLead, 0, len(raw))
	rejected := 0
	for _, lead := range raw {
		if err := lead.Validate(); err != nil {
			rejected++
			zap.L().Debug("pipeline: lead rejected",
				zap.String("source", lead.SourceName),
				zap.Error(err),
			)
			continue
		}
		valid = append(valid, lead)
	}
	return valid, rejected
}

// scoreAll evaluates every non-duplicate lead, bounded by MaxScoreParallel.
func (p *Pipeline) scoreAll(ctx context.Context, leads []model.ProcessedLead) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxScoreParallel)

	for i := range leads {
		if leads[i].Decision == model.DecisionDuplicateSkipped {
			continue
		}
		g.Go(func() error {
			eval, err := p.scorer.Evaluate(gctx, leads[i].RawLead)
			if err != nil {
				return eris.Wrapf(err, "pipeline: score %s", leads[i].Name)
			}
			leads[i].Score = eval.Score
			leads[i].Priority = eval.Priority
			leads[i].ScoringMethod = eval.Method
			leads[i].ScoringDegraded = eval.Degraded
			leads[i].Rationale = eval.Rationale
			return nil
		})
	}
	return g.Wait()
}

// persist writes NEW and UPDATE decisions to the store.
func (p *Pipeline) persist(ctx context.Context, leads []model.ProcessedLead) error {
	if p.opts.DryRun {
		zap.L().Info("pipeline: dry run, skipping persistence")
		return nil
	}
	for i := range leads {
		switch leads[i].Decision {
		case model.DecisionNew:
			id, err := p.store.InsertLead(ctx, leads[i])
			if err != nil {
				return err
			}
			leads[i].MatchedID = id
		case model.DecisionUpdate:
			if err := p.store.PatchLead(ctx, leads[i].MatchedID, leads[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// deliver pushes the batch to every sink. Sinks are independent; one failing
// never blocks another.
func (p *Pipeline) deliver(ctx context.Context, leads []model.ProcessedLead, summary *model.BatchSummary) {
	if p.opts.DryRun {
		return
	}
	for _, sink := range p.sinks {
		if err := sink.Deliver(ctx, leads, summary); err != nil {
			zap.L().Error("pipeline: sink failed",
				zap.String("sink", sink.Name()),
				zap.Error(err),
			)
		}
	}
}
