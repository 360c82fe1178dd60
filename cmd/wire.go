package main

import (
	"context"
	"time"

	"github.com/kindseek/leadscout/internal/dedup"
	"github.com/kindseek/leadscout/internal/fetcher"
	"github.com/kindseek/leadscout/internal/pipeline"
	"github.com/kindseek/leadscout/internal/scorer"
	"github.com/kindseek/leadscout/internal/source"
	"github.com/kindseek/leadscout/internal/store"
	"github.com/kindseek/leadscout/pkg/anthropic"
	"github.com/kindseek/leadscout/pkg/notify"
	"github.com/kindseek/leadscout/pkg/sheets"
)

func openStore(ctx context.Context) (store.Store, error) {
	dsn := cfg.Store.Path
	if cfg.Store.Driver == "postgres" {
		dsn = cfg.Store.DatabaseURL
	}
	st, err := store.Open(ctx, cfg.Store.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func buildScorer() (scorer.Scorer, error) {
	rs, err := scorer.Load(cfg.Scoring.RulesetPath)
	if err != nil {
		return nil, err
	}
	rules := scorer.NewRuleScorer(rs)
	if !cfg.Anthropic.Enabled {
		return rules, nil
	}

	client := anthropic.NewClient(cfg.Anthropic.Key)
	return scorer.NewClaudeScorer(client, scorer.ClaudeConfig{
		Model:   cfg.Anthropic.Model,
		Timeout: time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
	}, rules), nil
}

func buildSinks() []pipeline.Sink {
	var sinks []pipeline.Sink

	if cfg.Export.Enabled {
		sinks = append(sinks, sheets.NewExporter(cfg.Export.Path))
	}

	var notifiers []notify.Notifier
	if cfg.Notify.DingTalk.Enabled {
		notifiers = append(notifiers, notify.NewDingTalk(cfg.Notify.DingTalk.Webhook, cfg.Notify.DingTalk.Secret))
	}
	if cfg.Notify.PushPlus.Enabled {
		notifiers = append(notifiers, notify.NewPushPlus(cfg.Notify.PushPlus.Token, cfg.Notify.PushPlus.Topic))
	}
	if len(notifiers) > 0 {
		sinks = append(sinks, notify.NewManager(notifiers, notify.ManagerOptions{
			InstantAlerts:     cfg.Notify.InstantAlerts,
			MaxInstantPerHour: cfg.Notify.MaxInstantPerHour,
		}))
	}

	return sinks
}

func buildPipeline(st store.Store) (*pipeline.Pipeline, error) {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: cfg.Sources.UserAgent,
		Timeout:   time.Duration(cfg.Sources.TimeoutSecs) * time.Second,
	})
	sources, err := source.Build(cfg.Sources, f)
	if err != nil {
		return nil, err
	}

	sc, err := buildScorer()
	if err != nil {
		return nil, err
	}

	return pipeline.New(sources, st, dedup.New(cfg.Dedup), sc, buildSinks(), pipeline.Options{
		MaxScoreParallel: cfg.Anthropic.MaxParallel,
		DryRun:           cfg.DryRun,
	}), nil
}
