// Package source adapts public childcare registries into the common lead
// shape. Each adapter owns one registry's download format and column map.
package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/kindseek/leadscout/internal/config"
	"github.com/kindseek/leadscout/internal/fetcher"
	"github.com/kindseek/leadscout/internal/model"
)

// Source is one registry adapter. Fetch downloads the current dataset and
// returns it as raw leads; a failing source returns an error and the caller
// decides whether the batch continues.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.RawLead, error)
}

// Build instantiates the enabled source adapters.
func Build(cfg config.SourcesConfig, f fetcher.Fetcher) ([]Source, error) {
	sources := make([]Source, 0, len(cfg.Enabled))
	for _, name := range cfg.Enabled {
		switch name {
		case "ontario":
			sources = append(sources, NewOntario(f, cfg.Ontario.URL))
		case "bc":
			sources = append(sources, NewBC(f, cfg.BC.URL))
		case "acecqa":
			sources = append(sources, NewACECQA(f, cfg.ACECQA.URL))
		default:
			return nil, eris.Errorf("source: unknown source %q", name)
		}
	}
	return sources, nil
}
