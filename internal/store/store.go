// Package store persists tracked leads and run summaries. Two backends are
// provided: SQLite for single-operator setups and Postgres for shared ones.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/kindseek/leadscout/internal/model"
)

// Store defines the persistence interface for the lead tracker.
//
// The engine only ever fills data fields. Status, owner and notes belong to
// humans and no Store method written by the pipeline touches them after
// insert.
type Store interface {
	// KnownLeads returns the full tracked-lead snapshot for dedup matching.
	KnownLeads(ctx context.Context) ([]model.KnownLead, error)

	// InsertLead persists a NEW lead and returns its assigned ID.
	InsertLead(ctx context.Context, lead model.ProcessedLead) (string, error)

	// PatchLead refreshes the data fields of an existing lead from an
	// UPDATE decision.
	PatchLead(ctx context.Context, id string, lead model.ProcessedLead) error

	// UpdateScore rewrites only the score and tier of an existing lead.
	UpdateScore(ctx context.Context, id string, score int, priority model.Priority) error

	// Summaries
	SaveSummary(ctx context.Context, summary *model.BatchSummary) error
	LastSummary(ctx context.Context) (*model.BatchSummary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs a Store for the given driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
