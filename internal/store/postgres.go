package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/kindseek/leadscout/internal/db"
	"github.com/kindseek/leadscout/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id             TEXT PRIMARY KEY,
	source_id      TEXT,
	license_number TEXT,
	name           TEXT NOT NULL,
	full_address   TEXT NOT NULL,
	city           TEXT,
	region         TEXT,
	country        TEXT NOT NULL,
	capacity       INTEGER,
	stage          TEXT NOT NULL,
	contact_phone  TEXT,
	contact_email  TEXT,
	source_name    TEXT NOT NULL,
	source_url     TEXT,
	discovered_at  TIMESTAMPTZ NOT NULL,
	score          INTEGER NOT NULL DEFAULT 0,
	priority       TEXT NOT NULL DEFAULT 'low',
	status         TEXT NOT NULL DEFAULT 'uncontacted',
	owner          TEXT,
	notes          TEXT,
	last_updated   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS run_summaries (
	run_id  TEXT PRIMARY KEY,
	ran_at  TIMESTAMPTZ NOT NULL,
	payload JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_license_number ON leads(license_number);
CREATE INDEX IF NOT EXISTS idx_leads_region ON leads(region, country);
CREATE INDEX IF NOT EXISTS idx_leads_priority ON leads(priority);
CREATE INDEX IF NOT EXISTS idx_run_summaries_ran_at ON run_summaries(ran_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) KnownLeads(ctx context.Context) ([]model.KnownLead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_id, license_number, name, full_address, city, region, country,
			capacity, stage, contact_phone, contact_email, source_name, source_url, discovered_at,
			score, priority, status, owner, notes, last_updated
		 FROM leads`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query leads")
	}
	defer rows.Close()

	var leads []model.KnownLead
	for rows.Next() {
		var (
			lead     model.KnownLead
			capacity *int
			owner    *string
			notes    *string
		)
		err := rows.Scan(
			&lead.ID, &lead.SourceID, &lead.LicenseNumber, &lead.Name, &lead.FullAddress,
			&lead.City, &lead.Region, &lead.Country, &capacity, &lead.Stage,
			&lead.ContactPhone, &lead.ContactEmail, &lead.SourceName, &lead.SourceURL,
			&lead.DiscoveredAt, &lead.Score, &lead.Priority, &lead.Status, &owner, &notes,
			&lead.LastUpdated,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		lead.Capacity = capacity
		if owner != nil {
			lead.Owner = *owner
		}
		if notes != nil {
			lead.Notes = *notes
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

func (s *PostgresStore) InsertLead(ctx context.Context, lead model.ProcessedLead) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, source_id, license_number, name, full_address, city, region, country,
			capacity, stage, contact_phone, contact_email, source_name, source_url, discovered_at,
			score, priority, status, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		id, lead.SourceID, lead.LicenseNumber, lead.Name, lead.FullAddress, lead.City,
		lead.Region, string(lead.Country), lead.Capacity, string(lead.Stage),
		lead.ContactPhone, lead.ContactEmail, lead.SourceName, lead.SourceURL, lead.DiscoveredAt,
		lead.Score, string(lead.Priority), string(model.StatusUncontacted), now,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert lead")
	}
	return id, nil
}

func (s *PostgresStore) PatchLead(ctx context.Context, id string, lead model.ProcessedLead) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET source_id = $1, license_number = $2, name = $3, full_address = $4,
			city = $5, region = $6, country = $7, capacity = $8, stage = $9, contact_phone = $10,
			contact_email = $11, source_name = $12, source_url = $13, score = $14, priority = $15,
			last_updated = $16
		 WHERE id = $17`,
		lead.SourceID, lead.LicenseNumber, lead.Name, lead.FullAddress, lead.City,
		lead.Region, string(lead.Country), lead.Capacity, string(lead.Stage),
		lead.ContactPhone, lead.ContactEmail, lead.SourceName, lead.SourceURL,
		lead.Score, string(lead.Priority), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: patch lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead %s not found", id)
	}
	return nil
}

func (s *PostgresStore) UpdateScore(ctx context.Context, id string, score int, priority model.Priority) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET score = $1, priority = $2, last_updated = $3 WHERE id = $4`,
		score, string(priority), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update score %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead %s not found", id)
	}
	return nil
}

func (s *PostgresStore) SaveSummary(ctx context.Context, summary *model.BatchSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO run_summaries (run_id, ran_at, payload) VALUES ($1, $2, $3)`,
		summary.RunID, summary.RanAt, payload,
	)
	return eris.Wrap(err, "postgres: insert summary")
}

func (s *PostgresStore) LastSummary(ctx context.Context) (*model.BatchSummary, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM run_summaries ORDER BY ran_at DESC LIMIT 1`,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query last summary")
	}

	var summary model.BatchSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal summary")
	}
	return &summary, nil
}
