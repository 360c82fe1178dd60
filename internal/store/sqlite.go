package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/kindseek/leadscout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	discovered_at  DATETIME NOT NULL,
	score          INTEGER NOT NULL DEFAULT 0,
	priority       TEXT NOT NULL DEFAULT 'low',
	status         TEXT NOT NULL DEFAULT 'uncontacted',
	owner          TEXT,
	notes          TEXT,
	last_updated   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS run_summaries (
	run_id  TEXT PRIMARY KEY,
	ran_at  DATETIME NOT NULL,
	payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_license_number ON leads(license_number);
CREATE INDEX IF NOT EXISTS idx_leads_region ON leads(region, country);
CREATE INDEX IF NOT EXISTS idx_leads_priority ON leads(priority);
CREATE INDEX IF NOT EXISTS idx_run_summaries_ran_at ON run_summaries(ran_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const leadColumns = `id, source_id, license_number, name, full_address, city, region, country,
	capacity, stage, contact_phone, contact_email, source_name, source_url, discovered_at,
	score, priority, status, owner, notes, last_updated`

func (s *SQLiteStore) KnownLeads(ctx context.Context) ([]model.KnownLead, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query leads")
	}
	defer rows.Close() //nolint:errcheck

	var leads []model.KnownLead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) InsertLead(ctx context.Context, lead model.ProcessedLead) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, source_id, license_number, name, full_address, city, region, country,
			capacity, stage, contact_phone, contact_email, source_name, source_url, discovered_at,
			score, priority, status, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, lead.SourceID, lead.LicenseNumber, lead.Name, lead.FullAddress, lead.City,
		lead.Region, string(lead.Country), capacityValue(lead.Capacity), string(lead.Stage),
		lead.ContactPhone, lead.ContactEmail, lead.SourceName, lead.SourceURL, lead.DiscoveredAt,
		lead.Score, string(lead.Priority), string(model.StatusUncontacted), now,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert lead")
	}
	return id, nil
}

func (s *SQLiteStore) PatchLead(ctx context.Context, id string, lead model.ProcessedLead) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET source_id = ?, license_number = ?, name = ?, full_address = ?, city = ?,
			region = ?, country = ?, capacity = ?, stage = ?, contact_phone = ?, contact_email = ?,
			source_name = ?, source_url = ?, score = ?, priority = ?, last_updated = ?
		 WHERE id = ?`,
		lead.SourceID, lead.LicenseNumber, lead.Name, lead.FullAddress, lead.City,
		lead.Region, string(lead.Country), capacityValue(lead.Capacity), string(lead.Stage),
		lead.ContactPhone, lead.ContactEmail, lead.SourceName, lead.SourceURL,
		lead.Score, string(lead.Priority), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: patch lead %s", id)
	}
	return checkRowsAffected(res, "lead", id)
}

func (s *SQLiteStore) UpdateScore(ctx context.Context, id string, score int, priority model.Priority) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET score = ?, priority = ?, last_updated = ? WHERE id = ?`,
		score, string(priority), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update score %s", id)
	}
	return checkRowsAffected(res, "lead", id)
}

func (s *SQLiteStore) SaveSummary(ctx context.Context, summary *model.BatchSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_summaries (run_id, ran_at, payload) VALUES (?, ?, ?)`,
		summary.RunID, summary.RanAt, string(payload),
	)
	return eris.Wrap(err, "sqlite: insert summary")
}

func (s *SQLiteStore) LastSummary(ctx context.Context) (*model.BatchSummary, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM run_summaries ORDER BY ran_at DESC LIMIT 1`,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query last summary")
	}

	var summary model.BatchSummary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal summary")
	}
	return &summary, nil
}

// scanLead scans one leads row into a KnownLead.
func scanLead(rows *sql.Rows) (model.KnownLead, error) {
	var (
		lead     model.KnownLead
		capacity sql.NullInt64
		owner    sql.NullString
		notes    sql.NullString
		country  string
		stage    string
		priority string
		status   string
	)
	err := rows.Scan(
		&lead.ID, &lead.SourceID, &lead.LicenseNumber, &lead.Name, &lead.FullAddress,
		&lead.City, &lead.Region, &country, &capacity, &stage,
		&lead.ContactPhone, &lead.ContactEmail, &lead.SourceName, &lead.SourceURL,
		&lead.DiscoveredAt, &lead.Score, &priority, &status, &owner, &notes, &lead.LastUpdated,
	)
	if err != nil {
		return model.KnownLead{}, eris.Wrap(err, "sqlite: scan lead")
	}

	lead.Country = model.Country(country)
	lead.Stage = model.Stage(stage)
	lead.Priority = model.Priority(priority)
	lead.Status = model.Status(status)
	if capacity.Valid {
		n := int(capacity.Int64)
		lead.Capacity = &n
	}
	lead.Owner = owner.String
	lead.Notes = notes.String
	return lead, nil
}

func capacityValue(capacity *int) any {
	if capacity == nil {
		return nil
	}
	return *capacity
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s %s not found", kind, id)
	}
	return nil
}
