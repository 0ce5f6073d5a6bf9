// Package sqlite provides a SQLite-backed event store. The events table is
// append-only: corrections arrive as further events (disposal reversions),
// never as updates.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"sharepool/sharepooling"
)

type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(asset_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_events_asset
		ON events(asset_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Append(ctx context.Context, assetID string, events []sharepooling.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int64
	row := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM events WHERE asset_id = ?`, assetID)
	if err := row.Scan(&next); err != nil {
		return fmt.Errorf("failed to read event sequence: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, e := range events {
		payload, err := sharepooling.EncodeEvent(e)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO events (id, asset_id, seq, event_type, payload, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			ulid.Make().String(), assetID, next+int64(i), e.EventType(), string(payload), now)
		if err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) Load(ctx context.Context, assetID string) ([]sharepooling.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_type, payload FROM events WHERE asset_id = ? ORDER BY seq`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	defer rows.Close()

	var events []sharepooling.Event
	for rows.Next() {
		var eventType, payload string
		if err := rows.Scan(&eventType, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e, err := sharepooling.DecodeEvent(eventType, []byte(payload))
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
