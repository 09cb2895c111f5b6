// Package store persists vault timelines in a SQL database.
//
// Events are stored once per id with their canonical JSON encoding, and read
// back in time order, then insertion order. Ledgers are never stored: they are
// rebuilt from the events on each read.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/pnl"
	"github.com/etnz/pnl/logger"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
    seq     INTEGER PRIMARY KEY AUTOINCREMENT,
    id      TEXT    NOT NULL UNIQUE,
    wallet  TEXT    NOT NULL,
    vault   TEXT    NOT NULL,
    time_ns INTEGER NOT NULL,
    command TEXT    NOT NULL,
    payload TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_key ON events(wallet, vault, time_ns, seq);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS events (
    seq     BIGSERIAL PRIMARY KEY,
    id      TEXT   NOT NULL UNIQUE,
    wallet  TEXT   NOT NULL,
    vault   TEXT   NOT NULL,
    time_ns BIGINT NOT NULL,
    command TEXT   NOT NULL,
    payload TEXT   NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_key ON events(wallet, vault, time_ns, seq);
`

// Key identifies a position: a wallet in a vault.
type Key struct {
	Wallet string `json:"wallet"`
	Vault  string `json:"vault"`
}

// NewKey returns the normalized key of a position. Addresses are case
// insensitive, so they are lowercased.
func NewKey(wallet, vault string) (Key, error) {
	k := Key{
		Wallet: strings.ToLower(strings.TrimSpace(wallet)),
		Vault:  strings.ToLower(strings.TrimSpace(vault)),
	}
	if k.Wallet == "" || k.Vault == "" {
		return Key{}, fmt.Errorf("invalid position %q/%q: wallet and vault are required", wallet, vault)
	}
	return k, nil
}

func (k Key) String() string { return k.Wallet + "/" + k.Vault }

// Store is a timeline database. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	driver string
	log    zerolog.Logger
}

// Open connects to the database and applies the schema.
// driver is "sqlite" (dsn is a file path or ":memory:") or "postgres".
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var schema string
	switch driver {
	case "sqlite":
		schema = sqliteSchema
	case "postgres":
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("store.Open: unknown driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store.Open: open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1) // single writer, and keeps a ":memory:" database alive
		db.SetMaxIdleConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.Open: ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.Open: apply schema: %w", err)
	}

	s := &Store{db: db, driver: driver, log: logger.For("store")}
	s.log.Debug().Str("driver", driver).Msg("store opened")
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// rebind turns "?" placeholders into the driver's syntax.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Append stores events for the position and returns how many were new.
// Events without an id get one; events whose id is already stored are
// skipped, so appending the same file twice is harmless. Either all events
// are stored or none.
func (s *Store) Append(ctx context.Context, key Key, events ...pnl.Event) (int, error) {
	// validates, and derives the missing ids from content
	tl, err := pnl.NewTimeline(events...)
	if err != nil {
		return 0, fmt.Errorf("store.Append: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store.Append: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO events (id, wallet, vault, time_ns, command, payload) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`))
	if err != nil {
		return 0, fmt.Errorf("store.Append: prepare: %w", err)
	}
	defer stmt.Close()

	added := 0
	for e := range tl.Events() {
		payload, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("store.Append: encode %s: %w", e.ID, err)
		}
		res, err := stmt.ExecContext(ctx, e.ID, key.Wallet, key.Vault, e.Time.UnixNano(), string(e.Command), string(payload))
		if err != nil {
			return 0, fmt.Errorf("store.Append: insert %s: %w", e.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store.Append: commit: %w", err)
	}

	s.log.Info().Stringer("position", key).Int("events", len(events)).Int("added", added).Msg("events appended")
	return added, nil
}

// Timeline returns the timeline of the position, empty if it has no events.
func (s *Store) Timeline(ctx context.Context, key Key) (*pnl.Timeline, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, payload FROM events WHERE wallet = ? AND vault = ? ORDER BY time_ns, seq`),
		key.Wallet, key.Vault)
	if err != nil {
		return nil, fmt.Errorf("store.Timeline %s: query: %w", key, err)
	}
	defer rows.Close()

	var events []pnl.Event
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("store.Timeline %s: scan: %w", key, err)
		}
		e, err := pnl.DecodeEvent([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("store.Timeline %s: event %s: %w", key, id, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store.Timeline %s: %w", key, err)
	}
	return pnl.NewTimeline(events...)
}

// Keys returns every stored position, sorted.
func (s *Store) Keys(ctx context.Context) ([]Key, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT wallet, vault FROM events ORDER BY wallet, vault`)
	if err != nil {
		return nil, fmt.Errorf("store.Keys: query: %w", err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.Wallet, &k.Vault); err != nil {
			return nil, fmt.Errorf("store.Keys: scan: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Delete removes every event of the position and returns how many there were.
func (s *Store) Delete(ctx context.Context, key Key) (int, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM events WHERE wallet = ? AND vault = ?`), key.Wallet, key.Vault)
	if err != nil {
		return 0, fmt.Errorf("store.Delete %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store.Delete %s: rows affected: %w", key, err)
	}
	return int(n), nil
}
