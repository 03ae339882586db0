package registry

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"boosterdraft/internal/draftmodel"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Summary is an index row: a lightweight projection of a draft's state,
// never authoritative over its snapshot file (spec §4.8). It exists so
// GET /api/drafts can list drafts without decoding every snapshot.
type Summary struct {
	ID             draftmodel.DraftID `json:"id"`
	Phase          draftmodel.Phase   `json:"phase"`
	SeatCount      int                `json:"seat_count"`
	MaxSeats       int                `json:"max_seats"`
	PacksRemaining int                `json:"packs_remaining"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// index is the SQLite-backed secondary cache of draft summaries.
type index struct {
	db *sql.DB
}

func openIndex(path string) (*index, error) {
	if err := runMigrations(path); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping index db: %w", err)
	}
	return &index{db: db}, nil
}

func runMigrations(path string) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("access embedded migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create source driver: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open db for migration: %w", err)
	}
	defer conn.Close()

	driver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (ix *index) close() error {
	return ix.db.Close()
}

// upsert writes (or overwrites) one draft's summary row.
func (ix *index) upsert(s Summary) error {
	_, err := ix.db.Exec(`
		INSERT INTO drafts (id, phase, seat_count, max_seats, packs_remaining, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			phase = excluded.phase,
			seat_count = excluded.seat_count,
			max_seats = excluded.max_seats,
			packs_remaining = excluded.packs_remaining,
			updated_at = excluded.updated_at`,
		string(s.ID), string(s.Phase), s.SeatCount, s.MaxSeats, s.PacksRemaining,
		s.CreatedAt.UTC().Format(time.RFC3339Nano), s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert draft %s: %w", s.ID, err)
	}
	return nil
}

// list returns every indexed draft, most recently updated first.
func (ix *index) list() ([]Summary, error) {
	rows, err := ix.db.Query(`SELECT id, phase, seat_count, max_seats, packs_remaining, created_at, updated_at FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query drafts: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var id, phase, created, updated string
		if err := rows.Scan(&id, &phase, &s.SeatCount, &s.MaxSeats, &s.PacksRemaining, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan draft row: %w", err)
		}
		s.ID = draftmodel.DraftID(id)
		s.Phase = draftmodel.Phase(phase)
		s.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		s.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, s)
	}
	return out, rows.Err()
}

// rebuild truncates and repopulates the index from the given summaries,
// used at startup once every snapshot has been loaded, so the index can
// never drift ahead of or independently of the snapshot directory.
func (ix *index) rebuild(summaries []Summary) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rebuild tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM drafts`); err != nil {
		return fmt.Errorf("clear drafts: %w", err)
	}
	for _, s := range summaries {
		if _, err := tx.Exec(`
			INSERT INTO drafts (id, phase, seat_count, max_seats, packs_remaining, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(s.ID), string(s.Phase), s.SeatCount, s.MaxSeats, s.PacksRemaining,
			s.CreatedAt.UTC().Format(time.RFC3339Nano), s.UpdatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert draft %s: %w", s.ID, err)
		}
	}
	return tx.Commit()
}
