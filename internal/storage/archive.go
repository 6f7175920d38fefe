package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Archiver mirrors confirmed transcript entries into Postgres for long-term
// keeping. It is optional and insert-only; the local view never reads from
// it, and failures are the caller's to log and drop.
type Archiver struct {
	db *sql.DB
}

// OpenArchive connects with the pgx stdlib driver.
func OpenArchive(dsn string) (*Archiver, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Archiver{db: db}, nil
}

// NewArchiver wraps an existing handle (tests use sqlmock here).
func NewArchiver(db *sql.DB) *Archiver {
	return &Archiver{db: db}
}

func (a *Archiver) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Store inserts one confirmed message.
func (a *Archiver) Store(ctx context.Context, scope string, rec Record) error {
	if a == nil || a.db == nil {
		return nil
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO messages (scope, msg_id, sender, content, image, sent_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		scope, rec.ID, rec.Sender, rec.Body, rec.Image, rec.Timestamp)
	return err
}
