package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pastebin-lite/pastebin-lite/models"
)

var _ PasteStore = (*PostgresStore)(nil)

// PostgresStore implements PasteStore on PostgreSQL via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const pastesSchema = `
CREATE TABLE IF NOT EXISTS pastes (
	id         VARCHAR(21) PRIMARY KEY,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NULL,
	max_views  INT NULL,
	view_count INT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_pastes_expires_at ON pastes (expires_at);
`

// NewPostgresStore connects to PostgreSQL and ensures the pastes table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, pastesSchema); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// Create inserts a new paste row.
func (p *PostgresStore) Create(ctx context.Context, paste *models.Paste) error {
	query := `
		INSERT INTO pastes (id, content, created_at, expires_at, max_views, view_count)
		VALUES ($1, $2, $3, $4, $5, 0)
	`
	_, err := p.pool.Exec(ctx, query,
		paste.ID, paste.Content, paste.CreatedAt, paste.ExpiresAt, paste.MaxViews)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// Get retrieves a paste row without side effects.
func (p *PostgresStore) Get(ctx context.Context, id string) (*models.Paste, error) {
	query := `
		SELECT id, content, created_at, expires_at, max_views, view_count
		FROM pastes
		WHERE id = $1
	`
	paste, err := scanPaste(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return paste, nil
}

// ConsumeView performs a conditional increment: the availability check is
// folded into the UPDATE's WHERE clause, so the row lock taken by the UPDATE
// serializes concurrent viewers of the same paste.
func (p *PostgresStore) ConsumeView(ctx context.Context, id string, now time.Time) (*models.Paste, error) {
	query := `
		UPDATE pastes
		SET view_count = view_count + 1
		WHERE id = $1
		  AND (expires_at IS NULL OR expires_at > $2)
		  AND (max_views IS NULL OR view_count < max_views)
		RETURNING id, content, created_at, expires_at, max_views, view_count
	`
	paste, err := scanPaste(p.pool.QueryRow(ctx, query, id, now))
	if err == nil {
		return paste, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Condition failed; re-read the row to classify why.
	existing, getErr := p.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if avail := models.CheckAvailability(existing, now); !avail.Available {
		if avail.Reason == models.ReasonExpired {
			return nil, ErrExpired
		}
		return nil, ErrViewLimit
	}
	return nil, ErrNotFound
}

// Delete removes a paste row; unknown ids are ignored.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM pastes WHERE id = $1`, id)
	return err
}

// PurgeExpired deletes rows whose expiry has passed, using the expires_at
// index.
func (p *PostgresStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM pastes WHERE expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Ping verifies the database connection.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func scanPaste(row pgx.Row) (*models.Paste, error) {
	var paste models.Paste
	err := row.Scan(
		&paste.ID,
		&paste.Content,
		&paste.CreatedAt,
		&paste.ExpiresAt,
		&paste.MaxViews,
		&paste.ViewCount,
	)
	if err != nil {
		return nil, err
	}
	return &paste, nil
}
