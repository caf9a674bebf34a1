package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createCacheTable = `
CREATE TABLE IF NOT EXISTS slideshare_cache (
	key        TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`

// PostgresCache stores entries in a slideshare_cache table.
type PostgresCache struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresCache opens a pool for databaseURL and creates the cache table
// if it does not exist.
func NewPostgresCache(ctx context.Context, databaseURL string, ttl time.Duration) (*PostgresCache, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createCacheTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	return &PostgresCache{pool: pool, ttl: effectiveTTL(ttl, DefaultTTL)}, nil
}

// Read implements Reader. Rows past expires_at are misses.
func (c *PostgresCache) Read(ctx context.Context, key string) (*Entry, bool) {
	var entry Entry
	err := c.pool.QueryRow(ctx,
		`SELECT body, fetched_at, expires_at FROM slideshare_cache WHERE key = $1 AND expires_at > now()`,
		key,
	).Scan(&entry.Body, &entry.FetchedAt, &entry.ExpiresAt)
	if err != nil {
		return nil, false
	}
	return &entry, true
}

// Write implements Writer with an upsert.
func (c *PostgresCache) Write(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	entry.stamp(time.Now(), effectiveTTL(ttl, c.ttl))

	_, err := c.pool.Exec(ctx, `
		INSERT INTO slideshare_cache (key, body, fetched_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET body = EXCLUDED.body, fetched_at = EXCLUDED.fetched_at, expires_at = EXCLUDED.expires_at`,
		key, []byte(entry.Body), entry.FetchedAt, entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed.
func (c *PostgresCache) Purge(ctx context.Context) (int64, error) {
	tag, err := c.pool.Exec(ctx, `DELETE FROM slideshare_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close releases the pool.
func (c *PostgresCache) Close() error {
	c.pool.Close()
	return nil
}

var _ Cache = (*PostgresCache)(nil)
