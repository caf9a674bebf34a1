// Package cache provides the response cache used by the slideshare client,
// with TTL-based expiration and pluggable storage backends.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultTTL is how long an entry stays fresh when the writer does not
// override it.
const DefaultTTL = 12 * time.Hour

// Entry represents a cached entry with metadata
type Entry struct {
	FetchedAt time.Time       `json:"fetched_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	Body      json.RawMessage `json:"body"`
}

// Expired reports whether the entry is past its expiry at now.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// stamp fills in FetchedAt and ExpiresAt for a write.
func (e *Entry) stamp(now time.Time, ttl time.Duration) {
	e.FetchedAt = now
	e.ExpiresAt = now.Add(ttl)
}

// Reader defines the interface for reading cache entries
type Reader interface {
	// Read retrieves a fresh entry by key.
	// Returns the entry and true on a hit, nil and false on a miss or expiry.
	Read(ctx context.Context, key string) (*Entry, bool)
}

// Writer defines the interface for writing cache entries
type Writer interface {
	// Write stores an entry under key. A ttl <= 0 means the backend's own TTL.
	Write(ctx context.Context, key string, entry *Entry, ttl time.Duration) error
}

// Cache is the main interface that combines all cache operations
type Cache interface {
	Reader
	Writer
}

func effectiveTTL(ttl, fallback time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultTTL
}
