// Package cache implements the cache-then-fetch pattern once, for every
// screen: return a fresh local copy when one exists, otherwise fetch and
// repopulate. Entries persist in the durable store as {timestamp, data}.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"vidyalink/app/internal/store"
)

const DefaultTTL = 24 * time.Hour

// Key builds a "<kind>Cache_<id>" key; user-scoped kinds pass the roll
// number so a profile switch never reads another student's data.
func Key(kind, id string) string {
	if id == "" {
		id = "default"
	}
	return kind + "Cache_" + id
}

type entry struct {
	Timestamp int64           `json:"timestamp"` // unix milliseconds
	Data      json.RawMessage `json:"data"`
}

type Loader struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

type Option func(*Loader)

// WithClock overrides the loader's clock. Tests only.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

func NewLoader(s store.Store, log zerolog.Logger, opts ...Option) *Loader {
	l := &Loader{store: s, log: log, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the cached payload for key when younger than ttl, else runs
// fetch and overwrites the entry. A fetch failure propagates untouched and
// leaves any prior entry in place for the next non-forced call. Corrupt or
// unreadable cache entries count as misses, never as errors.
func Load[T any](ctx context.Context, l *Loader, key string, ttl time.Duration, force bool, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if !force {
		if payload, ok := l.freshEntry(ctx, key, ttl); ok {
			var cached T
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
			l.log.Warn().Str("key", key).Msg("cache entry undecodable, refetching")
		}
	}

	data, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	l.writeEntry(ctx, key, data)
	return data, nil
}

func (l *Loader) freshEntry(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool) {
	raw, err := l.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return nil, false
	}
	age := l.now().UnixMilli() - e.Timestamp
	if age < 0 || age >= ttl.Milliseconds() {
		return nil, false
	}
	return e.Data, true
}

func (l *Loader) writeEntry(ctx context.Context, key string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	raw, err := json.Marshal(entry{Timestamp: l.now().UnixMilli(), Data: payload})
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	// A write failure costs a refetch later, never the current result.
	if err := l.store.Set(ctx, key, raw); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Invalidate drops one entry. Mutating calls use it to force the next read
// back to the network.
func (l *Loader) Invalidate(ctx context.Context, key string) error {
	return l.store.Delete(ctx, key)
}
