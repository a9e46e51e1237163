package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"vidyalink/app/internal/store"
)

const (
	// DateLayout is the calendar-date form the diary cache is keyed by.
	DateLayout = "2006-01-02"

	DefaultDiaryRetentionDays = 15
)

// LoadDated serves the diary variant: the cached payload is a map from
// calendar date to entries, a per-date hit needs no TTL check, and every
// successful fetch prunes dates older than retentionDays. An empty result
// for today is not cached, so an early-morning read does not pin an empty
// day for 24 hours.
func LoadDated[T any](ctx context.Context, l *Loader, key, date string, retentionDays int, force bool, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultDiaryRetentionDays
	}

	byDate := l.readDateMap(ctx, key)

	if !force {
		if raw, ok := byDate[date]; ok {
			var cached []T
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			l.log.Warn().Str("key", key).Str("date", date).Msg("diary cache entry undecodable, refetching")
		}
	}

	entries, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	today := l.now().Format(DateLayout)
	if date == today && len(entries) == 0 {
		return entries, nil
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("diary cache encode failed")
		return entries, nil
	}
	byDate[date] = payload
	l.pruneDates(byDate, retentionDays)

	raw, err := json.Marshal(byDate)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("diary cache encode failed")
		return entries, nil
	}
	if err := l.store.Set(ctx, key, raw); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("diary cache write failed")
	}
	return entries, nil
}

func (l *Loader) readDateMap(ctx context.Context, key string) map[string]json.RawMessage {
	byDate := make(map[string]json.RawMessage)
	raw, err := l.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.log.Warn().Err(err).Str("key", key).Msg("diary cache read failed")
		}
		return byDate
	}
	if err := json.Unmarshal(raw, &byDate); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("diary cache corrupt, starting over")
		return make(map[string]json.RawMessage)
	}
	return byDate
}

func (l *Loader) pruneDates(byDate map[string]json.RawMessage, retentionDays int) {
	now := l.now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -retentionDays)
	for date := range byDate {
		parsed, err := time.ParseInLocation(DateLayout, date, now.Location())
		if err != nil {
			delete(byDate, date)
			continue
		}
		if parsed.Before(cutoff) {
			delete(byDate, date)
		}
	}
}
