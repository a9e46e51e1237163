package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"vidyalink/app/internal/store"
)

type payload struct {
	Value string `json:"value"`
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func countingFetch(result payload, err error) (func(context.Context) (payload, error), *int) {
	calls := 0
	return func(context.Context) (payload, error) {
		calls++
		if err != nil {
			return payload{}, err
		}
		return result, nil
	}, &calls
}

func TestLoadFetchesOnceWithinTTL(t *testing.T) {
	ctx := context.Background()
	l := NewLoader(store.NewMemory(), zerolog.Nop())
	fetch, calls := countingFetch(payload{Value: "dashboard"}, nil)

	for i := 0; i < 2; i++ {
		got, err := Load(ctx, l, Key("dashboard", "12345"), time.Hour, false, fetch)
		if err != nil {
			t.Fatalf("Load %d: %v", i, err)
		}
		if got.Value != "dashboard" {
			t.Fatalf("Load %d: unexpected payload %+v", i, got)
		}
	}
	if *calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", *calls)
	}
}

func TestLoadRefetchesAfterTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	l := NewLoader(store.NewMemory(), zerolog.Nop(), WithClock(fixedClock(now)))
	fetch, calls := countingFetch(payload{Value: "v"}, nil)

	if _, err := Load(ctx, l, "k", time.Hour, false, fetch); err != nil {
		t.Fatalf("first Load: %v", err)
	}

	l.now = fixedClock(now.Add(2 * time.Hour))
	if _, err := Load(ctx, l, "k", time.Hour, false, fetch); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if *calls != 2 {
		t.Fatalf("expected refetch after expiry, got %d calls", *calls)
	}
}

func TestLoadForceRefreshAlwaysFetches(t *testing.T) {
	ctx := context.Background()
	l := NewLoader(store.NewMemory(), zerolog.Nop())
	fetch, calls := countingFetch(payload{Value: "v"}, nil)

	for i := 0; i < 3; i++ {
		if _, err := Load(ctx, l, "k", time.Hour, true, fetch); err != nil {
			t.Fatalf("Load %d: %v", i, err)
		}
	}
	if *calls != 3 {
		t.Fatalf("forceRefresh should fetch every time, got %d calls", *calls)
	}
}

func TestLoadFailurePreservesCache(t *testing.T) {
	ctx := context.Background()
	l := NewLoader(store.NewMemory(), zerolog.Nop())

	seed, _ := countingFetch(payload{Value: "fresh"}, nil)
	if _, err := Load(ctx, l, "k", time.Hour, false, seed); err != nil {
		t.Fatalf("seed Load: %v", err)
	}

	boom := errors.New("backend down")
	failing, _ := countingFetch(payload{}, boom)
	if _, err := Load(ctx, l, "k", time.Hour, true, failing); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}

	// The failed forced refresh must not have clobbered the entry.
	got, err := Load(ctx, l, "k", time.Hour, false, failing)
	if err != nil {
		t.Fatalf("Load after failure: %v", err)
	}
	if got.Value != "fresh" {
		t.Fatalf("expected preserved cache entry, got %+v", got)
	}
}

func TestLoadCorruptEntryRefetches(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	if err := mem.Set(ctx, "k", []byte("not json")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	l := NewLoader(mem, zerolog.Nop())
	fetch, calls := countingFetch(payload{Value: "v"}, nil)

	if _, err := Load(ctx, l, "k", time.Hour, false, fetch); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("corrupt entry should trigger fetch, got %d calls", *calls)
	}
}

func TestKeyNamespacing(t *testing.T) {
	if got := Key("dashboard", "12345"); got != "dashboardCache_12345" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := Key("announcements", ""); got != "announcementsCache_default" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestLoadDatedHitSkipsFetch(t *testing.T) {
	ctx := context.Background()
	l := NewLoader(store.NewMemory(), zerolog.Nop())
	calls := 0
	fetch := func(context.Context) ([]payload, error) {
		calls++
		return []payload{{Value: "homework"}}, nil
	}

	if _, err := LoadDated(ctx, l, "diary", "2024-03-01", 15, false, fetch); err != nil {
		t.Fatalf("first LoadDated: %v", err)
	}
	got, err := LoadDated(ctx, l, "diary", "2024-03-01", 15, false, fetch)
	if err != nil {
		t.Fatalf("second LoadDated: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cached date to skip fetch, got %d calls", calls)
	}
	if len(got) != 1 || got[0].Value != "homework" {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestLoadDatedPrunesOldDates(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	today := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewLoader(mem, zerolog.Nop(), WithClock(fixedClock(today)))

	seeded := map[string]json.RawMessage{
		"2024-01-01": json.RawMessage(`[{"value":"old"}]`),
		"2024-03-01": json.RawMessage(`[{"value":"recent"}]`),
	}
	raw, _ := json.Marshal(seeded)
	if err := mem.Set(ctx, "diary", raw); err != nil {
		t.Fatalf("Set: %v", err)
	}

	fetch := func(context.Context) ([]payload, error) {
		return []payload{{Value: "today"}}, nil
	}
	if _, err := LoadDated(ctx, l, "diary", "2024-03-10", 15, false, fetch); err != nil {
		t.Fatalf("LoadDated: %v", err)
	}

	stored, err := mem.Get(ctx, "diary")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var byDate map[string]json.RawMessage
	if err := json.Unmarshal(stored, &byDate); err != nil {
		t.Fatalf("decode stored map: %v", err)
	}
	if _, ok := byDate["2024-01-01"]; ok {
		t.Fatal("entry older than 15 days should have been pruned")
	}
	if _, ok := byDate["2024-03-01"]; !ok {
		t.Fatal("entry within 15 days should have been retained")
	}
	if _, ok := byDate["2024-03-10"]; !ok {
		t.Fatal("fetched date should have been cached")
	}
}

func TestLoadDatedEmptyTodayNotCached(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	today := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	l := NewLoader(mem, zerolog.Nop(), WithClock(fixedClock(today)))

	fetch := func(context.Context) ([]payload, error) { return nil, nil }
	if _, err := LoadDated(ctx, l, "diary", "2024-03-10", 15, false, fetch); err != nil {
		t.Fatalf("LoadDated: %v", err)
	}
	if _, err := mem.Get(ctx, "diary"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("empty result for today must not be cached, got %v", err)
	}
}

func TestLoadDatedFetchFailure(t *testing.T) {
	ctx := context.Background()
	l := NewLoader(store.NewMemory(), zerolog.Nop())
	boom := errors.New("offline")
	fetch := func(context.Context) ([]payload, error) { return nil, boom }

	if _, err := LoadDated(ctx, l, "diary", "2024-03-09", 15, false, fetch); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}
