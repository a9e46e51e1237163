package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "authToken", []byte("abc")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err := s.Get(ctx, "authToken")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(value, []byte("abc")) {
		t.Fatalf("unexpected value %q", value)
	}

	if err := s.Delete(ctx, "authToken"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "authToken"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryDeleteAbsentKey(t *testing.T) {
	if err := NewMemory().Delete(context.Background(), "never-set"); err != nil {
		t.Fatalf("deleting an absent key should succeed, got %v", err)
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	original := []byte("userData")
	if err := s.Set(ctx, "k", original); err != nil {
		t.Fatalf("Set: %v", err)
	}
	original[0] = 'X'

	value, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(value) != "userData" {
		t.Fatalf("stored value was aliased: %q", value)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "activeProfile", []byte(`{"access":"full"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "activeProfile", []byte(`{"access":"restricted"}`)); err != nil {
		t.Fatalf("overwrite Set: %v", err)
	}

	value, err := s.Get(ctx, "activeProfile")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(value) != `{"access":"restricted"}` {
		t.Fatalf("expected overwritten value, got %q", value)
	}

	if err := s.Delete(ctx, "activeProfile"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "activeProfile"); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Set(ctx, "authToken", []byte("persisted")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	value, err := reopened.Get(ctx, "authToken")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(value) != "persisted" {
		t.Fatalf("unexpected value after reopen: %q", value)
	}
}
