package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestAddRejectsBadSchedule(t *testing.T) {
	r := NewRefresher(zerolog.Nop())
	err := r.Add("not a schedule", Task{Name: "noop", Run: func(context.Context) error { return nil }})
	if err == nil {
		t.Fatal("expected schedule parse error")
	}
}

func TestRefresherRunsScheduledTask(t *testing.T) {
	r := NewRefresher(zerolog.Nop())
	ran := make(chan struct{}, 1)

	err := r.Add("* * * * * *", Task{Name: "tick", Run: func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	r.Start()
	defer r.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("task did not run within the schedule window")
	}
}
