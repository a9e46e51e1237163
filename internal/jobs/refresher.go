// Package jobs keeps screen caches warm while the sync daemon runs. Each
// tick forces a refresh; a failed tick is logged and waits for the next
// schedule, it is never retried early.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Refresher struct {
	cron    *cron.Cron
	log     zerolog.Logger
	timeout time.Duration
}

func NewRefresher(log zerolog.Logger) *Refresher {
	return &Refresher{
		cron:    cron.New(cron.WithSeconds()),
		log:     log,
		timeout: 30 * time.Second,
	}
}

func (r *Refresher) Add(schedule string, task Task) error {
	_, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		start := time.Now()
		if err := task.Run(ctx); err != nil {
			r.log.Warn().Err(err).Str("task", task.Name).Msg("cache refresh failed")
			return
		}
		r.log.Info().Str("task", task.Name).Dur("took", time.Since(start)).Msg("cache refreshed")
	})
	return err
}

func (r *Refresher) Start() { r.cron.Start() }

func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		r.log.Warn().Msg("refresh jobs did not stop in time")
	}
}
