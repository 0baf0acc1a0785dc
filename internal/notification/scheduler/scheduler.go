// Package scheduler drives the recurring reminder fan-out. One cron entry per
// cadence; a tick that arrives while the previous run of the same cadence is
// still working is skipped instead of piling up.
package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/shandysiswandi/diarium/internal/notification/entity"
	"go.uber.org/atomic"
)

type remindDuer interface {
	RemindDue(ctx context.Context, cadence entity.Cadence) error
}

type Scheduler struct {
	cron    *cron.Cron
	uc      remindDuer
	running map[entity.Cadence]*atomic.Bool
}

func New(uc remindDuer) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		uc:      uc,
		running: make(map[entity.Cadence]*atomic.Bool),
	}

	for _, cadence := range entity.Cadences() {
		s.running[cadence] = atomic.NewBool(false)

		if _, err := s.cron.AddFunc(cadence.CronSpec(), s.tick(cadence)); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) tick(cadence entity.Cadence) func() {
	return func() {
		guard := s.running[cadence]
		if !guard.CompareAndSwap(false, true) {
			slog.Warn("previous reminder run still in flight, skipping tick", "cadence", cadence.String())
			return
		}
		defer guard.Store(false)

		ctx := context.Background()
		if err := s.uc.RemindDue(ctx, cadence); err != nil {
			slog.ErrorContext(ctx, "reminder run failed", "cadence", cadence.String(), "error", err)
		}
	}
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	slog.Info("starting reminder scheduler", "entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
