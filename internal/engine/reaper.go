package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/admit/internal/queue"
)

// ReapReport summarizes one sweep.
type ReapReport struct {
	Events   int // events with open sessions examined
	Expired  int // sessions moved to expired by this sweep
	Promoted int // waiting sessions promoted into reclaimed slots
	Failed   int // sessions or events skipped after an error
}

// Reap expires every open session whose CreatedAt is older than its event's
// timeout as of now.
//
// Per event, stale waiting sessions are expired before stale active ones, so
// slots reclaimed from active sessions are handed to sessions that are still
// within their timeout. Expiring an active session goes through the same
// exit path as a client exit and promotes at most one waiting session.
//
// Failures are logged and counted, and the sweep moves on. Reap is
// idempotent: a failed or partial sweep is completed by the next one.
// The only error returned is a failure to list events.
func (e *Engine) Reap(ctx context.Context, now time.Time) (ReapReport, error) {
	var report ReapReport

	events, err := e.store.OpenEvents(ctx)
	if err != nil {
		return report, fmt.Errorf("reap: %w", err)
	}

	for _, eventID := range events {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Events++

		timeout := e.settings(eventID).Timeout
		stale, err := e.store.Stale(ctx, eventID, now.Add(-timeout))
		if err != nil {
			e.logger.Error("reap: list stale sessions failed", "event_id", eventID, "error", err)
			report.Failed++
			continue
		}

		for _, sess := range waitingFirst(stale) {
			res, err := e.exit(ctx, sess.ID, queue.StatusExpired, func() time.Time { return now })
			if err != nil {
				e.logger.Error("reap: expire session failed",
					"event_id", eventID,
					"session_id", sess.ID,
					"error", err,
				)
				report.Failed++
				continue
			}
			if res.Changed {
				report.Expired++
			}
			if res.Promoted != nil {
				report.Promoted++
			}
		}
	}

	if report.Expired > 0 || report.Failed > 0 {
		e.logger.Info("reap complete",
			"events", report.Events,
			"expired", report.Expired,
			"promoted", report.Promoted,
			"failed", report.Failed,
		)
	}
	return report, nil
}

// waitingFirst reorders sessions so waiting ones precede active ones,
// keeping queue order within each group.
func waitingFirst(sessions []queue.Session) []queue.Session {
	ordered := make([]queue.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Status == queue.StatusWaiting {
			ordered = append(ordered, s)
		}
	}
	for _, s := range sessions {
		if s.Status != queue.StatusWaiting {
			ordered = append(ordered, s)
		}
	}
	return ordered
}

// Reaper runs Reap on a fixed interval.
type Reaper struct {
	engine   *Engine
	interval time.Duration
	logger   *slog.Logger
}

// NewReaper creates a reaper that sweeps e every interval.
func NewReaper(e *Engine, interval time.Duration) *Reaper {
	return &Reaper{engine: e, interval: interval, logger: e.logger}
}

// Run sweeps once immediately, then on every tick, until ctx is done.
// Sweep errors are logged; the next tick retries with the same criteria.
func (r *Reaper) Run(ctx context.Context) error {
	r.logger.Info("reaper starting", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.sweep(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	if _, err := r.engine.Reap(ctx, r.engine.Now()); err != nil && ctx.Err() == nil {
		r.logger.Error("reap sweep failed", "error", err)
	}
}
