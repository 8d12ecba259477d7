package workers

import (
	"context"
	"log/slog"
	"room-engine/contract"
	"time"
)

// CleanupWorker force closes rooms past their absolute lifetime, whatever their phase.
// It runs on its own slower ticker so a stalled game loop cannot keep rooms alive.
type CleanupWorker struct {
	log      *slog.Logger
	reaper   contract.RoomReaper
	interval time.Duration
	now      func() time.Time
}

func NewCleanupWorker(log *slog.Logger, reaper contract.RoomReaper, interval time.Duration) *CleanupWorker {
	return &CleanupWorker{log: log, reaper: reaper, interval: interval, now: time.Now}
}

func (w *CleanupWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping cleanup")
			return nil
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

func (w *CleanupWorker) Sweep(ctx context.Context) {
	closed, err := w.reaper.CloseExpired(ctx, w.now())
	if err != nil {
		w.log.Error("Cleanup scan failed", "err", err)
		return
	}
	if closed > 0 {
		w.log.Info("Expired rooms closed", "count", closed)
	}
}
