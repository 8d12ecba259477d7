package workers

import (
	"context"
	"log/slog"
	"room-engine/contract"
	"time"
)

// GameLoopWorker is the item level timer: every tick it asks the scheduler to
// advance the rooms whose item or intermission deadline elapsed.
type GameLoopWorker struct {
	log       *slog.Logger
	scheduler contract.ItemScheduler
	interval  time.Duration
	now       func() time.Time
}

func NewGameLoopWorker(log *slog.Logger, scheduler contract.ItemScheduler, interval time.Duration) *GameLoopWorker {
	return &GameLoopWorker{log: log, scheduler: scheduler, interval: interval, now: time.Now}
}

func (w *GameLoopWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping game loop")
			return nil
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one scan. A failed scan is only logged, the next tick retries it.
func (w *GameLoopWorker) Tick(ctx context.Context) {
	steps, err := w.scheduler.AdvanceExpired(ctx, w.now())
	if err != nil {
		w.log.Error("Game loop scan failed", "err", err)
		return
	}
	if steps > 0 {
		w.log.Debug("Rooms advanced", "transitions", steps)
	}
}
