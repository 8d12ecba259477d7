package runtime

import (
	"context"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"log/slog"
	"room-engine/domain"
	"room-engine/domain/event"
	"room-engine/ledger"
	"room-engine/repositories"
	"room-engine/runtime/workers"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}

type RecordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *RecordingSink) Consume(ctx context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *RecordingSink) closed() []event.RoomClosed {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.RoomClosed
	for _, e := range s.events {
		if c, ok := e.(event.RoomClosed); ok {
			out = append(out, c)
		}
	}
	return out
}

type countingScheduler struct {
	scans atomic.Int32
}

func (c *countingScheduler) AdvanceExpired(ctx context.Context, now time.Time) (int, error) {
	c.scans.Add(1)
	return 0, nil
}

func TestOrchestrator_CleanupReachesSinks(t *testing.T) {
	req := require.New(t)
	log := testLogger()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	forms := repositories.NewFormRepository(db, log)
	req.NoError(forms.SaveForm(domain.Form{ID: "f1", Kind: domain.SurveyRoom, Items: []domain.Item{
		{ID: "q0", Prompt: "Tea or coffee?", Options: []domain.Option{{ID: "tea"}, {ID: "coffee"}}},
	}}))

	events := make(chan event.DomainEvent, 64)
	engine := NewEngine(log, EngineConfig{
		Intermission:           time.Second,
		AllAnsweredDelay:       time.Second,
		RoomLifetime:           10 * time.Millisecond,
		DefaultMaxParticipants: 10,
	}, repositories.NewRoomRepository(db, log), forms, repositories.NewAnswerRepository(db, log), ledger.New(log, repositories.NewVoteRepository(db, log)), nil, nil, events)

	registry := NewRegistry()
	orchestrator := NewOrchestrator(log, OrchestratorConfig{
		GameLoopInterval: 5 * time.Millisecond,
		CleanupInterval:  5 * time.Millisecond,
		SinkTimeout:      time.Second,
		MetricInterval:   time.Second,
	}, engine, events, workers.NewSupervisor(log, 10*time.Millisecond), registry)

	permanent := &RecordingSink{}
	orchestrator.RegisterSinks(permanent)
	stages := &countingScheduler{}
	orchestrator.AddSchedulers(stages)

	// Given a room nobody starts and a spectator following it
	room, err := engine.OpenRoom(context.Background(), domain.OpenRoomRequest{
		Kind: domain.SurveyRoom, FormID: "f1", HostID: "host", TimePerItem: 30,
	})
	req.NoError(err)
	spectator := &RecordingSink{}
	orchestrator.Subscribe("spectator", room.Key, spectator)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- orchestrator.Start(ctx) }()

	// When its lifetime elapses, Then both sinks get exactly one RoomClosed
	req.Eventually(func() bool {
		return len(permanent.closed()) == 1 && len(spectator.closed()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	req.Eventually(func() bool { return registry.GetSinksForRoom(room.Key) == nil }, time.Second, 10*time.Millisecond)
	req.Eventually(func() bool { return stages.scans.Load() > 0 }, time.Second, 10*time.Millisecond)

	orchestrator.Stop()
	req.NoError(<-done)
	cancel()

	req.Len(permanent.closed(), 1)
	req.Equal(domain.ReasonExpired, permanent.closed()[0].Reason)
}
