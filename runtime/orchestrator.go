package runtime

import (
	"context"
	"embed"
	"log/slog"
	"room-engine/contract"
	"room-engine/domain"
	"room-engine/domain/event"
	"room-engine/moderation"
	"room-engine/runtime/workers"
	"strings"
	"sync"
	"time"
)

//go:embed censored/*
var censoredFolder embed.FS

var _ contract.IOrchestrator = (*Orchestrator)(nil)

type OrchestratorConfig struct {
	GameLoopInterval time.Duration
	CleanupInterval  time.Duration
	SinkTimeout      time.Duration
	MetricInterval   time.Duration
}

// Orchestrator wires the engine to its background workers: the game loop, the
// cleanup, the event fan-out and the health monitor, all run by the supervisor.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	cfg            OrchestratorConfig
	engine         *Engine
	events         chan event.DomainEvent
	permanentSinks []contract.EventSink
	schedulers     []contract.ItemScheduler
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	health         *workers.HealthMonitoringWorker
}

// NewOrchestrator takes the channel the engine emits into; the fan-out drains it.
func NewOrchestrator(log *slog.Logger, cfg OrchestratorConfig, engine *Engine,
	events chan event.DomainEvent, supervisor contract.ISupervisor, registry contract.IRegistry) *Orchestrator {
	return &Orchestrator{
		log:        log,
		cfg:        cfg,
		engine:     engine,
		events:     events,
		supervisor: supervisor,
		registry:   registry,
	}
}

// LoadModerator builds the nickname moderator from the embedded censored lists.
func LoadModerator(log *slog.Logger, replacement rune) (*moderation.Moderator, error) {
	data, err := NewCensoredLoader(censoredFolder).LoadAll("censored")
	if err != nil {
		return nil, err
	}
	log.Info("Censored lists loaded",
		"languages", strings.Join(data.Languages, ","), "words", len(data.Words))
	return moderation.NewModerator(data.Words, replacement, log)
}

// RegisterSinks adds sinks receiving every event of every room. Call before Start.
func (o *Orchestrator) RegisterSinks(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// AddSchedulers runs extra deadline scans next to the room game loop, at the same
// interval. Call before Start.
func (o *Orchestrator) AddSchedulers(schedulers ...contract.ItemScheduler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.schedulers = append(o.schedulers, schedulers...)
}

// Subscribe attaches a live connection to the events of one room.
func (o *Orchestrator) Subscribe(subscriberID string, key domain.RoomKey, sink contract.EventSink) {
	o.registry.Subscribe(subscriberID, key, sink)
}

func (o *Orchestrator) Unsubscribe(subscriberID string, key domain.RoomKey) {
	o.registry.Unsubscribe(subscriberID, key)
}

// Start registers the workers and blocks until the supervisor stops.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	sinks := append([]contract.EventSink{}, o.permanentSinks...)
	o.health = workers.NewHealthMonitoringWorker(o.log,
		[]workers.NamedChannel{{Name: "domain_events", Channel: o.events}},
		o.cfg.MetricInterval)
	o.supervisor.Add(
		workers.NewGameLoopWorker(o.log, o.engine, o.cfg.GameLoopInterval),
		workers.NewCleanupWorker(o.log, o.engine, o.cfg.CleanupInterval),
		workers.NewEventFanout(o.log, sinks, o.registry, o.events, o.cfg.SinkTimeout),
		o.health,
	)
	for _, scheduler := range o.schedulers {
		o.supervisor.Add(workers.NewGameLoopWorker(o.log, scheduler, o.cfg.GameLoopInterval))
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers",
		"game_loop", o.cfg.GameLoopInterval, "cleanup", o.cfg.CleanupInterval, "sinks", len(sinks))
	o.supervisor.Run(ctx)
	return nil
}

// Health returns the last sample of the health monitor, zero before Start.
func (o *Orchestrator) Health() workers.HealthSnapshot {
	o.mu.Lock()
	health := o.health
	o.mu.Unlock()
	if health == nil {
		return workers.HealthSnapshot{}
	}
	return health.Latest()
}

// Stop cancels every supervised worker.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
