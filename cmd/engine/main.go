package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"room-engine/auth"
	"room-engine/contest"
	"room-engine/domain/event"
	"room-engine/internal"
	"room-engine/ledger"
	"room-engine/projection"
	"room-engine/repositories"
	"room-engine/runtime"
	"room-engine/runtime/workers"
	"room-engine/stage"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Room engine terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires storage, the engine, the contest service and the supervised workers,
// then blocks until SIGINT or SIGTERM.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	replacement, err := internal.CharacterRune(config.CensoredReplacement)
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	rooms := repositories.NewRoomRepository(db, log)
	forms := repositories.NewFormRepository(db, log)
	answers := repositories.NewAnswerRepository(db, log)
	contests := repositories.NewContestRepository(db, log)
	storedVotes := repositories.NewVoteRepository(db, log)

	// 3. Engine
	moderator, err := runtime.LoadModerator(log, replacement)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation lists: %w", err)
	}
	votes := ledger.New(log, storedVotes)
	events := make(chan event.DomainEvent, config.EventBufferSize)
	engine := runtime.NewEngine(log, runtime.EngineConfig{
		Intermission:           config.Intermission,
		AllAnsweredDelay:       config.AllAnsweredDelay,
		AnswerGrace:            config.AnswerGrace,
		RoomLifetime:           config.RoomLifetime,
		DefaultMaxParticipants: config.DefaultMaxParticipants,
	}, rooms, forms, answers, votes, auth.NewInviteService(config.InviteSecret, config.InviteTTL), moderator, events)

	// 4. Contests
	deps := stage.Deps{Log: log, Contests: contests, Ledger: votes}
	strategies, err := stage.NewRegistry(log,
		stage.NewQuizStrategy(deps, engine),
		stage.NewSurveyStrategy(deps, engine),
		stage.NewPublicVoteStrategy(deps),
		stage.NewJuryVoteStrategy(deps),
		stage.NewGenericStrategy(deps),
	)
	if err != nil {
		return exitConfig, err
	}
	contestService := contest.NewService(log, contests, strategies, votes, events)

	// 5. Supervision & Orchestration
	orchestrator := runtime.NewOrchestrator(log, runtime.OrchestratorConfig{
		GameLoopInterval: config.GameLoopInterval,
		CleanupInterval:  config.CleanupInterval,
		SinkTimeout:      config.SinkTimeout,
		MetricInterval:   config.MetricInterval,
	}, engine, events, workers.NewSupervisor(log, config.RestartInterval), runtime.NewRegistry())
	orchestrator.RegisterSinks(projection.NewLeaderboards())
	orchestrator.AddSchedulers(contestService)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = orchestrator.Start(ctx)
	}()

	active, err := engine.ActiveRooms(ctx)
	if err != nil {
		log.Warn("Cannot list rooms at startup", "err", err)
	}
	log.Info("Room engine started", "active_rooms", len(active))

	// 7. Wait for Stop
	<-ctx.Done()
	log.Info("Shutting down gracefully...")
	orchestrator.Stop()
	<-done
	log.Info("Program stopped cleanly")
	return exitOK, nil
}
