//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"room-engine/domain"
	"room-engine/domain/event"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	GetSinksForRoom(key domain.RoomKey) []EventSink
	Subscribe(subscriberID string, key domain.RoomKey, sink EventSink)
	Unsubscribe(subscriberID string, key domain.RoomKey)
	DropRoom(key domain.RoomKey) int
}

// ItemScheduler advances whatever outlived its deadline: room items and intermissions,
// or timed contest stages.
type ItemScheduler interface {
	AdvanceExpired(ctx context.Context, now time.Time) (int, error)
}

// RoomReaper force closes rooms whose absolute lifetime elapsed.
type RoomReaper interface {
	CloseExpired(ctx context.Context, now time.Time) (int, error)
}

// RoomProvisioner is what contest stages need from the room engine.
type RoomProvisioner interface {
	OpenRoom(ctx context.Context, req domain.OpenRoomRequest) (domain.Room, error)
	CloseRoom(ctx context.Context, key domain.RoomKey, reason domain.CloseReason) error
	Leaderboard(ctx context.Context, key domain.RoomKey) ([]domain.LeaderboardEntry, error)
}

type InviteVerifier interface {
	Verify(token string, key domain.RoomKey, userID string) error
}

type NicknameModerator interface {
	Rejects(nickname string) bool
}

type IOrchestrator interface {
	RegisterSinks(sink ...EventSink)
	AddSchedulers(schedulers ...ItemScheduler)
	Subscribe(subscriberID string, key domain.RoomKey, sink EventSink)
	Unsubscribe(subscriberID string, key domain.RoomKey)
	Start(ctx context.Context) error
	Stop()
}
