package workers

import (
	"context"
	"fmt"
	"log/slog"
	"room-engine/contract"
	"room-engine/domain"
	"room-engine/domain/event"
	"room-engine/mocks"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanout_PermanentAndRoomSinks(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	permanent := mocks.NewMockEventSink(ctrl)
	player := mocks.NewMockEventSink(ctrl)

	evt := event.ItemFinished{Room: "room-1", Index: 0}

	// Given one permanent sink and one subscriber in the room
	registry.EXPECT().GetSinksForRoom(domain.RoomKey("room-1")).Return([]contract.EventSink{player}).Times(1)
	permanent.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	// And a failing subscriber does not matter
	player.EXPECT().Consume(gomock.Any(), evt).Return(fmt.Errorf("socket closed")).Times(1)

	fanout := NewEventFanout(log, []contract.EventSink{permanent}, registry, nil, time.Second)

	// When the event is fanned out, Then both sinks were called
	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	slow := mocks.NewMockEventSink(ctrl)
	fast := mocks.NewMockEventSink(ctrl)

	registry.EXPECT().GetSinksForRoom(gomock.Any()).Return(nil).Times(1)
	// Given a sink waiting until its deadline
	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt event.DomainEvent) error {
			<-ctx.Done()
			return ctx.Err()
		}).Times(1)
	var delivered atomic.Bool
	fast.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt event.DomainEvent) error {
			delivered.Store(true)
			return nil
		}).Times(1)

	fanout := NewEventFanout(log, []contract.EventSink{slow, fast}, registry, nil, 20*time.Millisecond)

	// When an event is fanned out
	start := time.Now()
	fanout.Fanout(context.Background(), event.AnswerSubmitted{Room: "room-1"})

	// Then the slow sink only cost its timeout and the next sink still got the event
	req.Less(time.Since(start), 500*time.Millisecond)
	req.True(delivered.Load())
}

func TestEventFanout_RoomClosedReleasesSubscriptions(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	player := mocks.NewMockEventSink(ctrl)

	events := make(chan event.DomainEvent, 2)
	closed := event.RoomClosed{Room: "room-1", Status: domain.Finished}
	events <- event.NewItemActive{Room: "room-1", Index: 1}
	events <- closed

	consumed := make(chan struct{})
	gomock.InOrder(
		registry.EXPECT().GetSinksForRoom(domain.RoomKey("room-1")).Return([]contract.EventSink{player}),
		player.EXPECT().Consume(gomock.Any(), gomock.AssignableToTypeOf(event.NewItemActive{})).Return(nil),
		registry.EXPECT().GetSinksForRoom(domain.RoomKey("room-1")).Return([]contract.EventSink{player}),
		player.EXPECT().Consume(gomock.Any(), closed).Return(nil),
		registry.EXPECT().DropRoom(domain.RoomKey("room-1")).
			DoAndReturn(func(domain.RoomKey) int {
				close(consumed)
				return 1
			}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	fanout := NewEventFanout(slog.Default(), nil, registry, events, time.Second)
	done := make(chan error)
	go func() { done <- fanout.Run(ctx) }()

	select {
	case <-consumed:
	case <-time.After(time.Second):
		req.Fail("events were not fanned out in order")
	}
	cancel()
	req.NoError(<-done)
}
