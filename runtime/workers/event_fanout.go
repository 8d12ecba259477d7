package workers

import (
	"context"
	"fmt"
	"log/slog"
	"room-engine/contract"
	"room-engine/domain/event"
	"time"
)

// EventFanout broadcasts the engine's domain events to the permanent sinks and
// to the sinks subscribed to the event's room.
//
// Delivery is best effort: each sink gets at most sinkTimeout per event, a slow
// or failing sink is logged and skipped, and nothing is ever reported back to the
// engine. Events are delivered in the order they were emitted.
type EventFanout struct {
	log         *slog.Logger
	sinks       []contract.EventSink
	registry    contract.IRegistry
	events      <-chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, sinks []contract.EventSink, registry contract.IRegistry,
	events <-chan event.DomainEvent, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, sinks: sinks, registry: registry, events: events, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fan-out")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel closed")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event. Subscriptions of a room are dropped after its RoomClosed,
// those of a contest topic after its ContestFinished.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	key := evt.RoomKey()
	targets := append([]contract.EventSink{}, w.sinks...)
	targets = append(targets, w.registry.GetSinksForRoom(key)...)

	for _, sink := range targets {
		w.deliver(ctx, sink, evt)
	}
	switch evt.(type) {
	case event.RoomClosed, event.ContestFinished:
		if n := w.registry.DropRoom(key); n > 0 {
			w.log.Debug("Room subscriptions released", "room", key, "subscribers", n)
		}
	}
}

func (w *EventFanout) deliver(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sink.Consume(sinkCtx, evt) }()

	select {
	case err := <-done:
		if err != nil {
			w.log.Warn("Sink failed", "room", evt.RoomKey(), "type", fmt.Sprintf("%T", evt), "err", err)
		}
	case <-sinkCtx.Done():
		w.log.Warn("Sink timed out, event dropped", "room", evt.RoomKey(), "type", fmt.Sprintf("%T", evt))
	}
}
