package runtime

import (
	"context"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"room-engine/contract"
	"room-engine/domain"
	"room-engine/domain/event"
	"testing"
)

type Sink struct {
	name string
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Subscribe_One_Room_One_Subscriber(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	subscriberID := uuid.NewString()
	key := domain.RoomKey("room-1")
	sink := Sink{name: "alice"}

	// Given nobody is connected
	req.Empty(registry.Sessions)
	req.Empty(registry.RoomMembers)

	// When a subscriber follows a room
	registry.Subscribe(subscriberID, key, sink)

	// Then
	req.Len(registry.Sessions, 1)
	req.Equal(sink, registry.Sessions[subscriberID])

	req.Len(registry.RoomMembers, 1)
	req.Contains(registry.RoomMembers[key], subscriberID)

	req.Len(registry.GetSinksForRoom(key), 1)
	req.Contains(registry.GetSinksForRoom(key), sink)
}

func TestRegistry_Subscribe_One_Room_Multiple_Subscribers(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	key := domain.RoomKey("room-1")
	sink1 := Sink{name: "alice"}
	sink2 := Sink{name: "bob"}

	// When subscribers follow a room
	registry.Subscribe(uuid.NewString(), key, sink1)
	registry.Subscribe(uuid.NewString(), key, sink2)

	// Then
	req.Len(registry.Sessions, 2)
	req.Len(registry.RoomMembers[key], 2)

	req.Len(registry.GetSinksForRoom(key), 2)
	req.Contains(registry.GetSinksForRoom(key), sink1)
	req.Empty(registry.GetSinksForRoom("room-2"))
}

func TestRegistry_Unsubscribe_Last_Subscriber_Removes_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	subscriberID := uuid.NewString()
	key := domain.RoomKey("room-1")

	// Given a subscriber follows a room
	registry.Subscribe(subscriberID, key, Sink{name: "alice"})

	// When it leaves
	registry.Unsubscribe(subscriberID, key)

	// Then the room doesn't exist anymore
	req.Empty(registry.Sessions)
	req.Empty(registry.RoomMembers)
	req.Nil(registry.GetSinksForRoom(key))
}

func TestRegistry_Unsubscribe_One_Of_Many(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	subscriberID1 := uuid.NewString()
	key := domain.RoomKey("room-1")
	sink2 := Sink{name: "bob"}

	registry.Subscribe(subscriberID1, key, Sink{name: "alice"})
	registry.Subscribe(uuid.NewString(), key, sink2)

	// When one subscriber leaves
	registry.Unsubscribe(subscriberID1, key)

	// Then only one is left
	req.Len(registry.Sessions, 1)
	req.Len(registry.RoomMembers[key], 1)
	req.Equal([]contract.EventSink{sink2}, registry.GetSinksForRoom(key))
}

func TestRegistry_DropRoom_Keeps_Subscribers_Of_Other_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	closed, live := domain.RoomKey("closed"), domain.RoomKey("live")

	// Given a spectator following two rooms and a player following one
	registry.Subscribe("spectator", closed, Sink{name: "spectator"})
	registry.Subscribe("spectator", live, Sink{name: "spectator"})
	registry.Subscribe("player", closed, Sink{name: "player"})

	// When the closed room is dropped
	dropped := registry.DropRoom(closed)

	// Then only the player's session is forgotten
	req.Equal(2, dropped)
	req.Nil(registry.GetSinksForRoom(closed))
	req.Len(registry.GetSinksForRoom(live), 1)
	req.Contains(registry.Sessions, "spectator")
	req.NotContains(registry.Sessions, "player")
	req.Zero(registry.DropRoom(closed))
}
