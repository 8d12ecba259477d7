package runtime

import (
	"room-engine/contract"
	"room-engine/domain"
	"sync"
)

type Set map[string]struct{}

// Registry maps rooms to the sinks of their live subscribers (spectators, players, hosts).
type Registry struct {
	mu          sync.RWMutex
	Sessions    map[string]contract.EventSink // subscriber -> sink
	RoomMembers map[domain.RoomKey]Set        // room -> subscribers
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions:    make(map[string]contract.EventSink),
		RoomMembers: make(map[domain.RoomKey]Set),
	}
}

// GetSinksForRoom resolves the subscribers of a room into their sinks.
// A subscriber following several rooms owns a single sink.
// Returns nil if the room has no subscriber.
func (r *Registry) GetSinksForRoom(key domain.RoomKey) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.RoomMembers[key]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for subscriberID := range members {
		if sink, exists := r.Sessions[subscriberID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe registers a subscriber's sink and attaches it to a room.
// The room entry is created on the fly.
func (r *Registry) Subscribe(subscriberID string, key domain.RoomKey, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sessions[subscriberID] = sink

	if _, ok := r.RoomMembers[key]; !ok {
		r.RoomMembers[key] = make(Set)
	}
	r.RoomMembers[key][subscriberID] = struct{}{}
}

// Unsubscribe detaches a subscriber from a room and forgets its sink.
// Rooms left without subscribers are removed.
func (r *Registry) Unsubscribe(subscriberID string, key domain.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Sessions, subscriberID)

	if members, ok := r.RoomMembers[key]; ok {
		delete(members, subscriberID)

		if len(members) == 0 {
			delete(r.RoomMembers, key)
		}
	}
}

// DropRoom forgets every subscription of a room, used once the room is terminal.
// Sinks of subscribers still following other rooms are kept.
func (r *Registry) DropRoom(key domain.RoomKey) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.RoomMembers[key]
	if !ok {
		return 0
	}
	delete(r.RoomMembers, key)
	for subscriberID := range members {
		if !r.followsAnyRoom(subscriberID) {
			delete(r.Sessions, subscriberID)
		}
	}
	return len(members)
}

func (r *Registry) followsAnyRoom(subscriberID string) bool {
	for _, members := range r.RoomMembers {
		if _, ok := members[subscriberID]; ok {
			return true
		}
	}
	return false
}
