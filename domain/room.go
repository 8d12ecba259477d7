// Package domain contains core concepts of the room engine.
// This file defines the Room lifecycle and its transition rules.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"fmt"
	"room-engine/errors"
	"time"
)

type RoomKey string

type RoomKind string

const (
	QuizRoom   RoomKind = "QUIZ"
	SurveyRoom RoomKind = "SURVEY"
)

type RoomStatus string

const (
	Waiting      RoomStatus = "WAITING"
	ItemActive   RoomStatus = "ITEM_ACTIVE"
	ItemFinished RoomStatus = "ITEM_FINISHED"
	Finished     RoomStatus = "FINISHED"
	Closed       RoomStatus = "CLOSED"
)

// IsTerminal reports whether no further transition is possible.
func (s RoomStatus) IsTerminal() bool {
	return s == Finished || s == Closed
}

type CloseReason string

const (
	ReasonCompleted     CloseReason = "COMPLETED"
	ReasonExpired       CloseReason = "EXPIRED"
	ReasonHost          CloseReason = "HOST"
	ReasonStageFinished CloseReason = "STAGE_FINISHED"
)

// Room is a single timed session. ActiveIndex is -1 until the first item starts.
// Deadline is nil exactly when no item is running and no intermission is pending.
type Room struct {
	Key             RoomKey
	Kind            RoomKind
	FormID          string
	HostID          string
	Title           string
	Status          RoomStatus
	Items           []Item
	ActiveIndex     int
	ItemStartedAt   *time.Time
	Deadline        *time.Time
	ItemDuration    time.Duration
	MaxParticipants int
	Private         bool
	PasscodeHash    string
	CreatedAt       time.Time
	ExpiresAt       time.Time
	ClosedAt        *time.Time
	CloseReason     CloseReason
}

func NewRoom(key RoomKey, form Form, hostID string, itemDuration time.Duration,
	maxParticipants int, private bool, now, expiresAt time.Time) Room {
	return Room{
		Key:             key,
		Kind:            form.Kind,
		FormID:          form.ID,
		HostID:          hostID,
		Title:           form.Title,
		Status:          Waiting,
		Items:           form.Items,
		ActiveIndex:     -1,
		ItemDuration:    itemDuration,
		MaxParticipants: maxParticipants,
		Private:         private,
		CreatedAt:       now,
		ExpiresAt:       expiresAt,
	}
}

// ActiveItem returns the item currently pointed at, if any.
func (r Room) ActiveItem() (Item, bool) {
	if r.Status != ItemActive && r.Status != ItemFinished {
		return Item{}, false
	}
	if r.ActiveIndex < 0 || r.ActiveIndex >= len(r.Items) {
		return Item{}, false
	}
	return r.Items[r.ActiveIndex], true
}

func (r Room) HasNextItem() bool {
	return r.ActiveIndex+1 < len(r.Items)
}

// DeadlineElapsed is true when the room carries a deadline and now has reached it.
func (r Room) DeadlineElapsed(now time.Time) bool {
	return r.Deadline != nil && !now.Before(*r.Deadline)
}

func (r Room) LifetimeElapsed(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Start moves a waiting room onto its first item.
func (r *Room) Start(now time.Time) error {
	if r.Status != Waiting {
		return invalid(r.Status, ItemActive)
	}
	if len(r.Items) == 0 {
		return errors.ErrNoItems
	}
	r.activate(0, now)
	return nil
}

// FinishItem ends the running item once its deadline has passed. The intermission
// deadline is anchored on the item deadline so a late scheduler catches up in order.
func (r *Room) FinishItem(now time.Time, intermission time.Duration) error {
	if r.Status != ItemActive {
		return invalid(r.Status, ItemFinished)
	}
	if !r.DeadlineElapsed(now) {
		return fmt.Errorf("%w: item deadline not reached", errors.ErrInvalidTransition)
	}
	next := r.Deadline.Add(intermission)
	r.Status = ItemFinished
	r.Deadline = &next
	return nil
}

// NextItem leaves the intermission: either the next item starts with a full
// answer window or, when none remains, the room finishes.
func (r *Room) NextItem(now time.Time) error {
	if r.Status != ItemFinished {
		return invalid(r.Status, ItemActive)
	}
	if !r.DeadlineElapsed(now) {
		return fmt.Errorf("%w: intermission not over", errors.ErrInvalidTransition)
	}
	if !r.HasNextItem() {
		return r.Finish(now)
	}
	r.activate(r.ActiveIndex+1, now)
	return nil
}

// Finish is the natural end of the item loop.
func (r *Room) Finish(now time.Time) error {
	if r.Status != ItemFinished {
		return invalid(r.Status, Finished)
	}
	r.terminate(Finished, ReasonCompleted, now)
	return nil
}

// Close forces any non terminal room into CLOSED.
func (r *Room) Close(now time.Time, reason CloseReason) error {
	if r.Status.IsTerminal() {
		return invalid(r.Status, Closed)
	}
	r.terminate(Closed, reason, now)
	return nil
}

// ShortenDeadline pulls the running item's deadline earlier, never later.
func (r *Room) ShortenDeadline(to time.Time) bool {
	if r.Status != ItemActive || r.Deadline == nil || !to.Before(*r.Deadline) {
		return false
	}
	r.Deadline = &to
	return true
}

func (r *Room) activate(index int, now time.Time) {
	deadline := now.Add(r.ItemDuration)
	started := now
	r.Status = ItemActive
	r.ActiveIndex = index
	r.ItemStartedAt = &started
	r.Deadline = &deadline
}

func (r *Room) terminate(status RoomStatus, reason CloseReason, now time.Time) {
	closedAt := now
	r.Status = status
	r.Deadline = nil
	r.ClosedAt = &closedAt
	r.CloseReason = reason
}

func invalid(from, to RoomStatus) error {
	return fmt.Errorf("%w: %s -> %s", errors.ErrInvalidTransition, from, to)
}
