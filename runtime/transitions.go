package runtime

import (
	"context"
	"room-engine/domain"
	"room-engine/domain/event"
	"room-engine/errors"
	"time"

	"github.com/samber/lo"
)

// AdvanceExpired is one game loop pass. Pending "everyone answered" requests are
// applied first, then every room whose deadline elapsed is advanced through each
// due state in order. A failing room is logged and retried on the next pass.
func (e *Engine) AdvanceExpired(ctx context.Context, now time.Time) (int, error) {
	e.applyShortenRequests(now)

	rooms, err := e.rooms.LoadRoomsWithExpiredItemDeadline(now)
	if err != nil {
		return 0, err
	}
	advanced := 0
	for _, room := range rooms {
		if ctx.Err() != nil {
			return advanced, ctx.Err()
		}
		steps, err := e.advance(room.Key, now)
		advanced += steps
		if err != nil {
			e.log.Error("Room transition failed, retrying next tick", "room", room.Key, "status", room.Status, "err", err)
		}
	}
	return advanced, nil
}

// CloseExpired is one cleanup pass: every live room past its absolute lifetime is
// forced to CLOSED whatever its phase.
func (e *Engine) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	rooms, err := e.rooms.LoadAllExpiredActiveRooms(now)
	if err != nil {
		return 0, err
	}
	closed := 0
	for _, candidate := range rooms {
		if ctx.Err() != nil {
			return closed, ctx.Err()
		}
		ok, err := e.expire(candidate.Key, now)
		if err != nil {
			e.log.Error("Room cleanup failed, retrying next tick", "room", candidate.Key, "err", err)
			continue
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}

func (e *Engine) expire(key domain.RoomKey, now time.Time) (bool, error) {
	unlock := e.lock(key)
	defer unlock()

	room, err := e.rooms.GetRoom(key)
	if err != nil {
		return false, err
	}
	if room.Status.IsTerminal() || !room.LifetimeElapsed(now) {
		return false, nil
	}
	return true, e.closeRoom(room, now, domain.ReasonExpired)
}

// advance walks one room forward until nothing is due. Every step starts from the
// stored room, so a room already moved by a concurrent pass yields zero steps.
func (e *Engine) advance(key domain.RoomKey, now time.Time) (int, error) {
	unlock := e.lock(key)
	defer unlock()

	steps := 0
	for {
		room, err := e.rooms.GetRoom(key)
		if err != nil {
			return steps, err
		}
		if room.Status.IsTerminal() || !room.DeadlineElapsed(now) {
			return steps, nil
		}
		switch room.Status {
		case domain.ItemActive:
			err = e.finishItem(room, now)
		case domain.ItemFinished:
			err = e.nextItem(room, now)
		default:
			return steps, nil
		}
		if err != nil {
			return steps, err
		}
		steps++
	}
}

func (e *Engine) applyShortenRequests(now time.Time) {
	e.shorten.Range(func(k, v any) bool {
		key := k.(domain.RoomKey)
		req := v.(shortenRequest)
		e.shorten.Delete(k)

		unlock := e.lock(key)
		defer unlock()
		room, err := e.rooms.GetRoom(key)
		if err != nil {
			e.log.Warn("Cannot shorten deadline", "room", key, "err", err)
			return true
		}
		if room.ActiveIndex != req.index || !room.ShortenDeadline(req.to) {
			return true
		}
		if err := e.rooms.SaveRoom(room); err != nil {
			e.log.Warn("Cannot shorten deadline", "room", key, "err", err)
			return true
		}
		e.log.Debug("Everyone answered, deadline shortened", "room", key, "item", req.index, "deadline", req.to)
		return true
	})
}

// activate persists a room that just entered ITEM_ACTIVE and announces the item.
// The ledger scope is opened first so no accepted submission can miss it.
func (e *Engine) activate(room domain.Room) error {
	item, _ := room.ActiveItem()
	if err := e.openItem(room); err != nil {
		return err
	}
	if err := e.rooms.SaveRoom(room); err != nil {
		return err
	}
	e.log.Debug("Item active", "room", room.Key, "item", room.ActiveIndex, "deadline", room.Deadline)
	e.emit(event.NewItemActive{
		Room:  room.Key,
		Index: room.ActiveIndex,
		Total: len(room.Items),
		Options: lo.Map(item.Options, func(o domain.Option, _ int) event.OptionView {
			return event.OptionView{ID: o.ID, Label: o.Label}
		}),
		Prompt:   item.Prompt,
		Deadline: *room.Deadline,
		At:       *room.ItemStartedAt,
	})
	return nil
}

// finishItem is ITEM_ACTIVE -> ITEM_FINISHED: the item scope is sealed, its points
// are folded into the entrants, then tallies and leaderboard are revealed.
func (e *Engine) finishItem(room domain.Room, now time.Time) error {
	index := room.ActiveIndex
	item, _ := room.ActiveItem()
	scope := itemScope(room.Key, index)
	if err := e.openItem(room); err != nil {
		return err
	}
	e.ledger.Seal(scope, errors.ErrItemNotActive)

	tallies, err := e.ledger.Tallies(scope)
	if err != nil {
		e.log.Warn("No tallies for finished item", "room", room.Key, "item", index, "err", err)
	}
	entrants, err := e.aggregate(room, index)
	if err != nil {
		return err
	}
	if err := room.FinishItem(now, e.cfg.Intermission); err != nil {
		return err
	}
	if err := e.rooms.SaveRoom(room); err != nil {
		return err
	}

	leading := ""
	if len(tallies) > 0 && tallies[0].Count > 0 {
		leading = tallies[0].Candidate
	}
	var correct []string
	if room.Kind == domain.QuizRoom {
		correct = item.CorrectOptions()
	}
	e.emit(event.ItemFinished{Room: room.Key, Index: index, Tallies: tallies, Correct: correct, Leading: leading, At: now})
	e.emit(event.LeaderboardUpdated{Room: room.Key, Entries: leaderboard(room, entrants), At: now})
	return nil
}

// nextItem leaves the intermission. Without a next item the room finishes in the same step.
func (e *Engine) nextItem(room domain.Room, now time.Time) error {
	if err := room.NextItem(now); err != nil {
		return err
	}
	if room.Status == domain.Finished {
		return e.terminate(room, now)
	}
	return e.activate(room)
}

// closeRoom forces a live room to CLOSED. Votes of the interrupted item that were
// accepted before the seal still count.
func (e *Engine) closeRoom(room domain.Room, now time.Time, reason domain.CloseReason) error {
	if room.Status == domain.ItemActive {
		if err := e.openItem(room); err != nil {
			return err
		}
	}
	e.ledger.SealPrefix(itemScopePrefix(room.Key), errors.ErrRoomClosed)
	if room.Status == domain.ItemActive {
		if _, err := e.aggregate(room, room.ActiveIndex); err != nil {
			return err
		}
	}
	if err := room.Close(now, reason); err != nil {
		return err
	}
	return e.terminate(room, now)
}

// terminate persists a room that reached FINISHED or CLOSED, emits its single
// RoomClosed with the final leaderboard and releases its ledger scopes.
func (e *Engine) terminate(room domain.Room, now time.Time) error {
	if err := e.rooms.SaveRoom(room); err != nil {
		return err
	}
	entrants, err := e.rooms.ListEntrants(room.Key)
	if err != nil {
		e.log.Warn("Final leaderboard unavailable", "room", room.Key, "err", err)
	}
	e.emit(event.RoomClosed{
		Room:   room.Key,
		Status: room.Status,
		Reason: room.CloseReason,
		Final:  leaderboard(room, entrants),
		At:     now,
	})
	e.ledger.DropPrefix(itemScopePrefix(room.Key))
	e.shorten.Delete(room.Key)
	e.log.Info("Room terminated", "room", room.Key, "status", room.Status, "reason", room.CloseReason)
	return nil
}

// aggregate adds the points of one item to every entrant that has not received
// them yet. Entrants remember the last item folded in, so a retried transition
// never counts an item twice.
func (e *Engine) aggregate(room domain.Room, index int) ([]domain.Entrant, error) {
	entrants, err := e.rooms.ListEntrants(room.Key)
	if err != nil {
		return nil, err
	}
	points := e.pointsByVoter(itemScope(room.Key, index))

	var changed []domain.Entrant
	for i := range entrants {
		if entrants[i].LastScoredItem >= index {
			continue
		}
		if room.Kind == domain.QuizRoom {
			entrants[i].Score += points[entrants[i].UserID]
		}
		entrants[i].LastScoredItem = index
		changed = append(changed, entrants[i])
	}
	if len(changed) > 0 {
		if err := e.rooms.SaveEntrants(changed); err != nil {
			return nil, err
		}
	}
	return entrants, nil
}

// openItem opens the ledger scope of the active item. After a restart it
// replays the answers already accepted for that item.
func (e *Engine) openItem(room domain.Room) error {
	item, ok := room.ActiveItem()
	if !ok {
		return errors.ErrItemNotActive
	}
	options := lo.Map(item.Options, func(o domain.Option, _ int) string { return o.ID })
	return e.ledger.Open(itemScope(room.Key, room.ActiveIndex), options...)
}

func (e *Engine) pointsByVoter(scope string) map[string]int64 {
	points := make(map[string]int64)
	tallies, err := e.ledger.Tallies(scope)
	if err != nil {
		return points
	}
	for _, t := range tallies {
		detail, err := e.ledger.VoteDetail(scope, t.Candidate)
		if err != nil {
			continue
		}
		for voter, p := range detail {
			points[voter] += p
		}
	}
	return points
}
