package repositories

import (
	"fmt"
	"log/slog"
	"room-engine/domain"
	"room-engine/errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const (
	roomPrefix     = "room:"
	entrantPrefix  = "entrant:"
	nicknamePrefix = "nick:"
	countPrefix    = "entrants-count:"
	deadlineIndex  = "idx:deadline:"
	expiryIndex    = "idx:expiry:"
	maxTxnRetries  = 5
)

type IRoomRepository interface {
	SaveRoom(room domain.Room) error
	GetRoom(key domain.RoomKey) (domain.Room, error)
	LoadRoomsWithExpiredItemDeadline(now time.Time) ([]domain.Room, error)
	LoadAllExpiredActiveRooms(now time.Time) ([]domain.Room, error)
	LoadActiveRooms() ([]domain.Room, error)
	AddEntrant(entrant domain.Entrant, maxParticipants int) (domain.Entrant, error)
	SaveEntrants(entrants []domain.Entrant) error
	GetEntrant(key domain.RoomKey, userID string) (domain.Entrant, error)
	ListEntrants(key domain.RoomKey) ([]domain.Entrant, error)
}

type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) RoomRepository {
	return RoomRepository{db: db, log: log}
}

// SaveRoom writes the room and keeps both scan indexes in the same transaction.
// idx:deadline:{unix_nano_padded}:{key} holds live rooms carrying a deadline,
// idx:expiry:{unix_nano_padded}:{key} holds every non terminal room.
func (r RoomRepository) SaveRoom(room domain.Room) error {
	data, err := encode(fromRoom(room))
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		previous, err := r.getRoom(txn, room.Key)
		switch {
		case err == nil:
			for _, k := range indexKeys(previous) {
				if err := txn.Delete(k); err != nil {
					return err
				}
			}
		case err != errors.ErrRoomNotFound:
			return err
		}
		for _, k := range indexKeys(room) {
			if err := txn.Set(k, nil); err != nil {
				return err
			}
		}
		return txn.Set(roomKey(room.Key), data)
	})
	return persistenceErr(err)
}

func (r RoomRepository) GetRoom(key domain.RoomKey) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		room, err = r.getRoom(txn, key)
		return err
	})
	return room, persistenceErr(err)
}

// LoadRoomsWithExpiredItemDeadline returns live rooms whose item or intermission
// deadline is at or before now, earliest deadline first.
func (r RoomRepository) LoadRoomsWithExpiredItemDeadline(now time.Time) ([]domain.Room, error) {
	rooms, err := r.scanIndex(deadlineIndex, &now)
	if err != nil {
		return nil, err
	}
	return lo.Filter(rooms, func(room domain.Room, _ int) bool {
		return !room.Status.IsTerminal() && room.DeadlineElapsed(now)
	}), nil
}

// LoadAllExpiredActiveRooms returns non terminal rooms whose lifetime elapsed.
func (r RoomRepository) LoadAllExpiredActiveRooms(now time.Time) ([]domain.Room, error) {
	rooms, err := r.scanIndex(expiryIndex, &now)
	if err != nil {
		return nil, err
	}
	return lo.Filter(rooms, func(room domain.Room, _ int) bool {
		return !room.Status.IsTerminal() && room.LifetimeElapsed(now)
	}), nil
}

func (r RoomRepository) LoadActiveRooms() ([]domain.Room, error) {
	return r.scanIndex(expiryIndex, nil)
}

// AddEntrant registers a new entrant. Re-joining returns the stored entrant.
// Nickname uniqueness and capacity are checked in the same transaction; a
// conflicting concurrent join is retried.
func (r RoomRepository) AddEntrant(entrant domain.Entrant, maxParticipants int) (domain.Entrant, error) {
	var stored domain.Entrant
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = r.db.Update(func(txn *badger.Txn) error {
			existing, err := r.getEntrant(txn, entrant.RoomKey, entrant.UserID)
			if err == nil {
				stored = existing
				return nil
			}
			if err != errors.ErrNotEntrant {
				return err
			}

			nick := nicknameKey(entrant.RoomKey, entrant.Nickname)
			if _, err := txn.Get(nick); err == nil {
				return errors.ErrNicknameTaken
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			countKey := entrantCountKey(entrant.RoomKey)
			count, err := readCount(txn, countKey)
			if err != nil {
				return err
			}
			if maxParticipants > 0 && count >= maxParticipants {
				return errors.ErrRoomFull
			}
			if err := txn.Set(countKey, []byte(strconv.Itoa(count+1))); err != nil {
				return err
			}

			data, err := encode(fromEntrant(entrant))
			if err != nil {
				return err
			}
			if err := txn.Set(nick, []byte(entrant.UserID)); err != nil {
				return err
			}
			stored = entrant
			return txn.Set(entrantKey(entrant.RoomKey, entrant.UserID), data)
		})
		if err != badger.ErrConflict {
			break
		}
		r.log.Debug("Join conflict, retrying", "room", entrant.RoomKey, "attempt", attempt+1)
	}
	if err != nil {
		return domain.Entrant{}, persistenceErr(err)
	}
	return stored, nil
}

// SaveEntrants overwrites entrants in one transaction, used after score aggregation.
func (r RoomRepository) SaveEntrants(entrants []domain.Entrant) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		for _, e := range entrants {
			data, err := encode(fromEntrant(e))
			if err != nil {
				return err
			}
			if err := txn.Set(entrantKey(e.RoomKey, e.UserID), data); err != nil {
				return err
			}
		}
		return nil
	})
	return persistenceErr(err)
}

func (r RoomRepository) GetEntrant(key domain.RoomKey, userID string) (domain.Entrant, error) {
	var entrant domain.Entrant
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		entrant, err = r.getEntrant(txn, key, userID)
		return err
	})
	return entrant, persistenceErr(err)
}

// ListEntrants returns the entrants of a room ordered by join time.
func (r RoomRepository) ListEntrants(key domain.RoomKey) ([]domain.Entrant, error) {
	var entrants []domain.Entrant
	err := r.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, entrantRoomPrefix(key), func(_ []byte, value []byte) error {
			rec, err := decode(value)
			if err != nil {
				return err
			}
			entrants = append(entrants, toEntrant(rec))
			return nil
		})
	})
	if err != nil {
		return nil, persistenceErr(err)
	}
	sortByJoin(entrants)
	return entrants, nil
}

func (r RoomRepository) getRoom(txn *badger.Txn, key domain.RoomKey) (domain.Room, error) {
	item, err := txn.Get(roomKey(key))
	if err == badger.ErrKeyNotFound {
		return domain.Room{}, errors.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	var room domain.Room
	err = item.Value(func(val []byte) error {
		rec, err := decode(val)
		if err != nil {
			return err
		}
		room = toRoom(rec)
		return nil
	})
	return room, err
}

func (r RoomRepository) getEntrant(txn *badger.Txn, key domain.RoomKey, userID string) (domain.Entrant, error) {
	item, err := txn.Get(entrantKey(key, userID))
	if err == badger.ErrKeyNotFound {
		return domain.Entrant{}, errors.ErrNotEntrant
	}
	if err != nil {
		return domain.Entrant{}, err
	}
	var entrant domain.Entrant
	err = item.Value(func(val []byte) error {
		rec, err := decode(val)
		if err != nil {
			return err
		}
		entrant = toEntrant(rec)
		return nil
	})
	return entrant, err
}

// scanIndex walks an index in timestamp order, stopping after until when set.
// A room listed twice (stale index entry) is loaded once.
func (r RoomRepository) scanIndex(prefix string, until *time.Time) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		seen := make(map[domain.RoomKey]struct{})
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			ts, key, ok := parseIndexKey(string(it.Item().Key()), prefix)
			if !ok {
				r.log.Warn("Malformed index key", "key", string(it.Item().Key()))
				continue
			}
			if until != nil && ts > until.UnixNano() {
				break
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			room, err := r.getRoom(txn, key)
			if err == errors.ErrRoomNotFound {
				continue
			}
			if err != nil {
				return err
			}
			rooms = append(rooms, room)
		}
		return nil
	})
	if err != nil {
		return nil, persistenceErr(err)
	}
	return rooms, nil
}

func indexKeys(room domain.Room) [][]byte {
	if room.Status.IsTerminal() {
		return nil
	}
	keys := [][]byte{[]byte(fmt.Sprintf("%s%019d:%s", expiryIndex, room.ExpiresAt.UnixNano(), room.Key))}
	if room.Deadline != nil {
		keys = append(keys, []byte(fmt.Sprintf("%s%019d:%s", deadlineIndex, room.Deadline.UnixNano(), room.Key)))
	}
	return keys
}

func parseIndexKey(raw, prefix string) (int64, domain.RoomKey, bool) {
	rest := strings.TrimPrefix(raw, prefix)
	tsPart, key, found := strings.Cut(rest, ":")
	if !found {
		return 0, "", false
	}
	ts, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return ts, domain.RoomKey(key), true
}

func roomKey(key domain.RoomKey) []byte {
	return []byte(roomPrefix + string(key))
}

func entrantRoomPrefix(key domain.RoomKey) []byte {
	return []byte(entrantPrefix + string(key) + ":")
}

func entrantKey(key domain.RoomKey, userID string) []byte {
	return append(entrantRoomPrefix(key), userID...)
}

func entrantCountKey(key domain.RoomKey) []byte {
	return []byte(countPrefix + string(key))
}

func nicknameKey(key domain.RoomKey, nickname string) []byte {
	return []byte(nicknamePrefix + string(key) + ":" + strings.ToLower(strings.TrimSpace(nickname)))
}

func iteratePrefix(txn *badger.Txn, prefix []byte, fn func(key, value []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		if err := item.Value(func(val []byte) error {
			return fn(key, val)
		}); err != nil {
			return err
		}
	}
	return nil
}

// readCount reads a counter key. Reading it puts the key in the transaction's
// read set, so two joins racing on the same room conflict instead of both passing.
func readCount(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(raw))
}

func sortByJoin(entrants []domain.Entrant) {
	slices.SortStableFunc(entrants, func(a, b domain.Entrant) int {
		return a.JoinedAt.Compare(b.JoinedAt)
	})
}

func fromRoom(room domain.Room) record {
	items := make([]any, len(room.Items))
	for i, item := range room.Items {
		items[i] = fromItem(item)
	}
	return record{
		"key":              string(room.Key),
		"kind":             string(room.Kind),
		"form_id":          room.FormID,
		"host_id":          room.HostID,
		"title":            room.Title,
		"status":           string(room.Status),
		"items":            items,
		"active_index":     room.ActiveIndex,
		"item_started_at":  formatTimePtr(room.ItemStartedAt),
		"deadline":         formatTimePtr(room.Deadline),
		"item_duration_ms": room.ItemDuration.Milliseconds(),
		"max_participants": room.MaxParticipants,
		"private":          room.Private,
		"passcode_hash":    room.PasscodeHash,
		"created_at":       formatTime(room.CreatedAt),
		"expires_at":       formatTime(room.ExpiresAt),
		"closed_at":        formatTimePtr(room.ClosedAt),
		"close_reason":     string(room.CloseReason),
	}
}

func toRoom(rec record) domain.Room {
	items := lo.Map(rec.list("items"), func(r record, _ int) domain.Item { return toItem(r) })
	return domain.Room{
		Key:             domain.RoomKey(rec.str("key")),
		Kind:            domain.RoomKind(rec.str("kind")),
		FormID:          rec.str("form_id"),
		HostID:          rec.str("host_id"),
		Title:           rec.str("title"),
		Status:          domain.RoomStatus(rec.str("status")),
		Items:           items,
		ActiveIndex:     int(rec.int("active_index")),
		ItemStartedAt:   rec.timePtr("item_started_at"),
		Deadline:        rec.timePtr("deadline"),
		ItemDuration:    time.Duration(rec.int("item_duration_ms")) * time.Millisecond,
		MaxParticipants: int(rec.int("max_participants")),
		Private:         rec.bool("private"),
		PasscodeHash:    rec.str("passcode_hash"),
		CreatedAt:       rec.time("created_at"),
		ExpiresAt:       rec.time("expires_at"),
		ClosedAt:        rec.timePtr("closed_at"),
		CloseReason:     domain.CloseReason(rec.str("close_reason")),
	}
}

func fromItem(item domain.Item) map[string]any {
	options := make([]any, len(item.Options))
	for i, o := range item.Options {
		options[i] = map[string]any{"id": o.ID, "label": o.Label, "correct": o.Correct}
	}
	return map[string]any{
		"id":      item.ID,
		"prompt":  item.Prompt,
		"options": options,
		"points":  item.Points,
	}
}

func toItem(rec record) domain.Item {
	return domain.Item{
		ID:     rec.str("id"),
		Prompt: rec.str("prompt"),
		Options: lo.Map(rec.list("options"), func(o record, _ int) domain.Option {
			return domain.Option{ID: o.str("id"), Label: o.str("label"), Correct: o.bool("correct")}
		}),
		Points: rec.int("points"),
	}
}

func fromEntrant(e domain.Entrant) record {
	return record{
		"id":               e.ID,
		"room_key":         string(e.RoomKey),
		"user_id":          e.UserID,
		"nickname":         e.Nickname,
		"joined_at":        formatTime(e.JoinedAt),
		"score":            e.Score,
		"last_scored_item": e.LastScoredItem,
	}
}

func toEntrant(rec record) domain.Entrant {
	return domain.Entrant{
		ID:             rec.str("id"),
		RoomKey:        domain.RoomKey(rec.str("room_key")),
		UserID:         rec.str("user_id"),
		Nickname:       rec.str("nickname"),
		JoinedAt:       rec.time("joined_at"),
		Score:          rec.int("score"),
		LastScoredItem: int(rec.int("last_scored_item")),
	}
}
