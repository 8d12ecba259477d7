// Package runtime drives rooms through their lifecycle and moves events out of the core.
// Business rules of a single room stay in domain; this package adds time, storage,
// the shared ledger and the per room single writer discipline.
package runtime

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"room-engine/auth"
	"room-engine/contract"
	"room-engine/domain"
	"room-engine/domain/event"
	"room-engine/errors"
	"room-engine/ledger"
	"room-engine/repositories"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const lockStripes = 64

type EngineConfig struct {
	Intermission           time.Duration
	AllAnsweredDelay       time.Duration
	AnswerGrace            time.Duration
	RoomLifetime           time.Duration
	DefaultMaxParticipants int
}

// Engine is the only writer of room state. Transitions of one room are serialized
// by a striped lock and always start from the stored room, so a transition that
// lost a race simply finds nothing left to do.
type Engine struct {
	log       *slog.Logger
	cfg       EngineConfig
	rooms     repositories.IRoomRepository
	forms     repositories.IFormRepository
	answers   repositories.IAnswerRepository
	ledger    *ledger.Ledger
	invites   contract.InviteVerifier
	moderator contract.NicknameModerator
	events    chan<- event.DomainEvent
	locks     [lockStripes]sync.Mutex
	shorten   sync.Map // domain.RoomKey -> shortenRequest
	now       func() time.Time
}

type shortenRequest struct {
	index int
	to    time.Time
}

func NewEngine(
	log *slog.Logger,
	cfg EngineConfig,
	rooms repositories.IRoomRepository,
	forms repositories.IFormRepository,
	answers repositories.IAnswerRepository,
	ledger *ledger.Ledger,
	invites contract.InviteVerifier,
	moderator contract.NicknameModerator,
	events chan<- event.DomainEvent,
) *Engine {
	return &Engine{
		log:       log,
		cfg:       cfg,
		rooms:     rooms,
		forms:     forms,
		answers:   answers,
		ledger:    ledger,
		invites:   invites,
		moderator: moderator,
		events:    events,
		now:       time.Now,
	}
}

// WithClock replaces the wall clock used for submissions and request side transitions.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// OpenRoom creates a WAITING room from a stored form.
func (e *Engine) OpenRoom(ctx context.Context, req domain.OpenRoomRequest) (domain.Room, error) {
	if err := auth.Validate(req); err != nil {
		return domain.Room{}, err
	}
	form, err := e.forms.GetForm(req.FormID)
	if err != nil {
		return domain.Room{}, err
	}
	if form.Kind != req.Kind {
		return domain.Room{}, fmt.Errorf("%w: form %s is a %s form", errors.ErrFormNotFound, form.ID, form.Kind)
	}

	maxParticipants := req.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = e.cfg.DefaultMaxParticipants
	}
	now := e.now()
	room := domain.NewRoom(
		domain.RoomKey(uuid.NewString()),
		form,
		req.HostID,
		time.Duration(req.TimePerItem)*time.Second,
		maxParticipants,
		req.Private,
		now,
		now.Add(e.cfg.RoomLifetime),
	)
	if req.Private && req.Passcode != "" {
		if room.PasscodeHash, err = auth.HashPasscode(req.Passcode); err != nil {
			return domain.Room{}, err
		}
	}
	if err := e.rooms.SaveRoom(room); err != nil {
		return domain.Room{}, err
	}
	e.log.Info("Room opened", "room", room.Key, "kind", room.Kind, "items", len(room.Items))
	return room, nil
}

// Join adds the caller to a room. Joining twice returns the first membership.
func (e *Engine) Join(ctx context.Context, req domain.JoinRequest) (domain.Entrant, error) {
	if err := auth.Validate(req); err != nil {
		return domain.Entrant{}, err
	}
	room, err := e.rooms.GetRoom(req.RoomKey)
	if err != nil {
		return domain.Entrant{}, err
	}
	if room.Status.IsTerminal() {
		return domain.Entrant{}, errors.ErrRoomClosed
	}

	isHost := req.UserID == room.HostID
	if room.Private && !isHost && !e.admitted(room, req) {
		return domain.Entrant{}, errors.ErrAccessDenied
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" && isHost {
		nickname = domain.HostNickname
	}
	if nickname == "" {
		return domain.Entrant{}, errors.ErrNicknameRequired
	}
	if e.moderator != nil && e.moderator.Rejects(nickname) {
		return domain.Entrant{}, errors.ErrNicknameRejected
	}

	candidate := domain.NewEntrant(uuid.NewString(), room.Key, req.UserID, nickname, e.now())
	entrant, err := e.rooms.AddEntrant(candidate, room.MaxParticipants)
	if err != nil {
		return domain.Entrant{}, err
	}
	if entrant.ID == candidate.ID {
		e.emit(event.EntrantJoined{Room: room.Key, UserID: entrant.UserID, Nickname: entrant.Nickname, At: entrant.JoinedAt})
	}
	return entrant, nil
}

// admitted accepts either an invitation issued for (room, user) or the room passcode.
func (e *Engine) admitted(room domain.Room, req domain.JoinRequest) bool {
	if req.InviteToken != "" && e.invites != nil {
		err := e.invites.Verify(req.InviteToken, room.Key, req.UserID)
		if err == nil {
			return true
		}
		e.log.Debug("Invitation refused", "room", room.Key, "user", req.UserID, "err", err)
	}
	if req.Passcode != "" && room.PasscodeHash != "" {
		ok, err := auth.ComparePasscode(req.Passcode, room.PasscodeHash)
		if err != nil {
			e.log.Error("Stored passcode hash unreadable", "room", room.Key, "err", err)
			return false
		}
		return ok
	}
	return false
}

// Start is the host's explicit WAITING -> ITEM_ACTIVE action.
func (e *Engine) Start(ctx context.Context, key domain.RoomKey, hostID string) error {
	unlock := e.lock(key)
	defer unlock()

	room, err := e.rooms.GetRoom(key)
	if err != nil {
		return err
	}
	if room.HostID != hostID {
		return errors.ErrNotHost
	}
	if err := room.Start(e.now()); err != nil {
		return err
	}
	return e.activate(room)
}

// SubmitAnswer registers one answer for the running item.
// Quiz answers earn the item's points decayed by up to half over the answer
// window when correct, nothing otherwise; survey answers count one point.
func (e *Engine) SubmitAnswer(ctx context.Context, cmd domain.SubmitAnswerCommand) (domain.AnswerResult, error) {
	if err := auth.Validate(cmd); err != nil {
		return domain.AnswerResult{}, err
	}
	now := e.now()
	room, err := e.rooms.GetRoom(cmd.RoomKey)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if room.Status.IsTerminal() {
		return domain.AnswerResult{}, errors.ErrRoomClosed
	}
	if room.Status != domain.ItemActive || room.ActiveIndex != cmd.ItemIndex {
		return domain.AnswerResult{}, errors.ErrItemNotActive
	}
	if now.After(room.Deadline.Add(e.cfg.AnswerGrace)) {
		return domain.AnswerResult{}, errors.ErrItemNotActive
	}
	if cmd.UserID == room.HostID {
		return domain.AnswerResult{}, errors.ErrAccessDenied
	}
	if _, err := e.rooms.GetEntrant(room.Key, cmd.UserID); err != nil {
		return domain.AnswerResult{}, err
	}

	item, _ := room.ActiveItem()
	option, ok := item.Option(cmd.OptionID)
	if !ok {
		return domain.AnswerResult{}, errors.ErrInvalidCandidate
	}
	points := answerPoints(room, item, option, now)

	scope := itemScope(room.Key, cmd.ItemIndex)
	total, err := e.ledger.RegisterVote(scope, option.ID, cmd.UserID, points)
	if err == errors.ErrItemNotActive {
		total, err = e.reopenAndRegister(room.Key, cmd.ItemIndex, scope, option.ID, cmd.UserID, points)
	}
	if err != nil {
		return domain.AnswerResult{}, err
	}

	answer := domain.Answer{
		RoomKey:     room.Key,
		UserID:      cmd.UserID,
		ItemIndex:   cmd.ItemIndex,
		OptionID:    option.ID,
		Points:      points,
		Correct:     option.Correct,
		SubmittedAt: now,
	}
	if err := e.answers.SaveAnswer(answer); err != nil {
		e.log.Warn("Answer accepted but not journaled", "room", room.Key, "user", cmd.UserID, "err", err)
	}

	answered, expected := e.ledger.Voters(itemScope(room.Key, cmd.ItemIndex)), e.expectedAnswers(room)
	if expected > 0 && answered >= expected {
		e.shorten.Store(room.Key, shortenRequest{index: cmd.ItemIndex, to: now.Add(e.cfg.AllAnsweredDelay)})
	}
	e.emit(event.AnswerSubmitted{
		Room:      room.Key,
		ItemIndex: cmd.ItemIndex,
		UserID:    cmd.UserID,
		Answered:  answered,
		Expected:  expected,
		At:        now,
	})
	return domain.AnswerResult{ItemIndex: cmd.ItemIndex, Points: points, Correct: option.Correct, ItemTotal: total}, nil
}

// reopenAndRegister handles an item scope missing from the ledger. A room closed
// after our read refuses the answer; a room still on the item lost its scope to a
// restart, so the scope is rebuilt from the stored answers and the answer retried.
func (e *Engine) reopenAndRegister(key domain.RoomKey, index int, scope, optionID, userID string, points int64) (int64, error) {
	fresh, err := e.rooms.GetRoom(key)
	if err != nil {
		return 0, err
	}
	if fresh.Status.IsTerminal() {
		return 0, errors.ErrRoomClosed
	}
	if fresh.Status != domain.ItemActive || fresh.ActiveIndex != index {
		return 0, errors.ErrItemNotActive
	}
	if err := e.openItem(fresh); err != nil {
		return 0, err
	}
	return e.ledger.RegisterVote(scope, optionID, userID, points)
}

func answerPoints(room domain.Room, item domain.Item, option domain.Option, now time.Time) int64 {
	if room.Kind == domain.SurveyRoom {
		return 1
	}
	if !option.Correct || room.ItemStartedAt == nil || room.ItemDuration <= 0 {
		return 0
	}
	ratio := math.Min(float64(now.Sub(*room.ItemStartedAt))/float64(room.ItemDuration), 1)
	ratio = math.Max(ratio, 0)
	return int64(math.Max(0, math.Round(float64(item.Points)*(1-ratio/2))))
}

// expectedAnswers counts the entrants able to answer, the host excluded.
func (e *Engine) expectedAnswers(room domain.Room) int {
	entrants, err := e.rooms.ListEntrants(room.Key)
	if err != nil {
		e.log.Warn("Cannot count entrants", "room", room.Key, "err", err)
		return 0
	}
	return lo.CountBy(entrants, func(en domain.Entrant) bool { return en.UserID != room.HostID })
}

// Close is the host's request to end the room now.
func (e *Engine) Close(ctx context.Context, key domain.RoomKey, hostID string) error {
	unlock := e.lock(key)
	defer unlock()

	room, err := e.rooms.GetRoom(key)
	if err != nil {
		return err
	}
	if room.HostID != hostID {
		return errors.ErrNotHost
	}
	if room.Status.IsTerminal() {
		return errors.ErrRoomClosed
	}
	return e.closeRoom(room, e.now(), domain.ReasonHost)
}

// CloseRoom closes a room on behalf of another component. Closing a terminal room is a no-op.
func (e *Engine) CloseRoom(ctx context.Context, key domain.RoomKey, reason domain.CloseReason) error {
	unlock := e.lock(key)
	defer unlock()

	room, err := e.rooms.GetRoom(key)
	if err != nil {
		return err
	}
	if room.Status.IsTerminal() {
		return nil
	}
	return e.closeRoom(room, e.now(), reason)
}

func (e *Engine) Room(ctx context.Context, key domain.RoomKey) (domain.Room, error) {
	return e.rooms.GetRoom(key)
}

func (e *Engine) ActiveRooms(ctx context.Context) ([]domain.Room, error) {
	return e.rooms.LoadActiveRooms()
}

// MyAnswers lists the caller's journaled answers in item order.
func (e *Engine) MyAnswers(ctx context.Context, key domain.RoomKey, userID string) ([]domain.Answer, error) {
	if _, err := e.rooms.GetEntrant(key, userID); err != nil {
		return nil, err
	}
	return e.answers.ListAnswers(key, userID)
}

// Leaderboard ranks the entrants of a room, host excluded, by score then join order.
func (e *Engine) Leaderboard(ctx context.Context, key domain.RoomKey) ([]domain.LeaderboardEntry, error) {
	room, err := e.rooms.GetRoom(key)
	if err != nil {
		return nil, err
	}
	entrants, err := e.rooms.ListEntrants(key)
	if err != nil {
		return nil, err
	}
	return leaderboard(room, entrants), nil
}

func leaderboard(room domain.Room, entrants []domain.Entrant) []domain.LeaderboardEntry {
	players := lo.Filter(entrants, func(en domain.Entrant, _ int) bool { return en.UserID != room.HostID })
	slices.SortStableFunc(players, func(a, b domain.Entrant) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return a.JoinedAt.Compare(b.JoinedAt)
		}
	})
	return lo.Map(players, func(en domain.Entrant, i int) domain.LeaderboardEntry {
		return domain.LeaderboardEntry{Rank: i + 1, UserID: en.UserID, Nickname: en.Nickname, Score: float64(en.Score)}
	})
}

// emit never blocks: a full channel drops the event.
func (e *Engine) emit(ev event.DomainEvent) {
	select {
	case e.events <- ev:
	default:
		e.log.Warn("Event channel full, event dropped", "room", ev.RoomKey(), "type", fmt.Sprintf("%T", ev))
	}
}

func (e *Engine) lock(key domain.RoomKey) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &e.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func itemScope(key domain.RoomKey, index int) string {
	return fmt.Sprintf("%s%d", itemScopePrefix(key), index)
}

func itemScopePrefix(key domain.RoomKey) string {
	return "room:" + string(key) + ":item:"
}
