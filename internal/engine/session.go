package engine

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"time"

	"lizard-state/internal/domain"
	"lizard-state/internal/version"
	"lizard-state/pkg/logger"

	"github.com/looplab/fsm"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Фазы сессии.
const (
	PhaseRunning       = "running"
	PhaseAwaitingInput = "awaiting_input"
	PhaseFinished      = "finished"
)

const (
	eventAwait  = "await"
	eventResume = "resume"
	eventFinish = "finish"
)

var (
	ErrTurnLimit   = errors.New("npc turn limit reached")
	ErrNotYourTurn = errors.New("not this entity's turn")
	ErrFinished    = errors.New("session is finished")
)

// TurnSlot - позиция в очереди ходов.
type TurnSlot struct {
	Entity domain.EntityID `json:"entity"`
	Round  uint32          `json:"round"`
}

// Session владеет текущим этажом и продвигает его.
// Не потокобезопасна: доступ сериализует Service.
type Session struct {
	ID ulid.ULID

	cfg    Config
	floor  *domain.Floor
	phase  *fsm.FSM
	replay *domain.ReplaySession
	log    *logrus.Entry
}

// NewSession начинает партию с готового этажа. scenario - исходный текст
// сценария, он попадает в запись партии.
func NewSession(floor *domain.Floor, scenario string, cfg Config) *Session {
	id := ulid.Make()
	s := &Session{
		ID:    id,
		cfg:   cfg,
		floor: floor,
		replay: &domain.ReplaySession{
			Scenario:  scenario,
			Timestamp: time.Now().Unix(),
			Build:     version.Build(),
			Actions:   make([]domain.ReplayAction, 0),
		},
		log: logger.Log.WithFields(logrus.Fields{
			"component":  "session",
			"session_id": id.String(),
		}),
	}

	s.phase = fsm.NewFSM(
		PhaseRunning,
		fsm.Events{
			{Name: eventAwait, Src: []string{PhaseRunning}, Dst: PhaseAwaitingInput},
			{Name: eventResume, Src: []string{PhaseAwaitingInput}, Dst: PhaseRunning},
			{Name: eventFinish, Src: []string{PhaseRunning, PhaseAwaitingInput}, Dst: PhaseFinished},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.log.WithFields(logrus.Fields{"from": e.Src, "to": e.Dst}).Debug("Phase changed")
			},
		},
	)
	return s
}

func (s *Session) Floor() *domain.Floor          { return s.floor }
func (s *Session) Phase() string                 { return s.phase.Current() }
func (s *Session) Replay() *domain.ReplaySession { return s.replay }
func (s *Session) EndState() domain.EndState     { return s.floor.EndState() }
func (s *Session) IsFinished() bool              { return s.phase.Is(PhaseFinished) }

// Advance выполняет ходы NPC и встроенные переходы, пока не наступит ход
// игрока, не кончатся участники или не определится итог.
func (s *Session) Advance(ctx context.Context) ([]domain.Event, error) {
	if s.IsFinished() {
		return nil, nil
	}

	var events []domain.Event
	for turns := 0; s.cfg.MaxNPCTurns <= 0 || turns < s.cfg.MaxNPCTurns; turns++ {
		if err := ctx.Err(); err != nil {
			return events, err
		}

		// 1. Итог определён - партия окончена.
		if end := s.floor.EndState(); end != domain.EndUndetermined {
			s.log.WithField("end_state", end.String()).Info("Mission over")
			return events, s.transition(ctx, eventFinish)
		}

		// 2. Ход следующего участника.
		u, err := s.floor.TakeNPCTurn()
		switch {
		case errors.Is(err, domain.ErrNoTurntaker):
			s.log.Info("Nobody left to take a turn")
			return events, s.transition(ctx, eventFinish)
		case errors.Is(err, domain.ErrPlayerTurn):
			if !s.cfg.Autopilot {
				return events, s.transition(ctx, eventAwait)
			}
			e, _ := s.floor.CurrentEntity()
			u = e.Strategy.TakeTurn(s.floor, e.ID)
		case err != nil:
			return events, err
		}

		events = append(events, s.apply(u)...)
	}

	s.log.WithField("limit", s.cfg.MaxNPCTurns).Warn("NPC turn limit reached")
	return events, ErrTurnLimit
}

// Submit проверяет и выполняет намерение игрока, записывает его в
// историю партии и продвигает симуляцию до следующего хода игрока.
func (s *Session) Submit(ctx context.Context, subject domain.EntityID, intent domain.Intent) ([]domain.Event, error) {
	return s.submit(ctx, subject, intent, false)
}

// Confirm повторяет действие, предложенное через ConfirmCommand.
func (s *Session) Confirm(ctx context.Context, subject domain.EntityID) ([]domain.Event, error) {
	e, ok := s.floor.Entity(subject)
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity %s", domain.ErrInvalidState, subject)
	}
	if e.State.Kind != domain.StateConfirmCommand || e.State.Queued == nil {
		return nil, fmt.Errorf("%w: %s has nothing to confirm", domain.ErrInvalidState, subject)
	}
	return s.submit(ctx, subject, *e.State.Queued, true)
}

func (s *Session) submit(ctx context.Context, subject domain.EntityID, intent domain.Intent, confirm bool) ([]domain.Event, error) {
	if s.IsFinished() {
		return nil, ErrFinished
	}
	if !s.phase.Is(PhaseAwaitingInput) {
		return nil, fmt.Errorf("%w: session is %s", domain.ErrInvalidState, s.Phase())
	}
	current, err := s.floor.CurrentTurn()
	if err != nil {
		return nil, err
	}
	if current != subject {
		return nil, fmt.Errorf("%w: %s acts now", ErrNotYourTurn, current)
	}

	cmd, err := intent.Verify(s.floor, subject)
	if err != nil {
		return nil, err
	}

	round, _ := s.floor.CurrentRound()
	s.replay.Actions = append(s.replay.Actions, domain.ReplayAction{
		Round:   round,
		Actor:   subject,
		Intent:  intent,
		Confirm: confirm,
	})
	s.log.WithFields(logrus.Fields{
		"entity_id": subject,
		"intent":    intent.String(),
		"round":     round,
	}).Debug("Player intent accepted")

	events := s.apply(cmd.Do())
	if err := s.transition(ctx, eventResume); err != nil {
		return events, err
	}
	more, err := s.Advance(ctx)
	return append(events, more...), err
}

// Upcoming возвращает до n ближайших ходов по текущим раундам сущностей.
func (s *Session) Upcoming(n int) []TurnSlot {
	pq := NewTurnQueue(s.floor)
	out := make([]TurnSlot, 0, min(n, pq.Len()))
	for len(out) < n && pq.Len() > 0 {
		item := heap.Pop(pq).(*TurnItem)
		out = append(out, TurnSlot{Entity: item.Value, Round: item.Round})
	}
	return out
}

func (s *Session) apply(u domain.FloorUpdate) []domain.Event {
	floor, events := u.Unpack()
	s.floor = floor
	return events
}

func (s *Session) transition(ctx context.Context, event string) error {
	if !s.phase.Can(event) {
		return nil
	}
	err := s.phase.Event(ctx, event)
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}
	return err
}

// Replay восстанавливает партию: выполняет записанные действия поверх
// начального этажа. Сценарий разбирает вызывающий.
func Replay(ctx context.Context, floor *domain.Floor, record *domain.ReplaySession, cfg Config) (*Session, []domain.Event, error) {
	s := NewSession(floor, record.Scenario, cfg)
	// Другая сборка может разойтись с записью: играем, но предупреждаем.
	if err := version.CheckReplay(record.Build); err != nil {
		s.log.WithError(err).Warn("Replay build mismatch")
	}
	events, err := s.Advance(ctx)
	if err != nil {
		return s, events, err
	}
	for i, act := range record.Actions {
		var more []domain.Event
		if act.Confirm {
			more, err = s.Confirm(ctx, act.Actor)
		} else {
			more, err = s.Submit(ctx, act.Actor, act.Intent)
		}
		events = append(events, more...)
		if err != nil {
			return s, events, fmt.Errorf("replay action %d (%s): %w", i, act.Actor, err)
		}
	}
	return s, events, nil
}
