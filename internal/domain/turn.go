package domain

import (
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
)

// CurrentTurn выбирает сущность с минимальной парой (следующий раунд, id).
// Меньший id ходит первым при равных раундах.
func (f *Floor) CurrentTurn() (EntityID, error) {
	var (
		best      EntityID
		bestRound uint32
		found     bool
	)
	for _, e := range f.entities.entities {
		round, ok := e.NextRound()
		if !ok {
			continue
		}
		if !found || round < bestRound {
			best, bestRound, found = e.ID, round, true
		}
	}
	if !found {
		return 0, ErrNoTurntaker
	}
	return best, nil
}

func (f *Floor) CurrentEntity() (Entity, error) {
	id, err := f.CurrentTurn()
	if err != nil {
		return Entity{}, err
	}
	return f.MustEntity(id), nil
}

func (f *Floor) CurrentRound() (uint32, error) {
	e, err := f.CurrentEntity()
	if err != nil {
		return 0, err
	}
	round, _ := e.NextRound()
	return round, nil
}

// TakeNPCTurn выполняет ход текущей сущности, если он не принадлежит игроку.
//
//  1. Committed - выполняется отложенное действие.
//  2. Knockdown, Hitstun - встроенное восстановление.
//  3. Игровой персонаж в Ok/ConfirmCommand/RestrictedActions - ErrPlayerTurn.
//  4. Остальные - стратегия сущности.
func (f *Floor) TakeNPCTurn() (FloorUpdate, error) {
	e, err := f.CurrentEntity()
	if err != nil {
		return Pure(f), err
	}

	turnLogger := logger.Log.WithFields(logrus.Fields{
		"component": "turn_scheduler",
		"entity_id": e.ID,
		"state":     e.State.String(),
	})

	switch e.State.Kind {
	case StateCommitted:
		turnLogger.WithField("queued", e.State.Queued.String()).Debug("Running committed action.")
		return e.State.Queued.Action.Command(f, e.ID).Do(), nil
	case StateKnockdown:
		return knockdownRecovery(f, e), nil
	case StateHitstun:
		return hitstunRecovery(f, e), nil
	case StateDowned, StateDead, StateExited:
		turnLogger.Panic("Terminal entity was scheduled.")
	}

	if e.IsPlayerControlled {
		return Pure(f), ErrPlayerTurn
	}

	turnLogger.WithField("strategy", e.Strategy.Name()).Debug("NPC takes turn.")
	return e.Strategy.TakeTurn(f, e.ID), nil
}

// Forfeit пропускает ход: сущность ждёт один раунд.
func Forfeit(f *Floor, subject EntityID) FloorUpdate {
	e := f.MustEntity(subject)
	round, ok := e.NextRound()
	if !ok {
		return Pure(f)
	}
	return f.UpdateEntity(e.WithState(OkState(round + 1)))
}

// knockdownRecovery: встаёт, если клетку никто не занял, иначе ждёт ещё раунд.
func knockdownRecovery(f *Floor, e Entity) FloorUpdate {
	round := e.State.NextRound
	if other, taken := f.Occupant(e.Pos); taken && other.ID != e.ID {
		return f.UpdateEntity(e.WithState(KnockdownState(round + 1)))
	}
	return Pure(f).Log(WakeupEvent(e.ID)).Bind(func(f *Floor) FloorUpdate {
		return f.UpdateEntity(e.WithState(OkState(round)))
	})
}

// hitstunRecovery: оглушение закончилось, сущность действует в этом же раунде.
func hitstunRecovery(f *Floor, e Entity) FloorUpdate {
	return f.UpdateEntity(e.WithState(OkState(e.State.NextRound)))
}
