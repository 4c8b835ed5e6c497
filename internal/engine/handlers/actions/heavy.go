package actions

import (
	"fmt"

	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
)

// ForwardHeavyAction - рывок вперёд с замахом. Стоит единицу энергии.
// Сейчас - шаг, на следующем раунде автоматически выполняется SweepAction.
// Пока замах не завершён, исполнитель уязвим для контрудара.
type ForwardHeavyAction struct{}

func (ForwardHeavyAction) ActionName() string { return NameForwardHeavy }

func (ForwardHeavyAction) VerifyDirection(f *domain.Floor, subject domain.EntityID, dir geometry.Offset) (domain.Command, error) {
	actor, err := actorOf(f, subject)
	if err != nil {
		return nil, err
	}
	if err := checkAdjacent(dir); err != nil {
		return nil, err
	}
	if actor.Energy < 1 {
		return nil, fmt.Errorf("%w: %d energy", domain.ErrNotEnoughEnergy, actor.Energy)
	}
	dest := actor.Pos.Add(dir)
	if !f.IsTileFree(dest) {
		return nil, fmt.Errorf("%w: %v is blocked", domain.ErrInvalidTarget, dest)
	}

	return moveCommand{
		floor:   f,
		subject: subject,
		dest:    dest,
		then: func(actor domain.Entity, round uint32) domain.Entity {
			actor.Energy--
			return actor.WithState(domain.CommittedState(round+1, domain.Intent{
				Action: domain.NewAction(SweepAction{Dir: dir}),
				Target: domain.NoTarget(),
			}))
		},
	}, nil
}

// SweepAction - завершение рывка: удар по трём клеткам перед собой
// с оглушением. Не может провалиться, даже если бить некого.
type SweepAction struct {
	Dir geometry.Offset `json:"dir"`
}

func (SweepAction) ActionName() string { return NameSweep }

func (a SweepAction) Command(f *domain.Floor, subject domain.EntityID) domain.Command {
	return domain.CommandFunc(func() domain.FloorUpdate {
		actor := f.MustEntity(subject)
		round := nextRound(actor)
		front := actor.Pos.Add(a.Dir)

		events := []domain.Event{domain.StartAttackEvent(subject, front)}
		batch := []domain.Entity{actor.WithState(domain.OkState(round + 1))}

		for _, tile := range []geometry.Position{
			actor.Pos.Add(a.Dir.RotateLeft()),
			front,
			actor.Pos.Add(a.Dir.RotateRight()),
		} {
			target, ok := occupantAt(f, tile, subject)
			if !ok {
				continue
			}
			hitEntities, hitEvents := resolveHit(f, actor, target, hit{
				damage:     1,
				effect:     effectHitstun,
				extensions: 1,
			}, round)
			batch = append(batch, hitEntities...)
			events = append(events, hitEvents...)
		}
		return commit(f, events, batch...)
	})
}
