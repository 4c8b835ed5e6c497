package actions

import (
	"fmt"

	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
)

// JabAction - быстрый удар с оглушением. После него исполнитель может
// только продолжить серию или подождать.
type JabAction struct{}

func (JabAction) ActionName() string { return NameJab }

func (JabAction) VerifyDirection(f *domain.Floor, subject domain.EntityID, dir geometry.Offset) (domain.Command, error) {
	actor, err := actorOf(f, subject)
	if err != nil {
		return nil, err
	}
	if err := checkAdjacent(dir); err != nil {
		return nil, err
	}
	tile := actor.Pos.Add(dir)
	target, ok := occupantAt(f, tile, subject)
	if !ok {
		return nil, fmt.Errorf("%w: nobody at %v", domain.ErrInvalidTarget, tile)
	}

	return domain.CommandFunc(func() domain.FloorUpdate {
		round := nextRound(actor)
		events := []domain.Event{domain.StartAttackEvent(subject, tile)}
		hitEntities, hitEvents := resolveHit(f, actor, target, hit{
			damage:     1,
			effect:     effectHitstun,
			extensions: 1,
		}, round)

		followup := actor.WithState(domain.RestrictedActionsState(round+1, Jab, Wait))
		return commit(f, append(events, hitEvents...), append([]domain.Entity{followup}, hitEntities...)...)
	}), nil
}
