package actions

import (
	"fmt"

	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
)

// BumpAction - удар по соседу: урон 1, отбрасывание на клетку, сбивание.
type BumpAction struct{}

func (BumpAction) ActionName() string { return NameBump }

func (BumpAction) VerifyDirection(f *domain.Floor, subject domain.EntityID, dir geometry.Offset) (domain.Command, error) {
	actor, err := actorOf(f, subject)
	if err != nil {
		return nil, err
	}
	if err := checkAdjacent(dir); err != nil {
		return nil, err
	}
	tile := actor.Pos.Add(dir)
	if _, ok := occupantAt(f, tile, subject); !ok {
		return nil, fmt.Errorf("%w: nobody at %v", domain.ErrInvalidTarget, tile)
	}
	return bumpCommand{floor: f, subject: subject, dir: dir}, nil
}

type bumpCommand struct {
	floor   *domain.Floor
	subject domain.EntityID
	dir     geometry.Offset
}

func (c bumpCommand) Do() domain.FloorUpdate {
	actor := c.floor.MustEntity(c.subject)
	round := nextRound(actor)
	target, _ := occupantAt(c.floor, actor.Pos.Add(c.dir), c.subject)

	events := []domain.Event{domain.StartAttackEvent(actor.ID, target.Pos)}
	hitEntities, hitEvents := resolveHit(c.floor, actor, target, hit{
		damage:   1,
		effect:   effectKnockback,
		dir:      c.dir,
		distance: 1,
	}, round)

	actor = actor.WithState(domain.OkState(round + 1))
	return commit(c.floor, append(events, hitEvents...), append([]domain.Entity{actor}, hitEntities...)...)
}
