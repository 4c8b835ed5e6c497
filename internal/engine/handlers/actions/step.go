package actions

import (
	"fmt"

	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
)

// StepAction - шаг на соседнюю свободную клетку.
type StepAction struct{}

func (StepAction) ActionName() string { return NameStep }

func (StepAction) VerifyDirection(f *domain.Floor, subject domain.EntityID, dir geometry.Offset) (domain.Command, error) {
	actor, err := actorOf(f, subject)
	if err != nil {
		return nil, err
	}
	if err := checkAdjacent(dir); err != nil {
		return nil, err
	}

	dest := actor.Pos.Add(dir)
	if !f.Map().IsWalkable(dest) {
		return nil, fmt.Errorf("%w: %v is not walkable", domain.ErrInvalidTarget, dest)
	}
	if other, taken := f.Occupant(dest); taken {
		return nil, fmt.Errorf("%w: %v is occupied by %s", domain.ErrInvalidTarget, dest, other.ID)
	}
	return moveCommand{floor: f, subject: subject, dest: dest}, nil
}

// moveCommand переставляет исполнителя и тратит раунд.
// Если then задан, исполнитель переходит в это состояние вместо Ok.
type moveCommand struct {
	floor   *domain.Floor
	subject domain.EntityID
	dest    geometry.Position
	then    func(actor domain.Entity, round uint32) domain.Entity
}

func (c moveCommand) Do() domain.FloorUpdate {
	actor := c.floor.MustEntity(c.subject)
	round := nextRound(actor)

	moved := actor.WithPos(c.dest).WithState(domain.OkState(round + 1))
	if c.then != nil {
		moved = c.then(moved, round)
	}
	return commit(c.floor, []domain.Event{domain.MoveEvent(c.subject, c.dest)}, moved)
}
