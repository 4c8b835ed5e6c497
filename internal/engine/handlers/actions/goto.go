package actions

import (
	"fmt"

	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
)

// GotoAction делает один шаг по кратчайшему пути к клетке и, если цель
// не достигнута, предлагает повторить себя через ConfirmCommand.
type GotoAction struct{}

func (GotoAction) ActionName() string { return NameGoto }

func (GotoAction) VerifyTile(f *domain.Floor, subject domain.EntityID, tile geometry.Position) (domain.Command, error) {
	actor, err := actorOf(f, subject)
	if err != nil {
		return nil, err
	}
	if tile == actor.Pos {
		return nil, fmt.Errorf("%w: already at %v", domain.ErrInvalidTarget, tile)
	}
	if !f.Map().IsWalkable(tile) {
		return nil, fmt.Errorf("%w: %v is not walkable", domain.ErrInvalidTarget, tile)
	}

	paths := f.Map().Pathfinder()
	if !paths.FindPath(actor.Pos, tile) {
		return nil, fmt.Errorf("%w: no path to %v", domain.ErrOutOfRange, tile)
	}
	step, ok := paths.GetStep(actor.Pos, tile)
	if !ok {
		return nil, fmt.Errorf("%w: no path to %v", domain.ErrOutOfRange, tile)
	}
	if other, taken := f.Occupant(step); taken {
		return nil, fmt.Errorf("%w: path blocked by %s", domain.ErrInvalidTarget, other.ID)
	}

	return moveCommand{
		floor:   f,
		subject: subject,
		dest:    step,
		then: func(actor domain.Entity, round uint32) domain.Entity {
			if step == tile {
				return actor
			}
			return actor.WithState(domain.ConfirmCommandState(round+1, domain.Intent{
				Action: Goto,
				Target: domain.TileTarget(tile),
			}))
		},
	}, nil
}
