package actions

import (
	"fmt"

	"lizard-state/internal/domain"
)

// ExitAction - покинуть этаж, стоя на лестнице.
type ExitAction struct{}

func (ExitAction) ActionName() string { return NameExit }

func (ExitAction) Verify(f *domain.Floor, subject domain.EntityID) (domain.Command, error) {
	actor, err := actorOf(f, subject)
	if err != nil {
		return nil, err
	}
	if f.Map().TileAt(actor.Pos) != domain.TileStairs {
		return nil, fmt.Errorf("%w: no stairs at %v", domain.ErrInvalidFloor, actor.Pos)
	}
	return domain.CommandFunc(func() domain.FloorUpdate {
		actor := f.MustEntity(subject)
		return commit(f, []domain.Event{domain.ExitEvent(subject)}, actor.WithState(domain.ExitedState()))
	}), nil
}
