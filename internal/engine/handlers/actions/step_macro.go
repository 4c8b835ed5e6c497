package actions

import (
	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
)

// StepMacroAction - "движение в сторону": ударить врага, иначе шагнуть,
// иначе ничего не делать.
type StepMacroAction struct{}

func (StepMacroAction) ActionName() string { return NameStepMacro }

func (StepMacroAction) VerifyDirection(f *domain.Floor, subject domain.EntityID, dir geometry.Offset) (domain.Command, error) {
	actor, err := actorOf(f, subject)
	if err != nil {
		return nil, err
	}
	if err := checkAdjacent(dir); err != nil {
		return nil, err
	}

	if other, ok := occupantAt(f, actor.Pos.Add(dir), subject); ok && actor.IsHostileTo(other) {
		if cmd, err := (BumpAction{}).VerifyDirection(f, subject, dir); err == nil {
			return cmd, nil
		}
	}
	if cmd, err := (StepAction{}).VerifyDirection(f, subject, dir); err == nil {
		return cmd, nil
	}
	return domain.CommandFunc(func() domain.FloorUpdate { return domain.Pure(f) }), nil
}
