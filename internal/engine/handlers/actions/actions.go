// Package actions содержит конкретные действия. Каждое регистрируется
// в реестре domain под своим именем, чтобы стёртые значения
// переживали сериализацию.
package actions

import (
	"fmt"

	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
)

const (
	NameStep         = "step"
	NameBump         = "bump"
	NameStepMacro    = "step_macro"
	NameWait         = "wait"
	NameGoto         = "goto"
	NameForwardHeavy = "forward_heavy"
	NameSweep        = "sweep"
	NameJab          = "jab"
	NameExit         = "exit"
)

// Стёртые экземпляры с параметрами по умолчанию.
var (
	Step         = domain.NewAction(StepAction{})
	Bump         = domain.NewAction(BumpAction{})
	StepMacro    = domain.NewAction(StepMacroAction{})
	Wait         = domain.NewAction(WaitAction{})
	Goto         = domain.NewAction(GotoAction{})
	ForwardHeavy = domain.NewAction(ForwardHeavyAction{})
	Jab          = domain.NewAction(JabAction{})
	Exit         = domain.NewAction(ExitAction{})
)

func init() {
	domain.RegisterAction(NameStep, func() domain.Named { return &StepAction{} })
	domain.RegisterAction(NameBump, func() domain.Named { return &BumpAction{} })
	domain.RegisterAction(NameStepMacro, func() domain.Named { return &StepMacroAction{} })
	domain.RegisterAction(NameWait, func() domain.Named { return &WaitAction{} })
	domain.RegisterAction(NameGoto, func() domain.Named { return &GotoAction{} })
	domain.RegisterAction(NameForwardHeavy, func() domain.Named { return &ForwardHeavyAction{} })
	domain.RegisterAction(NameSweep, func() domain.Named { return &SweepAction{} })
	domain.RegisterAction(NameJab, func() domain.Named { return &JabAction{} })
	domain.RegisterAction(NameExit, func() domain.Named { return &ExitAction{} })
}

// DefaultMoveset - набор приёмов игрового персонажа.
func DefaultMoveset() []domain.Action {
	return []domain.Action{StepMacro, Step, Bump, Wait, Goto, ForwardHeavy, Jab, Exit}
}

// actorOf возвращает исполнителя, если он существует и может действовать.
func actorOf(f *domain.Floor, subject domain.EntityID) (domain.Entity, error) {
	actor, ok := f.Entity(subject)
	if !ok {
		return domain.Entity{}, fmt.Errorf("%w: unknown entity %s", domain.ErrInvalidState, subject)
	}
	if !actor.State.IsActionable() {
		return domain.Entity{}, fmt.Errorf("%w: %s is %s", domain.ErrInvalidState, subject, actor.State.Kind)
	}
	return actor, nil
}

func checkAdjacent(dir geometry.Offset) error {
	if dir.Length() != 1 {
		return fmt.Errorf("%w: direction %v is not a single step", domain.ErrOutOfRange, dir)
	}
	return nil
}

func nextRound(e domain.Entity) uint32 {
	round, _ := e.NextRound()
	return round
}

// commit пишет события действия, затем пакет сущностей.
// События этажа (падение, обзор) идут после событий действия.
func commit(f *domain.Floor, events []domain.Event, batch ...domain.Entity) domain.FloorUpdate {
	return domain.Pure(f).Log(events...).Bind(func(f *domain.Floor) domain.FloorUpdate {
		return f.UpdateEntities(batch...)
	})
}
