// Package strategy - поведение NPC. Стратегия выбирает намерение из набора
// приёмов сущности и проверяет его теми же правилами, что и для игрока.
package strategy

import (
	"lizard-state/internal/domain"
	"lizard-state/internal/engine/handlers/actions"
	"lizard-state/internal/geometry"
	"lizard-state/internal/systems"
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
)

const (
	NameNull          = "null"
	NameStandAndFight = "stand_and_fight"
	NameRush          = "rush"

	// DefaultAggroRadius - дальше этого NPC цель не преследует.
	DefaultAggroRadius = 8
)

func init() {
	domain.RegisterStrategy(NameNull, func() domain.StrategyImpl { return &NullStrategy{} })
	domain.RegisterStrategy(NameStandAndFight, func() domain.StrategyImpl { return &StandAndFightStrategy{} })
	domain.RegisterStrategy(NameRush, func() domain.StrategyImpl { return &RushStrategy{} })
}

// NullStrategy всегда ждёт.
type NullStrategy struct{}

func (NullStrategy) StrategyName() string { return NameNull }

func (NullStrategy) TakeTurn(f *domain.Floor, subject domain.EntityID) domain.FloorUpdate {
	return attempt(f, subject, wait())
}

// StandAndFightStrategy бьёт соседних врагов и никуда не ходит.
type StandAndFightStrategy struct{}

func (StandAndFightStrategy) StrategyName() string { return NameStandAndFight }

func (StandAndFightStrategy) TakeTurn(f *domain.Floor, subject domain.EntityID) domain.FloorUpdate {
	self := f.MustEntity(subject)
	if target, ok := nearestHostile(f, self, 1); ok {
		dir := target.Pos.Sub(self.Pos)
		return attempt(f, subject, directed(actions.NameBump, dir), directed(actions.NameJab, dir), wait())
	}
	return attempt(f, subject, wait())
}

// RushStrategy преследует ближайшего видимого врага.
//
//  1. Незавершённое ConfirmCommand повторяется, если ещё допустимо.
//  2. Враг рядом - удар.
//  3. Враг через клетку по прямой и есть энергия - рывок с замахом.
//  4. Иначе шаг по кратчайшему пути, затем жадный шаг.
//  5. Ничего не вышло - ожидание.
type RushStrategy struct {
	AggroRadius int `json:"aggroRadius,omitempty"`
}

func (RushStrategy) StrategyName() string { return NameRush }

func (s RushStrategy) TakeTurn(f *domain.Floor, subject domain.EntityID) domain.FloorUpdate {
	self := f.MustEntity(subject)
	aiLogger := logger.Log.WithFields(logrus.Fields{
		"component": "ai_system",
		"entity_id": subject,
		"strategy":  NameRush,
	})

	if self.State.Kind == domain.StateConfirmCommand && self.State.Queued != nil {
		if cmd, err := self.State.Queued.Verify(f, subject); err == nil {
			aiLogger.Debug("Confirming queued command.")
			return cmd.Do()
		}
	}

	radius := s.AggroRadius
	if radius <= 0 {
		radius = DefaultAggroRadius
	}
	target, ok := nearestHostile(f, self, radius)
	if !ok {
		aiLogger.Debug("No visible target. Action: WAIT")
		return attempt(f, subject, wait())
	}

	dist := geometry.Distance(self.Pos, target.Pos)
	dir := self.Pos.DirectionTo(target.Pos)
	aiLogger.WithFields(logrus.Fields{
		"target":   target.ID,
		"distance": dist,
	}).Debug("Target acquired.")

	var intents []domain.Intent
	switch {
	case dist == 1:
		intents = append(intents, directed(actions.NameBump, dir), directed(actions.NameJab, dir))
	case dist == 2 && target.Pos.Sub(self.Pos) == dir.Scale(2):
		intents = append(intents, directed(actions.NameForwardHeavy, dir))
	}
	if step, ok := pathStep(f, self.Pos, target.Pos); ok {
		intents = append(intents, directed(actions.NameStep, step.Sub(self.Pos)))
	}
	intents = append(intents, directed(actions.NameStep, dir))
	intents = append(intents, slideSteps(target.Pos.Sub(self.Pos))...)
	intents = append(intents, wait())

	return attempt(f, subject, intents...)
}

// attempt выполняет первое намерение, которое есть в наборе приёмов
// и проходит проверку. Если ни одно не подошло, ход пропускается.
func attempt(f *domain.Floor, subject domain.EntityID, intents ...domain.Intent) domain.FloorUpdate {
	self := f.MustEntity(subject)
	for _, intent := range intents {
		action, ok := self.HasMove(intent.Action.Name())
		if !ok {
			continue
		}
		cmd, err := action.Verify(f, subject, intent.Target)
		if err != nil {
			continue
		}
		return cmd.Do()
	}
	return domain.Forfeit(f, subject)
}

// nearestHostile ищет ближайшего стоящего врага в радиусе и в прямой видимости.
// При равенстве расстояний выигрывает меньший id.
func nearestHostile(f *domain.Floor, self domain.Entity, radius int) (domain.Entity, bool) {
	var (
		best     domain.Entity
		bestDist int
		found    bool
	)
	for _, other := range f.Entities() {
		if other.ID == self.ID || !self.IsHostileTo(other) || !other.OccupiesTile() {
			continue
		}
		dist := geometry.Distance(self.Pos, other.Pos)
		if dist > radius || (found && dist >= bestDist) {
			continue
		}
		if !systems.HasLineOfSight(f.Map().IsOpaque, self.Pos, other.Pos) {
			continue
		}
		best, bestDist, found = other, dist, true
	}
	return best, found
}

func pathStep(f *domain.Floor, from, to geometry.Position) (geometry.Position, bool) {
	paths := f.Map().Pathfinder()
	if !paths.FindPath(from, to) {
		return geometry.Position{}, false
	}
	return paths.GetStep(from, to)
}

// slideSteps - шаги вдоль одной оси, начиная с преобладающей.
func slideSteps(delta geometry.Offset) []domain.Intent {
	step := delta.Sign()
	alongX := directed(actions.NameStep, geometry.Off(step.X, 0))
	alongY := directed(actions.NameStep, geometry.Off(0, step.Y))

	var out []domain.Intent
	xFirst := abs(delta.X) > abs(delta.Y)
	if xFirst && step.X != 0 {
		out = append(out, alongX)
	}
	if step.Y != 0 {
		out = append(out, alongY)
	}
	if !xFirst && step.X != 0 {
		out = append(out, alongX)
	}
	return out
}

func directed(name string, dir geometry.Offset) domain.Intent {
	return domain.Intent{Action: named(name), Target: domain.DirectionTarget(dir)}
}

func wait() domain.Intent {
	return domain.Intent{Action: actions.Wait, Target: domain.NoTarget()}
}

// named - стёртое действие по имени; неизвестное имя даёт пустое действие,
// которое attempt пропустит.
func named(name string) domain.Action {
	a, err := domain.LookupAction(name)
	if err != nil {
		return domain.Action{}
	}
	return a
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
