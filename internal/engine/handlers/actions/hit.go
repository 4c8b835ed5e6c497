package actions

import (
	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
)

const (
	// KnockdownRounds - сколько раундов сбитая сущность лежит.
	KnockdownRounds = 2
	// HitstunRounds - длительность оглушения от лёгких ударов.
	HitstunRounds = 2
)

type hitEffect uint8

const (
	effectKnockback hitEffect = iota
	effectHitstun
)

// hit описывает удар. Для effectKnockback важны dir и distance,
// для effectHitstun - extensions.
type hit struct {
	damage     int
	effect     hitEffect
	dir        geometry.Offset
	distance   int
	extensions uint32
}

// resolveHit применяет удар к цели. Возвращает изменённые сущности
// (цель и, возможно, та, в которую её отбросило) и события.
//
// Порядок приоритетов:
//  1. Цель в Hitstun - жонглирование: продление или, без продлений, сбивание.
//  2. Цель в Committed - контрудар, сбивание.
//  3. Цель уже лежит - только урон.
//  4. Иначе - собственный эффект удара.
func resolveHit(f *domain.Floor, attacker, target domain.Entity, h hit, round uint32) ([]domain.Entity, []domain.Event) {
	events := []domain.Event{domain.AttackHitEvent(attacker.ID, target.ID, h.damage)}
	target.Health -= h.damage

	knockdownAt := max(nextRound(target), round+KnockdownRounds)

	switch target.State.Kind {
	case domain.StateHitstun:
		if target.State.Extensions > 0 {
			target.State = domain.HitstunState(target.State.NextRound+1, target.State.Extensions-1)
			return []domain.Entity{target}, append(events, domain.JuggleHitEvent(target.ID))
		}
		target.State = domain.KnockdownState(knockdownAt)
		return []domain.Entity{target}, append(events,
			domain.JuggleLimitEvent(target.ID),
			domain.KnockdownEvent(target.ID))

	case domain.StateCommitted:
		target.State = domain.KnockdownState(knockdownAt)
		return []domain.Entity{target}, append(events, domain.KnockdownEvent(target.ID))

	case domain.StateKnockdown:
		return []domain.Entity{target}, events
	}

	if h.effect == effectHitstun {
		target.State = domain.HitstunState(max(nextRound(target), round+HitstunRounds), h.extensions)
		return []domain.Entity{target}, events
	}

	// Отбрасывание до первой стены или сущности.
	landing := target.Pos
	var collided *domain.Entity
	for i := 0; i < h.distance; i++ {
		next := landing.Add(h.dir)
		if !f.Map().IsWalkable(next) {
			break
		}
		if other, taken := f.Occupant(next); taken && other.ID != target.ID {
			collided = &other
			break
		}
		landing = next
	}

	if landing != target.Pos {
		target.Pos = landing
		events = append(events, domain.KnockbackEvent(target.ID, landing))
	}
	target.State = domain.KnockdownState(knockdownAt)
	events = append(events, domain.KnockdownEvent(target.ID))
	updated := []domain.Entity{target}

	if collided != nil && collided.ID != attacker.ID {
		other := *collided
		other.State = domain.KnockdownState(max(nextRound(other), round+KnockdownRounds))
		events = append(events, domain.KnockdownEvent(other.ID))
		updated = append(updated, other)
	}
	return updated, events
}

// occupantAt - цель удара на клетке, кроме самого атакующего.
func occupantAt(f *domain.Floor, pos geometry.Position, attacker domain.EntityID) (domain.Entity, bool) {
	e, ok := f.Occupant(pos)
	if !ok || e.ID == attacker {
		return domain.Entity{}, false
	}
	return e, true
}
