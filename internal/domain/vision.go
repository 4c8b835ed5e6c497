package domain

import (
	"sort"

	"lizard-state/internal/geometry"
	"lizard-state/internal/systems"

	"github.com/zyedidia/generic/mapset"
)

// VisionState - что видели дружественные игроку наблюдатели.
// Неизменяем: множества внутри не меняются после публикации.
type VisionState struct {
	radius    int
	observers map[EntityID]observation
	lastSeen  map[geometry.Position]uint32
}

type observation struct {
	pos      geometry.Position
	visible  mapset.Set[geometry.Position]
	revealed mapset.Set[geometry.Position]
}

func NewVisionState(radius int) *VisionState {
	return &VisionState{
		radius:    radius,
		observers: make(map[EntityID]observation),
		lastSeen:  make(map[geometry.Position]uint32),
	}
}

func (v *VisionState) Radius() int { return v.radius }

// IsRevealed - клетка хоть раз попадала в обзор наблюдателя.
func (v *VisionState) IsRevealed(observer EntityID, pos geometry.Position) bool {
	obs, ok := v.observers[observer]
	return ok && obs.revealed.Has(pos)
}

// IsVisible - клетка в текущем обзоре хотя бы одного наблюдателя.
func (v *VisionState) IsVisible(pos geometry.Position) bool {
	for _, obs := range v.observers {
		if obs.visible.Has(pos) {
			return true
		}
	}
	return false
}

// Revealed возвращает открытые наблюдателем клетки, отсортированные по (y, x).
func (v *VisionState) Revealed(observer EntityID) []geometry.Position {
	obs, ok := v.observers[observer]
	if !ok {
		return nil
	}
	return sortedPositions(obs.revealed)
}

// LastSeen - раунд, когда клетку последний раз видел кто-то из наблюдателей.
// Позволяет понять, насколько устарели сведения о ней.
func (v *VisionState) LastSeen(pos geometry.Position) (uint32, bool) {
	r, ok := v.lastSeen[pos]
	return r, ok
}

// update пересчитывает обзор тех наблюдателей, чья позиция изменилась
// с прошлого наблюдения. Возвращает тот же указатель, если ничего не поменялось.
func (v *VisionState) update(entities EntitySet, m *FloorMap) (*VisionState, []Event) {
	var (
		next   *VisionState
		events []Event
	)

	for _, e := range entities.entities {
		if !e.IsPlayerFriendly || e.State.IsTerminal() {
			continue
		}
		prev, seen := v.observers[e.ID]
		if seen && prev.pos == e.Pos {
			continue
		}

		if next == nil {
			next = v.clone()
		}

		visible := systems.ComputeVisibleTiles(e.Pos, v.radius, m.IsOpaque)
		revealed := mapset.New[geometry.Position]()
		if seen {
			prev.revealed.Each(revealed.Put)
		}

		round, _ := e.NextRound()
		var fresh []geometry.Position
		visible.Each(func(p geometry.Position) {
			if !revealed.Has(p) {
				fresh = append(fresh, p)
				revealed.Put(p)
			}
			next.lastSeen[p] = round
		})

		next.observers[e.ID] = observation{pos: e.Pos, visible: visible, revealed: revealed}
		if len(fresh) > 0 {
			sortPositions(fresh)
			events = append(events, SeeMapEvent(e.ID, fresh))
		}
	}

	if next == nil {
		return v, nil
	}
	return next, events
}

func (v *VisionState) clone() *VisionState {
	next := &VisionState{
		radius:    v.radius,
		observers: make(map[EntityID]observation, len(v.observers)),
		lastSeen:  make(map[geometry.Position]uint32, len(v.lastSeen)),
	}
	for id, obs := range v.observers {
		next.observers[id] = obs
	}
	for pos, r := range v.lastSeen {
		next.lastSeen[pos] = r
	}
	return next
}

func sortedPositions(set mapset.Set[geometry.Position]) []geometry.Position {
	out := make([]geometry.Position, 0, set.Size())
	set.Each(func(p geometry.Position) { out = append(out, p) })
	sortPositions(out)
	return out
}

func sortPositions(ps []geometry.Position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}
