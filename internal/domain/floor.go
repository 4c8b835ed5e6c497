package domain

import (
	"lizard-state/internal/geometry"
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Floor - неизменяемый снимок состояния игры. Любое изменение возвращает
// новый *Floor; старые снимки остаются валидными и их можно читать параллельно.
type Floor struct {
	entities  EntitySet
	occupiers Occupiers
	floorMap  *FloorMap
	downing   *DownedStateMutator
	vision    *VisionState
}

// NewFloor - пустой этаж на открытой карте, без падения и без обзора.
func NewFloor() *Floor {
	return &Floor{floorMap: OpenFloorMap()}
}

func (f *Floor) clone() *Floor {
	next := *f
	return &next
}

// --- ЗАПРОСЫ ---

func (f *Floor) Map() *FloorMap                    { return f.floorMap }
func (f *Floor) Vision() *VisionState              { return f.vision }
func (f *Floor) DowningEnabled() bool              { return f.downing != nil }
func (f *Floor) Entities() []Entity                { return f.entities.All() }
func (f *Floor) EntityCount() int                  { return f.entities.Len() }
func (f *Floor) Entity(id EntityID) (Entity, bool) { return f.entities.Get(id) }

// MustEntity - для id, полученных с этого же этажа.
func (f *Floor) MustEntity(id EntityID) Entity {
	e, ok := f.entities.Get(id)
	if !ok {
		logger.Log.WithFields(logrus.Fields{
			"component": "floor",
			"entity_id": id,
		}).Panic("Unknown entity.")
	}
	return e
}

// Occupant возвращает сущность, занимающую клетку.
func (f *Floor) Occupant(pos geometry.Position) (Entity, bool) {
	id, ok := f.occupiers.Get(pos)
	if !ok {
		return Entity{}, false
	}
	return f.entities.Get(id)
}

// IsTileFree - по клетке можно ходить и она не занята.
func (f *Floor) IsTileFree(pos geometry.Position) bool {
	if !f.floorMap.IsWalkable(pos) {
		return false
	}
	_, taken := f.occupiers.Get(pos)
	return !taken
}

// --- НАСТРОЙКА ---

// SetMap меняет карту. Ни одна занимающая клетку сущность не должна стоять в стене.
func (f *Floor) SetMap(m *FloorMap) *Floor {
	for _, e := range f.entities.entities {
		assertStandable(m, e)
	}
	next := f.clone()
	next.floorMap = m
	return next
}

// WithDowning включает перевод сущностей с нулевым здоровьем в Downed.
func (f *Floor) WithDowning() *Floor {
	next := f.clone()
	next.downing = &DownedStateMutator{}
	return next
}

// WithVision включает обзор для дружественных игроку сущностей и сразу
// вычисляет его.
func (f *Floor) WithVision(radius int) FloorUpdate {
	next := f.clone()
	next.vision = NewVisionState(radius)
	var events []Event
	next.vision, events = next.vision.update(next.entities, next.floorMap)
	return FloorUpdate{Floor: next, Events: events}
}

// --- ИЗМЕНЕНИЯ ---

// AddEntity добавляет сущность со следующим id.
func (f *Floor) AddEntity(e Entity) (FloorUpdate, EntityID) {
	entities, id := f.entities.Add(e)
	added, _ := entities.Get(id)
	assertStandable(f.floorMap, added)

	next := f.clone()
	next.entities = entities
	next.occupiers = f.occupiers.AddEntity(added)

	var events []Event
	if next.vision != nil {
		next.vision, events = next.vision.update(next.entities, next.floorMap)
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "floor",
		"entity_id": id,
		"pos":       added.Pos,
	}).Debug("Entity added.")

	return FloorUpdate{Floor: next, Events: events}, id
}

func (f *Floor) UpdateEntity(e Entity) FloorUpdate {
	return f.UpdateEntities(e)
}

// UpdateEntities атомарно записывает пакет сущностей. Занятость клеток,
// падение и обзор пересчитываются один раз для всего пакета, поэтому
// сущности пакета могут меняться местами.
func (f *Floor) UpdateEntities(batch ...Entity) FloorUpdate {
	if len(batch) == 0 {
		return Pure(f)
	}

	// 1. Пакет должен ссылаться на существующие и неповторяющиеся id.
	old := make([]Entity, len(batch))
	seen := make(map[EntityID]bool, len(batch))
	for i, e := range batch {
		if seen[e.ID] {
			logger.Log.WithFields(logrus.Fields{
				"component": "floor",
				"entity_id": e.ID,
			}).Panic("Entity appears twice in one update batch.")
		}
		seen[e.ID] = true
		old[i] = f.MustEntity(e.ID)
	}

	// 2. Падение применяется до пересчёта занятости: Downed клетку не занимает.
	updated := append([]Entity(nil), batch...)
	var events []Event
	if f.downing != nil {
		events = f.downing.apply(updated)
	}

	next := f.clone()
	next.entities = f.entities.Overwrite(updated)

	// 3. Занятость по сохранённым значениям.
	stored := make([]Entity, len(updated))
	for i, e := range updated {
		stored[i] = next.entities.entities[e.ID]
		assertStandable(f.floorMap, stored[i])
	}
	next.occupiers = f.occupiers.UpdateEntities(old, stored)

	if f.downing != nil && f.EndState() != EndAllyDowned && next.EndState() == EndAllyDowned {
		logger.Log.WithField("component", "floor").Info("Mission failed: every ally is down.")
		events = append(events, MissionFailedEvent())
	}

	// 4. Обзор.
	if next.vision != nil {
		var seeMap []Event
		next.vision, seeMap = next.vision.update(next.entities, next.floorMap)
		events = append(events, seeMap...)
	}

	return FloorUpdate{Floor: next, Events: events}
}

func assertStandable(m *FloorMap, e Entity) {
	if e.OccupiesTile() && !m.IsWalkable(e.Pos) {
		logger.Log.WithFields(logrus.Fields{
			"component": "floor",
			"entity_id": e.ID,
			"pos":       e.Pos,
		}).Panic("Entity occupies a wall tile.")
	}
}

// --- ИТОГ ---

// EndState - итог миссии.
type EndState uint8

const (
	EndUndetermined EndState = iota
	// EndAllyDowned: каждый союзник выбыл или вышел, и хотя бы один выбыл.
	// Пока кто-то из союзников ещё действует, итог не определён: оставшиеся
	// могут дойти до лестницы.
	EndAllyDowned
	EndAllExited
)

func (s EndState) String() string {
	switch s {
	case EndAllyDowned:
		return "ALLY_DOWNED"
	case EndAllExited:
		return "ALL_EXITED"
	}
	return "UNDETERMINED"
}

func (s EndState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EndState не определён, пока хоть один союзник игрока не в терминальном
// состоянии. Иначе: все вышли - победа, кто-то выбыл - поражение.
func (f *Floor) EndState() EndState {
	friendlies, exited := 0, 0
	for _, e := range f.entities.entities {
		if !e.IsPlayerFriendly {
			continue
		}
		friendlies++
		if !e.State.IsTerminal() {
			return EndUndetermined
		}
		if e.State.Kind == StateExited {
			exited++
		}
	}
	switch {
	case friendlies == 0:
		return EndUndetermined
	case exited == friendlies:
		return EndAllExited
	}
	return EndAllyDowned
}
