package domain

import (
	"lizard-state/internal/geometry"
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Occupiers - индекс клетка -> сущность. Неизменяем.
// На клетке не больше одной сущности, нарушение - паника.
type Occupiers struct {
	byPos map[geometry.Position]EntityID
}

func (o Occupiers) Get(pos geometry.Position) (EntityID, bool) {
	id, ok := o.byPos[pos]
	return id, ok
}

// AddEntity регистрирует сущность, если её состояние занимает клетку.
func (o Occupiers) AddEntity(e Entity) Occupiers {
	if !e.OccupiesTile() {
		return o
	}
	next := o.clone()
	next.insert(e)
	return next
}

// UpdateEntities сначала освобождает все старые клетки пакета, затем
// занимает новые. Так сущности пакета могут меняться местами.
func (o Occupiers) UpdateEntities(old, updated []Entity) Occupiers {
	next := o.clone()
	for _, e := range old {
		if !e.OccupiesTile() {
			continue
		}
		if id, ok := next.byPos[e.Pos]; !ok || id != e.ID {
			logger.Log.WithFields(logrus.Fields{
				"component": "occupiers",
				"entity_id": e.ID,
				"pos":       e.Pos,
			}).Panic("Occupancy index out of sync with entity.")
		}
		delete(next.byPos, e.Pos)
	}
	for _, e := range updated {
		if e.OccupiesTile() {
			next.insert(e)
		}
	}
	return next
}

func (o Occupiers) clone() Occupiers {
	next := make(map[geometry.Position]EntityID, len(o.byPos)+1)
	for pos, id := range o.byPos {
		next[pos] = id
	}
	return Occupiers{byPos: next}
}

func (o Occupiers) insert(e Entity) {
	if other, taken := o.byPos[e.Pos]; taken {
		logger.Log.WithFields(logrus.Fields{
			"component": "occupiers",
			"pos":       e.Pos,
			"entity_id": e.ID,
			"occupant":  other,
		}).Panic("Tile is already occupied.")
	}
	o.byPos[e.Pos] = e.ID
}
