package domain

import (
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
)

// EntitySet - только дополняемая упорядоченная коллекция, индекс - EntityID.
// Значение неизменяемо: Add и Overwrite возвращают новый набор.
type EntitySet struct {
	entities []Entity
}

func (s EntitySet) Len() int { return len(s.entities) }

func (s EntitySet) Get(id EntityID) (Entity, bool) {
	if int(id) >= len(s.entities) {
		return Entity{}, false
	}
	return s.entities[id], true
}

// All возвращает копию всех сущностей в порядке id.
func (s EntitySet) All() []Entity {
	return append([]Entity(nil), s.entities...)
}

// Add присваивает следующий id.
func (s EntitySet) Add(e Entity) (EntitySet, EntityID) {
	id := EntityID(len(s.entities))
	e.ID = id
	e.Revision = 0

	next := make([]Entity, len(s.entities), len(s.entities)+1)
	copy(next, s.entities)
	return EntitySet{entities: append(next, e)}, id
}

// Overwrite заменяет сущности по id. Каждая запись должна нести ревизию
// хранимого значения; сохранённая копия получает Revision+1.
func (s EntitySet) Overwrite(batch []Entity) EntitySet {
	next := make([]Entity, len(s.entities))
	copy(next, s.entities)

	for _, e := range batch {
		if int(e.ID) >= len(next) {
			logger.Log.WithFields(logrus.Fields{
				"component": "entity_set",
				"entity_id": e.ID,
				"size":      len(next),
			}).Panic("Entity id out of range.")
		}
		if stored := next[e.ID]; stored.Revision != e.Revision {
			logger.Log.WithFields(logrus.Fields{
				"component":       "entity_set",
				"entity_id":       e.ID,
				"stored_revision": stored.Revision,
				"batch_revision":  e.Revision,
			}).Panic("Update batch does not match the snapshot it was derived from.")
		}
		e.Revision++
		next[e.ID] = e
	}
	return EntitySet{entities: next}
}
