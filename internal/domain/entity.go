package domain

import "lizard-state/internal/geometry"

// Entity - участник на этаже. Простое значение: любое изменение - это
// новая копия, записанная обратно через Floor.UpdateEntities.
//
// Revision защищает от записи копии, снятой с устаревшего снимка.
type Entity struct {
	ID       EntityID          `json:"id"`
	Revision uint32            `json:"revision"`
	State    EntityState       `json:"state"`
	Pos      geometry.Position `json:"pos"`

	Health    int `json:"health"`
	Energy    int `json:"energy"`
	MaxEnergy int `json:"maxEnergy"`

	Moveset  []Action `json:"moveset"`
	Strategy Strategy `json:"strategy"`

	IsPlayerControlled bool `json:"isPlayerControlled"`
	IsPlayerFriendly   bool `json:"isPlayerFriendly"`

	// Payload - произвольная строка для UI (имя, спрайт).
	Payload string `json:"payload,omitempty"`
}

// NextRound - раунд следующего хода; false для терминальных состояний.
func (e Entity) NextRound() (uint32, bool) {
	return e.State.Round()
}

func (e Entity) OccupiesTile() bool {
	return e.State.OccupiesTile()
}

// IsHostileTo - сущности из разных лагерей.
func (e Entity) IsHostileTo(other Entity) bool {
	return e.IsPlayerFriendly != other.IsPlayerFriendly
}

// HasMove ищет действие в наборе приёмов по имени.
func (e Entity) HasMove(name string) (Action, bool) {
	for _, a := range e.Moveset {
		if a.Name() == name {
			return a, true
		}
	}
	return Action{}, false
}

// WithState - копия с новым состоянием.
func (e Entity) WithState(s EntityState) Entity {
	e.State = s
	return e
}

// WithPos - копия с новой позицией.
func (e Entity) WithPos(p geometry.Position) Entity {
	e.Pos = p
	return e
}
