package domain

// DownedStateMutator переводит сущности с нулевым или отрицательным
// здоровьем в Downed. Наличие мутатора на этаже включает правило.
type DownedStateMutator struct{}

// apply меняет пакет на месте и возвращает события Downed.
func (DownedStateMutator) apply(batch []Entity) []Event {
	var events []Event
	for i, e := range batch {
		if e.Health > 0 || e.State.IsTerminal() {
			continue
		}
		round, _ := e.NextRound()
		batch[i].State = DownedState(round)
		events = append(events, DownedEvent(e.ID))
	}
	return events
}
