package domain

// FloorUpdate - новый этаж вместе с упорядоченным журналом событий,
// которые к нему привели.
type FloorUpdate struct {
	Floor  *Floor
	Events []Event
}

// Pure оборачивает этаж без событий.
func Pure(f *Floor) FloorUpdate {
	return FloorUpdate{Floor: f}
}

// Log дописывает события в журнал.
func (u FloorUpdate) Log(events ...Event) FloorUpdate {
	out := make([]Event, 0, len(u.Events)+len(events))
	out = append(out, u.Events...)
	out = append(out, events...)
	return FloorUpdate{Floor: u.Floor, Events: out}
}

// Bind применяет следующий шаг к текущему этажу и склеивает журналы
// в порядке вызова.
func (u FloorUpdate) Bind(step func(*Floor) FloorUpdate) FloorUpdate {
	next := step(u.Floor)
	return FloorUpdate{Floor: next.Floor, Events: append(append([]Event(nil), u.Events...), next.Events...)}
}

// Unpack нужен там, где удобнее два значения.
func (u FloorUpdate) Unpack() (*Floor, []Event) {
	return u.Floor, u.Events
}
