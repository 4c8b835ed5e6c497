package domain

import (
	"fmt"
	"strings"

	"lizard-state/internal/geometry"
)

// EventType - Внутренний числовой идентификатор события
type EventType uint8

const (
	EventUnknown EventType = iota
	EventMove
	EventStartAttack
	EventAttackHit
	EventKnockback
	EventKnockdown
	EventSeeMap
	EventMissionFailed
	EventDowned
	EventExit
	EventWakeup
	EventJuggleHit
	EventJuggleLimit
)

// Маппинг для логов Domain -> String
var eventTypeToString = map[EventType]string{
	EventMove:          "MOVE",
	EventStartAttack:   "START_ATTACK",
	EventAttackHit:     "ATTACK_HIT",
	EventKnockback:     "KNOCKBACK",
	EventKnockdown:     "KNOCKDOWN",
	EventSeeMap:        "SEE_MAP",
	EventMissionFailed: "MISSION_FAILED",
	EventDowned:        "DOWNED",
	EventExit:          "EXIT",
	EventWakeup:        "WAKEUP",
	EventJuggleHit:     "JUGGLE_HIT",
	EventJuggleLimit:   "JUGGLE_LIMIT",
}

// Маппинг для конвертации JSON -> Domain
var stringToEventType = func() map[string]EventType {
	m := make(map[string]EventType, len(eventTypeToString))
	for k, v := range eventTypeToString {
		m[v] = k
	}
	return m
}()

// ParseEventType конвертирует строку в EventType
func ParseEventType(s string) EventType {
	if val, ok := stringToEventType[strings.ToUpper(s)]; ok {
		return val
	}
	return EventUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (t EventType) String() string {
	if val, ok := eventTypeToString[t]; ok {
		return val
	}
	return "UNKNOWN"
}

func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *EventType) UnmarshalText(text []byte) error {
	parsed := ParseEventType(string(text))
	if parsed == EventUnknown {
		return fmt.Errorf("unknown event type %q", text)
	}
	*t = parsed
	return nil
}

// Event - неизменяемая запись о случившемся на этаже.
// Какие поля заполнены, зависит от Type:
//
//	MOVE          Subject, Tile (куда)
//	START_ATTACK  Subject, Tile (цель атаки)
//	ATTACK_HIT    Subject, Target, Damage
//	KNOCKBACK     Subject (кого отбросило), Tile (куда)
//	KNOCKDOWN     Subject
//	SEE_MAP       Subject, Tiles (впервые увиденные)
//	DOWNED, EXIT, WAKEUP, JUGGLE_HIT, JUGGLE_LIMIT  Subject
//	MISSION_FAILED  без полей
type Event struct {
	Type    EventType           `json:"type"`
	Subject EntityID            `json:"subject"`
	Target  EntityID            `json:"target,omitempty"`
	Tile    geometry.Position   `json:"tile"`
	Damage  int                 `json:"damage,omitempty"`
	Tiles   []geometry.Position `json:"tiles,omitempty"`
}

func MoveEvent(subject EntityID, tile geometry.Position) Event {
	return Event{Type: EventMove, Subject: subject, Tile: tile}
}

func StartAttackEvent(subject EntityID, tile geometry.Position) Event {
	return Event{Type: EventStartAttack, Subject: subject, Tile: tile}
}

func AttackHitEvent(subject, target EntityID, damage int) Event {
	return Event{Type: EventAttackHit, Subject: subject, Target: target, Damage: damage}
}

func KnockbackEvent(subject EntityID, tile geometry.Position) Event {
	return Event{Type: EventKnockback, Subject: subject, Tile: tile}
}

func KnockdownEvent(subject EntityID) Event {
	return Event{Type: EventKnockdown, Subject: subject}
}

func SeeMapEvent(subject EntityID, tiles []geometry.Position) Event {
	return Event{Type: EventSeeMap, Subject: subject, Tiles: tiles}
}

func MissionFailedEvent() Event {
	return Event{Type: EventMissionFailed}
}

func DownedEvent(subject EntityID) Event {
	return Event{Type: EventDowned, Subject: subject}
}

func ExitEvent(subject EntityID) Event {
	return Event{Type: EventExit, Subject: subject}
}

func WakeupEvent(subject EntityID) Event {
	return Event{Type: EventWakeup, Subject: subject}
}

func JuggleHitEvent(subject EntityID) Event {
	return Event{Type: EventJuggleHit, Subject: subject}
}

func JuggleLimitEvent(subject EntityID) Event {
	return Event{Type: EventJuggleLimit, Subject: subject}
}

func (e Event) String() string {
	switch e.Type {
	case EventMove, EventStartAttack, EventKnockback:
		return fmt.Sprintf("%s %s %s", e.Type, e.Subject, e.Tile)
	case EventAttackHit:
		return fmt.Sprintf("%s %s->%s (%d)", e.Type, e.Subject, e.Target, e.Damage)
	case EventSeeMap:
		return fmt.Sprintf("%s %s +%d tiles", e.Type, e.Subject, len(e.Tiles))
	case EventMissionFailed:
		return e.Type.String()
	}
	return fmt.Sprintf("%s %s", e.Type, e.Subject)
}

// EventsOfType отбирает события одного типа, сохраняя порядок.
func EventsOfType(events []Event, t EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
