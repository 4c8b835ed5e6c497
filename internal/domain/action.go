package domain

import (
	"encoding/json"
	"fmt"

	"lizard-state/internal/geometry"
)

// Command - проверенный эффект. Выполнение не может провалиться;
// ошибка внутри Do - это баг и приводит к панике.
// Команда выполняется не более одного раза.
type Command interface {
	Do() FloorUpdate
}

// CommandFunc позволяет использовать замыкание как Command.
type CommandFunc func() FloorUpdate

func (fn CommandFunc) Do() FloorUpdate { return fn() }

// Named - общее для всех конкретных действий.
type Named interface {
	ActionName() string
}

// Интерфейсы возможностей. Конкретное действие реализует ровно один из них.
type (
	UntargetedAction interface {
		Named
		Verify(f *Floor, subject EntityID) (Command, error)
	}
	TileAction interface {
		Named
		VerifyTile(f *Floor, subject EntityID, tile geometry.Position) (Command, error)
	}
	DirectionAction interface {
		Named
		VerifyDirection(f *Floor, subject EntityID, dir geometry.Offset) (Command, error)
	}
	// InfallibleAction не требует проверки: команду можно построить всегда.
	InfallibleAction interface {
		Named
		Command(f *Floor, subject EntityID) Command
	}
)

// ActionKind - какую возможность несёт стёртое действие.
type ActionKind uint8

const (
	KindUntargeted ActionKind = iota
	KindTile
	KindDirection
	KindInfallible
)

func (k ActionKind) String() string {
	switch k {
	case KindUntargeted:
		return "untargeted"
	case KindTile:
		return "tile"
	case KindDirection:
		return "direction"
	case KindInfallible:
		return "infallible"
	}
	return "unknown"
}

// Target - тип цели, который ожидает действие данного вида.
func (k ActionKind) Target() TargetKind {
	switch k {
	case KindTile:
		return TargetTile
	case KindDirection:
		return TargetDirection
	}
	return TargetNone
}

// Action - стёртое действие с меткой возможности.
type Action struct {
	impl Named
	kind ActionKind
}

// NewAction стирает конкретное действие.
func NewAction(impl Named) Action {
	var kind ActionKind
	switch impl.(type) {
	case InfallibleAction:
		kind = KindInfallible
	case UntargetedAction:
		kind = KindUntargeted
	case TileAction:
		kind = KindTile
	case DirectionAction:
		kind = KindDirection
	default:
		panic(fmt.Sprintf("action %q implements no capability", impl.ActionName()))
	}
	return Action{impl: impl, kind: kind}
}

func (a Action) IsZero() bool     { return a.impl == nil }
func (a Action) Kind() ActionKind { return a.kind }
func (a Action) Impl() Named      { return a.impl }

func (a Action) Name() string {
	if a.impl == nil {
		return ""
	}
	return a.impl.ActionName()
}

func (a Action) String() string { return a.Name() }

// Verify - единая точка входа. Проверяет состояние исполнителя,
// ограничение RestrictedActions и форму цели, затем делегирует действию.
func (a Action) Verify(f *Floor, subject EntityID, target Target) (Command, error) {
	if a.impl == nil {
		return nil, fmt.Errorf("%w: empty action", ErrDataMismatch)
	}
	actor, ok := f.Entity(subject)
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity %s", ErrInvalidState, subject)
	}
	if !actor.State.IsActionable() {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidState, subject, actor.State.Kind)
	}
	if !actor.State.Permits(a) {
		return nil, fmt.Errorf("%w: %q is not allowed right now", ErrInvalidState, a.Name())
	}
	if target.Kind != a.kind.Target() {
		return nil, fmt.Errorf("%w: %q expects %s target, got %s", ErrDataMismatch, a.Name(), a.kind.Target(), target.Kind)
	}

	switch impl := a.impl.(type) {
	case InfallibleAction:
		return impl.Command(f, subject), nil
	case UntargetedAction:
		return impl.Verify(f, subject)
	case TileAction:
		return impl.VerifyTile(f, subject, target.Tile)
	case DirectionAction:
		return impl.VerifyDirection(f, subject, target.Direction)
	}
	return nil, fmt.Errorf("%w: %q", ErrDataMismatch, a.Name())
}

// Command строит команду безошибочного действия без проверок.
// Используется планировщиком для Committed.
func (a Action) Command(f *Floor, subject EntityID) Command {
	impl, ok := a.impl.(InfallibleAction)
	if !ok {
		panic(fmt.Sprintf("action %q is not infallible", a.Name()))
	}
	return impl.Command(f, subject)
}

func (a Action) MarshalJSON() ([]byte, error) {
	if a.impl == nil {
		return []byte("null"), nil
	}
	return marshalErased(a.Name(), a.impl)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	impl, ok, err := unmarshalErased(data, actionRegistry)
	if err != nil {
		return err
	}
	if !ok {
		*a = Action{}
		return nil
	}
	*a = NewAction(impl)
	return nil
}

// TargetKind - форма цели.
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetTile
	TargetDirection
)

var targetKindToString = map[TargetKind]string{
	TargetNone:      "none",
	TargetTile:      "tile",
	TargetDirection: "direction",
}

func (k TargetKind) String() string {
	if s, ok := targetKindToString[k]; ok {
		return s
	}
	return "unknown"
}

func (k TargetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *TargetKind) UnmarshalText(text []byte) error {
	for kind, s := range targetKindToString {
		if s == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown target kind %q", text)
}

// Target - цель действия. Используется только поле, соответствующее Kind.
type Target struct {
	Kind      TargetKind        `json:"kind"`
	Tile      geometry.Position `json:"tile"`
	Direction geometry.Offset   `json:"direction"`
}

func NoTarget() Target { return Target{Kind: TargetNone} }

func TileTarget(tile geometry.Position) Target {
	return Target{Kind: TargetTile, Tile: tile}
}

func DirectionTarget(dir geometry.Offset) Target {
	return Target{Kind: TargetDirection, Direction: dir}
}

func (t Target) String() string {
	switch t.Kind {
	case TargetTile:
		return t.Tile.String()
	case TargetDirection:
		return t.Direction.String()
	}
	return "-"
}

// Intent - действие вместе с целью в виде простых данных.
// Хранится в отложенных состояниях и в записи повтора.
type Intent struct {
	Action Action `json:"action"`
	Target Target `json:"target"`
}

func (i Intent) Verify(f *Floor, subject EntityID) (Command, error) {
	return i.Action.Verify(f, subject, i.Target)
}

func (i Intent) String() string {
	return fmt.Sprintf("%s %s", i.Action.Name(), i.Target)
}

// Compile-time check.
var _ json.Marshaler = Action{}
