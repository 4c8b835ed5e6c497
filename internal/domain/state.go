package domain

import (
	"fmt"
	"strings"
)

// StateKind - вариант машины состояний хода.
type StateKind uint8

const (
	StateOk StateKind = iota
	StateCommitted
	StateConfirmCommand
	StateRestrictedActions
	StateHitstun
	StateKnockdown
	StateDowned
	StateDead
	StateExited
)

var stateKindToString = map[StateKind]string{
	StateOk:                "OK",
	StateCommitted:         "COMMITTED",
	StateConfirmCommand:    "CONFIRM_COMMAND",
	StateRestrictedActions: "RESTRICTED_ACTIONS",
	StateHitstun:           "HITSTUN",
	StateKnockdown:         "KNOCKDOWN",
	StateDowned:            "DOWNED",
	StateDead:              "DEAD",
	StateExited:            "EXITED",
}

var stringToStateKind = func() map[string]StateKind {
	m := make(map[string]StateKind, len(stateKindToString))
	for k, v := range stateKindToString {
		m[v] = k
	}
	return m
}()

func (k StateKind) String() string {
	if s, ok := stateKindToString[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseStateKind конвертирует строку из JSON/YAML в StateKind.
func ParseStateKind(s string) (StateKind, error) {
	if k, ok := stringToStateKind[strings.ToUpper(s)]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown state kind %q", s)
}

func (k StateKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *StateKind) UnmarshalText(text []byte) error {
	parsed, err := ParseStateKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// EntityState - размеченное объединение состояний. Поля, не относящиеся
// к Kind, остаются нулевыми.
//
//   - Committed: Queued выполнится автоматически на NextRound.
//   - ConfirmCommand: Queued можно повторить одним подтверждением.
//   - RestrictedActions: на NextRound доступны только Allowed.
//   - Hitstun: Extensions - сколько ещё попаданий продлят оглушение.
//   - Downed: NextRound хранит раунд, в котором сущность упала.
type EntityState struct {
	Kind       StateKind `json:"kind"`
	NextRound  uint32    `json:"round"`
	Queued     *Intent   `json:"queued,omitempty"`
	Allowed    []Action  `json:"allowed,omitempty"`
	Extensions uint32    `json:"extensions,omitempty"`
}

func OkState(round uint32) EntityState {
	return EntityState{Kind: StateOk, NextRound: round}
}

// CommittedState ставит в очередь действие, которое не может провалиться.
func CommittedState(round uint32, queued Intent) EntityState {
	if queued.Action.Kind() != KindInfallible {
		panic(fmt.Sprintf("committed action %q must be infallible", queued.Action.Name()))
	}
	return EntityState{Kind: StateCommitted, NextRound: round, Queued: &queued}
}

func ConfirmCommandState(round uint32, toConfirm Intent) EntityState {
	return EntityState{Kind: StateConfirmCommand, NextRound: round, Queued: &toConfirm}
}

func RestrictedActionsState(round uint32, allowed ...Action) EntityState {
	return EntityState{Kind: StateRestrictedActions, NextRound: round, Allowed: allowed}
}

func HitstunState(round, extensions uint32) EntityState {
	return EntityState{Kind: StateHitstun, NextRound: round, Extensions: extensions}
}

func KnockdownState(round uint32) EntityState {
	return EntityState{Kind: StateKnockdown, NextRound: round}
}

func DownedState(roundDowned uint32) EntityState {
	return EntityState{Kind: StateDowned, NextRound: roundDowned}
}

func DeadState() EntityState {
	return EntityState{Kind: StateDead}
}

func ExitedState() EntityState {
	return EntityState{Kind: StateExited}
}

// IsTerminal - сущность больше никогда не ходит.
func (s EntityState) IsTerminal() bool {
	switch s.Kind {
	case StateDowned, StateDead, StateExited:
		return true
	}
	return false
}

// Round возвращает раунд следующего хода; false для терминальных состояний.
func (s EntityState) Round() (uint32, bool) {
	if s.IsTerminal() {
		return 0, false
	}
	return s.NextRound, true
}

// OccupiesTile определяет, занимает ли сущность клетку в индексе Occupiers.
// Сбитые с ног лежат под ногами и клетку не занимают.
func (s EntityState) OccupiesTile() bool {
	switch s.Kind {
	case StateOk, StateCommitted, StateConfirmCommand, StateRestrictedActions, StateHitstun:
		return true
	}
	return false
}

// IsActionable - сущность сама выбирает действие в свой ход.
func (s EntityState) IsActionable() bool {
	switch s.Kind {
	case StateOk, StateConfirmCommand, StateRestrictedActions:
		return true
	}
	return false
}

// Permits проверяет ограничение RestrictedActions.
func (s EntityState) Permits(a Action) bool {
	if s.Kind != StateRestrictedActions {
		return true
	}
	for _, allowed := range s.Allowed {
		if allowed.Name() == a.Name() {
			return true
		}
	}
	return false
}

func (s EntityState) String() string {
	if r, ok := s.Round(); ok {
		return fmt.Sprintf("%s@%d", s.Kind, r)
	}
	return s.Kind.String()
}
