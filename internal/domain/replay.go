package domain

// ReplayAction - одно действие игрока, поданное снаружи.
type ReplayAction struct {
	Round  uint32   `json:"round"`
	Actor  EntityID `json:"actor"`
	Intent Intent   `json:"intent"`
	// Confirm - повтор ConfirmCommand вместо нового намерения.
	Confirm bool `json:"confirm,omitempty"`
}

// ReplaySession - полная запись партии. Сценарий плюс последовательность
// действий игрока детерминированно восстанавливают итоговый этаж.
type ReplaySession struct {
	Scenario  string `json:"scenario"`
	Timestamp int64  `json:"timestamp"`
	// Build - номер сборки, записавшей партию (0 - неизвестна).
	Build   uint32         `json:"build,omitempty"`
	Actions []ReplayAction `json:"actions"`
}
