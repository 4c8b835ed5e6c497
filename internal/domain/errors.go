package domain

import "errors"

// Ошибки проверки действий. Конкретные действия оборачивают их через %w.
var (
	ErrOutOfRange      = errors.New("target out of range")
	ErrDataMismatch    = errors.New("action data mismatch")
	ErrInvalidTarget   = errors.New("invalid target")
	ErrNotEnoughEnergy = errors.New("not enough energy")
	ErrInvalidFloor    = errors.New("invalid floor state for action")
	ErrInvalidState    = errors.New("actor cannot act in its current state")
)

// Сигналы планировщика ходов.
var (
	ErrNoTurntaker = errors.New("no entity can take a turn")
	ErrPlayerTurn  = errors.New("current turn belongs to a player-controlled entity")
)
