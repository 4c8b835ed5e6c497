package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// Типы сообщений сервера.
const (
	ResponseInit   = "INIT"
	ResponseUpdate = "UPDATE"
	ResponseError  = "ERROR"
)

// ServerResponse это корневой объект, который сервер отправляет клиенту.
// Отправляется после каждого продвижения симуляции.
type ServerResponse struct {
	// Type - INIT, UPDATE или ERROR.
	Type string `json:"type"`

	// Round текущий раунд (раунд сущности, чей сейчас ход).
	Round uint32 `json:"round"`

	// ActiveEntityID ID сущности, чей ход сейчас.
	// КЛИЕНТ ДОЛЖЕН СРАВНИВАТЬ ЭТО ПОЛЕ СО СВОИМ ID.
	ActiveEntityID string `json:"activeEntityId,omitempty"`

	// MyEntityID ID сущности, которой управляет данный клиент.
	MyEntityID string `json:"myEntityId,omitempty"`

	// EndState - UNDETERMINED, ALLY_DOWNED или ALL_EXITED.
	EndState string `json:"endState"`

	// Map открытые клетки карты (только в INIT и при SEE_MAP).
	Map []TileView `json:"map,omitempty"`

	// Entities все сущности этажа.
	Entities []EntityView `json:"entities,omitempty"`

	// Events события с прошлого сообщения, в порядке возникновения.
	Events []EventView `json:"events,omitempty"`

	// Upcoming ближайшая очередь ходов.
	Upcoming []TurnView `json:"upcoming,omitempty"`

	// Error текст ошибки для Type == ERROR.
	Error string `json:"error,omitempty"`
}

// TileView это DTO для одной клетки карты.
type TileView struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Symbol string `json:"symbol"`

	// IsWall true, если клетка непроходима.
	IsWall bool `json:"isWall"`

	// IsVisible true, если клетка в текущем поле зрения. Рендерится ярко.
	IsVisible bool `json:"isVisible"`

	// LastSeen раунд, когда клетку видели последний раз.
	LastSeen uint32 `json:"lastSeen"`
}

// EntityView это DTO для игровой сущности.
type EntityView struct {
	ID      string `json:"id"`
	Payload string `json:"payload,omitempty"`

	Pos struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"pos"`

	State     string `json:"state"`
	NextRound uint32 `json:"nextRound,omitempty"`

	Health    int `json:"health"`
	Energy    int `json:"energy"`
	MaxEnergy int `json:"maxEnergy"`

	IsPlayerControlled bool `json:"isPlayerControlled"`
	IsPlayerFriendly   bool `json:"isPlayerFriendly"`

	// Moveset имена доступных действий (только для своих сущностей).
	Moveset []string `json:"moveset,omitempty"`
}

// EventView это DTO для события этажа.
type EventView struct {
	Type    string   `json:"type"`
	Subject string   `json:"subject,omitempty"`
	Target  string   `json:"target,omitempty"`
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Damage  int      `json:"damage,omitempty"`
	Tiles   [][2]int `json:"tiles,omitempty"`
	Text    string   `json:"text"`
}

// TurnView одна позиция в очереди ходов.
type TurnView struct {
	EntityID string `json:"entityId"`
	Round    uint32 `json:"round"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// Служебные действия, не входящие в набор приёмов.
const (
	ActionJoin    = "JOIN"
	ActionConfirm = "CONFIRM"
)

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token ID сущности, от имени которой выполняется действие.
	Token string `json:"token,omitempty"`

	// Action имя действия из набора приёмов сущности (step, bump, goto...)
	// или служебное JOIN / CONFIRM.
	Action string `json:"action"`

	// Payload JSON-объект с целью. Его структура зависит от вида действия.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Payloads ---

// DirectionPayload используется для действий с направлением (step, bump).
type DirectionPayload struct {
	Dx int `json:"dx"` // Смещение по X (-1, 0, 1)
	Dy int `json:"dy"` // Смещение по Y (-1, 0, 1)
}

// PositionPayload используется для действий, нацеленных на клетку (goto).
type PositionPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}
