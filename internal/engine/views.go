package engine

import (
	"fmt"

	"lizard-state/internal/domain"
	"lizard-state/pkg/api"
)

// UpcomingWindow - сколько ходов вперёд показывать клиенту.
const UpcomingWindow = 8

// BuildStateFor создает персональный "снимок" этажа для наблюдателя.
// Чужие сущности видны, только если стоят в общем поле зрения союзников.
func BuildStateFor(s *Session, observer domain.EntityID, kind string, events []domain.Event) api.ServerResponse {
	floor := s.Floor()
	resp := api.ServerResponse{
		Type:       kind,
		MyEntityID: observer.String(),
		EndState:   floor.EndState().String(),
	}
	if round, err := floor.CurrentRound(); err == nil {
		resp.Round = round
	}
	if active, err := floor.CurrentTurn(); err == nil {
		resp.ActiveEntityID = active.String()
	}

	// 1. Карта
	resp.Map = tileViews(floor, observer)

	// 2. Сущности
	vision := floor.Vision()
	for _, e := range floor.Entities() {
		if vision != nil && e.ID != observer && !e.IsPlayerFriendly && !vision.IsVisible(e.Pos) {
			continue
		}
		resp.Entities = append(resp.Entities, toEntityView(e))
	}

	// 3. События и очередь
	resp.Events = EventViews(floor, events)
	for _, slot := range s.Upcoming(UpcomingWindow) {
		resp.Upcoming = append(resp.Upcoming, api.TurnView{EntityID: slot.Entity.String(), Round: slot.Round})
	}
	return resp
}

// ErrorResponse - ответ на отклонённую команду.
func ErrorResponse(s *Session, observer domain.EntityID, err error) api.ServerResponse {
	resp := BuildStateFor(s, observer, api.ResponseError, nil)
	resp.Map = nil
	resp.Error = err.Error()
	return resp
}

func tileViews(floor *domain.Floor, observer domain.EntityID) []api.TileView {
	m := floor.Map()
	vision := floor.Vision()

	positions := m.Tiles()
	if vision != nil {
		positions = vision.Revealed(observer)
	}

	out := make([]api.TileView, 0, len(positions))
	for _, pos := range positions {
		tile := m.TileAt(pos)
		view := api.TileView{
			X:         pos.X,
			Y:         pos.Y,
			Symbol:    tile.Symbol(),
			IsWall:    !tile.Walkable(),
			IsVisible: vision == nil || vision.IsVisible(pos),
		}
		if vision != nil {
			view.LastSeen, _ = vision.LastSeen(pos)
		}
		out = append(out, view)
	}
	return out
}

// EntityViews - все сущности без учёта поля зрения.
func EntityViews(entities []domain.Entity) []api.EntityView {
	out := make([]api.EntityView, 0, len(entities))
	for _, e := range entities {
		out = append(out, toEntityView(e))
	}
	return out
}

// toEntityView конвертирует доменную сущность в DTO. Набор приёмов
// показывается только для сущностей стороны игрока.
func toEntityView(e domain.Entity) api.EntityView {
	view := api.EntityView{
		ID:                 e.ID.String(),
		Payload:            e.Payload,
		State:              e.State.Kind.String(),
		Health:             e.Health,
		Energy:             e.Energy,
		MaxEnergy:          e.MaxEnergy,
		IsPlayerControlled: e.IsPlayerControlled,
		IsPlayerFriendly:   e.IsPlayerFriendly,
	}
	view.Pos.X = e.Pos.X
	view.Pos.Y = e.Pos.Y
	if round, ok := e.NextRound(); ok {
		view.NextRound = round
	}
	if e.IsPlayerFriendly {
		for _, a := range e.Moveset {
			view.Moveset = append(view.Moveset, a.Name())
		}
	}
	return view
}

// EventViews переводит события в форму журнала клиента.
func EventViews(floor *domain.Floor, events []domain.Event) []api.EventView {
	if len(events) == 0 {
		return nil
	}
	out := make([]api.EventView, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventView(floor, ev))
	}
	return out
}

func toEventView(floor *domain.Floor, ev domain.Event) api.EventView {
	view := api.EventView{
		Type:    ev.Type.String(),
		Subject: ev.Subject.String(),
		X:       ev.Tile.X,
		Y:       ev.Tile.Y,
		Damage:  ev.Damage,
		Text:    describe(floor, ev),
	}
	switch ev.Type {
	case domain.EventMissionFailed:
		view.Subject = ""
	case domain.EventAttackHit:
		view.Target = ev.Target.String()
	}
	for _, p := range ev.Tiles {
		view.Tiles = append(view.Tiles, [2]int{p.X, p.Y})
	}
	return view
}

// describe - строка для журнала клиента.
func describe(floor *domain.Floor, ev domain.Event) string {
	who := nameOf(floor, ev.Subject)
	switch ev.Type {
	case domain.EventMove:
		return fmt.Sprintf("%s идёт на %s", who, ev.Tile)
	case domain.EventStartAttack:
		return fmt.Sprintf("%s атакует %s", who, ev.Tile)
	case domain.EventAttackHit:
		return fmt.Sprintf("%s бьёт %s (%d)", who, nameOf(floor, ev.Target), ev.Damage)
	case domain.EventKnockback:
		return fmt.Sprintf("%s отброшен на %s", who, ev.Tile)
	case domain.EventKnockdown:
		return fmt.Sprintf("%s сбит с ног", who)
	case domain.EventSeeMap:
		return fmt.Sprintf("%s замечает %d новых клеток", who, len(ev.Tiles))
	case domain.EventMissionFailed:
		return "Миссия провалена"
	case domain.EventDowned:
		return fmt.Sprintf("%s выбывает", who)
	case domain.EventExit:
		return fmt.Sprintf("%s покидает этаж", who)
	case domain.EventWakeup:
		return fmt.Sprintf("%s поднимается", who)
	case domain.EventJuggleHit:
		return fmt.Sprintf("%s подброшен", who)
	case domain.EventJuggleLimit:
		return fmt.Sprintf("%s падает после серии", who)
	}
	return ev.String()
}

func nameOf(floor *domain.Floor, id domain.EntityID) string {
	if e, ok := floor.Entity(id); ok && e.Payload != "" {
		return e.Payload
	}
	return id.String()
}
