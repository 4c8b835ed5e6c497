package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"lizard-state/internal/domain"
	"lizard-state/internal/geometry"
	"lizard-state/pkg/api"
)

var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrUnknownAction = errors.New("action is not in the entity's moveset")
)

// Request - разобранная команда клиента: кто и что хочет сделать.
type Request struct {
	Actor  domain.EntityID
	Intent domain.Intent
}

// TargetParser превращает сырые данные команды в цель действия.
type TargetParser func(payload json.RawMessage) (domain.Target, error)

// Разбор цели зависит только от вида действия.
var targetParsers = map[domain.ActionKind]TargetParser{
	domain.KindDirection: WithPayload(func(p api.DirectionPayload) domain.Target {
		return domain.DirectionTarget(geometry.Off(p.Dx, p.Dy))
	}),
	domain.KindTile: WithPayload(func(p api.PositionPayload) domain.Target {
		return domain.TileTarget(geometry.Pos(p.X, p.Y))
	}),
	domain.KindUntargeted: WithEmptyPayload(),
	domain.KindInfallible: WithEmptyPayload(),
}

// Resolve ищет действие в наборе приёмов исполнителя и разбирает цель.
// Проверка правил игры остаётся за Action.Verify.
func Resolve(f *domain.Floor, cmd api.ClientCommand) (Request, error) {
	actorID, err := domain.ParseEntityID(cmd.Token)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrUnknownEntity, err)
	}
	actor, ok := f.Entity(actorID)
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrUnknownEntity, actorID)
	}
	action, ok := actor.HasMove(cmd.Action)
	if !ok {
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}

	target, err := targetParsers[action.Kind()](cmd.Payload)
	if err != nil {
		return Request{}, fmt.Errorf("%s: %w", cmd.Action, err)
	}
	return Request{Actor: actorID, Intent: domain.Intent{Action: action, Target: target}}, nil
}
