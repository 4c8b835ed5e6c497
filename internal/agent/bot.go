package agent

import (
	"context"
	"encoding/json"

	"lizard-state/internal/domain"
	"lizard-state/internal/engine"
	"lizard-state/internal/engine/handlers/actions"
	"lizard-state/pkg/api"
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Bot - "игрок-компьютер" (Headless Agent).
// Подключается к сервису так же, как обычный клиент: получает снимки
// через хаб и отвечает командами. Решения принимает только по тому, что
// прислал сервер, без доступа к этажу.
//
// Жизненный цикл:
//  1. NewBot -> Join: выбор сущности и личный канал (Inbox).
//  2. Run -> цикл в отдельной горутине, слушает Inbox.
//  3. Если сейчас ход бота (ActiveEntityID == EntityID), вызывается makeMove.
type Bot struct {
	EntityID domain.EntityID
	Service  *engine.GameService
	Inbox    chan api.ServerResponse

	lastAction string
	log        *logrus.Entry
}

// NewBot занимает сущность так же, как клиент при входе: token задаёт её
// явно, пустой token - первая свободная.
func NewBot(service *engine.GameService, token string) (*Bot, error) {
	entityID, inbox, err := service.Join(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		EntityID: entityID,
		Service:  service,
		Inbox:    inbox,
		log: logger.Log.WithFields(logrus.Fields{
			"component": "bot",
			"entity_id": entityID,
		}),
	}, nil
}

// Run запускает цикл жизни бота. Должен быть запущен в горутине.
func (b *Bot) Run(ctx context.Context) {
	defer b.Service.Hub.Release(b.EntityID, b.Inbox)

	b.log.Info("Bot joined")
	b.Service.ProcessCommand(ctx, api.ClientCommand{Action: api.ActionJoin, Token: b.EntityID.String()})

	undetermined := domain.EndUndetermined.String()
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-b.Inbox:
			if !ok {
				return
			}
			if state.EndState != undetermined {
				b.log.WithField("end_state", state.EndState).Info("Bot done")
				return
			}
			if state.ActiveEntityID != b.EntityID.String() {
				continue
			}
			if state.Type == api.ResponseError {
				b.onRejected(ctx, state)
				continue
			}
			b.makeMove(ctx, state)
		}
	}
}

// makeMove - решение по снимку: добить соседа, подойти к видимому врагу,
// иначе идти к лестнице и уйти.
func (b *Bot) makeMove(ctx context.Context, state api.ServerResponse) {
	// 1. Найти себя
	me, ok := findEntity(state.Entities, b.EntityID.String())
	if !ok {
		b.send(ctx, actions.NameWait, nil)
		return
	}
	if me.State == domain.StateConfirmCommand.String() {
		b.send(ctx, api.ActionConfirm, nil)
		return
	}

	// 2. Ближайший видимый враг
	if foe, ok := nearestHostile(state.Entities, me); ok {
		dx, dy := sign(foe.Pos.X-me.Pos.X), sign(foe.Pos.Y-me.Pos.Y)
		if chebyshev(me, foe) == 1 && has(me, actions.NameBump) {
			b.send(ctx, actions.NameBump, api.DirectionPayload{Dx: dx, Dy: dy})
			return
		}
		if has(me, actions.NameStep) {
			b.send(ctx, actions.NameStep, api.DirectionPayload{Dx: dx, Dy: dy})
			return
		}
	}

	// 3. Лестница
	if stairs, ok := findStairs(state.Map); ok {
		if stairs.X == me.Pos.X && stairs.Y == me.Pos.Y && has(me, actions.NameExit) {
			b.send(ctx, actions.NameExit, nil)
			return
		}
		if has(me, actions.NameGoto) && (stairs.X != me.Pos.X || stairs.Y != me.Pos.Y) {
			b.send(ctx, actions.NameGoto, api.PositionPayload{X: stairs.X, Y: stairs.Y})
			return
		}
	}

	b.send(ctx, actions.NameWait, nil)
}

// onRejected - команда отклонена. Пробуем переждать, но не по кругу.
func (b *Bot) onRejected(ctx context.Context, state api.ServerResponse) {
	if b.lastAction == actions.NameWait {
		b.log.WithField("error", state.Error).Warn("Bot is stuck")
		return
	}
	b.log.WithField("error", state.Error).Debug("Move rejected, waiting")
	b.send(ctx, actions.NameWait, nil)
}

func (b *Bot) send(ctx context.Context, action string, payload any) {
	cmd := api.ClientCommand{Action: action, Token: b.EntityID.String()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			b.log.WithError(err).Error("Error marshalling payload")
			return
		}
		cmd.Payload = raw
	}
	b.lastAction = action
	b.Service.ProcessCommand(ctx, cmd)
}

// --- Разбор снимка ---

func findEntity(entities []api.EntityView, id string) (api.EntityView, bool) {
	for _, e := range entities {
		if e.ID == id {
			return e, true
		}
	}
	return api.EntityView{}, false
}

func nearestHostile(entities []api.EntityView, me api.EntityView) (api.EntityView, bool) {
	var (
		best  api.EntityView
		found bool
	)
	for _, e := range entities {
		if e.IsPlayerFriendly || !isActive(e) {
			continue
		}
		if !found || chebyshev(me, e) < chebyshev(me, best) {
			best, found = e, true
		}
	}
	return best, found
}

func findStairs(tiles []api.TileView) (api.TileView, bool) {
	stairs := domain.TileStairs.Symbol()
	for _, t := range tiles {
		if t.Symbol == stairs {
			return t, true
		}
	}
	return api.TileView{}, false
}

func isActive(e api.EntityView) bool {
	switch e.State {
	case domain.StateDowned.String(), domain.StateDead.String(), domain.StateExited.String():
		return false
	}
	return true
}

func has(e api.EntityView, move string) bool {
	for _, m := range e.Moveset {
		if m == move {
			return true
		}
	}
	return false
}

func chebyshev(a, b api.EntityView) int {
	return max(abs(a.Pos.X-b.Pos.X), abs(a.Pos.Y-b.Pos.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
