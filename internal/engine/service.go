package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lizard-state/internal/domain"
	"lizard-state/internal/engine/handlers"
	"lizard-state/internal/infrastructure/storage"
	"lizard-state/internal/network"
	"lizard-state/pkg/api"
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
)

var ErrNoFreeEntity = errors.New("no free player-controlled entity")

// GameService - точка входа для транспорта. Сериализует доступ к сессии
// одним мьютексом и рассылает снимки подписчикам через Hub.
type GameService struct {
	mu      sync.Mutex
	session *Session
	replays *storage.ReplayService

	Hub *network.Broadcaster
	log *logrus.Entry
}

// NewService оборачивает сессию. replays может быть nil - тогда запись
// партии не сохраняется.
func NewService(session *Session, replays *storage.ReplayService) *GameService {
	return &GameService{
		session: session,
		replays: replays,
		Hub:     network.NewBroadcaster(),
		log: logger.Log.WithFields(logrus.Fields{
			"component":  "game_service",
			"session_id": session.ID.String(),
		}),
	}
}

// Start продвигает симуляцию до первого хода игрока.
func (s *GameService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.session.Advance(ctx)
	s.log.WithFields(logrus.Fields{
		"events": len(events),
		"phase":  s.session.Phase(),
	}).Info("Session started")
	s.publish(events)
	s.finishIfOver()
	return err
}

// Join выбирает сущность для нового клиента и сразу подписывает его на
// обновления. Пустой token - первая свободная сущность под управлением
// игрока. Выбор и подписка идут под одним замком, иначе два клиента
// получили бы одну сущность.
func (s *GameService) Join(token string) (domain.EntityID, chan api.ServerResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.pick(token)
	if err != nil {
		return 0, nil, err
	}
	return id, s.Hub.Register(id), nil
}

func (s *GameService) pick(token string) (domain.EntityID, error) {
	floor := s.session.Floor()
	if token != "" {
		id, err := domain.ParseEntityID(token)
		if err != nil {
			return 0, err
		}
		e, ok := floor.Entity(id)
		if !ok || !e.IsPlayerControlled {
			return 0, fmt.Errorf("%w: %s", handlers.ErrUnknownEntity, token)
		}
		return id, nil
	}

	for _, e := range floor.Entities() {
		if e.IsPlayerControlled && !e.State.IsTerminal() && !s.Hub.HasSubscriber(e.ID) {
			return e.ID, nil
		}
	}
	return 0, ErrNoFreeEntity
}

// ProcessCommand принимает команду от внешнего мира (WebSocket).
// Token уже подставлен транспортом и соответствует сущности клиента.
func (s *GameService) ProcessCommand(ctx context.Context, cmd api.ClientCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actorID, err := domain.ParseEntityID(cmd.Token)
	if err != nil {
		s.log.WithError(err).Warn("Command without a valid token")
		return
	}
	cmdLogger := s.log.WithFields(logrus.Fields{
		"entity_id": actorID,
		"action":    cmd.Action,
	})

	var events []domain.Event
	switch cmd.Action {
	case api.ActionJoin:
		s.Hub.SendTo(actorID, BuildStateFor(s.session, actorID, api.ResponseInit, nil))
		return
	case api.ActionConfirm:
		events, err = s.session.Confirm(ctx, actorID)
	default:
		var req handlers.Request
		req, err = handlers.Resolve(s.session.Floor(), cmd)
		if err == nil {
			events, err = s.session.Submit(ctx, req.Actor, req.Intent)
		}
	}

	if err != nil {
		cmdLogger.WithError(err).Info("Command rejected")
		s.Hub.SendTo(actorID, ErrorResponse(s.session, actorID, err))
	}
	if err == nil || len(events) > 0 {
		s.publish(events)
	}
	s.finishIfOver()
}

// Entities - снимок сущностей для отладки.
func (s *GameService) Entities() []domain.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Floor().Entities()
}

// Upcoming - ближайшие ходы для отладки.
func (s *GameService) Upcoming(n int) []TurnSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Upcoming(n)
}

// Phase - фаза сессии.
func (s *GameService) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Phase()
}

// SaveReplay сохраняет запись партии, если хранилище настроено.
func (s *GameService) SaveReplay() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveReplay()
}

func (s *GameService) saveReplay() (string, error) {
	if s.replays == nil {
		return "", nil
	}
	path, err := s.replays.Save(s.session.ID.String(), s.session.Replay())
	if err != nil {
		return "", err
	}
	s.log.WithField("path", path).Info("Replay saved")
	return path, nil
}

// publish рассылает актуальное состояние всем подписчикам.
func (s *GameService) publish(events []domain.Event) {
	s.Hub.Each(func(id domain.EntityID) {
		s.Hub.SendTo(id, BuildStateFor(s.session, id, api.ResponseUpdate, events))
	})
}

func (s *GameService) finishIfOver() {
	if !s.session.IsFinished() {
		return
	}
	if _, err := s.saveReplay(); err != nil {
		s.log.WithError(err).Error("Failed to save replay")
	}
	// Запись уже на диске, повторно не сохраняем.
	s.replays = nil
}
