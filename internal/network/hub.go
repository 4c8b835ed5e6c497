package network

import (
	"sync"

	"lizard-state/internal/domain"
	"lizard-state/pkg/api"
	"lizard-state/pkg/logger"
)

// Broadcaster занимается только рассылкой сообщений подписчикам
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: EntityID -> Личный канал
	subscribers map[domain.EntityID]chan api.ServerResponse
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[domain.EntityID]chan api.ServerResponse),
	}
}

// Register создает личный канал для сущности. Прежний канал закрывается.
func (b *Broadcaster) Register(entityID domain.EntityID) chan api.ServerResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[entityID]; ok {
		close(old)
	}

	ch := make(chan api.ServerResponse, 100)
	b.subscribers[entityID] = ch
	return ch
}

// Release удаляет подписчика, только если ch всё ещё его канал.
// Переподключившийся клиент не теряет подписку из-за старого соединения.
func (b *Broadcaster) Release(entityID domain.EntityID, ch chan api.ServerResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cur, ok := b.subscribers[entityID]; ok && cur == ch {
		close(cur)
		delete(b.subscribers, entityID)
	}
}

// SendTo отправляет сообщение конкретному ID (Unicast)
func (b *Broadcaster) SendTo(entityID domain.EntityID, msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[entityID]; ok {
		select {
		case ch <- msg:
		default:
			logger.Log.WithField("entity_id", entityID).Warn("Hub: channel full, message dropped")
		}
	}
}

// Each вызывает fn для каждого подписчика. fn не должен трогать Broadcaster.
func (b *Broadcaster) Each(fn func(domain.EntityID)) {
	b.mu.RLock()
	ids := make([]domain.EntityID, 0, len(b.subscribers))
	for id := range b.subscribers {
		ids = append(ids, id)
	}
	b.mu.RUnlock()

	for _, id := range ids {
		fn(id)
	}
}

// HasSubscriber проверяет, управляется ли сущность кем-то
func (b *Broadcaster) HasSubscriber(entityID domain.EntityID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[entityID]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
