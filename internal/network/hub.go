package network

import (
	"sync"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

// Broadcaster занимается только рассылкой сообщений подписчикам матча
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: CampID -> Личный канал
	subscribers map[types.CampID]chan api.ServerMessage
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[types.CampID]chan api.ServerMessage),
	}
}

// Register создает личный канал для лагеря (игрока)
func (b *Broadcaster) Register(camp types.CampID) chan api.ServerMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[camp]; ok {
		close(old)
	}

	ch := make(chan api.ServerMessage, 256)
	b.subscribers[camp] = ch
	return ch
}

// Unregister удаляет подписчика, если ch всё ещё его текущий канал.
func (b *Broadcaster) Unregister(camp types.CampID, ch chan api.ServerMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cur, ok := b.subscribers[camp]; ok && cur == ch {
		close(cur)
		delete(b.subscribers, camp)
	}
}

// SendTo отправляет сообщение конкретному лагерю (Unicast).
// Возвращает false, если подписчика нет или его канал переполнен.
func (b *Broadcaster) SendTo(camp types.CampID, msg api.ServerMessage) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[camp]; ok {
		select {
		case ch <- msg:
			return true
		default:
		}
	}
	return false
}

// Broadcast отправляет всем. Возвращает лагеря, до которых сообщение не дошло
// (переполненный канал) — в lockstep их придётся отключить.
func (b *Broadcaster) Broadcast(msg api.ServerMessage) []types.CampID {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var dropped []types.CampID
	for camp, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			dropped = append(dropped, camp)
		}
	}
	return dropped
}

// HasSubscriber проверяет, подключен ли лагерь
func (b *Broadcaster) HasSubscriber(camp types.CampID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[camp]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Drop принудительно отключает лагерь: канал закрывается, writePump клиента
// отправит close и соединение будет закрыто.
func (b *Broadcaster) Drop(camp types.CampID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[camp]; ok {
		close(ch)
		delete(b.subscribers, camp)
	}
}
