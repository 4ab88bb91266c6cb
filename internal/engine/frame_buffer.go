package engine

import (
	"context"
	"sync"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

// FrameBuffer — буфер входящих кадров, ключ — тик.
//
// Кадры приходят из сети асинхронно и в любом порядке, а забираются строго
// по возрастанию без пропусков. Нет кадра следующего тика — симуляция стоит.
// Push вызывается из сетевой горутины, TryNext/Wait — из горутины мира.
type FrameBuffer struct {
	mu     sync.Mutex
	frames map[types.Tick]api.FrameMessage
	next   types.Tick
	notify chan struct{} // закрывается при каждом Push
}

// NewFrameBuffer создаёт буфер, ожидающий первым кадр first (обычно 1).
func NewFrameBuffer(first types.Tick) *FrameBuffer {
	return &FrameBuffer{
		frames: make(map[types.Tick]api.FrameMessage),
		next:   first,
		notify: make(chan struct{}),
	}
}

// Push кладёт кадр в буфер.
// Кадр уже забранного тика — ErrDesync, повтор ещё лежащего — ErrDuplicateFrame.
func (b *FrameBuffer) Push(frame api.FrameMessage) error {
	tick := types.Tick(frame.Frame)

	b.mu.Lock()
	defer b.mu.Unlock()

	if tick < b.next {
		return &DesyncError{Expected: b.next, Got: tick, Reason: "frame already consumed"}
	}
	if _, ok := b.frames[tick]; ok {
		return ErrDuplicateFrame
	}
	b.frames[tick] = frame

	close(b.notify)
	b.notify = make(chan struct{})
	return nil
}

// TryNext забирает кадр следующего тика или возвращает ErrFrameNotReady.
func (b *FrameBuffer) TryNext() (api.FrameMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.takeLocked()
}

// Wait блокируется, пока не придёт кадр следующего тика или не закончится ctx.
func (b *FrameBuffer) Wait(ctx context.Context) (api.FrameMessage, error) {
	for {
		b.mu.Lock()
		frame, err := b.takeLocked()
		ch := b.notify
		b.mu.Unlock()

		if err == nil {
			return frame, nil
		}

		select {
		case <-ctx.Done():
			return api.FrameMessage{}, ctx.Err()
		case <-ch:
		}
	}
}

func (b *FrameBuffer) takeLocked() (api.FrameMessage, error) {
	frame, ok := b.frames[b.next]
	if !ok {
		return api.FrameMessage{}, ErrFrameNotReady
	}
	delete(b.frames, b.next)
	b.next++
	return frame, nil
}

// Next — тик, кадр которого будет забран следующим.
func (b *FrameBuffer) Next() types.Tick {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.next
}

// Buffered — сколько кадров ждёт в буфере (включая пришедшие "из будущего").
func (b *FrameBuffer) Buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}
