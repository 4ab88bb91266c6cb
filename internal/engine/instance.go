package engine

import (
	"context"
	"errors"
	"time"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Confirmer — транспорт, которому сообщают, что кадр полностью передан
// планировщику. Вызывается ровно один раз на кадр, по возрастанию.
type Confirmer interface {
	ConfirmFrame(tick types.Tick) error
}

// FrameDecoder превращает кадр протокола в команды. Реализация — закрытая
// таблица тегов (commands.Registry): неизвестные и битые команды пропускаются.
type FrameDecoder interface {
	Decode(frame api.FrameMessage, source domain.Source) []Command
}

// TickHook вызывается после каждого исполненного тика (боты, презентация).
type TickHook func(w *World)

// Instance — один запущенный матч в режиме lockstep: мир, буфер кадров,
// декодер, подтверждение транспорту и запись реплея.
type Instance struct {
	world     *World
	frames    *FrameBuffer
	decoder   FrameDecoder
	confirmer Confirmer
	source    domain.Source
	hooks     []TickHook

	Replay *domain.ReplaySession // Лента кадров

	log *logrus.Entry
}

// NewInstance создаёт инстанс. confirmer может быть nil (локальная симуляция, реплей).
func NewInstance(world *World, decoder FrameDecoder, confirmer Confirmer, source domain.Source) *Instance {
	return &Instance{
		world:     world,
		frames:    NewFrameBuffer(world.CurrentTick() + 1),
		decoder:   decoder,
		confirmer: confirmer,
		source:    source,
		Replay: &domain.ReplaySession{
			Seed:      world.Seed(),
			TickRate:  int32(world.Clock().TickRate()),
			Timestamp: time.Now().Unix(),
			Frames:    make([]api.FrameMessage, 0),
		},
		log: logger.Log.WithField("world", world.ID()),
	}
}

func (i *Instance) World() *World { return i.world }
func (i *Instance) Frames() *FrameBuffer { return i.frames }

// OnTick регистрирует хук после тика.
func (i *Instance) OnTick(h TickHook) {
	i.hooks = append(i.hooks, h)
}

// Push — вход для сети: кадр уходит в буфер и ждёт своего тика.
func (i *Instance) Push(frame api.FrameMessage) error {
	return i.frames.Push(frame)
}

// Step исполняет следующий тик, если его кадр уже пришёл.
// Кадра нет — ErrFrameNotReady: симуляция стоит, тик не пропускается.
func (i *Instance) Step() error {
	frame, err := i.frames.TryNext()
	if err != nil {
		return err
	}
	return i.apply(frame)
}

// Run крутит Step, ожидая кадры, пока не закончится ctx или не случится фатальная ошибка.
func (i *Instance) Run(ctx context.Context) error {
	i.log.Info("Instance loop started")
	for {
		frame, err := i.frames.Wait(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				i.log.WithField("tick", i.world.CurrentTick()).Info("Instance loop stopped")
				return nil
			}
			return err
		}
		if err := i.apply(frame); err != nil {
			return err
		}
	}
}

func (i *Instance) apply(frame api.FrameMessage) error {
	tick := types.Tick(frame.Frame)

	// 1. Кадр -> команды -> планировщик
	cmds := i.decoder.Decode(frame, i.source)
	if err := i.world.ApplyFrame(tick, cmds); err != nil {
		return err
	}

	// 2. Подтверждаем транспорту ровно один раз
	if i.confirmer != nil {
		if err := i.confirmer.ConfirmFrame(tick); err != nil {
			i.log.WithField("frame", tick).WithError(err).Warn("Frame confirmation failed")
		}
	}

	// 3. Тик
	if err := i.world.TickTo(tick); err != nil {
		return err
	}

	i.Replay.Append(frame)

	for _, h := range i.hooks {
		h(i.world)
	}
	return nil
}
