package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/rng"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Scheduler буферизует команды по целевому тику и исполняет их,
// когда мир доходит до этого тика. Принадлежит одному World.
type Scheduler struct {
	pending map[types.Tick][]Command // в порядке поступления
	ticks   TickQueue                // тики, на которые есть команды
	last    types.Tick               // последний исполненный тик
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		pending: make(map[types.Tick][]Command),
		ticks:   make(TickQueue, 0),
	}
}

// Schedule откладывает команду до её ExecuteFrame.
// Команда на уже исполненный тик — рассинхронизация, а не опоздание.
func (s *Scheduler) Schedule(cmd Command) error {
	at := cmd.Head().ExecuteFrame
	if at <= s.last {
		return &DesyncError{Expected: s.last + 1, Got: at, Reason: "command for executed tick " + cmd.Type().String()}
	}
	if _, ok := s.pending[at]; !ok {
		s.ticks.pushTick(at)
	}
	s.pending[at] = append(s.pending[at], cmd)
	return nil
}

// Pending — сколько команд ждёт своего тика.
func (s *Scheduler) Pending() int {
	n := 0
	for _, list := range s.pending {
		n += len(list)
	}
	return n
}

// LastExecuted — последний тик, для которого отработал ExecuteFrame.
func (s *Scheduler) LastExecuted() types.Tick {
	return s.last
}

// ExecuteFrame исполняет все команды тика в порядке: PlayerID по возрастанию,
// внутри игрока — порядок поступления. Команды будущих тиков не трогаются.
//
// Отклонённая правилами команда превращается в событие CommandRejected.
// Наружу возвращаются только фатальные ошибки: ErrInvalidBound и ErrDesync.
func (s *Scheduler) ExecuteFrame(w *World, tick types.Tick) error {
	if tick <= s.last {
		return &DesyncError{Expected: s.last + 1, Got: tick, Reason: "tick executed twice"}
	}
	if top, ok := s.ticks.Peek(); ok && top < tick {
		// Тик с командами пропущен: молча выбросить их нельзя.
		return &DesyncError{Expected: top, Got: tick, Reason: "tick with pending commands skipped"}
	}
	s.last = tick

	batch, ok := s.pending[tick]
	if !ok {
		return nil
	}
	delete(s.pending, tick)
	s.ticks.popTick()

	// Стабильная сортировка сохраняет порядок поступления внутри игрока.
	slices.SortStableFunc(batch, func(a, b Command) int {
		pa, pb := a.Head().PlayerID, b.Head().PlayerID
		switch {
		case pa < pb:
			return -1
		case pa > pb:
			return 1
		}
		return 0
	})

	for _, cmd := range batch {
		if err := cmd.Execute(w); err != nil {
			if errors.Is(err, rng.ErrInvalidBound) || errors.Is(err, ErrDesync) {
				return fmt.Errorf("tick %d: %s from camp %d: %w", tick, cmd.Type(), cmd.Head().PlayerID, err)
			}
			s.reject(w, tick, cmd, err)
		}
	}
	return nil
}

func (s *Scheduler) reject(w *World, tick types.Tick, cmd Command, err error) {
	h := cmd.Head()
	logger.Log.WithFields(logrus.Fields{
		"world":        w.ID(),
		"tick":         tick,
		"camp":         h.PlayerID,
		"command_type": cmd.Type(),
		"source":       h.Source,
	}).Debugf("Command rejected: %v", err)

	ecs.Publish(w.Events(), domain.CommandRejected{
		Tick:   tick,
		Camp:   h.PlayerID,
		Type:   cmd.Type(),
		Reason: err.Error(),
	})
}
