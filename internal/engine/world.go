package engine

import (
	"fmt"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/clock"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/rng"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/sirupsen/logrus"
)

// System — логика симуляции, исполняемая внутри тика после команд.
type System interface {
	Name() string
	Update(w *World) error
}

// WorldConfig — параметры одного экземпляра симуляции.
type WorldConfig struct {
	ID       string
	Seed     int64
	TickRate int
}

// World — корень агрегата: единолично владеет часами, таблицей сущностей,
// хранилищем компонентов, очередью событий, RNG и планировщиком.
//
// Глобального изменяемого состояния нет: несколько миров в одном процессе
// (сервер с матчами, проверка реплея) друг друга не видят.
// World не потокобезопасен — его ведёт ровно одна горутина.
type World struct {
	id        string
	seed      int64
	clock     *clock.Clock
	store     *ecs.Store
	entities  *ecs.EntityTable
	events    *ecs.EventQueue
	rng       *rng.Random
	scheduler *Scheduler
	systems   []System

	log *logrus.Entry
}

func NewWorld(cfg WorldConfig) *World {
	store := ecs.NewStore()
	w := &World{
		id:        cfg.ID,
		seed:      cfg.Seed,
		clock:     clock.New(cfg.TickRate),
		store:     store,
		entities:  ecs.NewEntityTable(store),
		events:    ecs.NewEventQueue(),
		rng:       rng.New(cfg.Seed),
		scheduler: NewScheduler(),
	}
	w.log = logger.Log.WithField("world", cfg.ID)
	return w
}

// AddSystem регистрирует систему. Системы исполняются в порядке регистрации.
func (w *World) AddSystem(s System) {
	w.systems = append(w.systems, s)
}

// --- ПЛАНИРОВАНИЕ ---

// Submit ставит команду в планировщик. Нулевой ExecuteFrame означает
// "следующий тик" — так локальный ввод попадает в тот же конвейер, что и сетевой.
func (w *World) Submit(cmd Command) error {
	h := cmd.Head()
	if h.ExecuteFrame == 0 {
		h.ExecuteFrame = w.clock.Tick() + 1
	}
	return w.scheduler.Schedule(cmd)
}

// ApplyFrame назначает всем командам кадра тик frame и ставит их в планировщик.
// Порядок cmds — порядок поступления.
func (w *World) ApplyFrame(frame types.Tick, cmds []Command) error {
	if frame <= w.clock.Tick() {
		return &DesyncError{Expected: w.clock.Tick() + 1, Got: frame, Reason: "frame for executed tick"}
	}
	for _, cmd := range cmds {
		cmd.Head().ExecuteFrame = frame
		if err := w.scheduler.Schedule(cmd); err != nil {
			return err
		}
	}
	return nil
}

// --- ТИК ---

// Tick продвигает мир на один тик в автономном режиме (clock.Advance).
func (w *World) Tick() error {
	if err := w.clock.Advance(); err != nil {
		return err
	}
	return w.runTick()
}

// TickTo продвигает мир ровно на тик n, продиктованный извне (lockstep).
// Тики нельзя пропускать и переставлять.
func (w *World) TickTo(n types.Tick) error {
	if want := w.clock.Tick() + 1; n != want {
		return &DesyncError{Expected: want, Got: n, Reason: "lockstep tick out of order"}
	}
	if err := w.clock.SetTick(n); err != nil {
		return err
	}
	return w.runTick()
}

func (w *World) runTick() error {
	tick := w.clock.Tick()

	// События прошлого тика потребители уже прочитали.
	w.events.Clear()

	if err := w.scheduler.ExecuteFrame(w, tick); err != nil {
		w.log.WithField("tick", tick).WithError(err).Error("Scheduler failed")
		return err
	}

	for _, s := range w.systems {
		if err := s.Update(w); err != nil {
			w.log.WithFields(logrus.Fields{
				"tick":   tick,
				"system": s.Name(),
			}).WithError(err).Error("System failed")
			return fmt.Errorf("system %s: %w", s.Name(), err)
		}
	}
	return nil
}

// --- ДОСТУП ---

func (w *World) ID() string { return w.id }
func (w *World) Seed() int64 { return w.seed }
func (w *World) CurrentTick() types.Tick { return w.clock.Tick() }
func (w *World) Clock() *clock.Clock { return w.clock }
func (w *World) Store() *ecs.Store { return w.store }
func (w *World) Entities() *ecs.EntityTable { return w.entities }
func (w *World) Events() *ecs.EventQueue { return w.events }
func (w *World) RNG() *rng.Random { return w.rng }
func (w *World) Scheduler() *Scheduler { return w.scheduler }

// Digest — дайджест хранилища компонентов. Совпадает у миров в одинаковом состоянии.
func (w *World) Digest() (string, error) {
	return w.store.Digest()
}

// Events возвращает события типа T текущего тика (для презентации и ботов).
func Events[T any](w *World) []T {
	return ecs.GetEvents[T](w.events)
}
