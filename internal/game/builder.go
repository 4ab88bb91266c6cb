package game

import (
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine/commands"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/systems"
)

// Registry — общая таблица команд. Неизменяема после создания,
// поэтому может разделяться между мирами.
var Registry = commands.NewRegistry()

// NewWorld собирает мир со стандартным набором систем в фиксированном порядке.
func NewWorld(cfg engine.WorldConfig) *engine.World {
	w := engine.NewWorld(cfg)
	w.AddSystem(systems.Movement{})
	w.AddSystem(systems.DefaultIncome())
	return w
}

// NewInstance собирает lockstep-инстанс поверх стандартного мира.
func NewInstance(cfg engine.WorldConfig, confirmer engine.Confirmer, source domain.Source) *engine.Instance {
	return engine.NewInstance(NewWorld(cfg), Registry, confirmer, source)
}
