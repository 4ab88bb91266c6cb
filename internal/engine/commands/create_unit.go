package commands

import (
	"fmt"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/systems"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

// CreateUnit — новый юнит лагеря в точке (x, y).
// Если у лагеря есть экономика, списывается стоимость юнита.
type CreateUnit struct {
	engine.Header `json:"-"`
	api.CreateUnitPayload
}

func (c *CreateUnit) Type() domain.CommandType { return domain.CommandCreateUnit }

func (c *CreateUnit) Execute(w *engine.World) error {
	unitType := domain.UnitType(c.UnitType)
	spec, ok := domain.LookupUnit(unitType)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownUnitType, c.UnitType)
	}

	// Сначала все проверки, потом мутации: отказ не должен оставлять следов.
	if credits, hasEconomy := systems.Credits(w, c.PlayerID); hasEconomy {
		if credits < spec.Cost {
			return fmt.Errorf("%w: have %d, need %d", ErrInsufficientCredits, credits, spec.Cost)
		}
		systems.AddCredits(w, c.PlayerID, -spec.Cost)
	}

	s := w.Store()
	id := w.Entities().Create()
	if err := ecs.Add(s, id, domain.Transform{X: c.X, Y: c.Y}); err != nil {
		return err
	}
	_ = ecs.Add(s, id, domain.Owner{Camp: c.PlayerID})
	_ = ecs.Add(s, id, domain.Unit{Type: unitType})
	_ = ecs.Add(s, id, domain.Health{HP: spec.MaxHP, MaxHP: spec.MaxHP})

	ecs.Publish(w.Events(), domain.UnitCreated{
		Tick:   w.CurrentTick(),
		Entity: id,
		Camp:   c.PlayerID,
		Type:   unitType,
		X:      c.X,
		Y:      c.Y,
	})
	return nil
}
