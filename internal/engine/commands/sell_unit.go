package commands

import (
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/systems"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

// SellUnit — продажа своего юнита за половину стоимости.
type SellUnit struct {
	engine.Header `json:"-"`
	api.SellUnitPayload
}

func (c *SellUnit) Type() domain.CommandType { return domain.CommandSellUnit }

func (c *SellUnit) Execute(w *engine.World) error {
	if err := ownedUnit(w, c.PlayerID, c.Unit); err != nil {
		return err
	}
	u, _ := ecs.Get[domain.Unit](w.Store(), c.Unit)
	spec, _ := domain.LookupUnit(u.Type)

	w.Entities().Destroy(c.Unit)
	ecs.Publish(w.Events(), domain.UnitDestroyed{
		Tick:   w.CurrentTick(),
		Entity: c.Unit,
		Camp:   c.PlayerID,
	})

	if refund := spec.Cost / 2; refund > 0 {
		systems.AddCredits(w, c.PlayerID, refund)
	}
	return nil
}
