package commands

import (
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

// MoveUnit — приказ группе юнитов идти в точку.
// Чужие и мёртвые юниты из списка пропускаются; если не осталось ни одного — отказ.
type MoveUnit struct {
	engine.Header `json:"-"`
	api.MoveUnitPayload
}

func (c *MoveUnit) Type() domain.CommandType { return domain.CommandMoveUnit }

func (c *MoveUnit) Execute(w *engine.World) error {
	s := w.Store()
	moved := 0
	for _, id := range c.Units {
		if ownedUnit(w, c.PlayerID, id) != nil {
			continue
		}
		u, _ := ecs.Get[domain.Unit](s, id)
		spec, _ := domain.LookupUnit(u.Type)
		pos, _ := ecs.Get[domain.Transform](s, id)
		moved++

		if pos.X == c.X && pos.Y == c.Y {
			ecs.Remove[domain.Movement](s, id)
			continue
		}
		_ = ecs.Add(s, id, domain.Movement{TargetX: c.X, TargetY: c.Y, Speed: spec.Speed})
	}
	if moved == 0 {
		return ErrNoSuchUnit
	}
	return nil
}
