package commands

import (
	"fmt"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
)

// ownedUnit проверяет, что id — живой юнит лагеря camp.
func ownedUnit(w *engine.World, camp types.CampID, id types.EntityID) error {
	if !w.Entities().IsAlive(id) || !ecs.Has[domain.Unit](w.Store(), id) {
		return fmt.Errorf("%w: %s", ErrNoSuchUnit, id)
	}
	owner, ok := ecs.Get[domain.Owner](w.Store(), id)
	if !ok || owner.Camp != camp {
		return fmt.Errorf("%w: %s", ErrNotOwner, id)
	}
	return nil
}
