package systems

import (
	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
)

// FindCamp ищет сущность-лагерь. Перебор по возрастанию ID.
func FindCamp(w *engine.World, camp types.CampID) (types.EntityID, bool) {
	for _, id := range ecs.AllEntitiesWith[domain.Camp](w.Store()) {
		if c, _ := ecs.Get[domain.Camp](w.Store(), id); c.ID == camp {
			return id, true
		}
	}
	return types.NilEntityID, false
}

// Credits возвращает баланс лагеря. ok=false — у лагеря нет экономики
// (лагерь не вступал через JOIN_CAMP).
func Credits(w *engine.World, camp types.CampID) (int64, bool) {
	id, ok := FindCamp(w, camp)
	if !ok {
		return 0, false
	}
	eco, ok := ecs.Get[domain.Economy](w.Store(), id)
	return eco.Credits, ok
}

// AddCredits меняет баланс лагеря на delta и публикует EconomyChanged.
// Баланс не уходит в минус: проверка — забота вызывающего.
func AddCredits(w *engine.World, camp types.CampID, delta int64) (int64, bool) {
	id, ok := FindCamp(w, camp)
	if !ok {
		return 0, false
	}
	var credits int64
	if !ecs.Update(w.Store(), id, func(e *domain.Economy) {
		e.Credits += delta
		credits = e.Credits
	}) {
		return 0, false
	}

	ecs.Publish(w.Events(), domain.EconomyChanged{
		Tick:    w.CurrentTick(),
		Camp:    camp,
		Delta:   delta,
		Credits: credits,
	})
	return credits, true
}
