package systems

import (
	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ApplyDamage наносит урон цели. При HP <= 0 цель уничтожается.
// Возвращает true, если цель погибла.
func ApplyDamage(w *engine.World, attacker, target types.EntityID, damage int32) bool {
	hp, ok := ecs.Get[domain.Health](w.Store(), target)
	if !ok {
		return false
	}
	hpBefore := hp.HP
	hp.HP -= damage
	if hp.HP < 0 {
		hp.HP = 0
	}
	died := hp.HP == 0

	logger.Log.WithFields(logrus.Fields{
		"component": "combat_system",
		"world":     w.ID(),
		"tick":      w.CurrentTick(),
		"attacker":  attacker,
		"target":    target,
		"damage":    damage,
		"hp_before": hpBefore,
		"hp_after":  hp.HP,
		"died":      died,
	}).Debug("Attack resolved")

	ecs.Publish(w.Events(), domain.UnitDamaged{
		Tick:     w.CurrentTick(),
		Attacker: attacker,
		Target:   target,
		Damage:   damage,
		HPLeft:   hp.HP,
	})

	if !died {
		// Цель жива — Add не может упасть.
		_ = ecs.Add(w.Store(), target, hp)
		return false
	}

	owner, _ := ecs.Get[domain.Owner](w.Store(), target)
	w.Entities().Destroy(target)
	ecs.Publish(w.Events(), domain.UnitDestroyed{
		Tick:   w.CurrentTick(),
		Entity: target,
		Camp:   owner.Camp,
		Killer: attacker,
	})
	return true
}

// Distance — расстояние Чебышёва (диагональ = 1 клетка).
// Разность считается в int64: координаты с противоположных краёв int32 не переполняются.
func Distance(a, b domain.Transform) int64 {
	return max(abs64(int64(a.X)-int64(b.X)), abs64(int64(a.Y)-int64(b.Y)))
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
