package commands

import (
	"fmt"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/systems"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

// AttackUnit — выстрел по цели в радиусе атаки.
// Урон = базовый + NextIntn(spread+1) из RNG мира.
type AttackUnit struct {
	engine.Header `json:"-"`
	api.AttackUnitPayload
}

func (c *AttackUnit) Type() domain.CommandType { return domain.CommandAttackUnit }

func (c *AttackUnit) Execute(w *engine.World) error {
	if err := ownedUnit(w, c.PlayerID, c.Attacker); err != nil {
		return err
	}
	s := w.Store()

	u, _ := ecs.Get[domain.Unit](s, c.Attacker)
	spec, _ := domain.LookupUnit(u.Type)
	if !spec.CanAttack() {
		return fmt.Errorf("%w: %s", ErrCannotAttack, u.Type)
	}

	if !w.Entities().IsAlive(c.Target) || !ecs.Has[domain.Health](s, c.Target) {
		return fmt.Errorf("%w: target %s", ErrNoSuchUnit, c.Target)
	}
	if owner, ok := ecs.Get[domain.Owner](s, c.Target); ok && owner.Camp == c.PlayerID {
		return ErrFriendlyFire
	}

	from, _ := ecs.Get[domain.Transform](s, c.Attacker)
	to, _ := ecs.Get[domain.Transform](s, c.Target)
	if dist := systems.Distance(from, to); dist > int64(spec.Range) {
		return fmt.Errorf("%w: %d > %d", ErrOutOfRange, dist, spec.Range)
	}

	// Ошибка RNG — дефект вызывающего кода, пробрасывается как фатальная.
	roll, err := w.RNG().NextIntn(spec.DamageSpread + 1)
	if err != nil {
		return err
	}
	systems.ApplyDamage(w, c.Attacker, c.Target, spec.Damage+roll)
	return nil
}
