package systems

import (
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
)

// Movement двигает юниты с приказом Movement к цели. Не больше Speed
// клеток за тик по каждой оси. По прибытии приказ снимается и публикуется UnitArrived.
type Movement struct{}

func (Movement) Name() string { return "movement" }

func (Movement) Update(w *engine.World) error {
	s := w.Store()
	for _, id := range ecs.AllEntitiesWith[domain.Movement](s) {
		mv, _ := ecs.Get[domain.Movement](s, id)
		pos, ok := ecs.Get[domain.Transform](s, id)
		if !ok {
			ecs.Remove[domain.Movement](s, id)
			continue
		}

		pos.X = stepToward(pos.X, mv.TargetX, mv.Speed)
		pos.Y = stepToward(pos.Y, mv.TargetY, mv.Speed)
		if err := ecs.Add(s, id, pos); err != nil {
			return err
		}

		if pos.X == mv.TargetX && pos.Y == mv.TargetY {
			ecs.Remove[domain.Movement](s, id)
			ecs.Publish(w.Events(), domain.UnitArrived{
				Tick:   w.CurrentTick(),
				Entity: id,
				X:      pos.X,
				Y:      pos.Y,
			})
		}
	}
	return nil
}

func stepToward(from, to, speed int32) int32 {
	if speed <= 0 {
		speed = 1
	}
	d, s := int64(to)-int64(from), int64(speed)
	switch {
	case d > s:
		return int32(int64(from) + s)
	case d < -s:
		return int32(int64(from) - s)
	default:
		return to
	}
}
