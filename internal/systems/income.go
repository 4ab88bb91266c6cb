package systems

import (
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
)

// Income — каждые Interval тиков каждый живой харвестер приносит
// своему лагерю Amount кредитов. Лагеря без экономики не получают ничего.
type Income struct {
	Interval int64
	Amount   int64
}

// DefaultIncome — одна выплата в секунду при 20 тиках в секунду.
func DefaultIncome() Income {
	return Income{Interval: 20, Amount: 25}
}

func (Income) Name() string { return "income" }

func (inc Income) Update(w *engine.World) error {
	if inc.Interval <= 0 || int64(w.CurrentTick())%inc.Interval != 0 {
		return nil
	}
	s := w.Store()
	for _, id := range ecs.AllEntitiesWith[domain.Unit](s) {
		u, _ := ecs.Get[domain.Unit](s, id)
		if u.Type != domain.UnitHarvester {
			continue
		}
		owner, ok := ecs.Get[domain.Owner](s, id)
		if !ok {
			continue
		}
		AddCredits(w, owner.Camp, inc.Amount)
	}
	return nil
}
