package systems

import (
	"math"
	"testing"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
)

func TestStepToward(t *testing.T) {
	tests := []struct {
		from, to, speed, want int32
	}{
		{0, 10, 2, 2},
		{0, 1, 2, 1},
		{5, -5, 3, 2},
		{7, 7, 1, 7},
		{0, 3, 0, 1}, // скорость 0 трактуется как 1
		{math.MinInt32, math.MaxInt32, 1, math.MinInt32 + 1},
		{math.MaxInt32, math.MinInt32, 5, math.MaxInt32 - 5},
		{math.MaxInt32 - 1, math.MaxInt32, math.MaxInt32, math.MaxInt32},
	}
	for _, tt := range tests {
		if got := stepToward(tt.from, tt.to, tt.speed); got != tt.want {
			t.Errorf("stepToward(%d, %d, %d) = %d, want %d", tt.from, tt.to, tt.speed, got, tt.want)
		}
	}
}

func TestMovementSystem(t *testing.T) {
	w := engine.NewWorld(engine.WorldConfig{ID: "movement"})
	w.AddSystem(Movement{})

	fast := spawnUnit(w, 0, domain.UnitTank, 0, 0)
	slow := spawnUnit(w, 0, domain.UnitInfantry, 0, 0)
	_ = ecs.Add(w.Store(), fast, domain.Movement{TargetX: 4, TargetY: 0, Speed: 2})
	_ = ecs.Add(w.Store(), slow, domain.Movement{TargetX: 0, TargetY: 3, Speed: 1})

	arrivals := map[int]int{}
	for tick := 1; tick <= 3; tick++ {
		if err := w.Tick(); err != nil {
			t.Fatal(err)
		}
		for range engine.Events[domain.UnitArrived](w) {
			arrivals[tick]++
		}
	}

	if arrivals[2] != 1 || arrivals[3] != 1 {
		t.Errorf("expected tank to arrive at tick 2 and infantry at tick 3, got %v", arrivals)
	}
	pos, _ := ecs.Get[domain.Transform](w.Store(), slow)
	if pos != (domain.Transform{X: 0, Y: 3}) {
		t.Errorf("infantry at %+v", pos)
	}
	if ecs.Count[domain.Movement](w.Store()) != 0 {
		t.Error("all orders must be completed")
	}
}

func TestIncomeSystem(t *testing.T) {
	w := engine.NewWorld(engine.WorldConfig{ID: "income"})
	w.AddSystem(Income{Interval: 2, Amount: 10})

	camp := w.Entities().Create()
	_ = ecs.Add(w.Store(), camp, domain.Camp{ID: 1})
	_ = ecs.Add(w.Store(), camp, domain.Economy{})
	spawnUnit(w, 1, domain.UnitHarvester, 0, 0)
	spawnUnit(w, 1, domain.UnitHarvester, 0, 0)
	spawnUnit(w, 1, domain.UnitTank, 0, 0)
	spawnUnit(w, 2, domain.UnitHarvester, 0, 0) // лагерь без экономики

	for i := 0; i < 4; i++ {
		_ = w.Tick()
	}
	if credits, _ := Credits(w, 1); credits != 40 {
		t.Errorf("credits = %d, want 2 harvesters x 2 payouts x 10", credits)
	}
}
