package game

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine/commands"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/systems"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

func input(t *testing.T, ct domain.CommandType, payload any) api.Input {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return api.Input{CommandType: uint16(ct), Command: raw}
}

func frameOf(tick int64, camps ...api.CampInputs) api.FrameMessage {
	return api.FrameMessage{Frame: tick, Data: camps}
}

func camp(id int32, inputs ...api.Input) api.CampInputs {
	return api.CampInputs{CampID: id, Inputs: inputs}
}

// runFrames прогоняет кадры 1..n через инстанс; кадры без команд заполняются пустыми.
func runFrames(t *testing.T, inst *engine.Instance, n int64, frames map[int64]api.FrameMessage) {
	t.Helper()
	for tick := int64(1); tick <= n; tick++ {
		f, ok := frames[tick]
		if !ok {
			f = frameOf(tick)
		}
		if err := inst.Push(f); err != nil {
			t.Fatalf("push %d: %v", tick, err)
		}
		if err := inst.Step(); err != nil {
			t.Fatalf("step %d: %v", tick, err)
		}
	}
}

func TestCreateUnitAtTick5(t *testing.T) {
	inst := NewInstance(engine.WorldConfig{ID: "e2e", Seed: 42}, nil, domain.SourceNetwork)
	w := inst.World()

	create := frameOf(5, camp(0, input(t, domain.CommandCreateUnit, api.CreateUnitPayload{UnitType: uint8(domain.UnitTank), X: 12, Y: 34})))
	runFrames(t, inst, 4, nil)
	if w.Entities().ActiveCount() != 0 {
		t.Fatal("no entity may exist before tick 5")
	}

	_ = inst.Push(create)
	if err := inst.Step(); err != nil {
		t.Fatal(err)
	}

	if w.Entities().ActiveCount() != 1 {
		t.Fatalf("expected exactly one entity, got %d", w.Entities().ActiveCount())
	}
	ids := ecs.AllEntitiesWith[domain.Transform](w.Store())
	pos, _ := ecs.Get[domain.Transform](w.Store(), ids[0])
	if pos != (domain.Transform{X: 12, Y: 34}) {
		t.Errorf("unexpected position %+v", pos)
	}

	created := engine.Events[domain.UnitCreated](w)
	if len(created) != 1 || created[0].Entity != ids[0] || created[0].Tick != 5 || created[0].Camp != 0 {
		t.Fatalf("unexpected UnitCreated events: %+v", created)
	}

	// Тик 6 очищает события тика 5.
	_ = inst.Push(frameOf(6))
	_ = inst.Step()
	if len(engine.Events[domain.UnitCreated](w)) != 0 {
		t.Error("UnitCreated must be cleared at tick 6")
	}
}

func TestUnknownCommandResilience(t *testing.T) {
	inst := NewInstance(engine.WorldConfig{ID: "unknown"}, nil, domain.SourceNetwork)
	unit := api.CreateUnitPayload{UnitType: uint8(domain.UnitInfantry), X: 1, Y: 1}

	f := frameOf(1, camp(0,
		input(t, domain.CommandCreateUnit, unit),
		api.Input{CommandType: 77, Command: json.RawMessage(`{"whatever":1}`)},
		input(t, domain.CommandCreateUnit, unit),
		input(t, domain.CommandCreateUnit, unit),
	))
	runFrames(t, inst, 1, map[int64]api.FrameMessage{1: f})

	if n := inst.World().Entities().ActiveCount(); n != 3 {
		t.Errorf("expected 3 units from valid commands, got %d", n)
	}
}

func TestMalformedCommandSkipped(t *testing.T) {
	inst := NewInstance(engine.WorldConfig{ID: "malformed"}, nil, domain.SourceNetwork)
	f := frameOf(1,
		camp(0, api.Input{CommandType: uint16(domain.CommandCreateUnit), Command: json.RawMessage(`{"unitType":"tank"}`)}),
		camp(1, api.Input{CommandType: uint16(domain.CommandCreateUnit), Command: json.RawMessage(`{"x":1}`)}),
		camp(2, input(t, domain.CommandCreateUnit, api.CreateUnitPayload{UnitType: 1})),
	)
	runFrames(t, inst, 1, map[int64]api.FrameMessage{1: f})

	if n := inst.World().Entities().ActiveCount(); n != 1 {
		t.Errorf("expected only the well-formed command to apply, got %d entities", n)
	}
}

func TestUnparseableEntriesSkippedIndividually(t *testing.T) {
	inst := NewInstance(engine.WorldConfig{ID: "unparseable"}, nil, domain.SourceNetwork)
	unit := `{"commandType":1,"command":{"unitType":1,"x":1,"y":1}}`
	raw := `{"frame":1,"data":[` +
		`{"campId":0,"inputs":[` + unit + `,{"commandType":70000,"command":{}},` + unit + `,{"commandType":"x","command":{}},` + unit + `]},` +
		`{"campId":"blue","inputs":[` + unit + `]},` +
		`{"campId":1,"inputs":[` + unit + `]}]}`

	var f api.FrameMessage
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatalf("frame with bad entries must decode: %v", err)
	}
	runFrames(t, inst, 1, map[int64]api.FrameMessage{1: f})

	created := engine.Events[domain.UnitCreated](inst.World())
	if len(created) != 4 {
		t.Fatalf("expected 3 units for camp 0 and 1 for camp 1, got %d", len(created))
	}
	for i, ev := range created {
		if want := types.CampID(i / 3); ev.Camp != want {
			t.Errorf("unit %d: camp %d, want %d", i, ev.Camp, want)
		}
	}
}

func TestRegistryErrors(t *testing.T) {
	_, err := Registry.DecodeInput(0, api.Input{CommandType: 500}, domain.SourceLocal)
	if !errors.Is(err, commands.ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
	_, err = Registry.DecodeInput(0, api.Input{CommandType: uint16(domain.CommandSellUnit), Command: json.RawMessage(`{}`)}, domain.SourceLocal)
	if !errors.Is(err, commands.ErrMalformedCommand) {
		t.Errorf("expected ErrMalformedCommand, got %v", err)
	}
	_, err = Registry.DecodeInput(0, api.Input{CommandType: uint16(domain.CommandJoinCamp)}, domain.SourceLocal)
	if !errors.Is(err, commands.ErrMalformedCommand) {
		t.Errorf("expected ErrMalformedCommand for empty payload, got %v", err)
	}

	var bad api.Input
	_ = json.Unmarshal([]byte(`{"commandType":70000,"command":{"credits":1}}`), &bad)
	_, err = Registry.DecodeInput(0, bad, domain.SourceLocal)
	if !errors.Is(err, commands.ErrMalformedCommand) {
		t.Errorf("expected ErrMalformedCommand for out-of-range tag, got %v", err)
	}
}

func TestEconomyAndSell(t *testing.T) {
	inst := NewInstance(engine.WorldConfig{ID: "eco"}, nil, domain.SourceNetwork)
	w := inst.World()
	frames := map[int64]api.FrameMessage{
		1: frameOf(1, camp(1, input(t, domain.CommandJoinCamp, api.JoinCampPayload{Credits: 1000}))),
		2: frameOf(2, camp(1,
			input(t, domain.CommandCreateUnit, api.CreateUnitPayload{UnitType: uint8(domain.UnitTank)}),
			input(t, domain.CommandCreateUnit, api.CreateUnitPayload{UnitType: uint8(domain.UnitTank)}),
		)),
	}
	runFrames(t, inst, 2, frames)

	credits, ok := systems.Credits(w, 1)
	if !ok || credits != 300 {
		t.Fatalf("credits = %d (ok=%v), want 300 after one tank", credits, ok)
	}
	rejected := engine.Events[domain.CommandRejected](w)
	if len(rejected) != 1 || rejected[0].Type != domain.CommandCreateUnit {
		t.Fatalf("expected second tank rejected, got %+v", rejected)
	}

	tank := ecs.AllEntitiesWith[domain.Unit](w.Store())[0]
	_ = inst.Push(frameOf(3, camp(1, input(t, domain.CommandSellUnit, api.SellUnitPayload{Unit: tank}))))
	if err := inst.Step(); err != nil {
		t.Fatal(err)
	}
	credits, _ = systems.Credits(w, 1)
	if credits != 650 {
		t.Errorf("credits after sell = %d, want 650", credits)
	}
	if w.Entities().IsAlive(tank) {
		t.Error("sold tank must be destroyed")
	}
}

func TestJoinTwiceRejected(t *testing.T) {
	inst := NewInstance(engine.WorldConfig{ID: "join"}, nil, domain.SourceNetwork)
	join := input(t, domain.CommandJoinCamp, api.JoinCampPayload{Credits: 10})
	runFrames(t, inst, 1, map[int64]api.FrameMessage{1: frameOf(1, camp(3, join, join))})

	if n := ecs.Count[domain.Camp](inst.World().Store()); n != 1 {
		t.Errorf("expected one camp entity, got %d", n)
	}
	if len(engine.Events[domain.CampJoined](inst.World())) != 1 {
		t.Error("expected one CampJoined")
	}
}

func TestMoveAndArrive(t *testing.T) {
	inst := NewInstance(engine.WorldConfig{ID: "move"}, nil, domain.SourceNetwork)
	w := inst.World()
	runFrames(t, inst, 1, map[int64]api.FrameMessage{
		1: frameOf(1, camp(0, input(t, domain.CommandCreateUnit, api.CreateUnitPayload{UnitType: uint8(domain.UnitTank), X: 0, Y: 0}))),
	})
	tank := ecs.AllEntitiesWith[domain.Unit](w.Store())[0]

	_ = inst.Push(frameOf(2,
		camp(0, input(t, domain.CommandMoveUnit, api.MoveUnitPayload{Units: []types.EntityID{tank}, X: 5, Y: -3})),
		// Чужой лагерь не может двигать этот танк.
		camp(1, input(t, domain.CommandMoveUnit, api.MoveUnitPayload{Units: []types.EntityID{tank}, X: 100, Y: 100})),
	))
	_ = inst.Step()
	if len(engine.Events[domain.CommandRejected](w)) != 1 {
		t.Error("foreign move must be rejected")
	}

	// Скорость танка 2: (0,0) -> (2,-2) -> (4,-3) -> (5,-3).
	var arrived []domain.UnitArrived
	for tick := int64(3); tick <= 4; tick++ {
		_ = inst.Push(frameOf(tick))
		_ = inst.Step()
		arrived = append(arrived, engine.Events[domain.UnitArrived](w)...)
	}
	if len(arrived) != 1 || arrived[0].X != 5 || arrived[0].Y != -3 || arrived[0].Tick != 4 {
		t.Fatalf("unexpected arrivals: %+v", arrived)
	}
	if ecs.Has[domain.Movement](w.Store(), tank) {
		t.Error("Movement must be removed on arrival")
	}
}

func TestAttackUsesWorldRNG(t *testing.T) {
	setup := func() *engine.Instance {
		inst := NewInstance(engine.WorldConfig{ID: "attack", Seed: 99}, nil, domain.SourceNetwork)
		tank := api.CreateUnitPayload{UnitType: uint8(domain.UnitTank), X: 0, Y: 0}
		inf := api.CreateUnitPayload{UnitType: uint8(domain.UnitInfantry), X: 3, Y: 3}
		runFrames(t, inst, 1, map[int64]api.FrameMessage{
			1: frameOf(1, camp(0, input(t, domain.CommandCreateUnit, tank)), camp(1, input(t, domain.CommandCreateUnit, inf))),
		})
		return inst
	}

	a, b := setup(), setup()
	// Танк (#1) бьёт пехоту (#2): урон 40..50 >= 50 HP только на максимуме, поэтому
	// атакуем два раза — второй выстрел добивает наверняка.
	shot := input(t, domain.CommandAttackUnit, api.AttackUnitPayload{Attacker: 1, Target: 2})
	for _, inst := range []*engine.Instance{a, b} {
		_ = inst.Push(frameOf(2, camp(0, shot)))
		_ = inst.Push(frameOf(3, camp(0, shot)))
		_ = inst.Step()
		_ = inst.Step()
	}

	if a.World().Entities().IsAlive(2) {
		t.Error("infantry must be dead after two tank shots")
	}
	da, _ := a.World().Digest()
	db, _ := b.World().Digest()
	if da != db || a.World().RNG().State() != b.World().RNG().State() {
		t.Error("identical inputs must give identical state")
	}
}

func TestAttackRejections(t *testing.T) {
	inst := NewInstance(engine.WorldConfig{ID: "attack-reject"}, nil, domain.SourceNetwork)
	w := inst.World()
	// #1 пехота, #2 харвестер, #3 пехота (лагерь 0); #4 пехота лагеря 1 далеко.
	runFrames(t, inst, 1, map[int64]api.FrameMessage{
		1: frameOf(1,
			camp(0,
				input(t, domain.CommandCreateUnit, api.CreateUnitPayload{UnitType: uint8(domain.UnitInfantry)}),
				input(t, domain.CommandCreateUnit, api.CreateUnitPayload{UnitType: uint8(domain.UnitHarvester)}),
				input(t, domain.CommandCreateUnit, api.CreateUnitPayload{UnitType: uint8(domain.UnitInfantry), X: 1}),
			),
			camp(1, input(t, domain.CommandCreateUnit, api.CreateUnitPayload{UnitType: uint8(domain.UnitInfantry), X: 50})),
		),
	})

	tests := []struct {
		name string
		camp int32
		p    api.AttackUnitPayload
		want error
	}{
		{"out of range", 0, api.AttackUnitPayload{Attacker: 1, Target: 4}, commands.ErrOutOfRange},
		{"harvester", 0, api.AttackUnitPayload{Attacker: 2, Target: 4}, commands.ErrCannotAttack},
		{"friendly", 0, api.AttackUnitPayload{Attacker: 1, Target: 3}, commands.ErrFriendlyFire},
		{"not owner", 1, api.AttackUnitPayload{Attacker: 1, Target: 4}, commands.ErrNotOwner},
		{"dead target", 0, api.AttackUnitPayload{Attacker: 1, Target: 9}, commands.ErrNoSuchUnit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Registry.DecodeInput(types.CampID(tt.camp), input(t, domain.CommandAttackUnit, tt.p), domain.SourceLocal)
			if err != nil {
				t.Fatal(err)
			}
			if err := cmd.Execute(w); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHarvesterIncome(t *testing.T) {
	inst := NewInstance(engine.WorldConfig{ID: "income"}, nil, domain.SourceNetwork)
	runFrames(t, inst, 20, map[int64]api.FrameMessage{
		1: frameOf(1, camp(0, input(t, domain.CommandJoinCamp, api.JoinCampPayload{Credits: 1400}))),
		2: frameOf(2, camp(0, input(t, domain.CommandCreateUnit, api.CreateUnitPayload{UnitType: uint8(domain.UnitHarvester)}))),
	})

	credits, _ := systems.Credits(inst.World(), 0)
	if credits != systems.DefaultIncome().Amount {
		t.Errorf("credits = %d, want one income payment", credits)
	}
}
