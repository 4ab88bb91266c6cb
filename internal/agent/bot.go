package agent

import (
	"encoding/json"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/rng"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/systems"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/sirupsen/logrus"
)

// CommandSink — куда бот отправляет команды. Это может быть матч на сервере
// (команда попадёт в следующий кадр) или локальный мир.
type CommandSink interface {
	SubmitInput(camp types.CampID, in api.Input) error
}

// Bot представляет собой "Игрока-компьютера" для одного лагеря.
//
// Бот не трогает мир: после каждого тика он читает состояние и события
// (pull) и отправляет команды в CommandSink, как обычный игрок.
// У бота своё зерно RNG — случайность мира он не расходует.
//
// Жизненный цикл:
//  1. NewBot -> создание с лагерем, зерном и стартовыми кредитами.
//  2. Instance.OnTick(bot.OnTick) -> бот вызывается после каждого тика.
//  3. Раз в Period тиков вызывается makeMove.
type Bot struct {
	Camp         types.CampID
	Period       int64 // как часто думать, в тиках
	StartCredits int64
	Base         domain.Transform // где появляются новые юниты

	sink     CommandSink
	rng      *rng.Random
	joinSent bool
	rejected int

	log *logrus.Entry
}

func NewBot(camp types.CampID, seed int64, startCredits int64, sink CommandSink) *Bot {
	return &Bot{
		Camp:         camp,
		Period:       10,
		StartCredits: startCredits,
		Base:         domain.Transform{X: int32(camp) * 20, Y: int32(camp) * 20},
		sink:         sink,
		rng:          rng.New(seed),
		log:          logger.Log.WithFields(logrus.Fields{"component": "bot", "camp": camp}),
	}
}

// Rejected — сколько команд бота отклонили правила.
func (b *Bot) Rejected() int {
	return b.rejected
}

// OnTick — хук инстанса. Читает события тика и, если пора, ходит.
func (b *Bot) OnTick(w *engine.World) {
	for _, ev := range engine.Events[domain.CommandRejected](w) {
		if ev.Camp == b.Camp {
			b.rejected++
			b.log.WithField("tick", ev.Tick).Debugf("Command %s rejected: %s", ev.Type, ev.Reason)
		}
	}
	for _, ev := range engine.Events[domain.UnitDestroyed](w) {
		if ev.Camp == b.Camp {
			b.log.WithFields(logrus.Fields{"tick": ev.Tick, "unit": ev.Entity}).Debug("Lost unit")
		}
	}

	period := b.Period
	if period <= 0 {
		period = 1
	}
	if int64(w.CurrentTick())%period != 0 {
		return
	}
	b.makeMove(w)
}

// makeMove — это мозг бота.
func (b *Bot) makeMove(w *engine.World) {
	// --- ШАГ 1: ВХОД В МАТЧ ---
	credits, joined := systems.Credits(w, b.Camp)
	if !joined {
		if !b.joinSent {
			b.send(domain.CommandJoinCamp, api.JoinCampPayload{Credits: b.StartCredits})
			b.joinSent = true
		}
		return
	}

	// --- ШАГ 2: СВОИ И ЧУЖИЕ ЮНИТЫ ---
	s := w.Store()
	var mine, enemies []types.EntityID
	harvesters := 0
	for _, id := range ecs.AllEntitiesWith[domain.Unit](s) {
		owner, _ := ecs.Get[domain.Owner](s, id)
		if owner.Camp != b.Camp {
			enemies = append(enemies, id)
			continue
		}
		mine = append(mine, id)
		if u, _ := ecs.Get[domain.Unit](s, id); u.Type == domain.UnitHarvester {
			harvesters++
		}
	}

	// --- ШАГ 3: ПОСТРОЙКА ---
	if want := b.pickUnit(harvesters); want != domain.UnitUnknown {
		if spec, _ := domain.LookupUnit(want); credits >= spec.Cost {
			b.send(domain.CommandCreateUnit, api.CreateUnitPayload{UnitType: uint8(want), X: b.Base.X, Y: b.Base.Y})
		}
	}

	// --- ШАГ 4: БОЙ ---
	for _, id := range mine {
		u, _ := ecs.Get[domain.Unit](s, id)
		spec, _ := domain.LookupUnit(u.Type)
		if !spec.CanAttack() {
			continue
		}
		target, dist, ok := nearest(s, id, enemies)
		if !ok {
			continue
		}
		if dist <= int64(spec.Range) {
			b.send(domain.CommandAttackUnit, api.AttackUnitPayload{Attacker: id, Target: target})
			continue
		}
		if ecs.Has[domain.Movement](s, id) {
			continue
		}
		pos, _ := ecs.Get[domain.Transform](s, target)
		b.send(domain.CommandMoveUnit, api.MoveUnitPayload{Units: []types.EntityID{id}, X: pos.X, Y: pos.Y})
	}
}

// pickUnit: сначала один харвестер, дальше пехота или танк пополам.
func (b *Bot) pickUnit(harvesters int) domain.UnitType {
	if harvesters == 0 {
		return domain.UnitHarvester
	}
	if b.rng.NextBool() {
		return domain.UnitTank
	}
	return domain.UnitInfantry
}

// nearest — ближайший враг; при равенстве — с меньшим ID.
func nearest(s *ecs.Store, from types.EntityID, enemies []types.EntityID) (types.EntityID, int64, bool) {
	me, ok := ecs.Get[domain.Transform](s, from)
	if !ok {
		return types.NilEntityID, 0, false
	}
	best, bestDist := types.NilEntityID, int64(0)
	for _, id := range enemies {
		pos, ok := ecs.Get[domain.Transform](s, id)
		if !ok {
			continue
		}
		if d := systems.Distance(me, pos); best.IsNil() || d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, bestDist, !best.IsNil()
}

// --- Хелперы для отправки команд ---

func (b *Bot) send(ct domain.CommandType, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		b.log.WithError(err).Error("Error marshalling payload")
		return
	}
	if err := b.sink.SubmitInput(b.Camp, api.Input{CommandType: uint16(ct), Command: raw}); err != nil {
		b.log.WithError(err).WithField("command_type", ct).Warn("Command not accepted")
	}
}
