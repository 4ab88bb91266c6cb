package domain

import "github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"

// --- СОБЫТИЯ ---
// Неизменяемые значения "что произошло за тик". Презентация забирает
// их сама (pull), мир их только публикует.

type UnitCreated struct {
	Tick   types.Tick     `json:"tick"`
	Entity types.EntityID `json:"entity"`
	Camp   types.CampID   `json:"camp"`
	Type   UnitType       `json:"type"`
	X      int32          `json:"x"`
	Y      int32          `json:"y"`
}

type UnitDestroyed struct {
	Tick   types.Tick     `json:"tick"`
	Entity types.EntityID `json:"entity"`
	Camp   types.CampID   `json:"camp"`
	Killer types.EntityID `json:"killer,omitempty"` // Nil — продан
}

type UnitArrived struct {
	Tick   types.Tick     `json:"tick"`
	Entity types.EntityID `json:"entity"`
	X      int32          `json:"x"`
	Y      int32          `json:"y"`
}

type UnitDamaged struct {
	Tick     types.Tick     `json:"tick"`
	Attacker types.EntityID `json:"attacker"`
	Target   types.EntityID `json:"target"`
	Damage   int32          `json:"damage"`
	HPLeft   int32          `json:"hpLeft"`
}

// EconomyChanged - Delta может быть отрицательной (покупка)
type EconomyChanged struct {
	Tick    types.Tick   `json:"tick"`
	Camp    types.CampID `json:"camp"`
	Delta   int64        `json:"delta"`
	Credits int64        `json:"credits"`
}

type CampJoined struct {
	Tick    types.Tick     `json:"tick"`
	Camp    types.CampID   `json:"camp"`
	Entity  types.EntityID `json:"entity"`
	Credits int64          `json:"credits"`
}

// CommandRejected - Команда дошла до своего тика, но игровые правила её отклонили.
// Это не ошибка симуляции: все пиры отклонят её одинаково.
type CommandRejected struct {
	Tick   types.Tick   `json:"tick"`
	Camp   types.CampID `json:"camp"`
	Type   CommandType  `json:"type"`
	Reason string       `json:"reason"`
}
