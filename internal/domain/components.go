package domain

import "github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"

// --- КОМПОНЕНТЫ ---
// Только данные. Никаких указателей: компонент целиком копируется
// при чтении из хранилища и целиком сериализуется в дайджест.

// Transform - Позиция на карте (в клетках)
type Transform struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Owner - Какому лагерю принадлежит сущность
type Owner struct {
	Camp types.CampID `json:"camp"`
}

// Unit - Боевая или рабочая единица
type Unit struct {
	Type UnitType `json:"type"`
}

// Health - Очки прочности
type Health struct {
	HP    int32 `json:"hp"`
	MaxHP int32 `json:"maxHp"`
}

// Movement - Приказ на перемещение. Снимается по прибытии.
type Movement struct {
	TargetX int32 `json:"targetX"`
	TargetY int32 `json:"targetY"`
	Speed   int32 `json:"speed"` // клеток за тик по каждой оси
}

// Camp - Сущность-лагерь (одна на игрока)
type Camp struct {
	ID types.CampID `json:"id"`
}

// Economy - Кредиты лагеря
type Economy struct {
	Credits int64 `json:"credits"`
}
