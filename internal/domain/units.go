package domain

import "strings"

// UnitType - Тип юнита из каталога
type UnitType uint8

const (
	UnitUnknown UnitType = iota
	UnitInfantry
	UnitTank
	UnitHarvester
	UnitEngineer
)

// UnitSpec - Статические характеристики типа юнита
type UnitSpec struct {
	Name         string
	Cost         int64
	MaxHP        int32
	Speed        int32
	Damage       int32 // базовый урон
	DamageSpread int32 // случайная добавка [0..spread]
	Range        int32 // дальность атаки (Чебышёв)
}

var unitCatalog = map[UnitType]UnitSpec{
	UnitInfantry:  {Name: "INFANTRY", Cost: 100, MaxHP: 50, Speed: 1, Damage: 8, DamageSpread: 4, Range: 3},
	UnitTank:      {Name: "TANK", Cost: 700, MaxHP: 300, Speed: 2, Damage: 40, DamageSpread: 10, Range: 5},
	UnitHarvester: {Name: "HARVESTER", Cost: 1400, MaxHP: 600, Speed: 1},
	UnitEngineer:  {Name: "ENGINEER", Cost: 500, MaxHP: 25, Speed: 1},
}

// LookupUnit возвращает характеристики типа.
func LookupUnit(t UnitType) (UnitSpec, bool) {
	spec, ok := unitCatalog[t]
	return spec, ok
}

// ParseUnitType - по имени из каталога (регистр не важен)
func ParseUnitType(s string) UnitType {
	upper := strings.ToUpper(s)
	for t := UnitInfantry; t <= UnitEngineer; t++ {
		if unitCatalog[t].Name == upper {
			return t
		}
	}
	return UnitUnknown
}

// CanAttack - юниты без урона (харвестер, инженер) не атакуют
func (s UnitSpec) CanAttack() bool {
	return s.Damage > 0
}

func (t UnitType) String() string {
	if spec, ok := unitCatalog[t]; ok {
		return spec.Name
	}
	return "UNKNOWN"
}
