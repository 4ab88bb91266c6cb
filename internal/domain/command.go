package domain

import "strings"

// CommandType — стабильный числовой тег команды в протоколе синхронизации кадров.
// Значения не переиспользуются: тег, однажды отправленный по сети, закреплён навсегда.
type CommandType uint16

const (
	CommandUnknown    CommandType = 0
	CommandCreateUnit CommandType = 1
	CommandMoveUnit   CommandType = 2
	CommandAttackUnit CommandType = 3
	CommandSellUnit   CommandType = 4
	CommandJoinCamp   CommandType = 5
	// В будущем: CommandBuildStructure, CommandSetRallyPoint...
)

// Маппинг для логов Domain -> String
var commandToString = map[CommandType]string{
	CommandCreateUnit: "CREATE_UNIT",
	CommandMoveUnit:   "MOVE_UNIT",
	CommandAttackUnit: "ATTACK_UNIT",
	CommandSellUnit:   "SELL_UNIT",
	CommandJoinCamp:   "JOIN_CAMP",
}

// Маппинг для CLI/отладки String -> Domain
var stringToCommand = map[string]CommandType{
	"CREATE_UNIT": CommandCreateUnit,
	"MOVE_UNIT":   CommandMoveUnit,
	"ATTACK_UNIT": CommandAttackUnit,
	"SELL_UNIT":   CommandSellUnit,
	"JOIN_CAMP":   CommandJoinCamp,
}

// ParseCommandType конвертирует имя команды в тег (регистр не важен).
func ParseCommandType(s string) CommandType {
	if val, ok := stringToCommand[strings.ToUpper(s)]; ok {
		return val
	}
	return CommandUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (c CommandType) String() string {
	if val, ok := commandToString[c]; ok {
		return val
	}
	return "UNKNOWN"
}

// Source — откуда пришла команда. На результат исполнения не влияет,
// используется для логов и записи реплеев.
type Source uint8

const (
	SourceLocal Source = iota
	SourceAI
	SourceNetwork
	SourceReplay
)

func (s Source) String() string {
	switch s {
	case SourceLocal:
		return "LOCAL"
	case SourceAI:
		return "AI"
	case SourceNetwork:
		return "NETWORK"
	case SourceReplay:
		return "REPLAY"
	default:
		return "UNKNOWN"
	}
}
