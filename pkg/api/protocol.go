package api

import (
	"encoding/json"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
)

// --- КАДР СИНХРОНИЗАЦИИ ---

// FrameMessage это единица обмена протокола lockstep: все команды всех лагерей
// за один тик. Кадры нумеруются с 1, тик 0 — начальное состояние мира.
type FrameMessage struct {
	// Frame номер тика, на котором команды кадра должны исполниться.
	Frame int64 `json:"frame"`

	// Data команды, сгруппированные по лагерям.
	Data []CampInputs `json:"data"`
}

// CampInputs команды одного лагеря в порядке их поступления.
//
// Разбор записи никогда не валит кадр целиком: если campId не разобрался,
// заполняется Malformed и получатель пропускает весь лагерь (см. wire.go).
type CampInputs struct {
	CampID int32   `json:"campId"`
	Inputs []Input `json:"inputs"`

	Malformed string `json:"-"`
	raw       json.RawMessage
}

// Input одна команда в кадре. Структура Command зависит от CommandType
// и разбирается закрытой таблицей декодеров на стороне симуляции.
//
// Нечисловой или не влезающий в uint16 тег не ошибка разбора кадра:
// заполняется Malformed, получатель пропускает только эту запись.
type Input struct {
	CommandType uint16          `json:"commandType"`
	Command     json.RawMessage `json:"command"`

	Malformed string `json:"-"`
	raw       json.RawMessage
}

// --- КЛИЕНТ -> СЕРВЕР ---

// Типы клиентских сообщений
const (
	MsgJoin    = "JOIN"
	MsgInput   = "INPUT"
	MsgConfirm = "CONFIRM"
)

// ClientMessage это корневой объект для всех сообщений от клиента к серверу.
type ClientMessage struct {
	// Type одно из MsgJoin, MsgInput, MsgConfirm.
	Type string `json:"type"`

	// CampID лагерь отправителя. Для JOIN игнорируется: лагерь назначает сервер.
	CampID int32 `json:"campId,omitempty"`

	// Payload JSON-объект, структура зависит от Type.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload запрос на вход в матч.
type JoinPayload struct {
	Match    string `json:"match,omitempty"` // пусто — матч по умолчанию
	Name     string `json:"name,omitempty"`
	Protocol int    `json:"protocol"` // версия протокола кадров клиента
}

// ConfirmPayload подтверждение того, что кадр полностью передан планировщику.
type ConfirmPayload struct {
	Frame int64 `json:"frame"`
}

// --- СЕРВЕР -> КЛИЕНТ ---

// Типы серверных сообщений
const (
	MsgWelcome = "WELCOME"
	MsgFrame   = "FRAME"
	MsgError   = "ERROR"
)

// ServerMessage это корневой объект, который сервер отправляет клиенту.
type ServerMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WelcomePayload всё, что нужно клиенту, чтобы поднять у себя идентичный мир.
type WelcomePayload struct {
	MatchID   string `json:"matchId"`
	CampID    int32  `json:"campId"`
	Seed      int64  `json:"seed"`
	TickRate  int32  `json:"tickRate"`
	NextFrame int64  `json:"nextFrame"` // следующий кадр к запечатыванию; более ранние идут сразу за WELCOME
	Protocol  int    `json:"protocol"`
}

// ErrorPayload текст ошибки для клиента.
type ErrorPayload struct {
	Message string `json:"message"`
}

// --- Payloads команд ---

// CreateUnitPayload используется командой CREATE_UNIT.
type CreateUnitPayload struct {
	UnitType uint8 `json:"unitType"`
	X        int32 `json:"x"`
	Y        int32 `json:"y"`
}

// MoveUnitPayload используется командой MOVE_UNIT.
type MoveUnitPayload struct {
	Units []types.EntityID `json:"units"`
	X     int32            `json:"x"`
	Y     int32            `json:"y"`
}

// AttackUnitPayload используется командой ATTACK_UNIT.
type AttackUnitPayload struct {
	Attacker types.EntityID `json:"attacker"`
	Target   types.EntityID `json:"target"`
}

// SellUnitPayload используется командой SELL_UNIT.
type SellUnitPayload struct {
	Unit types.EntityID `json:"unit"`
}

// JoinCampPayload используется командой JOIN_CAMP.
type JoinCampPayload struct {
	Credits int64 `json:"credits"`
}

// NewServerMessage упаковывает payload в конверт.
func NewServerMessage(msgType string, payload any) (ServerMessage, error) {
	if payload == nil {
		return ServerMessage{Type: msgType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ServerMessage{}, err
	}
	return ServerMessage{Type: msgType, Payload: raw}, nil
}
