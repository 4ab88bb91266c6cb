package engine

import (
	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
)

// Header — общие поля любой команды.
//
// Конкретные команды встраивают Header с тегом json:"-": в каноническую
// кодировку (JSON-объект command кадра) попадает только payload,
// а лагерь и тик берутся из самого кадра.
type Header struct {
	PlayerID     types.CampID
	Source       domain.Source
	ExecuteFrame types.Tick
}

// Head даёт доступ к заголовку через интерфейс Command.
func (h *Header) Head() *Header { return h }

// Command — запрос на изменение состояния мира.
//
// Execute — единственная точка мутации. Результат зависит только от
// состояния мира, payload команды и чисел, взятых из RNG мира во время вызова.
// Ошибка из Execute означает, что игровые правила команду отклонили
// (мир при этом не изменён); фатальными считаются только ErrInvalidBound
// генератора и ErrDesync.
type Command interface {
	Head() *Header
	Type() domain.CommandType
	Execute(w *World) error
}
