package types

import (
	"strconv"
)

// EntityID — непрозрачный числовой идентификатор сущности симуляции.
//
// Идентификатор уникален только среди живых сущностей: после уничтожения
// он возвращается в пул переработки мира и может быть выдан повторно.
// Никакой информации (тип, уровень, шард) внутри не упаковано —
// всё, что известно о сущности, хранится в её компонентах.
type EntityID uint64

// NilEntityID — нулевой идентификатор сущности.
//
// Таблица сущностей никогда его не выдаёт, первый выделенный ID равен 1.
const NilEntityID EntityID = 0

// CampID — идентификатор лагеря (игрока / команды) в кадре синхронизации.
type CampID int32

// Tick — номер дискретного шага симуляции. Тик 0 — начальное состояние мира.
type Tick int64

// IsNil проверяет, является ли идентификатор нулевым.
func (id EntityID) IsNil() bool {
	return id == NilEntityID
}

// String возвращает человекочитаемое представление EntityID для логов.
func (id EntityID) String() string {
	if id.IsNil() {
		return "<nil>"
	}
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// MarshalJSON сериализует EntityID в JSON как строку.
//
// Это необходимо для предотвращения потери точности при работе с
// JavaScript и другими средами, не поддерживающими uint64.
func (id EntityID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(id), 10) + `"`), nil
}

// UnmarshalJSON десериализует EntityID из JSON.
//
// Поддерживаются как строковое, так и числовое представление.
func (id *EntityID) UnmarshalJSON(data []byte) error {
	s := string(data)

	if len(s) > 1 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" || s == "null" {
		*id = NilEntityID
		return nil
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}

	*id = EntityID(v)
	return nil
}
