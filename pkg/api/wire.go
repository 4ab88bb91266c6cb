package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// --- ПОЭЛЕМЕНТНЫЙ РАЗБОР КАДРА ---
//
// Кадр собирается из записей разных клиентов. Одна битая запись не должна
// выбрасывать остальные команды кадра, поэтому UnmarshalJSON здесь
// не возвращает ошибок: запись помечается Malformed и сохраняет исходный
// JSON. При повторной сериализации (ретрансляция, реплей) уходит именно он,
// так что все получатели видят одинаковые байты и одинаково их пропускают.

func (in *Input) UnmarshalJSON(data []byte) error {
	var wire struct {
		CommandType json.RawMessage `json:"commandType"`
		Command     json.RawMessage `json:"command"`
	}
	*in = Input{}
	if err := json.Unmarshal(data, &wire); err != nil {
		in.malformed(data, err.Error())
		return nil
	}

	tag, err := parseInt(wire.CommandType, 16, "commandType")
	if err != nil {
		in.malformed(data, err.Error())
		return nil
	}
	in.CommandType = uint16(tag)
	in.Command = wire.Command
	return nil
}

func (in Input) MarshalJSON() ([]byte, error) {
	if in.Malformed != "" && len(in.raw) > 0 {
		return in.raw, nil
	}
	type plain Input
	return json.Marshal(plain(in))
}

func (in *Input) malformed(data []byte, reason string) {
	in.Malformed = reason
	in.raw = append(json.RawMessage(nil), data...)
}

func (c *CampInputs) UnmarshalJSON(data []byte) error {
	var wire struct {
		CampID json.RawMessage `json:"campId"`
		Inputs json.RawMessage `json:"inputs"`
	}
	*c = CampInputs{}
	if err := json.Unmarshal(data, &wire); err != nil {
		c.malformed(data, err.Error())
		return nil
	}

	camp, err := parseInt(wire.CampID, 32, "campId")
	if err != nil {
		c.malformed(data, err.Error())
		return nil
	}
	c.CampID = int32(camp)

	// Input.UnmarshalJSON не падает, так что ошибка здесь значит "inputs не массив".
	if len(wire.Inputs) > 0 {
		if err := json.Unmarshal(wire.Inputs, &c.Inputs); err != nil {
			c.malformed(data, fmt.Sprintf("inputs: %v", err))
		}
	}
	return nil
}

func (c CampInputs) MarshalJSON() ([]byte, error) {
	if c.Malformed != "" && len(c.raw) > 0 {
		return c.raw, nil
	}
	type plain CampInputs
	return json.Marshal(plain(c))
}

func (c *CampInputs) malformed(data []byte, reason string) {
	*c = CampInputs{Malformed: reason, raw: append(json.RawMessage(nil), data...)}
}

// parseInt принимает только целочисленный JSON-литерал, влезающий в bits.
// Для uint16 (bits == 16) отрицательные значения отвергаются.
func parseInt(raw json.RawMessage, bits int, field string) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%s: missing", field)
	}
	if bits == 16 {
		v, err := strconv.ParseUint(string(raw), 10, 16)
		if err != nil {
			return 0, fmt.Errorf("%s: %s is not a uint16", field, raw)
		}
		return int64(v), nil
	}
	v, err := strconv.ParseInt(string(raw), 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%s: %s is not an int%d", field, raw, bits)
	}
	return v, nil
}
