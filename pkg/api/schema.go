package api

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// frameSchema описывает только конверт кадра: номер и массив записей.
// Записи лагерей и команд разбираются поштучно (wire.go), битая запись
// пропускается получателем и не ломает весь кадр.
const frameSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["frame", "data"],
  "properties": {
    "frame": {"type": "integer", "minimum": 1},
    "data": {"type": "array"}
  }
}`

var compiledFrameSchema = jsonschema.MustCompileString("frame.schema.json", frameSchema)

// ValidateFrameJSON проверяет сырой кадр по схеме конверта.
func ValidateFrameJSON(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("frame is not json: %w", err)
	}
	if err := compiledFrameSchema.Validate(doc); err != nil {
		return fmt.Errorf("frame schema: %w", err)
	}
	return nil
}
