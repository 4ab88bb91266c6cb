package engine

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

// EncodeInput кодирует команду в каноническую форму: тег + JSON payload.
// Header в JSON не попадает.
func EncodeInput(cmd Command) (api.Input, error) {
	raw, err := json.Marshal(cmd)
	if err != nil {
		return api.Input{}, fmt.Errorf("encode %s: %w", cmd.Type(), err)
	}
	return api.Input{CommandType: uint16(cmd.Type()), Command: raw}, nil
}

// EncodeFrame собирает кадр тика из команд: лагеря по возрастанию,
// внутри лагеря — порядок cmds. Декодирование результата даёт те же команды.
func EncodeFrame(tick types.Tick, cmds []Command) (api.FrameMessage, error) {
	byCamp := make(map[types.CampID][]api.Input)
	camps := make([]types.CampID, 0)
	for _, cmd := range cmds {
		in, err := EncodeInput(cmd)
		if err != nil {
			return api.FrameMessage{}, err
		}
		camp := cmd.Head().PlayerID
		if _, ok := byCamp[camp]; !ok {
			camps = append(camps, camp)
		}
		byCamp[camp] = append(byCamp[camp], in)
	}
	slices.Sort(camps)

	frame := api.FrameMessage{Frame: int64(tick), Data: make([]api.CampInputs, 0, len(camps))}
	for _, camp := range camps {
		frame.Data = append(frame.Data, api.CampInputs{CampID: int32(camp), Inputs: byCamp[camp]})
	}
	return frame, nil
}
