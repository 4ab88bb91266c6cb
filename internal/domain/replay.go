package domain

import (
	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

// ReplaySession - полная запись партии.
// Для воспроизведения достаточно зерна и упорядоченных кадров:
// снимков состояния не пишем.
type ReplaySession struct {
	MatchID     [16]byte           `json:"matchId"`
	Seed        int64              `json:"seed"` // Зерно RNG мира
	TickRate    int32              `json:"tickRate"`
	Timestamp   int64              `json:"timestamp"`
	FinalTick   types.Tick         `json:"finalTick"`
	FinalDigest [32]byte           `json:"finalDigest"`
	Frames      []api.FrameMessage `json:"frames"`
}

// Append дописывает кадр в запись и сдвигает финальный тик.
func (r *ReplaySession) Append(frame api.FrameMessage) {
	r.Frames = append(r.Frames, frame)
	if t := types.Tick(frame.Frame); t > r.FinalTick {
		r.FinalTick = t
	}
}
