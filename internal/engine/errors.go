package engine

import (
	"errors"
	"fmt"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
)

var (
	// ErrDesync — нарушение порядка тиков: команда или кадр пришли для тика,
	// который уже исполнен. Поздно исполнять и молча выбрасывать нельзя.
	ErrDesync = errors.New("engine: desync")

	// ErrFrameNotReady — кадр следующего тика ещё не пришёл (lockstep stall).
	ErrFrameNotReady = errors.New("engine: frame not ready")

	// ErrDuplicateFrame — кадр с этим номером уже в буфере.
	ErrDuplicateFrame = errors.New("engine: duplicate frame")
)

// DesyncError уточняет ErrDesync: какой тик ожидался и какой пришёл.
type DesyncError struct {
	Expected types.Tick
	Got      types.Tick
	Reason   string
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("engine: desync: %s (expected tick >= %d, got %d)", e.Reason, e.Expected, e.Got)
}

func (e *DesyncError) Unwrap() error {
	return ErrDesync
}
