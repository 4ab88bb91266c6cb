package clock

import (
	"errors"
	"fmt"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
)

// DefaultTickRate — частота, которая используется при tickRate <= 0.
// Длительность тика по умолчанию: ровно 1/20 секунды.
const DefaultTickRate = 20

// Mode — способ продвижения часов. Выбирается один раз на экземпляр.
type Mode uint8

const (
	ModeUnset    Mode = iota
	ModeFree          // Advance(): автономный самоинкремент (оффлайн, сервер)
	ModeLockstep      // SetTick(): тик диктует внешний авторитетный источник
)

func (m Mode) String() string {
	switch m {
	case ModeFree:
		return "free"
	case ModeLockstep:
		return "lockstep"
	default:
		return "unset"
	}
}

var (
	// ErrModeConflict — попытка смешать Advance и SetTick в одном прогоне.
	ErrModeConflict = errors.New("clock: advance and set-tick modes are mutually exclusive")
	// ErrNegativeTick — SetTick с отрицательным значением.
	ErrNegativeTick = errors.New("clock: negative tick")
)

// Clock — счётчик тиков с фиксированным шагом.
//
// Время хранится как точная дробь, поэтому Elapsed() после N тиков
// равно N/tickRate без накопления ошибки округления.
type Clock struct {
	tick     types.Tick
	tickRate int
	step     types.Fraction
	elapsed  types.Fraction
	mode     Mode
}

// New создаёт часы и сразу вызывает Init.
func New(tickRate int) *Clock {
	c := &Clock{}
	c.Init(tickRate)
	return c
}

// Init задаёт частоту и сбрасывает счётчик.
func (c *Clock) Init(tickRate int) {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	c.tickRate = tickRate
	c.step = types.NewFraction(1, int64(tickRate))
	c.tick = 0
	c.elapsed = types.Fraction{Num: 0, Den: c.step.Den}
	c.mode = ModeUnset
}

// Advance увеличивает тик на единицу и время на один шаг.
func (c *Clock) Advance() error {
	if err := c.lockMode(ModeFree); err != nil {
		return err
	}
	c.tick++
	c.elapsed = c.elapsed.Add(c.step)
	return nil
}

// SetTick принудительно выставляет тик, полученный от авторитетного источника.
func (c *Clock) SetTick(n types.Tick) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeTick, n)
	}
	if err := c.lockMode(ModeLockstep); err != nil {
		return err
	}
	c.tick = n
	c.elapsed = types.Fraction{Num: int64(n), Den: c.step.Den}
	return nil
}

func (c *Clock) lockMode(m Mode) error {
	if c.mode == ModeUnset {
		c.mode = m
		return nil
	}
	if c.mode != m {
		return fmt.Errorf("%w (locked to %s)", ErrModeConflict, c.mode)
	}
	return nil
}

func (c *Clock) Tick() types.Tick { return c.tick }
func (c *Clock) TickRate() int { return c.tickRate }
func (c *Clock) Step() types.Fraction { return c.step }
func (c *Clock) Elapsed() types.Fraction { return c.elapsed }
func (c *Clock) Mode() Mode { return c.mode }
