// Package rng — детерминированный генератор случайных чисел симуляции.
//
// Реализует 48-битный линейный конгруэнтный генератор с константами
// java.util.Random, поэтому при одинаковом зерне любая реализация
// (клиент, сервер, валидатор реплеев) выдаёт бит-в-бит одну и ту же
// последовательность. Никаких float-операций в основном пути нет.
package rng

import (
	"errors"
	"fmt"
)

const (
	multiplier int64 = 0x5DEECE66D
	addend     int64 = 0xB
	mask       int64 = (1 << 48) - 1
)

// ErrInvalidBound — NextIntn вызван с отрицательной границей.
// Это нарушение предусловия (дефект вызывающего кода), а не игровая ситуация.
var ErrInvalidBound = errors.New("rng: bound must not be negative")

// Random — поток случайных чисел одного мира. Не потокобезопасен:
// им владеет ровно один World и пользуется только внутри тика.
type Random struct {
	seed int64
}

// New создаёт генератор с заданным зерном.
func New(seed int64) *Random {
	r := &Random{}
	r.Seed(seed)
	return r
}

// Seed перемешивает зерно множителем и сохраняет как внутреннее состояние.
func (r *Random) Seed(seed int64) {
	r.seed = (seed ^ multiplier) & mask
}

// State возвращает текущее 48-битное состояние (для дайджестов и отладки).
func (r *Random) State() int64 {
	return r.seed
}

// NextBits продвигает состояние и возвращает старшие k бит (1..32)
// как знаковое 32-битное число.
func (r *Random) NextBits(k uint) int32 {
	r.seed = (r.seed*multiplier + addend) & mask
	return int32(uint64(r.seed) >> (48 - k))
}

// NextInt возвращает NextBits(32).
func (r *Random) NextInt() int32 {
	return r.NextBits(32)
}

// NextIntn возвращает число из [0, n).
//
// n == 0 даёт 0 без продвижения потока. n < 0 — ErrInvalidBound.
// Условие повторной выборки (переполнение bits-val+(n-1)) сохранено
// дословно: от него зависит позиция в последовательности.
func (r *Random) NextIntn(n int32) (int32, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBound, n)
	}
	if n == 0 {
		return 0, nil
	}

	if n&(-n) == n {
		// степень двойки
		return int32((int64(n) * int64(r.NextBits(31))) >> 31), nil
	}

	var bits, val int32
	for {
		bits = r.NextBits(31)
		val = bits % n
		if bits-val+(n-1) >= 0 {
			return val, nil
		}
	}
}

// NextLong собирает int64 из двух 32-битных выборок: старшая половина первой.
func (r *Random) NextLong() int64 {
	hi := int64(r.NextBits(32))
	lo := int64(r.NextBits(32))
	return (hi << 32) + lo
}

// NextBool — один бит потока.
func (r *Random) NextBool() bool {
	return r.NextBits(1) != 0
}

// NextDouble — 53-битное значение из [0, 1).
// Собирается из 26 и 27 бит целочисленно, деление на 2^53 точное.
func (r *Random) NextDouble() float64 {
	hi := int64(r.NextBits(26))
	lo := int64(r.NextBits(27))
	return float64((hi<<27)+lo) / float64(int64(1)<<53)
}

// NextBytes заполняет буфер: каждые 4 байта берутся из одного NextInt,
// младший байт первым.
func (r *Random) NextBytes(buf []byte) {
	for i := 0; i < len(buf); {
		rnd := r.NextInt()
		for n := min(len(buf)-i, 4); n > 0; n-- {
			buf[i] = byte(rnd)
			rnd >>= 8
			i++
		}
	}
}
