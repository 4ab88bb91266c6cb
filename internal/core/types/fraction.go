package types

import (
	"fmt"
	"math/big"
)

// Fraction — точная рациональная величина Num/Den.
//
// Используется для времени симуляции вместо float: сумма N шагов
// по 1/tickRate даёт ровно N/tickRate на любой платформе.
// Den всегда положителен у значений, созданных через NewFraction.
type Fraction struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

// NewFraction создаёт сокращённую дробь. Den == 0 — ошибка программиста.
func NewFraction(num, den int64) Fraction {
	if den == 0 {
		panic("types: fraction with zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	return Fraction{Num: num, Den: den}.Reduce()
}

// Reduce сокращает дробь на НОД.
func (f Fraction) Reduce() Fraction {
	if f.Den == 0 {
		return f
	}
	g := gcd(abs(f.Num), abs(f.Den))
	if g <= 1 {
		return f
	}
	return Fraction{Num: f.Num / g, Den: f.Den / g}
}

// Add складывает две дроби. При совпадающих знаменателях обходится без НОК.
func (f Fraction) Add(o Fraction) Fraction {
	if f.Den == o.Den {
		return Fraction{Num: f.Num + o.Num, Den: f.Den}
	}
	l := lcm(f.Den, o.Den)
	return Fraction{Num: f.Num*(l/f.Den) + o.Num*(l/o.Den), Den: l}.Reduce()
}

// MulInt умножает дробь на целое.
func (f Fraction) MulInt(n int64) Fraction {
	return Fraction{Num: f.Num * n, Den: f.Den}.Reduce()
}

// Cmp сравнивает дроби: -1, 0, +1.
func (f Fraction) Cmp(o Fraction) int {
	a := new(big.Int).Mul(big.NewInt(f.Num), big.NewInt(o.Den))
	b := new(big.Int).Mul(big.NewInt(o.Num), big.NewInt(f.Den))
	return a.Cmp(b)
}

// IsZero — нулевая величина (или незаданная дробь).
func (f Fraction) IsZero() bool {
	return f.Num == 0
}

// Float64 — только для отображения. В детерминированном коде не использовать.
func (f Fraction) Float64() float64 {
	if f.Den == 0 {
		return 0
	}
	return float64(f.Num) / float64(f.Den)
}

func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	return abs(a/gcd(a, b)*b)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
