package types

import "testing"

func TestFraction_AddIsExact(t *testing.T) {
	step := NewFraction(1, 30)
	sum := Fraction{Num: 0, Den: 30}

	for i := 0; i < 30; i++ {
		sum = sum.Add(step)
	}

	if sum.Reduce() != (Fraction{Num: 1, Den: 1}) {
		t.Errorf("30 * 1/30 = %v, want 1/1", sum.Reduce())
	}
}

func TestFraction_AddDifferentDenominators(t *testing.T) {
	got := NewFraction(1, 4).Add(NewFraction(1, 6))
	if got != (Fraction{Num: 5, Den: 12}) {
		t.Errorf("1/4 + 1/6 = %v, want 5/12", got)
	}
}

func TestFraction_NormalizesSign(t *testing.T) {
	got := NewFraction(2, -4)
	if got != (Fraction{Num: -1, Den: 2}) {
		t.Errorf("NewFraction(2, -4) = %v, want -1/2", got)
	}
}

func TestFraction_Cmp(t *testing.T) {
	tests := []struct {
		a, b Fraction
		want int
	}{
		{NewFraction(1, 3), NewFraction(1, 2), -1},
		{NewFraction(2, 4), NewFraction(1, 2), 0},
		{NewFraction(3, 4), NewFraction(2, 3), 1},
	}

	for _, tt := range tests {
		if got := tt.a.Cmp(tt.b); got != tt.want {
			t.Errorf("%v.Cmp(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFraction_MulInt(t *testing.T) {
	if got := NewFraction(1, 20).MulInt(45); got != (Fraction{Num: 9, Den: 4}) {
		t.Errorf("45 * 1/20 = %v, want 9/4", got)
	}
}

func TestNewFraction_ZeroDenominatorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on zero denominator")
		}
	}()
	NewFraction(1, 0)
}
