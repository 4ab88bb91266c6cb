package version

import (
	"errors"
	"strings"
	"testing"
)

func TestCalculateBuildID(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		expected  int
		wantError bool
	}{
		{
			name:     "epoch date",
			date:     "2025-12-04",
			expected: 0,
		},
		{
			name:     "next day after epoch",
			date:     "2025-12-05",
			expected: 1,
		},
		{
			name:     "one year later",
			date:     "2026-12-04",
			expected: 365,
		},
		{
			name:     "date with leap years included",
			date:     "2032-12-04",
			expected: 2557,
		},
		{
			name:      "invalid format",
			date:      "invalid",
			wantError: true,
		},
		{
			name:      "empty date",
			date:      "",
			wantError: true,
		},
		{
			name:      "before epoch",
			date:      "2025-12-03",
			wantError: true,
		},
	}

	// BuildDate глобальный: подтесты идут последовательно.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := BuildDate
			defer func() { BuildDate = old }()

			BuildDate = tt.date

			got, err := CalculateBuildID()

			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil (id=%d)", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.expected {
				t.Errorf("CalculateBuildID() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestString(t *testing.T) {
	old := BuildDate
	defer func() { BuildDate = old }()

	BuildDate = "2025-12-14"
	if got := String(); !strings.HasPrefix(got, "Build 10 (2025-12-14) protocol[1]") {
		t.Errorf("String() = %q", got)
	}

	BuildDate = ""
	info := Info()
	if info.Calculated || info.Protocol != Protocol || !strings.Contains(String(), "unknown") {
		t.Errorf("unexpected info for empty date: %+v", info)
	}
}

func TestCheckProtocol(t *testing.T) {
	if err := CheckProtocol(Protocol); err != nil {
		t.Errorf("own protocol rejected: %v", err)
	}
	for _, p := range []int{0, Protocol + 1} {
		if err := CheckProtocol(p); !errors.Is(err, ErrProtocolMismatch) {
			t.Errorf("CheckProtocol(%d) = %v, want ErrProtocolMismatch", p, err)
		}
	}
}
