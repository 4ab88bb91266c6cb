package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigure(t *testing.T) {
	Init()

	Configure("debug", "json")
	if Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", Log.GetLevel())
	}
	if _, ok := Log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want JSON", Log.Formatter)
	}

	// пустой формат не сбрасывает JSON
	Configure("warn", "")
	if _, ok := Log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("empty format reset the formatter to %T", Log.Formatter)
	}
	if Log.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %v, want warn", Log.GetLevel())
	}

	Configure("nonsense", "text")
	if Log.GetLevel() != logrus.InfoLevel {
		t.Errorf("invalid level should fall back to info, got %v", Log.GetLevel())
	}
	if _, ok := Log.Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("formatter = %T, want text", Log.Formatter)
	}
}
