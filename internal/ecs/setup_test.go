package ecs

import (
	"os"
	"testing"

	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	os.Exit(m.Run())
}
