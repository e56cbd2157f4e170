package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitAndAccessors(t *testing.T) {
	Init("test-service", "prod", "debug")

	require.NotNil(t, L())
	require.NotNil(t, S())
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))
	Sync()
}

func TestInit_InvalidLevelFallsBackToDefault(t *testing.T) {
	Init("test-service", "prod", "not-a-level")
	require.NotNil(t, L())
	assert.True(t, L().Core().Enabled(zapcore.InfoLevel))
}

func TestAccessorsSelfInitialize(t *testing.T) {
	log = nil
	sugar = nil
	assert.NotNil(t, L())
	assert.NotNil(t, S())
}
