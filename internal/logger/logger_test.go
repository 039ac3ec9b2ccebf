package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit_ReplacesGlobals(t *testing.T) {
	require.NoError(t, Init("inventory-test", zapcore.WarnLevel))

	assert.Same(t, L(), zap.L())
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, L().Core().Enabled(zapcore.ErrorLevel))
}

func TestL_LazyInit(t *testing.T) {
	l = nil
	assert.NotNil(t, L())
	assert.True(t, L().Core().Enabled(zapcore.InfoLevel))
}
