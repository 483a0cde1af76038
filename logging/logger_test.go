package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"livepop-server/config"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		t.Run(format, func(t *testing.T) {
			logger, err := New(config.LogConfig{Level: "warn", Format: format})
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
			assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
