package logger

import (
	"testing"

	"english-quiz-service/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewHonorsLevel(t *testing.T) {
	log := New(config.LoggerConfig{Level: "debug"})
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log = New(config.LoggerConfig{Level: "warn", Env: "production"})
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log = New(config.LoggerConfig{Level: "loud"})
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
