package logger

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	coreconfig "github.com/m3rciful/partyfinder/core/config"
)

func TestResolveOptionsDefaults(t *testing.T) {
	o := resolveOptions(nil)
	assert.Equal(t, formatJSON, o.format)
	assert.Equal(t, slog.LevelInfo, o.level)
	assert.Equal(t, defaultKeyOrder, o.keyOrder)
	assert.Equal(t, [2]int{1, 50}, [2]int{o.sampleNum, o.sampleDen})
	assert.Empty(t, o.filePath)
}

func TestResolveOptionsFromConfig(t *testing.T) {
	cfg := &coreconfig.Config{Logging: coreconfig.LoggingConfig{
		Level:       "WARNING",
		KeysOrder:   " level, ,event ",
		DebugSample: "0",
		Dir:         "logs",
		BotFile:     "bot.log",
		Profile:     "Dev",
	}}
	o := resolveOptions(cfg)
	assert.Equal(t, formatKV, o.format)
	assert.Equal(t, slog.LevelWarn, o.level)
	assert.Equal(t, []string{"level", "event"}, o.keyOrder)
	assert.Equal(t, [2]int{0, 0}, [2]int{o.sampleNum, o.sampleDen})
	assert.Equal(t, "dev", o.profile)
	assert.Equal(t, filepath.Join("logs", "bot.log"), o.filePath)

	cfg.Logging.Format = "json"
	cfg.Logging.DebugSample = "-1/5"
	o = resolveOptions(cfg)
	assert.Equal(t, formatJSON, o.format)
	assert.Equal(t, [2]int{1, 50}, [2]int{o.sampleNum, o.sampleDen})
}

func TestOpenLogFileCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bot.log")
	f, err := openLogFile(path)
	if assert.NoError(t, err) {
		assert.NoError(t, f.Close())
	}
}
