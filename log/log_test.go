package log

import (
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"os"
	"path/filepath"
	"testing"
)

func TestGetLog(t *testing.T) {
	a := GetLog("Test")
	b := GetLog("Test")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, GetLog("Other"))
}

func TestSimpleLogWrapper(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()
	log := GetLog("Plan")
	log.InfoF("Hello world: %s", "name")
	log.DebugF("group %d", 1)
	log.WarnF("column %s", "b")
	log.ErrorF("failed")
	entries := logs.All()
	assert.Len(t, entries, 4)
	assert.Equal(t, "Hello world: name", entries[0].Message)
	assert.Equal(t, "Plan", entries[0].LoggerName)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "column b", entries[2].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestInitLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	assert.Nil(t, InitLogger(path, false))
	defer func() { _ = zap.ReplaceGlobals(zap.NewNop()) }()
	assert.Equal(t, ErrReInitializeLog, InitLogger(path, true))
	GetLog("Test").InfoF("Hello world: %s", "name")
	GetLog("Test").DebugF("hidden")
	_ = CloseLog()
	data, err := os.ReadFile(path)
	assert.Nil(t, err)
	assert.Contains(t, string(data), "Hello world: name")
	assert.Contains(t, string(data), `"logger":"Test"`)
	assert.NotContains(t, string(data), "hidden")
}
