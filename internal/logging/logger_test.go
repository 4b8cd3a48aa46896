package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, TRACE, ParseLevel("trace"))
	assert.Equal(t, DEBUG, ParseLevel(" Debug "))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("что-то"))
}

func TestUninitializedLoggerIsNoop(t *testing.T) {
	// Без инициализации вызовы не должны паниковать
	assert.NotPanics(t, func() {
		Info("hello %d", 1)
		GetComponentLogger("combat").Debug("ignored")
		LogHit(1, 2.5, true)
	})
}

func TestDefaultLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitDefaultLoggerWithOptions("test", Options{Dir: dir, ConsoleLevel: ERROR, FileLevel: DEBUG}))
	GetLoggerManager().Reset()

	Debug("debug line %d", 7)
	Trace("trace line")
	GetComponentLogger("parry").Info("window opened")
	CloseDefaultLogger()
	GetLoggerManager().Reset()

	files, err := filepath.Glob(filepath.Join(dir, "test_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.Contains(content, "[DEBUG] debug line 7"), "DEBUG должен попасть в файл")
	assert.False(t, strings.Contains(content, "trace line"), "TRACE ниже порога файла")
	assert.True(t, strings.Contains(content, "[INFO] [parry] window opened"), "логгер компонента пишет с префиксом")
}
