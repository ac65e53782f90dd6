package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"debug", "INFO", "Warn", "error", "fatal", "highlight"} {
		_, err := ParseLevel(name)
		assert.NoError(t, err, name)
	}
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, WARN, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

type team struct {
	Name string `json:"name"`
}

func TestProcessArgs(t *testing.T) {
	primitives, objects := processArgs("match", 3, 0.4567, true, errors.New("boom"), nil, time.Second, team{Name: "Arsenal"})

	assert.Equal(t, []string{"match", "3", "0.46", "true", "boom", "nil", "1s", "[Object of type logger.team]"}, primitives)
	require.Len(t, objects, 1)
	assert.Contains(t, objects[0], `"name": "Arsenal"`)
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "footy.log")
	SetLogFile(path)
	t.Cleanup(func() {
		SetLogFile(DefaultLogFile)
		_ = SetLogOutput('c')
	})

	require.NoError(t, SetLogOutput('f'))
	SetLevel(INFO)
	Debug("hidden line")
	Info("visible line", 42)
	Error("error line")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO]")
	assert.Contains(t, string(data), "visible line 42")
	assert.Contains(t, string(data), "[ERROR]")
	assert.NotContains(t, string(data), "hidden line")
	assert.NotContains(t, string(data), colorReset, "file output is never coloured")
}

func TestInvalidOutput(t *testing.T) {
	assert.Error(t, SetLogOutput('x'))
	require.NoError(t, SetLogOutput('n'))
	require.NoError(t, SetLogOutput('c'))
}
