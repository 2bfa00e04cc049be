package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMain_Version(t *testing.T) {
	assert.Equal(t, config.ExitCodeSuccess, runMain([]string{config.CmdVersion}))
}

func TestRunMain_UnknownCommand(t *testing.T) {
	assert.Equal(t, config.ExitCodeError, runMain([]string{"frobnicate"}))
}

func TestSetupLogging_RotatedFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	s := config.DefaultSettings()
	s.Log.Dir = filepath.Join(t.TempDir(), "logs")
	s.Log.Debug = true

	closer := setupLogging(s)
	require.NotNil(t, closer)

	slog.Debug("probe")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(s.Log.Dir, config.LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"probe"`)
	assert.Contains(t, string(data), `"level":"DEBUG"`)
}
