package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToConfiguredOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "console.log")

	lg, err := logger.New(config.Logger{Level: "debug", Output: []string{out}})
	require.NoError(t, err)

	lg.Infof("draw mode %s", "Polygon")
	require.NoError(t, lg.Sync())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(b), "draw mode Polygon")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := logger.New(config.Logger{Level: "loud"})
	require.Error(t, err)
}
