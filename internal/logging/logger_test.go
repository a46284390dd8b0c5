package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/monocle-dev/tracker/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestNewStdout(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
	assert.Equal(t, os.Stdout, logger.Out)
}

func TestNewRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "tracker.log")

	logger, err := New(config.LogConfig{Level: "info", File: file})
	require.NoError(t, err)

	rotated, ok := logger.Out.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, file, rotated.Filename)

	logger.Info("hello")
	require.NoError(t, rotated.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
