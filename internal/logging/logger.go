package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/monocle-dev/tracker/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. When a log file is configured output is
// written there with rotation, otherwise to stdout.
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger.SetOutput(output(cfg.File))

	return logger, nil
}

func output(file string) io.Writer {
	if file == "" {
		return os.Stdout
	}

	if dir := filepath.Dir(file); dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				logrus.Warnf("Failed to create log directory %s, logging to stdout: %v", dir, err)
				return os.Stdout
			}
		}
	}

	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}
