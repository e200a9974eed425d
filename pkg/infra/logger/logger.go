package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultDir        = "logs"
	defaultBufferSize = 32 * 1024
)

type Options struct {
	Dir     string
	File    string
	Level   string
	Console bool
}

// NewLogger builds the JSON logger used by every component. Entries go to
// an asynchronous file writer and, when Console is set, to stdout. The
// returned close func flushes the file.
func NewLogger(opts Options) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(parseLevel(opts.Level))

	if opts.Dir == "" {
		opts.Dir = defaultDir
	}
	if opts.File == "" {
		opts.File = "mediaguard.log"
	}
	logFile := filepath.Join(opts.Dir, filepath.Base(opts.File))

	if err := os.MkdirAll(opts.Dir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	writer, err := NewAsyncFileWriter(logFile, defaultBufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(writer)

	if opts.Console {
		logger.AddHook(NewConsoleHook(os.Stdout))
	}

	return logger, func() { _ = writer.Close() }, nil
}

// parseLevel falls back to LOG_LEVEL and then to info.
func parseLevel(level string) logrus.Level {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
