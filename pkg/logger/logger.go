
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide structured logger.
type Logger struct {
	*logrus.Logger
}

// New returns an info-level logger writing to stdout.
func New() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(textFormatter())
	l.SetLevel(logrus.InfoLevel)
	return &Logger{Logger: l}
}

// NewWithConfig builds a logger at the given level, writing to stdout and,
// when filePath is set, appending to that file too.
func NewWithConfig(levelStr, filePath string) (*Logger, error) {
	return NewWithOutput(levelStr, filePath, os.Stdout)
}

// NewWithOutput is NewWithConfig with console output going to w.
func NewWithOutput(levelStr, filePath string, w io.Writer) (*Logger, error) {
	l := logrus.New()
	l.SetFormatter(textFormatter())

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	writers := []io.Writer{w}
	if filePath != "" {
		if dir := filepath.Dir(filePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
	}
	l.SetOutput(io.MultiWriter(writers...))

	return &Logger{Logger: l}, nil
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{Logger: l}
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
}
