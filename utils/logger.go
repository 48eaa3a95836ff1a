package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger provides leveled logging throughout the application.
type Logger struct {
	log *logrus.Logger
}

// NewLogger creates a Logger writing to stdout at info level.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, "info")
}

// NewLoggerTo creates a Logger writing to w at the named level. Unknown
// levels fall back to info.
func NewLoggerTo(w io.Writer, level string) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return &Logger{log: l}
}

func (l *Logger) Info(format string, args ...any) {
	l.log.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.log.Debugf(format, args...)
}
