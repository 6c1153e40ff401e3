// Package log provides prefixed, coloured component loggers backed by logrus.
package log

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

const (
	infoColor    = "\033[32m"
	warningColor = "\033[33m"
	errorColor   = "\033[31m"
	colorReset   = "\033[0m"
)

var (
	ErrEmptyPrefix = errors.New("logger prefix is empty")
	ErrNilWriter   = errors.New("logger writer is nil")
)

// Logger writes "[PREFIX] [LEVEL] message" lines for one component.
type Logger struct {
	logger *logrus.Logger
}

// New creates a logger that tags every line with prefix in the given colour.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}
	if w == nil {
		return nil, ErrNilWriter
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&prefixFormatter{prefix: prefix, color: color})
	return &Logger{logger: l}, nil
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.logger.Info(msg)
}

// Warning logs a warning.
func (l *Logger) Warning(msg string) {
	l.logger.Warn(msg)
}

// Error logs an error.
func (l *Logger) Error(msg string) {
	l.logger.Error(msg)
}

type prefixFormatter struct {
	prefix string
	color  string
}

func (f *prefixFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s[%s]%s %s[%s]%s %s\n",
		e.Time.Format("2006/01/02 15:04:05"),
		f.color, f.prefix, colorReset,
		levelColor(e.Level), levelName(e.Level), colorReset,
		e.Message,
	)
	return b.Bytes(), nil
}

func levelColor(l logrus.Level) string {
	switch l {
	case logrus.InfoLevel, logrus.DebugLevel, logrus.TraceLevel:
		return infoColor
	case logrus.WarnLevel:
		return warningColor
	default:
		return errorColor
	}
}

func levelName(l logrus.Level) string {
	if l == logrus.WarnLevel {
		return "WARNING"
	}
	b, _ := l.MarshalText()
	return string(bytes.ToUpper(b))
}
