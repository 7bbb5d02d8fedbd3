package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

// Level is a logging threshold
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

const timeFormat = "2006-01-02 15:04:05"

var (
	current atomic.Int32

	debugColor   = color.New(color.FgHiBlack)
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func init() {
	current.Store(int32(LevelInfo))
}

// SetLevel parses and applies a level name: debug, info, warn/warning, error.
func SetLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		current.Store(int32(LevelDebug))
	case "", "info":
		current.Store(int32(LevelInfo))
	case "warn", "warning":
		current.Store(int32(LevelWarn))
	case "error":
		current.Store(int32(LevelError))
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}

// Enabled reports whether messages at level are printed
func Enabled(level Level) bool {
	return level >= Level(current.Load())
}

func emit(level Level, c *color.Color, tag, format string, args ...interface{}) {
	if !Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] %-5s %s", time.Now().Format(timeFormat), tag, msg)
	if level >= LevelError {
		c.Fprintln(os.Stderr, line)
		return
	}
	c.Fprintln(os.Stdout, line)
}

// Debug logs a diagnostic message
func Debug(format string, args ...interface{}) {
	emit(LevelDebug, debugColor, "DEBUG", format, args...)
}

// Info logs general information
func Info(format string, args ...interface{}) {
	emit(LevelInfo, infoColor, "INFO", format, args...)
}

// Success logs a completed step
func Success(format string, args ...interface{}) {
	emit(LevelInfo, successColor, "OK", format, args...)
}

// Warn logs a recoverable problem
func Warn(format string, args ...interface{}) {
	emit(LevelWarn, warnColor, "WARN", format, args...)
}

// Error logs a failure
func Error(format string, args ...interface{}) {
	emit(LevelError, errorColor, "ERROR", format, args...)
}

// Fatal logs a failure and exits the process
func Fatal(format string, args ...interface{}) {
	emit(LevelError, errorColor, "FATAL", format, args...)
	os.Exit(1)
}
