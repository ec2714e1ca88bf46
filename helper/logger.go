package helper

import (
	"fmt"
	"log"
	"os"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// LogLevelString maps log levels to their string representations
var LogLevelString = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

// LogLevelColor maps log levels to ANSI color codes
var LogLevelColor = map[LogLevel]string{
	DEBUG: "\033[36m", // Cyan
	INFO:  "\033[32m", // Green
	WARN:  "\033[33m", // Yellow
	ERROR: "\033[31m", // Red
	FATAL: "\033[35m", // Magenta
}

const resetColor = "\033[0m"

// Logger provides structured logging functionality
type Logger struct {
	prefix string
}

// NewLogger creates a new logger instance with optional prefix
func NewLogger(prefix string) *Logger {
	return &Logger{prefix: prefix}
}

// formatMessage formats the log message with timestamp, level, and prefix
func (l *Logger) formatMessage(level LogLevel, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	levelStr := LogLevelString[level]
	color := LogLevelColor[level]

	if l.prefix != "" {
		return fmt.Sprintf("%s[%s] %s%s %s[%s]%s %s",
			color, timestamp, levelStr, resetColor,
			color, l.prefix, resetColor, message)
	}

	return fmt.Sprintf("%s[%s] %s%s %s",
		color, timestamp, levelStr, resetColor, message)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Println(l.formatMessage(DEBUG, message))
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Println(l.formatMessage(INFO, message))
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Println(l.formatMessage(WARN, message))
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Println(l.formatMessage(ERROR, message))
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Println(l.formatMessage(FATAL, message))
	os.Exit(1)
}

// Global logger instance
var AppLogger = NewLogger("STOREPAY")

// Convenience functions for global logging
func Debug(format string, args ...interface{}) {
	AppLogger.Debug(format, args...)
}

func Info(format string, args ...interface{}) {
	AppLogger.Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	AppLogger.Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	AppLogger.Error(format, args...)
}

func Fatal(format string, args ...interface{}) {
	AppLogger.Fatal(format, args...)
}
