// Package logger provides the leveled logger shared by every TigerSuite package
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents the log level
type Level int

const (
	// LevelDebug for compiled DSL dumps and cache traces
	LevelDebug Level = iota
	// LevelInfo for lifecycle messages
	LevelInfo
	// LevelWarn for degraded paths (spellcheck fallback, dictionary failures)
	LevelWarn
	// LevelError for failed requests
	LevelError
	// LevelSilent disables all logging
	LevelSilent
)

var levelNames = map[Level]string{
	LevelDebug:  "DEBUG",
	LevelInfo:   "INFO",
	LevelWarn:   "WARN",
	LevelError:  "ERROR",
	LevelSilent: "SILENT",
}

// String returns the string representation of the log level
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel converts a string to a Level, defaulting to INFO
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "silent", "off":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// Config represents logger configuration
type Config struct {
	// Level is the minimum log level to output
	Level Level
	// Output is "stdout", "stderr" or a file path
	Output string
	// Format is "text" or "json"
	Format string
	// EnableCaller adds file:line information to text logs
	EnableCaller bool
	// EnableTimestamp adds a timestamp to logs
	EnableTimestamp bool
	// File rotation settings, used when Output is a file path
	MaxSize    int  // megabytes
	MaxBackups int  // number of backups to keep
	MaxAge     int  // days
	Compress   bool // compress rotated files
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:           LevelInfo,
		Output:          "stdout",
		Format:          "text",
		EnableTimestamp: true,
		MaxSize:         100,
		MaxBackups:      3,
		MaxAge:          7,
		Compress:        true,
	}
}

// Logger is a leveled logger writing text or JSON lines
type Logger struct {
	mu              sync.RWMutex
	level           Level
	output          io.Writer
	format          string
	enableTimestamp bool
	enableCaller    bool
	text            *log.Logger
}

var (
	globalLogger *Logger
	globalMu     sync.Mutex
)

// Init installs the global logger built from cfg
func Init(cfg *Config) error {
	l, err := NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
	return nil
}

// NewLogger creates a new logger with the given configuration
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var output io.Writer
	switch cfg.Output {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		output = &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
	}
	return NewLoggerWithWriter(cfg, output), nil
}

// NewLoggerWithWriter creates a logger writing to w regardless of cfg.Output
func NewLoggerWithWriter(cfg *Config, w io.Writer) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	flags := 0
	if cfg.EnableTimestamp {
		flags |= log.Ldate | log.Ltime | log.Lmicroseconds
	}
	if cfg.EnableCaller {
		flags |= log.Lshortfile
	}
	return &Logger{
		level:           cfg.Level,
		output:          w,
		format:          cfg.Format,
		enableTimestamp: cfg.EnableTimestamp,
		enableCaller:    cfg.EnableCaller,
		text:            log.New(w, "", flags),
	}
}

// SetLevel changes the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// IsLevelEnabled checks if a log level is enabled
func (l *Logger) IsLevelEnabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level && l.level != LevelSilent
}

func (l *Logger) write(level Level, fields map[string]interface{}, msg string) {
	if !l.IsLevelEnabled(level) {
		return
	}
	if l.format == "json" {
		entry := make(map[string]interface{}, len(fields)+3)
		for k, v := range fields {
			entry[k] = v
		}
		entry["level"] = level.String()
		entry["message"] = msg
		if l.enableTimestamp {
			entry["timestamp"] = time.Now().Format("2006-01-02T15:04:05.000000Z07:00")
		}
		jsonBytes, err := json.Marshal(entry)
		if err == nil {
			fmt.Fprintln(l.output, string(jsonBytes))
			return
		}
		// 序列化失败时退回文本格式
	}
	line := "[" + level.String() + "] " + msg + formatFields(fields)
	// 4 = write -> Debug/Info/... -> (FieldLogger|global) -> caller
	_ = l.text.Output(4, line)
}

// formatFields renders fields as " k=v" pairs in key order
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.write(LevelDebug, nil, fmt.Sprintf(format, v...))
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.write(LevelInfo, nil, fmt.Sprintf(format, v...))
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.write(LevelWarn, nil, fmt.Sprintf(format, v...))
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.write(LevelError, nil, fmt.Sprintf(format, v...))
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger, _ = NewLogger(DefaultConfig())
	}
	return globalLogger
}

// SetLevel changes the global logger level
func SetLevel(level Level) {
	GetGlobalLogger().SetLevel(level)
}

// Debug logs a debug message using the global logger
func Debug(format string, v ...interface{}) {
	GetGlobalLogger().write(LevelDebug, nil, fmt.Sprintf(format, v...))
}

// Info logs an info message using the global logger
func Info(format string, v ...interface{}) {
	GetGlobalLogger().write(LevelInfo, nil, fmt.Sprintf(format, v...))
}

// Warn logs a warning message using the global logger
func Warn(format string, v ...interface{}) {
	GetGlobalLogger().write(LevelWarn, nil, fmt.Sprintf(format, v...))
}

// Error logs an error message using the global logger
func Error(format string, v ...interface{}) {
	GetGlobalLogger().write(LevelError, nil, fmt.Sprintf(format, v...))
}

// IsDebugEnabled checks if debug logging is enabled
func IsDebugEnabled() bool {
	return GetGlobalLogger().IsLevelEnabled(LevelDebug)
}

// WithField returns a FieldLogger with a single field
func WithField(key string, value interface{}) *FieldLogger {
	return WithFields(map[string]interface{}{key: value})
}

// WithFields returns a FieldLogger with multiple fields
func WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{logger: GetGlobalLogger(), fields: copyFields(fields, nil)}
}

// FieldLogger provides structured logging with fields
type FieldLogger struct {
	logger *Logger
	fields map[string]interface{}
}

func copyFields(base, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// With returns a child FieldLogger carrying the extra fields
func (fl *FieldLogger) With(key string, value interface{}) *FieldLogger {
	return &FieldLogger{logger: fl.logger, fields: copyFields(fl.fields, map[string]interface{}{key: value})}
}

// Debug logs a debug message with fields
func (fl *FieldLogger) Debug(format string, v ...interface{}) {
	fl.logger.write(LevelDebug, fl.fields, fmt.Sprintf(format, v...))
}

// Info logs an info message with fields
func (fl *FieldLogger) Info(format string, v ...interface{}) {
	fl.logger.write(LevelInfo, fl.fields, fmt.Sprintf(format, v...))
}

// Warn logs a warning message with fields
func (fl *FieldLogger) Warn(format string, v ...interface{}) {
	fl.logger.write(LevelWarn, fl.fields, fmt.Sprintf(format, v...))
}

// Error logs an error message with fields
func (fl *FieldLogger) Error(format string, v ...interface{}) {
	fl.logger.write(LevelError, fl.fields, fmt.Sprintf(format, v...))
}
