package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	globalLogger *Logger
	globalMu     sync.Mutex
)

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

type Component string
type LogLevel int

const (
	ComponentNATS    Component = "NATS"
	ComponentStorage Component = "Storage"
	ComponentConfig  Component = "Config"
	ComponentLedger  Component = "Ledger"
	ComponentBank    Component = "Bank"
	ComponentService Component = "Service"
	ComponentCLI     Component = "CLI"
	ComponentGeneral Component = "General"
)

// AllComponents lists every component, enabled by default
var AllComponents = []Component{
	ComponentGeneral,
	ComponentService,
	ComponentLedger,
	ComponentBank,
	ComponentConfig,
	ComponentStorage,
	ComponentNATS,
	ComponentCLI,
}

type Logger struct {
	mu                sync.RWMutex
	zl                zerolog.Logger
	file              *os.File
	level             LogLevel
	enabledComponents map[Component]bool
}

// ParseLogLevel maps a config value such as "debug" or "warn" to a LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "fatal":
		return LogLevelFatal, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// InitGlobalLogger replaces the global logger. An empty logDir logs to stderr only.
func InitGlobalLogger(logDir string, level LogLevel, components []Component) error {
	logger, err := NewLogger(logDir, level, components)
	if err != nil {
		return err
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Close()
	}
	globalLogger = logger
	return nil
}

func GetLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewWriterLogger(consoleWriter(os.Stderr), LogLevelInfo, AllComponents)
	}
	return globalLogger
}

func NewLogger(logDir string, level LogLevel, components []Component) (*Logger, error) {
	if logDir == "" {
		return NewWriterLogger(consoleWriter(os.Stderr), level, components), nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logDir, fmt.Sprintf("ledger_%s.log", timestamp))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// JSON lines to the file, human readable output to stderr
	multi := zerolog.MultiLevelWriter(file, consoleWriter(os.Stderr))
	logger := NewWriterLogger(multi, level, components)
	logger.file = file
	return logger, nil
}

// NewWriterLogger creates a logger writing to w
func NewWriterLogger(w io.Writer, level LogLevel, components []Component) *Logger {
	enabledComponents := make(map[Component]bool)
	for _, component := range components {
		enabledComponents[component] = true
	}

	return &Logger{
		zl:                zerolog.New(w).With().Timestamp().Logger(),
		level:             level,
		enabledComponents: enabledComponents,
	}
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) EnableComponent(component Component) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabledComponents[component] = true
}

func (l *Logger) DisableComponent(component Component) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabledComponents[component] = false
}

func (l *Logger) IsComponentEnabled(component Component) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabledComponents[component]
}

func (l *Logger) log(level LogLevel, component Component, format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.level || !l.enabledComponents[component] {
		return
	}

	var event *zerolog.Event
	switch level {
	case LogLevelDebug:
		event = l.zl.Debug()
	case LogLevelInfo:
		event = l.zl.Info()
	case LogLevelWarn:
		event = l.zl.Warn()
	case LogLevelError:
		event = l.zl.Error()
	default:
		event = l.zl.WithLevel(zerolog.FatalLevel)
	}

	event.Str("component", string(component)).Msgf(format, args...)

	// Exit on fatal
	if level == LogLevelFatal {
		os.Exit(1)
	}
}

func (l *Logger) Debug(component Component, format string, args ...interface{}) {
	l.log(LogLevelDebug, component, format, args...)
}

func (l *Logger) Info(component Component, format string, args ...interface{}) {
	l.log(LogLevelInfo, component, format, args...)
}

func (l *Logger) Warn(component Component, format string, args ...interface{}) {
	l.log(LogLevelWarn, component, format, args...)
}

func (l *Logger) Error(component Component, format string, args ...interface{}) {
	l.log(LogLevelError, component, format, args...)
}

func (l *Logger) Fatal(component Component, format string, args ...interface{}) {
	l.log(LogLevelFatal, component, format, args...)
}

// With returns a structured zerolog logger tagged with the component.
// It honours the level and component filters at the time of the call.
func (l *Logger) With(component Component) zerolog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.enabledComponents[component] {
		return zerolog.Nop()
	}

	zlLevel := zerolog.FatalLevel
	switch l.level {
	case LogLevelDebug:
		zlLevel = zerolog.DebugLevel
	case LogLevelInfo:
		zlLevel = zerolog.InfoLevel
	case LogLevelWarn:
		zlLevel = zerolog.WarnLevel
	case LogLevelError:
		zlLevel = zerolog.ErrorLevel
	}

	return l.zl.Level(zlLevel).With().Str("component", string(component)).Logger()
}
