// Package debug provides the leveled, component-tagged logger shared by
// every subsystem of the emulation core, plus the "debugger trip" signal
// used in place of panicking on illegal opcodes or undefined MMIO commands.
package debug

import (
	"fmt"
	"sync"
	"time"
)

// LogLevel is the severity of a log entry.
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "ERROR"
	case LogLevelWarning:
		return "WARNING"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelTrace:
		return "TRACE"
	default:
		return "NONE"
	}
}

// Component names the subsystem that produced a log entry.
type Component string

const (
	ComponentCPU    Component = "CPU"
	ComponentBus    Component = "Bus"
	ComponentVDP    Component = "VDP"
	ComponentDCSG   Component = "DCSG"
	ComponentCRU    Component = "CRU"
	ComponentTape   Component = "Tape"
	ComponentSystem Component = "System"
)

// LogEntry is a single log record.
type LogEntry struct {
	Timestamp time.Time
	Component Component
	Level     LogLevel
	Message   string
}

// Format renders an entry for a plain-text log view.
func (e *LogEntry) Format() string {
	return fmt.Sprintf("[%s] [%s] %s: %s", e.Timestamp.Format("15:04:05.000"), e.Component, e.Level, e.Message)
}

// Logger is a ring buffer of log entries with per-component opt-in and a
// minimum level filter. Unlike the windowed-UI logger this is grounded on,
// the core is single-threaded and cooperative (spec.md §5), so entries are
// appended directly under a mutex rather than funneled through a
// background goroutine and channel — there is no producer/consumer
// mismatch here to justify the extra concurrency.
type Logger struct {
	mu               sync.Mutex
	entries          []LogEntry
	maxEntries       int
	writeIndex       int
	entryCount       int
	minLevel         LogLevel
	componentEnabled map[Component]bool
}

// NewLogger creates a logger with the given ring-buffer capacity.
func NewLogger(maxEntries int) *Logger {
	if maxEntries < 64 {
		maxEntries = 64
	}
	return &Logger{
		entries:    make([]LogEntry, maxEntries),
		maxEntries: maxEntries,
		minLevel:   LogLevelInfo,
		componentEnabled: map[Component]bool{
			ComponentCPU:    false,
			ComponentBus:    false,
			ComponentVDP:    false,
			ComponentDCSG:   false,
			ComponentCRU:    false,
			ComponentTape:   true,
			ComponentSystem: true,
		},
	}
}

// SetMinLevel sets the minimum level that will be recorded.
func (l *Logger) SetMinLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// EnableComponent toggles logging for a single component.
func (l *Logger) EnableComponent(c Component, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.componentEnabled[c] = enabled
}

// IsComponentEnabled reports whether a component currently logs.
func (l *Logger) IsComponentEnabled(c Component) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.componentEnabled[c]
}

func (l *Logger) log(c Component, level LogLevel, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.componentEnabled[c] || level < l.minLevel {
		return
	}
	l.entries[l.writeIndex] = LogEntry{Timestamp: time.Now(), Component: c, Level: level, Message: message}
	l.writeIndex = (l.writeIndex + 1) % l.maxEntries
	if l.entryCount < l.maxEntries {
		l.entryCount++
	}
}

func (l *Logger) logf(c Component, level LogLevel, format string, args ...interface{}) {
	l.log(c, level, fmt.Sprintf(format, args...))
}

func (l *Logger) LogCPU(level LogLevel, message string)  { l.log(ComponentCPU, level, message) }
func (l *Logger) LogBus(level LogLevel, message string)  { l.log(ComponentBus, level, message) }
func (l *Logger) LogVDP(level LogLevel, message string)  { l.log(ComponentVDP, level, message) }
func (l *Logger) LogDCSG(level LogLevel, message string) { l.log(ComponentDCSG, level, message) }
func (l *Logger) LogCRU(level LogLevel, message string)  { l.log(ComponentCRU, level, message) }
func (l *Logger) LogTape(level LogLevel, message string) { l.log(ComponentTape, level, message) }
func (l *Logger) LogSystem(level LogLevel, message string) {
	l.log(ComponentSystem, level, message)
}

func (l *Logger) LogCPUf(level LogLevel, format string, args ...interface{}) {
	l.logf(ComponentCPU, level, format, args...)
}
func (l *Logger) LogVDPf(level LogLevel, format string, args ...interface{}) {
	l.logf(ComponentVDP, level, format, args...)
}
func (l *Logger) LogDCSGf(level LogLevel, format string, args ...interface{}) {
	l.logf(ComponentDCSG, level, format, args...)
}
func (l *Logger) LogTapef(level LogLevel, format string, args ...interface{}) {
	l.logf(ComponentTape, level, format, args...)
}
func (l *Logger) LogSystemf(level LogLevel, format string, args ...interface{}) {
	l.logf(ComponentSystem, level, format, args...)
}

// Entries returns a snapshot of the buffered log entries, oldest first.
func (l *Logger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, 0, l.entryCount)
	if l.entryCount < l.maxEntries {
		out = append(out, l.entries[:l.entryCount]...)
		return out
	}
	out = append(out, l.entries[l.writeIndex:]...)
	out = append(out, l.entries[:l.writeIndex]...)
	return out
}
