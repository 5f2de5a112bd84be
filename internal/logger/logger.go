// Package logger writes one JSON object per line for each run of sz-deals and
// keeps a small set of run metrics: counters, gauges and timings.
//
//	logger.Info("Fetched transaction table", logger.Fields{"rows": 42})
//	logger.RecordTiming("send", time.Since(start))
//
// Metrics live only for the process; the CLI logs a snapshot at DEBUG before
// exiting.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a log severity. Higher levels are more severe.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel converts a level name such as "debug" or "WARN" into a Level.
// An empty name selects INFO.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %s", name)
}

// Fields are the structured values attached to an entry.
type Fields map[string]interface{}

// Entry is the JSON shape of one log line.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Logger writes entries at or above its level to out. Lines from concurrent
// callers never interleave.
type Logger struct {
	level Level
	now   func() time.Time

	mu  sync.Mutex
	out io.Writer
}

// New returns a Logger that discards entries below level.
func New(level Level, out io.Writer) *Logger {
	return &Logger{level: level, out: out, now: time.Now}
}

// Enabled reports whether entries at level are written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) write(level Level, msg string, fields Fields, err error) {
	if !l.Enabled(level) {
		return
	}

	entry := Entry{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   msg,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	line, mErr := json.Marshal(entry)
	if mErr != nil {
		line = []byte(fmt.Sprintf(`{"timestamp":%q,"level":%q,"message":%q,"error":%q}`,
			entry.Timestamp, entry.Level, msg, "unencodable fields: "+mErr.Error()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(append(line, '\n')) // nolint:errcheck
}

func (l *Logger) Debug(msg string, fields Fields) { l.write(LevelDebug, msg, fields, nil) }
func (l *Logger) Info(msg string, fields Fields) { l.write(LevelInfo, msg, fields, nil) }
func (l *Logger) Warn(msg string, fields Fields) { l.write(LevelWarn, msg, fields, nil) }

// Error logs msg together with err, which may be nil.
func (l *Logger) Error(msg string, fields Fields, err error) {
	l.write(LevelError, msg, fields, err)
}

var std = New(LevelInfo, os.Stderr)

// SetDefault replaces the logger used by the package-level functions.
func SetDefault(l *Logger) {
	std = l
}

func Debug(msg string, fields Fields) { std.Debug(msg, fields) }
func Info(msg string, fields Fields) { std.Info(msg, fields) }
func Warn(msg string, fields Fields) { std.Warn(msg, fields) }
func Error(msg string, fields Fields, err error) { std.Error(msg, fields, err) }

// Timing aggregates the durations recorded under one name.
type Timing struct {
	Count int           `json:"count"`
	Total time.Duration `json:"total_ns"`
	Last  time.Duration `json:"last_ns"`
}

// Snapshot is a copy of the metrics at one point in time.
type Snapshot struct {
	Counters map[string]int64   `json:"counters"`
	Gauges   map[string]float64 `json:"gauges"`
	Timings  map[string]Timing  `json:"timings"`
}

// Metrics is safe for concurrent use.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string]Timing
}

func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string]Timing),
	}
}

func (m *Metrics) IncrCounter(name string) {
	m.mu.Lock()
	m.counters[name]++
	m.mu.Unlock()
}

// SetGauge overwrites the gauge's previous value.
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	m.gauges[name] = value
	m.mu.Unlock()
}

func (m *Metrics) RecordTiming(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.timings[name]
	t.Count++
	t.Total += d
	t.Last = d
	m.timings[name] = t
}

// Snapshot copies the current values.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Counters: make(map[string]int64, len(m.counters)),
		Gauges:   make(map[string]float64, len(m.gauges)),
		Timings:  make(map[string]Timing, len(m.timings)),
	}
	for k, v := range m.counters {
		s.Counters[k] = v
	}
	for k, v := range m.gauges {
		s.Gauges[k] = v
	}
	for k, v := range m.timings {
		s.Timings[k] = v
	}
	return s
}

var runMetrics = NewMetrics()

func IncrCounter(name string) { runMetrics.IncrCounter(name) }
func SetGauge(name string, value float64) { runMetrics.SetGauge(name, value) }
func RecordTiming(name string, d time.Duration) { runMetrics.RecordTiming(name, d) }
func GetMetricsSnapshot() Snapshot { return runMetrics.Snapshot() }
