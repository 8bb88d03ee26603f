// Package logging provides the component-tagged logger shared by the scanner,
// planner and executor. Loggers are passed explicitly; there is no global one.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the minimum severity a Logger writes
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
		return "UNKNOWN"
	}
	return levelNames[l]
}

var levelAliases = map[string]Level{
	"debug":   LevelDebug,
	"verbose": LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
	"quiet":   LevelError,
}

// ParseLevel maps a config value to a Level. Unknown values map to info.
func ParseLevel(s string) Level {
	if l, ok := levelAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return LevelInfo
}

// Field is a key-value pair appended to a log line
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level      string `mapstructure:"level" json:"level"`
	File       string `mapstructure:"file" json:"file"` // empty = console only
	MaxSizeMB  int    `mapstructure:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups"`
}

// DefaultConfig returns default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  10,
		MaxBackups: 5,
	}
}

// Logger writes one line per entry to a console writer and, optionally, a
// size-rotated file.
type Logger struct {
	mu    sync.Mutex
	level Level
	out   io.Writer

	file       *os.File
	filePath   string
	maxSize    int64
	maxBackups int
}

// New creates a Logger from cfg writing to stdout. A leading ~ in cfg.File
// is expanded.
func New(cfg Config) (*Logger, error) {
	l := &Logger{
		level:      ParseLevel(cfg.Level),
		out:        os.Stdout,
		maxSize:    10 << 20,
		maxBackups: 5,
	}
	if cfg.MaxSizeMB > 0 {
		l.maxSize = int64(cfg.MaxSizeMB) << 20
	}
	if cfg.MaxBackups > 0 {
		l.maxBackups = cfg.MaxBackups
	}
	if cfg.File == "" {
		return l, nil
	}

	path, err := expandHome(cfg.File)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	l.filePath = path
	if err := l.openFile(); err != nil {
		return nil, err
	}
	return l, nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get home dir: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// NewWriter creates a Logger that writes only to w
func NewWriter(w io.Writer, level Level) *Logger {
	return &Logger{level: level, out: w}
}

// Nop returns a logger that discards all output
func Nop() *Logger {
	return &Logger{level: LevelError + 1}
}

func (l *Logger) openFile() error {
	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	l.file = f
	return nil
}

// format renders "time [LEVEL] [component] msg | error=... | k=v"
func format(level Level, component, msg string, err error, fields []Field) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] [%s] %s", time.Now().Format(time.RFC3339), level, component, msg)
	if err != nil {
		fmt.Fprintf(&sb, " | error=%s", err)
	}
	for _, f := range fields {
		fmt.Fprintf(&sb, " | %s=%v", f.Key, f.Value)
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}

func (l *Logger) log(level Level, component, msg string, err error, fields []Field) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level || (l.out == nil && l.file == nil) {
		return
	}

	if rotErr := l.rotateIfNeeded(); rotErr != nil {
		fmt.Fprintf(os.Stderr, "log rotation error: %v\n", rotErr)
	}

	line := format(level, component, msg, err, fields)
	if l.out != nil {
		l.out.Write(line)
	}
	if l.file != nil {
		l.file.Write(line)
	}
}

func (l *Logger) Debug(component, msg string, fields ...Field) {
	l.log(LevelDebug, component, msg, nil, fields)
}

func (l *Logger) Info(component, msg string, fields ...Field) {
	l.log(LevelInfo, component, msg, nil, fields)
}

func (l *Logger) Warn(component, msg string, fields ...Field) {
	l.log(LevelWarn, component, msg, nil, fields)
}

// Error logs msg with err rendered as an error= field
func (l *Logger) Error(component, msg string, err error, fields ...Field) {
	l.log(LevelError, component, msg, err, fields)
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetOutput replaces the console writer. A nil writer silences the console.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// FilePath returns the log file path, or "" when logging to the console only
func (l *Logger) FilePath() string {
	return l.filePath
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
