package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	errEmptyLoggerName        = errors.New("cannot have empty logger name")
	errSubLoggerAlreadyExists = errors.New("sub logger already exists")
)

// NewSubLogger allows for a new sub logger to be registered.
func NewSubLogger(name string) (*SubLogger, error) {
	if name == "" {
		return nil, errEmptyLoggerName
	}
	name = strings.ToUpper(name)
	mu.RLock()
	_, ok := subLoggers[name]
	mu.RUnlock()
	if ok {
		return nil, fmt.Errorf("'%v' %w", name, errSubLoggerAlreadyExists)
	}
	return registerNewSubLogger(name), nil
}

// MustNewSubLogger registers a sub logger and panics on a duplicate name.
// It is intended for package level variable initialisation.
func MustNewSubLogger(name string) *SubLogger {
	sl, err := NewSubLogger(name)
	if err != nil {
		panic(err)
	}
	return sl
}

// SetOutput overrides the default output with a new writer
func (sl *SubLogger) SetOutput(o io.Writer) {
	sl.mtx.Lock()
	sl.output = o
	sl.mtx.Unlock()
}

// SetLevels overrides the default levels with new levels; levelception
func (sl *SubLogger) SetLevels(newLevels Levels) {
	sl.mtx.Lock()
	sl.levels = newLevels
	sl.mtx.Unlock()
}

// GetLevels returns current functional log levels
func (sl *SubLogger) GetLevels() Levels {
	sl.mtx.RLock()
	defer sl.mtx.RUnlock()
	return sl.levels
}

// Name returns the registered name of the sub logger
func (sl *SubLogger) Name() string {
	return sl.name
}

func (sl *SubLogger) getFields() *logFields {
	if sl == nil {
		return nil
	}
	sl.mtx.RLock()
	defer sl.mtx.RUnlock()
	return &logFields{
		info:   sl.levels.Info,
		warn:   sl.levels.Warn,
		debug:  sl.levels.Debug,
		error:  sl.levels.Error,
		name:   sl.name,
		output: sl.output,
		logger: logger,
	}
}

func registerNewSubLogger(name string) *SubLogger {
	temp := &SubLogger{
		name:   strings.ToUpper(name),
		output: os.Stdout,
		levels: splitLevel("INFO|WARN|DEBUG|ERROR"),
	}
	mu.Lock()
	subLoggers[temp.name] = temp
	mu.Unlock()
	return temp
}
