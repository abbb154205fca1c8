package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	errSubloggerConfigIsNil  = errors.New("sublogger config is nil")
	errUnhandledOutputWriter = errors.New("unhandled output writer")
	errConfigNil             = errors.New("logger config is nil")
	errFileLoggingNotSetup   = errors.New("file logging requested but not configured")
)

func getWriters(s *SubLoggerConfig) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	return newOutputWriter(s.Output)
}

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() *Config {
	enabled, showName := true, true
	return &Config{
		Enabled: &enabled,
		SubLoggerConfig: SubLoggerConfig{
			Level:  "INFO|WARN|ERROR",
			Output: "console",
		},
		LoggerFileConfig: &loggerFileConfig{
			FileName: "log.txt",
		},
		AdvancedSettings: advancedSettings{
			ShowLogSystemName: &showName,
			Spacer:            spacer,
			TimeStampFormat:   timestampFormat,
			Headers: headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

func newLogger(c *Config) Logger {
	var showName bool
	if c.AdvancedSettings.ShowLogSystemName != nil {
		showName = *c.AdvancedSettings.ShowLogSystemName
	}
	return Logger{
		ShowLogSystemName: showName,
		TimestampFormat:   c.AdvancedSettings.TimeStampFormat,
		Spacer:            c.AdvancedSettings.Spacer,
		ErrorHeader:       c.AdvancedSettings.Headers.Error,
		InfoHeader:        c.AdvancedSettings.Headers.Info,
		WarnHeader:        c.AdvancedSettings.Headers.Warn,
		DebugHeader:       c.AdvancedSettings.Headers.Debug,
	}
}

// SetFileLoggingState opens the log file inside the given directory so that
// "file" can be used as an output
func SetFileLoggingState(dir, fileName string) error {
	if fileName == "" {
		fileName = "log.txt"
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, fileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return err
	}
	mu.Lock()
	logPath = dir
	globalLogFile = f
	fileLoggingConfiguredCorrectly = true
	mu.Unlock()
	return nil
}

// SetupGlobalLogger applies the config to the logger and every registered sub logger
func SetupGlobalLogger(c *Config) error {
	if c == nil {
		return errConfigNil
	}
	output, err := getWriters(&c.SubLoggerConfig)
	if err != nil {
		return err
	}
	enabled := c.Enabled == nil || *c.Enabled
	mu.Lock()
	logger = newLogger(c)
	for _, sl := range subLoggers {
		sl.SetOutput(output)
		if enabled {
			sl.SetLevels(splitLevel(c.Level))
		} else {
			sl.SetLevels(Levels{})
		}
	}
	mu.Unlock()
	return SetupSubLoggers(c.SubLoggers)
}

// SetupSubLoggers configure all sub loggers with provided configuration values
func SetupSubLoggers(s []SubLoggerConfig) error {
	for x := range s {
		output, err := getWriters(&s[x])
		if err != nil {
			return err
		}
		mu.RLock()
		sl, ok := subLoggers[strings.ToUpper(s[x].Name)]
		mu.RUnlock()
		if !ok {
			return fmt.Errorf("sub logger %v not found", s[x].Name)
		}
		sl.SetOutput(output)
		sl.SetLevels(splitLevel(s[x].Level))
	}
	return nil
}

// CloseLogger is called on shutdown of application
func CloseLogger() error {
	mu.Lock()
	defer mu.Unlock()
	if globalLogFile == nil {
		return nil
	}
	err := globalLogFile.Close()
	globalLogFile = nil
	fileLoggingConfiguredCorrectly = false
	return err
}

func splitLevel(level string) (l Levels) {
	enabledLevels := strings.Split(level, "|")
	for x := range enabledLevels {
		switch strings.ToUpper(enabledLevels[x]) {
		case LevelDebug:
			l.Debug = true
		case LevelInfo:
			l.Info = true
		case LevelWarn:
			l.Warn = true
		case LevelError:
			l.Error = true
		}
	}
	return
}

// register the global logger at package init()
func init() {
	logger = newLogger(GenDefaultSettings())
	Global = registerNewSubLogger("LOG")
}
