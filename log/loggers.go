package log

import (
	"fmt"
	"log"
	"time"
)

// Info takes a pointer subLogger struct and string sends to the sub logger output
func Info(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.InfoHeader, func() string { return data })
}

// Infoln takes a pointer subLogger struct and interface sends to the sub logger output
func Infoln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.InfoHeader, func() string { return fmt.Sprint(v...) })
}

// Infof takes a pointer subLogger struct, string and interface formats sends to the sub logger output
func Infof(sl *SubLogger, data string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.InfoHeader, func() string { return fmt.Sprintf(data, v...) })
}

// Debug takes a pointer subLogger struct and string sends to the sub logger output
func Debug(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.DebugHeader, func() string { return data })
}

// Debugln takes a pointer subLogger struct, string and interface sends to the sub logger output
func Debugln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.DebugHeader, func() string { return fmt.Sprint(v...) })
}

// Debugf takes a pointer subLogger struct, string and interface formats sends to the sub logger output
func Debugf(sl *SubLogger, data string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.DebugHeader, func() string { return fmt.Sprintf(data, v...) })
}

// Warn takes a pointer subLogger struct & string and sends to the sub logger output
func Warn(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.WarnHeader, func() string { return data })
}

// Warnln takes a pointer subLogger struct & interface formats and sends to the sub logger output
func Warnln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.WarnHeader, func() string { return fmt.Sprint(v...) })
}

// Warnf takes a pointer subLogger struct, string and interface formats sends to the sub logger output
func Warnf(sl *SubLogger, data string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.WarnHeader, func() string { return fmt.Sprintf(data, v...) })
}

// Error takes a pointer subLogger struct & interface formats and sends to the sub logger output
func Error(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.ErrorHeader, func() string { return data })
}

// Errorln takes a pointer subLogger struct, string & interface formats and sends to the sub logger output
func Errorln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.ErrorHeader, func() string { return fmt.Sprint(v...) })
}

// Errorf takes a pointer subLogger struct, string and interface formats and sends to the sub logger output
func Errorf(sl *SubLogger, data string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.ErrorHeader, func() string { return fmt.Sprintf(data, v...) })
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}

// level maps a header to the level name used by hooks and config
func (l *logFields) level(header string) string {
	switch header {
	case l.logger.InfoHeader:
		return LevelInfo
	case l.logger.WarnHeader:
		return LevelWarn
	case l.logger.ErrorHeader:
		return LevelError
	case l.logger.DebugHeader:
		return LevelDebug
	}
	return ""
}

func (l *logFields) enabled(level string) bool {
	switch level {
	case LevelInfo:
		return l.info
	case LevelWarn:
		return l.warn
	case LevelError:
		return l.error
	case LevelDebug:
		return l.debug
	}
	return false
}

// stage formats and writes a log event. The message is only rendered when
// the level is enabled or a hook is registered.
func (l *logFields) stage(header string, deferred func() string) {
	if l == nil {
		return
	}
	level := l.level(header)
	if runHooks(level, l.name, deferred) {
		return
	}
	if !l.enabled(level) || l.output == nil {
		return
	}
	buf := make([]byte, 0, 128)
	buf = append(buf, header...)
	if l.logger.ShowLogSystemName {
		buf = append(buf, l.logger.Spacer...)
		buf = append(buf, l.name...)
	}
	buf = append(buf, l.logger.Spacer...)
	if l.logger.TimestampFormat != "" {
		buf = time.Now().AppendFormat(buf, l.logger.TimestampFormat)
	}
	buf = append(buf, l.logger.Spacer...)
	buf = append(buf, deferred()...)
	if len(buf) == 0 || buf[len(buf)-1] != '\n' {
		buf = append(buf, '\n')
	}
	_, err := l.output.Write(buf)
	displayError(err)
}
