package log

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string sends to stage
func Info(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.InfoHeader, func() string { return data })
}

// Infoln takes a pointer subLogger struct and interface sends to stage
func Infoln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.InfoHeader, func() string { return fmt.Sprintln(v...) })
}

// Infof takes a pointer subLogger struct, string and interface formats sends to stage
func Infof(sl *SubLogger, data string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.InfoHeader, func() string { return fmt.Sprintf(data, v...) })
}

// Debug takes a pointer subLogger struct and string sends to stage
func Debug(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.DebugHeader, func() string { return data })
}

// Debugln takes a pointer subLogger struct, string and interface sends to stage
func Debugln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.DebugHeader, func() string { return fmt.Sprintln(v...) })
}

// Debugf takes a pointer subLogger struct, string and interface formats sends to stage
func Debugf(sl *SubLogger, data string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.DebugHeader, func() string { return fmt.Sprintf(data, v...) })
}

// Warn takes a pointer subLogger struct & string and sends to stage
func Warn(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.WarnHeader, func() string { return data })
}

// Warnln takes a pointer subLogger struct & interface formats and sends to stage
func Warnln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.WarnHeader, func() string { return fmt.Sprintln(v...) })
}

// Warnf takes a pointer subLogger struct, string and interface formats sends to stage
func Warnf(sl *SubLogger, data string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.WarnHeader, func() string { return fmt.Sprintf(data, v...) })
}

// Error takes a pointer subLogger struct & interface formats and sends to stage
func Error(sl *SubLogger, data ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.ErrorHeader, func() string { return fmt.Sprint(data...) })
}

// Errorln takes a pointer subLogger struct, string & interface formats and sends to stage
func Errorln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sl.getFields().stage(logger.ErrorHeader, func() string { return fmt.Sprintln(v...) })
}

// Errorf takes a pointer subLogger struct, string and interface formats sends to stage
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

// enabled checks if the log level is enabled
func (l *logFields) enabled(header string) bool {
	switch header {
	case l.logger.InfoHeader:
		return l.info
	case l.logger.WarnHeader:
		return l.warn
	case l.logger.ErrorHeader:
		return l.error
	case l.logger.DebugHeader:
		return l.debug
	}
	return false
}

// stage formats and writes a log event. The message is only rendered when the
// level is enabled
func (l *logFields) stage(header string, deferFunc func() string) {
	if l == nil || l.output == nil || !l.enabled(header) {
		return
	}
	data := deferFunc()
	if customLogHook != nil && customLogHook(header, l.name, data) {
		return
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(time.Now().Format(l.logger.TimestampFormat))
	sb.WriteString(l.logger.Spacer)
	if l.logger.ShowLogSystemName {
		sb.WriteString(l.name)
		sb.WriteString(l.logger.Spacer)
	}
	sb.WriteString(data)
	if !strings.HasSuffix(data, "\n") {
		sb.WriteByte('\n')
	}
	_, err := l.output.Write([]byte(sb.String()))
	displayError(err)
}
