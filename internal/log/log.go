// Package log provides leveled logging for geofix. Output goes to stderr
// unless redirected with SetOutput.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
)

// Level controls which messages are emitted. Messages below the current
// level are dropped.
type Level int

const (
	TRACE Level = iota
	DEBUG
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel returns the Level named by s (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

var (
	mu     sync.Mutex
	level  = INFO
	logger = stdlog.New(os.Stderr, "", stdlog.LstdFlags)
)

// SetLevel sets the minimum level that will be emitted.
func SetLevel(l Level) {
	mu.Lock()
	level = l
	mu.Unlock()
}

// SetOutput redirects log output, primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger.SetOutput(w)
	mu.Unlock()
}

// IsDebug reports whether debug messages are being emitted. Callers use it
// to skip building expensive debug output.
func IsDebug() bool {
	mu.Lock()
	defer mu.Unlock()
	return level <= DEBUG
}

func output(l Level, msg string) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	logger.Printf("[%v] %v", l, msg)
}

func Trace(v ...interface{})            { output(TRACE, fmt.Sprint(v...)) }
func Tracef(f string, v ...interface{}) { output(TRACE, fmt.Sprintf(f, v...)) }

func Debug(v ...interface{})            { output(DEBUG, fmt.Sprint(v...)) }
func Debugf(f string, v ...interface{}) { output(DEBUG, fmt.Sprintf(f, v...)) }

func Info(v ...interface{})            { output(INFO, fmt.Sprint(v...)) }
func Infof(f string, v ...interface{}) { output(INFO, fmt.Sprintf(f, v...)) }

func Warn(v ...interface{})            { output(WARN, fmt.Sprint(v...)) }
func Warnf(f string, v ...interface{}) { output(WARN, fmt.Sprintf(f, v...)) }

func Error(v ...interface{})            { output(ERROR, fmt.Sprint(v...)) }
func Errorf(f string, v ...interface{}) { output(ERROR, fmt.Sprintf(f, v...)) }

// Fatal logs at FATAL and exits.
func Fatal(v ...interface{}) {
	output(FATAL, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs at FATAL and exits.
func Fatalf(f string, v ...interface{}) {
	output(FATAL, fmt.Sprintf(f, v...))
	os.Exit(1)
}
