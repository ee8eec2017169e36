package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger provides leveled, ANSI-colored logging with an optional component
// tag on every line. Debug lines are dropped unless debug output was enabled
// at construction.
type Logger struct {
	prefix string
	debug  bool
	out    *log.Logger
	errOut *log.Logger
}

// NewLogger creates a Logger writing to stdout/stderr.
func NewLogger(debugEnabled bool) *Logger {
	return newLogger(os.Stdout, os.Stderr, debugEnabled)
}

func newLogger(out, errOut io.Writer, debugEnabled bool) *Logger {
	return &Logger{
		debug:  debugEnabled,
		out:    log.New(out, "", 0),
		errOut: log.New(errOut, "", 0),
	}
}

// WithComponent returns a Logger that tags every line with the component
// name, e.g. "[crawl]". The receiver is not modified.
func (l *Logger) WithComponent(name string) *Logger {
	clone := *l
	clone.prefix = "[" + name + "] "
	return &clone
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.out.Printf("[%s] \033[32mINFO\033[0m  %s%s\n", l.timestamp(), l.prefix, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.out.Printf("[%s] \033[33mWARN\033[0m  %s%s\n", l.timestamp(), l.prefix, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.errOut.Printf("[%s] \033[31mERROR\033[0m %s%s\n", l.timestamp(), l.prefix, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.debug {
		return
	}
	l.out.Printf("[%s] \033[36mDEBUG\033[0m %s%s\n", l.timestamp(), l.prefix, fmt.Sprintf(format, args...))
}
