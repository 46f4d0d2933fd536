// Package plog is a small structured logger for the CLI runner and its
// supporting stores. The pvm core package never imports it: that package is
// a pure function of its inputs and performs no I/O.
//
// The idiom follows go-ethereum's log package: leveled calls taking
// alternating key/value pairs, a caller frame captured per record via
// go-stack/stack.
package plog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

// Level is a log severity, ordered low to high.
type Level int

const (
	LvlCrit Level = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
)

func (l Level) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DEBUG"
	default:
		return "?"
	}
}

// Logger emits leveled, key-value structured records to an io.Writer.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	minLvl Level
	ctx    []interface{}
}

// New builds a Logger writing to os.Stderr at LvlInfo, with a base context
// of alternating key/value pairs attached to every record it emits.
func New(ctx ...interface{}) *Logger {
	return &Logger{out: os.Stderr, minLvl: LvlInfo, ctx: ctx}
}

// SetOutput redirects where records are written.
func (l *Logger) SetOutput(w io.Writer) { l.mu.Lock(); l.out = w; l.mu.Unlock() }

// SetLevel sets the minimum severity that is actually emitted.
func (l *Logger) SetLevel(lvl Level) { l.mu.Lock(); l.minLvl = lvl; l.mu.Unlock() }

// New returns a child logger with additional context appended.
func (l *Logger) New(ctx ...interface{}) *Logger {
	return &Logger{out: l.out, minLvl: l.minLvl, ctx: append(append([]interface{}{}, l.ctx...), ctx...)}
}

func (l *Logger) log(lvl Level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lvl > l.minLvl {
		return
	}
	call := stack.Caller(2)
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s] %-5s %s", time.Now().UTC().Format("15:04:05.000"), fmt.Sprintf("%n", call), lvl, msg)
	all := append(append([]interface{}{}, l.ctx...), kv...)
	for i := 0; i+1 < len(all); i += 2 {
		fmt.Fprintf(&b, " %v=%v", all[i], all[i+1])
	}
	b.WriteByte('\n')
	l.out.Write([]byte(b.String()))
}

func (l *Logger) Crit(msg string, kv ...interface{})  { l.log(LvlCrit, msg, kv) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LvlError, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(LvlWarn, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(LvlInfo, msg, kv) }
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LvlDebug, msg, kv) }

var root = New()

// Root returns the package-level default logger, for call sites that do not
// need their own context.
func Root() *Logger { return root }
