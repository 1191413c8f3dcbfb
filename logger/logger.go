/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package logger is the thin structured-logging facade used across the
// terminal core. Components never log directly through the standard
// library; they take a Logger (or accept the package-level default) and
// call its leveled methods, so a host application can swap the backend
// or redirect output without touching core code.
package logger

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"

	libkerr "github.com/nabbar/termkey/errors"
)

// Fields carries structured key/value pairs attached to a single log line.
type Fields map[string]any

// Logger is the minimal leveled-logging surface the terminal core depends
// on. It intentionally avoids exposing the backend's full API so it stays
// swappable.
type Logger interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, fields Fields)

	// With returns a derived Logger that always attaches fields.
	With(fields Fields) Logger

	// SetOutput redirects where log lines are written.
	SetOutput(w io.Writer)

	// SetLevel parses level ("debug", "info", "warn", "error") and applies
	// it, returning a ConfigError for an unrecognized name.
	SetLevel(level string) error
}

type charmLogger struct {
	l *log.Logger
}

// New returns a Logger backed by charmbracelet/log writing to w, labeled
// with the given component name (e.g. "terminal", "binding").
func New(w io.Writer, component string) Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          component,
	})
	return &charmLogger{l: l}
}

func (c *charmLogger) Debug(msg string, fields Fields) { c.l.Debug(msg, flatten(fields)...) }
func (c *charmLogger) Info(msg string, fields Fields)  { c.l.Info(msg, flatten(fields)...) }
func (c *charmLogger) Warn(msg string, fields Fields)  { c.l.Warn(msg, flatten(fields)...) }
func (c *charmLogger) Error(msg string, fields Fields) { c.l.Error(msg, flatten(fields)...) }

func (c *charmLogger) With(fields Fields) Logger {
	return &charmLogger{l: c.l.With(flatten(fields)...)}
}

func (c *charmLogger) SetOutput(w io.Writer) { c.l.SetOutput(w) }

func (c *charmLogger) SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return libkerr.New(libkerr.ConfigError, "unknown log level "+level, err)
	}
	c.l.SetLevel(lvl)
	return nil
}

func flatten(f Fields) []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}

// loggerBox is the concrete type stored in def. atomic.Value panics if
// successive Store calls don't share a concrete type, which a bare
// "Logger" interface value can't promise once SetDefault is handed an
// implementation other than charmLogger; boxing it in a fixed struct
// sidesteps that regardless of what SetDefault is called with.
type loggerBox struct {
	l Logger
}

var def atomic.Value // loggerBox

func init() {
	def.Store(loggerBox{l: New(os.Stderr, "termkey")})
}

// Default returns the process-wide default Logger.
func Default() Logger {
	return def.Load().(loggerBox).l
}

// SetDefault replaces the process-wide default Logger.
func SetDefault(l Logger) {
	def.Store(loggerBox{l: l})
}
