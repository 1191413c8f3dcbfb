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

// Package terminal assembles a Pty, a parsed terminfo entry, a
// charsrc.Source and the signal bridge into the one object a caller
// actually opens and closes: the system terminal. Everything it needs
// from its collaborators is consumed through interfaces defined
// alongside it (Pty) or in sibling packages (charsrc.Source, terminfo
// Capabilities), so a host that isn't driving a real POSIX pty can
// substitute its own.
package terminal

import (
	"bufio"
	"io"
	"sync"

	"github.com/nabbar/termkey/binding"
	"github.com/nabbar/termkey/charsrc"
	libkerr "github.com/nabbar/termkey/errors"
	"github.com/nabbar/termkey/keymap"
	liblog "github.com/nabbar/termkey/logger"
	"github.com/nabbar/termkey/shutdown"
	"github.com/nabbar/termkey/signalbridge"
)

// InitialDisposition chooses what a freshly opened terminal does with
// each native signal before any caller-installed handler is in place.
type InitialDisposition int

const (
	// Native installs the OS default disposition at open time, replacing
	// any handler registered for the signal through the signal bridge.
	Native InitialDisposition = iota
	// Ignored installs an ignore disposition at open time.
	Ignored
	// Custom installs the matching entry of Config.Handlers at open
	// time, through the same Register path Handle uses, so the
	// terminal's own bookkeeping (sigTokens, Unhandle, Close) treats it
	// identically to a handler installed later. The token captures
	// whatever disposition was active before Open, so calling Raise for
	// the signal runs that prior disposition.
	Custom
)

// Config is every construction-time choice a system terminal needs.
// Zero value is a usable default: UTF-8, "xterm", native dispositions,
// raw mode left to the caller.
type Config struct {
	TermType string
	Encoding charsrc.Encoding
	Initial  map[signalbridge.Signal]InitialDisposition
	// Handlers supplies the callback for every signal whose Initial
	// entry is Custom. A Custom signal missing from Handlers is a
	// ConfigError at Open time.
	Handlers map[signalbridge.Signal]signalbridge.Callback
	Logger   liblog.Logger
}

// Terminal is the opened, running system terminal: a pty, its parsed
// capabilities, a decoded character stream, and the bookkeeping Close
// uses to undo raw mode, the custom signal handlers it registered, and
// its process-exit registration.
type Terminal struct {
	mu sync.Mutex

	pty  Pty
	caps *Capabilities
	src  charsrc.Source
	out  *bufio.Writer
	log  liblog.Logger

	cfg Config

	cooked    Attr
	haveRaw   bool
	sigTokens map[signalbridge.Signal]signalbridge.Token
	shutID    shutdown.ID
	closed    bool
}

// Open constructs a system terminal over pty: it loads the requested
// terminfo entry, wraps the pty's slave streams in a decoded character
// source and a buffered writer, installs the configured initial signal
// dispositions, and registers itself with the process-wide shutdown
// registry so an orderly exit still restores cooked mode even if the
// caller forgets to Close.
func Open(pty Pty, cfg Config) (*Terminal, error) {
	if pty == nil {
		return nil, libkerr.New(libkerr.ConfigError, "nil pty", nil)
	}
	if cfg.TermType == "" {
		cfg.TermType = "xterm"
	}
	if cfg.Logger == nil {
		cfg.Logger = liblog.Default()
	}
	log := cfg.Logger.With(liblog.Fields{"component": "terminal", "term": cfg.TermType})

	caps, err := loadCapabilities(cfg.TermType)
	if err != nil {
		return nil, err
	}

	cooked, err := pty.GetAttr()
	if err != nil {
		return nil, err
	}

	src := charsrc.New(pty.SlaveInput(), cfg.Encoding, log)
	out := bufio.NewWriter(pty.SlaveOutput())

	t := &Terminal{
		pty:       pty,
		caps:      caps,
		src:       src,
		out:       out,
		log:       log,
		cfg:       cfg,
		cooked:    cooked,
		sigTokens: map[signalbridge.Signal]signalbridge.Token{},
	}

	for _, sig := range signalbridge.All() {
		disp, ok := cfg.Initial[sig]
		if !ok {
			continue
		}
		switch disp {
		case Ignored:
			if err := signalbridge.RegisterIgnore(sig); err != nil {
				_ = t.Close()
				return nil, err
			}
		case Native:
			if err := signalbridge.RegisterDefault(sig); err != nil {
				_ = t.Close()
				return nil, err
			}
		case Custom:
			cb, ok := cfg.Handlers[sig]
			if !ok {
				_ = t.Close()
				return nil, libkerr.New(libkerr.ConfigError, "no handler for custom signal "+sig.String(), nil)
			}
			tok, err := signalbridge.Register(sig, cb)
			if err != nil {
				_ = t.Close()
				return nil, err
			}
			t.sigTokens[sig] = tok
		}
	}

	t.shutID = shutdown.Add(func() {
		log.Debug("shutdown registry closing terminal", nil)
		_ = t.closeLocked()
	})

	log.Info("terminal opened", liblog.Fields{"columns": caps.Columns(), "lines": caps.Lines()})
	return t, nil
}

// Handle installs cb as the terminal's handler for sig, replacing any
// handler the terminal already had for it, and keeps the token that
// Close (or an explicit call to Unhandle) uses to restore the
// disposition that was active before the terminal's handler.
func (t *Terminal) Handle(sig signalbridge.Signal, cb signalbridge.Callback) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return libkerr.New(libkerr.ClosedError, "terminal closed", nil)
	}
	if prev, ok := t.sigTokens[sig]; ok {
		_ = signalbridge.Unregister(sig, prev)
		delete(t.sigTokens, sig)
	}
	tok, err := signalbridge.Register(sig, cb)
	if err != nil {
		return err
	}
	t.sigTokens[sig] = tok
	return nil
}

// Unhandle restores the disposition that was active before the
// terminal installed a handler for sig.
func (t *Terminal) Unhandle(sig signalbridge.Signal) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	tok, ok := t.sigTokens[sig]
	if !ok {
		return nil
	}
	delete(t.sigTokens, sig)
	return signalbridge.Unregister(sig, tok)
}

// Raise synchronously invokes the disposition that was active before the
// terminal registered its handler for sig (the one captured in that
// handler's token), the way a line editor re-raises a SIGINT it
// intercepted for cleanup purposes before letting it take effect.
func (t *Terminal) Raise(sig signalbridge.Signal) error {
	t.mu.Lock()
	tok, ok := t.sigTokens[sig]
	t.mu.Unlock()
	if !ok {
		return libkerr.New(libkerr.SignalError, "no handler installed for "+sig.String(), nil)
	}
	return signalbridge.InvokeHandler(sig, tok)
}

// EnterRaw switches the pty into raw mode, remembering the cooked
// attributes ExitRaw and Close restore.
func (t *Terminal) EnterRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return libkerr.New(libkerr.ClosedError, "terminal closed", nil)
	}
	prior, err := t.pty.MakeRaw()
	if err != nil {
		return err
	}
	if !t.haveRaw {
		t.cooked = prior
	}
	t.haveRaw = true
	return nil
}

// ExitRaw restores cooked mode, if raw mode was entered.
func (t *Terminal) ExitRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.haveRaw {
		return nil
	}
	t.haveRaw = false
	return t.pty.SetAttr(t.cooked)
}

// NewReader returns a binding reader drawing code points from this
// terminal's character source.
func NewReader[T any](t *Terminal) *binding.Reader[T] {
	return binding.New[T](t.src, t.log)
}

// Input exposes the raw decoded character source, for callers building
// their own reader atop a different keymap arrangement than NewReader
// provides for free.
func (t *Terminal) Input() charsrc.Source { return t.src }

// Output returns the buffered writer attached to the pty's slave
// output. Callers must Flush explicitly; the terminal never flushes on
// their behalf except at Close.
func (t *Terminal) Output() *bufio.Writer { return t.out }

// Writer is an alias of Output kept for callers that only need the
// io.Writer surface.
func (t *Terminal) Writer() io.Writer { return t.out }

// Capabilities returns the parsed terminfo entry this terminal was
// opened with.
func (t *Terminal) Capabilities() *Capabilities { return t.caps }

// Encoding returns the character encoding this terminal decodes input
// with.
func (t *Terminal) Encoding() charsrc.Encoding { return t.cfg.Encoding }

// Type returns the terminfo terminal type name this terminal was
// opened with.
func (t *Terminal) Type() string { return t.cfg.TermType }

// Columns and Lines passthrough the parsed terminfo geometry. A caller
// tracking live resizes (via a WINCH handler installed through Handle)
// should instead track pty.GetWinSize, since terminfo geometry is
// static once loaded.
func (t *Terminal) Columns() int { return t.caps.Columns() }
func (t *Terminal) Lines() int   { return t.caps.Lines() }

// Bind is a convenience that binds val to seq in m and returns m, for
// chained keymap construction at terminal-setup time.
func Bind[T any](m *keymap.KeyMap[T], seq string, val T) *keymap.KeyMap[T] {
	m.Bind([]rune(seq), val)
	return m
}

// Close flushes pending output, restores cooked mode if raw mode had
// been entered, unregisters every custom signal handler this terminal
// registered (restoring the disposition each one replaced), closes the
// character source and the underlying pty, and deregisters from the
// shutdown registry. Ignored and Native dispositions installed at Open
// are left in place. Close is idempotent.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeLocked()
}

func (t *Terminal) closeLocked() error {
	if t.closed {
		return nil
	}
	t.closed = true
	shutdown.Remove(t.shutID)

	agg := libkerr.NewAggregate()

	if err := t.out.Flush(); err != nil {
		agg.Add(libkerr.New(libkerr.IoError, "flush output", err))
	}
	if t.haveRaw {
		if err := t.pty.SetAttr(t.cooked); err != nil {
			agg.Add(err)
		}
	}
	for sig, tok := range t.sigTokens {
		if err := signalbridge.Unregister(sig, tok); err != nil {
			agg.Add(err)
		}
	}
	t.sigTokens = map[signalbridge.Signal]signalbridge.Token{}

	if err := t.src.Close(); err != nil {
		agg.Add(err)
	}
	if err := t.pty.Close(); err != nil {
		agg.Add(err)
	}

	t.log.Info("terminal closed", nil)
	return agg.ErrorOrNil()
}
