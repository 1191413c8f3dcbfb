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

// Package signalbridge maps the POSIX signals a terminal cares about onto
// in-process callbacks, isolating the restricted signal-delivery context
// from the caller's goroutine: os/signal already does the async-signal-safe
// trampoline into a channel, so the bridge's own job is bookkeeping the
// current disposition per signal and handing out undo tokens.
package signalbridge

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	libkerr "github.com/nabbar/termkey/errors"
)

// Signal is the closed enumeration of signals the bridge recognizes.
type Signal int

const (
	INT Signal = iota
	QUIT
	TSTP
	CONT
	WINCH
)

var names = map[Signal]string{
	INT:   "INT",
	QUIT:  "QUIT",
	TSTP:  "TSTP",
	CONT:  "CONT",
	WINCH: "WINCH",
}

var native = map[Signal]syscall.Signal{
	INT:   syscall.SIGINT,
	QUIT:  syscall.SIGQUIT,
	TSTP:  syscall.SIGTSTP,
	CONT:  syscall.SIGCONT,
	WINCH: syscall.SIGWINCH,
}

// All lists every recognized signal, in a stable order.
func All() []Signal { return []Signal{INT, QUIT, TSTP, CONT, WINCH} }

// String returns the stable OS-facing name of the signal.
func (s Signal) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// Callback is invoked with the Signal that fired.
type Callback func(Signal)

// Token is an opaque handle returned by Register; it captures the
// disposition that was active before the call so Unregister can be a
// pure undo.
type Token uint64

type dispositionKind int

const (
	dispDefault dispositionKind = iota
	dispIgnore
	dispCustom
)

type disposition struct {
	kind dispositionKind
	cb   Callback
}

type registration struct {
	ch   chan os.Signal
	stop chan struct{}
}

var (
	mu       sync.Mutex
	current  = map[Signal]disposition{}
	active   = map[Signal]*registration{}
	tokens   = map[Token]disposition{}
	tokenSeq uint64
)

func newToken() Token {
	return Token(atomic.AddUint64(&tokenSeq, 1))
}

func stopExisting(s Signal) {
	if r, ok := active[s]; ok {
		signal.Stop(r.ch)
		close(r.stop)
		delete(active, s)
	}
}

// RegisterDefault restores the OS default disposition for s.
func RegisterDefault(s Signal) error {
	mu.Lock()
	defer mu.Unlock()
	stopExisting(s)
	signal.Reset(native[s])
	current[s] = disposition{kind: dispDefault}
	return nil
}

// RegisterIgnore installs an ignore disposition for s.
func RegisterIgnore(s Signal) error {
	mu.Lock()
	defer mu.Unlock()
	stopExisting(s)
	signal.Ignore(native[s])
	current[s] = disposition{kind: dispIgnore}
	return nil
}

// Register installs cb as s's disposition and returns a token capturing
// whatever disposition was active beforehand.
func Register(s Signal, cb Callback) (Token, error) {
	if cb == nil {
		return 0, libkerr.New(libkerr.SignalError, "nil callback for "+s.String(), nil)
	}
	mu.Lock()
	defer mu.Unlock()

	prev, ok := current[s]
	if !ok {
		prev = disposition{kind: dispDefault}
	}
	tok := newToken()
	tokens[tok] = prev

	stopExisting(s)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, native[s])
	stop := make(chan struct{})
	active[s] = &registration{ch: ch, stop: stop}
	current[s] = disposition{kind: dispCustom, cb: cb}

	go dispatch(s, ch, stop, cb)

	return tok, nil
}

// dispatch is the trampoline from the signal-delivery context (already
// made safe by the Go runtime/os-signal channel) onto a normal
// goroutine that can run arbitrary callback code.
func dispatch(s Signal, ch chan os.Signal, stop chan struct{}, cb Callback) {
	for {
		select {
		case <-ch:
			cb(s)
		case <-stop:
			return
		}
	}
}

// Unregister restores the disposition captured in tok.
func Unregister(s Signal, tok Token) error {
	mu.Lock()
	defer mu.Unlock()
	prev, ok := tokens[tok]
	if !ok {
		return libkerr.New(libkerr.SignalError, "unknown token for "+s.String(), nil)
	}
	delete(tokens, tok)
	stopExisting(s)
	switch prev.kind {
	case dispIgnore:
		signal.Ignore(native[s])
		current[s] = disposition{kind: dispIgnore}
	case dispCustom:
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, native[s])
		stop := make(chan struct{})
		active[s] = &registration{ch: ch, stop: stop}
		current[s] = prev
		go dispatch(s, ch, stop, prev.cb)
	default:
		signal.Reset(native[s])
		current[s] = disposition{kind: dispDefault}
	}
	return nil
}

// InvokeHandler synchronously invokes the disposition captured in tok.
// For a custom disposition this calls its callback directly. For a
// default disposition it re-raises the signal against the OS's default
// action by resetting the disposition and sending the signal to this
// process, so a terminal that observed the signal can still let the
// prior action (e.g. process termination) run.
func InvokeHandler(s Signal, tok Token) error {
	mu.Lock()
	prev, ok := tokens[tok]
	mu.Unlock()
	if !ok {
		return libkerr.New(libkerr.SignalError, "unknown token for "+s.String(), nil)
	}
	switch prev.kind {
	case dispCustom:
		prev.cb(s)
		return nil
	case dispIgnore:
		return nil
	default:
		signal.Reset(native[s])
		return syscall.Kill(syscall.Getpid(), native[s])
	}
}
