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

// Package binding drives a charsrc.Source against one or two keymap.KeyMaps
// and resolves raw code points into bound values, handling prefix
// ambiguity, Unicode/no-match fall-through, and macro push-back.
package binding

import (
	"sync"
	"time"

	"github.com/nabbar/termkey/charsrc"
	liblog "github.com/nabbar/termkey/logger"

	"github.com/nabbar/termkey/keymap"

	libkerr "github.com/nabbar/termkey/errors"
)

// Outcome distinguishes the two ways ReadBinding can come back empty:
// EndOfInput means the source is exhausted and will never yield more;
// WouldBlock means non-blocking mode found nothing available yet.
type Outcome int

const (
	Bound Outcome = iota
	EndOfInput
	WouldBlock
)

const pollSlice = 100 * time.Millisecond

// Reader is the binding reader state machine. It is not safe for
// concurrent use: a single caller goroutine is expected to drive the
// whole read loop.
type Reader[T any] struct {
	mu          sync.Mutex
	src         charsrc.Source
	buf         []rune
	pushback    []rune
	lastBinding []rune
	log         liblog.Logger
}

// New returns a binding reader drawing code points from src.
func New[T any](src charsrc.Source, log liblog.Logger) *Reader[T] {
	if log == nil {
		log = liblog.Default()
	}
	return &Reader[T]{src: src, log: log.With(liblog.Fields{"component": "binding"})}
}

// ReadBinding is ReadBindingOpts(primary, nil, true).
func (r *Reader[T]) ReadBinding(primary *keymap.KeyMap[T]) (T, Outcome, error) {
	return r.ReadBindingOpts(primary, nil, true)
}

// ReadBindingLocal is ReadBindingOpts(primary, local, true).
func (r *Reader[T]) ReadBindingLocal(primary, local *keymap.KeyMap[T]) (T, Outcome, error) {
	return r.ReadBindingOpts(primary, local, true)
}

// ReadBindingOpts drives the lookup/ambiguity/fallback state machine
// against src until a value resolves. It returns the bound value and
// Bound, or a zero value with EndOfInput/WouldBlock.
func (r *Reader[T]) ReadBindingOpts(primary, local *keymap.KeyMap[T], block bool) (T, Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T

	for {
		val, remaining, found, ambiguous := r.lookup(primary, local)

		switch {
		case found && remaining > 0:
			cut := len(r.buf) - remaining
			tail := append([]rune(nil), r.buf[cut:]...)
			r.buf = r.buf[:cut]
			r.pushBack(tail)
			return r.emit(val)

		case remaining == 0 && found:
			return r.emit(val)

		case remaining == -1:
			if !found {
				// The buffer is a proper prefix of a longer binding and has
				// no binding of its own: only more input can resolve it.
				goto needInput
			}
			timeout := ambiguous.AmbiguousTimeout()
			if timeout > 0 {
				cp, err := r.peekCharacterLocked(int(timeout / time.Millisecond))
				if err != nil && !libkerr.IsCode(err, libkerr.ClosedError) {
					return zero, Bound, err
				}
				if cp >= 0 {
					// real input arrived: let the next iteration read it
					// through the normal "need more input" path below.
					goto needInput
				}
				// cp == charsrc.Expired or charsrc.EOF: the wait is over.
			}
			return r.emit(val)

		default:
			if len(r.buf) > 0 {
				if v, ok := r.fallback(primary); ok {
					return v, Bound, nil
				}
				continue
			}
		}

	needInput:
		if !block {
			cp, err := r.readCharacterAttemptLocked()
			if err != nil {
				return zero, Bound, err
			}
			if cp == charsrc.Expired {
				return zero, WouldBlock, nil
			}
			if cp == charsrc.EOF {
				return zero, EndOfInput, nil
			}
			r.buf = append(r.buf, rune(cp))
			continue
		}

		cp, err := r.readCharacterLocked()
		if err != nil {
			return zero, Bound, err
		}
		if cp == charsrc.EOF {
			return zero, EndOfInput, nil
		}
		r.buf = append(r.buf, rune(cp))
	}
}

// lookup implements step 1 of the state machine: a local map asserting
// ambiguity suppresses the primary lookup. The returned map is whichever
// of primary/local actually produced (val, remaining, found), so a
// remaining == -1 caller waits out that map's own ambiguity timeout
// rather than always the primary's.
func (r *Reader[T]) lookup(primary, local *keymap.KeyMap[T]) (val T, remaining int, found bool, matched *keymap.KeyMap[T]) {
	if local != nil {
		val, remaining, found = local.GetBound(r.buf)
		if found || remaining == -1 {
			return val, remaining, found, local
		}
	}
	val, remaining, found = primary.GetBound(r.buf)
	return val, remaining, found, primary
}

// fallback resolves the leading code point of the buffer against the
// Unicode/no-match catch-alls (step 5). It always consumes exactly the
// leading code point, setting lastBinding to it, and pushes whatever
// remains in buf back onto the tail of the push-back queue so buf is
// always empty once fallback returns: a no-match emission must leave
// getCurrentBuffer() empty the same as any other emission does. ok is
// false when the catch-all is unset, meaning the caller should just
// drop the code point and loop.
func (r *Reader[T]) fallback(primary *keymap.KeyMap[T]) (val T, ok bool) {
	cp := r.buf[0]
	r.lastBinding = []rune{cp}
	rest := r.buf[1:]
	r.buf = r.buf[:0]
	if len(rest) > 0 {
		r.pushBack(rest)
	}
	if int(cp) >= keymap.Length {
		val, ok = primary.GetUnicode()
	} else {
		val, ok = primary.GetNomatch()
	}
	return val, ok
}

func (r *Reader[T]) emit(val T) (T, Outcome, error) {
	r.lastBinding = append([]rune(nil), r.buf...)
	r.buf = r.buf[:0]
	return val, Bound, nil
}

// pushBack appends runes to the tail of the push-back queue, the same
// place RunMacro appends: both a re-inserted unmatched tail and a
// caller-driven macro replay after whatever is already queued.
func (r *Reader[T]) pushBack(runes []rune) {
	r.pushback = append(r.pushback, runes...)
}

// RunMacro appends s's code points to the tail of the push-back queue.
func (r *Reader[T]) RunMacro(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushBack([]rune(s))
}

// ReadCharacter returns the next code point, draining the push-back
// queue first. A single EOF or real error from the character source
// stops the 100ms poll loop used to ride out Expired.
func (r *Reader[T]) ReadCharacter() (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readCharacterLocked()
}

func (r *Reader[T]) readCharacterLocked() (int32, error) {
	if len(r.pushback) > 0 {
		cp := r.pushback[0]
		r.pushback = r.pushback[1:]
		return int32(cp), nil
	}
	for {
		cp, err := r.src.Read(int(pollSlice / time.Millisecond))
		if err != nil {
			if libkerr.IsCode(err, libkerr.ClosedError) {
				return charsrc.EOF, nil
			}
			return 0, err
		}
		if cp == charsrc.Expired {
			continue
		}
		return cp, nil
	}
}

// readCharacterAttemptLocked makes exactly one non-blocking attempt: the
// push-back queue if non-empty, otherwise a single zero-timeout poll of
// the character source. Unlike readCharacterLocked it never rides out
// Expired with further polling, which is what lets non-blocking mode
// return WouldBlock instead of stalling on its first read.
func (r *Reader[T]) readCharacterAttemptLocked() (int32, error) {
	if len(r.pushback) > 0 {
		cp := r.pushback[0]
		r.pushback = r.pushback[1:]
		return int32(cp), nil
	}
	cp, err := r.src.Read(0)
	if err != nil {
		if libkerr.IsCode(err, libkerr.ClosedError) {
			return charsrc.EOF, nil
		}
		return 0, err
	}
	return cp, nil
}

// PeekCharacter returns the next code point without consuming it.
func (r *Reader[T]) PeekCharacter(timeoutMs int) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peekCharacterLocked(timeoutMs)
}

func (r *Reader[T]) peekCharacterLocked(timeoutMs int) (int32, error) {
	if len(r.pushback) > 0 {
		return int32(r.pushback[0]), nil
	}
	cp, err := r.src.Peek(timeoutMs)
	if err != nil && libkerr.IsCode(err, libkerr.ClosedError) {
		return charsrc.EOF, nil
	}
	return cp, err
}

// GetCurrentBuffer returns the content of the operation buffer.
func (r *Reader[T]) GetCurrentBuffer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.buf)
}

// GetLastBinding returns the literal key sequence of the most recent
// emission.
func (r *Reader[T]) GetLastBinding() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.lastBinding)
}
