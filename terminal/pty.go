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

package terminal

import (
	"io"

	"golang.org/x/term"
)

// WinSize is the pty's row/column geometry.
type WinSize struct {
	Rows uint16
	Cols uint16
}

// Attr is an opaque snapshot of a pty slave's termios attributes,
// obtained from GetAttr and handed back to SetAttr to transition
// between raw and cooked mode.
type Attr struct {
	state *term.State
}

// Pty is the collaborator contract this package consumes. Acquiring a
// concrete pty (opening /dev/ptmx, the associated ioctls) is explicitly
// out of scope for the terminal core; OpenPty (pty_default.go) returns
// one concrete, POSIX-only implementation, but callers are free to supply their own
// (e.g. one backed by an SSH channel's pty-req, as in a proxy).
type Pty interface {
	// SlaveInput and SlaveOutput are the byte streams attached to
	// whatever is on the other end of the pty (the controlling process).
	SlaveInput() io.Reader
	SlaveOutput() io.Writer

	// GetAttr and SetAttr mediate raw/cooked mode transitions.
	GetAttr() (Attr, error)
	SetAttr(Attr) error

	// MakeRaw switches to raw mode and returns the attributes that were
	// active beforehand, suitable for a later SetAttr to undo it.
	MakeRaw() (Attr, error)

	// GetWinSize and SetWinSize report and resize the pty geometry.
	GetWinSize() (WinSize, error)
	SetWinSize(WinSize) error

	// Close releases the pty. The terminal that owns a Pty calls this
	// exactly once, from its own Close.
	Close() error
}
