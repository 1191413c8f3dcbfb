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
	"os"
	"unsafe"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	libkerr "github.com/nabbar/termkey/errors"
)

// defaultPty is the POSIX Pty backed by a real /dev/ptmx pair opened via
// creack/pty. It hands the master end to the caller (this process reads
// and writes through it) and keeps the slave's fd around only for the
// termios/winsize ioctls, mirroring the master/slave split of a typical
// pty helper.
type defaultPty struct {
	master *os.File
	slave  *os.File
}

// OpenPty acquires a new pty pair and returns it wrapped as a Pty. This
// is the one concrete, POSIX-only collaborator the terminal package
// ships; anything else (an SSH pty-req, a Windows conpty) implements the
// same Pty interface independently.
func OpenPty() (Pty, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, libkerr.New(libkerr.IoError, "open pty", err)
	}
	return &defaultPty{master: master, slave: slave}, nil
}

func (p *defaultPty) SlaveInput() io.Reader  { return p.master }
func (p *defaultPty) SlaveOutput() io.Writer { return p.master }

func (p *defaultPty) GetAttr() (Attr, error) {
	st, err := term.GetState(int(p.slave.Fd()))
	if err != nil {
		return Attr{}, libkerr.New(libkerr.IoError, "get termios", err)
	}
	return Attr{state: st}, nil
}

func (p *defaultPty) SetAttr(a Attr) error {
	if a.state == nil {
		return libkerr.New(libkerr.ConfigError, "nil termios state", nil)
	}
	if err := term.Restore(int(p.slave.Fd()), a.state); err != nil {
		return libkerr.New(libkerr.IoError, "set termios", err)
	}
	return nil
}

// MakeRaw transitions the slave into raw mode and returns the prior
// state so it can be handed back to SetAttr to restore cooked mode.
func (p *defaultPty) MakeRaw() (Attr, error) {
	st, err := term.MakeRaw(int(p.slave.Fd()))
	if err != nil {
		return Attr{}, libkerr.New(libkerr.IoError, "set raw mode", err)
	}
	return Attr{state: st}, nil
}

func (p *defaultPty) GetWinSize() (WinSize, error) {
	var ws unix.Winsize
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, p.slave.Fd(), uintptr(unix.TIOCGWINSZ), uintptr(unsafe.Pointer(&ws)))
	if errno != 0 {
		return WinSize{}, libkerr.New(libkerr.IoError, "get window size", errno)
	}
	return WinSize{Rows: ws.Row, Cols: ws.Col}, nil
}

func (p *defaultPty) SetWinSize(w WinSize) error {
	ws := unix.Winsize{Row: w.Rows, Col: w.Cols}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, p.slave.Fd(), uintptr(unix.TIOCSWINSZ), uintptr(unsafe.Pointer(&ws)))
	if errno != 0 {
		return libkerr.New(libkerr.IoError, "set window size", errno)
	}
	return nil
}

func (p *defaultPty) Close() error {
	agg := libkerr.NewAggregate()
	if err := p.master.Close(); err != nil {
		agg.Add(err)
	}
	if err := p.slave.Close(); err != nil {
		agg.Add(err)
	}
	return agg.ErrorOrNil()
}
