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

// Package charsrc turns a blocking byte stream into a non-blocking stream
// of Unicode code points. A background goroutine owns the blocking reads
// and decoding; Read and Peek only ever block on a channel select, which
// is what makes the timeout and the zero-timeout poll possible on top of
// a pty slave descriptor that offers no non-blocking read of its own.
package charsrc

import (
	"bufio"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	liblog "github.com/nabbar/termkey/logger"

	libkerr "github.com/nabbar/termkey/errors"
)

// Sentinels returned in place of a code point.
const (
	Expired int32 = -2
	EOF     int32 = -1
)

// Source is the non-blocking character source contract consumed by the
// binding reader. Read and Peek never block longer than timeoutMs;
// a negative timeout blocks indefinitely, zero polls once.
type Source interface {
	Read(timeoutMs int) (int32, error)
	Peek(timeoutMs int) (int32, error)
	Close() error
}

type item struct {
	cp  int32
	err error
}

type stream struct {
	mu     sync.Mutex
	items  chan item
	done   chan struct{}
	closed bool
	peeked *item
	log    liblog.Logger
}

// New wraps r, decoding bytes as enc, and starts the background pump
// goroutine. The returned Source is safe for use by a single reader
// goroutine at a time, matching the binding reader's single-threaded
// drive loop.
func New(r io.Reader, enc Encoding, log liblog.Logger) Source {
	if log == nil {
		log = liblog.Default()
	}
	s := &stream{
		items: make(chan item, 16),
		done:  make(chan struct{}),
		log:   log.With(liblog.Fields{"component": "charsrc", "encoding": enc.String()}),
	}
	if enc == Latin1 {
		// ISO-8859-1 maps every byte onto a Unicode code point, but bufio's
		// rune reader only understands UTF-8, so the bytes are transcoded
		// to UTF-8 up front and decoded through the UTF-8 path below.
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	go s.pump(bufio.NewReader(r), enc)
	return s
}

func (s *stream) pump(br *bufio.Reader, enc Encoding) {
	defer close(s.items)
	for {
		cp, err := decodeOne(br, enc)
		select {
		case s.items <- item{cp: cp, err: err}:
		case <-s.done:
			return
		}
		if err != nil {
			return
		}
		if cp == EOF {
			return
		}
	}
}

// decodeOne reads exactly one code point worth of bytes from br. EOF is
// reported as (EOF, nil); genuine I/O failure as (0, IoError).
func decodeOne(br *bufio.Reader, enc Encoding) (int32, error) {
	switch enc {
	case UTF16LE, UTF16BE:
		return decodeUTF16(br, enc)
	case ASCII:
		b, err := br.ReadByte()
		if err == io.EOF {
			return EOF, nil
		}
		if err != nil {
			return 0, libkerr.New(libkerr.IoError, "ascii read", err)
		}
		return int32(b), nil
	case UTF8, Latin1:
		fallthrough
	default:
		r, _, err := br.ReadRune()
		if err == io.EOF {
			return EOF, nil
		}
		if err != nil {
			return 0, libkerr.New(libkerr.IoError, "utf-8 read", err)
		}
		if r == utf8.RuneError {
			return 0, libkerr.New(libkerr.IoError, "invalid utf-8 sequence", nil)
		}
		return int32(r), nil
	}
}

// decodeUTF16 reads one UTF-16 code unit, and if it is a high surrogate,
// blocks on the byte stream for the matching low surrogate and combines
// them with the standard surrogate formula. This is the one place the
// spec requires multi-unit combination to be invisible to callers above
// this layer.
func decodeUTF16(br *bufio.Reader, enc Encoding) (int32, error) {
	u1, err := readUnit16(br, enc)
	if err == io.EOF {
		return EOF, nil
	}
	if err != nil {
		return 0, libkerr.New(libkerr.IoError, "utf-16 read", err)
	}
	if u1 < 0xD800 || u1 > 0xDBFF {
		return int32(u1), nil
	}
	u2, err := readUnit16(br, enc)
	if err != nil {
		return 0, libkerr.New(libkerr.IoError, "utf-16 surrogate read", err)
	}
	if u2 < 0xDC00 || u2 > 0xDFFF {
		return 0, libkerr.New(libkerr.IoError, "unpaired utf-16 surrogate", nil)
	}
	cp := (int32(u1)-0xD800)<<10 + (int32(u2) - 0xDC00) + 0x10000
	return cp, nil
}

func readUnit16(br *bufio.Reader, enc Encoding) (uint16, error) {
	b0, err := br.ReadByte()
	if err != nil {
		return 0, err
	}
	b1, err := br.ReadByte()
	if err != nil {
		return 0, err
	}
	if enc == UTF16LE {
		return uint16(b0) | uint16(b1)<<8, nil
	}
	return uint16(b1) | uint16(b0)<<8, nil
}

// Read returns the next code point, Expired if none arrived within
// timeoutMs, or EOF at stream end.
func (s *stream) Read(timeoutMs int) (int32, error) {
	if it := s.takePeeked(); it != nil {
		return it.cp, it.err
	}
	return s.next(timeoutMs)
}

// Peek behaves like Read but leaves the item available for the next
// Read or Peek call.
func (s *stream) Peek(timeoutMs int) (int32, error) {
	if it := s.peekPeeked(); it != nil {
		return it.cp, it.err
	}
	cp, err := s.next(timeoutMs)
	if cp == Expired && err == nil {
		// nothing arrived: there is no item to hold for the next call
		return cp, err
	}
	s.mu.Lock()
	s.peeked = &item{cp: cp, err: err}
	s.mu.Unlock()
	return cp, err
}

func (s *stream) takePeeked() *item {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.peeked
	s.peeked = nil
	return it
}

func (s *stream) peekPeeked() *item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peeked
}

func (s *stream) next(timeoutMs int) (int32, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, libkerr.New(libkerr.ClosedError, "character source closed", nil)
	}

	if timeoutMs < 0 {
		select {
		case it, ok := <-s.items:
			if !ok {
				return EOF, nil
			}
			return it.cp, it.err
		case <-s.done:
			return 0, libkerr.New(libkerr.ClosedError, "character source closed", nil)
		}
	}

	if timeoutMs == 0 {
		select {
		case it, ok := <-s.items:
			if !ok {
				return EOF, nil
			}
			return it.cp, it.err
		case <-s.done:
			return 0, libkerr.New(libkerr.ClosedError, "character source closed", nil)
		default:
			return Expired, nil
		}
	}

	timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	defer timer.Stop()
	select {
	case it, ok := <-s.items:
		if !ok {
			return EOF, nil
		}
		return it.cp, it.err
	case <-s.done:
		return 0, libkerr.New(libkerr.ClosedError, "character source closed", nil)
	case <-timer.C:
		return Expired, nil
	}
}

// Close marks the stream closed; any Read/Peek in flight or afterward
// fails with a ClosedError.
func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	s.log.Debug("character source closed", nil)
	return nil
}
