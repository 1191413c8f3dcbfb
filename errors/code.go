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

// Package errors provides the small set of error kinds the terminal core
// reports: construction failures, I/O failures, and the signal bridge's
// inability to install or restore a disposition.
package errors

// CodeError classifies an Error the way an HTTP status classifies a
// response: callers switch on the code rather than on message text.
type CodeError uint8

const (
	// UnknownError is the zero value; never returned by this package.
	UnknownError CodeError = iota

	// IoError marks a failure reading or writing the underlying pty streams.
	IoError

	// ClosedError marks an operation attempted on an already-closed stream.
	ClosedError

	// EndOfInput marks a clean end of the input stream.
	EndOfInput

	// ConfigError marks an unknown encoding or unknown terminal type at
	// terminal construction time.
	ConfigError

	// SignalError marks a failure installing or restoring a native signal
	// disposition.
	SignalError
)

var codeNames = map[CodeError]string{
	UnknownError: "unknown error",
	IoError:      "i/o error",
	ClosedError:  "stream closed",
	EndOfInput:   "end of input",
	ConfigError:  "configuration error",
	SignalError:  "signal error",
}

// String returns the human-readable name of the code.
func (c CodeError) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return codeNames[UnknownError]
}
