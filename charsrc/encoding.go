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

package charsrc

import (
	"strings"

	libkerr "github.com/nabbar/termkey/errors"
)

// Encoding names a text encoding a character source decodes bytes with.
// Only the encodings a POSIX pty slave realistically carries are supported;
// anything else is a ConfigError at terminal construction time.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF16LE
	UTF16BE
	ASCII
	Latin1
)

// String returns the canonical name used in configuration and logging.
func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case UTF16LE:
		return "utf-16le"
	case UTF16BE:
		return "utf-16be"
	case ASCII:
		return "ascii"
	case Latin1:
		return "latin1"
	default:
		return "unknown"
	}
}

// ParseEncoding resolves a caller-specified encoding name. Unknown names
// report a ConfigError, matching the terminal's construction-time
// failure mode for unknown encodings.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8", "":
		return UTF8, nil
	case "utf-16le", "utf16le":
		return UTF16LE, nil
	case "utf-16be", "utf16be":
		return UTF16BE, nil
	case "ascii", "us-ascii":
		return ASCII, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return Latin1, nil
	default:
		return UTF8, libkerr.New(libkerr.ConfigError, "unknown encoding "+name, nil)
	}
}
