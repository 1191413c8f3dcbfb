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
	"github.com/xo/terminfo"

	libkerr "github.com/nabbar/termkey/errors"
)

// Capabilities is the parsed terminfo entry for a declared terminal
// type: the escape sequences and numeric properties higher layers (line
// editing, rendering) need to address the terminal correctly.
type Capabilities struct {
	ti *terminfo.Terminfo
}

// loadCapabilities parses the terminfo database entry for termType.
// Unknown terminal types are a ConfigError, matching the terminal's
// construction-time failure mode.
func loadCapabilities(termType string) (*Capabilities, error) {
	ti, err := terminfo.Load(termType)
	if err != nil {
		return nil, libkerr.New(libkerr.ConfigError, "unknown terminal type "+termType, err)
	}
	return &Capabilities{ti: ti}, nil
}

// String returns the string capability named by cap (e.g. "cup", "el"),
// and whether it was present in the entry.
func (c *Capabilities) String(cap terminfo.StringCapName) (string, bool) {
	if c == nil || c.ti == nil {
		return "", false
	}
	s := c.ti.Strings[cap]
	return s, s != ""
}

// Number returns the numeric capability named by cap (e.g. columns,
// lines), and whether it was present.
func (c *Capabilities) Number(cap terminfo.NumCapName) (int, bool) {
	if c == nil || c.ti == nil {
		return 0, false
	}
	n := c.ti.Nums[cap]
	return n, n != 0
}

// Bool returns the boolean capability named by cap, defaulting to false
// when absent.
func (c *Capabilities) Bool(cap terminfo.BoolCapName) bool {
	if c == nil || c.ti == nil {
		return false
	}
	return c.ti.Bools[cap]
}

// Columns and Lines are the two numeric capabilities almost every caller
// above this layer needs.
func (c *Capabilities) Columns() int {
	n, _ := c.Number(terminfo.Columns)
	if n == 0 {
		return 80
	}
	return n
}

func (c *Capabilities) Lines() int {
	n, _ := c.Number(terminfo.Lines)
	if n == 0 {
		return 24
	}
	return n
}
