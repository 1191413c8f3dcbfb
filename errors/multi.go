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

package errors

import (
	"github.com/hashicorp/go-multierror"
)

// Aggregate collects the best-effort cleanup failures accumulated while
// closing a terminal. A nil *Aggregate reports no error.
type Aggregate struct {
	merr *multierror.Error
}

// NewAggregate returns an empty error aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{}
}

// Add appends err to the aggregate if non-nil.
func (a *Aggregate) Add(err error) {
	if err == nil {
		return
	}
	a.merr = multierror.Append(a.merr, err)
}

// ErrorOrNil returns nil if no error was added, otherwise the aggregate
// formatted as a single error.
func (a *Aggregate) ErrorOrNil() error {
	if a == nil || a.merr == nil {
		return nil
	}
	return a.merr.ErrorOrNil()
}
