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
	"fmt"
	"runtime"
)

// Error is the interface every error raised by the terminal core satisfies.
type Error interface {
	error

	// Code returns the classification of this error.
	Code() CodeError

	// IsCode reports whether this error (not a parent) carries code.
	IsCode(code CodeError) bool

	// Unwrap exposes the wrapped cause, if any, to errors.Is / errors.As.
	Unwrap() error

	// File and Line report where the error was constructed.
	File() string
	Line() int
}

type errImpl struct {
	code   CodeError
	msg    string
	parent error
	file   string
	line   int
}

// New builds an Error of the given code, wrapping parent if non-nil.
func New(code CodeError, msg string, parent error) Error {
	_, file, line, _ := runtime.Caller(1)
	return &errImpl{code: code, msg: msg, parent: parent, file: file, line: line}
}

func (e *errImpl) Error() string {
	if e.msg == "" {
		if e.parent != nil {
			return fmt.Sprintf("%s: %s", e.code, e.parent.Error())
		}
		return e.code.String()
	}
	if e.parent != nil {
		return fmt.Sprintf("%s: %s: %s", e.code, e.msg, e.parent.Error())
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *errImpl) Code() CodeError { return e.code }

func (e *errImpl) IsCode(code CodeError) bool { return e.code == code }

func (e *errImpl) Unwrap() error { return e.parent }

func (e *errImpl) File() string { return e.file }

func (e *errImpl) Line() int { return e.line }

// IsCode walks err's Unwrap chain looking for an Error carrying code.
func IsCode(err error, code CodeError) bool {
	for err != nil {
		if e, ok := err.(Error); ok && e.IsCode(code) {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
