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

package signalbridge_test

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/nabbar/termkey/signalbridge"
)

// WINCH has no default action that disturbs a test process, which is why
// it is the signal exercised here rather than INT or QUIT.

func TestRegisterInvokesCallbackOnSignal(t *testing.T) {
	fired := make(chan signalbridge.Signal, 1)
	tok, err := signalbridge.Register(signalbridge.WINCH, func(s signalbridge.Signal) {
		fired <- s
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer signalbridge.Unregister(signalbridge.WINCH, tok)

	if err := syscall.Kill(os.Getpid(), syscall.SIGWINCH); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case s := <-fired:
		if s != signalbridge.WINCH {
			t.Fatalf("got %v", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestUnregisterRestoresPriorDisposition(t *testing.T) {
	first := make(chan struct{}, 1)
	tok1, err := signalbridge.Register(signalbridge.WINCH, func(signalbridge.Signal) {
		select {
		case first <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	second := make(chan struct{}, 1)
	tok2, err := signalbridge.Register(signalbridge.WINCH, func(signalbridge.Signal) {
		select {
		case second <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := signalbridge.Unregister(signalbridge.WINCH, tok2); err != nil {
		t.Fatalf("Unregister: %v", err)
	}

	_ = syscall.Kill(os.Getpid(), syscall.SIGWINCH)

	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("expected the first disposition to be restored and fire")
	}

	_ = signalbridge.Unregister(signalbridge.WINCH, tok1)
}

func TestRegisterNilCallbackFails(t *testing.T) {
	if _, err := signalbridge.Register(signalbridge.WINCH, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestUnregisterUnknownTokenFails(t *testing.T) {
	if err := signalbridge.Unregister(signalbridge.WINCH, signalbridge.Token(999999)); err == nil {
		t.Fatal("expected error for unknown token")
	}
}

func TestSignalStringsAreStable(t *testing.T) {
	want := map[signalbridge.Signal]string{
		signalbridge.INT:   "INT",
		signalbridge.QUIT:  "QUIT",
		signalbridge.TSTP:  "TSTP",
		signalbridge.CONT:  "CONT",
		signalbridge.WINCH: "WINCH",
	}
	for sig, name := range want {
		if sig.String() != name {
			t.Fatalf("got %q, want %q", sig.String(), name)
		}
	}
}
