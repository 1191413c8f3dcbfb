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

package keymap_test

import (
	"testing"
	"time"

	"github.com/nabbar/termkey/keymap"
)

func TestGetBoundExactMatch(t *testing.T) {
	m := keymap.New[string](0)
	m.Bind([]rune("ab"), "AB")

	val, remaining, found := m.GetBound([]rune("ab"))
	if !found || remaining != 0 || val != "AB" {
		t.Fatalf("got val=%q remaining=%d found=%v", val, remaining, found)
	}
}

func TestGetBoundAmbiguous(t *testing.T) {
	m := keymap.New[string](50 * time.Millisecond)
	m.Bind([]rune("a"), "A")
	m.Bind([]rune("ab"), "AB")

	val, remaining, found := m.GetBound([]rune("a"))
	if !found || remaining != -1 || val != "A" {
		t.Fatalf("expected ambiguous match with own value, got val=%q remaining=%d found=%v", val, remaining, found)
	}
}

func TestGetBoundAmbiguousNoOwnValue(t *testing.T) {
	m := keymap.New[string](50 * time.Millisecond)
	m.Bind([]rune("ab"), "AB")

	_, remaining, found := m.GetBound([]rune("a"))
	if found || remaining != -1 {
		t.Fatalf("expected ambiguous prefix with no own value, got remaining=%d found=%v", remaining, found)
	}
}

func TestGetBoundTrailingUnconsumed(t *testing.T) {
	m := keymap.New[string](0)
	m.Bind([]rune("a"), "A")

	val, remaining, found := m.GetBound([]rune("ac"))
	if !found || remaining != 1 || val != "A" {
		t.Fatalf("got val=%q remaining=%d found=%v", val, remaining, found)
	}
}

func TestGetBoundNoMatch(t *testing.T) {
	m := keymap.New[string](0)
	m.Bind([]rune("a"), "A")

	_, remaining, found := m.GetBound([]rune("z"))
	if found || remaining != 1 {
		t.Fatalf("expected no match, got remaining=%d found=%v", remaining, found)
	}
}

func TestUnbindRemovesExactEntryOnly(t *testing.T) {
	m := keymap.New[string](0)
	m.Bind([]rune("a"), "A")
	m.Bind([]rune("ab"), "AB")
	m.Unbind([]rune("a"))

	_, _, found := m.GetBound([]rune("a"))
	if found {
		t.Fatal("expected unbound sequence to no longer match")
	}
	val, remaining, found := m.GetBound([]rune("ab"))
	if !found || remaining != 0 || val != "AB" {
		t.Fatalf("expected intermediate node to survive unbind, got val=%q remaining=%d found=%v", val, remaining, found)
	}
}

func TestUnicodeAndNomatchCatchAlls(t *testing.T) {
	m := keymap.New[string](0)
	if _, ok := m.GetUnicode(); ok {
		t.Fatal("expected no unicode catch-all by default")
	}
	m.SetUnicode("UNI")
	m.SetNomatch("NM")

	v, ok := m.GetUnicode()
	if !ok || v != "UNI" {
		t.Fatalf("got %q, %v", v, ok)
	}
	v, ok = m.GetNomatch()
	if !ok || v != "NM" {
		t.Fatalf("got %q, %v", v, ok)
	}
}

func TestBindRejectsOutOfRangeCodePoints(t *testing.T) {
	m := keymap.New[string](0)
	m.Bind([]rune{200}, "X")

	_, _, found := m.GetBound([]rune{200})
	if found {
		t.Fatal("expected code points >= Length to never be bindable")
	}
}

func TestAmbiguousTimeoutRoundTrip(t *testing.T) {
	m := keymap.New[string](75 * time.Millisecond)
	if got := m.AmbiguousTimeout(); got != 75*time.Millisecond {
		t.Fatalf("got %v", got)
	}
}
