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

// Package keymap implements the trie-shaped key map the binding reader
// resolves raw code-point sequences against: longest-prefix matching,
// an ambiguity timeout, and Unicode/no-match catch-alls. T is opaque to
// the map; it never inspects what a binding means.
package keymap

import (
	"sync"
	"time"
)

// Length bounds the code points a sequence node can hold directly.
// Code points at or above Length only ever reach the map through the
// Unicode catch-all.
const Length = 128

type node[T any] struct {
	children [Length]*node[T]
	value    T
	hasValue bool
}

func (n *node[T]) hasChildren() bool {
	for _, c := range n.children {
		if c != nil {
			return true
		}
	}
	return false
}

// KeyMap is a trie from bounded code-point sequences to bound values,
// plus the two catch-all buckets and the ambiguity timeout.
type KeyMap[T any] struct {
	mu      sync.RWMutex
	root    *node[T]
	timeout time.Duration
	unicode *T
	nomatch *T
}

// New returns an empty key map whose ambiguity window is timeout.
// A zero or negative timeout disambiguates immediately (spec testable
// property 5).
func New[T any](timeout time.Duration) *KeyMap[T] {
	return &KeyMap[T]{root: &node[T]{}, timeout: timeout}
}

// Bind associates seq with val, creating intermediate nodes as needed.
// Code points at or above Length are rejected silently, matching the
// trie's domain (they can never be looked up by GetBound anyway).
func (k *KeyMap[T]) Bind(seq []rune, val T) {
	if len(seq) == 0 {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	n := k.root
	for _, cp := range seq {
		if cp < 0 || int(cp) >= Length {
			return
		}
		child := n.children[cp]
		if child == nil {
			child = &node[T]{}
			n.children[cp] = child
		}
		n = child
	}
	n.value = val
	n.hasValue = true
}

// Unbind removes the exact binding at seq, if any. Intermediate nodes
// that still lead to other bindings are kept.
func (k *KeyMap[T]) Unbind(seq []rune) {
	if len(seq) == 0 {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	n := k.root
	for _, cp := range seq {
		if cp < 0 || int(cp) >= Length || n.children[cp] == nil {
			return
		}
		n = n.children[cp]
	}
	var zero T
	n.value = zero
	n.hasValue = false
}

// SetUnicode installs the fallback returned for code points ≥ Length.
func (k *KeyMap[T]) SetUnicode(val T) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v := val
	k.unicode = &v
}

// SetNomatch installs the fallback returned for unmatched code points < Length.
func (k *KeyMap[T]) SetNomatch(val T) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v := val
	k.nomatch = &v
}

// AmbiguousTimeout returns the configured ambiguity window.
func (k *KeyMap[T]) AmbiguousTimeout() time.Duration {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.timeout
}

// GetUnicode returns the Unicode catch-all, if one is installed.
func (k *KeyMap[T]) GetUnicode() (T, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.unicode == nil {
		var zero T
		return zero, false
	}
	return *k.unicode, true
}

// GetNomatch returns the no-match catch-all, if one is installed.
func (k *KeyMap[T]) GetNomatch() (T, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.nomatch == nil {
		var zero T
		return zero, false
	}
	return *k.nomatch, true
}

// GetBound performs the longest-prefix lookup:
//
//   - remaining > 0: buf[:len(buf)-remaining] is bound to the returned
//     value; the trailing remaining code points were not consumed.
//   - remaining == 0: the whole buffer is bound, unambiguously.
//   - remaining == -1: the whole buffer is a valid path in the trie that
//     could still extend further (it is a proper prefix of a longer
//     binding). If the buffer itself is also bound, that value is
//     returned alongside found=true; otherwise found is false and only
//     more input can resolve the buffer.
func (k *KeyMap[T]) GetBound(buf []rune) (val T, remaining int, found bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	n := k.root
	matchedLen := 0
	haveMatch := false
	var matchedVal T

	i := 0
	for ; i < len(buf); i++ {
		cp := buf[i]
		if cp < 0 || int(cp) >= Length {
			break
		}
		child := n.children[cp]
		if child == nil {
			break
		}
		n = child
		if n.hasValue {
			matchedLen = i + 1
			matchedVal = n.value
			haveMatch = true
		}
	}

	if i == len(buf) && n.hasChildren() {
		if n.hasValue {
			return n.value, -1, true
		}
		var zero T
		return zero, -1, false
	}

	if haveMatch {
		return matchedVal, len(buf) - matchedLen, true
	}

	var zero T
	return zero, len(buf), false
}
