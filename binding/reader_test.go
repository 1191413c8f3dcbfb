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

package binding_test

import (
	"bytes"
	"io"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/termkey/binding"
	"github.com/nabbar/termkey/charsrc"
	"github.com/nabbar/termkey/keymap"
)

func newReader(input string, ambiguous time.Duration) (*binding.Reader[string], *keymap.KeyMap[string]) {
	src := charsrc.New(bytes.NewBufferString(input), charsrc.UTF8, nil)
	m := keymap.New[string](ambiguous)
	return binding.New[string](src, nil), m
}

var _ = Describe("Reader.ReadBindingOpts", func() {

	It("resolves a multi-byte escape sequence (S1)", func() {
		r, m := newReader("\x1b[A", 0)
		m.Bind([]rune("\x1b[A"), "UP")

		val, outcome, err := r.ReadBinding(m)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("UP"))
		Expect(r.GetLastBinding()).To(Equal("\x1b[A"))
		Expect(r.GetCurrentBuffer()).To(BeEmpty())
	})

	It("routes unmatched code points through the no-match catch-all, per code point (S3)", func() {
		r, m := newReader("ac", 0)
		m.Bind([]rune("ab"), "AB")
		m.SetNomatch("NM")

		val, outcome, _ := r.ReadBinding(m)
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("NM"))
		Expect(r.GetLastBinding()).To(Equal("a"))

		val, outcome, _ = r.ReadBinding(m)
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("NM"))
		Expect(r.GetLastBinding()).To(Equal("c"))
	})

	It("routes code points at or above KEYMAP_LENGTH through the unicode catch-all", func() {
		r, m := newReader("é", 0)
		m.SetUnicode("UNI")

		val, outcome, _ := r.ReadBinding(m)
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("UNI"))
	})

	It("disambiguates immediately with a zero timeout", func() {
		r, m := newReader("a", 0)
		m.Bind([]rune("a"), "A")
		m.Bind([]rune("ab"), "AB")

		val, outcome, _ := r.ReadBinding(m)
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("A"))
	})

	It("waits out the ambiguity timeout before emitting the shorter match", func() {
		// An io.Pipe that is written to once and never closed blocks
		// indefinitely on the second read, so the reader's ambiguity
		// wait genuinely exercises the timeout path rather than racing
		// an immediate EOF the way a bytes.Buffer would.
		pipeR, pipeW := io.Pipe()
		go func() { _, _ = pipeW.Write([]byte("a")) }()
		src := charsrc.New(pipeR, charsrc.UTF8, nil)
		m := keymap.New[string](30 * time.Millisecond)
		m.Bind([]rune("a"), "A")
		m.Bind([]rune("ab"), "AB")
		r := binding.New[string](src, nil)

		start := time.Now()
		val, outcome, _ := r.ReadBinding(m)
		Expect(time.Since(start)).To(BeNumerically(">=", 25*time.Millisecond))
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("A"))
	})

	It("prefers local map matches over the primary map", func() {
		r, primary := newReader("x", 0)
		local := keymap.New[string](0)
		primary.Bind([]rune("x"), "P")
		local.Bind([]rune("x"), "L")

		val, outcome, _ := r.ReadBindingLocal(primary, local)
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("L"))
	})

	It("suppresses the primary map while the local map is ambiguous", func() {
		r, primary := newReader("xy", 10*time.Millisecond)
		local := keymap.New[string](10 * time.Millisecond)
		primary.Bind([]rune("x"), "P")
		local.Bind([]rune("xy"), "LXY")

		val, outcome, _ := r.ReadBindingLocal(primary, local)
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("LXY"))
	})

	It("reports EndOfInput on a closed stream and keeps reporting it", func() {
		r, m := newReader("", 0)
		m.Bind([]rune("a"), "A")

		_, outcome, err := r.ReadBinding(m)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(binding.EndOfInput))

		_, outcome, err = r.ReadBinding(m)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(binding.EndOfInput))
	})

	It("replays a macro before consulting the underlying source (S5)", func() {
		// "x" is a prefix with no binding of its own, so the reader reads
		// on without any ambiguity wait; both code points come off the
		// push-back queue and the empty underlying source is never
		// reached, which is why the read finishes well inside the bound.
		r, m := newReader("", 50*time.Millisecond)
		m.Bind([]rune("xy"), "XY")
		r.RunMacro("xy")

		start := time.Now()
		val, outcome, _ := r.ReadBinding(m)
		Expect(time.Since(start)).To(BeNumerically("<", 20*time.Millisecond))
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("XY"))
	})

	It("leaves the buffer empty after a no-match emission with code points left over", func() {
		// Reproduces the scenario where the first code point alone is a
		// proper prefix of a binding and only resolves to a no-match once
		// a second code point has already been read into buf: the
		// no-match emission must still clear buf down to empty, not just
		// drop the one code point it actually binds.
		r, m := newReader("ac", 20*time.Millisecond)
		m.Bind([]rune("ab"), "AB")
		m.SetNomatch("NM")

		val, outcome, _ := r.ReadBinding(m)
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("NM"))
		Expect(r.GetLastBinding()).To(Equal("a"))
		Expect(r.GetCurrentBuffer()).To(BeEmpty())

		val, outcome, _ = r.ReadBinding(m)
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("NM"))
		Expect(r.GetLastBinding()).To(Equal("c"))
		Expect(r.GetCurrentBuffer()).To(BeEmpty())
	})

	It("waits out the ambiguity-asserting map's own timeout, not the other map's", func() {
		// primary's timeout is zero; only local is ambiguous on "x" (it
		// binds both "x" and "xy"). If the reader used primary's timeout
		// here it would emit local's "x" binding immediately instead of
		// waiting out local's window for a 'y'.
		pipeR, pipeW := io.Pipe()
		go func() { _, _ = pipeW.Write([]byte("x")) }()
		src := charsrc.New(pipeR, charsrc.UTF8, nil)
		primary := keymap.New[string](0)
		primary.SetNomatch("NM")
		local := keymap.New[string](20 * time.Millisecond)
		local.Bind([]rune("x"), "LX")
		local.Bind([]rune("xy"), "LXY")
		r := binding.New[string](src, nil)

		start := time.Now()
		val, outcome, _ := r.ReadBindingLocal(primary, local)
		Expect(time.Since(start)).To(BeNumerically(">=", 15*time.Millisecond))
		Expect(outcome).To(Equal(binding.Bound))
		Expect(val).To(Equal("LX"))
		Expect(r.GetCurrentBuffer()).To(BeEmpty())
	})

	It("returns WouldBlock in non-blocking mode when nothing is available yet", func() {
		pipeR, _ := io.Pipe() // never written to, never closed: genuinely no data pending
		src := charsrc.New(pipeR, charsrc.UTF8, nil)
		m := keymap.New[string](0)
		m.Bind([]rune("a"), "A")
		r := binding.New[string](src, nil)

		_, outcome, err := r.ReadBindingOpts(m, nil, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(binding.WouldBlock))
	})
})
