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

package main

import (
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/nabbar/termkey/binding"
	"github.com/nabbar/termkey/charsrc"
	liblog "github.com/nabbar/termkey/logger"
	"github.com/nabbar/termkey/signalbridge"
	"github.com/nabbar/termkey/terminal"

	"github.com/nabbar/termkey/keymap"
)

// Op is the bound-value type this demo's key map resolves to: the
// opaque T of keymap.KeyMap[T] and binding.Reader[T] instantiated for
// a small set of named operations.
type Op string

const (
	OpUp      Op = "up"
	OpDown    Op = "down"
	OpLeft    Op = "left"
	OpRight   Op = "right"
	OpEnter   Op = "enter"
	OpTab     Op = "tab"
	OpBackspc Op = "backspace"
	OpCtrlC   Op = "interrupt"
	OpCtrlD   Op = "eof"
)

func demoKeyMap(ambiguous time.Duration) *keymap.KeyMap[Op] {
	m := keymap.New[Op](ambiguous)
	terminal.Bind(m, "\x1b[A", OpUp)
	terminal.Bind(m, "\x1b[B", OpDown)
	terminal.Bind(m, "\x1b[C", OpRight)
	terminal.Bind(m, "\x1b[D", OpLeft)
	terminal.Bind(m, "\r", OpEnter)
	terminal.Bind(m, "\n", OpEnter)
	terminal.Bind(m, "\t", OpTab)
	terminal.Bind(m, "\x7f", OpBackspc)
	terminal.Bind(m, "\x03", OpCtrlC)
	terminal.Bind(m, "\x04", OpCtrlD)
	return m
}

func runDemo(cfg *demoConfig) error {
	log := liblog.New(os.Stderr, "termkeydemo")
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	if !isTerminalStdin() {
		log.Warn("stdin is not a terminal; demo pty is independent of it", nil)
	}

	enc, err := charsrc.ParseEncoding(cfg.Encoding)
	if err != nil {
		return err
	}

	pty, err := terminal.OpenPty()
	if err != nil {
		return err
	}

	interrupted := make(chan struct{}, 1)
	onInterrupt := func(signalbridge.Signal) {
		select {
		case interrupted <- struct{}{}:
		default:
		}
	}

	initial := map[signalbridge.Signal]terminal.InitialDisposition{}
	handlers := map[signalbridge.Signal]signalbridge.Callback{}
	for _, sig := range signalbridge.All() {
		switch {
		case cfg.NativeSignal == "custom" && sig == signalbridge.INT:
			initial[sig] = terminal.Custom
			handlers[sig] = onInterrupt
		case cfg.NativeSignal == "ignore":
			initial[sig] = terminal.Ignored
		default:
			initial[sig] = terminal.Native
		}
	}

	term, err := terminal.Open(pty, terminal.Config{
		TermType: cfg.TermType,
		Encoding: enc,
		Initial:  initial,
		Handlers: handlers,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	defer term.Close()

	if err := term.EnterRaw(); err != nil {
		return err
	}
	defer term.ExitRaw()

	bold := color.New(color.FgCyan, color.Bold)
	m := demoKeyMap(time.Duration(cfg.AmbiguousMs) * time.Millisecond)
	reader := binding.New[Op](term.Input(), log)

	for {
		select {
		case <-interrupted:
			bold.Fprintln(term.Writer(), "interrupted")
			term.Writer().(interface{ Flush() error }).Flush()
			return nil
		default:
		}

		op, outcome, err := reader.ReadBindingOpts(m, nil, true)
		if err != nil {
			return err
		}
		switch outcome {
		case binding.EndOfInput:
			return nil
		case binding.Bound:
			bold.Fprintf(term.Writer(), "op=%s buffer=%q\n", op, reader.GetLastBinding())
			if fl, ok := term.Writer().(interface{ Flush() error }); ok {
				_ = fl.Flush()
			}
			if op == OpCtrlD {
				return nil
			}
		}
	}
}
