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

package shutdown_test

import (
	"testing"

	"github.com/nabbar/termkey/shutdown"
)

func TestRunInvokesInRegistrationOrder(t *testing.T) {
	var order []int
	shutdown.Add(func() { order = append(order, 1) })
	shutdown.Add(func() { order = append(order, 2) })
	shutdown.Add(func() { order = append(order, 3) })

	shutdown.Run()

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("got %v", order)
	}
}

func TestRemoveBeforeRunSkipsTask(t *testing.T) {
	ran := false
	id := shutdown.Add(func() { ran = true })
	shutdown.Remove(id)
	shutdown.Run()

	if ran {
		t.Fatal("expected removed task not to run")
	}
}

func TestRunClearsRegistry(t *testing.T) {
	calls := 0
	shutdown.Add(func() { calls++ })
	shutdown.Run()
	shutdown.Run()

	if calls != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	id := shutdown.Add(func() {})
	shutdown.Remove(id)
	shutdown.Remove(id) // must not panic
	shutdown.Run()
}
