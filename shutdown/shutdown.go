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

// Package shutdown is a process-wide ordered set of cleanup tasks run on
// normal termination. Go has no atexit: callers that want the registry
// to actually fire on process exit must call Run from their own
// deferred cleanup or from a signal handler; os.Exit bypasses it
// entirely, which is why the terminal also removes itself from the
// registry in its own Close path rather than depending solely on this.
package shutdown

import "sync"

// Task is a cleanup action. Tasks must be idempotent: a task may be
// invoked both by its owner's explicit close and by Run.
type Task func()

// ID identifies a registered task for later removal.
type ID uint64

var (
	mu    sync.Mutex
	seq   ID
	order []ID
	tasks = map[ID]Task{}
)

// Add registers task and returns an ID that Remove accepts.
func Add(task Task) ID {
	mu.Lock()
	defer mu.Unlock()
	seq++
	id := seq
	tasks[id] = task
	order = append(order, id)
	return id
}

// Remove deregisters the task identified by id. Removing an id that was
// already removed (or already run) is a no-op, which is what makes the
// terminal's "remove myself, then maybe get fired by Run anyway" pattern
// safe.
func Remove(id ID) {
	mu.Lock()
	defer mu.Unlock()
	delete(tasks, id)
}

// Run invokes every still-registered task once, in registration order,
// then clears the registry. Intended to be called on normal process
// termination (e.g. deferred from main, or from a SIGTERM handler);
// it does nothing for a forced kill.
func Run() {
	mu.Lock()
	pending := make([]Task, 0, len(order))
	for _, id := range order {
		if t, ok := tasks[id]; ok {
			pending = append(pending, t)
		}
	}
	tasks = map[ID]Task{}
	order = nil
	mu.Unlock()

	for _, t := range pending {
		t()
	}
}
