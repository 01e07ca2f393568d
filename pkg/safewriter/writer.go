// SPDX-License-Identifier: GPL-3.0-or-later

package safewriter

import (
	"io"
	"os"
	"sync"
)

// Stdout is the process-wide serialized standard output.
var Stdout = New(os.Stdout)

// New returns a writer that serializes Write calls to w.
func New(w io.Writer) io.Writer {
	return &writer{w: w}
}

type writer struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *writer) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	n, err = w.w.Write(p)
	w.mu.Unlock()
	return n, err
}
