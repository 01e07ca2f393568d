// SPDX-License-Identifier: GPL-3.0-or-later

package safewriter

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = w.Write([]byte("line\n"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, strings.Count(buf.String(), "line\n"))
}
