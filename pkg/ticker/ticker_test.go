// SPDX-License-Identifier: GPL-3.0-or-later

package ticker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PanicsOnNonPositiveInterval(t *testing.T) {
	assert.Panics(t, func() { New(0) })
}

func TestTicker_Ticks(t *testing.T) {
	tk := New(time.Millisecond * 20)
	defer tk.Stop()

	var clocks []int
	for i := 0; i < 3; i++ {
		select {
		case c := <-tk.C:
			clocks = append(clocks, c)
		case <-time.After(time.Second):
			t.Fatal("no tick received")
		}
	}

	require.Len(t, clocks, 3)
	assert.Equal(t, []int{0, 1, 2}, clocks)
}

func TestTicker_Stop(t *testing.T) {
	tk := New(time.Millisecond * 10)
	tk.Stop()

	select {
	case _, ok := <-tk.C:
		if ok {
			// a tick may already be in flight
			_, ok = <-tk.C
		}
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("ticker channel was not closed")
	}
}
