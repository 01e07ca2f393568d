// SPDX-License-Identifier: GPL-3.0-or-later

package puppetdb

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/netdata/puppetdb-plugin/logger"
	"github.com/netdata/puppetdb-plugin/pkg/collectdapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	samples []Sample
	failOn  string
}

func (r *recordingSink) Emit(s Sample) error {
	if r.failOn != "" && s.TypeInstance == r.failOn {
		return errors.New("sink failure")
	}
	r.samples = append(r.samples, s)
	return nil
}

func TestDispatcher_dispatch(t *testing.T) {
	tests := map[string]struct {
		key          string
		typeInstance string
		want         Sample
	}{
		"type instance defaults to key": {
			key:  "population",
			want: Sample{Plugin: "puppetdb", Type: "gauge", TypeInstance: "population", Value: 7},
		},
		"explicit type instance": {
			key:          "population",
			typeInstance: "nodes",
			want:         Sample{Plugin: "puppetdb", Type: "gauge", TypeInstance: "nodes", Value: 7},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			sink := &recordingSink{}
			d := &dispatcher{sink: sink, verbose: true, log: logger.New()}

			require.NoError(t, d.dispatch(7, test.key, "gauge", test.typeInstance))

			assert.Equal(t, []Sample{test.want}, sink.samples)
		})
	}
}

func TestDispatcher_dispatchAll(t *testing.T) {
	metrics := []Metric{
		{Key: "population", Value: 4},
		{Key: "unreported", Value: 1},
		{Key: "changed", Value: 1},
		{Key: "failed", Value: 1},
		{Key: "noop", Value: 0},
		{Key: "unchanged", Value: 1},
	}

	t.Run("all six in order", func(t *testing.T) {
		sink := &recordingSink{}
		d := &dispatcher{sink: sink}

		require.NoError(t, d.dispatchAll(metrics))

		require.Len(t, sink.samples, 6)
		for i, m := range metrics {
			assert.Equal(t, m.Key, sink.samples[i].TypeInstance)
			assert.Equal(t, m.Value, sink.samples[i].Value)
			assert.Equal(t, "gauge", sink.samples[i].Type)
		}
	})

	t.Run("sink error stops remaining dispatches", func(t *testing.T) {
		sink := &recordingSink{failOn: "failed"}
		d := &dispatcher{sink: sink}

		assert.Error(t, d.dispatchAll(metrics))
		assert.Len(t, sink.samples, 3)
	})
}

func TestDispatcher_VerboseLogging(t *testing.T) {
	metrics := []Metric{
		{Key: "population", Value: 4},
		{Key: "unreported", Value: 1},
	}

	tests := map[string]struct {
		verbose   bool
		wantLines []string
	}{
		"verbose logs every value before sending it": {
			verbose: true,
			wantLines: []string{
				"puppetdb plugin [verbose]: population: 4",
				"puppetdb plugin [verbose]: Sending value: population=4",
				"puppetdb plugin [verbose]: unreported: 1",
				"puppetdb plugin [verbose]: Sending value: unreported=1",
			},
		},
		"quiet logs nothing": {
			verbose: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			d := &dispatcher{sink: &recordingSink{}, verbose: test.verbose, log: logger.NewWithWriter(&buf)}

			require.NoError(t, d.dispatchAll(metrics))

			out := buf.String()
			if len(test.wantLines) == 0 {
				assert.NotContains(t, out, "[verbose]")
				assert.NotContains(t, out, "Sending value")
				return
			}

			lines := strings.Split(strings.TrimSpace(out), "\n")
			require.Len(t, lines, len(test.wantLines))
			for i, want := range test.wantLines {
				assert.Contains(t, lines[i], want)
			}
		})
	}
}

func TestChartSink(t *testing.T) {
	mx := make(map[string]int64)
	sink := chartSink(mx)

	require.NoError(t, sink.Emit(Sample{TypeInstance: "population", Value: 12}))
	require.NoError(t, sink.Emit(Sample{TypeInstance: "noop", Value: 0}))

	assert.Equal(t, map[string]int64{"population": 12, "noop": 0}, mx)
}

func TestMultiSink(t *testing.T) {
	first, second := &recordingSink{}, &recordingSink{}

	require.NoError(t, multiSink{first, second}.Emit(Sample{TypeInstance: "noop"}))
	assert.Len(t, first.samples, 1)
	assert.Len(t, second.samples, 1)

	failing := &recordingSink{failOn: "noop"}
	third := &recordingSink{}
	assert.Error(t, multiSink{failing, third}.Emit(Sample{TypeInstance: "noop"}))
	assert.Empty(t, third.samples)
}

func TestCollectdSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewCollectdSink(collectdapi.New(&buf), "node01", 10)

	require.NoError(t, sink.Emit(Sample{Plugin: "puppetdb", Type: "gauge", TypeInstance: "population", Value: 4}))
	require.NoError(t, sink.Emit(Sample{Plugin: "puppetdb", Type: "gauge", TypeInstance: "unreported", Value: 1}))

	assert.Equal(t,
		"PUTVAL \"node01/puppetdb/gauge-population\" interval=10 N:4\n"+
			"PUTVAL \"node01/puppetdb/gauge-unreported\" interval=10 N:1\n",
		buf.String())
}
