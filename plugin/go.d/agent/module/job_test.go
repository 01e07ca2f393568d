// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pluginName = "plugin"
	modName    = "module"
	jobName    = "job"
)

func newTestJob(mod Module, out *bytes.Buffer) *Job {
	return NewJob(JobConfig{
		PluginName:  pluginName,
		Name:        jobName,
		ModuleName:  modName,
		Module:      mod,
		Out:         out,
		UpdateEvery: 1,
	})
}

func newTestCharts() *Charts {
	return &Charts{
		{
			ID:    "chart",
			Title: "Title",
			Units: "units",
			Type:  Stacked,
			Dims: Dims{
				{ID: "id1"},
				{ID: "id2", Name: "two"},
			},
		},
	}
}

func TestNewJob(t *testing.T) {
	job := newTestJob(&MockModule{}, &bytes.Buffer{})

	assert.Equal(t, "module_job", job.FullName())
	assert.Equal(t, modName, job.ModuleName())
	assert.Equal(t, jobName, job.Name())
	assert.Equal(t, infTries, job.AutoDetectTries)
	assert.Equal(t, Priority, job.priority)
}

func TestNewJob_FullNameEqualsModuleName(t *testing.T) {
	job := NewJob(JobConfig{Name: "puppetdb", ModuleName: "puppetdb", Module: &MockModule{}})

	assert.Equal(t, "puppetdb", job.FullName())
}

func TestJob_AutoDetection(t *testing.T) {
	errInit := errors.New("init")
	errCheck := errors.New("check")

	tests := map[string]struct {
		mod           *MockModule
		autoDetection int
		wantErr       bool
		wantRetry     bool
		wantCleanup   bool
	}{
		"success": {
			mod:           &MockModule{ChartsFunc: newTestCharts},
			autoDetection: 10,
			wantRetry:     true,
		},
		"init fails": {
			mod: &MockModule{
				InitFunc:   func(context.Context) error { return errInit },
				ChartsFunc: newTestCharts,
			},
			autoDetection: 10,
			wantErr:       true,
			wantRetry:     false,
			wantCleanup:   true,
		},
		"check fails": {
			mod: &MockModule{
				CheckFunc:  func(context.Context) error { return errCheck },
				ChartsFunc: newTestCharts,
			},
			autoDetection: 10,
			wantErr:       true,
			wantRetry:     true,
			wantCleanup:   true,
		},
		"nil charts": {
			mod:           &MockModule{},
			autoDetection: 10,
			wantErr:       true,
			wantRetry:     false,
			wantCleanup:   true,
		},
		"invalid charts": {
			mod: &MockModule{
				ChartsFunc: func() *Charts { return &Charts{{ID: "chart"}} },
			},
			autoDetection: 10,
			wantErr:       true,
			wantCleanup:   true,
		},
		"panic in check": {
			mod: &MockModule{
				CheckFunc: func(context.Context) error { panic("boom") },
			},
			autoDetection: 10,
			wantErr:       true,
			wantRetry:     false,
			wantCleanup:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			job := newTestJob(test.mod, &bytes.Buffer{})
			job.AutoDetectEvery = test.autoDetection

			err := job.AutoDetection()

			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, test.wantRetry, job.RetryAutoDetection())
			assert.Equal(t, test.wantCleanup, test.mod.CleanupDone)
		})
	}
}

func TestJob_runOnce(t *testing.T) {
	var out bytes.Buffer
	mod := &MockModule{
		ChartsFunc: newTestCharts,
		CollectFunc: func(context.Context) map[string]int64 {
			return map[string]int64{"id1": 1, "id2": 2}
		},
	}
	job := newTestJob(mod, &out)
	require.NoError(t, job.AutoDetection())

	job.runOnce()

	s := out.String()
	assert.Contains(t, s, "CHART 'module_job.chart' '' 'Title' 'units' '' '' 'stacked' '70000' '1' '' 'plugin' 'module'\n")
	assert.Contains(t, s, "CLABEL '_collect_job' 'job' '1'\n")
	assert.Contains(t, s, "DIMENSION 'id1' '' 'absolute' '1' '1' ''\n")
	assert.Contains(t, s, "DIMENSION 'id2' 'two' 'absolute' '1' '1' ''\n")
	assert.Contains(t, s, "BEGIN 'module_job.chart'\nSET 'id1' = 1\nSET 'id2' = 2\nEND\n")
	assert.Zero(t, job.retries.Load())
}

func TestJob_runOnce_NoMetricsIncrementsRetries(t *testing.T) {
	var out bytes.Buffer
	mod := &MockModule{ChartsFunc: newTestCharts}
	job := newTestJob(mod, &out)
	require.NoError(t, job.AutoDetection())

	job.runOnce()
	job.runOnce()

	assert.Equal(t, int64(2), job.retries.Load())
	assert.NotContains(t, out.String(), "BEGIN")
}

func TestJob_runOnce_PanicInCollect(t *testing.T) {
	var out bytes.Buffer
	mod := &MockModule{
		ChartsFunc:  newTestCharts,
		CollectFunc: func(context.Context) map[string]int64 { panic("boom") },
	}
	job := newTestJob(mod, &out)
	require.NoError(t, job.AutoDetection())

	job.runOnce()

	assert.True(t, job.Panicked())
	assert.Zero(t, out.Len())
}

func TestJob_StartStop(t *testing.T) {
	var out bytes.Buffer
	collected := make(chan struct{}, 1)
	mod := &MockModule{
		ChartsFunc: newTestCharts,
		CollectFunc: func(context.Context) map[string]int64 {
			select {
			case collected <- struct{}{}:
			default:
			}
			return map[string]int64{"id1": 1, "id2": 2}
		},
	}
	job := newTestJob(mod, &out)
	require.NoError(t, job.AutoDetection())

	go job.Start()

	require.Eventually(t, func() bool {
		job.Tick(1)
		return len(collected) > 0
	}, time.Second*5, time.Millisecond*10)

	job.Stop()

	assert.True(t, mod.CleanupDone)
	assert.Contains(t, out.String(), "'obsolete'")
}

func TestJob_Stop_CancelsContext(t *testing.T) {
	job := newTestJob(&MockModule{ChartsFunc: newTestCharts}, &bytes.Buffer{})

	go job.Start()
	job.Stop()

	assert.Error(t, job.ctx.Err())
}
