// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/netdata/puppetdb-plugin/logger"
	"github.com/netdata/puppetdb-plugin/pkg/netdataapi"
	"github.com/netdata/puppetdb-plugin/plugin/go.d/agent/internal/tickstate"
)

type JobConfig struct {
	PluginName      string
	Name            string
	ModuleName      string
	FullName        string
	Module          Module
	Labels          map[string]string
	Out             io.Writer
	UpdateEvery     int
	AutoDetectEvery int
	Priority        int
	IsStock         bool
}

func NewJob(cfg JobConfig) *Job {
	var buf bytes.Buffer

	if cfg.UpdateEvery == 0 {
		cfg.UpdateEvery = UpdateEvery
	}
	if cfg.Priority == 0 {
		cfg.Priority = Priority
	}
	if cfg.FullName == "" {
		cfg.FullName = fullName(cfg.ModuleName, cfg.Name)
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}

	ctx, cancel := context.WithCancel(context.Background())

	j := &Job{
		AutoDetectEvery: cfg.AutoDetectEvery,
		AutoDetectTries: infTries,

		pluginName:  cfg.PluginName,
		name:        cfg.Name,
		moduleName:  cfg.ModuleName,
		fullName:    cfg.FullName,
		updateEvery: cfg.UpdateEvery,
		priority:    cfg.Priority,
		isStock:     cfg.IsStock,
		module:      cfg.Module,
		labels:      cfg.Labels,
		out:         cfg.Out,
		tick:        make(chan int),
		buf:         &buf,
		api:         netdataapi.New(&buf),
		ctx:         ctx,
		cancel:      cancel,
		stopCtl:     newStopController(),
	}

	log := logger.New().With(
		slog.String("collector", j.ModuleName()),
		slog.String("job", j.Name()),
	)

	j.Logger = log
	if j.module != nil {
		j.module.GetBase().Logger = log
	}

	return j
}

// Job represents a job. It's a module wrapper.
type Job struct {
	pluginName string
	name       string
	moduleName string
	fullName   string

	updateEvery     int
	AutoDetectEvery int
	AutoDetectTries int
	priority        int
	labels          map[string]string

	*logger.Logger

	isStock bool

	module Module

	initialized bool
	panicked    atomic.Bool

	charts *Charts
	tick   chan int
	out    io.Writer
	buf    *bytes.Buffer
	api    *netdataapi.API

	retries     atomic.Int64
	prevRun     time.Time
	skipTracker tickstate.SkipTracker

	ctx     context.Context
	cancel  context.CancelFunc
	stopCtl stopController
}

// NetdataChartIDMaxLength is the chart ID max length. See RRD_ID_LENGTH_MAX in the netdata source code.
const NetdataChartIDMaxLength = 1200

// FullName returns job full name.
func (j *Job) FullName() string {
	return j.fullName
}

// ModuleName returns job module name.
func (j *Job) ModuleName() string {
	return j.moduleName
}

// Name returns job name.
func (j *Job) Name() string {
	return j.name
}

// Panicked returns 'panicked' flag value.
func (j *Job) Panicked() bool {
	return j.panicked.Load()
}

// AutoDetectionEvery returns value of AutoDetectEvery.
func (j *Job) AutoDetectionEvery() int {
	return j.AutoDetectEvery
}

// RetryAutoDetection returns whether it is needed to retry autodetection.
func (j *Job) RetryAutoDetection() bool {
	return retryAutoDetection(j.AutoDetectEvery, j.AutoDetectTries)
}

// AutoDetection invokes init, check and postCheck. It handles panic.
func (j *Job) AutoDetection() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic %v", r)
			j.panicked.Store(true)
			disableAutoDetection(&j.AutoDetectEvery)

			j.Errorf("PANIC %v", r)
			if logger.Level.Enabled(slog.LevelDebug) {
				j.Errorf("STACK: %s", debug.Stack())
			}
		}
		if err != nil {
			j.module.Cleanup(j.ctx)
		}
	}()

	if j.isStock {
		j.Mute()
	}

	if err = j.init(); err != nil {
		j.Errorf("init failed: %v", err)
		j.Unmute()
		disableAutoDetection(&j.AutoDetectEvery)
		return err
	}

	if err = j.check(); err != nil {
		j.Errorf("check failed: %v", err)
		j.Unmute()
		return err
	}

	j.Unmute()
	j.Info("check success")

	if err = j.postCheck(); err != nil {
		j.Errorf("postCheck failed: %v", err)
		disableAutoDetection(&j.AutoDetectEvery)
		return err
	}

	return nil
}

// Tick Tick.
func (j *Job) Tick(clock int) {
	enqueueTickWithSkipLog(j.tick, clock, j.updateEvery, int(j.retries.Load()), &j.skipTracker, j.Logger)
}

// Start starts job main loop.
func (j *Job) Start() {
	j.stopCtl.markStarted()
	j.Infof("started, data collection interval %ds", j.updateEvery)
	defer func() { j.Info("stopped") }()

LOOP:
	for {
		select {
		case <-j.stopCtl.stopCh:
			break LOOP
		case t := <-j.tick:
			if shouldCollectWithPenalty(t, j.updateEvery, int(j.retries.Load())) {
				markRunStartWithResumeLog(&j.skipTracker, j.Logger)
				j.runOnce()
				j.skipTracker.MarkRunStop(time.Now())
			}
		}
	}
	j.module.Cleanup(context.Background())
	j.Cleanup()
	j.stopCtl.markStopped()
}

// Stop stops job main loop. It blocks until the job is stopped.
func (j *Job) Stop() {
	j.cancel()
	j.stopCtl.stopAndWait()
}

// Cleanup marks all created charts obsolete.
func (j *Job) Cleanup() {
	j.buf.Reset()

	if j.charts != nil {
		for _, chart := range *j.charts {
			if chart.created {
				chart.MarkRemove()
				j.createChart(chart)
			}
		}
	}

	if j.buf.Len() > 0 {
		_, _ = io.Copy(j.out, j.buf)
	}
}

func (j *Job) init() error {
	if j.initialized {
		return nil
	}

	if err := j.module.Init(j.ctx); err != nil {
		return err
	}

	j.initialized = true

	return nil
}

func (j *Job) check() error {
	if err := j.module.Check(j.ctx); err != nil {
		consumeAutoDetectTry(&j.AutoDetectTries)
		return err
	}
	return nil
}

func (j *Job) postCheck() error {
	if j.charts = j.module.Charts(); j.charts == nil {
		j.Error("nil charts")
		return errors.New("nil charts")
	}
	if err := checkCharts(*j.charts...); err != nil {
		j.Errorf("charts check: %v", err)
		return err
	}
	return nil
}

func (j *Job) runOnce() {
	curTime := time.Now()
	sinceLastRun := calcSinceLastRun(curTime, j.prevRun)
	j.prevRun = curTime

	metrics := j.collect()

	if j.panicked.Load() {
		return
	}

	if j.processMetrics(metrics, sinceLastRun) {
		j.retries.Store(0)
	} else {
		j.retries.Add(1)
	}

	_, _ = io.Copy(j.out, j.buf)
	j.buf.Reset()
}

func (j *Job) collect() (result map[string]int64) {
	j.panicked.Store(false)
	defer func() {
		if r := recover(); r != nil {
			j.panicked.Store(true)
			j.Errorf("PANIC: %v", r)
			if logger.Level.Enabled(slog.LevelDebug) {
				j.Errorf("STACK: %s", debug.Stack())
			}
		}
	}()
	return j.module.Collect(j.ctx)
}

func (j *Job) processMetrics(metrics map[string]int64, sinceLastRun int) bool {
	var i, updated int
	for _, chart := range *j.charts {
		if !chart.created {
			if typeID := j.FullName() + "." + chart.ID; len(typeID) >= NetdataChartIDMaxLength {
				j.Warningf("chart 'type.id' length (%d) >= max allowed (%d), the chart is ignored (%s)",
					len(typeID), NetdataChartIDMaxLength, typeID)
				chart.remove = true
			} else {
				j.createChart(chart)
			}
		}
		if chart.remove {
			continue
		}
		(*j.charts)[i] = chart
		i++
		if len(metrics) == 0 || chart.Obsolete {
			continue
		}
		if j.updateChart(chart, metrics, sinceLastRun) {
			updated++
		}
	}
	*j.charts = (*j.charts)[:i]

	return updated > 0
}

func (j *Job) createChart(chart *Chart) {
	defer func() { chart.created = true }()

	if chart.Priority == 0 {
		chart.Priority = j.priority
		j.priority++
	}
	j.api.CHART(netdataapi.ChartOpts{
		TypeID:      j.FullName(),
		ID:          chart.ID,
		Name:        chart.OverID,
		Title:       chart.Title,
		Units:       chart.Units,
		Family:      chart.Fam,
		Context:     chart.Ctx,
		ChartType:   chart.Type.String(),
		Priority:    chart.Priority,
		UpdateEvery: j.updateEvery,
		Options:     chart.Opts.String(),
		Plugin:      j.pluginName,
		Module:      j.moduleName,
	})

	if chart.Obsolete {
		_ = j.api.EMPTYLINE()
		return
	}

	seen := make(map[string]bool)
	for _, l := range chart.Labels {
		if l.Key != "" {
			seen[l.Key] = true
			ls := l.Source
			if ls == 0 {
				ls = LabelSourceAuto
			}
			j.api.CLABEL(l.Key, lblReplacer.Replace(l.Value), ls)
		}
	}
	for k, v := range j.labels {
		if !seen[k] {
			j.api.CLABEL(k, lblReplacer.Replace(v), LabelSourceConf)
		}
	}
	j.api.CLABEL("_collect_job", lblReplacer.Replace(j.Name()), LabelSourceAuto)
	j.api.CLABELCOMMIT()

	for _, dim := range chart.Dims {
		j.api.DIMENSION(netdataapi.DimensionOpts{
			ID:         dim.ID,
			Name:       dim.Name,
			Algorithm:  dim.Algo.String(),
			Multiplier: handleZero(dim.Mul),
			Divisor:    handleZero(dim.Div),
			Options:    dim.DimOpts.String(),
		})
	}
	_ = j.api.EMPTYLINE()
}

func (j *Job) updateChart(chart *Chart, collected map[string]int64, sinceLastRun int) bool {
	if !chart.updated {
		sinceLastRun = 0
	}

	j.api.BEGIN(j.FullName(), chart.ID, sinceLastRun)

	var updated int
	for _, dim := range chart.Dims {
		if v, ok := collected[dim.ID]; !ok {
			j.api.SETEMPTY(dim.ID)
		} else {
			j.api.SET(dim.ID, v)
			updated++
		}
	}
	j.api.END()

	chart.updated = updated > 0
	return chart.updated
}

func fullName(moduleName, jobName string) string {
	if jobName == "" || jobName == moduleName {
		return moduleName
	}
	return moduleName + "_" + jobName
}

func calcSinceLastRun(curTime, prevRun time.Time) int {
	if prevRun.IsZero() {
		return 0
	}
	return int((curTime.UnixNano() - prevRun.UnixNano()) / 1000)
}

func handleZero(v int) int {
	if v == 0 {
		return 1
	}
	return v
}

var lblReplacer = strings.NewReplacer("'", "")
