// SPDX-License-Identifier: GPL-3.0-or-later

package puppetdb

import (
	"fmt"
	"strconv"

	"github.com/netdata/puppetdb-plugin/logger"
	"github.com/netdata/puppetdb-plugin/pkg/collectdapi"
)

const (
	pluginName = "puppetdb"
	typeGauge  = "gauge"

	verbosePrefix = pluginName + " plugin [verbose]: "
)

// Sample is a single labeled value handed to a Sink.
type Sample struct {
	Plugin       string
	Type         string
	TypeInstance string
	Value        float64
}

// Metric is a named value produced by one read cycle.
type Metric struct {
	Key   string
	Value float64
}

// Sink receives dispatched samples.
type Sink interface {
	Emit(Sample) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Sample) error

func (f SinkFunc) Emit(s Sample) error { return f(s) }

type dispatcher struct {
	sink    Sink
	verbose bool
	log     *logger.Logger
}

// dispatch sends one gauge-like sample. An empty typeInstance defaults to key.
func (d *dispatcher) dispatch(value float64, key, typ, typeInstance string) error {
	if typeInstance == "" {
		typeInstance = key
	}

	if d.verbose {
		d.log.Infof(verbosePrefix+"Sending value: %s=%s", typeInstance, formatValue(value))
	}

	return d.sink.Emit(Sample{
		Plugin:       pluginName,
		Type:         typ,
		TypeInstance: typeInstance,
		Value:        value,
	})
}

// dispatchAll stops at the first sink error, the remaining metrics are not sent.
func (d *dispatcher) dispatchAll(metrics []Metric) error {
	for _, m := range metrics {
		if d.verbose {
			d.log.Infof(verbosePrefix+"%s: %s", m.Key, formatValue(m.Value))
		}
		if err := d.dispatch(m.Value, m.Key, typeGauge, ""); err != nil {
			return fmt.Errorf("dispatch '%s': %v", m.Key, err)
		}
	}
	return nil
}

type multiSink []Sink

func (ms multiSink) Emit(s Sample) error {
	for _, sink := range ms {
		if err := sink.Emit(s); err != nil {
			return err
		}
	}
	return nil
}

// chartSink records samples as chart dimension values.
type chartSink map[string]int64

func (cs chartSink) Emit(s Sample) error {
	cs[s.TypeInstance] = int64(s.Value)
	return nil
}

// NewCollectdSink returns a Sink writing collectd exec plugin PUTVAL lines.
// A non-positive interval omits the interval option.
func NewCollectdSink(api *collectdapi.API, host string, interval int) Sink {
	return &collectdSink{api: api, host: host, interval: interval}
}

type collectdSink struct {
	api      *collectdapi.API
	host     string
	interval int
}

func (c *collectdSink) Emit(s Sample) error {
	id := collectdapi.Identifier{
		Host:         c.host,
		Plugin:       s.Plugin,
		Type:         s.Type,
		TypeInstance: s.TypeInstance,
	}
	return c.api.PUTVAL(id, c.interval, s.Value)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
