// SPDX-License-Identifier: GPL-3.0-or-later

package puppetdb

import (
	"context"
	"fmt"
	"time"

	"github.com/netdata/puppetdb-plugin/pkg/collectdapi"
	"github.com/netdata/puppetdb-plugin/pkg/web"
	"github.com/netdata/puppetdb-plugin/plugin/go.d/agent/module"
)

func init() {
	module.Register("puppetdb", module.Creator{
		Defaults: module.Defaults{
			UpdateEvery:        10,
			AutoDetectionRetry: 10,
		},
		Create: func() module.Module { return New() },
	})
}

func New() *Collector {
	return &Collector{
		Settings: DefaultSettings(),
		charts:   charts.Copy(),
		now:      time.Now,
	}
}

type Collector struct {
	module.Base
	Settings

	// Sink receives every dispatched sample in addition to the job charts.
	Sink Sink

	charts *module.Charts

	apiClient *apiClient
	now       func() time.Time

	lastPopulation population
}

// population holds the population mbean values of the last successful cycle.
type population struct {
	NumNodes           float64
	NumResources       float64
	AvgResourcesByNode float64
}

// ConfigureBlock replaces the collector settings with the ones read from a configuration block.
func (c *Collector) ConfigureBlock(data []byte) error {
	entries, err := DecodeBlock(data)
	if err != nil {
		return err
	}
	s, err := Configure(entries, c.Logger)
	if err != nil {
		return err
	}
	c.Settings = s
	return nil
}

// AttachCollectd makes every dispatched sample also be written as a collectd PUTVAL line.
func (c *Collector) AttachCollectd(api *collectdapi.API, host string, interval int) {
	c.Sink = NewCollectdSink(api, host, interval)
}

func (c *Collector) Init(context.Context) error {
	if err := c.validateConfig(); err != nil {
		return fmt.Errorf("config validation: %v", err)
	}
	if (c.Key == nil) != (c.Cert == nil) {
		c.Warning("only one of key and cert is set, client certificate is not used")
	}

	httpCfg, err := newHTTPConfig(c.Settings)
	if err != nil {
		return fmt.Errorf("tls config: %v", err)
	}

	client, err := web.NewHTTPClient(httpCfg.ClientConfig)
	if err != nil {
		return fmt.Errorf("create http client: %v", err)
	}

	c.apiClient = newAPIClient(client, httpCfg.RequestConfig)

	c.Debugf("using PuppetDB API %s at %s", apiVersion, httpCfg.URL)

	return nil
}

func (c *Collector) Check(ctx context.Context) error {
	if _, err := c.Read(ctx); err != nil {
		return err
	}
	return nil
}

func (c *Collector) Charts() *module.Charts {
	return c.charts
}

func (c *Collector) Collect(ctx context.Context) map[string]int64 {
	mx, err := c.collect(ctx)
	if err != nil {
		c.Error(err)
		return nil
	}

	return mx
}

func (c *Collector) Cleanup(context.Context) {
	if c.apiClient != nil && c.apiClient.httpClient != nil {
		c.apiClient.httpClient.CloseIdleConnections()
	}
}
