// SPDX-License-Identifier: GPL-3.0-or-later

package puppetdb

import (
	"context"
	"fmt"
	"time"
)

const (
	keyPopulation = "population"
)

func (c *Collector) collect(ctx context.Context) (map[string]int64, error) {
	metrics, err := c.Read(ctx)
	if err != nil {
		return nil, err
	}

	mx := make(map[string]int64)

	sink := multiSink{chartSink(mx)}
	if c.Sink != nil {
		sink = append(sink, c.Sink)
	}

	d := &dispatcher{sink: sink, verbose: c.Verbose, log: c.Logger}
	if err := d.dispatchAll(metrics); err != nil {
		return nil, err
	}

	return mx, nil
}

// Read fetches population metrics and node statuses and returns the values to dispatch,
// in dispatch order. Any request error aborts the whole cycle.
func (c *Collector) Read(ctx context.Context) ([]Metric, error) {
	if c.apiClient == nil {
		return nil, fmt.Errorf("collector is not initialized")
	}

	var pop population
	var err error

	if pop.NumNodes, err = c.apiClient.populationMetric(ctx, metricNumNodes); err != nil {
		return nil, err
	}
	if pop.NumResources, err = c.apiClient.populationMetric(ctx, metricNumResources); err != nil {
		return nil, err
	}
	if pop.AvgResourcesByNode, err = c.apiClient.populationMetric(ctx, metricAvgResourcesByNode); err != nil {
		return nil, err
	}

	nodes, err := c.queryNodes(ctx)
	if err != nil {
		return nil, err
	}

	c.lastPopulation = pop

	tally := tallyNodes(nodes)

	return []Metric{
		{Key: keyPopulation, Value: pop.NumNodes},
		{Key: statusUnreported, Value: float64(tally.Unreported)},
		{Key: statusChanged, Value: float64(tally.Changed)},
		{Key: statusFailed, Value: float64(tally.Failed)},
		{Key: statusNoop, Value: float64(tally.Noop)},
		{Key: statusUnchanged, Value: float64(tally.Unchanged)},
	}, nil
}

func (c *Collector) queryNodes(ctx context.Context) ([]Node, error) {
	resp, err := c.apiClient.nodes(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := c.apiClient.latestReportEventCounts(ctx)
	if err != nil {
		return nil, err
	}

	events := make(map[string]*EventCounts, len(counts))
	for _, ec := range counts {
		if _, ok := events[ec.Subject.Title]; ok {
			continue
		}
		events[ec.Subject.Title] = &EventCounts{
			Successes: ec.Successes,
			Failures:  ec.Failures,
			Noops:     ec.Noops,
			Skips:     ec.Skips,
		}
	}

	now := c.now()
	unreportAfter := time.Duration(c.UnreportTime) * time.Minute

	nodes := make([]Node, 0, len(resp))
	for _, r := range resp {
		n := Node{
			Name:             r.Name,
			Deactivated:      r.Deactivated,
			CatalogTimestamp: r.CatalogTimestamp,
			FactsTimestamp:   r.FactsTimestamp,
			ReportTimestamp:  r.ReportTimestamp,
			Events:           events[r.Name],
		}
		n.deriveStatus(now, unreportAfter)
		if n.Status == statusUnreported && n.UnreportedTime != "" {
			c.Debugf("node '%s' unreported for %s", n.Name, n.UnreportedTime)
		}
		nodes = append(nodes, n)
	}

	return nodes, nil
}
