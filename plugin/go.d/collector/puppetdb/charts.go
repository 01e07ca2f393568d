// SPDX-License-Identifier: GPL-3.0-or-later

package puppetdb

import (
	"github.com/netdata/puppetdb-plugin/plugin/go.d/agent/module"
)

const (
	prioPopulation = module.Priority + iota
	prioNodeStatus
)

var charts = module.Charts{
	populationChart.Copy(),
	nodeStatusChart.Copy(),
}

var (
	populationChart = module.Chart{
		ID:       "population",
		Title:    "PuppetDB node population",
		Units:    "nodes",
		Fam:      "population",
		Ctx:      "puppetdb.population",
		Priority: prioPopulation,
		Dims: module.Dims{
			{ID: keyPopulation},
		},
	}
	nodeStatusChart = module.Chart{
		ID:       "node_status",
		Title:    "PuppetDB nodes by last run status",
		Units:    "nodes",
		Fam:      "nodes",
		Ctx:      "puppetdb.node_status",
		Priority: prioNodeStatus,
		Type:     module.Stacked,
		Dims: module.Dims{
			{ID: statusUnreported},
			{ID: statusChanged},
			{ID: statusFailed},
			{ID: statusNoop},
			{ID: statusUnchanged},
		},
	}
)
