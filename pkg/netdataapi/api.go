// SPDX-License-Identifier: GPL-3.0-or-later

package netdataapi

import (
	"io"
	"strconv"
)

// API implements the subset of the Netdata external plugins API used by the job loop.
// See: https://learn.netdata.cloud/docs/agent/plugins.d#the-output-of-the-plugin
type API struct {
	io.Writer
}

const quotes = "' '"

var (
	end          = []byte("END\n\n")
	clabelCommit = []byte("CLABEL_COMMIT\n")
	newLine      = []byte("\n")
)

// New creates a new API instance for interacting with Netdata.
// Panics if the provided writer is nil.
func New(w io.Writer) *API {
	if w == nil {
		panic("writer cannot be nil")
	}
	return &API{w}
}

// CHART creates or updates a chart.
func (a *API) CHART(opts ChartOpts) {
	_, _ = a.Write([]byte("CHART " + "'" +
		opts.TypeID + "." + opts.ID + quotes +
		opts.Name + quotes +
		opts.Title + quotes +
		opts.Units + quotes +
		opts.Family + quotes +
		opts.Context + quotes +
		opts.ChartType + quotes +
		strconv.Itoa(opts.Priority) + quotes +
		strconv.Itoa(opts.UpdateEvery) + quotes +
		opts.Options + quotes +
		opts.Plugin + quotes +
		opts.Module + "'\n"))
}

// DIMENSION adds or updates a dimension to the most recently created chart.
func (a *API) DIMENSION(opts DimensionOpts) {
	_, _ = a.Write([]byte("DIMENSION '" +
		opts.ID + quotes +
		opts.Name + quotes +
		opts.Algorithm + quotes +
		strconv.Itoa(opts.Multiplier) + quotes +
		strconv.Itoa(opts.Divisor) + quotes +
		opts.Options + "'\n"))
}

// CLABEL adds or updates a label to the most recently created chart.
func (a *API) CLABEL(key, value string, source int) {
	_, _ = a.Write([]byte("CLABEL '" +
		key + quotes +
		value + quotes +
		strconv.Itoa(source) + "'\n"))
}

// CLABELCOMMIT adds labels to the chart. Should be called after one or more CLABEL.
func (a *API) CLABELCOMMIT() {
	_, _ = a.Write(clabelCommit)
}

// BEGIN initializes data collection for a chart.
func (a *API) BEGIN(typeID string, id string, msSince int) {
	if msSince > 0 {
		_, _ = a.Write([]byte("BEGIN " + "'" + typeID + "." + id + "' " + strconv.Itoa(msSince) + "\n"))
	} else {
		_, _ = a.Write([]byte("BEGIN " + "'" + typeID + "." + id + "'\n"))
	}
}

// SET sets the value of a dimension for the initialized chart.
func (a *API) SET(id string, value int64) {
	_, _ = a.Write([]byte("SET '" + id + "' = " + strconv.FormatInt(value, 10) + "\n"))
}

// SETEMPTY sets an empty value for a dimension in the initialized chart.
func (a *API) SETEMPTY(id string) {
	_, _ = a.Write([]byte("SET '" + id + "' = \n"))
}

// END completes data collection for the initialized chart.
// Should be called after all SET operations are complete.
func (a *API) END() {
	_, _ = a.Write(end)
}

// DISABLE disables this plugin.
// This will prevent Netdata from restarting the plugin.
func (a *API) DISABLE() {
	_, _ = a.Write([]byte("DISABLE\n"))
}

// EMPTYLINE writes an empty line to the output.
func (a *API) EMPTYLINE() error {
	_, err := a.Write(newLine)
	return err
}
