// SPDX-License-Identifier: GPL-3.0-or-later

package puppetdb

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

const (
	statusUnreported = "unreported"
	statusChanged    = "changed"
	statusFailed     = "failed"
	statusNoop       = "noop"
	statusUnchanged  = "unchanged"
)

// Node is a managed host as reported by PuppetDB, with its derived run status.
type Node struct {
	Name             string
	Deactivated      string
	CatalogTimestamp string
	FactsTimestamp   string
	ReportTimestamp  string

	Status         string
	UnreportedTime string
	Events         *EventCounts
}

// EventCounts holds the event summary of a node's latest report.
type EventCounts struct {
	Successes int64
	Failures  int64
	Noops     int64
	Skips     int64
}

// deriveStatus sets the node status from its latest-report event counts and report age.
// A zero unreportAfter disables the age check.
func (n *Node) deriveStatus(now time.Time, unreportAfter time.Duration) {
	n.Status = statusUnchanged
	if ev := n.Events; ev != nil {
		switch {
		case ev.Failures > 0:
			n.Status = statusFailed
		case ev.Noops > 0:
			n.Status = statusNoop
		case ev.Successes > 0:
			n.Status = statusChanged
		}
	}

	if n.ReportTimestamp == "" {
		n.Status = statusUnreported
		return
	}
	if unreportAfter <= 0 {
		return
	}

	lastReport, err := dateparse.ParseIn(n.ReportTimestamp, time.UTC)
	if err != nil {
		n.Status = statusUnreported
		return
	}
	if lastReport.Before(now.Add(-unreportAfter)) {
		n.Status = statusUnreported
		n.UnreportedTime = formatUnreportedTime(now.Sub(lastReport))
	}
}

func formatUnreportedTime(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}
