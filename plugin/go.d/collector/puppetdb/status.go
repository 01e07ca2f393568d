// SPDX-License-Identifier: GPL-3.0-or-later

package puppetdb

// StatusTally counts nodes per run status category.
type StatusTally struct {
	Changed    int64
	Unchanged  int64
	Failed     int64
	Unreported int64
	Noop       int64
}

// Total is the number of nodes counted.
func (t StatusTally) Total() int64 {
	return t.Changed + t.Unchanged + t.Failed + t.Unreported + t.Noop
}

func (t *StatusTally) add(status string) {
	switch status {
	case statusUnreported:
		t.Unreported++
	case statusChanged:
		t.Changed++
	case statusFailed:
		t.Failed++
	case statusNoop:
		t.Noop++
	default:
		t.Unchanged++
	}
}

// tallyStatuses counts every status exactly once. Statuses outside the known set are counted as unchanged.
func tallyStatuses(statuses []string) StatusTally {
	var t StatusTally
	for _, s := range statuses {
		t.add(s)
	}
	return t
}

func tallyNodes(nodes []Node) StatusTally {
	statuses := make([]string, 0, len(nodes))
	for _, n := range nodes {
		statuses = append(statuses, n.Status)
	}
	return tallyStatuses(statuses)
}
