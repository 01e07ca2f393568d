// SPDX-License-Identifier: GPL-3.0-or-later

package collector

import (
	_ "github.com/netdata/puppetdb-plugin/plugin/go.d/collector/puppetdb"
)
