// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"context"

	"github.com/netdata/puppetdb-plugin/logger"
)

// Module is an interface that represents a module.
type Module interface {
	// Init does initialization.
	// If it returns error, the job will be disabled.
	Init(context.Context) error

	// Check is called after Init.
	// If it returns error, the job will be disabled.
	Check(context.Context) error

	// Charts returns the chart definition.
	Charts() *Charts

	// Collect collects metrics.
	Collect(context.Context) map[string]int64

	// Cleanup Cleanup
	Cleanup(context.Context)

	GetBase() *Base
}

// BlockConfigurer is implemented by modules that read their settings from an ordered
// configuration block file instead of job YAML.
type BlockConfigurer interface {
	ConfigureBlock(data []byte) error
}

// Base is a helper struct. All modules should embed this struct.
type Base struct {
	*logger.Logger
}

func (b *Base) GetBase() *Base { return b }
