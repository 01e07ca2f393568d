// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"fmt"
	"net"
	"net/http"

	"github.com/netdata/puppetdb-plugin/pkg/confopt"
	"github.com/netdata/puppetdb-plugin/pkg/tlscfg"
)

// ClientConfig is the HTTP client part of HTTPConfig.
type ClientConfig struct {
	// Timeout bounds dialing, the TLS handshake and the whole request. Zero means no timeout.
	Timeout confopt.Duration `yaml:"timeout,omitempty" json:"timeout"`

	tlscfg.TLSConfig `yaml:",inline" json:""`
}

// NewHTTPClient returns a new *http.Client given a ClientConfig configuration and an error if any.
// Proxies are taken from the HTTP_PROXY, HTTPS_PROXY and NO_PROXY environment variables.
func NewHTTPClient(cfg ClientConfig) (*http.Client, error) {
	tlsConfig, err := tlscfg.NewTLSConfig(cfg.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("error on creating TLS config: %v", err)
	}

	d := &net.Dialer{Timeout: cfg.Timeout.Duration()}

	return &http.Client{
		Timeout: cfg.Timeout.Duration(),
		Transport: &http.Transport{
			TLSClientConfig:     tlsConfig,
			DialContext:         d.DialContext,
			TLSHandshakeTimeout: cfg.Timeout.Duration(),
			Proxy:               http.ProxyFromEnvironment,
		},
	}, nil
}
