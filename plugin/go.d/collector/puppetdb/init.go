// SPDX-License-Identifier: GPL-3.0-or-later

package puppetdb

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/netdata/puppetdb-plugin/pkg/confopt"
	"github.com/netdata/puppetdb-plugin/pkg/tlscfg"
	"github.com/netdata/puppetdb-plugin/pkg/web"
)

func (c *Collector) validateConfig() error {
	if c.Host == "" {
		return errors.New("host not set")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %d", c.Timeout)
	}
	return nil
}

func newHTTPConfig(s Settings) (web.HTTPConfig, error) {
	var err error
	tlsConfig := tlscfg.TLSConfig{}
	if s.Key != nil && s.Cert != nil {
		if tlsConfig.TLSKey, err = homedir.Expand(*s.Key); err != nil {
			return web.HTTPConfig{}, fmt.Errorf("key: %v", err)
		}
		if tlsConfig.TLSCert, err = homedir.Expand(*s.Cert); err != nil {
			return web.HTTPConfig{}, fmt.Errorf("cert: %v", err)
		}
	}
	if s.SSLVerify != nil {
		switch strings.ToLower(*s.SSLVerify) {
		case "", "true", "yes", "1":
		case "false", "no", "0":
			tlsConfig.InsecureSkipVerify = true
		default:
			if tlsConfig.TLSCA, err = homedir.Expand(*s.SSLVerify); err != nil {
				return web.HTTPConfig{}, fmt.Errorf("ssl verify: %v", err)
			}
		}
	}

	scheme := "http"
	if tlsConfig.Enabled() {
		scheme = "https"
	}

	return web.HTTPConfig{
		RequestConfig: web.RequestConfig{
			URL: fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(s.Host, strconv.Itoa(s.Port))),
		},
		ClientConfig: web.ClientConfig{
			Timeout:   confopt.FromSeconds(s.Timeout),
			TLSConfig: tlsConfig,
		},
	}, nil
}
