// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/netdata/puppetdb-plugin/pkg/buildinfo"
	"github.com/netdata/puppetdb-plugin/pkg/executable"
)

// RequestConfig is the HTTP request part of HTTPConfig.
type RequestConfig struct {
	// URL is the base URL, API paths are joined onto it.
	URL string `yaml:"url" json:"url"`
}

var userAgent = fmt.Sprintf("Netdata %s.plugin/%s", executable.Name, buildinfo.Version)

// NewHTTPRequest returns a new GET *http.Request for the configured URL.
func NewHTTPRequest(cfg RequestConfig) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// NewHTTPRequestWithPath creates a new HTTP request with the given path appended to the base URL.
func NewHTTPRequestWithPath(cfg RequestConfig, urlPath string) (*http.Request, error) {
	v, err := url.JoinPath(cfg.URL, urlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to join URL path: %w", err)
	}
	cfg.URL = v

	return NewHTTPRequest(cfg)
}
