// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPRequest(t *testing.T) {
	tests := map[string]struct {
		req     RequestConfig
		wantErr bool
	}{
		"empty config": {
			req: RequestConfig{},
		},
		"base url": {
			req: RequestConfig{URL: "http://127.0.0.1:8080/v3/nodes"},
		},
		"invalid URL": {
			req:     RequestConfig{URL: "://invalid-url"},
			wantErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			req, err := NewHTTPRequest(test.req)

			if test.wantErr {
				assert.Error(t, err)
				assert.Nil(t, req)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, test.req.URL, req.URL.String())
			assert.Nil(t, req.Body)
			assert.True(t, strings.HasPrefix(req.Header.Get("User-Agent"), "Netdata "))
			assert.Equal(t, "application/json", req.Header.Get("Accept"))
		})
	}
}

func TestNewHTTPRequestWithPath(t *testing.T) {
	tests := map[string]struct {
		config  RequestConfig
		path    string
		wantURL string
		wantErr bool
	}{
		"base url with path": {
			config:  RequestConfig{URL: "http://127.0.0.1:8080"},
			path:    "/v3/nodes",
			wantURL: "http://127.0.0.1:8080/v3/nodes",
		},
		"url with trailing slash": {
			config:  RequestConfig{URL: "http://127.0.0.1:8080/"},
			path:    "v3/nodes",
			wantURL: "http://127.0.0.1:8080/v3/nodes",
		},
		"mbean name keeps its separators": {
			config:  RequestConfig{URL: "http://127.0.0.1:8080"},
			path:    "/v3/metrics/mbean/com.puppetlabs.puppetdb.query.population:type=default,name=num-nodes",
			wantURL: "http://127.0.0.1:8080/v3/metrics/mbean/com.puppetlabs.puppetdb.query.population:type=default,name=num-nodes",
		},
		"invalid base URL": {
			config:  RequestConfig{URL: "://invalid"},
			path:    "/v3/nodes",
			wantErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			req, err := NewHTTPRequestWithPath(test.config, test.path)

			if test.wantErr {
				assert.Error(t, err)
				assert.Nil(t, req)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.wantURL, req.URL.String())
		})
	}
}
