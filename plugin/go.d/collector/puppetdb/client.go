// SPDX-License-Identifier: GPL-3.0-or-later

package puppetdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/netdata/puppetdb-plugin/pkg/web"

	"github.com/tidwall/gjson"
)

const (
	apiVersion = "v3"

	populationMBeanPrefix = "com.puppetlabs.puppetdb.query.population:type=default,name="

	metricNumNodes           = "num-nodes"
	metricNumResources       = "num-resources"
	metricAvgResourcesByNode = "avg-resources-per-node"
)

var (
	// https://www.puppet.com/docs/puppetdb/1.6/api/query/v3/metrics.html
	urlPathMBean = "/" + apiVersion + "/metrics/mbean/"
	// https://www.puppet.com/docs/puppetdb/1.6/api/query/v3/nodes.html
	urlPathNodes = "/" + apiVersion + "/nodes"
	// https://www.puppet.com/docs/puppetdb/1.6/api/query/v3/event-counts.html
	urlPathEventCounts  = "/" + apiVersion + "/event-counts"
	urlQueryEventCounts = url.Values{
		"query":        {`["=", "latest-report?", true]`},
		"summarize-by": {"certname"},
	}.Encode()
)

type (
	nodeResponse struct {
		Name             string `json:"name"`
		Deactivated      string `json:"deactivated"`
		CatalogTimestamp string `json:"catalog_timestamp"`
		FactsTimestamp   string `json:"facts_timestamp"`
		ReportTimestamp  string `json:"report_timestamp"`
	}
	eventCountResponse struct {
		SubjectType string `json:"subject-type"`
		Subject     struct {
			Title string `json:"title"`
		} `json:"subject"`
		Failures  int64 `json:"failures"`
		Successes int64 `json:"successes"`
		Noops     int64 `json:"noops"`
		Skips     int64 `json:"skips"`
	}
)

func newAPIClient(client *http.Client, request web.RequestConfig) *apiClient {
	return &apiClient{
		httpClient: client,
		request:    request,
	}
}

type apiClient struct {
	httpClient *http.Client
	request    web.RequestConfig
}

// populationMetric returns the Value of a population mbean.
func (a *apiClient) populationMetric(ctx context.Context, name string) (float64, error) {
	req, err := a.newRequest(ctx, urlPathMBean+populationMBeanPrefix+name)
	if err != nil {
		return 0, err
	}

	bs, err := web.DoHTTP(a.httpClient).RequestBytes(req)
	if err != nil {
		return 0, err
	}

	v := gjson.GetBytes(bs, "Value")
	if !v.Exists() {
		return 0, fmt.Errorf("unexpected response from '%s': no 'Value' field", req.URL)
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("unexpected response from '%s': 'Value' is not a number (%s)", req.URL, v.Raw)
	}

	return v.Float(), nil
}

func (a *apiClient) nodes(ctx context.Context) ([]nodeResponse, error) {
	req, err := a.newRequest(ctx, urlPathNodes)
	if err != nil {
		return nil, err
	}

	var nodes []nodeResponse
	if err := web.DoHTTP(a.httpClient).RequestJSON(req, &nodes); err != nil {
		return nil, err
	}

	return nodes, nil
}

func (a *apiClient) latestReportEventCounts(ctx context.Context) ([]eventCountResponse, error) {
	req, err := a.newRequest(ctx, urlPathEventCounts)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = urlQueryEventCounts

	var counts []eventCountResponse
	if err := web.DoHTTP(a.httpClient).RequestJSON(req, &counts); err != nil {
		return nil, err
	}

	return counts, nil
}

func (a *apiClient) newRequest(ctx context.Context, urlPath string) (*http.Request, error) {
	req, err := web.NewHTTPRequestWithPath(a.request, urlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request '%s': %v", a.request.URL, err)
	}
	return req.WithContext(ctx), nil
}
