// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client performs HTTP requests and handles the response body for the caller.
type Client struct {
	httpClient *http.Client
	statusOK   func(code int) bool
}

// DoHTTP wraps an *http.Client. Only 200 OK is treated as a successful response.
func DoHTTP(cl *http.Client) *Client {
	return &Client{
		httpClient: cl,
		statusOK:   func(code int) bool { return code == http.StatusOK },
	}
}

// RequestJSON performs the request and decodes the JSON response body into in.
func (c *Client) RequestJSON(req *http.Request, in any) error {
	return c.Request(req, func(body io.Reader) error {
		if err := json.NewDecoder(body).Decode(in); err != nil {
			return fmt.Errorf("error on decoding response from '%s': %v", req.URL, err)
		}
		return nil
	})
}

// RequestBytes performs the request and returns the raw response body.
func (c *Client) RequestBytes(req *http.Request) ([]byte, error) {
	var bs []byte
	err := c.Request(req, func(body io.Reader) error {
		var err error
		if bs, err = io.ReadAll(body); err != nil {
			return fmt.Errorf("error on reading response from '%s': %v", req.URL, err)
		}
		return nil
	})
	return bs, err
}

// Request performs the request, checks the status code and passes the body to parse.
func (c *Client) Request(req *http.Request, parse func(body io.Reader) error) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error on HTTP request to '%s': %v", req.URL, err)
	}
	defer CloseBody(resp)

	if !c.statusOK(resp.StatusCode) {
		return fmt.Errorf("'%s' returned HTTP status code: %d", req.URL, resp.StatusCode)
	}

	if parse != nil {
		return parse(resp.Body)
	}
	return nil
}

// CloseBody drains and closes the response body so the connection can be reused.
func CloseBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
