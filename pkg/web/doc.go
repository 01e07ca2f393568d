// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package web contains the HTTP request and client configurations of a collector.
HTTPConfig embeds both of them.
DoHTTP wraps an *http.Client with the shared response handling: status code checks,
body draining and JSON decoding.
*/
package web
