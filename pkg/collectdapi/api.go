// SPDX-License-Identifier: GPL-3.0-or-later

package collectdapi

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
)

// API implements the collectd plain text protocol as read by the exec plugin from a child's stdout.
// See: https://collectd.org/wiki/index.php/Plain_text_protocol
type API struct {
	io.Writer
}

// New creates a new API instance. Panics if the provided writer is nil.
func New(w io.Writer) *API {
	if w == nil {
		panic("writer cannot be nil")
	}
	return &API{w}
}

// Identifier names a value list: host "/" plugin ["-" plugin instance] "/" type ["-" type instance].
type Identifier struct {
	Host           string
	Plugin         string
	PluginInstance string
	Type           string
	TypeInstance   string
}

func (id Identifier) String() string {
	var b strings.Builder

	b.WriteString(id.Host)
	b.WriteByte('/')
	b.WriteString(id.Plugin)
	if id.PluginInstance != "" {
		b.WriteByte('-')
		b.WriteString(id.PluginInstance)
	}
	b.WriteByte('/')
	b.WriteString(id.Type)
	if id.TypeInstance != "" {
		b.WriteByte('-')
		b.WriteString(id.TypeInstance)
	}

	return b.String()
}

func (id Identifier) validate() error {
	switch {
	case id.Host == "":
		return errors.New("identifier: empty host")
	case id.Plugin == "":
		return errors.New("identifier: empty plugin")
	case id.Type == "":
		return errors.New("identifier: empty type")
	}
	return nil
}

// PUTVAL submits one value list stamped with the current time ("N").
// A non-positive interval omits the interval option so the daemon applies its own.
func (a *API) PUTVAL(id Identifier, interval int, values ...float64) error {
	if err := id.validate(); err != nil {
		return err
	}
	if len(values) == 0 {
		return errors.New("no values")
	}

	var b strings.Builder

	b.WriteString("PUTVAL ")
	b.WriteString(strconv.Quote(id.String()))
	if interval > 0 {
		b.WriteString(" interval=")
		b.WriteString(strconv.Itoa(interval))
	}
	b.WriteString(" N")
	for _, v := range values {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte('\n')

	_, err := io.WriteString(a, b.String())
	return err
}

// EnvHostname returns the hostname the exec plugin exported to the child, falling back to os.Hostname.
func EnvHostname() string {
	if v := os.Getenv("COLLECTD_HOSTNAME"); v != "" {
		return v
	}
	if v, err := os.Hostname(); err == nil {
		return v
	}
	return "localhost"
}

// EnvInterval returns the collection interval in seconds exported by the exec plugin, or 0 if unset.
func EnvInterval() int {
	v, err := strconv.ParseFloat(os.Getenv("COLLECTD_INTERVAL"), 64)
	if err != nil || v <= 0 {
		return 0
	}
	if n := int(v); n > 0 {
		return n
	}
	return 1
}
