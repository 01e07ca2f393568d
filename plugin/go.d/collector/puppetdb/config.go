// SPDX-License-Identifier: GPL-3.0-or-later

package puppetdb

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/netdata/puppetdb-plugin/logger"

	"gopkg.in/yaml.v2"
)

const (
	keyHost         = "Host"
	keyPort         = "Port"
	keySSLVerify    = "SSL_VERIFY"
	keyKey          = "Key"
	keyCert         = "CERT"
	keyTimeout      = "Timeout"
	keyUnreportTime = "UnreportTime"
	keyVerbose      = "Verbose"
)

const (
	defaultHost         = "localhost"
	defaultPort         = 8080
	defaultTimeout      = 20
	defaultUnreportTime = 25
)

// Settings is the PuppetDB connection and reporting configuration.
// It is built once by Configure and is read-only afterwards.
type Settings struct {
	Host         string  `yaml:"Host" json:"Host"`
	Port         int     `yaml:"Port" json:"Port"`
	SSLVerify    *string `yaml:"SSL_VERIFY,omitempty" json:"SSL_VERIFY,omitempty"`
	Key          *string `yaml:"Key,omitempty" json:"Key,omitempty"`
	Cert         *string `yaml:"CERT,omitempty" json:"CERT,omitempty"`
	Timeout      int     `yaml:"Timeout" json:"Timeout"`
	UnreportTime int     `yaml:"UnreportTime" json:"UnreportTime"`
	Verbose      bool    `yaml:"Verbose" json:"Verbose"`
}

// DefaultSettings returns the settings used for every key absent from the configuration block.
func DefaultSettings() Settings {
	return Settings{
		Host:         defaultHost,
		Port:         defaultPort,
		Timeout:      defaultTimeout,
		UnreportTime: defaultUnreportTime,
	}
}

func (s Settings) String() string {
	return fmt.Sprintf("host=%s, port=%d, ssl=%s, key=%s, cert=%s, timeout=%d",
		s.Host, s.Port, optString(s.SSLVerify), optString(s.Key), optString(s.Cert), s.Timeout)
}

// ConfigEntry is one configuration block child: a key and its list of values.
type ConfigEntry struct {
	Key    string
	Values []any
}

// DecodeBlock decodes a YAML mapping into configuration entries, keeping document order.
// Scalars become one-element value lists, sequences keep all their items.
func DecodeBlock(data []byte) ([]ConfigEntry, error) {
	var ms yaml.MapSlice
	if err := yaml.Unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("decode configuration block: %v", err)
	}

	entries := make([]ConfigEntry, 0, len(ms))
	for _, item := range ms {
		entries = append(entries, ConfigEntry{
			Key:    fmt.Sprint(item.Key),
			Values: entryValues(item.Value),
		})
	}
	return entries, nil
}

func entryValues(v any) []any {
	switch v := v.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

// Configure applies the entries on top of DefaultSettings.
// Unknown keys are reported and skipped, malformed values abort configuration.
func Configure(entries []ConfigEntry, log *logger.Logger) (Settings, error) {
	s := DefaultSettings()

	for _, e := range entries {
		if !isKnownKey(e.Key) {
			log.Warningf("Unknown config key: %s.", e.Key)
			continue
		}
		if len(e.Values) == 0 {
			return Settings{}, fmt.Errorf("config key '%s': no value", e.Key)
		}
		if err := s.apply(e.Key, e.Values[0]); err != nil {
			return Settings{}, fmt.Errorf("config key '%s': %v", e.Key, err)
		}
	}

	if s.Verbose {
		log.Infof(verbosePrefix+"Configured with %s", s)
	}

	return s, nil
}

func (s *Settings) apply(key string, v any) error {
	var err error
	switch key {
	case keyHost:
		s.Host = asString(v)
	case keyPort:
		s.Port, err = asInt(v)
	case keySSLVerify:
		s.SSLVerify = ptr(asString(v))
	case keyKey:
		s.Key = ptr(asString(v))
	case keyCert:
		s.Cert = ptr(asString(v))
	case keyTimeout:
		s.Timeout, err = asInt(v)
	case keyUnreportTime:
		s.UnreportTime, err = asInt(v)
	case keyVerbose:
		s.Verbose, err = asBool(v)
	}
	return err
}

func isKnownKey(key string) bool {
	switch key {
	case keyHost, keyPort, keySSLVerify, keyKey, keyCert, keyTimeout, keyUnreportTime, keyVerbose:
		return true
	}
	return false
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func asInt(v any) (int, error) {
	switch v := v.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer '%s'", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid integer '%v' (%T)", v, v)
	}
}

func asBool(v any) (bool, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case uint64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("invalid boolean '%s'", v)
		}
		return b, nil
	default:
		return false, errors.New("invalid boolean")
	}
}

func optString(s *string) string {
	if s == nil {
		return "none"
	}
	return *s
}

func ptr[T any](v T) *T { return &v }
