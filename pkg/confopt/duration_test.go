// SPDX-License-Identifier: GPL-3.0-or-later

package confopt

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestFromSeconds(t *testing.T) {
	assert.Equal(t, 20*time.Second, FromSeconds(20).Duration())
	assert.Equal(t, time.Duration(0), FromSeconds(0).Duration())
}

func TestDuration_MarshalYAML(t *testing.T) {
	tests := map[string]struct {
		d    Duration
		want string
	}{
		"1 second":    {d: Duration(time.Second), want: "1"},
		"1.5 seconds": {d: Duration(time.Second + time.Millisecond*500), want: "1.5"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			bs, err := yaml.Marshal(&test.d)
			require.NoError(t, err)

			assert.Equal(t, test.want, strings.TrimSpace(string(bs)))
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	tests := map[string]struct {
		d    Duration
		want string
	}{
		"1 second":    {d: Duration(time.Second), want: "1"},
		"1.5 seconds": {d: Duration(time.Second + time.Millisecond*500), want: "1.5"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			bs, err := json.Marshal(&test.d)
			require.NoError(t, err)

			assert.Equal(t, test.want, strings.TrimSpace(string(bs)))
		})
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := map[string]struct {
		input any
		want  time.Duration
	}{
		"duration":     {input: "300ms", want: 300 * time.Millisecond},
		"string int":   {input: "1", want: time.Second},
		"string float": {input: "1.5", want: 1500 * time.Millisecond},
		"int":          {input: 2, want: 2 * time.Second},
		"float":        {input: 2.5, want: 2500 * time.Millisecond},
	}

	for name, test := range tests {
		name = fmt.Sprintf("%s (%v)", name, test.input)
		t.Run(name, func(t *testing.T) {
			data, err := yaml.Marshal(test.input)
			require.NoError(t, err)

			var d Duration
			require.NoError(t, yaml.Unmarshal(data, &d))
			assert.Equal(t, test.want, d.Duration())
		})
	}
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := map[string]struct {
		input string
		want  time.Duration
	}{
		"duration":   {input: `{"d":"300ms"}`, want: 300 * time.Millisecond},
		"string int": {input: `{"d":"1"}`, want: time.Second},
		"int":        {input: `{"d":2}`, want: 2 * time.Second},
		"float":      {input: `{"d":2.5}`, want: 2500 * time.Millisecond},
	}

	type duration struct {
		D Duration `json:"d"`
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var d duration
			require.NoError(t, json.Unmarshal([]byte(test.input), &d))
			assert.Equal(t, test.want, d.D.Duration())
		})
	}

	t.Run("garbage", func(t *testing.T) {
		var d duration
		assert.Error(t, json.Unmarshal([]byte(`{"d":"soon"}`), &d))
	})
}
