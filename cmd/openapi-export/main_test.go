package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRunFormats(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantCode  int
		unmarshal func([]byte, any) error
		wantURL   string
	}{
		{"default json", nil, 0, json.Unmarshal, "http://10.10.0.3:8081"},
		{"yaml", []string{"-format", "yaml"}, 0, yaml.Unmarshal, "http://10.10.0.3:8081"},
		{"custom server", []string{"-server", "http://adapter.internal:8081"}, 0, json.Unmarshal, "http://adapter.internal:8081"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.Equal(t, tt.wantCode, run(tt.args, &out))

			var doc struct {
				OpenAPI string `json:"openapi" yaml:"openapi"`
				Servers []struct {
					URL string `json:"url" yaml:"url"`
				} `json:"servers" yaml:"servers"`
			}
			require.NoError(t, tt.unmarshal(out.Bytes(), &doc))
			assert.Equal(t, "3.0.3", doc.OpenAPI)
			require.Len(t, doc.Servers, 1)
			assert.Equal(t, tt.wantURL, doc.Servers[0].URL)
		})
	}
}

func TestRunRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"-format", "xml"}},
		{"unknown flag", []string{"-verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, 2, run(tt.args, &out))
			assert.Empty(t, out.String())
		})
	}
}
