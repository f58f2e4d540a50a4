// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

func TestSetGet(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{key: "api.base_url", value: "https://proxy.example.com", want: "https://proxy.example.com"},
		{key: "api.timeout", value: "45s", want: "45s"},
		{key: "api.open_timeout", value: "2s", want: "2s"},
		{key: "api.rate_limit", value: "2.5", want: "2.5"},
		{key: "api.debug", value: "true", want: "true"},
		{key: "output.format", value: "json", want: "json"},
		{key: "trace.exporter", value: " console ", want: "console"},
		{key: "trace.insecure", value: "1", want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.Set(tt.key, tt.value))

			got, err := cfg.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestSet_Typed(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Set("api.timeout", "1m"))
	assert.Equal(t, time.Minute, cfg.API.Timeout)
}

func TestSet_Errors(t *testing.T) {
	cfg := Default()

	err := cfg.Set("api.timeout", "soon")
	var cfgErr *exaerrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "api.timeout", cfgErr.Key)

	err = cfg.Set("api.key", "x")
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Reason, "api.base_url")

	_, err = cfg.Get("nope")
	assert.Error(t, err)
}

func TestKeys_Sorted(t *testing.T) {
	keys := Keys()
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "trace.endpoint")
}

func TestLoadFile_IgnoresEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXA_TIMEOUT", "5s")

	cfg, err := LoadFile(writeFile(t, "api:\n  timeout: 12s\n"))
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, cfg.API.Timeout)
	assert.Equal(t, "https://api.exa.ai", cfg.API.BaseURL)
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(t.TempDir() + "/absent.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
