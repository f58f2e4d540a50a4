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

package diagnostics

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tombee/exa/internal/commands/shared"
	"github.com/tombee/exa/internal/config"
	"github.com/tombee/exa/internal/tracing"
	"github.com/tombee/exa/internal/testing/clitest"
)

func runDoctorJSON(t *testing.T, srv *clitest.Server, args ...string) (*DoctorResult, clitest.Result) {
	t.Helper()
	keyring.MockInit()

	res := clitest.Run(t, srv, []*cobra.Command{NewDoctorCommand()}, append([]string{"doctor", "--json"}, args...)...)

	var result DoctorResult
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &result), res.Stdout)
	return &result, res
}

func statuses(r *DoctorResult) map[string]string {
	out := make(map[string]string, len(r.Checks))
	for _, c := range r.Checks {
		out[c.Name] = c.Status
	}
	return out
}

func TestDoctor_Healthy(t *testing.T) {
	srv := clitest.NewServer(t).On(http.MethodGet, "/research/v1", http.StatusOK, map[string]any{"data": []any{}})

	result, res := runDoctorJSON(t, srv)
	require.NoError(t, res.Err)

	assert.True(t, result.OverallHealthy)
	assert.Equal(t, map[string]string{"config": CheckOK, "api key": CheckOK, "api": CheckOK}, statuses(result))
	assert.Equal(t, "1", srv.Last().Query.Get("limit"))
}

func TestDoctor_NoAPIKey(t *testing.T) {
	result, res := runDoctorJSON(t, nil)

	assert.Equal(t, shared.ExitFailure, shared.ExitCode(res.Err))
	assert.False(t, result.OverallHealthy)
	assert.Equal(t, CheckFail, statuses(result)["api key"])
	assert.Equal(t, CheckSkip, statuses(result)["api"])
}

func TestDoctor_KeyRejected(t *testing.T) {
	srv := clitest.NewServer(t).On(http.MethodGet, "/research/v1", http.StatusUnauthorized, map[string]any{"error": "invalid key"})

	result, res := runDoctorJSON(t, srv)
	require.Error(t, res.Err)

	var api Check
	for _, c := range result.Checks {
		if c.Name == "api" {
			api = c
		}
	}
	assert.Equal(t, CheckFail, api.Status)
	assert.Contains(t, api.Fix, "exa auth login")
}

func TestDoctor_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: xml\n"), 0o600))

	result, _ := runDoctorJSON(t, nil, "--config", path, "--api-key", "k-123456")

	assert.Equal(t, path, result.ConfigPath)
	assert.Equal(t, CheckFail, statuses(result)["config"])
	assert.Equal(t, CheckOK, statuses(result)["api key"])
}

func TestTraceCheck(t *testing.T) {
	cfg := config.Default()
	assert.Nil(t, traceCheck(cfg))

	cfg.Trace.Exporter = tracing.ExporterOTLPGRPC
	c := traceCheck(cfg)
	require.NotNil(t, c)
	assert.Equal(t, CheckWarn, c.Status)

	cfg.Trace.Endpoint = "collector:4317"
	assert.Nil(t, traceCheck(cfg))
}

func TestDoctor_Text(t *testing.T) {
	keyring.MockInit()
	srv := clitest.NewServer(t).On(http.MethodGet, "/research/v1", http.StatusOK, map[string]any{"data": []any{}})

	res := clitest.Run(t, srv, []*cobra.Command{NewDoctorCommand()}, "doctor")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "All checks passed")
	assert.Contains(t, res.Stdout, "...1234 from flag")
}
