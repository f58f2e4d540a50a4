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

package research

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/exa/internal/commands/shared"
	"github.com/tombee/exa/internal/testing/clitest"
)

func commands() []*cobra.Command {
	return []*cobra.Command{NewCommand()}
}

func task(status string) map[string]any {
	t := map[string]any{"researchId": "r_123", "status": status, "instructions": "compare frameworks", "model": "exa-research"}
	if status == "completed" {
		t["output"] = map[string]any{"content": "Gin is fastest."}
	}
	return t
}

func TestCreate(t *testing.T) {
	srv := clitest.NewServer(t).On(http.MethodPost, "/research/v1", http.StatusCreated, task("pending"))

	res := clitest.Run(t, srv, commands(), "research", "create", "compare", "frameworks", "--model", "exa-research")
	require.NoError(t, res.Err)

	assert.Contains(t, res.Stdout, "r_123")
	body := srv.Last().Body
	assert.Equal(t, "compare frameworks", body["instructions"])
	assert.Equal(t, "exa-research", body["model"])
}

func TestCreate_Schema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"object","properties":{"name":{"type":"string"}}}`), 0o600))
	srv := clitest.NewServer(t).On(http.MethodPost, "/research/v1", http.StatusCreated, task("pending"))

	res := clitest.Run(t, srv, commands(), "research", "create", "x", "--schema", path)
	require.NoError(t, res.Err)
	assert.Equal(t, "object", srv.Last().Body["outputSchema"].(map[string]any)["type"])
}

func TestCreate_BadSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1,2]`), 0o600))

	res := clitest.Run(t, nil, commands(), "research", "create", "x", "--schema", path)
	assert.Equal(t, shared.ExitUsage, shared.ExitCode(res.Err))
}

func TestCreate_WaitPollsUntilCompleted(t *testing.T) {
	srv := clitest.NewServer(t).
		On(http.MethodPost, "/research/v1", http.StatusCreated, task("pending")).
		On(http.MethodGet, "/research/v1/r_123", http.StatusOK, task("running"), task("completed"))

	res := clitest.Run(t, srv, commands(), "research", "create", "x", "--wait", "--poll-interval", "1ms")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "Gin is fastest.")

	var gets int
	for _, r := range srv.Requests() {
		if r.Method == http.MethodGet {
			gets++
		}
	}
	assert.Equal(t, 2, gets)
}

func TestWait_Failed(t *testing.T) {
	srv := clitest.NewServer(t).On(http.MethodGet, "/research/v1/r_123", http.StatusOK, task("failed"))

	res := clitest.Run(t, srv, commands(), "research", "wait", "r_123")
	require.Error(t, res.Err)
	assert.Equal(t, shared.ExitFailure, shared.ExitCode(res.Err))
	assert.Contains(t, res.Stdout, "failed")
}

func TestWait_Timeout(t *testing.T) {
	srv := clitest.NewServer(t).On(http.MethodGet, "/research/v1/r_123", http.StatusOK, task("running"))

	res := clitest.Run(t, srv, commands(), "research", "wait", "r_123", "--max-wait", "0s", "--json")
	require.Error(t, res.Err)
	assert.Equal(t, shared.ErrorCodeTimeout, shared.ErrorCode(res.Err))
}

func TestList_All(t *testing.T) {
	srv := clitest.NewServer(t).On(http.MethodGet, "/research/v1", http.StatusOK,
		map[string]any{"data": []any{task("completed")}, "hasMore": true, "nextCursor": "c2"},
		map[string]any{"data": []any{task("running")}, "hasMore": false},
	)

	res := clitest.Run(t, srv, commands(), "research", "list", "--all", "--limit", "1", "--jq", "[.data[].status]")
	require.NoError(t, res.Err)
	assert.Equal(t, `["completed","running"]`+"\n", res.Stdout)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "1", reqs[0].Query.Get("limit"))
	assert.Equal(t, "c2", reqs[1].Query.Get("cursor"))
}

func TestGet_NotFound(t *testing.T) {
	srv := clitest.NewServer(t).On(http.MethodGet, "/research/v1/missing", http.StatusNotFound, map[string]any{"error": "not found"})

	res := clitest.Run(t, srv, commands(), "research", "get", "missing")
	assert.Equal(t, shared.ExitClientError, shared.ExitCode(res.Err))
}
