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

package contents

import (
	"net/http"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/exa/internal/commands/shared"
	"github.com/tombee/exa/internal/testing/clitest"
)

func commands() []*cobra.Command {
	return []*cobra.Command{NewCommand(), NewContextCommand()}
}

func TestContents(t *testing.T) {
	srv := clitest.NewServer(t).On(http.MethodPost, "/contents", http.StatusOK, map[string]any{
		"results": []any{map[string]any{"id": "https://a.example", "url": "https://a.example", "title": "A", "text": "body of a"}},
		"statuses": []any{
			map[string]any{"id": "https://a.example", "status": "success"},
			map[string]any{"id": "https://b.example", "status": "error"},
		},
	})

	res := clitest.Run(t, srv, commands(), "contents", "https://a.example", "https://b.example", "--max-chars", "100")
	require.NoError(t, res.Err)

	assert.Contains(t, res.Stdout, "body of a")
	assert.Contains(t, res.Stdout, "https://b.example: error")

	body := srv.Last().Body
	assert.Equal(t, []any{"https://a.example", "https://b.example"}, body["urls"])
	assert.Equal(t, map[string]any{"maxCharacters": float64(100)}, body["text"])
}

func TestContext(t *testing.T) {
	srv := clitest.NewServer(t).On(http.MethodPost, "/context", http.StatusOK, map[string]any{
		"query":    "errors.Join",
		"response": "```go\nerr := errors.Join(a, b)\n```",
	})

	res := clitest.Run(t, srv, commands(), "context", "errors.Join", "--tokens", "dynamic")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "errors.Join(a, b)")
	assert.Equal(t, "dynamic", srv.Last().Body["tokensNum"])

	res = clitest.Run(t, srv, commands(), "context", "errors.Join", "--tokens", "500")
	require.NoError(t, res.Err)
	assert.Equal(t, float64(500), srv.Last().Body["tokensNum"])
}

func TestContext_BadTokens(t *testing.T) {
	res := clitest.Run(t, nil, commands(), "context", "q", "--tokens", "lots")
	assert.Equal(t, shared.ExitUsage, shared.ExitCode(res.Err))
}
