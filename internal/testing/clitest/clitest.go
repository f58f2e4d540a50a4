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

// Package clitest runs exa commands against a fake API server.
package clitest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tombee/exa/internal/cli"
	"github.com/tombee/exa/internal/commands/shared"
)

// APIKey is the key every Run invocation passes with --api-key.
const APIKey = "test-key-1234"

// Request is one call received by the Server.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

type reply struct {
	status      int
	contentType string
	body        []byte
}

// Server is a scripted Exa API. Each route answers with its queued replies
// in order; the last reply repeats.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string][]reply
	requests []Request
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{routes: make(map[string][]reply)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// On queues JSON replies for method and path.
func (s *Server) On(method, path string, status int, bodies ...any) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	for _, b := range bodies {
		raw, err := json.Marshal(b)
		if err != nil {
			panic(fmt.Sprintf("clitest: marshal reply: %v", err))
		}
		s.routes[key] = append(s.routes[key], reply{status: status, contentType: "application/json", body: raw})
	}
	return s
}

// OnStream answers method and path with a server-sent event stream made of
// the given data payloads.
func (s *Server) OnStream(method, path string, payloads ...string) *Server {
	var buf bytes.Buffer
	for _, p := range payloads {
		fmt.Fprintf(&buf, "data: %s\n\n", p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.routes[key] = append(s.routes[key], reply{status: http.StatusOK, contentType: "text/event-stream", body: buf.Bytes()})
	return s
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Last returns the most recent call, or a zero Request.
func (s *Server) Last() Request {
	reqs := s.Requests()
	if len(reqs) == 0 {
		return Request{}
	}
	return reqs[len(reqs)-1]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	key := r.Method + " " + r.URL.Path
	queue := s.routes[key]
	var rep reply
	found := len(queue) > 0
	if found {
		rep = queue[0]
		if len(queue) > 1 {
			s.routes[key] = queue[1:]
		}
	}
	s.mu.Unlock()

	if !found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error":"no route for %s"}`, key)
		return
	}
	w.Header().Set("Content-Type", rep.contentType)
	w.WriteHeader(rep.status)
	_, _ = w.Write(rep.body)
}

// Result is the outcome of Run.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Run executes the root command with cmds attached, pointed at s. Config and
// keychain lookups are isolated to a temporary directory.
func Run(t *testing.T, s *Server, cmds []*cobra.Command, args ...string) Result {
	t.Helper()
	return RunWithInput(t, s, "", cmds, args...)
}

// RunWithInput is like Run with stdin reading from input.
func RunWithInput(t *testing.T, s *Server, input string, cmds []*cobra.Command, args ...string) Result {
	t.Helper()
	Isolate(t)

	root := cli.NewRootCommand()
	root.AddCommand(cmds...)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(input))

	full := append([]string{}, args...)
	if s != nil {
		full = append(full, "--api-key", APIKey, "--base-url", s.URL)
	}
	root.SetArgs(full)

	err := root.ExecuteContext(context.Background())
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// Isolate clears exa environment variables, points the config directory at
// a temporary directory and resets global flags after the test.
func Isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		"EXA_API_KEY", "EXA_BASE_URL", "EXA_TIMEOUT", "EXA_OPEN_TIMEOUT", "EXA_RATE_LIMIT",
		"EXA_DEBUG", "EXA_OUTPUT", "EXA_LOG_LEVEL", "EXA_TRACE_EXPORTER",
	} {
		t.Setenv(key, "")
	}
	shared.ResetFlagsForTest()
	t.Cleanup(shared.ResetFlagsForTest)
}
