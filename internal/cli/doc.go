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

/*
Package cli provides the root command for the exa CLI.

This package creates the root Cobra command and handles global concerns like
version information, persistent flags, and error handling. Individual commands
are implemented in the internal/commands subpackages.

# Command Tree

	exa
	├── search      Search the web
	├── answer      Answer a question with citations (--stream for SSE)
	├── contents    Fetch page contents for URLs
	├── context     Fetch code context for a query
	├── research    Create, inspect and wait on research tasks
	├── websets     Create, inspect and wait on websets
	├── auth        Store, remove and inspect the API key
	└── version     Show version

# Global Flags

	--api-key    API key (overrides EXA_API_KEY and the keychain)
	--base-url   API endpoint
	--timeout    Per-request timeout
	--debug      Log full requests and responses to stderr
	--json       Output in JSON format
	--jq         Filter JSON output with a jq expression
	--config     Path to config file (default: ~/.config/exa/config.yaml)
	--trace      Span exporter: none, console, otlp-http, otlp-grpc

# Error Handling

Exit codes:

  - Exit 0: Success
  - Exit 1: General error, transport failure or wait timeout
  - Exit 2: Invalid usage, validation or configuration error
  - Exit 3: API client error (4xx)
  - Exit 4: API server error (5xx)
*/
package cli
