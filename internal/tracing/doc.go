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
Package tracing provides correlation IDs and OpenTelemetry setup for the exa
CLI.

# Correlation IDs

Every command runs with a correlation ID in its context (see EnsureContext).
The HTTP transport sends it as X-Correlation-ID on each request, so all the
probes of one polling loop can be matched up in API logs.

# Spans

Setup installs a tracer provider for the configured exporter:

  - none: spans are not recorded (default)
  - console: pretty-printed JSON on stderr
  - otlp-http, otlp-grpc: sent to an OpenTelemetry collector

Span attributes pass through the redact package before export. Outbound
requests carry W3C traceparent headers when a span is active.
*/
package tracing
