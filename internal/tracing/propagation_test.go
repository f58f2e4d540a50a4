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

package tracing

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInjectTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "exa.search")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.exa.ai/search", nil)
	require.NoError(t, err)

	InjectTraceContext(req)

	traceparent := req.Header.Get("Traceparent")
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
	assert.Contains(t, traceparent, span.SpanContext().SpanID().String())
}

func TestInjectTraceContext_NoSpan(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://api.exa.ai/", nil)
	require.NoError(t, err)

	InjectTraceContext(req)
	assert.Empty(t, req.Header.Get("Traceparent"))
}
