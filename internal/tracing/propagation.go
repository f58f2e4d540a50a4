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
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

var w3c = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// W3CPropagator returns a TextMapPropagator that implements W3C Trace Context
// and Baggage.
func W3CPropagator() propagation.TextMapPropagator {
	return w3c
}

// InjectTraceContext sets traceparent (and baggage) on req from the span in
// its context. Requests without a recording span are left unchanged.
func InjectTraceContext(req *http.Request) {
	w3c.Inject(req.Context(), propagation.HeaderCarrier(req.Header))
}
