package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tombee/exa/internal/log"
	exaerrors "github.com/tombee/exa/pkg/errors"
)

func newTestConnection(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) *Connection {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "test-key-1234"
	cfg.BaseURL = server.URL
	cfg.Logger = log.Discard()
	for _, m := range mutate {
		m(&cfg)
	}

	conn, err := New(cfg)
	require.NoError(t, err)
	return conn
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidConfig(t *testing.T) {
	conn, err := New(Config{})

	require.Error(t, err)
	assert.Nil(t, conn)
	var cfgErr *exaerrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "api_key", cfgErr.Key)
}

func TestNew_TrimsBaseURL(t *testing.T) {
	conn, err := New(Config{APIKey: "k", BaseURL: "https://api.exa.ai/"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.exa.ai", conn.BaseURL())
	assert.Equal(t, 30*time.Second, conn.Config().Timeout)
}

func TestDo_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   exaerrors.Kind
	}{
		{400, exaerrors.KindBadRequest},
		{401, exaerrors.KindUnauthorized},
		{403, exaerrors.KindForbidden},
		{404, exaerrors.KindNotFound},
		{422, exaerrors.KindUnprocessableEntity},
		{429, exaerrors.KindTooManyRequests},
		{500, exaerrors.KindInternalServer},
		{502, exaerrors.KindBadGateway},
		{503, exaerrors.KindServiceUnavailable},
		{504, exaerrors.KindGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("HTTP %d", tt.status), func(t *testing.T) {
			conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]any{"error": "boom"})
			})

			resp, err := conn.Get(context.Background(), "/thing", nil)

			assert.Nil(t, resp)
			apiErr, ok := exaerrors.AsAPIError(err)
			require.True(t, ok, "expected *APIError, got %T", err)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "boom", apiErr.Message)
			assert.Equal(t, map[string]any{"error": "boom"}, apiErr.Body)
		})
	}
}

func TestDo_UnmappedStatusSucceeds(t *testing.T) {
	for _, status := range []int{200, 201, 202, 204, 418, 501} {
		t.Run(fmt.Sprintf("HTTP %d", status), func(t *testing.T) {
			conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
				if status == http.StatusNoContent {
					w.WriteHeader(status)
					return
				}
				writeJSON(w, status, map[string]any{"ok": true})
			})

			resp, err := conn.Get(context.Background(), "/thing", nil)

			require.NoError(t, err)
			assert.Equal(t, status, resp.StatusCode)
		})
	}
}

func TestDo_ErrorMessagePrecedence(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantMessage string
		wantBody    any
	}{
		{
			name:        "error field wins over message",
			contentType: "application/json",
			body:        `{"error":"X","message":"Y"}`,
			wantMessage: "X",
			wantBody:    map[string]any{"error": "X", "message": "Y"},
		},
		{
			name:        "message only falls back to status",
			contentType: "application/json",
			body:        `{"message":"Y"}`,
			wantMessage: "HTTP 400",
			wantBody:    map[string]any{"message": "Y"},
		},
		{
			name:        "non-string error field",
			contentType: "application/json",
			body:        `{"error":{"code":7}}`,
			wantMessage: "HTTP 400",
			wantBody:    map[string]any{"error": map[string]any{"code": float64(7)}},
		},
		{
			name:        "nested error message is not unwrapped",
			contentType: "application/json",
			body:        `{"error":{"message":"quota exceeded"}}`,
			wantMessage: "HTTP 400",
			wantBody:    map[string]any{"error": map[string]any{"message": "quota exceeded"}},
		},
		{
			name:        "plain text body",
			contentType: "text/plain",
			body:        "upstream exploded",
			wantMessage: "HTTP 400",
			wantBody:    "upstream exploded",
		},
		{
			name:        "malformed JSON body",
			contentType: "application/json",
			body:        `{"error":`,
			wantMessage: "HTTP 400",
			wantBody:    `{"error":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := conn.Post(context.Background(), "/search", map[string]any{"query": "q"})

			apiErr, ok := exaerrors.AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantBody, apiErr.Body)
			assert.Equal(t, []byte(tt.body), apiErr.RawBody)
		})
	}
}

func TestDo_SendsHeadersAndConvertedBody(t *testing.T) {
	var (
		gotKey, gotCT, gotAccept string
		gotBody                  map[string]any
	)
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotCT = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusCreated, map[string]any{"id": "ws_1"})
	})

	resp, err := conn.Post(context.Background(), "/websets/v0/websets", map[string]any{
		"external_id": "mine",
		"search":      map[string]any{"query": "q", "count": 5},
	})
	require.NoError(t, err)

	assert.Equal(t, "test-key-1234", gotKey)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "mine", gotBody["externalId"])
	assert.NotContains(t, gotBody, "external_id")
	assert.Equal(t, map[string]any{"id": "ws_1"}, resp.Body)

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "ws_1", out.ID)
}

func TestDo_QueryParameters(t *testing.T) {
	var gotQuery map[string][]string
	var gotBodyLen int64
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotBodyLen = r.ContentLength
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})

	type listParams struct {
		Cursor string `json:"cursor,omitempty"`
		Limit  int    `json:"limit,omitempty"`
	}

	_, err := conn.Get(context.Background(), "/websets/v0/websets", listParams{Cursor: "c1", Limit: 25})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, gotQuery["cursor"])
	assert.Equal(t, []string{"25"}, gotQuery["limit"])
	assert.Zero(t, gotBodyLen)

	_, err = conn.Delete(context.Background(), "/websets/v0/websets/ws_1", map[string]any{
		"external_id": "e",
		"ids":         []any{"a", "b"},
		"skip":        nil,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, gotQuery["externalId"])
	assert.Equal(t, []string{"a", "b"}, gotQuery["ids"])
	assert.NotContains(t, gotQuery, "skip")
}

func TestDo_PlainTextSuccess(t *testing.T) {
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "a,b\n1,2\n")
	})

	resp, err := conn.Get(context.Background(), "/export", nil)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", resp.Body)
}

func TestDo_MalformedJSONSuccessIsAnError(t *testing.T) {
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "{not json")
	})

	_, err := conn.Get(context.Background(), "/thing", nil)
	require.Error(t, err)
	_, isAPI := exaerrors.AsAPIError(err)
	assert.False(t, isAPI)
}

func TestDo_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	}, func(c *Config) {
		c.Timeout = 50 * time.Millisecond
	})
	defer close(release)

	_, err := conn.Get(context.Background(), "/slow", nil)

	var transportErr *exaerrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Timeout())
	_, isAPI := exaerrors.AsAPIError(err)
	assert.False(t, isAPI)
}

func TestDo_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	conn, err := New(Config{APIKey: "k", BaseURL: url, Logger: log.Discard()})
	require.NoError(t, err)

	_, err = conn.Get(context.Background(), "/search", nil)

	var transportErr *exaerrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "GET", transportErr.Method)
}

func TestDo_DebugDumpsRedactedExchange(t *testing.T) {
	var buf bytes.Buffer
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"results": []any{"r1"}})
	}, func(c *Config) {
		c.Debug = true
		c.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})

	_, err := conn.Post(context.Background(), "/search", map[string]any{"query": "golang"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "http request dump")
	assert.Contains(t, out, "http response dump")
	assert.Contains(t, out, "golang")
	assert.Contains(t, out, "r1")
	assert.Contains(t, out, "...1234")
	assert.NotContains(t, out, "test-key-1234")
}

func TestDo_NoDumpWithoutDebug(t *testing.T) {
	var buf bytes.Buffer
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	}, func(c *Config) {
		c.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})

	_, err := conn.Post(context.Background(), "/search", map[string]any{"query": "golang"})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "http request dump")
}

func TestDo_RecordsSpanAndMetrics(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "missing"})
	}, func(c *Config) {
		c.TracerProvider = tp
		c.MeterProvider = mp
	})

	_, err := conn.Get(context.Background(), "/websets/v0/websets/ws_x", nil)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanName, spans[0].Name())
	var status int64
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "http.response.status_code" {
			status = kv.Value.AsInt64()
		}
	}
	assert.EqualValues(t, 404, status)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names[MetricRequests])
	assert.True(t, names[MetricRequestDuration])
}

func TestStream_YieldsEvents(t *testing.T) {
	var gotAccept string
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		_, _ = io.WriteString(w, "data: {\"content\":\"Hel\"}\n\n")
		flusher.Flush()
		_, _ = io.WriteString(w, "data: not json\n\ndata: {\"content\":\"lo\"}\n\n")
		flusher.Flush()
	})

	reader, err := conn.Stream(context.Background(), http.MethodPost, "/answer", map[string]any{"query": "q", "stream": true})
	require.NoError(t, err)
	defer reader.Close()

	var parts []string
	for ev, err := range reader.All() {
		require.NoError(t, err)
		var chunk struct {
			Content string `json:"content"`
		}
		require.NoError(t, ev.Decode(&chunk))
		parts = append(parts, chunk.Content)
	}

	assert.Equal(t, "text/event-stream", gotAccept)
	assert.Equal(t, []string{"Hel", "lo"}, parts)
}

func TestStream_StallAfterHeadersTimesOut(t *testing.T) {
	release := make(chan struct{})
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"content\":\"Hel\"}\n\n")
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(c *Config) {
		c.Timeout = 50 * time.Millisecond
	})
	defer close(release)

	reader, err := conn.Stream(context.Background(), http.MethodPost, "/answer", map[string]any{"query": "q"})
	require.NoError(t, err)
	defer reader.Close()

	ev, err := reader.Next()
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"Hel"}`, string(ev.Data))

	done := make(chan error, 1)
	go func() {
		_, err := reader.Next()
		done <- err
	}()

	select {
	case err := <-done:
		var transportErr *exaerrors.TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.True(t, transportErr.Timeout())
		assert.ErrorIs(t, err, ErrStreamIdle)
	case <-time.After(5 * time.Second):
		t.Fatal("stalled stream was not abandoned")
	}
}

func TestStream_StallBeforeHeadersTimesOut(t *testing.T) {
	release := make(chan struct{})
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(c *Config) {
		c.Timeout = 50 * time.Millisecond
	})
	defer close(release)

	reader, err := conn.Stream(context.Background(), http.MethodPost, "/answer", nil)

	assert.Nil(t, reader)
	var transportErr *exaerrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Timeout())
}

func TestStream_OutlivesTimeoutWhileDataFlows(t *testing.T) {
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := range 5 {
			fmt.Fprintf(w, "data: {\"n\":%d}\n\n", i)
			flusher.Flush()
			time.Sleep(40 * time.Millisecond)
		}
	}, func(c *Config) {
		c.Timeout = 150 * time.Millisecond
	})

	reader, err := conn.Stream(context.Background(), http.MethodPost, "/answer", nil)
	require.NoError(t, err)
	defer reader.Close()

	count := 0
	for _, err := range reader.All() {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 5, count)
}

func TestStream_ErrorStatus(t *testing.T) {
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "bad key"})
	})

	reader, err := conn.Stream(context.Background(), http.MethodPost, "/answer", nil)

	assert.Nil(t, reader)
	require.ErrorIs(t, err, exaerrors.ErrUnauthorized)
	require.ErrorIs(t, err, exaerrors.ErrClient)
	assert.Contains(t, err.Error(), "bad key")
}

func TestUpload_OmitsAPIKey(t *testing.T) {
	var (
		gotKey, gotCT, gotMethod string
		gotBody                  []byte
	)
	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotCT = r.Header.Get("Content-Type")
		gotMethod = r.Method
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer upload.Close()

	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("API host must not be contacted")
	})

	_, err := conn.Upload(context.Background(), upload.URL+"/imp_1.csv?X-Amz-Signature=s", []byte("name\nacme\n"), "text/csv")
	require.NoError(t, err)

	assert.Empty(t, gotKey)
	assert.Equal(t, "text/csv", gotCT)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "name\nacme\n", string(gotBody))
}

func TestUpload_ErrorStatus(t *testing.T) {
	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, "<Error>SignatureDoesNotMatch</Error>")
	}))
	defer upload.Close()

	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := conn.Upload(context.Background(), upload.URL, []byte("x"), "text/csv")

	require.ErrorIs(t, err, exaerrors.ErrForbidden)
	apiErr, _ := exaerrors.AsAPIError(err)
	assert.True(t, strings.Contains(apiErr.Body.(string), "SignatureDoesNotMatch"))
}
