package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tombee/exa/internal/log"
	exaerrors "github.com/tombee/exa/pkg/errors"
	paramconv "github.com/tombee/exa/pkg/params"
)

// Do issues one API request and returns the decoded response.
//
// For GET and DELETE, params are encoded into the query string. For POST,
// PATCH and PUT they are the JSON body. A map[string]any is passed through
// the parameter converter first; any other value is marshaled as-is.
//
// The body is decoded before the status is evaluated, so a failing status
// returns an *errors.APIError carrying the decoded body. Network failures
// and timeouts return an *errors.TransportError.
func (c *Connection) Do(ctx context.Context, method, path string, params any) (resp *Response, err error) {
	ctx, span := c.inst.start(ctx, method, path)
	start := time.Now()
	status := 0
	defer func() {
		c.inst.finish(ctx, span, method, status, err, time.Since(start))
	}()

	req, body, err := c.newRequest(ctx, method, path, params)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.dumpRequest(ctx, req, body)

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, c.transportError(req, err)
	}
	defer httpResp.Body.Close()
	status = httpResp.StatusCode

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.transportError(req, err)
	}
	c.dumpResponse(ctx, httpResp, raw)

	resp, err = decodeResponse(httpResp, raw)
	if err != nil {
		return nil, err
	}
	if err := raiseForStatus(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Get issues a GET request with params in the query string.
func (c *Connection) Get(ctx context.Context, path string, params any) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, params)
}

// Post issues a POST request with params as the JSON body.
func (c *Connection) Post(ctx context.Context, path string, params any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, params)
}

// Patch issues a PATCH request with params as the JSON body.
func (c *Connection) Patch(ctx context.Context, path string, params any) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, params)
}

// Put issues a PUT request with params as the JSON body.
func (c *Connection) Put(ctx context.Context, path string, params any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, params)
}

// Delete issues a DELETE request with params in the query string.
func (c *Connection) Delete(ctx context.Context, path string, params any) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, params)
}

// newRequest builds an authenticated API request. The encoded body is
// returned alongside for debug dumps.
func (c *Connection) newRequest(ctx context.Context, method, path string, params any) (*http.Request, []byte, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, nil, exaerrors.Wrapf(err, "building URL for %s", path)
	}

	var body []byte
	if hasBody(method) {
		body, err = encodeBody(params)
		if err != nil {
			return nil, nil, err
		}
	} else {
		q, err := encodeQuery(params)
		if err != nil {
			return nil, nil, err
		}
		if len(q) > 0 {
			merged := u.Query()
			for k, vs := range q {
				merged[k] = append(merged[k], vs...)
			}
			u.RawQuery = merged.Encode()
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, nil, exaerrors.Wrapf(err, "creating %s request", method)
	}

	req.Header.Set(APIKeyHeader, c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, body, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
		return true
	}
	return false
}

// encodeBody marshals params as JSON. nil params produce no body.
func encodeBody(params any) ([]byte, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		params = paramconv.Convert(p)
	case json.RawMessage:
		return p, nil
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, exaerrors.Wrap(err, "encoding request body")
	}
	return body, nil
}

// encodeQuery flattens params into query values. Slices repeat the key;
// nested objects are sent as JSON text.
func encodeQuery(params any) (url.Values, error) {
	var m map[string]any
	switch p := params.(type) {
	case nil:
		return nil, nil
	case url.Values:
		return p, nil
	case map[string]any:
		m = paramconv.Convert(p)
	default:
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, exaerrors.Wrap(err, "encoding query parameters")
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, exaerrors.Wrapf(err, "query parameters must be an object, got %T", params)
		}
	}

	q := make(url.Values, len(m))
	for k, v := range m {
		if err := addQueryValue(q, k, v); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func addQueryValue(q url.Values, key string, v any) error {
	switch val := v.(type) {
	case nil:
	case string:
		q.Add(key, val)
	case bool:
		q.Add(key, strconv.FormatBool(val))
	case float64:
		q.Add(key, strconv.FormatFloat(val, 'f', -1, 64))
	case int:
		q.Add(key, strconv.Itoa(val))
	case int64:
		q.Add(key, strconv.FormatInt(val, 10))
	case []string:
		for _, s := range val {
			q.Add(key, s)
		}
	case []any:
		for _, elem := range val {
			if err := addQueryValue(q, key, elem); err != nil {
				return err
			}
		}
	case map[string]any:
		raw, err := json.Marshal(val)
		if err != nil {
			return exaerrors.Wrapf(err, "encoding query parameter %s", key)
		}
		q.Add(key, string(raw))
	default:
		q.Add(key, fmt.Sprint(val))
	}
	return nil
}

func (c *Connection) transportError(req *http.Request, err error) error {
	return &exaerrors.TransportError{
		Method: req.Method,
		URL:    sanitizeURL(req.URL),
		Cause:  err,
	}
}

// bodyLevel is the level full bodies are logged at.
func (c *Connection) bodyLevel() slog.Level {
	if c.cfg.Debug {
		return slog.LevelDebug
	}
	return log.LevelTrace
}

func (c *Connection) dumpRequest(ctx context.Context, req *http.Request, body []byte) {
	level := c.bodyLevel()
	if !c.logger.Enabled(ctx, level) {
		return
	}
	c.logger.Log(ctx, level, "http request dump",
		log.MethodKey, req.Method,
		log.URLKey, sanitizeURL(req.URL),
		"headers", sanitizeHeaders(req.Header),
		"body", string(body),
	)
}

func (c *Connection) dumpResponse(ctx context.Context, resp *http.Response, body []byte) {
	level := c.bodyLevel()
	if !c.logger.Enabled(ctx, level) {
		return
	}
	c.logger.Log(ctx, level, "http response dump",
		log.StatusKey, resp.StatusCode,
		"headers", sanitizeHeaders(resp.Header),
		"body", string(body),
	)
}
