package httpclient

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

// Response is a completed API exchange.
type Response struct {
	StatusCode int
	Header     http.Header

	// Body is the decoded payload: map[string]any, []any or a scalar for
	// JSON content, a string otherwise, nil when empty.
	Body any

	// RawBody is the undecoded payload.
	RawBody []byte
}

// Decode unmarshals the raw JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.RawBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.RawBody, v); err != nil {
		return exaerrors.Wrapf(err, "decoding response into %T", v)
	}
	return nil
}

// decodeResponse builds a Response, decoding JSON bodies. A malformed JSON
// body on an error status falls back to the raw text so the status can
// still be reported.
func decodeResponse(hr *http.Response, raw []byte) (*Response, error) {
	resp := &Response{
		StatusCode: hr.StatusCode,
		Header:     hr.Header,
		RawBody:    raw,
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return resp, nil
	}

	if isJSONContentType(hr.Header.Get("Content-Type")) {
		var v any
		err := json.Unmarshal(raw, &v)
		if err == nil {
			resp.Body = v
			return resp, nil
		}
		if hr.StatusCode < 400 {
			return nil, exaerrors.Wrapf(err, "decoding JSON response (HTTP %d)", hr.StatusCode)
		}
	}

	resp.Body = string(raw)
	return resp, nil
}

func isJSONContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
