package httpclient

import (
	exaerrors "github.com/tombee/exa/pkg/errors"
)

// raiseForStatus returns the APIError for a mapped failure status, or nil.
// It runs after body decoding so the error carries the decoded payload.
func raiseForStatus(resp *Response) error {
	if _, ok := exaerrors.KindForStatus(resp.StatusCode); !ok {
		return nil
	}
	return exaerrors.NewAPIError(resp.StatusCode, errorMessage(resp.Body), resp.Body, resp.RawBody, resp.Header)
}

// errorMessage prefers the body's "error" string field. An empty result
// makes NewAPIError fall back to "HTTP <status>".
func errorMessage(body any) string {
	m, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := m["error"].(string)
	return msg
}
