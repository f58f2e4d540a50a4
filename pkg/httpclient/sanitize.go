package httpclient

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/tombee/exa/internal/log"
)

// sensitiveParams contains query parameter names that should be redacted from logs.
// These are matched case-insensitively.
var sensitiveParams = []string{
	"api_key",
	"apikey",
	"token",
	"password",
	"auth",
	"secret",
	"key",
	"credential",
	"signature",
}

// sensitiveHeaders are masked in debug dumps. Canonical form.
var sensitiveHeaders = map[string]bool{
	"X-Api-Key":           true,
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
}

// sanitizeURL removes sensitive query parameters from URLs before logging.
// Presigned upload URLs carry their credentials in the query string.
func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	q := u.Query()
	for param := range q {
		if isSensitiveParam(param) {
			q.Set(param, "[REDACTED]")
		}
	}

	safe := *u
	safe.RawQuery = q.Encode()
	safe.User = nil
	return safe.String()
}

// isSensitiveParam checks if a parameter name matches the sensitive list.
// Comparison is case-insensitive to catch variants like "API_KEY", "Api_Key", etc.
func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// sanitizeHeaders returns a copy of h with credential headers masked.
// The API key keeps its last four characters so operators can tell keys apart.
func sanitizeHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		canonical := http.CanonicalHeaderKey(name)
		if !sensitiveHeaders[canonical] {
			out[canonical] = append([]string(nil), values...)
			continue
		}
		masked := make([]string, len(values))
		for i, v := range values {
			if canonical == "X-Api-Key" {
				masked[i] = log.SanitizeAPIKey(v)
			} else {
				masked[i] = "[REDACTED]"
			}
		}
		out[canonical] = masked
	}
	return out
}
