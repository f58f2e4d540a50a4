// Package httpclient provides the Connection used by every Exa API call.
//
// A Connection is an HTTP session bound to one API key and base URL. It
// composes transport layers to provide:
//   - The x-api-key header on every API request
//   - JSON request encoding (query string for GET and DELETE)
//   - JSON response decoding before status evaluation
//   - Translation of failure statuses into *errors.APIError
//   - Request logging with sanitized URLs and redacted headers
//   - Correlation ID propagation, otel spans and request metrics
//   - Optional client-side rate limiting
//
// # Usage
//
//	cfg := httpclient.DefaultConfig()
//	cfg.APIKey = os.Getenv("EXA_API_KEY")
//	conn, err := httpclient.New(cfg)
//	if err != nil {
//	    return err
//	}
//	resp, err := conn.Post(ctx, "/search", map[string]any{"query": "golang"})
//
// # Errors
//
// Statuses 400, 401, 403, 404, 422, 429, 500, 502, 503 and 504 return an
// *errors.APIError whose message is the body's "error" field, or
// "HTTP <status>" when absent. Any other status succeeds. Connect and total
// timeouts return an *errors.TransportError. Nothing is retried.
//
// # Debug mode
//
// With Config.Debug set, full request and response headers and bodies are
// logged at debug level with the API key masked. Otherwise bodies are
// logged at trace level.
package httpclient
