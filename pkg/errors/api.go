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

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the category of an API failure. The set is closed: every
// Kind corresponds to exactly one HTTP status code.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindUnprocessableEntity
	KindTooManyRequests
	KindInternalServer
	KindBadGateway
	KindServiceUnavailable
	KindGatewayTimeout
)

// Sentinels for errors.Is matching. An *APIError matches its own kind
// sentinel and either ErrClient or ErrServer.
var (
	ErrClient = errors.New("client error")
	ErrServer = errors.New("server error")

	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrUnprocessableEntity = errors.New("unprocessable entity")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServer      = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrGatewayTimeout      = errors.New("gateway timeout")
)

// statusKinds is the complete status to kind table. Statuses not listed here
// are never turned into an APIError.
var statusKinds = map[int]Kind{
	http.StatusBadRequest:          KindBadRequest,
	http.StatusUnauthorized:        KindUnauthorized,
	http.StatusForbidden:           KindForbidden,
	http.StatusNotFound:            KindNotFound,
	http.StatusUnprocessableEntity: KindUnprocessableEntity,
	http.StatusTooManyRequests:     KindTooManyRequests,
	http.StatusInternalServerError: KindInternalServer,
	http.StatusBadGateway:          KindBadGateway,
	http.StatusServiceUnavailable:  KindServiceUnavailable,
	http.StatusGatewayTimeout:      KindGatewayTimeout,
}

// KindForStatus looks up the error kind for an HTTP status code.
// ok is false for any status that does not represent an API error.
func KindForStatus(status int) (kind Kind, ok bool) {
	kind, ok = statusKinds[status]
	return kind, ok
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUnprocessableEntity:
		return "unprocessable_entity"
	case KindTooManyRequests:
		return "too_many_requests"
	case KindInternalServer:
		return "internal_server_error"
	case KindBadGateway:
		return "bad_gateway"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindGatewayTimeout:
		return "gateway_timeout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsClientError reports whether the kind is a 4xx failure.
func (k Kind) IsClientError() bool {
	return k >= KindBadRequest && k <= KindTooManyRequests
}

// IsServerError reports whether the kind is a 5xx failure.
func (k Kind) IsServerError() bool {
	return k >= KindInternalServer && k <= KindGatewayTimeout
}

func (k Kind) sentinel() error {
	switch k {
	case KindBadRequest:
		return ErrBadRequest
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindUnprocessableEntity:
		return ErrUnprocessableEntity
	case KindTooManyRequests:
		return ErrTooManyRequests
	case KindInternalServer:
		return ErrInternalServer
	case KindBadGateway:
		return ErrBadGateway
	case KindServiceUnavailable:
		return ErrServiceUnavailable
	case KindGatewayTimeout:
		return ErrGatewayTimeout
	default:
		return nil
	}
}

// APIError is returned when the API answers with a mapped error status.
type APIError struct {
	// Kind is the error category derived from StatusCode
	Kind Kind

	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Message is taken from the "error" field of a JSON body, or "HTTP <status>"
	Message string

	// Body is the decoded response body (map, slice, scalar or raw string)
	Body any

	// RawBody holds the undecoded response bytes
	RawBody []byte

	// Header holds the response headers
	Header http.Header
}

// NewAPIError builds the error for status, or returns nil when the status is
// not an error status.
func NewAPIError(status int, message string, body any, rawBody []byte, header http.Header) *APIError {
	kind, ok := KindForStatus(status)
	if !ok {
		return nil
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &APIError{
		Kind:       kind,
		StatusCode: status,
		Message:    message,
		Body:       body,
		RawBody:    rawBody,
		Header:     header,
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("exa api %s [HTTP %d]: %s", e.Kind, e.StatusCode, e.Message)
}

// Unwrap exposes the kind and class sentinels to errors.Is.
func (e *APIError) Unwrap() []error {
	class := ErrServer
	if e.Kind.IsClientError() {
		class = ErrClient
	}
	if s := e.Kind.sentinel(); s != nil {
		return []error{s, class}
	}
	return []error{class}
}

// RequestID returns the server-assigned request id header, if present.
func (e *APIError) RequestID() string {
	if e.Header == nil {
		return ""
	}
	return e.Header.Get("X-Request-Id")
}

// ErrorType implements ErrorClassifier.
func (e *APIError) ErrorType() string {
	if e.Kind.IsClientError() {
		return "client"
	}
	return "server"
}

// IsRetryable implements ErrorClassifier. Rate limiting and 5xx failures are
// safe for a caller to retry; nothing in this module retries automatically.
func (e *APIError) IsRetryable() bool {
	return e.Kind == KindTooManyRequests || e.Kind.IsServerError()
}
