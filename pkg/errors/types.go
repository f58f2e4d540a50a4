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
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ValidationError represents a request that failed pre-flight validation.
// It is raised before any network call is made.
type ValidationError struct {
	// Field is the dotted path of the offending field (e.g. "search.entity.description")
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ErrorType implements ErrorClassifier.
func (e *ValidationError) ErrorType() string { return "validation" }

// IsRetryable implements ErrorClassifier. Validation failures never succeed on retry.
func (e *ValidationError) IsRetryable() bool { return false }

// ConfigurationError represents missing or invalid local setup, such as an
// absent API key or an unparsable config file. It never leaves the process.
type ConfigurationError struct {
	// Key is the configuration key that has the problem (e.g., "api_key", "base_url")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := "config error"
	if e.Key != "" {
		msg = fmt.Sprintf("config error at %s", e.Key)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *ConfigurationError) ErrorType() string { return "configuration" }

// IsRetryable implements ErrorClassifier.
func (e *ConfigurationError) IsRetryable() bool { return false }

// IsUserVisible implements UserVisibleError.
func (e *ConfigurationError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *ConfigurationError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *ConfigurationError) Suggestion() string {
	if e.Key == "api_key" {
		return "pass --api-key, set EXA_API_KEY, or run 'exa auth login'"
	}
	return ""
}

// PollTimeoutError is returned when a polling loop exceeds its deadline.
// The remote operation may still complete later; the error only reflects
// how long the caller was willing to wait.
type PollTimeoutError struct {
	// Operation describes what was being waited on (e.g., "webset ws_123 to become idle")
	Operation string

	// Elapsed is how long the loop ran before giving up
	Elapsed time.Duration

	// MaxDuration is the configured deadline
	MaxDuration time.Duration

	// LastStatus is the last status reported by the probe, if any
	LastStatus string
}

// Error implements the error interface.
func (e *PollTimeoutError) Error() string {
	op := e.Operation
	if op == "" {
		op = "polling"
	}
	msg := fmt.Sprintf("%s timed out after %.2f seconds", op, e.Elapsed.Seconds())
	if e.LastStatus != "" {
		msg = fmt.Sprintf("%s (last status: %s)", msg, e.LastStatus)
	}
	return msg
}

// ErrorType implements ErrorClassifier.
func (e *PollTimeoutError) ErrorType() string { return "timeout" }

// IsRetryable implements ErrorClassifier. Waiting again may observe completion.
func (e *PollTimeoutError) IsRetryable() bool { return true }

// TransportError is an I/O failure that happened before a complete HTTP
// response was received: connection refused, connect timeout, total timeout,
// or a cancelled context. It is never an APIError.
type TransportError struct {
	// Method and URL identify the failed request (URL is sanitized)
	Method string
	URL    string

	// Cause is the underlying net/http error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport error: %v", e.Method, e.URL, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the failure was a connect or total timeout.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Cause, &netErr) && netErr.Timeout()
}

// ErrorType implements ErrorClassifier.
func (e *TransportError) ErrorType() string { return "transport" }

// IsRetryable implements ErrorClassifier. Cancellation by the caller is final.
func (e *TransportError) IsRetryable() bool {
	return !errors.Is(e.Cause, context.Canceled)
}
