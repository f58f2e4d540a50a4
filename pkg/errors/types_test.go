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

package errors_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *exaerrors.ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &exaerrors.ValidationError{
				Field:   "search.query",
				Message: "must not be empty",
			},
			wantMsg: "validation failed on search.query: must not be empty",
		},
		{
			name: "without field",
			err: &exaerrors.ValidationError{
				Message: "either search or import is required",
			},
			wantMsg: "validation failed: either search or import is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConfigurationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *exaerrors.ConfigurationError
		wantMsg string
	}{
		{
			name:    "with key",
			err:     &exaerrors.ConfigurationError{Key: "api_key", Reason: "is required"},
			wantMsg: "config error at api_key: is required",
		},
		{
			name:    "without key",
			err:     &exaerrors.ConfigurationError{Reason: "file not found"},
			wantMsg: "config error: file not found",
		},
		{
			name:    "with cause",
			err:     &exaerrors.ConfigurationError{Key: "timeout", Reason: "invalid", Cause: errors.New("bad duration")},
			wantMsg: "config error at timeout: invalid: bad duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ConfigurationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConfigurationError_Unwrap(t *testing.T) {
	cause := errors.New("file read error")
	err := &exaerrors.ConfigurationError{Key: "config", Reason: "failed to load", Cause: cause}

	if got := err.Unwrap(); got != cause {
		t.Errorf("ConfigurationError.Unwrap() = %v, want %v", got, cause)
	}
	if !errors.Is(fmt.Errorf("loading: %w", err), cause) {
		t.Error("errors.Is should reach the cause through wrapping")
	}
}

func TestConfigurationError_Suggestion(t *testing.T) {
	err := &exaerrors.ConfigurationError{Key: "api_key", Reason: "is required"}
	if !strings.Contains(err.Suggestion(), "EXA_API_KEY") {
		t.Errorf("Suggestion() = %q, want mention of EXA_API_KEY", err.Suggestion())
	}

	other := &exaerrors.ConfigurationError{Key: "base_url", Reason: "invalid"}
	if other.Suggestion() != "" {
		t.Errorf("Suggestion() = %q, want empty", other.Suggestion())
	}
}

func TestPollTimeoutError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *exaerrors.PollTimeoutError
		want []string
	}{
		{
			name: "rounds elapsed seconds to two decimals",
			err:  &exaerrors.PollTimeoutError{Operation: "webset ws_1", Elapsed: 1234567 * time.Microsecond},
			want: []string{"webset ws_1", "1.23 seconds"},
		},
		{
			name: "default operation with last status",
			err:  &exaerrors.PollTimeoutError{Elapsed: 300 * time.Second, LastStatus: "running"},
			want: []string{"polling", "300.00 seconds", "last status: running"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("PollTimeoutError.Error() = %q, want to contain %q", got, want)
				}
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	t.Run("ValidationError can be wrapped", func(t *testing.T) {
		original := &exaerrors.ValidationError{Field: "search.count", Message: "must be positive"}
		wrapped := fmt.Errorf("creating webset: %w", original)

		var target *exaerrors.ValidationError
		if !errors.As(wrapped, &target) {
			t.Fatal("errors.As should find ValidationError in wrapped error")
		}
		if target.Field != "search.count" {
			t.Errorf("unwrapped error Field = %q, want %q", target.Field, "search.count")
		}
	})

	t.Run("PollTimeoutError can be wrapped", func(t *testing.T) {
		original := &exaerrors.PollTimeoutError{Elapsed: time.Second}
		wrapped := fmt.Errorf("waiting: %w", original)

		var target *exaerrors.PollTimeoutError
		if !errors.As(wrapped, &target) {
			t.Fatal("errors.As should find PollTimeoutError in wrapped error")
		}
	})
}

func TestTransportError(t *testing.T) {
	tests := []struct {
		name      string
		cause     error
		timeout   bool
		retryable bool
	}{
		{"deadline exceeded", context.DeadlineExceeded, true, true},
		{"cancelled", context.Canceled, false, false},
		{"connection refused", errors.New("dial tcp: connection refused"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &exaerrors.TransportError{Method: "POST", URL: "https://api.exa.ai/search", Cause: tt.cause}
			if got := err.Timeout(); got != tt.timeout {
				t.Errorf("Timeout() = %v, want %v", got, tt.timeout)
			}
			if got := err.IsRetryable(); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
			if !errors.Is(err, tt.cause) {
				t.Error("errors.Is should reach the cause")
			}
			if !strings.Contains(err.Error(), "POST https://api.exa.ai/search") {
				t.Errorf("Error() = %q, want method and URL", err.Error())
			}
		})
	}
}
