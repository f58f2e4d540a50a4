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

package shared

import (
	"errors"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

// Error codes for structured JSON output
const (
	ErrorCodeValidation    = "validation_error"
	ErrorCodeConfiguration = "configuration_error"
	ErrorCodeMissingAPIKey = "missing_api_key"
	ErrorCodeTimeout       = "timeout"
	ErrorCodeTransport     = "transport_error"
	ErrorCodeUsage         = "usage_error"
	ErrorCodeInternal      = "internal_error"
)

// ErrorCode maps err to a stable code for JSON output. API errors use their
// kind name (e.g. "not_found", "too_many_requests").
func ErrorCode(err error) string {
	if apiErr, ok := exaerrors.AsAPIError(err); ok {
		return apiErr.Kind.String()
	}

	var (
		validationErr *exaerrors.ValidationError
		configErr     *exaerrors.ConfigurationError
		pollErr       *exaerrors.PollTimeoutError
		transportErr  *exaerrors.TransportError
		exitErr       *ExitError
	)
	switch {
	case errors.As(err, &validationErr):
		return ErrorCodeValidation
	case errors.As(err, &configErr):
		if configErr.Key == "api_key" {
			return ErrorCodeMissingAPIKey
		}
		return ErrorCodeConfiguration
	case errors.As(err, &pollErr):
		return ErrorCodeTimeout
	case errors.As(err, &transportErr):
		if transportErr.Timeout() {
			return ErrorCodeTimeout
		}
		return ErrorCodeTransport
	case errors.As(err, &exitErr) && exitErr.Code == ExitUsage:
		return ErrorCodeUsage
	default:
		return ErrorCodeInternal
	}
}
