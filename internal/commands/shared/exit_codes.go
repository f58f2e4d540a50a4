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
	"fmt"
	"io"
	"os"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

// Exit codes for exa commands
const (
	ExitSuccess     = 0
	ExitFailure     = 1 // generic failure, transport errors, poll timeouts
	ExitUsage       = 2 // validation or configuration problem, nothing was sent
	ExitClientError = 3 // API rejected the request (4xx)
	ExitServerError = 4 // API failed (5xx)
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUsageError creates an error for bad arguments or flags
func NewUsageError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitUsage,
		Message: msg,
		Cause:   cause,
	}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var (
		validationErr *exaerrors.ValidationError
		configErr     *exaerrors.ConfigurationError
	)
	if errors.As(err, &validationErr) || errors.As(err, &configErr) {
		return ExitUsage
	}

	if apiErr, ok := exaerrors.AsAPIError(err); ok {
		if apiErr.Kind.IsClientError() {
			return ExitClientError
		}
		return ExitServerError
	}

	return ExitFailure
}

// HandleExitError prints err and exits with the matching code. In JSON mode
// the error is emitted as a JSON envelope on stdout instead. An *ExitError
// with neither message nor cause exits without printing; the command has
// already reported the outcome.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	code := ExitCode(err)

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Message == "" && exitErr.Cause == nil {
		os.Exit(code)
	}

	if GetJSON() {
		_ = EmitJSONError(os.Stdout, err)
		os.Exit(code)
	}

	WriteError(os.Stderr, err)
	os.Exit(code)
}

// WriteError prints "Error: ..." plus any suggestion carried by err.
func WriteError(w io.Writer, err error) {
	fmt.Fprintln(w, RenderError("Error: "+err.Error()))
	if s := suggestionFor(err); s != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", s)
	}
}

// suggestionFor walks the error chain looking for remediation guidance.
func suggestionFor(err error) string {
	var validationErr *exaerrors.ValidationError
	if errors.As(err, &validationErr) && validationErr.Suggestion != "" {
		return validationErr.Suggestion
	}

	var userErr exaerrors.UserVisibleError
	if errors.As(err, &userErr) && userErr.IsUserVisible() {
		return userErr.Suggestion()
	}

	if apiErr, ok := exaerrors.AsAPIError(err); ok {
		switch apiErr.Kind {
		case exaerrors.KindUnauthorized:
			return "check your API key with 'exa auth status'"
		case exaerrors.KindTooManyRequests:
			return "slow down or set api.rate_limit in the config file"
		}
	}
	return ""
}
