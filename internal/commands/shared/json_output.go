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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tombee/exa/internal/jq"
	exaerrors "github.com/tombee/exa/pkg/errors"
)

// JSONError represents a structured error with code, message, and suggestion
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Status     int    `json:"status,omitempty"`
	Field      string `json:"field,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// EmitJSON writes v to w as indented JSON.
func EmitJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// EmitJSONError writes err as {"error": {...}}.
func EmitJSONError(w io.Writer, err error) error {
	je := JSONError{
		Code:       ErrorCode(err),
		Message:    err.Error(),
		Suggestion: suggestionFor(err),
	}
	if apiErr, ok := exaerrors.AsAPIError(err); ok {
		je.Status = apiErr.StatusCode
		je.Message = apiErr.Message
	}
	var validationErr *exaerrors.ValidationError
	if errors.As(err, &validationErr) {
		je.Field = validationErr.Field
	}
	return EmitJSON(w, struct {
		Error JSONError `json:"error"`
	}{je})
}

// Print writes v to the command's stdout. With --jq the expression filters
// the JSON form of v; with --json v is printed as JSON; otherwise text renders
// the human-readable form.
func Print(cmd *cobra.Command, v any, text func(w io.Writer) error) error {
	return PrintTo(cmd.Context(), cmd.OutOrStdout(), v, text)
}

// PrintTo is Print with an explicit writer.
func PrintTo(ctx context.Context, w io.Writer, v any, text func(w io.Writer) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if expr := GetJQ(); expr != "" {
		exec := jq.NewExecutor(jq.DefaultTimeout, jq.DefaultMaxInputSize)
		if err := exec.Write(ctx, w, expr, v); err != nil {
			return fmt.Errorf("--jq: %w", err)
		}
		return nil
	}
	if GetJSON() || text == nil {
		return EmitJSON(w, v)
	}
	return text(w)
}

// ValidateJQ checks the --jq expression before any request is made.
func ValidateJQ() error {
	expr := GetJQ()
	if expr == "" {
		return nil
	}
	if err := jq.NewExecutor(0, 0).Validate(expr); err != nil {
		return NewUsageError("invalid --jq expression", err)
	}
	return nil
}
