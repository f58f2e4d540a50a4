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

// Package redact scrubs secrets from span attributes before export.
//
// OpenTelemetry spans are read-only once ended, so redaction happens in a
// SpanExporter wrapper: each span is presented to the wrapped exporter with
// its attributes and event attributes rewritten.
package redact

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Mode controls how aggressively values are redacted.
type Mode string

const (
	// ModeNone disables redaction.
	ModeNone Mode = "none"

	// ModeStandard masks values matching known secret patterns and values of
	// attributes whose key names a credential.
	ModeStandard Mode = "standard"

	// ModeStrict replaces every string value; keys are kept.
	ModeStrict Mode = "strict"
)

// ParseMode validates a mode name. The empty string means ModeStandard.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeStandard, nil
	case ModeNone, ModeStandard, ModeStrict:
		return m, nil
	default:
		return "", fmt.Errorf("unknown redaction mode %q (want none, standard or strict)", s)
	}
}

// Pattern rewrites matches of Regex with Replacement.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// StandardPatterns returns the patterns applied in ModeStandard.
func StandardPatterns() []Pattern {
	return []Pattern{
		{
			Name:        "api_key",
			Regex:       regexp.MustCompile(`(?i)((?:x-)?api[_-]?key|apikey)["\s:=]+([a-zA-Z0-9_\-]{16,})`),
			Replacement: "$1=[REDACTED]",
		},
		{
			Name:        "bearer_token",
			Regex:       regexp.MustCompile(`(?i)(bearer\s+)([a-zA-Z0-9_\-\.]{20,})`),
			Replacement: "$1[REDACTED]",
		},
		{
			Name:        "jwt",
			Regex:       regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`),
			Replacement: "[REDACTED-JWT]",
		},
		{
			Name:        "private_key",
			Regex:       regexp.MustCompile(`(?s)(-----BEGIN (RSA |EC )?PRIVATE KEY-----).*?(-----END (RSA |EC )?PRIVATE KEY-----)`),
			Replacement: "$1[REDACTED]$3",
		},
		{
			Name:        "generic_secret",
			Regex:       regexp.MustCompile(`(?i)(secret|token)["\s:=]+([a-zA-Z0-9_\-]{16,})`),
			Replacement: "$1=[REDACTED]",
		},
	}
}

// sensitiveKeys mark attributes whose whole value is masked.
var sensitiveKeys = []string{
	"api_key", "api-key", "apikey",
	"authorization", "cookie",
	"password", "secret", "token",
}

// Redactor applies redaction rules to strings and attributes.
type Redactor struct {
	mode     Mode
	patterns []Pattern
}

// NewRedactor creates a redactor with the standard patterns.
func NewRedactor(mode Mode) *Redactor {
	return &Redactor{mode: mode, patterns: StandardPatterns()}
}

// Mode returns the redaction mode.
func (r *Redactor) Mode() Mode {
	return r.mode
}

// RedactString applies the patterns to s.
func (r *Redactor) RedactString(s string) string {
	switch r.mode {
	case ModeNone:
		return s
	case ModeStrict:
		return "[REDACTED]"
	}
	for _, p := range r.patterns {
		s = p.Regex.ReplaceAllString(s, p.Replacement)
	}
	return s
}

// RedactAttributes returns a redacted copy of attrs. Non-string values are
// kept except in strict mode.
func (r *Redactor) RedactAttributes(attrs []attribute.KeyValue) []attribute.KeyValue {
	if r.mode == ModeNone || len(attrs) == 0 {
		return attrs
	}

	out := make([]attribute.KeyValue, len(attrs))
	for i, attr := range attrs {
		key := string(attr.Key)
		switch {
		case r.mode == ModeStrict, sensitiveKey(key):
			out[i] = attribute.String(key, "[REDACTED]")
		case attr.Value.Type() == attribute.STRING:
			out[i] = attribute.String(key, r.RedactString(attr.Value.AsString()))
		case attr.Value.Type() == attribute.STRINGSLICE:
			vals := attr.Value.AsStringSlice()
			for j, v := range vals {
				vals[j] = r.RedactString(v)
			}
			out[i] = attribute.StringSlice(key, vals)
		default:
			out[i] = attr
		}
	}
	return out
}

func sensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// Exporter redacts spans before handing them to the wrapped exporter.
type Exporter struct {
	redactor *Redactor
	next     sdktrace.SpanExporter
}

// NewExporter wraps next. With ModeNone it returns next unchanged.
func NewExporter(redactor *Redactor, next sdktrace.SpanExporter) sdktrace.SpanExporter {
	if redactor == nil || redactor.mode == ModeNone {
		return next
	}
	return &Exporter{redactor: redactor, next: next}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *Exporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	redacted := make([]sdktrace.ReadOnlySpan, len(spans))
	for i, s := range spans {
		redacted[i] = e.redact(s)
	}
	return e.next.ExportSpans(ctx, redacted)
}

// Shutdown implements sdktrace.SpanExporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.next.Shutdown(ctx)
}

func (e *Exporter) redact(s sdktrace.ReadOnlySpan) sdktrace.ReadOnlySpan {
	events := s.Events()
	if len(events) > 0 {
		copied := make([]sdktrace.Event, len(events))
		for i, ev := range events {
			ev.Attributes = e.redactor.RedactAttributes(ev.Attributes)
			copied[i] = ev
		}
		events = copied
	}
	return &redactedSpan{
		ReadOnlySpan: s,
		attrs:        e.redactor.RedactAttributes(s.Attributes()),
		events:       events,
	}
}

// redactedSpan overrides the attribute accessors of an ended span.
type redactedSpan struct {
	sdktrace.ReadOnlySpan
	attrs  []attribute.KeyValue
	events []sdktrace.Event
}

func (s *redactedSpan) Attributes() []attribute.KeyValue { return s.attrs }
func (s *redactedSpan) Events() []sdktrace.Event         { return s.events }
