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

// Package sse parses server-sent event streams into JSON payloads.
//
// Parser is a push-style state machine fed with raw chunks as they arrive.
// Reader wraps a response body and exposes the same events as a pull-based
// sequence. Neither type is safe for concurrent use: chunks must be delivered
// in order by the goroutine that reads the stream.
package sse

import (
	"bytes"
	"encoding/json"
)

var (
	eventDelimiter = []byte("\n\n")
	dataPrefix     = []byte("data: ")
)

// Event is a single "data:" payload that parsed as JSON.
type Event struct {
	Data json.RawMessage
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Parser buffers partial events across chunk boundaries.
// The zero value is ready to use.
type Parser struct {
	buf []byte
}

// Feed appends chunk to the buffer and returns every event completed by it,
// in arrival order. An incomplete trailing event stays buffered.
func (p *Parser) Feed(chunk []byte) []Event {
	p.buf = append(p.buf, chunk...)

	complete := bytes.HasSuffix(p.buf, eventDelimiter)
	parts := bytes.Split(p.buf, eventDelimiter)

	if !complete {
		tail := parts[len(parts)-1]
		parts = parts[:len(parts)-1]
		// Copy the tail so the next append cannot alias parts handed to parseEvent.
		p.buf = append([]byte(nil), tail...)
	} else {
		p.buf = nil
	}

	var events []Event
	for _, part := range parts {
		events = append(events, parseEvent(part)...)
	}
	return events
}

// Flush treats any buffered content as one final event and empties the
// buffer. Call it once the stream has ended.
func (p *Parser) Flush() []Event {
	if len(p.buf) == 0 {
		return nil
	}
	events := parseEvent(p.buf)
	p.buf = nil
	return events
}

// Buffered reports how many bytes of an incomplete event are held.
func (p *Parser) Buffered() int {
	return len(p.buf)
}

// parseEvent extracts every "data: " line of a raw event. Lines that do not
// parse as JSON are dropped.
func parseEvent(raw []byte) []Event {
	var events []Event
	for _, line := range bytes.Split(raw, []byte("\n")) {
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := line[len(dataPrefix):]
		if !json.Valid(payload) {
			continue
		}
		events = append(events, Event{Data: append(json.RawMessage(nil), payload...)})
	}
	return events
}
