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

package sse

import (
	"errors"
	"io"
	"iter"
)

// DefaultChunkSize is the read size used by Reader.
const DefaultChunkSize = 4096

// Reader yields events from a streaming response body.
type Reader struct {
	src     io.Reader
	parser  Parser
	chunk   []byte
	pending []Event
	err     error
	closed  bool
}

// NewReader returns a Reader over r. If r is an io.Closer, Close closes it.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		src:   r,
		chunk: make([]byte, DefaultChunkSize),
	}
}

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("sse: reader closed")

// Next returns the next event. It returns io.EOF after the stream ends and
// every buffered event has been delivered.
func (r *Reader) Next() (Event, error) {
	for {
		if len(r.pending) > 0 {
			ev := r.pending[0]
			r.pending = r.pending[1:]
			return ev, nil
		}
		if r.closed {
			return Event{}, ErrClosed
		}
		if r.err != nil {
			return Event{}, r.err
		}

		n, err := r.src.Read(r.chunk)
		if n > 0 {
			r.pending = append(r.pending, r.parser.Feed(r.chunk[:n])...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.pending = append(r.pending, r.parser.Flush()...)
			}
			r.err = err
		}
	}
}

// All returns an iterator over the remaining events. Iteration stops at the
// end of the stream or at the first read error, which is yielded once.
func (r *Reader) All() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Event{}, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Close releases the underlying stream. Pending events are discarded.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.pending = nil
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
