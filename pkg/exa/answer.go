package exa

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net/http"

	"github.com/tombee/exa/pkg/sse"
)

// Answer models.
const (
	AnswerModelExa    = "exa"
	AnswerModelExaPro = "exa-pro"
)

// AnswerParams is the body of POST /answer.
type AnswerParams struct {
	Query        string         `json:"query"`
	Text         bool           `json:"text,omitempty"`
	Model        string         `json:"model,omitempty"`
	SystemPrompt string         `json:"systemPrompt,omitempty"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
	UserLocation string         `json:"userLocation,omitempty"`
}

type answerRequest struct {
	AnswerParams
	Stream bool `json:"stream,omitempty"`
}

// AnswerResponse is a generated answer with its sources. Answer is a string,
// or an object when OutputSchema was set.
type AnswerResponse struct {
	RequestID   string       `json:"requestId,omitempty"`
	Answer      any          `json:"answer"`
	Citations   []Result     `json:"citations,omitempty"`
	CostDollars *CostDollars `json:"costDollars,omitempty"`
}

// Text returns the answer as text, rendering structured answers as JSON.
func (r *AnswerResponse) Text() string {
	switch a := r.Answer.(type) {
	case nil:
		return ""
	case string:
		return a
	default:
		b, err := json.Marshal(a)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Answer generates an answer to a question, grounded in search results.
func (c *Client) Answer(ctx context.Context, params AnswerParams) (*AnswerResponse, error) {
	if err := requireText("query", params.Query); err != nil {
		return nil, err
	}
	return do[AnswerResponse](ctx, c, http.MethodPost, "/answer", answerRequest{AnswerParams: params})
}

// AnswerChunk is one increment of a streamed answer.
type AnswerChunk struct {
	Content   string
	Citations []Result
}

// AnswerStream yields answer chunks as they arrive. It must be closed.
type AnswerStream struct {
	events *sse.Reader
}

// AnswerStream starts a streamed answer.
func (c *Client) AnswerStream(ctx context.Context, params AnswerParams) (*AnswerStream, error) {
	if err := requireText("query", params.Query); err != nil {
		return nil, err
	}
	events, err := c.conn.Stream(ctx, http.MethodPost, "/answer", answerRequest{AnswerParams: params, Stream: true})
	if err != nil {
		return nil, err
	}
	return &AnswerStream{events: events}, nil
}

// answerEvent covers both the chat-completion delta shape and the flat
// content shape of streamed answer events.
type answerEvent struct {
	Content string `json:"content"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Citations []Result `json:"citations"`
}

// Next returns the next non-empty chunk, or io.EOF when the stream ends.
// Events that do not match the chunk shape are skipped.
func (s *AnswerStream) Next() (AnswerChunk, error) {
	for {
		ev, err := s.events.Next()
		if err != nil {
			return AnswerChunk{}, err
		}

		var raw answerEvent
		if err := ev.Decode(&raw); err != nil {
			continue
		}

		chunk := AnswerChunk{Content: raw.Content, Citations: raw.Citations}
		for _, choice := range raw.Choices {
			chunk.Content += choice.Delta.Content
		}
		if chunk.Content == "" && len(chunk.Citations) == 0 {
			continue
		}
		return chunk, nil
	}
}

// All returns an iterator over the remaining chunks.
func (s *AnswerStream) All() iter.Seq2[AnswerChunk, error] {
	return func(yield func(AnswerChunk, error) bool) {
		for {
			chunk, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(AnswerChunk{}, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// Close releases the underlying response body.
func (s *AnswerStream) Close() error {
	return s.events.Close()
}
