package exa

import (
	"context"
	"net/http"
)

// ContextParams is the body of POST /context. TokensNum is either a
// positive token budget or the string "dynamic".
type ContextParams struct {
	Query     string `json:"query"`
	TokensNum any    `json:"tokensNum,omitempty"`
}

// ContextResponse is code-oriented context assembled for a query.
type ContextResponse struct {
	RequestID    string       `json:"requestId,omitempty"`
	Query        string       `json:"query"`
	Response     string       `json:"response"`
	ResultsCount int          `json:"resultsCount,omitempty"`
	OutputTokens int          `json:"outputTokens,omitempty"`
	SearchTime   float64      `json:"searchTime,omitempty"`
	CostDollars  *CostDollars `json:"costDollars,omitempty"`
}

// Context retrieves context for a code or documentation query.
func (c *Client) Context(ctx context.Context, params ContextParams) (*ContextResponse, error) {
	if err := requireText("query", params.Query); err != nil {
		return nil, err
	}
	return do[ContextResponse](ctx, c, http.MethodPost, "/context", params)
}
