package exa

import (
	"context"
	"net/http"
	"time"
)

// Webset search statuses.
const (
	SearchStatusCreated   = "created"
	SearchStatusRunning   = "running"
	SearchStatusCompleted = "completed"
	SearchStatusCanceled  = "canceled"
)

// Search behaviors.
const (
	BehaviorOverride = "override"
	BehaviorAppend   = "append"
)

// SearchProgress tracks how far a webset search has gotten.
type SearchProgress struct {
	Found      int `json:"found"`
	Analyzed   int `json:"analyzed,omitempty"`
	Completion int `json:"completion"`
}

// WebsetSearch is one search run against a webset.
type WebsetSearch struct {
	ID             string            `json:"id"`
	Object         string            `json:"object"`
	Status         string            `json:"status"`
	WebsetID       string            `json:"websetId,omitempty"`
	Query          string            `json:"query"`
	Entity         *EntityParams     `json:"entity,omitempty"`
	Criteria       []CriterionParams `json:"criteria,omitempty"`
	Count          int               `json:"count,omitempty"`
	Behavior       string            `json:"behavior,omitempty"`
	Progress       *SearchProgress   `json:"progress,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CanceledAt     *time.Time        `json:"canceledAt,omitempty"`
	CanceledReason string            `json:"canceledReason,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// IsFinished reports whether the search completed or was canceled.
func (s *WebsetSearch) IsFinished() bool {
	return s.Status == SearchStatusCompleted || s.Status == SearchStatusCanceled
}

// WebsetSearchesService manages the searches of a webset.
type WebsetSearchesService struct {
	client *Client
}

func searchesPath(websetID string, rest ...string) string {
	return pathf(pathf(websetsPath, websetID, "searches"), rest...)
}

// Create validates params and starts a search on a webset.
func (s *WebsetSearchesService) Create(ctx context.Context, websetID string, params CreateWebsetSearchParams) (*WebsetSearch, error) {
	if err := requireID("webset_id", websetID); err != nil {
		return nil, err
	}
	if err := ValidateCreateWebsetSearch(&params); err != nil {
		return nil, err
	}
	return do[WebsetSearch](ctx, s.client, http.MethodPost, searchesPath(websetID), params)
}

// Get fetches a webset search.
func (s *WebsetSearchesService) Get(ctx context.Context, websetID, searchID string) (*WebsetSearch, error) {
	if err := requireIDs(websetID, searchID, "search_id"); err != nil {
		return nil, err
	}
	return do[WebsetSearch](ctx, s.client, http.MethodGet, searchesPath(websetID, searchID), nil)
}

// Cancel stops a running search.
func (s *WebsetSearchesService) Cancel(ctx context.Context, websetID, searchID string) (*WebsetSearch, error) {
	if err := requireIDs(websetID, searchID, "search_id"); err != nil {
		return nil, err
	}
	return do[WebsetSearch](ctx, s.client, http.MethodPost, searchesPath(websetID, searchID, "cancel"), nil)
}

// requireIDs checks a webset ID and one child ID.
func requireIDs(websetID, childID, childField string) error {
	if err := requireID("webset_id", websetID); err != nil {
		return err
	}
	return requireID(childField, childID)
}
