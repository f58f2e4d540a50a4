package exa

import (
	"context"
	"net/http"
	"time"
)

// Evaluation is the verdict of one criterion against an item.
type Evaluation struct {
	Criterion  string           `json:"criterion"`
	Reasoning  string           `json:"reasoning"`
	Satisfied  string           `json:"satisfied"`
	References []map[string]any `json:"references,omitempty"`
}

// EnrichmentResult is the extracted value of one enrichment for an item.
type EnrichmentResult struct {
	Object       string   `json:"object"`
	Status       string   `json:"status,omitempty"`
	Format       string   `json:"format"`
	Result       []string `json:"result"`
	Reasoning    string   `json:"reasoning,omitempty"`
	EnrichmentID string   `json:"enrichmentId"`
}

// WebsetItem is one entity found or imported into a webset. Properties
// depends on the entity type.
type WebsetItem struct {
	ID          string             `json:"id"`
	Object      string             `json:"object"`
	Source      string             `json:"source"`
	SourceID    string             `json:"sourceId"`
	WebsetID    string             `json:"websetId"`
	Properties  map[string]any     `json:"properties"`
	Evaluations []Evaluation       `json:"evaluations,omitempty"`
	Enrichments []EnrichmentResult `json:"enrichments,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// URL returns the item's canonical URL when present.
func (i *WebsetItem) URL() string {
	u, _ := i.Properties["url"].(string)
	return u
}

// ItemsService reads and removes the items of a webset.
type ItemsService struct {
	client *Client
}

func itemsPath(websetID string, rest ...string) string {
	return pathf(pathf(websetsPath, websetID, "items"), rest...)
}

// List returns one page of items.
func (s *ItemsService) List(ctx context.Context, websetID string, params ListParams) (*Page[WebsetItem], error) {
	if err := requireID("webset_id", websetID); err != nil {
		return nil, err
	}
	return do[Page[WebsetItem]](ctx, s.client, http.MethodGet, itemsPath(websetID), params)
}

// Get fetches an item.
func (s *ItemsService) Get(ctx context.Context, websetID, itemID string) (*WebsetItem, error) {
	if err := requireIDs(websetID, itemID, "item_id"); err != nil {
		return nil, err
	}
	return do[WebsetItem](ctx, s.client, http.MethodGet, itemsPath(websetID, itemID), nil)
}

// Delete removes an item from a webset.
func (s *ItemsService) Delete(ctx context.Context, websetID, itemID string) (*WebsetItem, error) {
	if err := requireIDs(websetID, itemID, "item_id"); err != nil {
		return nil, err
	}
	return do[WebsetItem](ctx, s.client, http.MethodDelete, itemsPath(websetID, itemID), nil)
}
