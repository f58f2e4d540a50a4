package exa

import (
	"context"
	"net/http"
	"time"
)

// Enrichment formats.
const (
	FormatText    = "text"
	FormatDate    = "date"
	FormatNumber  = "number"
	FormatOptions = "options"
	FormatEmail   = "email"
	FormatPhone   = "phone"
	FormatURL     = "url"
)

// Enrichment statuses.
const (
	EnrichmentStatusPending   = "pending"
	EnrichmentStatusCanceled  = "canceled"
	EnrichmentStatusCompleted = "completed"
)

// EnrichmentOption is one allowed answer of an options enrichment.
type EnrichmentOption struct {
	Label string `json:"label"`
}

// CreateEnrichmentParams describes data to extract for every item.
// Options is required when Format is "options".
type CreateEnrichmentParams struct {
	Description string             `json:"description"`
	Format      string             `json:"format,omitempty"`
	Options     []EnrichmentOption `json:"options,omitempty"`
	Metadata    map[string]string  `json:"metadata,omitempty"`
}

// WebsetEnrichment is an enrichment attached to a webset.
type WebsetEnrichment struct {
	ID           string             `json:"id"`
	Object       string             `json:"object"`
	Status       string             `json:"status"`
	WebsetID     string             `json:"websetId"`
	Title        string             `json:"title,omitempty"`
	Description  string             `json:"description"`
	Format       string             `json:"format,omitempty"`
	Options      []EnrichmentOption `json:"options,omitempty"`
	Instructions string             `json:"instructions,omitempty"`
	Metadata     map[string]string  `json:"metadata,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// EnrichmentsService manages the enrichments of a webset.
type EnrichmentsService struct {
	client *Client
}

func enrichmentsPath(websetID string, rest ...string) string {
	return pathf(pathf(websetsPath, websetID, "enrichments"), rest...)
}

// Create validates params and adds an enrichment to a webset.
func (s *EnrichmentsService) Create(ctx context.Context, websetID string, params CreateEnrichmentParams) (*WebsetEnrichment, error) {
	if err := requireID("webset_id", websetID); err != nil {
		return nil, err
	}
	if err := validateEnrichment("", &params); err != nil {
		return nil, err
	}
	return do[WebsetEnrichment](ctx, s.client, http.MethodPost, enrichmentsPath(websetID), params)
}

// Get fetches an enrichment.
func (s *EnrichmentsService) Get(ctx context.Context, websetID, enrichmentID string) (*WebsetEnrichment, error) {
	if err := requireIDs(websetID, enrichmentID, "enrichment_id"); err != nil {
		return nil, err
	}
	return do[WebsetEnrichment](ctx, s.client, http.MethodGet, enrichmentsPath(websetID, enrichmentID), nil)
}

// Delete removes an enrichment and its results.
func (s *EnrichmentsService) Delete(ctx context.Context, websetID, enrichmentID string) (*WebsetEnrichment, error) {
	if err := requireIDs(websetID, enrichmentID, "enrichment_id"); err != nil {
		return nil, err
	}
	return do[WebsetEnrichment](ctx, s.client, http.MethodDelete, enrichmentsPath(websetID, enrichmentID), nil)
}

// Cancel stops a running enrichment.
func (s *EnrichmentsService) Cancel(ctx context.Context, websetID, enrichmentID string) (*WebsetEnrichment, error) {
	if err := requireIDs(websetID, enrichmentID, "enrichment_id"); err != nil {
		return nil, err
	}
	return do[WebsetEnrichment](ctx, s.client, http.MethodPost, enrichmentsPath(websetID, enrichmentID, "cancel"), nil)
}
