package exa

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tombee/exa/pkg/poll"
)

const websetsPath = "/websets/v0/websets"

// Webset statuses.
const (
	WebsetStatusIdle    = "idle"
	WebsetStatusPending = "pending"
	WebsetStatusRunning = "running"
	WebsetStatusPaused  = "paused"
)

// Entity types.
const (
	EntityCompany       = "company"
	EntityPerson        = "person"
	EntityArticle       = "article"
	EntityResearchPaper = "research_paper"
	EntityCustom        = "custom"
)

// Source reference kinds.
const (
	SourceImport = "import"
	SourceWebset = "webset"
)

// EntityParams fixes the kind of entity a search returns. Description is
// required for the custom type.
type EntityParams struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// CriterionParams is one condition every found item is evaluated against.
type CriterionParams struct {
	Description string `json:"description"`
}

// RelationshipParams follows a relationship from each scoped item.
type RelationshipParams struct {
	Definition string `json:"definition"`
	Limit      int    `json:"limit"`
}

// SourceRef points at an import or another webset.
type SourceRef struct {
	Source       string              `json:"source"`
	ID           string              `json:"id"`
	Relationship *RelationshipParams `json:"relationship,omitempty"`
}

// CreateWebsetSearchParams describes a search, either inline in a webset
// creation or added to an existing webset. Count and Behavior are optional.
type CreateWebsetSearchParams struct {
	Query    string            `json:"query"`
	Count    *int              `json:"count,omitempty"`
	Entity   *EntityParams     `json:"entity,omitempty"`
	Criteria []CriterionParams `json:"criteria,omitempty"`
	Scope    []SourceRef       `json:"scope,omitempty"`
	Exclude  []SourceRef       `json:"exclude,omitempty"`
	Behavior string            `json:"behavior,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateWebsetParams is the body of POST /websets/v0/websets. At least one
// of Search or Import must be set.
type CreateWebsetParams struct {
	Search      *CreateWebsetSearchParams `json:"search,omitempty"`
	Import      []SourceRef               `json:"import,omitempty"`
	Exclude     []SourceRef               `json:"exclude,omitempty"`
	Enrichments []CreateEnrichmentParams  `json:"enrichments,omitempty"`
	ExternalID  string                    `json:"externalId,omitempty"`
	Title       string                    `json:"title,omitempty"`
	Metadata    map[string]string         `json:"metadata,omitempty"`
}

// UpdateWebsetParams is the body of POST /websets/v0/websets/{id}.
type UpdateWebsetParams struct {
	Title    string            `json:"title,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// GetWebsetParams selects related collections to inline.
type GetWebsetParams struct {
	Expand []string
}

// Webset is a collection of entities gathered by searches and imports.
type Webset struct {
	ID          string             `json:"id"`
	Object      string             `json:"object"`
	Status      string             `json:"status"`
	ExternalID  string             `json:"externalId,omitempty"`
	Title       string             `json:"title,omitempty"`
	Searches    []WebsetSearch     `json:"searches,omitempty"`
	Enrichments []WebsetEnrichment `json:"enrichments,omitempty"`
	Monitors    []Monitor          `json:"monitors,omitempty"`
	Items       []WebsetItem       `json:"items,omitempty"`
	Metadata    map[string]string  `json:"metadata,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// IsIdle reports whether no search or enrichment is in progress.
func (w *Webset) IsIdle() bool {
	return w.Status == WebsetStatusIdle
}

// WebsetsService manages websets and their searches, enrichments and items.
type WebsetsService struct {
	client *Client

	Searches    *WebsetSearchesService
	Enrichments *EnrichmentsService
	Items       *ItemsService
}

func newWebsetsService(c *Client) *WebsetsService {
	return &WebsetsService{
		client:      c,
		Searches:    &WebsetSearchesService{client: c},
		Enrichments: &EnrichmentsService{client: c},
		Items:       &ItemsService{client: c},
	}
}

// Create validates params and creates a webset.
func (s *WebsetsService) Create(ctx context.Context, params CreateWebsetParams) (*Webset, error) {
	if err := ValidateCreateWebset(&params); err != nil {
		return nil, err
	}
	return do[Webset](ctx, s.client, http.MethodPost, websetsPath, params)
}

// Get fetches a webset by ID or external ID.
func (s *WebsetsService) Get(ctx context.Context, id string, params *GetWebsetParams) (*Webset, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var q url.Values
	if params != nil && len(params.Expand) > 0 {
		q = url.Values{"expand": params.Expand}
	}
	return do[Webset](ctx, s.client, http.MethodGet, pathf(websetsPath, id), q)
}

// Update changes a webset's title or metadata.
func (s *WebsetsService) Update(ctx context.Context, id string, params UpdateWebsetParams) (*Webset, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	if err := validateMetadata("metadata", params.Metadata); err != nil {
		return nil, err
	}
	return do[Webset](ctx, s.client, http.MethodPost, pathf(websetsPath, id), params)
}

// Delete deletes a webset and its items.
func (s *WebsetsService) Delete(ctx context.Context, id string) (*Webset, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return do[Webset](ctx, s.client, http.MethodDelete, pathf(websetsPath, id), nil)
}

// Cancel stops every running search and enrichment of a webset.
func (s *WebsetsService) Cancel(ctx context.Context, id string) (*Webset, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return do[Webset](ctx, s.client, http.MethodPost, pathf(websetsPath, id, "cancel"), nil)
}

// List returns one page of websets.
func (s *WebsetsService) List(ctx context.Context, params ListParams) (*Page[Webset], error) {
	return do[Page[Webset]](ctx, s.client, http.MethodGet, websetsPath, params)
}

// WaitUntilIdle polls the webset until its status is idle.
func (s *WebsetsService) WaitUntilIdle(ctx context.Context, id string, opts ...poll.Option) (*Webset, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	opts = append([]poll.Option{poll.WithOperation("webset " + id)}, opts...)

	return poll.Poll[*Webset](ctx, func(ctx context.Context) (poll.Result[*Webset], error) {
		ws, err := s.Get(ctx, id, nil)
		if err != nil {
			return poll.Result[*Webset]{}, err
		}
		return poll.Result[*Webset]{Done: ws.IsIdle(), Value: ws, Status: ws.Status}, nil
	}, opts...)
}
