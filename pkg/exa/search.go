package exa

import (
	"context"
	"net/http"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

// Search types.
const (
	SearchTypeAuto    = "auto"
	SearchTypeNeural  = "neural"
	SearchTypeKeyword = "keyword"
	SearchTypeFast    = "fast"
	SearchTypeDeep    = "deep"
)

// TextOptions requests page text. A zero value requests full text.
type TextOptions struct {
	MaxCharacters   int  `json:"maxCharacters,omitempty"`
	IncludeHTMLTags bool `json:"includeHtmlTags,omitempty"`
}

// HighlightsOptions requests relevant snippets.
type HighlightsOptions struct {
	Query            string `json:"query,omitempty"`
	NumSentences     int    `json:"numSentences,omitempty"`
	HighlightsPerURL int    `json:"highlightsPerUrl,omitempty"`
}

// SummaryOptions requests an LLM summary, optionally shaped by a JSON schema.
type SummaryOptions struct {
	Query  string         `json:"query,omitempty"`
	Schema map[string]any `json:"schema,omitempty"`
}

// ExtrasOptions requests link and image extraction.
type ExtrasOptions struct {
	Links      int `json:"links,omitempty"`
	ImageLinks int `json:"imageLinks,omitempty"`
}

// ContentsOptions selects which page contents come back with results.
type ContentsOptions struct {
	Text             *TextOptions       `json:"text,omitempty"`
	Highlights       *HighlightsOptions `json:"highlights,omitempty"`
	Summary          *SummaryOptions    `json:"summary,omitempty"`
	Livecrawl        string             `json:"livecrawl,omitempty"`
	LivecrawlTimeout int                `json:"livecrawlTimeout,omitempty"`
	Subpages         int                `json:"subpages,omitempty"`
	SubpageTarget    []string           `json:"subpageTarget,omitempty"`
	Extras           *ExtrasOptions     `json:"extras,omitempty"`
}

// SearchFilters are shared by Search and FindSimilar.
type SearchFilters struct {
	NumResults         int      `json:"numResults,omitempty"`
	IncludeDomains     []string `json:"includeDomains,omitempty"`
	ExcludeDomains     []string `json:"excludeDomains,omitempty"`
	StartCrawlDate     string   `json:"startCrawlDate,omitempty"`
	EndCrawlDate       string   `json:"endCrawlDate,omitempty"`
	StartPublishedDate string   `json:"startPublishedDate,omitempty"`
	EndPublishedDate   string   `json:"endPublishedDate,omitempty"`
	IncludeText        []string `json:"includeText,omitempty"`
	ExcludeText        []string `json:"excludeText,omitempty"`
	Category           string   `json:"category,omitempty"`
}

// SearchParams is the body of POST /search.
type SearchParams struct {
	Query string `json:"query"`
	Type  string `json:"type,omitempty"`
	SearchFilters
	UserLocation string           `json:"userLocation,omitempty"`
	Moderation   bool             `json:"moderation,omitempty"`
	Context      bool             `json:"context,omitempty"`
	Contents     *ContentsOptions `json:"contents,omitempty"`
}

// FindSimilarParams is the body of POST /findSimilar.
type FindSimilarParams struct {
	URL string `json:"url"`
	SearchFilters
	ExcludeSourceDomain bool             `json:"excludeSourceDomain,omitempty"`
	Context             bool             `json:"context,omitempty"`
	Contents            *ContentsOptions `json:"contents,omitempty"`
}

// ContentsParams is the body of POST /contents.
type ContentsParams struct {
	URLs []string `json:"urls"`
	ContentsOptions
}

// Result is one search hit or fetched page.
type Result struct {
	ID              string         `json:"id"`
	URL             string         `json:"url"`
	Title           string         `json:"title,omitempty"`
	Score           *float64       `json:"score,omitempty"`
	PublishedDate   string         `json:"publishedDate,omitempty"`
	Author          string         `json:"author,omitempty"`
	Image           string         `json:"image,omitempty"`
	Favicon         string         `json:"favicon,omitempty"`
	Text            string         `json:"text,omitempty"`
	Highlights      []string       `json:"highlights,omitempty"`
	HighlightScores []float64      `json:"highlightScores,omitempty"`
	Summary         string         `json:"summary,omitempty"`
	Subpages        []Result       `json:"subpages,omitempty"`
	Extras          map[string]any `json:"extras,omitempty"`
}

// CostDollars is the billed cost of a request.
type CostDollars struct {
	Total float64 `json:"total"`
}

// ContentStatus reports per-URL outcome of a contents fetch.
type ContentStatus struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  map[string]any `json:"error,omitempty"`
}

// SearchResponse is returned by Search, FindSimilar and Contents.
type SearchResponse struct {
	RequestID          string          `json:"requestId,omitempty"`
	ResolvedSearchType string          `json:"resolvedSearchType,omitempty"`
	SearchType         string          `json:"searchType,omitempty"`
	Results            []Result        `json:"results"`
	Context            string          `json:"context,omitempty"`
	Statuses           []ContentStatus `json:"statuses,omitempty"`
	CostDollars        *CostDollars    `json:"costDollars,omitempty"`
}

// Search runs a web search.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	if err := requireText("query", params.Query); err != nil {
		return nil, err
	}
	return do[SearchResponse](ctx, c, http.MethodPost, "/search", params)
}

// FindSimilar finds pages similar to a URL.
func (c *Client) FindSimilar(ctx context.Context, params FindSimilarParams) (*SearchResponse, error) {
	if err := requireText("url", params.URL); err != nil {
		return nil, err
	}
	return do[SearchResponse](ctx, c, http.MethodPost, "/findSimilar", params)
}

// Contents fetches page contents for URLs or result IDs.
func (c *Client) Contents(ctx context.Context, params ContentsParams) (*SearchResponse, error) {
	if len(params.URLs) == 0 {
		return nil, &exaerrors.ValidationError{Field: "urls", Message: "must contain at least one URL"}
	}
	return do[SearchResponse](ctx, c, http.MethodPost, "/contents", params)
}
