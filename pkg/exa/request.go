package exa

import (
	"context"
	"iter"
	"net/url"
	"strings"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

// do issues one request and decodes the body into a new T.
func do[T any](ctx context.Context, c *Client, method, path string, params any) (*T, error) {
	resp, err := c.conn.Do(ctx, method, path, params)
	if err != nil {
		return nil, err
	}

	var out T
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// pathf joins escaped path segments onto prefix.
func pathf(prefix string, segments ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// requireID fails before any request is made when an identifier is blank.
func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return &exaerrors.ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ListParams selects one page of a cursor-paginated collection.
type ListParams struct {
	Cursor string `json:"cursor,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Page is one page of a cursor-paginated collection.
type Page[T any] struct {
	Data       []T    `json:"data"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// Paginate iterates every element across pages, following NextCursor until
// HasMore is false. The first error is yielded once and ends iteration.
func Paginate[T any](ctx context.Context, params ListParams, fetch func(context.Context, ListParams) (*Page[T], error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			page, err := fetch(ctx, params)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range page.Data {
				if !yield(item, nil) {
					return
				}
			}
			if !page.HasMore || page.NextCursor == "" {
				return
			}
			params.Cursor = page.NextCursor
		}
	}
}
