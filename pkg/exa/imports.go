package exa

import (
	"context"
	"net/http"
	"time"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

const importsPath = "/websets/v0/imports"

// Import statuses.
const (
	ImportStatusPending    = "pending"
	ImportStatusProcessing = "processing"
	ImportStatusCompleted  = "completed"
	ImportStatusFailed     = "failed"
)

// CSVParams describes the layout of an uploaded CSV.
type CSVParams struct {
	// Identifier is the zero-based column holding the entity URL.
	Identifier *int `json:"identifier,omitempty"`
}

// CreateImportParams is the body of POST /websets/v0/imports.
type CreateImportParams struct {
	Size     int               `json:"size"`
	Count    int               `json:"count"`
	Title    string            `json:"title,omitempty"`
	Format   string            `json:"format"`
	Entity   *EntityParams     `json:"entity,omitempty"`
	CSV      *CSVParams        `json:"csv,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Import is an uploaded data set that websets can draw items from.
type Import struct {
	ID               string            `json:"id"`
	Object           string            `json:"object"`
	Status           string            `json:"status"`
	Format           string            `json:"format"`
	Title            string            `json:"title,omitempty"`
	Count            int               `json:"count"`
	Entity           *EntityParams     `json:"entity,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	FailedReason     string            `json:"failedReason,omitempty"`
	FailedMessage    string            `json:"failedMessage,omitempty"`
	FailedAt         *time.Time        `json:"failedAt,omitempty"`
	UploadURL        string            `json:"uploadUrl,omitempty"`
	UploadValidUntil *time.Time        `json:"uploadValidUntil,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// ImportsService manages imports.
type ImportsService struct {
	client *Client
}

// Create registers an import. Upload the data to the returned UploadURL.
func (s *ImportsService) Create(ctx context.Context, params CreateImportParams) (*Import, error) {
	if params.Format == "" {
		params.Format = "csv"
	}
	if params.Size <= 0 {
		return nil, &exaerrors.ValidationError{Field: "size", Message: "must be a positive integer"}
	}
	if params.Count <= 0 {
		return nil, &exaerrors.ValidationError{Field: "count", Message: "must be a positive integer"}
	}
	if params.Entity != nil {
		if err := validateEntity("entity", params.Entity); err != nil {
			return nil, err
		}
	}
	if err := validateMetadata("metadata", params.Metadata); err != nil {
		return nil, err
	}
	return do[Import](ctx, s.client, http.MethodPost, importsPath, params)
}

// Get fetches an import.
func (s *ImportsService) Get(ctx context.Context, id string) (*Import, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return do[Import](ctx, s.client, http.MethodGet, pathf(importsPath, id), nil)
}

// List returns one page of imports.
func (s *ImportsService) List(ctx context.Context, params ListParams) (*Page[Import], error) {
	return do[Page[Import]](ctx, s.client, http.MethodGet, importsPath, params)
}

// Delete removes an import.
func (s *ImportsService) Delete(ctx context.Context, id string) (*Import, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return do[Import](ctx, s.client, http.MethodDelete, pathf(importsPath, id), nil)
}

// UploadCSV sends CSV data to an import's presigned upload URL.
func (s *ImportsService) UploadCSV(ctx context.Context, uploadURL string, data []byte) error {
	if err := requireID("upload_url", uploadURL); err != nil {
		return err
	}
	_, err := s.client.conn.Upload(ctx, uploadURL, data, "text/csv")
	return err
}
