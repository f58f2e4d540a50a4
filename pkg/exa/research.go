package exa

import (
	"context"
	"net/http"

	"github.com/tombee/exa/pkg/poll"
)

const researchPath = "/research/v1"

// Research task statuses.
const (
	ResearchStatusPending   = "pending"
	ResearchStatusRunning   = "running"
	ResearchStatusCompleted = "completed"
	ResearchStatusCanceled  = "canceled"
	ResearchStatusFailed    = "failed"
)

// Research models.
const (
	ResearchModelFast = "exa-research-fast"
	ResearchModel     = "exa-research"
	ResearchModelPro  = "exa-research-pro"
)

// CreateResearchParams is the body of POST /research/v1.
type CreateResearchParams struct {
	Instructions string         `json:"instructions"`
	Model        string         `json:"model,omitempty"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
}

// ResearchOutput is the result of a completed task. Parsed is set when an
// output schema was given.
type ResearchOutput struct {
	Content string         `json:"content"`
	Parsed  map[string]any `json:"parsed,omitempty"`
}

// ResearchTask is an asynchronous research job.
type ResearchTask struct {
	ResearchID   string          `json:"researchId"`
	Status       string          `json:"status"`
	Model        string          `json:"model,omitempty"`
	Instructions string          `json:"instructions,omitempty"`
	Output       *ResearchOutput `json:"output,omitempty"`
	Error        string          `json:"error,omitempty"`
	CreatedAt    int64           `json:"createdAt,omitempty"`
	FinishedAt   int64           `json:"finishedAt,omitempty"`
	CostDollars  *CostDollars    `json:"costDollars,omitempty"`
}

// IsFinished reports whether the task reached a terminal status.
func (t *ResearchTask) IsFinished() bool {
	switch t.Status {
	case ResearchStatusCompleted, ResearchStatusCanceled, ResearchStatusFailed:
		return true
	}
	return false
}

// IsCompleted reports whether the task finished successfully.
func (t *ResearchTask) IsCompleted() bool {
	return t.Status == ResearchStatusCompleted
}

// ResearchService manages research tasks.
type ResearchService struct {
	client *Client
}

// Create starts a research task.
func (s *ResearchService) Create(ctx context.Context, params CreateResearchParams) (*ResearchTask, error) {
	if err := requireText("instructions", params.Instructions); err != nil {
		return nil, err
	}
	return do[ResearchTask](ctx, s.client, http.MethodPost, researchPath, params)
}

// Get fetches a research task.
func (s *ResearchService) Get(ctx context.Context, researchID string) (*ResearchTask, error) {
	if err := requireID("research_id", researchID); err != nil {
		return nil, err
	}
	return do[ResearchTask](ctx, s.client, http.MethodGet, pathf(researchPath, researchID), nil)
}

// List returns one page of research tasks.
func (s *ResearchService) List(ctx context.Context, params ListParams) (*Page[ResearchTask], error) {
	return do[Page[ResearchTask]](ctx, s.client, http.MethodGet, researchPath, params)
}

// PollUntilFinished polls the task until it completes, fails or is
// canceled. A *errors.PollTimeoutError is returned when the deadline passes
// first; the task may still finish later.
func (s *ResearchService) PollUntilFinished(ctx context.Context, researchID string, opts ...poll.Option) (*ResearchTask, error) {
	if err := requireID("research_id", researchID); err != nil {
		return nil, err
	}
	opts = append([]poll.Option{poll.WithOperation("research " + researchID)}, opts...)

	return poll.Poll[*ResearchTask](ctx, func(ctx context.Context) (poll.Result[*ResearchTask], error) {
		task, err := s.Get(ctx, researchID)
		if err != nil {
			return poll.Result[*ResearchTask]{}, err
		}
		return poll.Result[*ResearchTask]{Done: task.IsFinished(), Value: task, Status: task.Status}, nil
	}, opts...)
}
