package exa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

func TestResearch_CreateGetList(t *testing.T) {
	api := newFakeAPI(t).
		on("POST", "/research/v1", `{"researchId": "r_1", "status": "pending", "model": "exa-research", "createdAt": 1735689600000}`).
		on("GET", "/research/v1/r_1", `{"researchId": "r_1", "status": "completed", "output": {"content": "done", "parsed": {"n": 3}}, "finishedAt": 1735689700000}`).
		on("GET", "/research/v1", `{"data": [{"researchId": "r_1", "status": "completed"}], "hasMore": true, "nextCursor": "next"}`)
	client := newTestClient(t, api)
	ctx := context.Background()

	task, err := client.Research.Create(ctx, CreateResearchParams{
		Instructions: "Summarize recent Go releases",
		Model:        ResearchModel,
		OutputSchema: map[string]any{"type": "object"},
	})
	require.NoError(t, err)
	assert.Equal(t, "r_1", task.ResearchID)
	assert.False(t, task.IsFinished())
	assert.Equal(t, "Summarize recent Go releases", api.last().Body["instructions"])
	assert.Equal(t, map[string]any{"type": "object"}, api.last().Body["outputSchema"])

	got, err := client.Research.Get(ctx, "r_1")
	require.NoError(t, err)
	assert.True(t, got.IsCompleted())
	assert.Equal(t, "done", got.Output.Content)
	assert.EqualValues(t, 3, got.Output.Parsed["n"])

	page, err := client.Research.List(ctx, ListParams{Limit: 1})
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Equal(t, "next", page.NextCursor)

	_, err = client.Research.Create(ctx, CreateResearchParams{})
	assert.ErrorContains(t, err, "instructions")
}

func TestResearch_PollUntilFinished(t *testing.T) {
	tests := []struct {
		name       string
		final      string
		wantStatus string
	}{
		{"completed", `{"researchId": "r_1", "status": "completed"}`, ResearchStatusCompleted},
		{"failed", `{"researchId": "r_1", "status": "failed", "error": "quota"}`, ResearchStatusFailed},
		{"canceled", `{"researchId": "r_1", "status": "canceled"}`, ResearchStatusCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t).on("GET", "/research/v1/r_1",
				`{"researchId": "r_1", "status": "pending"}`,
				`{"researchId": "r_1", "status": "running"}`,
				tt.final,
			)
			client := newTestClient(t, api)

			task, err := client.Research.PollUntilFinished(context.Background(), "r_1", fastPoll()...)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, task.Status)
			assert.Len(t, api.requests(), 3)
		})
	}
}

func TestResearch_PollUntilFinishedPropagatesAPIError(t *testing.T) {
	api := newFakeAPI(t)
	client := newTestClient(t, api)

	_, err := client.Research.PollUntilFinished(context.Background(), "r_gone", fastPoll()...)

	assert.ErrorIs(t, err, exaerrors.ErrNotFound)
	assert.Len(t, api.requests(), 1)
}
