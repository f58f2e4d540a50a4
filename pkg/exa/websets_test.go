package exa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exaerrors "github.com/tombee/exa/pkg/errors"
	"github.com/tombee/exa/pkg/poll"
)

const websetJSON = `{
	"id": "ws_1",
	"object": "webset",
	"status": "running",
	"externalId": "crm-42",
	"searches": [{"id": "ws_s1", "object": "webset_search", "status": "running", "query": "q", "progress": {"found": 3, "completion": 30}}],
	"createdAt": "2025-01-01T00:00:00Z",
	"updatedAt": "2025-01-01T00:00:00Z"
}`

func TestWebsets_Create(t *testing.T) {
	api := newFakeAPI(t).on("POST", "/websets/v0/websets", websetJSON)
	client := newTestClient(t, api)

	ws, err := client.Websets.Create(context.Background(), CreateWebsetParams{
		Search: &CreateWebsetSearchParams{
			Query:    "AI startups",
			Count:    intPtr(25),
			Entity:   &EntityParams{Type: EntityCompany},
			Criteria: []CriterionParams{{Description: "raised a seed round"}},
		},
		Enrichments: []CreateEnrichmentParams{{Description: "CEO email", Format: FormatEmail}},
		ExternalID:  "crm-42",
	})
	require.NoError(t, err)

	assert.Equal(t, "ws_1", ws.ID)
	assert.False(t, ws.IsIdle())
	require.Len(t, ws.Searches, 1)
	assert.Equal(t, 3, ws.Searches[0].Progress.Found)
	assert.Equal(t, 2025, ws.CreatedAt.Year())

	body := api.last().Body
	assert.Equal(t, "crm-42", body["externalId"])
	search := body["search"].(map[string]any)
	assert.EqualValues(t, 25, search["count"])
	assert.Equal(t, map[string]any{"type": "company"}, search["entity"])
	assert.NotContains(t, body, "import")
}

func TestWebsets_CreateInvalidNeverSends(t *testing.T) {
	api := newFakeAPI(t)
	client := newTestClient(t, api)

	_, err := client.Websets.Create(context.Background(), CreateWebsetParams{
		Search: &CreateWebsetSearchParams{Query: "q", Entity: &EntityParams{Type: "planet"}},
	})

	var vErr *exaerrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "search.entity.type", vErr.Field)
	assert.Empty(t, api.requests())
}

func TestWebsets_CRUD(t *testing.T) {
	api := newFakeAPI(t).
		on("GET", "/websets/v0/websets/ws_1", websetJSON).
		on("POST", "/websets/v0/websets/ws_1", websetJSON).
		on("DELETE", "/websets/v0/websets/ws_1", websetJSON).
		on("POST", "/websets/v0/websets/ws_1/cancel", websetJSON).
		on("GET", "/websets/v0/websets", `{"data": [{"id": "ws_1"}], "hasMore": false}`)
	client := newTestClient(t, api)
	ctx := context.Background()

	_, err := client.Websets.Get(ctx, "ws_1", &GetWebsetParams{Expand: []string{"items"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"items"}, api.last().Query["expand"])

	_, err = client.Websets.Update(ctx, "ws_1", UpdateWebsetParams{Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", api.last().Body["title"])

	_, err = client.Websets.Delete(ctx, "ws_1")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", api.last().Method)

	_, err = client.Websets.Cancel(ctx, "ws_1")
	require.NoError(t, err)
	assert.Equal(t, "/websets/v0/websets/ws_1/cancel", api.last().Path)

	page, err := client.Websets.List(ctx, ListParams{Cursor: "abc", Limit: 5})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, "abc", api.last().Query.Get("cursor"))
	assert.Equal(t, "5", api.last().Query.Get("limit"))
}

func TestWebsets_WaitUntilIdle(t *testing.T) {
	api := newFakeAPI(t).on("GET", "/websets/v0/websets/ws_1",
		`{"id": "ws_1", "status": "running"}`,
		`{"id": "ws_1", "status": "running"}`,
		`{"id": "ws_1", "status": "idle"}`,
	)
	client := newTestClient(t, api)

	ws, err := client.Websets.WaitUntilIdle(context.Background(), "ws_1", fastPoll()...)
	require.NoError(t, err)

	assert.True(t, ws.IsIdle())
	assert.Len(t, api.requests(), 3)
}

func TestWebsets_WaitUntilIdleTimesOut(t *testing.T) {
	api := newFakeAPI(t).on("GET", "/websets/v0/websets/ws_1", `{"id": "ws_1", "status": "running"}`)
	client := newTestClient(t, api)

	opts := append(fastPoll(), poll.WithMaxDuration(0))
	_, err := client.Websets.WaitUntilIdle(context.Background(), "ws_1", opts...)

	var timeoutErr *exaerrors.PollTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "running", timeoutErr.LastStatus)
	assert.Contains(t, err.Error(), "webset ws_1 timed out after")
}

func TestWebsetSearches(t *testing.T) {
	searchJSON := `{"id": "ws_s2", "object": "webset_search", "status": "created", "query": "more", "behavior": "append"}`
	api := newFakeAPI(t).
		on("POST", "/websets/v0/websets/ws_1/searches", searchJSON).
		on("GET", "/websets/v0/websets/ws_1/searches/ws_s2", searchJSON).
		on("POST", "/websets/v0/websets/ws_1/searches/ws_s2/cancel", `{"id": "ws_s2", "status": "canceled", "canceledReason": "requested"}`)
	client := newTestClient(t, api)
	ctx := context.Background()

	created, err := client.Websets.Searches.Create(ctx, "ws_1", CreateWebsetSearchParams{Query: "more", Behavior: BehaviorAppend})
	require.NoError(t, err)
	assert.Equal(t, "ws_s2", created.ID)
	assert.Equal(t, "append", api.last().Body["behavior"])

	_, err = client.Websets.Searches.Create(ctx, "ws_1", CreateWebsetSearchParams{Query: "more", Behavior: "merge"})
	assert.ErrorContains(t, err, "behavior")

	got, err := client.Websets.Searches.Get(ctx, "ws_1", "ws_s2")
	require.NoError(t, err)
	assert.False(t, got.IsFinished())

	canceled, err := client.Websets.Searches.Cancel(ctx, "ws_1", "ws_s2")
	require.NoError(t, err)
	assert.True(t, canceled.IsFinished())
	assert.Equal(t, "requested", canceled.CanceledReason)
}

func TestEnrichments(t *testing.T) {
	enrichmentJSON := `{"id": "we_1", "object": "webset_enrichment", "status": "pending", "websetId": "ws_1", "description": "stage", "format": "options", "options": [{"label": "seed"}]}`
	api := newFakeAPI(t).
		on("POST", "/websets/v0/websets/ws_1/enrichments", enrichmentJSON).
		on("GET", "/websets/v0/websets/ws_1/enrichments/we_1", enrichmentJSON).
		on("DELETE", "/websets/v0/websets/ws_1/enrichments/we_1", enrichmentJSON).
		on("POST", "/websets/v0/websets/ws_1/enrichments/we_1/cancel", enrichmentJSON)
	client := newTestClient(t, api)
	ctx := context.Background()

	e, err := client.Websets.Enrichments.Create(ctx, "ws_1", CreateEnrichmentParams{
		Description: "stage",
		Format:      FormatOptions,
		Options:     []EnrichmentOption{{Label: "seed"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "seed", e.Options[0].Label)
	assert.Equal(t, []any{map[string]any{"label": "seed"}}, api.last().Body["options"])

	_, err = client.Websets.Enrichments.Create(ctx, "ws_1", CreateEnrichmentParams{Description: "stage", Format: FormatOptions})
	assert.ErrorContains(t, err, "options")

	for _, call := range []func(context.Context, string, string) (*WebsetEnrichment, error){
		client.Websets.Enrichments.Get,
		client.Websets.Enrichments.Delete,
		client.Websets.Enrichments.Cancel,
	} {
		got, err := call(ctx, "ws_1", "we_1")
		require.NoError(t, err)
		assert.Equal(t, "we_1", got.ID)
	}
	assert.Len(t, api.requests(), 4)
}

func TestItems(t *testing.T) {
	itemJSON := `{
		"id": "it_1",
		"object": "webset_item",
		"source": "search",
		"sourceId": "ws_s1",
		"websetId": "ws_1",
		"properties": {"type": "company", "url": "https://acme.example"},
		"evaluations": [{"criterion": "seed", "reasoning": "r", "satisfied": "yes"}],
		"enrichments": [{"object": "enrichment_result", "format": "email", "result": ["ceo@acme.example"], "enrichmentId": "we_1"}]
	}`
	api := newFakeAPI(t).
		on("GET", "/websets/v0/websets/ws_1/items", `{"data": [`+itemJSON+`], "hasMore": false}`).
		on("GET", "/websets/v0/websets/ws_1/items/it_1", itemJSON).
		on("DELETE", "/websets/v0/websets/ws_1/items/it_1", itemJSON)
	client := newTestClient(t, api)
	ctx := context.Background()

	page, err := client.Websets.Items.List(ctx, "ws_1", ListParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	item := page.Data[0]
	assert.Equal(t, "https://acme.example", item.URL())
	assert.Equal(t, "yes", item.Evaluations[0].Satisfied)
	assert.Equal(t, []string{"ceo@acme.example"}, item.Enrichments[0].Result)

	_, err = client.Websets.Items.Get(ctx, "ws_1", "it_1")
	require.NoError(t, err)
	_, err = client.Websets.Items.Delete(ctx, "ws_1", "it_1")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", api.last().Method)
}

func TestMonitors(t *testing.T) {
	monitorJSON := `{
		"id": "mon_1",
		"object": "monitor",
		"status": "enabled",
		"websetId": "ws_1",
		"cadence": {"cron": "0 9 * * 1", "timezone": "Europe/Berlin"},
		"behavior": {"type": "search", "config": {"count": 10}}
	}`
	runJSON := `{"id": "run_1", "object": "monitor_run", "status": "completed", "monitorId": "mon_1", "type": "search"}`
	api := newFakeAPI(t).
		on("POST", "/websets/v0/monitors", monitorJSON).
		on("GET", "/websets/v0/monitors/mon_1", monitorJSON).
		on("GET", "/websets/v0/monitors", `{"data": [`+monitorJSON+`], "hasMore": false}`).
		on("PATCH", "/websets/v0/monitors/mon_1", `{"id": "mon_1", "status": "disabled"}`).
		on("DELETE", "/websets/v0/monitors/mon_1", monitorJSON).
		on("GET", "/websets/v0/monitors/mon_1/runs", `{"data": [`+runJSON+`], "hasMore": false}`).
		on("GET", "/websets/v0/monitors/mon_1/runs/run_1", runJSON)
	client := newTestClient(t, api)
	ctx := context.Background()

	m, err := client.Monitors.Create(ctx, CreateMonitorParams{
		WebsetID: "ws_1",
		Cadence:  Cadence{Cron: "0 9 * * 1", Timezone: "Europe/Berlin"},
		Behavior: MonitorBehavior{Type: MonitorBehaviorSearch, Config: map[string]any{"count": 10}},
	})
	require.NoError(t, err)
	assert.True(t, m.IsEnabled())
	assert.Equal(t, "ws_1", api.last().Body["websetId"])

	_, err = client.Monitors.Create(ctx, CreateMonitorParams{WebsetID: "ws_1", Cadence: Cadence{Cron: "* * * * *"}, Behavior: MonitorBehavior{Type: "delete"}})
	assert.ErrorContains(t, err, "behavior.type")

	_, err = client.Monitors.Get(ctx, "mon_1")
	require.NoError(t, err)

	page, err := client.Monitors.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)

	updated, err := client.Monitors.Update(ctx, "mon_1", UpdateMonitorParams{Status: MonitorStatusDisabled})
	require.NoError(t, err)
	assert.False(t, updated.IsEnabled())
	assert.Equal(t, "PATCH", api.last().Method)

	_, err = client.Monitors.Update(ctx, "mon_1", UpdateMonitorParams{Status: "paused"})
	assert.ErrorContains(t, err, "status")

	_, err = client.Monitors.Delete(ctx, "mon_1")
	require.NoError(t, err)

	runs, err := client.Monitors.ListRuns(ctx, "mon_1", ListParams{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "run_1", runs.Data[0].ID)

	run, err := client.Monitors.GetRun(ctx, "mon_1", "run_1")
	require.NoError(t, err)
	assert.Equal(t, "completed", run.Status)
}
