package exa

import (
	"context"
	"net/http"
	"time"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

const monitorsPath = "/websets/v0/monitors"

// Monitor statuses.
const (
	MonitorStatusEnabled  = "enabled"
	MonitorStatusDisabled = "disabled"
)

// Monitor behavior types.
const (
	MonitorBehaviorSearch  = "search"
	MonitorBehaviorRefresh = "refresh"
)

// Cadence schedules a monitor with a cron expression.
type Cadence struct {
	Cron     string `json:"cron"`
	Timezone string `json:"timezone,omitempty"`
}

// MonitorBehavior is what a monitor does on each run.
type MonitorBehavior struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// CreateMonitorParams is the body of POST /websets/v0/monitors.
type CreateMonitorParams struct {
	WebsetID string            `json:"websetId"`
	Cadence  Cadence           `json:"cadence"`
	Behavior MonitorBehavior   `json:"behavior"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// UpdateMonitorParams is the body of PATCH /websets/v0/monitors/{id}.
type UpdateMonitorParams struct {
	Status   string            `json:"status,omitempty"`
	Cadence  *Cadence          `json:"cadence,omitempty"`
	Behavior *MonitorBehavior  `json:"behavior,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MonitorRun is one execution of a monitor.
type MonitorRun struct {
	ID           string     `json:"id"`
	Object       string     `json:"object"`
	Status       string     `json:"status"`
	MonitorID    string     `json:"monitorId"`
	Type         string     `json:"type"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	FailedAt     *time.Time `json:"failedAt,omitempty"`
	FailedReason string     `json:"failedReason,omitempty"`
	CanceledAt   *time.Time `json:"canceledAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Monitor keeps a webset up to date on a schedule.
type Monitor struct {
	ID        string            `json:"id"`
	Object    string            `json:"object"`
	Status    string            `json:"status"`
	WebsetID  string            `json:"websetId"`
	Cadence   Cadence           `json:"cadence"`
	Behavior  MonitorBehavior   `json:"behavior"`
	LastRun   *MonitorRun       `json:"lastRun,omitempty"`
	NextRunAt *time.Time        `json:"nextRunAt,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// IsEnabled reports whether the monitor is scheduled.
func (m *Monitor) IsEnabled() bool {
	return m.Status == MonitorStatusEnabled
}

// MonitorsService manages monitors and their runs.
type MonitorsService struct {
	client *Client
}

// Create schedules a monitor for a webset.
func (s *MonitorsService) Create(ctx context.Context, params CreateMonitorParams) (*Monitor, error) {
	if err := requireID("websetId", params.WebsetID); err != nil {
		return nil, err
	}
	if err := requireText("cadence.cron", params.Cadence.Cron); err != nil {
		return nil, err
	}
	if err := validateMonitorBehavior("behavior", params.Behavior.Type); err != nil {
		return nil, err
	}
	if err := validateMetadata("metadata", params.Metadata); err != nil {
		return nil, err
	}
	return do[Monitor](ctx, s.client, http.MethodPost, monitorsPath, params)
}

// Get fetches a monitor.
func (s *MonitorsService) Get(ctx context.Context, id string) (*Monitor, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return do[Monitor](ctx, s.client, http.MethodGet, pathf(monitorsPath, id), nil)
}

// List returns one page of monitors.
func (s *MonitorsService) List(ctx context.Context, params ListParams) (*Page[Monitor], error) {
	return do[Page[Monitor]](ctx, s.client, http.MethodGet, monitorsPath, params)
}

// Update changes a monitor's status, schedule or behavior.
func (s *MonitorsService) Update(ctx context.Context, id string, params UpdateMonitorParams) (*Monitor, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	switch params.Status {
	case "", MonitorStatusEnabled, MonitorStatusDisabled:
	default:
		return nil, &exaerrors.ValidationError{Field: "status", Message: "must be one of: enabled, disabled"}
	}
	if params.Behavior != nil {
		if err := validateMonitorBehavior("behavior", params.Behavior.Type); err != nil {
			return nil, err
		}
	}
	if err := validateMetadata("metadata", params.Metadata); err != nil {
		return nil, err
	}
	return do[Monitor](ctx, s.client, http.MethodPatch, pathf(monitorsPath, id), params)
}

// Delete removes a monitor.
func (s *MonitorsService) Delete(ctx context.Context, id string) (*Monitor, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return do[Monitor](ctx, s.client, http.MethodDelete, pathf(monitorsPath, id), nil)
}

// ListRuns returns one page of a monitor's runs.
func (s *MonitorsService) ListRuns(ctx context.Context, monitorID string, params ListParams) (*Page[MonitorRun], error) {
	if err := requireID("monitor_id", monitorID); err != nil {
		return nil, err
	}
	return do[Page[MonitorRun]](ctx, s.client, http.MethodGet, pathf(monitorsPath, monitorID, "runs"), params)
}

// GetRun fetches one monitor run.
func (s *MonitorsService) GetRun(ctx context.Context, monitorID, runID string) (*MonitorRun, error) {
	if err := requireID("monitor_id", monitorID); err != nil {
		return nil, err
	}
	if err := requireID("run_id", runID); err != nil {
		return nil, err
	}
	return do[MonitorRun](ctx, s.client, http.MethodGet, pathf(monitorsPath, monitorID, "runs", runID), nil)
}
