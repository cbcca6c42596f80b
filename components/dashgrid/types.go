package dashgrid

import "context"

// WidgetType identifies the render function used for a widget. The engine
// treats rendering as opaque; types matter only for default footprints and
// configuration schemas.
type WidgetType string

const (
	WidgetLineChart       WidgetType = "line-chart"
	WidgetBarChart        WidgetType = "bar-chart"
	WidgetTable           WidgetType = "table"
	WidgetMetricCard      WidgetType = "metric-card"
	WidgetGauge           WidgetType = "gauge"
	WidgetCalendarHeatmap WidgetType = "calendar-heatmap"
	WidgetFreeText        WidgetType = "free-text"
)

// Position is a widget rectangle in grid units.
type Position struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"w" yaml:"w"`
	Height int `json:"h" yaml:"h"`
}

// Size is a requested widget footprint in grid units.
type Size struct {
	Width  int `json:"w" yaml:"w"`
	Height int `json:"h" yaml:"h"`
}

// GridLayout describes the dashboard grid coordinate system.
type GridLayout struct {
	Columns   int `json:"columns" yaml:"columns"`
	RowHeight int `json:"row_height" yaml:"row_height"`
	Margin    int `json:"margin" yaml:"margin"`
}

// Widget is a placed dashboard widget. DataConfig is opaque to the engine
// beyond schema validation; RefreshInterval is an advisory hint for renderers
// (0 = manual refresh only).
type Widget struct {
	ID              string         `json:"id" yaml:"id"`
	Type            WidgetType     `json:"type" yaml:"type"`
	Title           string         `json:"title" yaml:"title"`
	Position        Position       `json:"position" yaml:"position"`
	DataSource      string         `json:"data_source,omitempty" yaml:"data_source,omitempty"`
	DataConfig      map[string]any `json:"data_config,omitempty" yaml:"data_config,omitempty"`
	RefreshInterval int            `json:"refresh_interval,omitempty" yaml:"refresh_interval,omitempty"`
	Interactive     bool           `json:"interactive,omitempty" yaml:"interactive,omitempty"`
	Exportable      bool           `json:"exportable,omitempty" yaml:"exportable,omitempty"`
}

// Dashboard is the canonical widget set plus grid metadata for one board.
type Dashboard struct {
	ID          string     `json:"id" yaml:"id"`
	OwnerID     string     `json:"owner_id" yaml:"owner_id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Layout      GridLayout `json:"layout" yaml:"layout"`
	Widgets     []Widget   `json:"widgets" yaml:"widgets"`
	Shared      bool       `json:"shared,omitempty" yaml:"shared,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Mode toggles drag/resize affordances and the synchronizer connection.
type Mode string

const (
	ModeView Mode = "view"
	ModeEdit Mode = "edit"
)

// WidgetPayload is the last data payload received for one widget.
type WidgetPayload map[string]any

// DataFrame is one partial server-push message: only the widgets present in
// the map are touched on merge.
type DataFrame struct {
	WidgetData map[string]WidgetPayload `json:"widget_data"`
}

// ReorderEntry pairs a widget with its rectangle for the atomic reorder save.
type ReorderEntry struct {
	WidgetID string   `json:"widgetId"`
	Position Position `json:"position"`
}

// DashboardClient is the persistence backend consumed by the facade. The wire
// shape belongs to the backend; implementations live in pkg/journalapi.
type DashboardClient interface {
	Dashboard(ctx context.Context, id string) (Dashboard, error)
	SaveDashboard(ctx context.Context, d Dashboard) error
	CreateWidget(ctx context.Context, dashboardID string, w Widget) (Widget, error)
	UpdateWidget(ctx context.Context, dashboardID string, w Widget) (Widget, error)
	DeleteWidget(ctx context.Context, dashboardID, widgetID string) error
	ReorderWidgets(ctx context.Context, dashboardID string, entries []ReorderEntry) error
	WidgetData(ctx context.Context, dashboardID string) (map[string]WidgetPayload, error)
}

// QuotaSource reports the widget-count ceiling for a dashboard owner.
// Consulted, never mutated.
type QuotaSource interface {
	WidgetQuota(ctx context.Context, ownerID string) (int, error)
}

// StreamSource opens the server-push subscription for a dashboard.
type StreamSource interface {
	Subscribe(ctx context.Context, dashboardID string) (Stream, error)
}

// Stream delivers partial widget-data frames until closed. Frames is closed
// when the connection drops; Err reports why.
type Stream interface {
	Frames() <-chan DataFrame
	Err() error
	Close() error
}

// DataEvent describes merged widget data that transports may fan out.
type DataEvent struct {
	DashboardID string                   `json:"dashboard_id"`
	WidgetIDs   []string                 `json:"widget_ids"`
	Data        map[string]WidgetPayload `json:"data"`
}

// DataHook notifies transports (WebSocket/SSE) about merged widget data.
type DataHook interface {
	WidgetDataUpdated(ctx context.Context, event DataEvent) error
}

type noopDataHook struct{}

func (noopDataHook) WidgetDataUpdated(context.Context, DataEvent) error { return nil }
