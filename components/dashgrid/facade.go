package dashgrid

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultColumns is used when the backend omits a grid width.
const DefaultColumns = 12

// SnapshotExporter renders the current grid to a static document.
type SnapshotExporter interface {
	Export(ctx context.Context, snap Snapshot, data map[string]WidgetPayload, format string) ([]byte, error)
}

// Options configures the dashboard Facade. Every collaborator is provided via
// interface so applications can swap implementations without importing
// internal packages.
type Options struct {
	Client       DashboardClient
	Quota        QuotaSource
	Streams      StreamSource
	Registry     *Registry
	Validator    ConfigValidator
	DataHook     DataHook
	Exporter     SnapshotExporter
	Telemetry    Telemetry
	Backoff      time.Duration
	FetchTimeout time.Duration
	Mode         Mode
	// OnSaveError observes asynchronous persistence failures after the local
	// model has been rolled back to the last-known server state.
	OnSaveError func(error)
}

// Facade orchestrates the grid model, placement solver, gesture controllers,
// and synchronizer for one open dashboard, and exposes the public operations.
type Facade struct {
	opts Options
	id   string

	store   *Store
	data    *DataStore
	saver   *Saver
	sync    *Synchronizer
	resize  *ResizeController
	reorder *ReorderController

	serverMu   sync.Mutex
	lastServer Dashboard

	gestureMu    sync.Mutex
	gestureOwner string
}

// AddWidgetRequest captures the data required to create a widget.
type AddWidgetRequest struct {
	Type            WidgetType     `json:"type"`
	Title           string         `json:"title,omitempty"`
	Size            *Size          `json:"size,omitempty"`
	DataSource      string         `json:"data_source,omitempty"`
	DataConfig      map[string]any `json:"data_config,omitempty"`
	RefreshInterval int            `json:"refresh_interval,omitempty"`
}

// WidgetPatch merges partial fields into a widget. Position is only touched
// when explicitly included.
type WidgetPatch struct {
	Title           *string        `json:"title,omitempty"`
	DataSource      *string        `json:"data_source,omitempty"`
	DataConfig      map[string]any `json:"data_config,omitempty"`
	RefreshInterval *int           `json:"refresh_interval,omitempty"`
	Interactive     *bool          `json:"interactive,omitempty"`
	Exportable      *bool          `json:"exportable,omitempty"`
	Position        *Position      `json:"position,omitempty"`
}

// Open fetches the dashboard and builds a facade around it. The synchronizer
// starts immediately when the initial mode is view and a stream source is
// configured.
func Open(ctx context.Context, dashboardID string, opts Options) (*Facade, error) {
	if opts.Client == nil {
		return nil, errMissingClient
	}
	if dashboardID == "" {
		return nil, errMissingDashboard
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.Quota == nil {
		opts.Quota = StaticQuota(QuotaForPlan("free"))
	}
	if opts.DataHook == nil {
		opts.DataHook = noopDataHook{}
	}
	if opts.Exporter == nil {
		opts.Exporter = NewExporter()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.Mode == "" {
		opts.Mode = ModeView
	}

	d, err := opts.Client.Dashboard(ctx, dashboardID)
	if err != nil {
		return nil, &PersistenceError{Op: "load dashboard", Err: err}
	}
	if d.Layout.Columns <= 0 {
		d.Layout.Columns = DefaultColumns
	}

	f := &Facade{
		opts:       opts,
		id:         dashboardID,
		store:      NewStore(d),
		data:       NewDataStore(),
		saver:      NewSaver(),
		resize:     NewResizeController(),
		reorder:    NewReorderController(),
		lastServer: cloneDashboard(d),
	}
	if opts.Mode != ModeView {
		f.store.SetMode(opts.Mode)
	}
	if opts.Streams != nil {
		f.sync, err = NewSynchronizer(SyncOptions{
			DashboardID:  dashboardID,
			Fetcher:      opts.Client,
			Streams:      opts.Streams,
			Data:         f.data,
			Hook:         opts.DataHook,
			Telemetry:    opts.Telemetry,
			Backoff:      opts.Backoff,
			FetchTimeout: opts.FetchTimeout,
		})
		if err != nil {
			return nil, err
		}
		if opts.Mode == ModeView {
			f.sync.Start()
		}
	}
	return f, nil
}

// Snapshot returns the current immutable dashboard snapshot.
func (f *Facade) Snapshot() Snapshot {
	return f.store.Snapshot()
}

// Mode returns the active mode.
func (f *Facade) Mode() Mode {
	return f.store.Snapshot().Mode
}

// Subscribe exposes snapshot change notifications.
func (f *Facade) Subscribe() (<-chan Snapshot, func()) {
	return f.store.Subscribe()
}

// Data exposes the widget data store for rendering.
func (f *Facade) Data() *DataStore {
	return f.data
}

// SyncState reports the synchronizer state, DISCONNECTED when no stream
// source is configured.
func (f *Facade) SyncState() SyncState {
	if f.sync == nil {
		return SyncDisconnected
	}
	return f.sync.State()
}

// AddWidget places and persists a new widget. It rejects with
// QuotaExceededError when the plan ceiling is reached, leaving the widget
// list untouched.
func (f *Facade) AddWidget(ctx context.Context, req AddWidgetRequest) (Widget, error) {
	snap := f.store.Snapshot()

	limit, err := f.opts.Quota.WidgetQuota(ctx, snap.Dashboard.OwnerID)
	if err != nil {
		return Widget{}, fmt.Errorf("dashgrid: quota lookup: %w", err)
	}
	if len(snap.Dashboard.Widgets) >= limit {
		return Widget{}, &QuotaExceededError{Limit: limit}
	}

	def, known := f.opts.Registry.Definition(req.Type)
	if known {
		if err := f.opts.Validator.Validate(def, req.DataConfig); err != nil {
			return Widget{}, err
		}
	}

	size := f.opts.Registry.Footprint(req.Type)
	if req.Size != nil {
		size = *req.Size
	}
	grid := snap.Grid()
	position := grid.Place(size)

	title := req.Title
	if title == "" && known {
		title = def.Name
	}
	widget := Widget{
		ID:              uuid.NewString(),
		Type:            req.Type,
		Title:           title,
		Position:        position,
		DataSource:      req.DataSource,
		DataConfig:      req.DataConfig,
		RefreshInterval: req.RefreshInterval,
		Interactive:     true,
		Exportable:      true,
	}

	var created Widget
	err = f.saver.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = f.opts.Client.CreateWidget(ctx, f.id, widget)
		return err
	})
	if err != nil {
		return Widget{}, &PersistenceError{Op: "add widget", Err: err}
	}
	if created.ID == "" {
		created = widget
	}

	next := f.store.Update(func(d *Dashboard) {
		d.Widgets = append(d.Widgets, created)
	})
	f.setLastServer(next.Dashboard)
	f.opts.Telemetry.Record(ctx, "dashgrid.widget.add", map[string]any{
		"dashboard_id": f.id,
		"widget_type":  string(req.Type),
	})
	return created, nil
}

// RemoveWidget deletes a widget locally and persists the delete. Idempotent
// when the id is already absent.
func (f *Facade) RemoveWidget(ctx context.Context, widgetID string) error {
	if widgetID == "" {
		return errMissingWidget
	}
	snap := f.store.Snapshot()
	if _, ok := snap.Widget(widgetID); !ok {
		return nil
	}
	err := f.saver.Do(ctx, func(ctx context.Context) error {
		return f.opts.Client.DeleteWidget(ctx, f.id, widgetID)
	})
	if err != nil {
		return &PersistenceError{Op: "remove widget", Err: err}
	}
	next := f.store.Update(func(d *Dashboard) {
		widgets := d.Widgets[:0]
		for _, w := range d.Widgets {
			if w.ID != widgetID {
				widgets = append(widgets, w)
			}
		}
		d.Widgets = widgets
	})
	f.data.Remove(widgetID)
	f.setLastServer(next.Dashboard)
	f.opts.Telemetry.Record(ctx, "dashgrid.widget.remove", map[string]any{
		"dashboard_id": f.id,
		"widget_id":    widgetID,
	})
	return nil
}

// UpdateWidget merges partial fields into a widget and persists the result.
func (f *Facade) UpdateWidget(ctx context.Context, widgetID string, patch WidgetPatch) (Widget, error) {
	if widgetID == "" {
		return Widget{}, errMissingWidget
	}
	snap := f.store.Snapshot()
	widget, ok := snap.Widget(widgetID)
	if !ok {
		return Widget{}, &ValidationError{Reason: fmt.Sprintf("widget %s not found", widgetID)}
	}

	merged := cloneWidget(widget)
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.DataSource != nil {
		merged.DataSource = *patch.DataSource
	}
	if patch.DataConfig != nil {
		merged.DataConfig = patch.DataConfig
	}
	if patch.RefreshInterval != nil {
		merged.RefreshInterval = *patch.RefreshInterval
	}
	if patch.Interactive != nil {
		merged.Interactive = *patch.Interactive
	}
	if patch.Exportable != nil {
		merged.Exportable = *patch.Exportable
	}
	if patch.Position != nil {
		grid := snap.Grid()
		if err := grid.ValidatePosition(*patch.Position); err != nil {
			return Widget{}, err
		}
		if grid.WouldOverlapAny(*patch.Position, widgetID) {
			return Widget{}, &ValidationError{Reason: fmt.Sprintf("position for widget %s overlaps a sibling", widgetID)}
		}
		merged.Position = *patch.Position
	}
	if patch.DataConfig != nil {
		if def, known := f.opts.Registry.Definition(merged.Type); known {
			if err := f.opts.Validator.Validate(def, merged.DataConfig); err != nil {
				return Widget{}, err
			}
		}
	}

	var updated Widget
	err := f.saver.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = f.opts.Client.UpdateWidget(ctx, f.id, merged)
		return err
	})
	if err != nil {
		return Widget{}, &PersistenceError{Op: "update widget", Err: err}
	}
	if updated.ID == "" {
		updated = merged
	}
	next := f.store.Update(func(d *Dashboard) {
		for i := range d.Widgets {
			if d.Widgets[i].ID == widgetID {
				d.Widgets[i] = updated
				return
			}
		}
	})
	f.setLastServer(next.Dashboard)
	f.opts.Telemetry.Record(ctx, "dashgrid.widget.update", map[string]any{
		"dashboard_id": f.id,
		"widget_id":    widgetID,
	})
	return updated, nil
}

// BeginResize acquires the exclusive gesture capture and starts a resize.
func (f *Facade) BeginResize(widgetID string, dir ResizeDirection, pointerX, pointerY, colPx, rowPx float64) error {
	if err := f.acquireGesture("resize"); err != nil {
		return err
	}
	if err := f.resize.Begin(f.store.Snapshot(), widgetID, dir, pointerX, pointerY, colPx, rowPx); err != nil {
		f.releaseGesture("resize")
		return err
	}
	return nil
}

// MoveResize consumes one pointer-move tick and returns the accepted size.
func (f *Facade) MoveResize(pointerX, pointerY float64) (Position, bool) {
	return f.resize.Move(f.store.Snapshot().Grid(), pointerX, pointerY)
}

// EndResize releases the capture, applies the final accepted rectangle, and
// persists it. Persistence is asynchronous and coalesced; failures roll the
// local model back to the last-known server state.
func (f *Facade) EndResize(ctx context.Context) (Widget, error) {
	widgetID, final, err := f.resize.End()
	f.releaseGesture("resize")
	if err != nil {
		return Widget{}, err
	}
	snap := f.store.Snapshot()
	widget, ok := snap.Widget(widgetID)
	if !ok {
		return Widget{}, &ValidationError{Reason: fmt.Sprintf("widget %s not found", widgetID)}
	}
	if widget.Position == final {
		return widget, nil
	}
	widget.Position = final
	f.store.Update(func(d *Dashboard) {
		for i := range d.Widgets {
			if d.Widgets[i].ID == widgetID {
				d.Widgets[i].Position = final
				return
			}
		}
	})
	f.persistAsync(ctx, "resize widget", func(ctx context.Context) (Dashboard, error) {
		snap := f.store.Snapshot()
		current, ok := snap.Widget(widgetID)
		if !ok {
			return snap.Dashboard, nil
		}
		_, err := f.opts.Client.UpdateWidget(ctx, f.id, current)
		return snap.Dashboard, err
	})
	f.opts.Telemetry.Record(ctx, "dashgrid.widget.resize", map[string]any{
		"dashboard_id": f.id,
		"widget_id":    widgetID,
	})
	return widget, nil
}

// CancelResize abandons the gesture, leaving the widget at its prior size.
func (f *Facade) CancelResize() {
	f.resize.Cancel()
	f.releaseGesture("resize")
}

// BeginReorder acquires the exclusive gesture capture and snapshots the
// current order as the committed baseline.
func (f *Facade) BeginReorder() error {
	if err := f.acquireGesture("reorder"); err != nil {
		return err
	}
	snap := f.store.Snapshot()
	order := make([]string, len(snap.Dashboard.Widgets))
	for i, w := range snap.Dashboard.Widgets {
		order[i] = w.ID
	}
	if err := f.reorder.Begin(order); err != nil {
		f.releaseGesture("reorder")
		return err
	}
	return nil
}

// ConsiderReorder previews an intermediate order without committing it.
func (f *Facade) ConsiderReorder(order []string) error {
	return f.reorder.Consider(order)
}

// AbortReorder discards the pending order; the committed order and every
// position stay exactly as before the gesture.
func (f *Facade) AbortReorder() {
	f.reorder.Abort()
	f.releaseGesture("reorder")
}

// FinalizeReorder commits the pending order, applies it locally, and persists
// the full {widgetId, position} list as one atomic save.
func (f *Facade) FinalizeReorder(ctx context.Context) error {
	order, err := f.reorder.Finalize()
	f.releaseGesture("reorder")
	if err != nil {
		return err
	}
	f.store.Update(func(d *Dashboard) {
		index := make(map[string]Widget, len(d.Widgets))
		for _, w := range d.Widgets {
			index[w.ID] = w
		}
		widgets := make([]Widget, 0, len(d.Widgets))
		for _, id := range order {
			if w, ok := index[id]; ok {
				widgets = append(widgets, w)
			}
		}
		d.Widgets = widgets
	})
	f.persistAsync(ctx, "reorder widgets", func(ctx context.Context) (Dashboard, error) {
		snap := f.store.Snapshot()
		entries := make([]ReorderEntry, len(snap.Dashboard.Widgets))
		for i, w := range snap.Dashboard.Widgets {
			entries[i] = ReorderEntry{WidgetID: w.ID, Position: w.Position}
		}
		return snap.Dashboard, f.opts.Client.ReorderWidgets(ctx, f.id, entries)
	})
	f.opts.Telemetry.Record(ctx, "dashgrid.widget.reorder", map[string]any{
		"dashboard_id": f.id,
		"count":        len(order),
	})
	return nil
}

// SetMode toggles drag/resize affordances and the synchronizer connection.
// Entering edit mode forces the stream DISCONNECTED before this returns.
func (f *Facade) SetMode(ctx context.Context, mode Mode) error {
	switch mode {
	case ModeEdit, ModeView:
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
	f.store.SetMode(mode)
	if f.sync != nil {
		f.sync.SetMode(mode)
	}
	f.opts.Telemetry.Record(ctx, "dashgrid.mode", map[string]any{
		"dashboard_id": f.id,
		"mode":         string(mode),
	})
	return nil
}

// Refresh performs one manual batch fetch of all widget data.
func (f *Facade) Refresh(ctx context.Context) error {
	if f.sync != nil {
		return f.sync.Refresh(ctx)
	}
	batch, err := f.opts.Client.WidgetData(ctx, f.id)
	if err != nil {
		return &StreamError{Err: err}
	}
	f.data.Replace(batch)
	return nil
}

// ExportSnapshot renders the current grid to a static document. It forces
// view mode for the duration so drag handles are not captured, then restores
// the prior mode.
func (f *Facade) ExportSnapshot(ctx context.Context, format string) ([]byte, error) {
	prior := f.Mode()
	if prior != ModeView {
		if err := f.SetMode(ctx, ModeView); err != nil {
			return nil, err
		}
		defer func() {
			_ = f.SetMode(ctx, prior)
		}()
	}
	out, err := f.opts.Exporter.Export(ctx, f.store.Snapshot(), f.data.All(), format)
	if err != nil {
		return nil, err
	}
	f.opts.Telemetry.Record(ctx, "dashgrid.export", map[string]any{
		"dashboard_id": f.id,
		"format":       format,
	})
	return out, nil
}

// Flush waits for in-flight persistence. Intended for shutdown and tests.
func (f *Facade) Flush() {
	f.saver.Flush()
}

// Close stops the synchronizer, waits for pending saves, and clears the
// ephemeral widget data store.
func (f *Facade) Close() {
	if f.sync != nil {
		f.sync.Close()
	}
	f.saver.Flush()
	f.data.Clear()
}

// persistAsync enqueues a coalesced save. The payload is built from the
// current snapshot when the save actually runs, so a save that lands late can
// never overwrite fields a newer one already persisted. On failure the local
// model reverts to the last-known server state, since local-only drift is
// never authoritative.
func (f *Facade) persistAsync(ctx context.Context, op string, save func(ctx context.Context) (Dashboard, error)) {
	var persisted Dashboard
	ran := false
	f.saver.Enqueue(context.WithoutCancel(ctx), func(ctx context.Context) error {
		d, err := save(ctx)
		if err == nil {
			persisted = d
			ran = true
		}
		return err
	}, func(err error) {
		if err == nil {
			// A coalesced-away save never ran; the surviving save's own
			// callback records what the server has.
			if ran {
				f.setLastServer(persisted)
			}
			return
		}
		perr := &PersistenceError{Op: op, Err: err}
		f.store.Replace(f.lastServerCopy())
		f.opts.Telemetry.Record(ctx, "dashgrid.persist.error", map[string]any{
			"dashboard_id": f.id,
			"op":           op,
			"error":        err.Error(),
		})
		if f.opts.OnSaveError != nil {
			f.opts.OnSaveError(perr)
		}
	})
}

func (f *Facade) setLastServer(d Dashboard) {
	f.serverMu.Lock()
	f.lastServer = cloneDashboard(d)
	f.serverMu.Unlock()
}

func (f *Facade) lastServerCopy() Dashboard {
	f.serverMu.Lock()
	defer f.serverMu.Unlock()
	return cloneDashboard(f.lastServer)
}

// acquireGesture enforces exclusive pointer capture across resize and reorder
// and restricts gestures to edit mode.
func (f *Facade) acquireGesture(owner string) error {
	if f.Mode() != ModeEdit {
		return &ValidationError{Reason: "gestures require edit mode"}
	}
	f.gestureMu.Lock()
	defer f.gestureMu.Unlock()
	if f.gestureOwner != "" {
		return errGestureActive
	}
	f.gestureOwner = owner
	return nil
}

func (f *Facade) releaseGesture(owner string) {
	f.gestureMu.Lock()
	defer f.gestureMu.Unlock()
	if f.gestureOwner == owner {
		f.gestureOwner = ""
	}
}
