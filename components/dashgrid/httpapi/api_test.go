package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
	"github.com/tradevue/go-dashgrid/components/dashgrid/commands"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(_ context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

type stubSnapshots struct {
	snap dashgrid.Snapshot
}

func (s *stubSnapshots) Snapshot() dashgrid.Snapshot { return s.snap }

func TestHandleSnapshot(t *testing.T) {
	source := &stubSnapshots{snap: dashgrid.Snapshot{
		Dashboard: dashgrid.Dashboard{ID: "dash-1", Layout: dashgrid.GridLayout{Columns: 12}},
		Mode:      dashgrid.ModeView,
		Revision:  3,
	}}
	api := &Handlers{Snapshots: source}
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	api.HandleSnapshot(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap dashgrid.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Dashboard.ID != "dash-1" || snap.Revision != 3 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestHandleAddWidget(t *testing.T) {
	add := &stubCommander[dashgrid.AddWidgetRequest]{}
	api := &Handlers{Add: add}
	payload := dashgrid.AddWidgetRequest{Type: dashgrid.WidgetLineChart, DataConfig: map[string]any{"metric": "pnl"}}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/widgets", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleAddWidget(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if add.calls != 1 || add.last.Type != dashgrid.WidgetLineChart {
		t.Fatalf("expected add to execute with payload, got %+v", add.last)
	}
}

func TestHandleAddWidgetQuotaExceeded(t *testing.T) {
	add := &stubCommander[dashgrid.AddWidgetRequest]{err: &dashgrid.QuotaExceededError{Plan: "free", Limit: 4}}
	api := &Handlers{Add: add}
	buf, _ := json.Marshal(dashgrid.AddWidgetRequest{Type: dashgrid.WidgetTable})
	req := httptest.NewRequest(http.MethodPost, "/widgets", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleAddWidget(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandleAddWidgetBadJSON(t *testing.T) {
	api := &Handlers{Add: &stubCommander[dashgrid.AddWidgetRequest]{}}
	req := httptest.NewRequest(http.MethodPost, "/widgets", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	api.HandleAddWidget(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRemoveWidget(t *testing.T) {
	remove := &stubCommander[commands.RemoveWidgetInput]{}
	api := &Handlers{Remove: remove}
	req := httptest.NewRequest(http.MethodDelete, "/widgets/w1", nil)
	rec := httptest.NewRecorder()
	api.HandleRemoveWidget(rec, req, "w1")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if remove.last.WidgetID != "w1" {
		t.Fatalf("expected widget id propagation")
	}
}

func TestHandleUpdateWidget(t *testing.T) {
	update := &stubCommander[commands.UpdateWidgetInput]{}
	api := &Handlers{Update: update}
	title := "Renamed"
	buf, _ := json.Marshal(dashgrid.WidgetPatch{Title: &title})
	req := httptest.NewRequest(http.MethodPatch, "/widgets/w1", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleUpdateWidget(rec, req, "w1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if update.last.WidgetID != "w1" || update.last.Patch.Title == nil {
		t.Fatalf("expected patch propagation, got %+v", update.last)
	}
}

func TestHandleUpdateWidgetValidationFailure(t *testing.T) {
	update := &stubCommander[commands.UpdateWidgetInput]{err: &dashgrid.ValidationError{Reason: "overlap"}}
	api := &Handlers{Update: update}
	buf, _ := json.Marshal(dashgrid.WidgetPatch{})
	req := httptest.NewRequest(http.MethodPatch, "/widgets/w1", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleUpdateWidget(rec, req, "w1")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestHandleReorderWidgets(t *testing.T) {
	reorder := &stubCommander[commands.ReorderWidgetsInput]{}
	api := &Handlers{Reorder: reorder}
	payload := commands.ReorderWidgetsInput{WidgetIDs: []string{"w2", "w1"}}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, "/widgets/order", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleReorderWidgets(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if reorder.calls != 1 {
		t.Fatalf("expected reorder to execute")
	}
}

func TestHandleSetMode(t *testing.T) {
	mode := &stubCommander[commands.SetModeInput]{}
	api := &Handlers{Mode: mode}
	buf, _ := json.Marshal(commands.SetModeInput{Mode: dashgrid.ModeEdit})
	req := httptest.NewRequest(http.MethodPut, "/mode", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleSetMode(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if mode.last.Mode != dashgrid.ModeEdit {
		t.Fatalf("expected mode propagation")
	}
}

func TestHandleRefresh(t *testing.T) {
	refresh := &stubCommander[commands.RefreshInput]{}
	api := &Handlers{Refresh: refresh}
	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if refresh.calls != 1 {
		t.Fatalf("expected refresh to execute")
	}
}

func TestHandleRefreshPersistenceFailure(t *testing.T) {
	refresh := &stubCommander[commands.RefreshInput]{err: &dashgrid.PersistenceError{Op: "refresh"}}
	api := &Handlers{Refresh: refresh}
	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
