package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
)

func TestAddWidgetCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewAddWidgetCommand(service, nil)
	req := dashgrid.AddWidgetRequest{Type: dashgrid.WidgetLineChart}
	if err := cmd.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.addCalls != 1 {
		t.Fatalf("expected add call")
	}
}

func TestAddWidgetCommandRequiresType(t *testing.T) {
	cmd := NewAddWidgetCommand(&stubService{}, nil)
	if err := cmd.Execute(context.Background(), dashgrid.AddWidgetRequest{}); err == nil {
		t.Fatalf("expected error for missing type")
	}
}

func TestRemoveWidgetCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRemoveWidgetCommand(service, nil)
	if err := cmd.Execute(context.Background(), RemoveWidgetInput{WidgetID: "w1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.removeCalls != 1 {
		t.Fatalf("expected remove call")
	}
}

func TestUpdateWidgetCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewUpdateWidgetCommand(service, nil)
	title := "Renamed"
	input := UpdateWidgetInput{WidgetID: "w1", Patch: dashgrid.WidgetPatch{Title: &title}}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.updateCalls != 1 {
		t.Fatalf("expected update call")
	}
}

func TestReorderWidgetsCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewReorderWidgetsCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), ReorderWidgetsInput{WidgetIDs: []string{"b", "a"}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.finalizeCalls != 1 {
		t.Fatalf("expected finalize call")
	}
	if service.abortCalls != 0 {
		t.Fatalf("unexpected abort")
	}
	if telemetry.calls == 0 {
		t.Fatalf("expected telemetry to record events")
	}
}

func TestReorderWidgetsCommandAbortsOnConsiderFailure(t *testing.T) {
	service := &stubService{considerErr: &dashgrid.ValidationError{Reason: "stale order"}}
	cmd := NewReorderWidgetsCommand(service, nil)
	if err := cmd.Execute(context.Background(), ReorderWidgetsInput{WidgetIDs: []string{"a"}}); err == nil {
		t.Fatalf("expected consider error to surface")
	}
	if service.abortCalls != 1 {
		t.Fatalf("expected abort after consider failure")
	}
}

func TestResizeWidgetCommand(t *testing.T) {
	service := &stubService{
		snapshot: dashgrid.Snapshot{Dashboard: dashgrid.Dashboard{
			Layout: dashgrid.GridLayout{Columns: 12},
			Widgets: []dashgrid.Widget{
				{ID: "w1", Position: dashgrid.Position{X: 0, Y: 0, Width: 4, Height: 3}},
			},
		}},
		resizePos: dashgrid.Position{X: 0, Y: 0, Width: 6, Height: 4},
	}
	cmd := NewResizeWidgetCommand(service, nil)
	input := ResizeWidgetInput{WidgetID: "w1", Width: 6, Height: 4}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.endCalls != 1 {
		t.Fatalf("expected finalized gesture, got %d", service.endCalls)
	}
}

func TestResizeWidgetCommandCancelsWhenBlocked(t *testing.T) {
	service := &stubService{
		snapshot: dashgrid.Snapshot{Dashboard: dashgrid.Dashboard{
			Layout: dashgrid.GridLayout{Columns: 12},
			Widgets: []dashgrid.Widget{
				{ID: "w1", Position: dashgrid.Position{X: 0, Y: 0, Width: 4, Height: 3}},
			},
		}},
		resizePos: dashgrid.Position{X: 0, Y: 0, Width: 4, Height: 3},
	}
	cmd := NewResizeWidgetCommand(service, nil)
	input := ResizeWidgetInput{WidgetID: "w1", Width: 8, Height: 3}
	err := cmd.Execute(context.Background(), input)
	if !dashgrid.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if service.cancelCalls != 1 {
		t.Fatalf("expected cancelled gesture, got %d", service.cancelCalls)
	}
	if service.endCalls != 0 {
		t.Fatalf("unexpected finalize")
	}
}

func TestSetModeCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewSetModeCommand(service, nil)
	if err := cmd.Execute(context.Background(), SetModeInput{Mode: dashgrid.ModeEdit}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.mode != dashgrid.ModeEdit {
		t.Fatalf("mode = %s", service.mode)
	}
}

func TestRefreshCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRefreshCommand(service, nil)
	if err := cmd.Execute(context.Background(), RefreshInput{}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.refreshCalls != 1 {
		t.Fatalf("expected refresh call")
	}
}

func TestExportSnapshotCommandWritesFile(t *testing.T) {
	service := &stubService{exportOut: []byte("<html/>")}
	cmd := NewExportSnapshotCommand(service, nil)
	path := filepath.Join(t.TempDir(), "board.html")
	input := ExportSnapshotInput{Format: dashgrid.ExportHTML, Path: path}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(out) != "<html/>" {
		t.Fatalf("export content = %q", out)
	}
}

func TestSeedDashboardCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewSeedDashboardCommand(service, nil)
	input := SeedDashboardInput{Widgets: []dashgrid.SeedWidget{
		{Type: dashgrid.WidgetLineChart, Title: "Equity", DataConfig: map[string]any{"metric": "equity"}},
		{Type: dashgrid.WidgetMetricCard, DataConfig: map[string]any{"metric": "win_rate"}},
	}}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.addCalls != 2 {
		t.Fatalf("expected two seed adds, got %d", service.addCalls)
	}
}

type stubService struct {
	addCalls      int
	removeCalls   int
	updateCalls   int
	refreshCalls  int
	finalizeCalls int
	abortCalls    int
	endCalls      int
	cancelCalls   int
	considerErr   error
	mode          dashgrid.Mode
	exportOut     []byte
	snapshot      dashgrid.Snapshot
	resizePos     dashgrid.Position
}

func (s *stubService) AddWidget(_ context.Context, req dashgrid.AddWidgetRequest) (dashgrid.Widget, error) {
	s.addCalls++
	return dashgrid.Widget{ID: "generated", Type: req.Type}, nil
}

func (s *stubService) RemoveWidget(context.Context, string) error {
	s.removeCalls++
	return nil
}

func (s *stubService) UpdateWidget(_ context.Context, widgetID string, _ dashgrid.WidgetPatch) (dashgrid.Widget, error) {
	s.updateCalls++
	return dashgrid.Widget{ID: widgetID}, nil
}

func (s *stubService) BeginReorder() error { return nil }

func (s *stubService) ConsiderReorder([]string) error { return s.considerErr }

func (s *stubService) FinalizeReorder(context.Context) error {
	s.finalizeCalls++
	return nil
}

func (s *stubService) AbortReorder() { s.abortCalls++ }

func (s *stubService) SetMode(_ context.Context, mode dashgrid.Mode) error {
	s.mode = mode
	return nil
}

func (s *stubService) Refresh(context.Context) error {
	s.refreshCalls++
	return nil
}

func (s *stubService) ExportSnapshot(context.Context, string) ([]byte, error) {
	return s.exportOut, nil
}

func (s *stubService) Snapshot() dashgrid.Snapshot { return s.snapshot }

func (s *stubService) BeginResize(string, dashgrid.ResizeDirection, float64, float64, float64, float64) error {
	return nil
}

func (s *stubService) MoveResize(float64, float64) (dashgrid.Position, bool) {
	return s.resizePos, true
}

func (s *stubService) EndResize(context.Context) (dashgrid.Widget, error) {
	s.endCalls++
	return dashgrid.Widget{Position: s.resizePos}, nil
}

func (s *stubService) CancelResize() { s.cancelCalls++ }

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}
