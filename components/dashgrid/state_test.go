package dashgrid

import "testing"

func stateFixture() Dashboard {
	return Dashboard{
		ID:     "dash-1",
		Layout: GridLayout{Columns: 12},
		Widgets: []Widget{
			{ID: "w1", Type: WidgetLineChart, Position: Position{X: 0, Y: 0, Width: 4, Height: 3},
				DataConfig: map[string]any{"metric": "pnl"}},
		},
	}
}

func TestStoreSnapshotsAreIsolated(t *testing.T) {
	store := NewStore(stateFixture())
	snap := store.Snapshot()

	// Mutating a handed-out snapshot must not leak into the store.
	snap.Dashboard.Widgets[0].Position.X = 9
	snap.Dashboard.Widgets[0].DataConfig["metric"] = "drawdown"

	fresh := store.Snapshot()
	if fresh.Dashboard.Widgets[0].Position.X != 0 {
		t.Fatalf("snapshot mutation leaked into store: %v", fresh.Dashboard.Widgets[0].Position)
	}
	if fresh.Dashboard.Widgets[0].DataConfig["metric"] != "pnl" {
		t.Fatalf("config mutation leaked into store: %v", fresh.Dashboard.Widgets[0].DataConfig)
	}
}

func TestStoreUpdateBumpsRevision(t *testing.T) {
	store := NewStore(stateFixture())
	before := store.Snapshot().Revision

	next := store.Update(func(d *Dashboard) {
		d.Name = "Renamed"
	})
	if next.Revision != before+1 {
		t.Fatalf("revision = %d, want %d", next.Revision, before+1)
	}
	if next.Dashboard.Name != "Renamed" {
		t.Fatalf("update not applied: %q", next.Dashboard.Name)
	}
}

func TestStoreSetModeDoesNotTouchWidgets(t *testing.T) {
	store := NewStore(stateFixture())
	before := store.Snapshot()

	after := store.SetMode(ModeEdit)
	if after.Mode != ModeEdit {
		t.Fatalf("mode = %s", after.Mode)
	}
	if len(after.Dashboard.Widgets) != len(before.Dashboard.Widgets) ||
		after.Dashboard.Widgets[0].Position != before.Dashboard.Widgets[0].Position {
		t.Fatalf("mode switch changed widgets")
	}

	// Re-setting the same mode is a no-op and does not bump the revision.
	again := store.SetMode(ModeEdit)
	if again.Revision != after.Revision {
		t.Fatalf("redundant SetMode bumped revision from %d to %d", after.Revision, again.Revision)
	}
}

func TestStoreSubscribeObservesUpdates(t *testing.T) {
	store := NewStore(stateFixture())
	ch, cancel := store.Subscribe()
	defer cancel()

	store.Update(func(d *Dashboard) {
		d.Widgets = append(d.Widgets, Widget{ID: "w2", Position: Position{X: 4, Y: 0, Width: 2, Height: 2}})
	})

	select {
	case snap := <-ch:
		if len(snap.Dashboard.Widgets) != 2 {
			t.Fatalf("notified snapshot has %d widgets", len(snap.Dashboard.Widgets))
		}
	default:
		t.Fatalf("expected a buffered notification")
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after cancel")
	}
}

func TestStoreReplaceInstallsAuthoritativeState(t *testing.T) {
	store := NewStore(stateFixture())
	store.Update(func(d *Dashboard) {
		d.Widgets[0].Position.Width = 8
	})

	server := stateFixture()
	snap := store.Replace(server)
	if snap.Dashboard.Widgets[0].Position.Width != 4 {
		t.Fatalf("replace did not restore server state: %v", snap.Dashboard.Widgets[0].Position)
	}
}
