package dashgrid

import "sync"

// Snapshot is one immutable view of a dashboard plus the active mode.
// Consumers never share an object graph with the store: every Update hands
// out a fresh deep copy, so the grid model and the UI cannot alias.
type Snapshot struct {
	Dashboard Dashboard
	Mode      Mode
	Revision  uint64
}

// Grid builds the grid view for this snapshot.
func (s Snapshot) Grid() Grid {
	return NewGrid(s.Dashboard)
}

// Widget looks up a widget by id.
func (s Snapshot) Widget(id string) (Widget, bool) {
	for _, w := range s.Dashboard.Widgets {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// Store holds the canonical dashboard snapshot and notifies subscribers on
// change. Mutations go through Update, which clones before applying.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	subs     map[int]chan Snapshot
	next     int
}

// NewStore builds a store seeded with the given dashboard in view mode.
func NewStore(d Dashboard) *Store {
	return &Store{
		snapshot: Snapshot{Dashboard: cloneDashboard(d), Mode: ModeView, Revision: 1},
		subs:     make(map[int]chan Snapshot),
	}
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Update clones the dashboard, applies mutate to the clone, bumps the
// revision, and notifies subscribers. The returned snapshot is the new
// canonical state.
func (s *Store) Update(mutate func(*Dashboard)) Snapshot {
	s.mu.Lock()
	next := cloneDashboard(s.snapshot.Dashboard)
	mutate(&next)
	s.snapshot = Snapshot{
		Dashboard: next,
		Mode:      s.snapshot.Mode,
		Revision:  s.snapshot.Revision + 1,
	}
	snap := s.snapshot
	s.mu.Unlock()
	s.notify(snap)
	return snap
}

// Replace swaps in an authoritative dashboard, typically the last-known
// server state after a failed save.
func (s *Store) Replace(d Dashboard) Snapshot {
	return s.Update(func(dst *Dashboard) {
		*dst = cloneDashboard(d)
	})
}

// SetMode switches between edit and view without touching widgets.
func (s *Store) SetMode(mode Mode) Snapshot {
	s.mu.Lock()
	if s.snapshot.Mode == mode {
		snap := s.snapshot
		s.mu.Unlock()
		return snap
	}
	s.snapshot = Snapshot{
		Dashboard: s.snapshot.Dashboard,
		Mode:      mode,
		Revision:  s.snapshot.Revision + 1,
	}
	snap := s.snapshot
	s.mu.Unlock()
	s.notify(snap)
	return snap
}

// Subscribe returns a channel of snapshots and a cancel func. Slow consumers
// miss intermediate snapshots rather than blocking mutations.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan Snapshot, 8)
	s.subs[id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *Store) notify(snap Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func cloneDashboard(d Dashboard) Dashboard {
	out := d
	out.Widgets = make([]Widget, len(d.Widgets))
	for i, w := range d.Widgets {
		out.Widgets[i] = cloneWidget(w)
	}
	out.Tags = append([]string(nil), d.Tags...)
	return out
}

func cloneWidget(w Widget) Widget {
	out := w
	if w.DataConfig != nil {
		out.DataConfig = make(map[string]any, len(w.DataConfig))
		for k, v := range w.DataConfig {
			out.DataConfig[k] = v
		}
	}
	return out
}
