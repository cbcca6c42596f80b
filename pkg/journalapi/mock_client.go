package journalapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
)

// MockData seeds deterministic backend state for tests and local demos.
type MockData struct {
	Dashboard  dashgrid.Dashboard
	WidgetData map[string]dashgrid.WidgetPayload
	Plan       string
}

// MockClient implements the journal backend in memory. It also acts as a
// stream source: PushFrame delivers a data frame to every open subscription.
type MockClient struct {
	mu      sync.RWMutex
	data    MockData
	streams map[int]*mockStream
	next    int
}

var (
	_ dashgrid.DashboardClient    = (*MockClient)(nil)
	_ dashgrid.SubscriptionClient = (*MockClient)(nil)
	_ dashgrid.StreamSource       = (*MockClient)(nil)
)

// NewMockClient builds a mock backend from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	if data.Plan == "" {
		data.Plan = "pro"
	}
	if data.WidgetData == nil {
		data.WidgetData = map[string]dashgrid.WidgetPayload{}
	}
	return &MockClient{data: data, streams: map[int]*mockStream{}}
}

// Dashboard returns the stored dashboard.
func (c *MockClient) Dashboard(_ context.Context, id string) (dashgrid.Dashboard, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id != c.data.Dashboard.ID {
		return dashgrid.Dashboard{}, fmt.Errorf("journalapi: dashboard %s not found", id)
	}
	return c.data.Dashboard, nil
}

// SaveDashboard overwrites the stored dashboard.
func (c *MockClient) SaveDashboard(_ context.Context, d dashgrid.Dashboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Dashboard = d
	return nil
}

// CreateWidget stores a widget, assigning an id when the caller omitted one.
func (c *MockClient) CreateWidget(_ context.Context, _ string, w dashgrid.Widget) (dashgrid.Widget, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	c.data.Dashboard.Widgets = append(c.data.Dashboard.Widgets, w)
	return w, nil
}

// UpdateWidget overwrites a stored widget.
func (c *MockClient) UpdateWidget(_ context.Context, _ string, w dashgrid.Widget) (dashgrid.Widget, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.data.Dashboard.Widgets {
		if c.data.Dashboard.Widgets[i].ID == w.ID {
			c.data.Dashboard.Widgets[i] = w
			return w, nil
		}
	}
	return dashgrid.Widget{}, fmt.Errorf("journalapi: widget %s not found", w.ID)
}

// DeleteWidget removes a stored widget. Deleting an absent id succeeds.
func (c *MockClient) DeleteWidget(_ context.Context, _ string, widgetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	widgets := c.data.Dashboard.Widgets[:0]
	for _, w := range c.data.Dashboard.Widgets {
		if w.ID != widgetID {
			widgets = append(widgets, w)
		}
	}
	c.data.Dashboard.Widgets = widgets
	delete(c.data.WidgetData, widgetID)
	return nil
}

// ReorderWidgets reorders the stored widget list.
func (c *MockClient) ReorderWidgets(_ context.Context, _ string, entries []dashgrid.ReorderEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	index := make(map[string]dashgrid.Widget, len(c.data.Dashboard.Widgets))
	for _, w := range c.data.Dashboard.Widgets {
		index[w.ID] = w
	}
	widgets := make([]dashgrid.Widget, 0, len(entries))
	for _, entry := range entries {
		w, ok := index[entry.WidgetID]
		if !ok {
			return fmt.Errorf("journalapi: widget %s not found", entry.WidgetID)
		}
		w.Position = entry.Position
		widgets = append(widgets, w)
	}
	c.data.Dashboard.Widgets = widgets
	return nil
}

// WidgetData returns the fixture payloads.
func (c *MockClient) WidgetData(context.Context, string) (map[string]dashgrid.WidgetPayload, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]dashgrid.WidgetPayload, len(c.data.WidgetData))
	for id, payload := range c.data.WidgetData {
		clone := make(dashgrid.WidgetPayload, len(payload))
		for k, v := range payload {
			clone[k] = v
		}
		out[id] = clone
	}
	return out, nil
}

// Subscription returns the fixture billing tier.
func (c *MockClient) Subscription(context.Context, string) (dashgrid.Subscription, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return dashgrid.Subscription{Plan: c.data.Plan}, nil
}

// Subscribe opens an in-memory stream fed by PushFrame.
func (c *MockClient) Subscribe(context.Context, string) (dashgrid.Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	stream := &mockStream{
		frames: make(chan dashgrid.DataFrame, 8),
		remove: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.streams, id)
		},
	}
	c.streams[id] = stream
	return stream, nil
}

// PushFrame fans a data frame out to every open subscription and records the
// payloads so later batch fetches observe them.
func (c *MockClient) PushFrame(frame dashgrid.DataFrame) {
	c.mu.Lock()
	for id, payload := range frame.WidgetData {
		existing, ok := c.data.WidgetData[id]
		if !ok {
			existing = dashgrid.WidgetPayload{}
			c.data.WidgetData[id] = existing
		}
		for k, v := range payload {
			existing[k] = v
		}
	}
	streams := make([]*mockStream, 0, len(c.streams))
	for _, stream := range c.streams {
		streams = append(streams, stream)
	}
	c.mu.Unlock()

	for _, stream := range streams {
		stream.push(frame)
	}
}

type mockStream struct {
	frames chan dashgrid.DataFrame
	remove func()

	mu     sync.Mutex
	closed bool
}

var _ dashgrid.Stream = (*mockStream)(nil)

func (s *mockStream) Frames() <-chan dashgrid.DataFrame { return s.frames }

func (s *mockStream) Err() error { return nil }

func (s *mockStream) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.frames)
		s.mu.Unlock()
		s.remove()
		return nil
	}
	s.mu.Unlock()
	return nil
}

func (s *mockStream) push(frame dashgrid.DataFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.frames <- frame:
	default:
	}
}
