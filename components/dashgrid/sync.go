package dashgrid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// SyncState is the synchronizer's connection state.
type SyncState string

const (
	SyncDisconnected  SyncState = "disconnected"
	SyncConnecting    SyncState = "connecting"
	SyncStreaming     SyncState = "streaming"
	SyncReconnectWait SyncState = "reconnect_wait"
)

// Default timings per the engine's resource model.
const (
	DefaultBackoff      = 5 * time.Second
	DefaultFetchTimeout = 30 * time.Second
)

// BatchFetcher fetches all widget data for a dashboard in one request.
// DashboardClient satisfies it.
type BatchFetcher interface {
	WidgetData(ctx context.Context, dashboardID string) (map[string]WidgetPayload, error)
}

// SyncOptions configures a Synchronizer.
type SyncOptions struct {
	DashboardID  string
	Fetcher      BatchFetcher
	Streams      StreamSource
	Data         *DataStore
	Hook         DataHook
	Telemetry    Telemetry
	Backoff      time.Duration
	FetchTimeout time.Duration
}

// Synchronizer keeps widget data fresh for one open dashboard. It runs a
// per-dashboard state machine: CONNECTING performs a batch fetch and opens the
// stream, STREAMING merges partial frames, and any failure enters
// RECONNECT_WAIT for a fixed backoff before retrying indefinitely. Entering
// edit mode forces DISCONNECTED so layout changes never fight live updates.
type Synchronizer struct {
	opts SyncOptions

	mu     sync.Mutex
	state  SyncState
	cancel context.CancelFunc
	done   chan struct{}

	subMu sync.Mutex
	subs  map[int]chan SyncState
	next  int
}

// NewSynchronizer validates options and builds a disconnected synchronizer.
func NewSynchronizer(opts SyncOptions) (*Synchronizer, error) {
	if opts.DashboardID == "" {
		return nil, errMissingDashboard
	}
	if opts.Fetcher == nil {
		return nil, errors.New("dashgrid: synchronizer requires a batch fetcher")
	}
	if opts.Streams == nil {
		return nil, errors.New("dashgrid: synchronizer requires a stream source")
	}
	if opts.Data == nil {
		opts.Data = NewDataStore()
	}
	if opts.Hook == nil {
		opts.Hook = noopDataHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	return &Synchronizer{
		opts:  opts,
		state: SyncDisconnected,
		subs:  make(map[int]chan SyncState),
	}, nil
}

// State returns the current connection state.
func (s *Synchronizer) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// States returns a channel of state transitions and a cancel func. Slow
// consumers miss transitions rather than blocking the machine.
func (s *Synchronizer) States() (<-chan SyncState, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.next
	s.next++
	ch := make(chan SyncState, 8)
	s.subs[id] = ch
	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// SetMode wires the mode toggle to the connection state machine: edit stops
// the stream, view starts it.
func (s *Synchronizer) SetMode(mode Mode) {
	if mode == ModeEdit {
		s.Stop()
		return
	}
	s.Start()
}

// Start enters CONNECTING. It is a no-op when the machine is already running.
func (s *Synchronizer) Start() {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.run(ctx, done)
}

// Stop deterministically closes the stream and cancels any pending reconnect
// timer, then forces DISCONNECTED. It blocks until the run loop has exited,
// so nothing leaks after navigation away.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
	s.setState(SyncDisconnected)
}

// Close is an alias for Stop, used when the dashboard view is discarded.
func (s *Synchronizer) Close() {
	s.Stop()
}

// Refresh performs one manual batch fetch regardless of stream state. Used
// for the user-forced refresh path.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	batch, err := s.fetchBatch(ctx)
	if err != nil {
		return err
	}
	ids := s.opts.Data.Replace(batch)
	s.emit(ctx, ids)
	return nil
}

func (s *Synchronizer) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		if ctx.Err() != nil {
			return
		}
		s.setState(SyncConnecting)

		batch, err := s.fetchBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !s.waitRetry(ctx, err) {
				return
			}
			continue
		}
		ids := s.opts.Data.Replace(batch)
		s.emit(ctx, ids)

		stream, err := s.opts.Streams.Subscribe(ctx, s.opts.DashboardID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !s.waitRetry(ctx, err) {
				return
			}
			continue
		}

		s.setState(SyncStreaming)
		for frame := range stream.Frames() {
			merged := s.opts.Data.Merge(frame.WidgetData)
			s.emit(ctx, merged)
		}
		streamErr := stream.Err()
		_ = stream.Close()
		if ctx.Err() != nil {
			return
		}
		if streamErr == nil {
			streamErr = errors.New("stream closed by server")
		}
		if !s.waitRetry(ctx, streamErr) {
			return
		}
	}
}

// fetchBatch bounds the batch request; a timeout is treated as a stream error
// upstream.
func (s *Synchronizer) fetchBatch(ctx context.Context) (map[string]WidgetPayload, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()
	batch, err := s.opts.Fetcher.WidgetData(fetchCtx, s.opts.DashboardID)
	if err != nil {
		return nil, &StreamError{Err: fmt.Errorf("batch fetch: %w", err)}
	}
	return batch, nil
}

// waitRetry enters RECONNECT_WAIT for the fixed backoff. Returns false when
// the context was cancelled while waiting.
func (s *Synchronizer) waitRetry(ctx context.Context, cause error) bool {
	s.setState(SyncReconnectWait)
	s.opts.Telemetry.Record(ctx, "dashgrid.sync.retry", map[string]any{
		"dashboard_id": s.opts.DashboardID,
		"error":        cause.Error(),
	})
	timer := time.NewTimer(s.opts.Backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Synchronizer) setState(state SyncState) {
	s.mu.Lock()
	if s.state == state {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()

	s.subMu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- state:
		default:
		}
	}
	s.subMu.Unlock()
}

func (s *Synchronizer) emit(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	data := make(map[string]WidgetPayload, len(ids))
	for _, id := range ids {
		if payload, ok := s.opts.Data.Payload(id); ok {
			data[id] = payload
		}
	}
	_ = s.opts.Hook.WidgetDataUpdated(ctx, DataEvent{
		DashboardID: s.opts.DashboardID,
		WidgetIDs:   ids,
		Data:        data,
	})
}
