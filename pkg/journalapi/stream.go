package journalapi

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"sync"

	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
)

// sseStream adapts a text/event-stream response body to the engine's Stream
// interface. Each "data:" line carries one JSON data frame.
type sseStream struct {
	body   io.ReadCloser
	cancel func()
	frames chan dashgrid.DataFrame
	done   chan struct{}

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

var _ dashgrid.Stream = (*sseStream)(nil)

func newSSEStream(body io.ReadCloser, cancel func()) *sseStream {
	s := &sseStream{
		body:   body,
		cancel: cancel,
		frames: make(chan dashgrid.DataFrame, 8),
		done:   make(chan struct{}),
	}
	go s.read()
	return s
}

func (s *sseStream) Frames() <-chan dashgrid.DataFrame { return s.frames }

func (s *sseStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close terminates the subscription. Safe to call more than once.
func (s *sseStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.cancel()
		s.body.Close()
	})
	return nil
}

func (s *sseStream) read() {
	defer close(s.frames)
	defer s.Close()

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		var frame dashgrid.DataFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			s.fail(err)
			return
		}
		// A closed stream unblocks the send even when the consumer stopped
		// draining.
		select {
		case s.frames <- frame:
		case <-s.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.fail(err)
	}
}

func (s *sseStream) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}
