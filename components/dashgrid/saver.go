package dashgrid

import (
	"context"
	"sync"
)

// SaveFunc performs one persistence request.
type SaveFunc func(ctx context.Context) error

// Saver serializes persistence for one dashboard. Enqueue is the coalescing
// path for gesture saves: a save enqueued while another is in flight replaces
// any queued gesture save instead of racing it, which is lossless because the
// payload is rebuilt from the current snapshot when the save runs. Do is the
// blocking path for structural saves (create, delete, field updates) that
// must each reach the backend; they queue behind whatever is in flight and
// are never replaced.
type Saver struct {
	mu      sync.Mutex
	running bool
	queue   []*queuedSave
	wg      sync.WaitGroup
}

type queuedSave struct {
	ctx      context.Context
	fn       SaveFunc
	done     []func(error)
	coalesce bool
}

// NewSaver creates an idle saver.
func NewSaver() *Saver {
	return &Saver{}
}

// Enqueue runs fn immediately when the saver is idle; otherwise it coalesces
// with any queued gesture save (the newest fn wins, every done callback still
// fires). done receives the save result; it may be nil.
func (s *Saver) Enqueue(ctx context.Context, fn SaveFunc, done func(error)) {
	s.enqueue(ctx, fn, done, true)
}

// Do runs fn serialized with the queue and blocks until it completes. Unlike
// Enqueue, the save keeps its place and is never replaced by a later one.
func (s *Saver) Do(ctx context.Context, fn SaveFunc) error {
	errc := make(chan error, 1)
	s.enqueue(ctx, fn, func(err error) { errc <- err }, false)
	return <-errc
}

func (s *Saver) enqueue(ctx context.Context, fn SaveFunc, done func(error), coalesce bool) {
	s.mu.Lock()
	if s.running {
		if coalesce && len(s.queue) > 0 {
			tail := s.queue[len(s.queue)-1]
			if tail.coalesce {
				tail.ctx = ctx
				tail.fn = fn
				if done != nil {
					tail.done = append(tail.done, done)
				}
				s.mu.Unlock()
				return
			}
		}
		entry := &queuedSave{ctx: ctx, fn: fn, coalesce: coalesce}
		if done != nil {
			entry.done = append(entry.done, done)
		}
		s.queue = append(s.queue, entry)
		s.mu.Unlock()
		return
	}
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		for {
			err := fn(ctx)
			if done != nil {
				done(err)
			}
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.running = false
				s.mu.Unlock()
				return
			}
			next := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			ctx = next.ctx
			fn = next.fn
			callbacks := next.done
			done = func(err error) {
				for _, cb := range callbacks {
					cb(err)
				}
			}
		}
	}()
}

// Flush blocks until every enqueued save has completed.
func (s *Saver) Flush() {
	s.wg.Wait()
}
