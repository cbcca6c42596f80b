package dashgrid

import (
	"fmt"
	"sync"
)

// ReorderController tracks a drag-and-drop reordering of the widget list.
// Order is render/tab order only; positions are independent grid coordinates
// and are not touched by a reorder. The pending order is visual-only and
// discardable: only Finalize commits it, so an abandoned gesture leaves the
// committed order untouched.
type ReorderController struct {
	mu        sync.Mutex
	active    bool
	committed []string
	pending   []string
}

// NewReorderController creates an idle controller.
func NewReorderController() *ReorderController {
	return &ReorderController{}
}

// Begin captures the current widget order as the committed baseline.
func (c *ReorderController) Begin(order []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return errGestureActive
	}
	c.active = true
	c.committed = append([]string(nil), order...)
	c.pending = append([]string(nil), order...)
	return nil
}

// Consider records an intermediate order produced while dragging. It never
// touches the committed order.
func (c *ReorderController) Consider(order []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return errNoGesture
	}
	c.pending = append([]string(nil), order...)
	return nil
}

// Pending returns the order currently shown during the gesture.
func (c *ReorderController) Pending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return append([]string(nil), c.pending...)
	}
	return append([]string(nil), c.committed...)
}

// Abort discards the pending order, e.g. on escape or a drop outside a valid
// target.
func (c *ReorderController) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	c.pending = nil
}

// Finalize commits the pending order and returns it for persistence. The
// pending list must be a permutation of the committed baseline.
func (c *ReorderController) Finalize() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil, errNoGesture
	}
	if err := samePermutation(c.committed, c.pending); err != nil {
		c.active = false
		c.pending = nil
		return nil, err
	}
	c.committed = append([]string(nil), c.pending...)
	c.active = false
	c.pending = nil
	return append([]string(nil), c.committed...), nil
}

// Active reports whether a gesture holds the capture.
func (c *ReorderController) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func samePermutation(before, after []string) error {
	if len(before) != len(after) {
		return &ValidationError{Reason: fmt.Sprintf("reorder changed widget count from %d to %d", len(before), len(after))}
	}
	seen := make(map[string]int, len(before))
	for _, id := range before {
		seen[id]++
	}
	for _, id := range after {
		seen[id]--
		if seen[id] < 0 {
			return &ValidationError{Reason: fmt.Sprintf("reorder introduced unknown widget %s", id)}
		}
	}
	return nil
}
