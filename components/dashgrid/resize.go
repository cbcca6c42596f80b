package dashgrid

import (
	"fmt"
	"math"
	"sync"
)

// ResizeDirection identifies which handle the pointer grabbed.
type ResizeDirection string

const (
	ResizeEast      ResizeDirection = "e"
	ResizeSouth     ResizeDirection = "s"
	ResizeSouthEast ResizeDirection = "se"
)

// ResizeController converts a continuous pointer drag into discrete grid-unit
// size changes. One gesture may be active at a time; candidates that would
// overlap a sibling are rejected for that tick so the size sticks at the last
// non-colliding value.
type ResizeController struct {
	mu      sync.Mutex
	gesture *resizeGesture
}

type resizeGesture struct {
	widgetID  string
	direction ResizeDirection
	start     Position
	current   Position
	originX   float64
	originY   float64
	colPx     float64
	rowPx     float64
}

// NewResizeController creates an idle controller.
func NewResizeController() *ResizeController {
	return &ResizeController{}
}

// Begin captures the widget, drag direction, starting pointer coordinate, and
// starting size. Fails if another gesture already holds the capture.
func (c *ResizeController) Begin(snap Snapshot, widgetID string, dir ResizeDirection, pointerX, pointerY, colPx, rowPx float64) error {
	switch dir {
	case ResizeEast, ResizeSouth, ResizeSouthEast:
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown resize direction %q", dir)}
	}
	if colPx <= 0 || rowPx <= 0 {
		return &ValidationError{Reason: "column and row pixel sizes must be positive"}
	}
	widget, ok := snap.Widget(widgetID)
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("widget %s not found", widgetID)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gesture != nil {
		return errGestureActive
	}
	c.gesture = &resizeGesture{
		widgetID:  widgetID,
		direction: dir,
		start:     widget.Position,
		current:   widget.Position,
		originX:   pointerX,
		originY:   pointerY,
		colPx:     colPx,
		rowPx:     rowPx,
	}
	return nil
}

// Move consumes one pointer-move tick. It returns the accepted rectangle and
// whether it changed. Overlapping candidates leave the previous valid size in
// place.
func (c *ResizeController) Move(grid Grid, pointerX, pointerY float64) (Position, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.gesture
	if g == nil {
		return Position{}, false
	}
	deltaCols := int(math.Round((pointerX - g.originX) / g.colPx))
	deltaRows := int(math.Round((pointerY - g.originY) / g.rowPx))

	candidate := g.start
	switch g.direction {
	case ResizeEast:
		candidate.Width += deltaCols
	case ResizeSouth:
		candidate.Height += deltaRows
	case ResizeSouthEast:
		candidate.Width += deltaCols
		candidate.Height += deltaRows
	}
	candidate = clampResize(candidate, grid.Columns)
	if candidate == g.current {
		return g.current, false
	}
	if grid.WouldOverlapAny(candidate, g.widgetID) {
		return g.current, false
	}
	g.current = candidate
	return g.current, true
}

// End releases the capture and returns the widget plus its final accepted
// rectangle for the facade to persist.
func (c *ResizeController) End() (string, Position, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.gesture
	if g == nil {
		return "", Position{}, errNoGesture
	}
	c.gesture = nil
	return g.widgetID, g.current, nil
}

// Cancel abandons the gesture without committing.
func (c *ResizeController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gesture = nil
}

// Active reports whether a gesture holds the capture.
func (c *ResizeController) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gesture != nil
}

// clampResize enforces the 2x2 minimum and keeps the rectangle inside the
// grid from the widget's current x.
func clampResize(p Position, columns int) Position {
	if p.Width < MinWidgetWidth {
		p.Width = MinWidgetWidth
	}
	if p.Height < MinWidgetHeight {
		p.Height = MinWidgetHeight
	}
	if p.X+p.Width > columns {
		p.Width = columns - p.X
	}
	return p
}
