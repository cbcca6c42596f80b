package dashgrid

import "fmt"

// MinWidgetWidth and MinWidgetHeight are the smallest rectangle any widget may
// occupy, in grid units.
const (
	MinWidgetWidth  = 2
	MinWidgetHeight = 2
)

// Grid answers overlap queries over the canonical widget set of one
// dashboard. It is a pure value: controllers build one from the current
// snapshot, so placement and collision tests stay unit-testable in isolation.
type Grid struct {
	Columns int
	Widgets []Widget
}

// NewGrid builds a grid view over a dashboard snapshot.
func NewGrid(d Dashboard) Grid {
	return Grid{Columns: d.Layout.Columns, Widgets: d.Widgets}
}

// Overlaps reports whether two rectangles intersect. Intervals are half-open,
// so widgets sharing an edge do not overlap.
func Overlaps(a, b Position) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

// WouldOverlapAny tests candidate against every widget except excludeID.
// Pass an empty excludeID when placing a new widget.
func (g Grid) WouldOverlapAny(candidate Position, excludeID string) bool {
	for _, w := range g.Widgets {
		if w.ID == excludeID {
			continue
		}
		if Overlaps(candidate, w.Position) {
			return true
		}
	}
	return false
}

// ValidatePosition checks the rectangle bounds invariant for this grid.
func (g Grid) ValidatePosition(p Position) error {
	if p.X < 0 || p.Y < 0 {
		return &ValidationError{Reason: fmt.Sprintf("position (%d,%d) is negative", p.X, p.Y)}
	}
	if p.Width < MinWidgetWidth || p.Height < MinWidgetHeight {
		return &ValidationError{Reason: fmt.Sprintf("size %dx%d is below the %dx%d minimum", p.Width, p.Height, MinWidgetWidth, MinWidgetHeight)}
	}
	if p.X+p.Width > g.Columns {
		return &ValidationError{Reason: fmt.Sprintf("rectangle ends at column %d on a %d-column grid", p.X+p.Width, g.Columns)}
	}
	return nil
}

// Validate checks bounds for every widget plus the pairwise no-overlap
// invariant. Mutating operations pre-check through the grid, so a failure
// here means a widget slipped past them.
func (g Grid) Validate() error {
	for i, w := range g.Widgets {
		if err := g.ValidatePosition(w.Position); err != nil {
			return fmt.Errorf("widget %s: %w", w.ID, err)
		}
		for _, other := range g.Widgets[i+1:] {
			if Overlaps(w.Position, other.Position) {
				return &ValidationError{Reason: fmt.Sprintf("widgets %s and %s overlap", w.ID, other.ID)}
			}
		}
	}
	return nil
}
