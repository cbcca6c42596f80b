package dashgrid

// fallbackFootprint is used for widget types the registry does not know.
var fallbackFootprint = Size{Width: 4, Height: 3}

// Place finds the first empty rectangle of the requested size, scanning rows
// top-to-bottom and columns left-to-right. Rows are unbounded, so a slot
// always exists; the scan is deterministic and stable. It intentionally does
// not backfill gaps above already-placed widgets.
func (g Grid) Place(size Size) Position {
	size = g.clampSize(size)
	for y := 0; ; y++ {
		for x := 0; x <= g.Columns-size.Width; x++ {
			candidate := Position{X: x, Y: y, Width: size.Width, Height: size.Height}
			if !g.WouldOverlapAny(candidate, "") {
				return candidate
			}
		}
	}
}

// clampSize enforces the minimum footprint and caps width at the column count.
func (g Grid) clampSize(size Size) Size {
	if size.Width < MinWidgetWidth {
		size.Width = MinWidgetWidth
	}
	if size.Height < MinWidgetHeight {
		size.Height = MinWidgetHeight
	}
	if size.Width > g.Columns {
		size.Width = g.Columns
	}
	return size
}
