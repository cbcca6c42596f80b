package dashgrid

import "testing"

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Position
		want bool
	}{
		{"identical", Position{0, 0, 4, 3}, Position{0, 0, 4, 3}, true},
		{"partial", Position{0, 0, 4, 3}, Position{2, 1, 4, 3}, true},
		{"contained", Position{0, 0, 8, 6}, Position{2, 2, 2, 2}, true},
		{"shared vertical edge", Position{0, 0, 4, 3}, Position{4, 0, 4, 3}, false},
		{"shared horizontal edge", Position{0, 0, 4, 3}, Position{0, 3, 4, 3}, false},
		{"disjoint", Position{0, 0, 2, 2}, Position{6, 6, 2, 2}, false},
		{"x overlap only", Position{0, 0, 4, 2}, Position{2, 5, 4, 2}, false},
		{"y overlap only", Position{0, 0, 2, 4}, Position{6, 2, 2, 4}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.a, tc.b); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := Overlaps(tc.b, tc.a); got != tc.want {
				t.Fatalf("Overlaps is not symmetric for %v, %v", tc.a, tc.b)
			}
		})
	}
}

func TestWouldOverlapAny(t *testing.T) {
	grid := Grid{
		Columns: 12,
		Widgets: []Widget{
			{ID: "w1", Position: Position{X: 0, Y: 0, Width: 4, Height: 3}},
			{ID: "w2", Position: Position{X: 4, Y: 0, Width: 4, Height: 3}},
		},
	}
	if !grid.WouldOverlapAny(Position{X: 2, Y: 1, Width: 4, Height: 3}, "") {
		t.Fatalf("expected overlap with w1/w2")
	}
	if grid.WouldOverlapAny(Position{X: 8, Y: 0, Width: 4, Height: 3}, "") {
		t.Fatalf("expected free slot at x=8")
	}
	// A widget never collides with itself during resize/move.
	if grid.WouldOverlapAny(Position{X: 0, Y: 0, Width: 4, Height: 3}, "w1") {
		t.Fatalf("expected exclusion of w1 itself")
	}
	if !grid.WouldOverlapAny(Position{X: 0, Y: 0, Width: 8, Height: 3}, "w1") {
		t.Fatalf("expected widened w1 to collide with w2")
	}
}

func TestValidatePositionBounds(t *testing.T) {
	grid := Grid{Columns: 12}
	cases := []struct {
		name string
		pos  Position
		ok   bool
	}{
		{"valid", Position{X: 0, Y: 0, Width: 4, Height: 3}, true},
		{"fills row", Position{X: 8, Y: 0, Width: 4, Height: 2}, true},
		{"negative x", Position{X: -1, Y: 0, Width: 4, Height: 3}, false},
		{"negative y", Position{X: 0, Y: -2, Width: 4, Height: 3}, false},
		{"too narrow", Position{X: 0, Y: 0, Width: 1, Height: 3}, false},
		{"too short", Position{X: 0, Y: 0, Width: 3, Height: 1}, false},
		{"past right edge", Position{X: 10, Y: 0, Width: 4, Height: 3}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := grid.ValidatePosition(tc.pos)
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatalf("expected validation error")
				}
				if !IsValidation(err) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestGridValidateDetectsOverlap(t *testing.T) {
	grid := Grid{
		Columns: 12,
		Widgets: []Widget{
			{ID: "w1", Position: Position{X: 0, Y: 0, Width: 4, Height: 3}},
			{ID: "w2", Position: Position{X: 3, Y: 2, Width: 4, Height: 3}},
		},
	}
	if err := grid.Validate(); err == nil {
		t.Fatalf("expected overlap to fail validation")
	}
	grid.Widgets[1].Position = Position{X: 4, Y: 0, Width: 4, Height: 3}
	if err := grid.Validate(); err != nil {
		t.Fatalf("expected valid grid, got %v", err)
	}
}
