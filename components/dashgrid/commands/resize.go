package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
)

// ResizeWidgetInput names a widget and its target footprint in grid units.
type ResizeWidgetInput struct {
	WidgetID string `json:"widget_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type resizeService interface {
	Snapshot() dashgrid.Snapshot
	BeginResize(widgetID string, dir dashgrid.ResizeDirection, pointerX, pointerY, colPx, rowPx float64) error
	MoveResize(pointerX, pointerY float64) (dashgrid.Position, bool)
	EndResize(ctx context.Context) (dashgrid.Widget, error)
	CancelResize()
}

// ResizeWidgetCommand drives a resize gesture to a target size: grab the
// south-east handle, move by the grid delta, finalize. If the target
// rectangle is blocked by a sibling the gesture is cancelled and the widget
// keeps its current size.
type ResizeWidgetCommand struct {
	service   resizeService
	telemetry Telemetry
}

// NewResizeWidgetCommand builds the command.
func NewResizeWidgetCommand(service resizeService, telemetry Telemetry) *ResizeWidgetCommand {
	return &ResizeWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResizeWidgetInput] = (*ResizeWidgetCommand)(nil)

// Execute resizes the widget to the requested footprint.
func (c *ResizeWidgetCommand) Execute(ctx context.Context, msg ResizeWidgetInput) error {
	if c.service == nil {
		return errors.New("resize command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("resize command requires widget id")
	}
	if msg.Width < dashgrid.MinWidgetWidth || msg.Height < dashgrid.MinWidgetHeight {
		return &dashgrid.ValidationError{
			Reason: fmt.Sprintf("target size %dx%d is below the %dx%d minimum",
				msg.Width, msg.Height, dashgrid.MinWidgetWidth, dashgrid.MinWidgetHeight),
		}
	}
	widget, ok := c.service.Snapshot().Widget(msg.WidgetID)
	if !ok {
		return &dashgrid.ValidationError{Reason: fmt.Sprintf("widget %s not found", msg.WidgetID)}
	}
	if widget.Position.Width == msg.Width && widget.Position.Height == msg.Height {
		return nil
	}

	// Unit pixel sizes turn the grid delta into an exact pointer movement.
	if err := c.service.BeginResize(msg.WidgetID, dashgrid.ResizeSouthEast, 0, 0, 1, 1); err != nil {
		return err
	}
	deltaX := float64(msg.Width - widget.Position.Width)
	deltaY := float64(msg.Height - widget.Position.Height)
	pos, _ := c.service.MoveResize(deltaX, deltaY)
	if pos.Width != msg.Width || pos.Height != msg.Height {
		c.service.CancelResize()
		return &dashgrid.ValidationError{
			Reason: fmt.Sprintf("widget %s cannot grow to %dx%d", msg.WidgetID, msg.Width, msg.Height),
		}
	}
	if _, err := c.service.EndResize(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashgrid.command.resize", map[string]any{
		"widget_id": msg.WidgetID,
		"width":     msg.Width,
		"height":    msg.Height,
	})
	return nil
}
