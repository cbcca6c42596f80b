package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// ReorderWidgetsInput contains the finalized widget order.
type ReorderWidgetsInput struct {
	WidgetIDs []string `json:"widget_ids"`
}

type reorderService interface {
	BeginReorder() error
	ConsiderReorder(order []string) error
	FinalizeReorder(ctx context.Context) error
	AbortReorder()
}

// ReorderWidgetsCommand drives a full reorder gesture against the facade:
// begin, consider the submitted order, finalize. Any failure aborts and the
// prior order survives.
type ReorderWidgetsCommand struct {
	service   reorderService
	telemetry Telemetry
}

// NewReorderWidgetsCommand builds the command.
func NewReorderWidgetsCommand(service reorderService, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetsInput] = (*ReorderWidgetsCommand)(nil)

// Execute applies the new ordering.
func (c *ReorderWidgetsCommand) Execute(ctx context.Context, msg ReorderWidgetsInput) error {
	if c.service == nil {
		return errors.New("reorder command requires service")
	}
	if len(msg.WidgetIDs) == 0 {
		return errors.New("reorder command requires widget ids")
	}
	if err := c.service.BeginReorder(); err != nil {
		return err
	}
	if err := c.service.ConsiderReorder(msg.WidgetIDs); err != nil {
		c.service.AbortReorder()
		return err
	}
	if err := c.service.FinalizeReorder(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashgrid.command.reorder", map[string]any{
		"count": len(msg.WidgetIDs),
	})
	return nil
}
