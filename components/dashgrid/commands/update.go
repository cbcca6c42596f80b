package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
)

// UpdateWidgetInput carries a partial widget update.
type UpdateWidgetInput struct {
	WidgetID string               `json:"widget_id"`
	Patch    dashgrid.WidgetPatch `json:"patch"`
}

type updateService interface {
	UpdateWidget(ctx context.Context, widgetID string, patch dashgrid.WidgetPatch) (dashgrid.Widget, error)
}

// UpdateWidgetCommand wraps Facade.UpdateWidget.
type UpdateWidgetCommand struct {
	service   updateService
	telemetry Telemetry
}

// NewUpdateWidgetCommand builds the command.
func NewUpdateWidgetCommand(service updateService, telemetry Telemetry) *UpdateWidgetCommand {
	return &UpdateWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateWidgetInput] = (*UpdateWidgetCommand)(nil)

// Execute merges the patch into the widget and persists it.
func (c *UpdateWidgetCommand) Execute(ctx context.Context, msg UpdateWidgetInput) error {
	if c.service == nil {
		return errors.New("update command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("update command requires widget id")
	}
	if _, err := c.service.UpdateWidget(ctx, msg.WidgetID, msg.Patch); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashgrid.command.update", map[string]any{
		"widget_id": msg.WidgetID,
	})
	return nil
}
