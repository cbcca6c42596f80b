package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
)

type addService interface {
	AddWidget(ctx context.Context, req dashgrid.AddWidgetRequest) (dashgrid.Widget, error)
}

// AddWidgetCommand wraps Facade.AddWidget.
type AddWidgetCommand struct {
	service   addService
	telemetry Telemetry
}

// NewAddWidgetCommand builds the command.
func NewAddWidgetCommand(service addService, telemetry Telemetry) *AddWidgetCommand {
	return &AddWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashgrid.AddWidgetRequest] = (*AddWidgetCommand)(nil)

// Execute places and persists a new widget.
func (c *AddWidgetCommand) Execute(ctx context.Context, msg dashgrid.AddWidgetRequest) error {
	if c.service == nil {
		return errors.New("add command requires service")
	}
	if msg.Type == "" {
		return errors.New("add command requires widget type")
	}
	widget, err := c.service.AddWidget(ctx, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashgrid.command.add", map[string]any{
		"widget_id":   widget.ID,
		"widget_type": string(msg.Type),
	})
	return nil
}
