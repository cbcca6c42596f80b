package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
)

// SetModeInput selects the dashboard mode.
type SetModeInput struct {
	Mode dashgrid.Mode `json:"mode"`
}

type modeService interface {
	SetMode(ctx context.Context, mode dashgrid.Mode) error
}

// SetModeCommand wraps Facade.SetMode.
type SetModeCommand struct {
	service   modeService
	telemetry Telemetry
}

// NewSetModeCommand builds the command.
func NewSetModeCommand(service modeService, telemetry Telemetry) *SetModeCommand {
	return &SetModeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetModeInput] = (*SetModeCommand)(nil)

// Execute switches between view and edit.
func (c *SetModeCommand) Execute(ctx context.Context, msg SetModeInput) error {
	if c.service == nil {
		return errors.New("mode command requires service")
	}
	if err := c.service.SetMode(ctx, msg.Mode); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashgrid.command.mode", map[string]any{
		"mode": string(msg.Mode),
	})
	return nil
}
