package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshInput triggers a manual batch fetch.
type RefreshInput struct{}

type refreshService interface {
	Refresh(ctx context.Context) error
}

// RefreshCommand wraps Facade.Refresh.
type RefreshCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshCommand builds the command.
func NewRefreshCommand(service refreshService, telemetry Telemetry) *RefreshCommand {
	return &RefreshCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshInput] = (*RefreshCommand)(nil)

// Execute fetches fresh data for every widget.
func (c *RefreshCommand) Execute(ctx context.Context, _ RefreshInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if err := c.service.Refresh(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashgrid.command.refresh", nil)
	return nil
}
