package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
)

// SeedDashboardInput carries the starter widgets from a catalog.
type SeedDashboardInput struct {
	Widgets []dashgrid.SeedWidget `json:"widgets"`
}

// SeedDashboardCommand adds each catalog seed widget to an empty dashboard,
// letting the placement solver pick positions.
type SeedDashboardCommand struct {
	service   addService
	telemetry Telemetry
}

// NewSeedDashboardCommand builds the command.
func NewSeedDashboardCommand(service addService, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

// Execute adds the seed widgets in catalog order.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	for _, seed := range msg.Widgets {
		req := dashgrid.AddWidgetRequest{
			Type:       seed.Type,
			Title:      seed.Title,
			DataSource: seed.DataSource,
			DataConfig: seed.DataConfig,
		}
		if _, err := c.service.AddWidget(ctx, req); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "dashgrid.command.seed", map[string]any{
		"count": len(msg.Widgets),
	})
	return nil
}
