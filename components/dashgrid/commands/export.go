package commands

import (
	"context"
	"errors"
	"os"

	gocommand "github.com/goliatone/go-command"
)

// ExportSnapshotInput selects the format and output path.
type ExportSnapshotInput struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

type exportService interface {
	ExportSnapshot(ctx context.Context, format string) ([]byte, error)
}

// ExportSnapshotCommand renders the dashboard to a file.
type ExportSnapshotCommand struct {
	service   exportService
	telemetry Telemetry
}

// NewExportSnapshotCommand builds the command.
func NewExportSnapshotCommand(service exportService, telemetry Telemetry) *ExportSnapshotCommand {
	return &ExportSnapshotCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ExportSnapshotInput] = (*ExportSnapshotCommand)(nil)

// Execute renders the snapshot and writes it to the given path.
func (c *ExportSnapshotCommand) Execute(ctx context.Context, msg ExportSnapshotInput) error {
	if c.service == nil {
		return errors.New("export command requires service")
	}
	if msg.Path == "" {
		return errors.New("export command requires output path")
	}
	out, err := c.service.ExportSnapshot(ctx, msg.Format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(msg.Path, out, 0o644); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashgrid.command.export", map[string]any{
		"format": msg.Format,
		"path":   msg.Path,
		"bytes":  len(out),
	})
	return nil
}
