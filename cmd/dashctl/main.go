package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
	"github.com/tradevue/go-dashgrid/pkg/journalapi"
)

type cli struct {
	Scaffold scaffoldCmd `cmd:"" help:"Add a widget type definition to a catalog file."`
	Validate validateCmd `cmd:"" help:"Validate a widget catalog file."`
	Inspect  inspectCmd  `cmd:"" help:"Print a dashboard's widgets and grid layout."`
	Export   exportCmd   `cmd:"" help:"Render a dashboard snapshot to HTML or JSON."`
	Seed     seedCmd     `cmd:"" help:"Add a catalog's seed widgets to a dashboard."`
}

type backendFlags struct {
	BaseURL string `required:"" help:"Journal API base URL." env:"DASHGRID_BASE_URL"`
	APIKey  string `help:"Bearer token for the journal API." env:"DASHGRID_API_KEY"`
}

func (f backendFlags) client() (*journalapi.HTTPClient, error) {
	return journalapi.NewHTTPClient(journalapi.Config{
		BaseURL: f.BaseURL,
		APIKey:  f.APIKey,
	})
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Dashboard grid utility for trading-journal deployments."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

type scaffoldCmd struct {
	Type        string   `required:"" help:"Widget type slug (e.g. scatter-plot)."`
	Name        string   `help:"Display name (defaults to the title-cased type slug)."`
	Description string   `help:"One-line description for the catalog."`
	Category    string   `default:"custom" help:"Widget category (charts, stats, tables, notes)."`
	Width       int      `default:"4" help:"Default footprint width in columns."`
	Height      int      `default:"3" help:"Default footprint height in rows."`
	CatalogPath string   `required:"" type:"path" help:"Path to the catalog YAML file to update."`
	SchemaPath  string   `type:"path" help:"Optional JSON schema file for the widget configuration."`
	Tag         []string `help:"Tags to include in the catalog entry (use multiple --tag flags)."`
	Overwrite   bool     `help:"Replace an existing catalog entry for the same type."`
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	catalogPath, err := filepath.Abs(cmd.CatalogPath)
	if err != nil {
		return fmt.Errorf("dashctl: resolve catalog path: %w", err)
	}
	doc, err := loadOrInitCatalog(catalogPath)
	if err != nil {
		return err
	}
	widgetType := dashgrid.WidgetType(cmd.Type)
	if !cmd.Overwrite {
		for _, entry := range doc.Widgets {
			if entry.Definition.Type == widgetType {
				return fmt.Errorf("dashctl: catalog already defines widget type %s (use --overwrite to replace)", cmd.Type)
			}
		}
	}

	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}
	name := cmd.Name
	if name == "" {
		name = strcase.ToCase(cmd.Type, strcase.TitleCase, ' ')
	}
	entry := dashgrid.CatalogEntry{
		Definition: dashgrid.WidgetDefinition{
			Type:        widgetType,
			Name:        name,
			Description: cmd.Description,
			Category:    cmd.Category,
			DefaultSize: dashgrid.Size{Width: cmd.Width, Height: cmd.Height},
			Schema:      schema,
		},
		Tags: cmd.Tag,
	}

	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].Definition.Type == widgetType {
			doc.Widgets[idx] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, entry)
	}
	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Definition.Type < doc.Widgets[j].Definition.Type
	})

	if err := writeCatalog(catalogPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to %s\n", cmd.Type, catalogPath)
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("dashctl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("dashctl: parse schema JSON: %w", err)
	}
	return schema, nil
}

type validateCmd struct {
	CatalogPath string `arg:"" type:"path" help:"Catalog YAML file to validate."`
}

func (cmd *validateCmd) Run(_ context.Context) error {
	doc, err := dashgrid.ReadCatalog(cmd.CatalogPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s: %d widget types, %d seed widgets\n", cmd.CatalogPath, len(doc.Widgets), len(doc.Seed))
	return nil
}

type inspectCmd struct {
	backendFlags
	Dashboard string `required:"" help:"Dashboard id to inspect."`
	JSON      bool   `help:"Emit the raw dashboard document as JSON."`
}

func (cmd *inspectCmd) Run(ctx context.Context) error {
	client, err := cmd.client()
	if err != nil {
		return err
	}
	d, err := client.Dashboard(ctx, cmd.Dashboard)
	if err != nil {
		return err
	}
	if cmd.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(d)
	}
	fmt.Fprintf(os.Stdout, "%s (%s): %d columns, %d widgets\n",
		d.Name, d.ID, d.Layout.Columns, len(d.Widgets))
	for _, w := range d.Widgets {
		fmt.Fprintf(os.Stdout, "  %-38s %-16s x=%d y=%d w=%d h=%d %s\n",
			w.ID, w.Type, w.Position.X, w.Position.Y, w.Position.Width, w.Position.Height, w.Title)
	}
	return nil
}

type exportCmd struct {
	backendFlags
	Dashboard string `required:"" help:"Dashboard id to export."`
	Format    string `default:"html" enum:"html,json" help:"Output format."`
	Out       string `required:"" type:"path" help:"Output file path."`
	WithData  bool   `default:"true" help:"Fetch widget data before exporting."`
}

func (cmd *exportCmd) Run(ctx context.Context) error {
	client, err := cmd.client()
	if err != nil {
		return err
	}
	facade, err := dashgrid.Open(ctx, cmd.Dashboard, dashgrid.Options{
		Client: client,
		Quota:  dashgrid.BillingQuota{Client: client},
	})
	if err != nil {
		return err
	}
	defer facade.Close()

	if cmd.WithData {
		if err := facade.Refresh(ctx); err != nil {
			return err
		}
	}
	out, err := facade.ExportSnapshot(ctx, cmd.Format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cmd.Out, out, 0o644); err != nil {
		return fmt.Errorf("dashctl: write export: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✓ Exported %s to %s (%d bytes)\n", cmd.Dashboard, cmd.Out, len(out))
	return nil
}

type seedCmd struct {
	backendFlags
	Dashboard   string `required:"" help:"Dashboard id to seed."`
	CatalogPath string `required:"" type:"path" help:"Catalog YAML file providing seed widgets."`
}

func (cmd *seedCmd) Run(ctx context.Context) error {
	client, err := cmd.client()
	if err != nil {
		return err
	}
	registry := dashgrid.NewRegistry()
	doc, err := registry.LoadCatalogFile(cmd.CatalogPath)
	if err != nil {
		return err
	}
	if len(doc.Seed) == 0 {
		return errors.New("dashctl: catalog has no seed widgets")
	}
	facade, err := dashgrid.Open(ctx, cmd.Dashboard, dashgrid.Options{
		Client:   client,
		Quota:    dashgrid.BillingQuota{Client: client},
		Registry: registry,
	})
	if err != nil {
		return err
	}
	defer facade.Close()

	for _, seed := range doc.Seed {
		widget, err := facade.AddWidget(ctx, dashgrid.AddWidgetRequest{
			Type:       seed.Type,
			Title:      seed.Title,
			DataSource: seed.DataSource,
			DataConfig: seed.DataConfig,
		})
		if err != nil {
			return fmt.Errorf("dashctl: seed %s: %w", seed.Type, err)
		}
		fmt.Fprintf(os.Stdout, "  + %s at x=%d y=%d\n", widget.Type, widget.Position.X, widget.Position.Y)
	}
	fmt.Fprintf(os.Stdout, "✓ Seeded %d widgets into %s\n", len(doc.Seed), cmd.Dashboard)
	return nil
}

func loadOrInitCatalog(path string) (*dashgrid.CatalogDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashgrid.CatalogDocument{
				Version: dashgrid.ManifestVersion,
				Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				Widgets: []dashgrid.CatalogEntry{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("dashctl: stat catalog: %w", err)
	}
	return dashgrid.ReadCatalog(path)
}

func writeCatalog(path string, doc *dashgrid.CatalogDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dashctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmpDoc := *doc
	tmpDoc.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dashctl: create catalog %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tmpDoc); err != nil {
		return fmt.Errorf("dashctl: write catalog: %w", err)
	}
	return nil
}
