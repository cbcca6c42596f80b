package dashgrid

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// CatalogDocument models a YAML manifest describing widget types available to
// a deployment, plus the starter widgets a seeded dashboard should contain.
type CatalogDocument struct {
	Version string         `json:"version" yaml:"version"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Widgets []CatalogEntry `json:"widgets" yaml:"widgets"`
	Seed    []SeedWidget   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Source  string         `json:"-" yaml:"-"`
}

// CatalogEntry describes a single widget type within a catalog.
type CatalogEntry struct {
	Definition WidgetDefinition `json:"definition" yaml:"definition"`
	Tags       []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// SeedWidget describes a starter widget added when seeding a dashboard.
type SeedWidget struct {
	Type       WidgetType     `json:"type" yaml:"type"`
	Title      string         `json:"title,omitempty" yaml:"title,omitempty"`
	DataSource string         `json:"data_source,omitempty" yaml:"data_source,omitempty"`
	DataConfig map[string]any `json:"data_config,omitempty" yaml:"data_config,omitempty"`
}

// LoadCatalogFile reads a catalog from disk, registers its definitions, and
// returns the document.
func (r *Registry) LoadCatalogFile(path string) (*CatalogDocument, error) {
	doc, err := ReadCatalog(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadCatalogDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadCatalogDocument registers definitions from a decoded catalog.
func (r *Registry) LoadCatalogDocument(doc *CatalogDocument) error {
	if doc == nil {
		return fmt.Errorf("dashgrid: catalog document is nil")
	}
	for _, entry := range doc.Widgets {
		if err := r.RegisterDefinition(entry.Definition); err != nil {
			return fmt.Errorf("dashgrid: register widget type %s from %s: %w", entry.Definition.Type, doc.Source, err)
		}
	}
	return nil
}

// ReadCatalog loads a catalog file from disk without registering it.
func ReadCatalog(path string) (*CatalogDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashgrid: open catalog %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("dashgrid: decode catalog %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeCatalog reads a catalog from any reader.
func DecodeCatalog(r io.Reader) (*CatalogDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc CatalogDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashgrid: catalog is empty")
		}
		return nil, fmt.Errorf("dashgrid: parse catalog: %w", err)
	}
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the catalog satisfies required fields.
func (doc *CatalogDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashgrid: unsupported catalog version %q", doc.Version)
	}
	seen := make(map[WidgetType]struct{}, len(doc.Widgets))
	for idx, entry := range doc.Widgets {
		if entry.Definition.Type == "" {
			return fmt.Errorf("dashgrid: catalog widget at index %d is missing definition.type", idx)
		}
		if entry.Definition.Name == "" {
			return fmt.Errorf("dashgrid: catalog widget %s missing definition.name", entry.Definition.Type)
		}
		if _, exists := seen[entry.Definition.Type]; exists {
			return fmt.Errorf("dashgrid: catalog duplicates widget type %s", entry.Definition.Type)
		}
		seen[entry.Definition.Type] = struct{}{}
	}
	return nil
}
