package catalog

import (
	_ "embed"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed datasets.yaml
var manifestYAML []byte

// Dataset describes one static JSON file of listings.
type Dataset struct {
	Name     string `yaml:"name" json:"name"`
	File     string `yaml:"file" json:"file"`
	Category string `yaml:"category" json:"category"`
	// Route is the detail path segment; empty for datasets without pages.
	Route    string `yaml:"route" json:"route,omitempty"`
	Search   bool   `yaml:"search" json:"search"`
	Homepage bool   `yaml:"homepage" json:"homepage"`
	// Story datasets link to /stories/<id> instead of ?open=<id>.
	Story bool `yaml:"story" json:"story"`
}

// Manifest is the ordered list of datasets.
type Manifest struct {
	Datasets []Dataset `yaml:"datasets"`
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// DefaultManifest returns the embedded manifest.
func DefaultManifest() *Manifest {
	m, err := ParseManifest(manifestYAML)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Manifest) validate() error {
	if len(m.Datasets) == 0 {
		return fmt.Errorf("manifest declares no datasets")
	}
	names := make(map[string]bool, len(m.Datasets))
	for i, ds := range m.Datasets {
		switch {
		case ds.Name == "":
			return fmt.Errorf("dataset %d: name is required", i)
		case names[ds.Name]:
			return fmt.Errorf("dataset %q declared twice", ds.Name)
		case ds.File == "" || path.Base(ds.File) != ds.File || !strings.HasSuffix(ds.File, ".json"):
			return fmt.Errorf("dataset %q: file must be a bare .json name, got %q", ds.Name, ds.File)
		case ds.Category == "":
			return fmt.Errorf("dataset %q: category is required", ds.Name)
		case ds.Search && ds.Route == "":
			return fmt.Errorf("dataset %q: searchable datasets need a route", ds.Name)
		}
		names[ds.Name] = true
	}
	return nil
}

// Lookup returns the dataset called name.
func (m *Manifest) Lookup(name string) (Dataset, bool) {
	for _, ds := range m.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return Dataset{}, false
}

// ByFile returns the dataset stored in file.
func (m *Manifest) ByFile(file string) (Dataset, bool) {
	for _, ds := range m.Datasets {
		if ds.File == file {
			return ds, true
		}
	}
	return Dataset{}, false
}

// Searchable returns the search sources in declaration order.
func (m *Manifest) Searchable() []Dataset {
	return m.filter(func(ds Dataset) bool { return ds.Search })
}

// Homepage returns the homepage datasets in declaration order.
func (m *Manifest) Homepage() []Dataset {
	return m.filter(func(ds Dataset) bool { return ds.Homepage })
}

func (m *Manifest) filter(keep func(Dataset) bool) []Dataset {
	var out []Dataset
	for _, ds := range m.Datasets {
		if keep(ds) {
			out = append(out, ds)
		}
	}
	return out
}
