package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
)

// SeedFile is the on-disk shape of a seed dataset.
type SeedFile struct {
	Items []SeedItem `yaml:"items"`
}

// SeedItem is one row of a seed dataset.
type SeedItem struct {
	Name     string  `yaml:"name"`
	Quantity float64 `yaml:"quantity"`
	Category string  `yaml:"category"`
}

// Input converts the row to a create request.
func (s SeedItem) Input() item.Input {
	return item.Input{
		Name:     s.Name,
		Quantity: item.QuantityValue(s.Quantity),
		Category: s.Category,
	}
}

// LoadSeedFile reads a YAML seed dataset from path.
func LoadSeedFile(path string) ([]item.Input, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	inputs := make([]item.Input, 0, len(file.Items))
	for i, row := range file.Items {
		in := row.Input()
		if !in.Valid() {
			return nil, fmt.Errorf("seed item %d: name and category are required", i)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// DefaultSeed returns the built-in demo dataset.
func DefaultSeed() []item.Input {
	rows := []SeedItem{
		{Name: "Widget", Quantity: 25, Category: "Hardware"},
		{Name: "Gadget", Quantity: 12, Category: "Electronics"},
		{Name: "Sprocket", Quantity: 40, Category: "Hardware"},
		{Name: "Cable", Quantity: 60, Category: "Electronics"},
		{Name: "Notebook", Quantity: 100, Category: "Stationery"},
		{Name: "Pen", Quantity: 250, Category: "Stationery"},
	}
	inputs := make([]item.Input, 0, len(rows))
	for _, row := range rows {
		inputs = append(inputs, row.Input())
	}
	return inputs
}

// ResolveSeed picks the dataset the server seeds with. It returns nil when
// seeding is disabled.
func (c *ServerConfig) ResolveSeed() ([]item.Input, error) {
	if !c.SeedDemo {
		return nil, nil
	}
	if c.SeedFile != "" {
		return LoadSeedFile(c.SeedFile)
	}
	return DefaultSeed(), nil
}
