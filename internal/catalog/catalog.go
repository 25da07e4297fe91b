// Package catalog holds the fixed option lists the front ends offer:
// cars (with their class), tracks and driving styles.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// ErrUnknownOption is wrapped by Check when a selection is not offered.
var ErrUnknownOption = errors.New("catalog: unknown option")

type Car struct {
	Name  string `yaml:"name" json:"name"`
	Class string `yaml:"class" json:"class"`
}

// Label is the text shown in selects, e.g. "BMW M4 GT3 (GT3)".
func (c Car) Label() string {
	if c.Class == "" {
		return c.Name
	}
	return c.Name + " (" + c.Class + ")"
}

type Catalog struct {
	Cars   []Car    `yaml:"cars" json:"cars"`
	Tracks []string `yaml:"tracks" json:"tracks"`
	Styles []string `yaml:"styles" json:"styles"`
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML and requires every list to be non-empty and free of
// blank or duplicate entries.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	names := make([]string, 0, len(c.Cars))
	for _, car := range c.Cars {
		names = append(names, car.Name)
	}
	if err := checkList("cars", names); err != nil {
		return nil, err
	}
	if err := checkList("tracks", c.Tracks); err != nil {
		return nil, err
	}
	if err := checkList("styles", c.Styles); err != nil {
		return nil, err
	}
	return &c, nil
}

func checkList(kind string, items []string) error {
	if len(items) == 0 {
		return fmt.Errorf("catalog: no %s", kind)
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			return fmt.Errorf("catalog: blank entry in %s", kind)
		}
		if seen[it] {
			return fmt.Errorf("catalog: duplicate %s entry %q", kind, it)
		}
		seen[it] = true
	}
	return nil
}

// Car looks a car up by name.
func (c *Catalog) Car(name string) (Car, bool) {
	for _, car := range c.Cars {
		if car.Name == name {
			return car, true
		}
	}
	return Car{}, false
}

func (c *Catalog) HasTrack(name string) bool { return contains(c.Tracks, name) }
func (c *Catalog) HasStyle(name string) bool { return contains(c.Styles, name) }

// Check reports the first selection that is not in the catalog.
func (c *Catalog) Check(car, track, style string) error {
	if _, ok := c.Car(car); !ok {
		return fmt.Errorf("%w: car %q", ErrUnknownOption, car)
	}
	if !c.HasTrack(track) {
		return fmt.Errorf("%w: track %q", ErrUnknownOption, track)
	}
	if !c.HasStyle(style) {
		return fmt.Errorf("%w: driving style %q", ErrUnknownOption, style)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
