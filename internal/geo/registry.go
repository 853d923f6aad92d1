package geo

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed facilities.yaml
var defaultFacilities []byte

// Registry is the fixed, ordered list of facilities loaded at startup.
// It is never modified after construction.
type Registry struct {
	facilities []Facility
}

type registryFile struct {
	Facilities []Facility `yaml:"facilities"`
}

// NewRegistry validates facilities and returns a registry holding a copy of them.
func NewRegistry(facilities []Facility) (*Registry, error) {
	if err := validate(facilities); err != nil {
		return nil, err
	}
	own := make([]Facility, len(facilities))
	copy(own, facilities)
	return &Registry{facilities: own}, nil
}

// DefaultRegistry returns the nine TPSU sites shipped with the bot.
func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultFacilities)
}

// LoadRegistry reads a YAML registry file. An empty path yields the default registry.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read facilities file %s: %w", path, err)
	}
	reg, err := ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("facilities file %s: %w", path, err)
	}
	return reg, nil
}

// ParseRegistry decodes a YAML document with a top-level "facilities" list.
func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("cannot parse facilities: %w", err)
	}
	return NewRegistry(file.Facilities)
}

func validate(facilities []Facility) error {
	var errs []string
	seen := make(map[string]bool, len(facilities))

	for i, f := range facilities {
		name := strings.TrimSpace(f.Name)
		switch {
		case name == "":
			errs = append(errs, fmt.Sprintf("facilities[%d]: name is required", i))
		case seen[name]:
			errs = append(errs, fmt.Sprintf("facilities[%d]: duplicate name %q", i, name))
		}
		seen[name] = true

		if math.IsNaN(f.Lat) || f.Lat < -90 || f.Lat > 90 {
			errs = append(errs, fmt.Sprintf("facilities[%d]: lat must be between -90 and 90", i))
		}
		if math.IsNaN(f.Lon) || f.Lon < -180 || f.Lon > 180 {
			errs = append(errs, fmt.Sprintf("facilities[%d]: lon must be between -180 and 180", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid facilities: %s", strings.Join(errs, "; "))
	}
	return nil
}

// All returns a copy of the facilities in registry order.
func (r *Registry) All() []Facility {
	out := make([]Facility, len(r.facilities))
	copy(out, r.facilities)
	return out
}

// Len reports how many facilities are registered.
func (r *Registry) Len() int { return len(r.facilities) }

// Nearest returns the facility closest to (lat, lon).
func (r *Registry) Nearest(lat, lon float64) (Match, bool) {
	return Nearest(lat, lon, r.facilities)
}
