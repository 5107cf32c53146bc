package marks

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownPreset is returned by Preset for names that are not registered.
var ErrUnknownPreset = errors.New("unknown marks preset")

// Config holds the tunable parameters of the classifier.
type Config struct {
	// MinArea is the exclusive lower bound of a candidate mark's outline area.
	MinArea float64 `json:"min_area"`
	// MaxArea is the exclusive upper bound of a candidate mark's outline area.
	MaxArea float64 `json:"max_area"`
	// SimplifyToleranceFactor multiplies the outline perimeter to get the
	// polygon simplification tolerance.
	SimplifyToleranceFactor float64 `json:"simplify_tolerance_factor"`
}

// Validate reports whether the band and tolerance are usable.
func (c Config) Validate() error {
	if c.MinArea < 0 {
		return fmt.Errorf("marks: min_area must be >= 0, got %v", c.MinArea)
	}
	if c.MinArea >= c.MaxArea {
		return fmt.Errorf("marks: min_area (%v) must be below max_area (%v)", c.MinArea, c.MaxArea)
	}
	if c.SimplifyToleranceFactor < 0 {
		return fmt.Errorf("marks: simplify_tolerance_factor must be >= 0, got %v", c.SimplifyToleranceFactor)
	}
	return nil
}

const (
	PresetOriginal = "original"
	PresetRevised  = "revised"
)

var presets = map[string]Config{
	// first revision of the picklist page: small band, area only
	PresetOriginal: {MinArea: 50, MaxArea: 500, SimplifyToleranceFactor: 0.02},
	// later revisions widened the band and added the vertex check
	PresetRevised: {MinArea: 100, MaxArea: 1000, SimplifyToleranceFactor: 0.02},
}

// Preset returns the named parameter set.
func Preset(name string) (Config, error) {
	c, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return c, nil
}

// PresetNames lists registered presets in lexical order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Presets returns a copy of every registered preset keyed by name.
func Presets() map[string]Config {
	out := make(map[string]Config, len(presets))
	for k, v := range presets {
		out[k] = v
	}
	return out
}
