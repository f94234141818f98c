package registration

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Config is the tunable parameter surface for feature extraction, matching
// the recognized options in the data model. JSON tags follow the corpus
// convention of tagged config structs (e.g. components/.../Config).
type Config struct {
	FeatureRegions            int     `json:"feature_regions"`
	CurvatureRegion           int     `json:"curvature_region"`
	MaxCornerSharp            int     `json:"max_corner_sharp"`
	MaxCornerLessSharp        int     `json:"max_corner_less_sharp"`
	MaxSurfaceFlat            int     `json:"max_surface_flat"`
	SurfaceCurvatureThreshold float64 `json:"surface_curvature_threshold"`
	LessFlatFilterSize        float64 `json:"less_flat_filter_size"`
}

// DefaultConfig returns the recognized option defaults.
func DefaultConfig() Config {
	return Config{
		FeatureRegions:            6,
		CurvatureRegion:           5,
		MaxCornerSharp:            2,
		MaxCornerLessSharp:        20,
		MaxSurfaceFlat:            4,
		SurfaceCurvatureThreshold: 0.1,
		LessFlatFilterSize:        0.2,
	}
}

// Validate checks every field against its documented range. It is
// simplified relative to the corpus's resource Config.Validate(path)
// pattern: this core has no resource-dependency graph to report a path or
// dependency list into, so invalid fields are reported as a single wrapped
// error rather than a (deps, error) pair.
func (c Config) Validate() error {
	switch {
	case c.FeatureRegions < 1:
		return errors.Errorf("registration: featureRegions must be >= 1, got %d", c.FeatureRegions)
	case c.CurvatureRegion < 1:
		return errors.Errorf("registration: curvatureRegion must be >= 1, got %d", c.CurvatureRegion)
	case c.MaxCornerSharp < 1:
		return errors.Errorf("registration: maxCornerSharp must be >= 1, got %d", c.MaxCornerSharp)
	case c.MaxCornerLessSharp < c.MaxCornerSharp:
		return errors.Errorf("registration: maxCornerLessSharp (%d) must be >= maxCornerSharp (%d)",
			c.MaxCornerLessSharp, c.MaxCornerSharp)
	case c.MaxSurfaceFlat < 1:
		return errors.Errorf("registration: maxSurfaceFlat must be >= 1, got %d", c.MaxSurfaceFlat)
	case c.SurfaceCurvatureThreshold < 0.001:
		return errors.Errorf("registration: surfaceCurvatureThreshold must be >= 0.001, got %f", c.SurfaceCurvatureThreshold)
	case c.LessFlatFilterSize < 0.001:
		return errors.Errorf("registration: lessFlatFilterSize must be >= 0.001, got %f", c.LessFlatFilterSize)
	}
	return nil
}

// WithDefaultedCornerLessSharp returns c with MaxCornerLessSharp set to
// 10x MaxCornerSharp if it was left at its zero value, matching the
// source's "10 * maxCornerSharp" default when not separately overridden.
func (c Config) WithDefaultedCornerLessSharp() Config {
	if c.MaxCornerLessSharp == 0 {
		c.MaxCornerLessSharp = 10 * c.MaxCornerSharp
	}
	return c
}

// DecodeConfig JSON-decodes r onto DefaultConfig and validates the result,
// rejecting the update atomically on any invalid field.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "registration: decode config")
	}
	cfg = cfg.WithDefaultedCornerLessSharp()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
