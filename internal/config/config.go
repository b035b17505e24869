// Package config loads the settings shared by the lane-tools commands.
//
// A config file is YAML (or JSON when its extension is .json) with two
// sections, lane and planner. Keys left out of the file keep their defaults:
//
//	lane:
//	  blur_kernel: 5
//	  canny_low: 50
//	  canny_high: 150
//	  hough:
//	    threshold: 100
//	planner:
//	  start: {x: 0, y: 0}
//	  goal: {x: 10, y: 10}
//	  obstacles:
//	    - {x: 5, y: 5}
//	  map_size: 15
//	  seed: 42
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/Mayankkcode/Lane-detection/internal/lane"
	"github.com/Mayankkcode/Lane-detection/internal/planner"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Point is a 2D coordinate as written in config files.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Vec converts p to a gonum vector.
func (p Point) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Vecs converts a point list to gonum vectors.
func Vecs(pts []Point) []r2.Vec {
	out := make([]r2.Vec, len(pts))
	for i, p := range pts {
		out[i] = p.Vec()
	}
	return out
}

// PlannerConfig describes one RRT scenario.
type PlannerConfig struct {
	Start     Point   `yaml:"start" json:"start"`
	Goal      Point   `yaml:"goal" json:"goal"`
	Obstacles []Point `yaml:"obstacles" json:"obstacles"`
	MapSize   float64 `yaml:"map_size" json:"map_size"`

	planner.Config `yaml:",inline"`

	// Seed fixes the sampling sequence.
	Seed uint64 `yaml:"seed" json:"seed"`

	// PlotFile, when set, is where the plan command renders the tree.
	PlotFile string `yaml:"plot_file" json:"plot_file"`
}

// New builds a planner for the scenario.
func (c PlannerConfig) New() *planner.RRT {
	return planner.New(c.Start.Vec(), c.Goal.Vec(), Vecs(c.Obstacles), c.MapSize,
		planner.WithConfig(c.Config), planner.WithSeed(c.Seed))
}

// Config is the full file layout.
type Config struct {
	Lane    lane.Params   `yaml:"lane" json:"lane"`
	Planner PlannerConfig `yaml:"planner" json:"planner"`
}

// Default returns the built-in lane settings and the reference planner
// scenario: start (0,0), goal (10,10), three obstacles on a 15x15 map.
func Default() *Config {
	return &Config{
		Lane: lane.DefaultParams(),
		Planner: PlannerConfig{
			Start:     Point{X: 0, Y: 0},
			Goal:      Point{X: 10, Y: 10},
			Obstacles: []Point{{X: 5, Y: 5}, {X: 3, Y: 7}, {X: 6, Y: 9}},
			MapSize:   15,
			Config:    planner.DefaultConfig(),
		},
	}
}

// Load returns Default overlaid with the file at path. An empty path returns
// the defaults; a named file that cannot be read is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting outside its valid range.
func (c *Config) Validate() error {
	if err := c.Lane.Validate(); err != nil {
		return fmt.Errorf("%w: lane: %w", ErrInvalidConfig, err)
	}

	p := c.Planner
	switch {
	case !(p.MapSize > 0):
		return fmt.Errorf("%w: planner: map_size must be positive, got %v", ErrInvalidConfig, p.MapSize)
	case !(p.StepSize > 0):
		return fmt.Errorf("%w: planner: step_size must be positive, got %v", ErrInvalidConfig, p.StepSize)
	case p.MaxIter < 1:
		return fmt.Errorf("%w: planner: max_iter must be at least 1, got %d", ErrInvalidConfig, p.MaxIter)
	case p.Clearance < 0:
		return fmt.Errorf("%w: planner: clearance must not be negative, got %v", ErrInvalidConfig, p.Clearance)
	case !(p.GoalRadius > 0):
		return fmt.Errorf("%w: planner: goal_radius must be positive, got %v", ErrInvalidConfig, p.GoalRadius)
	}
	return nil
}
