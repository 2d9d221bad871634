package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/tileworld/internal/camera"
	"github.com/udisondev/tileworld/internal/dirty"
	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
)

// EnvPath names the environment variable that overrides the config file path.
const EnvPath = "TILEWORLD_CONFIG"

// DefaultPath is used when neither a flag nor EnvPath is set.
const DefaultPath = "config/tileworld.yaml"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Simulation holds all configuration of the world simulator.
type Simulation struct {
	LogLevel string `yaml:"log_level"`

	// Rendering target
	Device    string `yaml:"device"` // desktop | tablet | mobile
	CellSize  int    `yaml:"cell_size"`
	Scale     int    `yaml:"scale"`
	FrameRate int    `yaml:"frame_rate"`

	// Timing
	ZoningDuration     time.Duration `yaml:"zoning_duration"`
	DeathDuration      time.Duration `yaml:"death_duration"`
	AggroCheckInterval time.Duration `yaml:"aggro_check_interval"`
	DefaultMoveSpeed   time.Duration `yaml:"default_move_speed"`
	DefaultAttackRate  time.Duration `yaml:"default_attack_rate"`

	// Pathfinding
	MovementModel     string `yaml:"movement_model"` // four_way | eight_way
	MaxPathIterations int    `yaml:"max_path_iterations"`
	IncompletePaths   bool   `yaml:"incomplete_paths"`

	// Dirty rects (tablet and mobile only)
	DirtyPropagation string `yaml:"dirty_propagation"` // transitive | single_hop
	DirtyRadius      int    `yaml:"dirty_radius"`

	// Sprite footprints by kind name, overriding the built-in table.
	Sprites map[string]dirty.Sprite `yaml:"sprites"`

	MapPath    string `yaml:"map_path"`
	RecordPath string `yaml:"record_path"`
}

// DefaultSimulation returns the simulator config with the stock client values.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel:           "info",
		Device:             "desktop",
		CellSize:           model.DefaultCellSize,
		Scale:              2,
		FrameRate:          50,
		ZoningDuration:     500 * time.Millisecond,
		DeathDuration:      1200 * time.Millisecond,
		AggroCheckInterval: time.Second,
		DefaultMoveSpeed:   model.DefaultMoveSpeed,
		DefaultAttackRate:  model.DefaultAttackRate,
		MovementModel:      "four_way",
		MaxPathIterations:  geo.DefaultMaxPathIterations,
		DirtyPropagation:   "transitive",
		DirtyRadius:        dirty.DefaultRadius,
		MapPath:            "maps/world_client.json",
	}
}

// LoadSimulation loads the simulator config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// ResolvePath picks the config path: the flag value if set, then EnvPath, then DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Validate checks ranges and enumerations.
func (c Simulation) Validate() error {
	if _, err := camera.ParseDevice(c.Device); err != nil {
		return fmt.Errorf("device: %w: %w", ErrInvalidConfig, err)
	}
	if _, err := geo.ParseMovementModel(c.MovementModel); err != nil {
		return fmt.Errorf("movement_model: %w: %w", ErrInvalidConfig, err)
	}
	if _, err := dirty.ParseMode(c.DirtyPropagation); err != nil {
		return fmt.Errorf("dirty_propagation: %w: %w", ErrInvalidConfig, err)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("cell_size %d: %w", c.CellSize, ErrInvalidConfig)
	}
	if c.Scale < 1 || c.Scale > 3 {
		return fmt.Errorf("scale %d not in 1..3: %w", c.Scale, ErrInvalidConfig)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate %d: %w", c.FrameRate, ErrInvalidConfig)
	}
	if c.DirtyRadius < 0 {
		return fmt.Errorf("dirty_radius %d: %w", c.DirtyRadius, ErrInvalidConfig)
	}
	for name := range c.Sprites {
		if _, err := model.ParseKind(name); err != nil {
			return fmt.Errorf("sprites: %w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// DeviceClass returns the parsed device.
func (c Simulation) DeviceClass() camera.Device {
	d, _ := camera.ParseDevice(c.Device)
	return d
}

// Movement returns the parsed movement model.
func (c Simulation) Movement() geo.MovementModel {
	m, _ := geo.ParseMovementModel(c.MovementModel)
	return m
}

// Propagation returns the parsed dirty propagation mode.
func (c Simulation) Propagation() dirty.Mode {
	m, _ := dirty.ParseMode(c.DirtyPropagation)
	return m
}

// FrameInterval returns the time between ticks.
func (c Simulation) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 50
	}
	return time.Second / time.Duration(c.FrameRate)
}

// SpriteMetrics merges the configured footprints over the built-in table.
func (c Simulation) SpriteMetrics() dirty.StaticMetrics {
	m := dirty.DefaultMetrics()
	for name, s := range c.Sprites {
		k, err := model.ParseKind(name)
		if err != nil {
			continue
		}
		m[k] = s
	}
	return m
}
