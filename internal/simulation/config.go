// Package simulation provides configuration for the combat simulation rules.
// Rules are loaded from a YAML file so an encounter can tune its own pacing.
package simulation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all simulation rules for an encounter
type Config struct {
	Grid   GridConfig   `yaml:"grid"`
	Turn   TurnConfig   `yaml:"turn"`
	AI     AIConfig     `yaml:"ai"`
	Window WindowConfig `yaml:"window"`

	// Seed for the shared random source. Zero means seed from the clock.
	Seed int64 `yaml:"seed"`
}

// GridConfig defines the battle grid size and on-screen layout
type GridConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	CellSize  float64 `yaml:"cell_size"`  // Pixels per cell side
	LineWidth float64 `yaml:"line_width"` // Pixels between cells
	OriginX   float64 `yaml:"origin_x"`
	OriginY   float64 `yaml:"origin_y"`
}

// TurnConfig defines the pacing of the turn cycle
type TurnConfig struct {
	StepDelay    float64 `yaml:"step_delay"`    // Seconds between automatic steps
	DeclareDelay float64 `yaml:"declare_delay"` // Seconds an AI "thinks" before declaring
	Initiative   string  `yaml:"initiative"`    // Dice expression added to each actor's modifier
	MaxSteps     int     `yaml:"max_steps"`     // Longest path a player may declare
}

// AIConfig defines the random walk used by AI combatants
type AIConfig struct {
	WalkDepth int `yaml:"walk_depth"` // Maximum steps per declaration
}

// WindowConfig defines the graphical window
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// DefaultConfig returns the stock 5x5 encounter rules
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			Width:     5,
			Height:    5,
			CellSize:  96,
			LineWidth: 4,
			OriginX:   100,
			OriginY:   100,
		},
		Turn: TurnConfig{
			StepDelay:    0.5,
			DeclareDelay: 0.5,
			Initiative:   "1d10",
			MaxSteps:     3,
		},
		AI: AIConfig{
			WalkDepth: 3,
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Raid Night",
		},
	}
}

// LoadConfig loads simulation config from a YAML file. Fields missing from the
// file keep their defaults, and a missing file yields DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Grid.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive, got %v", c.Grid.CellSize)
	}
	if c.Grid.LineWidth < 0 {
		return fmt.Errorf("line_width must not be negative, got %v", c.Grid.LineWidth)
	}
	if c.Turn.StepDelay <= 0 {
		return fmt.Errorf("step_delay must be positive, got %v", c.Turn.StepDelay)
	}
	if c.Turn.DeclareDelay < 0 {
		return fmt.Errorf("declare_delay must not be negative, got %v", c.Turn.DeclareDelay)
	}
	if c.Turn.Initiative == "" {
		return fmt.Errorf("initiative expression is empty")
	}
	if c.Turn.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", c.Turn.MaxSteps)
	}
	if c.AI.WalkDepth < 0 {
		return fmt.Errorf("walk_depth must not be negative, got %d", c.AI.WalkDepth)
	}
	return nil
}
