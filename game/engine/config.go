package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/wricardo/maze-lab/game/generator"
	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/pathfinder"
)

// MazeConfig is a named maze preset
type MazeConfig struct {
	Name        string `json:"name" toml:"name"`
	Description string `json:"description" toml:"description"`
	Width       int    `json:"width" toml:"width"`
	Height      int    `json:"height" toml:"height"`
	Generator   string `json:"generator" toml:"generator"`
	Pathfinder  string `json:"pathfinder" toml:"pathfinder"`
	DelayMS     int    `json:"delay_ms" toml:"delay_ms"`
}

// DefaultMazeConfig returns the built-in "classic" preset
func DefaultMazeConfig() *MazeConfig {
	return &MazeConfig{
		Name:        "classic",
		Description: "31x31 backtracker maze solved with A*",
		Width:       31,
		Height:      31,
		Generator:   string(generator.DFS),
		Pathfinder:  string(pathfinder.AStar),
		DelayMS:     DefaultDelayMS,
	}
}

// GeneratorAlgorithm returns the parsed generation algorithm
func (c *MazeConfig) GeneratorAlgorithm() (generator.Algorithm, error) {
	return generator.ParseAlgorithm(c.Generator)
}

// PathfinderAlgorithm returns the parsed pathfinding algorithm
func (c *MazeConfig) PathfinderAlgorithm() (pathfinder.Algorithm, error) {
	return pathfinder.ParseAlgorithm(c.Pathfinder)
}

// Delay returns the per-event animation delay
func (c *MazeConfig) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// ValidateMazeConfig checks a preset for usable dimensions, algorithms and delay
func ValidateMazeConfig(config *MazeConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if err := grid.ValidateDimensions(config.Width, config.Height); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if _, err := config.GeneratorAlgorithm(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if _, err := config.PathfinderAlgorithm(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if config.DelayMS < 0 || config.DelayMS > MaxDelayMS {
		return fmt.Errorf("config validation: delay_ms must be between 0 and %d, got %d", MaxDelayMS, config.DelayMS)
	}
	return nil
}

// ParseMazeConfig decodes a preset in the given format ("json" or "toml")
func ParseMazeConfig(data []byte, format string) (*MazeConfig, error) {
	var config MazeConfig
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return &config, nil
}

// MarshalMazeConfig encodes a preset in the given format ("json" or "toml")
func MarshalMazeConfig(config *MazeConfig, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		return json.MarshalIndent(config, "", "  ")
	case "toml":
		return toml.Marshal(config)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// LoadMazeConfig loads and validates a preset file; the format follows the extension
func LoadMazeConfig(filename string) (*MazeConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseMazeConfig(data, filepath.Ext(filename))
	if err != nil {
		return nil, err
	}

	if err := ValidateMazeConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}
