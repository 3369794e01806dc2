// Package config holds the simulation's ambient tunables — world bounds,
// vision and scheduling parameters, storage paths, and reasoner/narrator
// provider selection — loaded from a YAML (or JSON) file.
//
// Save/Load dispatch on the file extension, YAML is the primary format via
// github.com/goccy/go-yaml, and defaults are filled in by a
// Default-returning constructor rather than zero values.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// StorageConfig configures the SQLite store and event log paths, and the
// rolling snapshot policy.
type StorageConfig struct {
	DatabasePath      string        `yaml:"DatabasePath,omitempty" json:"DatabasePath,omitempty"`
	EventLogPath      string        `yaml:"EventLogPath,omitempty" json:"EventLogPath,omitempty"`
	// AgentsDir holds one subdirectory per agent:
	// journal/notes/discoveries.md (opaque to the engine) plus the
	// engine-written, read-only .status file.
	AgentsDir         string        `yaml:"AgentsDir,omitempty" json:"AgentsDir,omitempty"`
	SnapshotDir       string        `yaml:"SnapshotDir,omitempty" json:"SnapshotDir,omitempty"`
	SnapshotRetention int           `yaml:"SnapshotRetention,omitempty" json:"SnapshotRetention,omitempty"`
	SnapshotInterval  int           `yaml:"SnapshotInterval,omitempty" json:"SnapshotInterval,omitempty"`
	QueryTimeout      time.Duration `yaml:"QueryTimeout,omitempty" json:"QueryTimeout,omitempty"`
	PragmaJournalMode string        `yaml:"PragmaJournalMode,omitempty" json:"PragmaJournalMode,omitempty"`
	PragmaSyncMode    string        `yaml:"PragmaSyncMode,omitempty" json:"PragmaSyncMode,omitempty"`
	MaxConnections    int           `yaml:"MaxConnections,omitempty" json:"MaxConnections,omitempty"`
}

// WorldConfig configures the fixed geometry of a world.
type WorldConfig struct {
	Width  int `yaml:"Width,omitempty" json:"Width,omitempty"`
	Height int `yaml:"Height,omitempty" json:"Height,omitempty"`
}

// SimulationConfig configures per-tick scheduling and perception
// parameters.
type SimulationConfig struct {
	VisionRadius      int           `yaml:"VisionRadius,omitempty" json:"VisionRadius,omitempty"`
	NightVisionFactor float64       `yaml:"NightVisionFactor,omitempty" json:"NightVisionFactor,omitempty"`
	ClusterBuffer     int           `yaml:"ClusterBuffer,omitempty" json:"ClusterBuffer,omitempty"`
	InviteExpiryTicks int           `yaml:"InviteExpiryTicks,omitempty" json:"InviteExpiryTicks,omitempty"`
	TickDeadline      time.Duration `yaml:"TickDeadline,omitempty" json:"TickDeadline,omitempty"`
}

// ReasonerConfig selects and configures the LLM-backed reasoner adapter.
type ReasonerConfig struct {
	Provider string `yaml:"Provider,omitempty" json:"Provider,omitempty"`
	Model    string `yaml:"Model,omitempty" json:"Model,omitempty"`
	LogLevel string `yaml:"LogLevel,omitempty" json:"LogLevel,omitempty"`
}

// NarratorConfig selects and configures the narrator used to turn events
// into prose.
type NarratorConfig struct {
	Provider string `yaml:"Provider,omitempty" json:"Provider,omitempty"`
	Model    string `yaml:"Model,omitempty" json:"Model,omitempty"`
	Template string `yaml:"Template,omitempty" json:"Template,omitempty"`
}

// Config is the full set of tunables for one townloop world.
type Config struct {
	World      WorldConfig       `yaml:"World,omitempty" json:"World,omitempty"`
	Simulation SimulationConfig  `yaml:"Simulation,omitempty" json:"Simulation,omitempty"`
	Storage    StorageConfig     `yaml:"Storage,omitempty" json:"Storage,omitempty"`
	Reasoner   ReasonerConfig    `yaml:"Reasoner,omitempty" json:"Reasoner,omitempty"`
	Narrator   NarratorConfig    `yaml:"Narrator,omitempty" json:"Narrator,omitempty"`
	LogLevel   string            `yaml:"LogLevel,omitempty" json:"LogLevel,omitempty"`
}

// Default returns a Config with sensible defaults for a fresh world.
func Default() *Config {
	return &Config{
		World: WorldConfig{Width: 64, Height: 64},
		Simulation: SimulationConfig{
			VisionRadius:      8,
			NightVisionFactor: 0.6,
			ClusterBuffer:     2,
			InviteExpiryTicks: 2,
			TickDeadline:      120 * time.Second,
		},
		Storage: StorageConfig{
			DatabasePath:      "world.db",
			EventLogPath:      "events.jsonl",
			AgentsDir:         "agents",
			SnapshotDir:       "snapshots",
			SnapshotRetention: 5,
			SnapshotInterval:  100,
			QueryTimeout:      30 * time.Second,
			PragmaJournalMode: "WAL",
			PragmaSyncMode:    "NORMAL",
			MaxConnections:    10,
		},
		Reasoner: ReasonerConfig{Provider: "mock"},
		Narrator: NarratorConfig{Provider: "local"},
		LogLevel: "info",
	}
}

// Load reads a Config from path. The file extension selects the decoder:
// .json for JSON, .yml/.yaml for YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse json config %s: %w", path, err)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to path. The file extension selects the format.
func (c *Config) Save(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return c.SaveJSON(path)
	case ".yml", ".yaml":
		return c.SaveYAML(path)
	default:
		return fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// SaveYAML writes a Config to a YAML file.
func (c *Config) SaveYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// SaveJSON writes a Config to a JSON file.
func (c *Config) SaveJSON(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal json config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Write encodes a Config to w in YAML format.
func (c *Config) Write(w io.Writer) error {
	return yaml.NewEncoder(w).Encode(c)
}

// Validate rejects configurations that would make the simulation
// ill-defined (zero-size worlds, non-positive vision radius, unknown
// providers).
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %dx%d", c.World.Width, c.World.Height)
	}
	if c.Simulation.VisionRadius <= 0 {
		return fmt.Errorf("vision radius must be positive, got %d", c.Simulation.VisionRadius)
	}
	if c.Simulation.NightVisionFactor <= 0 || c.Simulation.NightVisionFactor > 1 {
		return fmt.Errorf("night vision factor must be in (0, 1], got %f", c.Simulation.NightVisionFactor)
	}
	if c.Simulation.ClusterBuffer < 0 {
		return fmt.Errorf("cluster buffer must be non-negative, got %d", c.Simulation.ClusterBuffer)
	}
	if c.Simulation.TickDeadline <= 0 {
		return fmt.Errorf("tick deadline must be positive, got %s", c.Simulation.TickDeadline)
	}
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if !isValidReasonerProvider(c.Reasoner.Provider) {
		return fmt.Errorf("invalid reasoner provider: %s", c.Reasoner.Provider)
	}
	if !isValidNarratorProvider(c.Narrator.Provider) {
		return fmt.Errorf("invalid narrator provider: %s", c.Narrator.Provider)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidReasonerProvider(provider string) bool {
	switch provider {
	case "mock", "openai", "google":
		return true
	default:
		return false
	}
}

func isValidNarratorProvider(provider string) bool {
	switch provider {
	case "local", "openai", "google":
		return true
	default:
		return false
	}
}
