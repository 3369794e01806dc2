package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/townloop/engine/config"
	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/narrator"
	"github.com/townloop/engine/reasoner"
	"github.com/townloop/engine/storage"
)

// agentSeed is one entry of the seed file read by `init`, naming an agent
// to place in the freshly generated world.
type agentSeed struct {
	Name        string `yaml:"Name"`
	ModelID     string `yaml:"ModelID"`
	Personality string `yaml:"Personality"`
}

// loadSeeds reads the YAML list of agents to place during `init`.
func loadSeeds(path string) ([]agentSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	var seeds []agentSeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return seeds, nil
}

// loadConfig loads the world config, falling back to config.Default if the
// file doesn't exist yet (so `init` can be run against a bare directory).
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// openStore opens the configured SQLite store and event log.
func openStore(cfg *config.Config) (*storage.Store, error) {
	opts := storage.DefaultOptions()
	opts.QueryTimeout = cfg.Storage.QueryTimeout
	opts.PragmaJournalMode = cfg.Storage.PragmaJournalMode
	opts.PragmaSyncMode = cfg.Storage.PragmaSyncMode
	opts.MaxConnections = cfg.Storage.MaxConnections
	opts.SnapshotRetention = cfg.Storage.SnapshotRetention
	return storage.Open(cfg.Storage.DatabasePath, cfg.Storage.EventLogPath, opts)
}

// buildReasoner constructs the configured Reasoner. Unrecognized providers
// fall back to the deterministic mock so `run`/`tui` never fail to start
// for a typo'd config value — Validate already rejects those at load time.
func buildReasoner(cfg *config.Config) reasoner.Reasoner {
	switch cfg.Reasoner.Provider {
	case "openai":
		return reasoner.NewOpenAIReasoner(reasoner.OpenAIOptions{Model: cfg.Reasoner.Model})
	case "google":
		return reasoner.NewGoogleReasoner(reasoner.GoogleOptions{Model: cfg.Reasoner.Model})
	default:
		return reasoner.NewMockReasoner(reasoner.MockReasonerOptions{})
	}
}

// buildNarrator constructs the configured Narrator, always chaining the
// local template narrator as the simple-action fast path in front of
// whatever provider handles the rest.
func buildNarrator(ctx context.Context, cfg *config.Config) (narrator.Narrator, error) {
	var fallback narrator.Narrator
	switch cfg.Narrator.Provider {
	case "openai":
		fallback = narrator.NewProviderNarrator(narrator.NewOpenAITextGenerator("", cfg.Narrator.Model))
	case "google":
		gen, err := narrator.NewGoogleTextGenerator(ctx, "", cfg.Narrator.Model)
		if err != nil {
			return nil, err
		}
		fallback = narrator.NewProviderNarrator(gen)
	}
	return narrator.NewLocalNarrator(fallback), nil
}

// weatherFromString maps an injection file's free-text weather field to a
// valid domain.Weather, defaulting to clear on an unrecognized value.
func weatherFromString(s string) domain.Weather {
	switch domain.Weather(s) {
	case domain.WeatherClear, domain.WeatherCloudy, domain.WeatherRainy, domain.WeatherFoggy:
		return domain.Weather(s)
	default:
		return domain.WeatherClear
	}
}
