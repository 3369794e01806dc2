package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/internal/random"
	"github.com/townloop/engine/storage"
	"github.com/townloop/engine/worldgen"
)

var (
	initSeedFile string
	initSeed     string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate terrain, place agents, and write the initial database",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initSeedFile, "agents", "agents.yaml", "path to the agent seed file")
	initCmd.Flags().StringVar(&initSeed, "seed", "", "terrain generation seed (random if omitted)")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	seeds, err := loadSeeds(initSeedFile)
	if err != nil {
		return err
	}

	seed := initSeed
	if seed == "" {
		seed = random.Integer()
	}
	var seedNum uint64
	fmt.Sscanf(seed, "%d", &seedNum)

	opts := worldgen.DefaultOptions(uint64(cfg.World.Width), uint64(cfg.World.Height), seedNum)
	cells := worldgen.GenerateTerrain(opts)
	positions := worldgen.PlaceAgents(cells, cfg.World.Width, cfg.World.Height, seedNum, len(seeds))

	data := storage.NewWorldData()
	data.World = domain.WorldState{Width: cfg.World.Width, Height: cfg.World.Height, Weather: domain.WeatherClear}
	data.Cells = cells
	for i, s := range seeds {
		data.Agents[s.Name] = domain.NewAgent(s.Name, s.ModelID, s.Personality, positions[i])
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Seed(context.Background(), data); err != nil {
		return fmt.Errorf("failed to seed world: %w", err)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("initialized world %dx%d with %d agents (seed %s) at %s\n",
		cfg.World.Width, cfg.World.Height, len(seeds), seed, cfg.Storage.DatabasePath)
	return nil
}
