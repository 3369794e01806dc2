package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestSaveYAMLThenLoadRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.World.Width = 100
	cfg.World.Height = 80
	cfg.Reasoner.Provider = "openai"
	cfg.Reasoner.Model = "gpt-5"

	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 100, loaded.World.Width)
	require.Equal(t, 80, loaded.World.Height)
	require.Equal(t, "openai", loaded.Reasoner.Provider)
	require.Equal(t, "gpt-5", loaded.Reasoner.Model)
}

func TestSaveJSONThenLoadRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Simulation.VisionRadius = 12

	path := filepath.Join(t.TempDir(), "world.json")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 12, loaded.Simulation.VisionRadius)
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.toml")
	require.NoError(t, Default().SaveYAML(path))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsZeroWorld(t *testing.T) {
	cfg := Default()
	cfg.World.Width = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadNightVisionFactor(t *testing.T) {
	cfg := Default()
	cfg.Simulation.NightVisionFactor = 1.5
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownReasonerProvider(t *testing.T) {
	cfg := Default()
	cfg.Reasoner.Provider = "nonsense"
	require.Error(t, cfg.Validate())
}
