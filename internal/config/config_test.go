package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	t.Setenv("GAME_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 60, cfg.Simulation.TickRate)
	assert.Equal(t, 3000.0, cfg.Simulation.LevelLength)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "default", cfg.Storage.Slot)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.yaml")
	yamlData := `
simulation:
  seed: 42
  level_length: 4000
storage:
  backend: badger
  badger_path: /tmp/saves
  compress: true
server:
  rest_port: 9000
catalog_path: configs/catalog.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o644))
	t.Setenv("GAME_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, 4000.0, cfg.Simulation.LevelLength)
	assert.Equal(t, 60, cfg.Simulation.TickRate, "незаданное поле получает дефолт")
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.True(t, cfg.Storage.Compress)
	assert.Equal(t, "configs/catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, 9000, cfg.Server.GetRESTPort())
}

func TestLoadBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation: [1, 2"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPortFallback(t *testing.T) {
	t.Setenv("GAME_METRICS_PORT", "")
	s := ServerConfig{}
	assert.Equal(t, 2112, s.GetMetricsPort())

	t.Setenv("GAME_METRICS_PORT", "9100")
	assert.Equal(t, 9100, s.GetMetricsPort())

	t.Setenv("GAME_METRICS_PORT", "abc")
	assert.Equal(t, 2112, s.GetMetricsPort())

	s.MetricsPort = 7000
	assert.Equal(t, 7000, s.GetMetricsPort())
}
