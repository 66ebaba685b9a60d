package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/ucsp/pkg/ga"
	"github.com/limaJavier/ucsp/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, EnvDevelopment, cfg.Env)
		assert.Equal(t, model.DefaultWeights(), cfg.Weights)
		assert.Equal(t, ga.DefaultConfig(), cfg.Genetic)
		assert.Equal(t, model.DefaultRepairAttempts, cfg.Repair.Attempts)
		assert.Equal(t, "gini", cfg.Solver.Name)
	})

	t.Run("File and environment", func(t *testing.T) {
		//** Arrange
		file := filepath.Join(t.TempDir(), "ucsp.yaml")
		content := "env: production\nseed: 42\nweights:\n  lunch: 3\ngenetic:\n  population: 50\nswarm:\n  rounds: 7\n"
		require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
		t.Setenv("UCSP_GENETIC_GENERATIONS", "12")
		t.Setenv("UCSP_SWARM_ROUNDS", "4")

		//** Act
		cfg, err := Load(file)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, EnvProduction, cfg.Env)
		assert.Equal(t, int64(42), cfg.Seed)
		assert.Equal(t, 3.0, cfg.Weights.Lunch)
		assert.Equal(t, 10.0, cfg.Weights.SoftOverlap)
		assert.Equal(t, 50, cfg.Genetic.Population)
		assert.Equal(t, 12, cfg.Genetic.Generations)
		assert.Equal(t, 4, cfg.Swarm.Rounds)
	})

	t.Run("Invalid values", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("UCSP_GENETIC_POPULATION", "7")
		t.Setenv("UCSP_ENV", "staging")

		_, err := Load("")

		assert.ErrorContains(t, err, "genetic")
		assert.ErrorContains(t, err, "env")
	})

	t.Run("Missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
