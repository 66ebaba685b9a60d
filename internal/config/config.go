package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/limaJavier/ucsp/pkg/ga"
	"github.com/limaJavier/ucsp/pkg/model"
	"github.com/limaJavier/ucsp/pkg/swarm"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env     string        `mapstructure:"env"`
	Seed    int64         `mapstructure:"seed"` // 0 seeds from the clock
	Log     LogConfig     `mapstructure:"log"`
	Weights model.Weights `mapstructure:"weights"`
	Genetic ga.Config     `mapstructure:"genetic"`
	Swarm   swarm.Config  `mapstructure:"swarm"`
	Repair  RepairConfig  `mapstructure:"repair"`
	Solver  SolverConfig  `mapstructure:"solver"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RepairConfig struct {
	Attempts int `mapstructure:"attempts"`
}

type SolverConfig struct {
	Name       string `mapstructure:"name"`
	KissatPath string `mapstructure:"kissat_path"`
}

// Load reads, in increasing precedence, defaults, the config file and UCSP_* environment variables (a .env file
// is loaded first when present). An empty path looks for ucsp.{yaml,json,toml} in the working directory and
// tolerates its absence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("UCSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	} else {
		v.SetConfigName("ucsp")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("env must be %q or %q (got %q)", EnvDevelopment, EnvProduction, c.Env))
	}
	if err := c.Weights.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("weights: %w", err))
	}
	if err := c.Genetic.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("genetic: %w", err))
	}
	if err := c.Swarm.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("swarm: %w", err))
	}
	if c.Repair.Attempts < 0 {
		errs = append(errs, fmt.Errorf("repair attempts must be >= 0 (got %d)", c.Repair.Attempts))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("seed", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	weights := model.DefaultWeights()
	v.SetDefault("weights.soft_overlap", weights.SoftOverlap)
	v.SetDefault("weights.odd_hours", weights.OddHours)
	v.SetDefault("weights.lunch", weights.Lunch)
	v.SetDefault("weights.hard", weights.Hard)

	genetic := ga.DefaultConfig()
	v.SetDefault("genetic.population", genetic.Population)
	v.SetDefault("genetic.generations", genetic.Generations)
	v.SetDefault("genetic.mutation_rate", genetic.MutationRate)

	sw := swarm.DefaultConfig()
	v.SetDefault("swarm.samples", sw.Samples)
	v.SetDefault("swarm.init_attempts", sw.InitAttempts)
	v.SetDefault("swarm.iterations", sw.Iterations)
	v.SetDefault("swarm.rounds", sw.Rounds)
	v.SetDefault("swarm.c1", sw.C1)
	v.SetDefault("swarm.c2", sw.C2)
	v.SetDefault("swarm.inertia", sw.Inertia)
	v.SetDefault("swarm.vmax", sw.VMax)
	v.SetDefault("swarm.rand_span", sw.RandSpan)

	v.SetDefault("repair.attempts", model.DefaultRepairAttempts)

	v.SetDefault("solver.name", "gini")
	v.SetDefault("solver.kissat_path", "")
}
