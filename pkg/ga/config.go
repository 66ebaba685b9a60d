package ga

import "fmt"

type Config struct {
	Population   int     `mapstructure:"population"`
	Generations  int     `mapstructure:"generations"`
	MutationRate float64 `mapstructure:"mutation_rate"` // Percent chance for each gene of a non-elite child to be redrawn
}

func (c Config) Validate() error {
	if c.Population <= 1 || c.Population%2 != 0 {
		return fmt.Errorf("population size must be an even number > 1 (got %d)", c.Population)
	}
	if c.Generations < 0 {
		return fmt.Errorf("number of generations must be >= 0 (got %d)", c.Generations)
	}
	if c.MutationRate < 0 || c.MutationRate > 100 {
		return fmt.Errorf("mutation rate must be within [0, 100] (got %v)", c.MutationRate)
	}
	return nil
}

func DefaultConfig() Config {
	return Config{
		Population:   100,
		Generations:  1000,
		MutationRate: 5,
	}
}
