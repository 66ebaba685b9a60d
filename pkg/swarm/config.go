package swarm

import (
	"errors"
	"fmt"
)

type Config struct {
	Samples      int     `mapstructure:"samples"`       // Feasible schedules to collect
	InitAttempts int     `mapstructure:"init_attempts"` // Random draws allowed per requested sample
	Iterations   int     `mapstructure:"iterations"`    // Swarm moves per round
	Rounds       int     `mapstructure:"rounds"`
	C1           float64 `mapstructure:"c1"`
	C2           float64 `mapstructure:"c2"`
	Inertia      float64 `mapstructure:"inertia"`
	VMax         int     `mapstructure:"vmax"`
	RandSpan     int     `mapstructure:"rand_span"` // r1 and r2 are drawn from [0, RandSpan)
}

func (c Config) Validate() error {
	var errs []error
	if c.Samples <= 0 {
		errs = append(errs, fmt.Errorf("samples must be > 0 (got %d)", c.Samples))
	}
	if c.InitAttempts <= 0 {
		errs = append(errs, fmt.Errorf("init attempts must be > 0 (got %d)", c.InitAttempts))
	}
	if c.Iterations < 0 {
		errs = append(errs, fmt.Errorf("iterations must be >= 0 (got %d)", c.Iterations))
	}
	if c.Rounds <= 0 {
		errs = append(errs, fmt.Errorf("rounds must be > 0 (got %d)", c.Rounds))
	}
	if c.C1 < 0 || c.C2 < 0 || c.Inertia < 0 {
		errs = append(errs, fmt.Errorf("c1, c2 and inertia must be >= 0 (got %v, %v, %v)", c.C1, c.C2, c.Inertia))
	}
	if c.VMax <= 0 {
		errs = append(errs, fmt.Errorf("vmax must be > 0 (got %d)", c.VMax))
	}
	if c.RandSpan <= 0 {
		errs = append(errs, fmt.Errorf("rand span must be > 0 (got %d)", c.RandSpan))
	}
	return errors.Join(errs...)
}

func DefaultConfig() Config {
	return Config{
		Samples:      20,
		InitAttempts: 50,
		Iterations:   100,
		Rounds:       3,
		C1:           1,
		C2:           1,
		Inertia:      0.5,
		VMax:         2,
		RandSpan:     2,
	}
}
