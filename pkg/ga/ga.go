package ga

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/limaJavier/ucsp/pkg/model"
	"github.com/limaJavier/ucsp/pkg/opt"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Solver runs a generational search: truncation selection, uniform crossover and gene redraw mutation
type Solver struct {
	Cfg    Config
	Rng    *rand.Rand
	Logger *zap.Logger
}

func New(cfg Config, rng *rand.Rand, logger *zap.Logger) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("rng is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{Cfg: cfg, Rng: rng, Logger: logger}, nil
}

// Run reports how an evolution ended
type Run struct {
	Population  Population // Ranked, best first
	Generations int
	Evaluations int
	Stopped     string
}

func (s *Solver) Solve(ctx context.Context, problem *model.Problem) (opt.Result, error) {
	start := time.Now()

	run, err := s.Evolve(ctx, problem, s.InitialPopulation(problem))
	if run.Population == nil {
		return opt.Result{}, err
	}

	result := opt.NewResult(problem, run.Population.Best().Schedule, run.Evaluations, run.Generations, map[string]any{
		"stopped":    run.Stopped,
		"population": s.Cfg.Population,
	})
	result.Duration = time.Since(start)

	s.Logger.Info("genetic search finished",
		zap.String("run_id", result.RunID),
		zap.Int("generations", run.Generations),
		zap.Float64("objective", result.Objective),
		zap.Bool("feasible", result.Evaluation.Feasible),
		zap.Duration("duration", result.Duration),
	)
	return result, err
}

// InitialPopulation draws Cfg.Population independent random schedules
func (s *Solver) InitialPopulation(problem *model.Problem) Population {
	return lo.Times(s.Cfg.Population, func(_ int) Individual {
		return Individual{Schedule: lo.Map(problem.Courses, func(course model.Course, _ int) model.Placement {
			return model.RandomPlacement(course, s.Rng)
		})}
	})
}

// Evolve runs up to Cfg.Generations generations from a copy of initial, stopping early once the best parent
// scores 0. The returned population is ranked. On cancellation the last ranked population is returned with the
// context error.
func (s *Solver) Evolve(ctx context.Context, problem *model.Problem, initial Population) (Run, error) {
	if len(initial) == 0 {
		return Run{}, fmt.Errorf("empty initial population")
	}

	s.Logger.Info("genetic search started",
		zap.Int("courses", len(problem.Courses)),
		zap.Int("population", len(initial)),
		zap.Int("generations", s.Cfg.Generations),
		zap.Float64("mutation_rate", s.Cfg.MutationRate),
	)

	population := initial.Clone()
	evaluations := evaluate(problem, population)
	rank(population)

	for generation := 0; generation < s.Cfg.Generations; generation++ {
		if err := ctx.Err(); err != nil {
			return Run{Population: population, Generations: generation, Evaluations: evaluations, Stopped: "context"}, err
		}

		parents := selectParents(population)
		if parents.Best().Penalty == 0 {
			return Run{Population: population, Generations: generation, Evaluations: evaluations, Stopped: "target"}, nil
		}

		children := breed(parents, len(population), s.Rng)
		mutate(children, problem.Courses, s.Cfg.MutationRate, s.Rng)
		evaluations += evaluate(problem, children)
		rank(children)
		population = children

		s.Logger.Debug("generation",
			zap.Int("generation", generation),
			zap.Float64("best", population.Best().Penalty),
		)
	}

	return Run{Population: population, Generations: s.Cfg.Generations, Evaluations: evaluations, Stopped: "generations"}, nil
}

// evaluate scores every individual with the problem's objective and returns the number of evaluations
func evaluate(problem *model.Problem, population Population) int {
	for i := range population {
		population[i].Penalty = problem.With(population[i].Schedule).Objective()
	}
	return len(population)
}
