package swarm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/limaJavier/ucsp/pkg/model"
	"github.com/limaJavier/ucsp/pkg/opt"
	"go.uber.org/zap"
)

var ErrNoFeasibleSample = errors.New("no random schedule could be repaired into a feasible one")

// Solver improves a pool of feasible random schedules with alternating swarm moves over start slots and a
// coordinate-wise local search
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

// particle is one sample of the pool
type particle struct {
	current   *model.Problem
	score     float64
	velocity  []int
	best      model.Schedule
	bestScore float64
}

// swarm holds the pool and the best schedule seen by any particle
type swarm struct {
	particles   []*particle
	best        model.Schedule
	bestScore   float64
	evaluations int
}

func (sw *swarm) observe(p *particle) {
	p.score = p.current.Objective()
	sw.evaluations++
	if p.score < p.bestScore {
		p.bestScore = p.score
		p.best = p.current.Schedule.Clone()
	}
	if p.score < sw.bestScore {
		sw.bestScore = p.score
		sw.best = p.current.Schedule.Clone()
	}
}

func (s *Solver) Solve(ctx context.Context, problem *model.Problem) (opt.Result, error) {
	start := time.Now()
	problem = problem.WithRng(s.Rng)

	s.Logger.Info("swarm search started",
		zap.Int("courses", len(problem.Courses)),
		zap.Int("samples", s.Cfg.Samples),
		zap.Int("iterations", s.Cfg.Iterations),
		zap.Int("rounds", s.Cfg.Rounds),
	)

	sw, err := s.sample(ctx, problem)
	if err != nil {
		return opt.Result{}, err
	}

	iterations := 0
	stopped := "rounds"
	for round := 0; round < s.Cfg.Rounds && err == nil; round++ {
		var moves int
		moves, err = s.swarmPhase(ctx, sw)
		iterations += moves
		if err == nil {
			err = s.localPhase(ctx, sw)
		}

		s.Logger.Debug("round",
			zap.Int("round", round),
			zap.Float64("best", sw.bestScore),
		)
	}
	if err != nil {
		stopped = "context"
	}

	result := opt.NewResult(problem, sw.best, sw.evaluations, iterations, map[string]any{
		"stopped": stopped,
		"samples": len(sw.particles),
	})
	result.Duration = time.Since(start)

	s.Logger.Info("swarm search finished",
		zap.String("run_id", result.RunID),
		zap.Int("samples", len(sw.particles)),
		zap.Float64("objective", result.Objective),
		zap.Bool("feasible", result.Evaluation.Feasible),
		zap.Duration("duration", result.Duration),
	)
	return result, err
}

// sample draws random schedules and keeps those that repair into feasible ones, until Cfg.Samples are found or
// the draw budget is spent
func (s *Solver) sample(ctx context.Context, problem *model.Problem) (*swarm, error) {
	sw := &swarm{bestScore: math.Inf(1)}
	for attempt := 0; len(sw.particles) < s.Cfg.Samples && attempt < s.Cfg.Samples*s.Cfg.InitAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate := problem.Randomized()
		if !candidate.CheckFeasible() {
			continue
		}

		p := &particle{
			current:   candidate,
			velocity:  ones(len(problem.Courses)),
			bestScore: math.Inf(1),
		}
		sw.observe(p)
		sw.particles = append(sw.particles, p)
	}

	if len(sw.particles) == 0 {
		return nil, ErrNoFeasibleSample
	}
	return sw, nil
}

// swarmPhase moves every particle Cfg.Iterations times and returns the number of completed iterations
func (s *Solver) swarmPhase(ctx context.Context, sw *swarm) (int, error) {
	for iteration := 0; iteration < s.Cfg.Iterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return iteration, err
		}
		for _, p := range sw.particles {
			s.move(p, sw.best)
			sw.observe(p)
		}
	}
	return s.Cfg.Iterations, nil
}

// move advances the particle's start slots by its current velocity, then pulls the velocity towards its own and
// the global best start slots
func (s *Solver) move(p *particle, globalBest model.Schedule) {
	// Error only on length mismatch, which cannot happen here
	_ = p.current.ApplyStartSlotDeltas(p.velocity)
	s.updateVelocity(p, globalBest)
}

// updateVelocity truncates toward zero so the inertia term decays a unit velocity to rest
func (s *Solver) updateVelocity(p *particle, globalBest model.Schedule) {
	for i, placement := range p.current.Schedule {
		r1, r2 := s.Rng.Intn(s.Cfg.RandSpan), s.Rng.Intn(s.Cfg.RandSpan)
		velocity := s.Cfg.Inertia*float64(p.velocity[i]) +
			s.Cfg.C1*float64(r1)*float64(p.best[i].Start-placement.Start) +
			s.Cfg.C2*float64(r2)*float64(globalBest[i].Start-placement.Start)
		p.velocity[i] = clamp(int(math.Trunc(velocity)), s.Cfg.VMax)
	}
}

// localPhase runs one pass of coordinate descent over every particle
func (s *Solver) localPhase(ctx context.Context, sw *swarm) error {
	for _, p := range sw.particles {
		if err := ctx.Err(); err != nil {
			return err
		}
		sw.evaluations += improve(p.current)
		sw.observe(p)
	}
	return nil
}

// improve tries every course one slot later and one slot earlier on copies and commits the strictly better move.
// On a tie the later slot wins. It returns the number of evaluations spent.
func improve(problem *model.Problem) int {
	evaluations := 0
	for i := range problem.Schedule {
		base := problem.Objective()
		evaluations++

		bestDelta, bestScore := 0, base
		for _, delta := range []int{1, -1} {
			probe := problem.Clone()
			if !probe.ShiftStart(i, delta) {
				continue
			}
			score := probe.Objective()
			evaluations++
			if score < bestScore {
				bestDelta, bestScore = delta, score
			}
		}

		if bestDelta != 0 {
			problem.ShiftStart(i, bestDelta)
		}
	}
	return evaluations
}

func ones(size int) []int {
	values := make([]int, size)
	for i := range values {
		values[i] = 1
	}
	return values
}

func clamp(value, limit int) int {
	return max(-limit, min(limit, value))
}
