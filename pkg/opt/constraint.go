package opt

import (
	"context"
	"time"

	"github.com/limaJavier/ucsp/pkg/model"
	"github.com/limaJavier/ucsp/pkg/sat"
	"go.uber.org/zap"
)

// ConstraintSolver encodes the hard constraints as a SAT instance and returns the first assignment the solver
// finds. Soft criteria are scored but not optimized.
type ConstraintSolver struct {
	Solver sat.SATSolver
	Logger *zap.Logger
}

func NewConstraintSolver(solver sat.SATSolver, logger *zap.Logger) *ConstraintSolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConstraintSolver{Solver: solver, Logger: logger}
}

func (s *ConstraintSolver) Solve(ctx context.Context, problem *model.Problem) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	constraints, err := model.BuildConstraintModel(problem.Courses, problem.Weights)
	if err != nil {
		return Result{}, err
	}
	s.Logger.Info("constraint model built",
		zap.Int("courses", len(problem.Courses)),
		zap.Uint64("variables", constraints.SAT.Variables),
		zap.Int("clauses", len(constraints.SAT.Clauses)),
	)

	schedule, _, err := model.SolveConstraintModel(constraints, s.Solver)
	if err != nil {
		return Result{}, err
	}

	result := NewResult(problem, schedule, 1, 1, map[string]any{
		"variables": constraints.SAT.Variables,
		"clauses":   len(constraints.SAT.Clauses),
	})
	result.Duration = time.Since(start)

	s.Logger.Info("constraint search finished",
		zap.String("run_id", result.RunID),
		zap.Float64("objective", result.Objective),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}
