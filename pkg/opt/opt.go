package opt

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/ucsp/pkg/model"
)

// Optimizer searches for a low-penalty schedule of the problem's courses. The problem's own schedule is not modified.
type Optimizer interface {
	Solve(ctx context.Context, problem *model.Problem) (Result, error)
}

type Result struct {
	RunID       string
	Schedule    model.Schedule
	Evaluation  model.Evaluation
	Objective   float64
	Evaluations int
	Iterations  int
	Duration    time.Duration
	Meta        map[string]any
}

// NewResult scores the schedule against the problem and stamps a fresh run id
func NewResult(problem *model.Problem, schedule model.Schedule, evaluations, iterations int, meta map[string]any) Result {
	scored := problem.With(schedule)
	return Result{
		RunID:       uuid.NewString(),
		Schedule:    scored.Schedule,
		Evaluation:  scored.Evaluate(),
		Objective:   scored.Objective(),
		Evaluations: evaluations,
		Iterations:  iterations,
		Meta:        meta,
	}
}
