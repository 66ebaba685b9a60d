package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/alitto/pond"
	"github.com/gocarina/gocsv"
	"github.com/limaJavier/ucsp/pkg/model"
	"github.com/limaJavier/ucsp/pkg/opt"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) (opt.Optimizer, error)
}

type Record struct {
	Algo     string `csv:"algo"`
	Courses  int    `csv:"courses"`
	Runs     int    `csv:"runs"`
	Feasible int    `csv:"feasible"`

	TimeBestMs float64 `csv:"time_best_ms"`
	TimeMeanMs float64 `csv:"time_mean_ms"`
	TimeStdMs  float64 `csv:"time_std_ms"`

	ObjectiveBest float64 `csv:"objective_best"`
	ObjectiveMean float64 `csv:"objective_mean"`
	ObjectiveStd  float64 `csv:"objective_std"`
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	Workers       int           // 0 = number of CPUs
	PerRunTimeout time.Duration // 0 = no timeout
	Logger        *zap.Logger
}

type runOutcome struct {
	result opt.Result
	timeMs float64
}

// Run solves the problem Runs times with seeds BaseSeed, BaseSeed+1, ... Every run owns its optimizer, its
// random source and its copy of the problem, so runs execute concurrently on a worker pool.
func (r Runner) Run(ctx context.Context, problem *model.Problem, algo Algorithm) (Record, error) {
	if r.Runs <= 0 {
		return Record{}, fmt.Errorf("runs must be > 0 (got %d)", r.Runs)
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]runOutcome, r.Runs)
	var mutex sync.Mutex
	var errs []error

	pool := pond.New(workers, r.Runs)
	for i := range r.Runs {
		pool.Submit(func() {
			outcome, err := r.runOnce(ctx, problem, algo, r.BaseSeed+int64(i))
			if err != nil {
				mutex.Lock()
				errs = append(errs, fmt.Errorf("run %d: %w", i, err))
				mutex.Unlock()
				return
			}
			outcomes[i] = outcome
		})
	}
	pool.StopAndWait()

	if err := errors.Join(errs...); err != nil {
		return Record{}, err
	}

	times := CalcStats(lo.Map(outcomes, func(o runOutcome, _ int) float64 { return o.timeMs }))
	objectives := CalcStats(lo.Map(outcomes, func(o runOutcome, _ int) float64 { return o.result.Objective }))

	record := Record{
		Algo:     algo.Name,
		Courses:  len(problem.Courses),
		Runs:     r.Runs,
		Feasible: lo.CountBy(outcomes, func(o runOutcome) bool { return o.result.Evaluation.Feasible }),

		TimeBestMs: times.Best,
		TimeMeanMs: times.Mean,
		TimeStdMs:  times.Std,

		ObjectiveBest: objectives.Best,
		ObjectiveMean: objectives.Mean,
		ObjectiveStd:  objectives.Std,
	}
	logger.Info("benchmark finished",
		zap.String("algo", record.Algo),
		zap.Int("runs", record.Runs),
		zap.Int("feasible", record.Feasible),
		zap.Float64("objective_best", record.ObjectiveBest),
	)
	return record, nil
}

func (r Runner) runOnce(ctx context.Context, problem *model.Problem, algo Algorithm, seed int64) (runOutcome, error) {
	optimizer, err := algo.Factory(seed)
	if err != nil {
		return runOutcome{}, err
	}

	runCtx := ctx
	cancel := func() {}
	if r.PerRunTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
	}
	defer cancel()

	start := time.Now()
	result, err := optimizer.Solve(runCtx, problem.WithRng(rand.New(rand.NewSource(seed))))
	duration := time.Since(start)

	// A timed out run still reports the best schedule it reached
	if err != nil && !(errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && result.Schedule != nil) {
		return runOutcome{}, err
	}
	if len(result.Schedule) != len(problem.Courses) {
		return runOutcome{}, fmt.Errorf("invalid schedule length %d (want %d)", len(result.Schedule), len(problem.Courses))
	}
	return runOutcome{result: result, timeMs: float64(duration.Microseconds()) / 1000.0}, nil
}

func WriteCSV(path string, records []Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(&records, f)
}
