package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/limaJavier/ucsp/internal/bench"
	"github.com/limaJavier/ucsp/internal/config"
	"github.com/limaJavier/ucsp/internal/logger"
	"github.com/limaJavier/ucsp/pkg/ga"
	"github.com/limaJavier/ucsp/pkg/model"
	"github.com/limaJavier/ucsp/pkg/opt"
	"github.com/limaJavier/ucsp/pkg/sat"
	"github.com/limaJavier/ucsp/pkg/swarm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validAlgorithms = []string{"genetic", "swarm", "sat"}

type options struct {
	algorithms string
	configPath string
	out        string
	runs       int
	seed       int64
	workers    int
	timeout    time.Duration
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "benchmark [course files or directories...]",
		Short:        "Compare the schedule searches over a set of course files",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.algorithms, "algos", strings.Join(validAlgorithms, ","), "Comma separated algorithms to benchmark")
	flags.StringVar(&opts.configPath, "config", "", "Path to a configuration file")
	flags.StringVar(&opts.out, "out", "benchmark_results.csv", "Path to the results CSV")
	flags.IntVar(&opts.runs, "runs", 10, "Independent runs per algorithm and course file")
	flags.Int64Var(&opts.seed, "seed", 1, "Seed of the first run; run i uses seed+i")
	flags.IntVar(&opts.workers, "workers", 0, "Concurrent runs; 0 uses every CPU")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Time limit per run")
	return cmd
}

func run(ctx context.Context, opts *options, paths []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	zapLogger, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("cannot build logger: %w", err)
	}
	defer zapLogger.Sync()

	algorithms, err := parseAlgorithms(opts.algorithms, cfg, zapLogger)
	if err != nil {
		return err
	}
	files, err := collectInputs(paths)
	if err != nil {
		return err
	}

	runner := bench.Runner{
		Runs:          opts.runs,
		BaseSeed:      opts.seed,
		Workers:       opts.workers,
		PerRunTimeout: opts.timeout,
		Logger:        zapLogger,
	}

	records := make([]fileRecord, 0, len(files)*len(algorithms))
	for _, file := range files {
		courses, err := model.LoadCourses(file)
		if err != nil {
			return fmt.Errorf("cannot parse input file %v: %w", file, err)
		}
		problem, err := model.NewProblem(courses, nil, cfg.Weights, rand.New(rand.NewSource(opts.seed)))
		if err != nil {
			return fmt.Errorf("%v: %w", file, err)
		}
		problem.RepairAttempts = cfg.Repair.Attempts

		for _, algorithm := range algorithms {
			fmt.Printf("Benchmarking \"%v\" with \"%v\" over %v runs\n", file, algorithm.Name, opts.runs)

			record, err := runner.Run(ctx, problem, algorithm)
			if err != nil {
				return fmt.Errorf("%v with %v: %w", file, algorithm.Name, err)
			}
			records = append(records, fileRecord{File: file, Record: record})
		}
	}

	if err := bench.WriteCSV(opts.out, lo.Map(records, func(r fileRecord, _ int) bench.Record { return r.Record })); err != nil {
		return fmt.Errorf("cannot write results: %w", err)
	}
	for _, r := range records {
		fmt.Printf("%v %v: feasible %v/%v, objective best %.1f mean %.2f, time mean %.1fms\n",
			r.File, r.Algo, r.Feasible, r.Runs, r.ObjectiveBest, r.ObjectiveMean, r.TimeMeanMs)
	}
	return nil
}

type fileRecord struct {
	File string
	bench.Record
}

// parseAlgorithms turns a comma separated list into factories building one optimizer per run seed
func parseAlgorithms(list string, cfg *config.Config, zapLogger *zap.Logger) ([]bench.Algorithm, error) {
	names := lo.Uniq(lo.Filter(
		lo.Map(strings.Split(list, ","), func(name string, _ int) string { return strings.ToLower(strings.TrimSpace(name)) }),
		func(name string, _ int) bool { return name != "" },
	))
	if len(names) == 0 {
		return nil, fmt.Errorf("no algorithm selected")
	}

	algorithms := make([]bench.Algorithm, 0, len(names))
	for _, name := range names {
		if !slices.Contains(validAlgorithms, name) {
			return nil, fmt.Errorf("%v is not a valid algorithm", name)
		}

		var factory func(seed int64) (opt.Optimizer, error)
		switch name {
		case "genetic":
			factory = func(seed int64) (opt.Optimizer, error) {
				return ga.New(cfg.Genetic, rand.New(rand.NewSource(seed)), zapLogger)
			}
		case "swarm":
			factory = func(seed int64) (opt.Optimizer, error) {
				return swarm.New(cfg.Swarm, rand.New(rand.NewSource(seed)), zapLogger)
			}
		case "sat":
			factory = func(int64) (opt.Optimizer, error) {
				solver, err := sat.NewSolver(cfg.Solver.Name, cfg.Solver.KissatPath)
				if err != nil {
					return nil, err
				}
				return opt.NewConstraintSolver(solver, zapLogger), nil
			}
		}
		algorithms = append(algorithms, bench.Algorithm{Name: name, Factory: factory})
	}
	return algorithms, nil
}

// collectInputs expands directories into the course files they hold, sorted by name
func collectInputs(paths []string) ([]string, error) {
	files := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory: %w", err)
		}
		for _, entry := range entries {
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if !entry.IsDir() && (ext == ".csv" || ext == ".json") {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no course files found")
	}
	return files, nil
}
