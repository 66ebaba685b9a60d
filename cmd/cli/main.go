package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/limaJavier/ucsp/internal/config"
	"github.com/limaJavier/ucsp/internal/logger"
	"github.com/limaJavier/ucsp/pkg/ga"
	"github.com/limaJavier/ucsp/pkg/model"
	"github.com/limaJavier/ucsp/pkg/opt"
	"github.com/limaJavier/ucsp/pkg/sat"
	"github.com/limaJavier/ucsp/pkg/swarm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Same code SAT solvers use for UNSAT
const exitUnsatisfiable = 20

type options struct {
	file       string
	out        string
	configPath string
	rooms      string
	seed       int64
	timeout    time.Duration
}

// session is everything a subcommand needs once flags and configuration are resolved
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	problem *model.Problem
	seed    int64
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, model.ErrUnsatisfiable) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitUnsatisfiable)
		}
		log.Fatalf("%v", err)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "ucsp",
		Short:         "Build weekly timetables for university course sections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.file, "file", "", "Path to the course file (.csv or .json)")
	flags.StringVar(&opts.out, "out", "", "Path to the schedule CSV to write; if empty, it'll be written into the Standard Output")
	flags.StringVar(&opts.configPath, "config", "", "Path to a configuration file; by default ./ucsp.{yaml,json,toml} is used when present")
	flags.StringVar(&opts.rooms, "rooms", "", "Path to a room CSV; when given, every course is assigned a room")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed; 0 uses the configured seed or the clock")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Stop the search after this long and keep the best schedule found")
	_ = root.MarkPersistentFlagRequired("file")

	root.AddCommand(
		newGeneticCommand(opts),
		newSwarmCommand(opts),
		newSatCommand(opts),
		newScoreCommand(opts),
	)
	return root
}

func newGeneticCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "genetic",
		Short: "Search with the genetic algorithm",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := setup(opts)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			solver, err := ga.New(s.cfg.Genetic, rand.New(rand.NewSource(s.seed)), s.logger)
			if err != nil {
				return err
			}
			return solveAndReport(cmd, opts, s, solver)
		},
	}
}

func newSwarmCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "swarm",
		Short: "Search with the swarm and local improvement rounds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := setup(opts)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			solver, err := swarm.New(s.cfg.Swarm, rand.New(rand.NewSource(s.seed)), s.logger)
			if err != nil {
				return err
			}
			return solveAndReport(cmd, opts, s, solver)
		},
	}
}

func newSatCommand(opts *options) *cobra.Command {
	var solverName, kissatPath string
	cmd := &cobra.Command{
		Use:   "sat",
		Short: "Find a schedule without hard conflicts with a SAT solver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := setup(opts)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			if solverName == "" {
				solverName = s.cfg.Solver.Name
			}
			if kissatPath == "" {
				kissatPath = s.cfg.Solver.KissatPath
			}
			solver, err := sat.NewSolver(strings.ToLower(solverName), kissatPath)
			if err != nil {
				return err
			}
			return solveAndReport(cmd, opts, s, opt.NewConstraintSolver(solver, s.logger))
		},
	}
	cmd.Flags().StringVar(&solverName, "solver", "", `SAT-Solver to use. Allowed values are: "gini" and "kissat"; defaults to the configured solver`)
	cmd.Flags().StringVar(&kissatPath, "kissat", "", "Path to the kissat executable")
	return cmd
}

func newScoreCommand(opts *options) *cobra.Command {
	var schedulePath string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Evaluate an existing schedule CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			courses, err := model.LoadCourses(opts.file)
			if err != nil {
				return err
			}
			schedule, err := loadSchedule(schedulePath, courses)
			if err != nil {
				return err
			}
			s, err := setupWith(opts, courses, schedule)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			return report(cmd, opts, s, s.problem.Schedule, s.problem.Evaluate(), s.problem.Objective())
		},
	}
	cmd.Flags().StringVar(&schedulePath, "schedule", "", "Path to the schedule CSV to evaluate")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}

func setup(opts *options) (*session, error) {
	courses, err := model.LoadCourses(opts.file)
	if err != nil {
		return nil, err
	}
	return setupWith(opts, courses, nil)
}

func setupWith(opts *options, courses []model.Course, schedule model.Schedule) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	zapLogger, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot build logger: %w", err)
	}

	seed := resolveSeed(opts.seed, cfg.Seed, time.Now)
	problem, err := model.NewProblem(courses, schedule, cfg.Weights, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	problem.RepairAttempts = cfg.Repair.Attempts

	zapLogger.Debug("session ready",
		zap.String("file", opts.file),
		zap.Int("courses", len(courses)),
		zap.Int64("seed", seed),
	)
	return &session{cfg: cfg, logger: zapLogger, problem: problem, seed: seed}, nil
}

// resolveSeed prefers the flag, then the configuration, then the clock
func resolveSeed(flag, configured int64, now func() time.Time) int64 {
	if flag != 0 {
		return flag
	}
	if configured != 0 {
		return configured
	}
	return now().UnixNano()
}

func loadSchedule(file string, courses []model.Course) (model.Schedule, error) {
	handle, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cannot open schedule file: %w", err)
	}
	defer handle.Close()

	rows, err := model.ReadScheduleCSV(handle)
	if err != nil {
		return nil, err
	}
	return model.ScheduleFromRows(courses, rows)
}

func solveAndReport(cmd *cobra.Command, opts *options, s *session, optimizer opt.Optimizer) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	result, err := optimizer.Solve(ctx, s.problem)
	if err != nil {
		// An interrupted search still yields its best schedule
		if result.Schedule == nil || !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return err
		}
		s.logger.Warn("search stopped early", zap.Error(err))
	}
	return report(cmd, opts, s, result.Schedule, result.Evaluation, result.Objective)
}

// report writes the schedule to --out or stdout and a summary to stdout, or to stderr when stdout carries the
// schedule
func report(cmd *cobra.Command, opts *options, s *session, schedule model.Schedule, evaluation model.Evaluation, objective float64) error {
	summary := cmd.OutOrStdout()
	if opts.out == "" {
		if err := model.WriteScheduleCSV(cmd.OutOrStdout(), s.problem.Courses, schedule); err != nil {
			return fmt.Errorf("an error occurred while writing the schedule: %w", err)
		}
		summary = cmd.ErrOrStderr()
	} else if err := model.SaveScheduleCSV(opts.out, s.problem.Courses, schedule); err != nil {
		return fmt.Errorf("an error occurred while writing to the output file: %w", err)
	}

	fmt.Fprintf(summary, "Seed: %v\n", s.seed)
	fmt.Fprintf(summary, "Evaluation: %v\n", evaluation)
	fmt.Fprintf(summary, "Objective: %v\n", objective)

	if opts.rooms == "" {
		return nil
	}
	return reportRooms(summary, opts.rooms, s.problem.Courses, schedule)
}

func reportRooms(w io.Writer, file string, courses []model.Course, schedule model.Schedule) error {
	rooms, err := model.LoadRoomsCSV(file)
	if err != nil {
		return err
	}
	assignment, err := model.AssignRooms(courses, schedule, rooms)
	if err != nil {
		return err
	}
	for i, room := range assignment {
		fmt.Fprintf(w, "%v: %v\n", courses[i].Name, rooms[room].Name)
	}
	return nil
}
