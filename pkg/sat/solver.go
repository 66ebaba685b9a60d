package sat

import "fmt"

type SATSolver interface {
	Solve(SAT) (SATSolution, error) // Returns a solution of the SAT instance if satisfiable, else returns nil (these are valid outputs where error shall be nil)
}

// NewSolver maps a solver name to an implementation. External solvers need the path of their executable.
func NewSolver(name, executablePath string) (SATSolver, error) {
	switch name {
	case "", "gini":
		return NewGiniSolver(), nil
	case "kissat":
		if executablePath == "" {
			return nil, fmt.Errorf("kissat requires an executable path")
		}
		return NewKissatSolver(executablePath), nil
	}
	return nil, fmt.Errorf("unknown solver %q", name)
}
