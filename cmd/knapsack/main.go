package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spboyer/knapsack/internal/models"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Every problem was solved
	ExitNoSolution = 1 // One or more problems had no feasible solution
	ExitError      = 2 // Invalid input, configuration or solver error
)

// NoSolutionError indicates that the solver ran, but one or more problems
// came back without a feasible sample.
type NoSolutionError struct {
	Message string
}

func (e *NoSolutionError) Error() string {
	return e.Message
}

func (e *NoSolutionError) Unwrap() error {
	return models.ErrNoFeasibleSolution
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, models.ErrNoFeasibleSolution):
		return ExitNoSolution
	default:
		return ExitError
	}
}
