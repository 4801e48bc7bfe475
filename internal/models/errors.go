package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the encode/solve/decode pipeline. Match them with
// errors.Is; every error returned by this module wraps exactly one of them.
var (
	// ErrInvalidInput reports malformed problem data, raised before any solver call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamSolver reports that the solver failed to produce a result.
	ErrUpstreamSolver = errors.New("upstream solver error")

	// ErrNoFeasibleSolution reports that the solver returned no feasible candidate.
	// This is an expected outcome for an over-constrained problem, not a defect.
	ErrNoFeasibleSolution = errors.New("no feasible solution")

	// ErrDecode reports a solver result that does not match the encoded model.
	ErrDecode = errors.New("decode error")
)

// UpstreamError wraps a failure returned by a solver. It matches both
// ErrUpstreamSolver and the underlying cause, so callers can still test for
// context.DeadlineExceeded or a transport error.
type UpstreamError struct {
	Solver string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s solver: %v", ErrUpstreamSolver, e.Solver, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstreamSolver, e.Err}
}

// NewUpstreamError wraps err as an [UpstreamError] for the named solver.
// A nil err returns nil and an error that already is an UpstreamError is
// returned unchanged.
func NewUpstreamError(solver string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Solver: solver, Err: err}
}

// invalidInputf formats an ErrInvalidInput with a message.
func invalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// decodeErrorf formats an ErrDecode with a message.
func decodeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}
