// Package simerrors defines the typed error taxonomy of spec.md §7.
//
// Each kind is a struct implementing error so callers can type-switch or
// errors.As instead of parsing strings.
package simerrors

import "fmt"

// OutOfRange reports a fluid-property query outside the validated band.
// Strategy per spec.md §4.1/§7: callers clamp at the boundary and emit a
// Warning event; OutOfRange does not fail a step on its own.
type OutOfRange struct {
	Var    string
	Value  float64
	LoBound float64
	HiBound float64
}

func (e *OutOfRange) Error() string {
	return fmt.Sprintf("%s=%.4g out of validated range [%.4g, %.4g]", e.Var, e.Value, e.LoBound, e.HiBound)
}

// SolverNonConvergence reports CoupledThermo failing to close within the
// iteration cap. Fails the step (Engine.Step returns it inside a
// StepFault); changes that earlier stages of that step already made to
// engine state are not rolled back.
type SolverNonConvergence struct {
	Iterations int
	Residual   float64
}

func (e *SolverNonConvergence) Error() string {
	return fmt.Sprintf("solver did not converge after %d iterations (residual=%.4g)", e.Iterations, e.Residual)
}

// ConservationViolation reports a post-solver mass/energy check exceeding
// a hard threshold. Fails the step.
type ConservationViolation struct {
	Bucket  string
	DeltaLb float64
}

func (e *ConservationViolation) Error() string {
	return fmt.Sprintf("conservation violated in bucket %q: delta=%.4g lb", e.Bucket, e.DeltaLb)
}

// InvariantViolation reports a geometric or sign invariant break. Fails the step.
type InvariantViolation struct {
	Which string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Which)
}

// InputRejected reports an operator input that violated a permissive.
// Recoverable: surfaced as an event, step continues.
type InputRejected struct {
	Reason string
}

func (e *InputRejected) Error() string {
	return fmt.Sprintf("input rejected: %s", e.Reason)
}

// RegimeHandoffFailure reports an RTCC reconciliation failure. Fails the step.
type RegimeHandoffFailure struct {
	DeltaLb float64
}

func (e *RegimeHandoffFailure) Error() string {
	return fmt.Sprintf("regime handoff reconciliation failed: delta=%.4g lb", e.DeltaLb)
}

// StepFault wraps any non-recoverable error that failed a coordinator step,
// carrying the conserved-bucket deltas observed at the point of failure.
type StepFault struct {
	Kind         error
	BucketDeltas map[string]float64
}

func (e *StepFault) Error() string {
	return fmt.Sprintf("step fault: %v (buckets=%v)", e.Kind, e.BucketDeltas)
}

func (e *StepFault) Unwrap() error { return e.Kind }
