package model

import "fmt"

// LoadError reports that model weights or tokenizer data could not be
// resolved or loaded. It is fatal to startup and never retried.
type LoadError struct {
	ModelFile string
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %q: %v", e.ModelFile, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ValidationError reports a malformed request. These are rejected before any
// tokenization or model work happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// ShapeError reports that the runtime produced a different number of outputs
// than inputs. This is an internal invariant violation, never a soft
// condition to paper over with default scores.
type ShapeError struct {
	Op   string
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected %d outputs, got %d", e.Op, e.Want, e.Got)
}
