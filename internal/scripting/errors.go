package scripting

import (
	"errors"
	"fmt"
)

var (
	// ErrFunctionNotFound is returned when a called global is nil.
	ErrFunctionNotFound = errors.New("scripting: function not found")
	// ErrNotFunction is returned when a called global is not a function.
	ErrNotFunction = errors.New("scripting: global is not a function")
	// ErrReturnType is returned when a function returns the wrong type.
	ErrReturnType = errors.New("scripting: unexpected return type")
	// ErrClosed is returned by a Runtime after Close.
	ErrClosed = errors.New("scripting: runtime closed")
)

// LoadPhase tells where loading a script failed.
type LoadPhase string

const (
	PhaseRead    LoadPhase = "read"
	PhaseSyntax  LoadPhase = "syntax"
	PhaseRuntime LoadPhase = "runtime"
)

// LoadError reports a script that could not be loaded. The interpreter's
// globals are unchanged when it is returned.
type LoadError struct {
	Name  string
	Phase LoadPhase
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("scripting: load %s (%s): %v", e.Name, e.Phase, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// CallError reports a script function that raised an error.
type CallError struct {
	Func string
	Err  error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("scripting: call %s: %v", e.Func, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}
