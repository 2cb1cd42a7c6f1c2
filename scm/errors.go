/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package scm

import "errors"
import "fmt"
import "strings"

var (
	ErrDuplicateBinding = errors.New("duplicate binding")
	ErrUnboundVariable  = errors.New("unbound variable")
	ErrImmutableBinding = errors.New("immutable binding")
	ErrUnboundSymbol    = errors.New("unbound symbol")
	ErrStackOverflow    = errors.New("maximum stack depth exceeded")
	ErrArgumentType     = errors.New("argument type mismatch")
	ErrReturnType       = errors.New("return type mismatch")
	ErrArity            = errors.New("arity mismatch")
	ErrEvaluation       = errors.New("evaluation error")
	ErrExit             = errors.New("exit requested")
)

type BindingErrorKind int

const (
	DuplicateBinding BindingErrorKind = iota
	UnboundVariable
	ImmutableBinding
	UnboundSymbol
)

// BindingError is raised by Scope operations and by symbol resolution.
type BindingError struct {
	Kind BindingErrorKind
	Name string
}

func (e *BindingError) Error() string {
	switch e.Kind {
	case DuplicateBinding:
		return fmt.Sprintf("%s is already defined in this scope", e.Name)
	case UnboundVariable:
		return fmt.Sprintf("%s has not been defined", e.Name)
	case ImmutableBinding:
		return fmt.Sprintf("%s cannot be changed: environment is immutable", e.Name)
	default:
		return fmt.Sprintf("unable to resolve symbol %s", e.Name)
	}
}

func (e *BindingError) Is(target error) bool {
	switch e.Kind {
	case DuplicateBinding:
		return target == ErrDuplicateBinding
	case UnboundVariable:
		return target == ErrUnboundVariable
	case ImmutableBinding:
		return target == ErrImmutableBinding
	default:
		return target == ErrUnboundSymbol
	}
}

// TypeCheckError is an argument (Parameter set) or return value annotation mismatch.
type TypeCheckError struct {
	Parameter string
	Expected  string
	Actual    string
}

func (e *TypeCheckError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("return value: expected type %s, got %s", e.Expected, e.Actual)
	}
	return fmt.Sprintf("parameter %s: expected type %s, got %s", e.Parameter, e.Expected, e.Actual)
}

func (e *TypeCheckError) Is(target error) bool {
	if e.Parameter == "" {
		return target == ErrReturnType
	}
	return target == ErrArgumentType
}

// ArityError is raised by the callable itself; Max < 0 means unbounded.
type ArityError struct {
	Name  string
	Min   int
	Max   int
	Given int
}

func (e *ArityError) Error() string {
	switch {
	case e.Max < 0:
		return fmt.Sprintf("%s expects at least %d arguments, got %d", e.Name, e.Min, e.Given)
	case e.Min == e.Max:
		return fmt.Sprintf("%s expects %d arguments, got %d", e.Name, e.Min, e.Given)
	default:
		return fmt.Sprintf("%s expects %d to %d arguments, got %d", e.Name, e.Min, e.Max, e.Given)
	}
}

func (e *ArityError) Is(target error) bool { return target == ErrArity }

// checkArity panics with an ArityError when n is outside [min, max].
func checkArity(name string, n, min, max int) {
	if n < min || (max >= 0 && n > max) {
		panic(&ArityError{name, min, max, n})
	}
}

// EvaluationError covers malformed syntax, misuse of auxiliary syntax and
// failures of host resolution.
type EvaluationError struct {
	Message string
	Cause   error
}

func (e *EvaluationError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *EvaluationError) Unwrap() error { return e.Cause }

func (e *EvaluationError) Is(target error) bool { return target == ErrEvaluation }

type StackOverflowError struct {
	Depth int
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("maximum stack depth of %d exceeded", e.Depth)
}

func (e *StackOverflowError) Is(target error) bool { return target == ErrStackOverflow }

// ExitSignal is the control signal raised by (exit). It is not a logic error.
type ExitSignal struct {
	Code      int
	Emergency bool // skips dynamic-wind after thunks
}

func (e *ExitSignal) Error() string { return fmt.Sprintf("exit with code %d", e.Code) }

func (e *ExitSignal) Is(target error) bool { return target == ErrExit }

// Condition wraps a non-error object passed to raise.
type Condition struct {
	Payload     Scmer
	Continuable bool
}

func (c *Condition) Error() string {
	return "raised: " + Serialize(c.Payload)
}

// ErrorObject is what (error msg irritant...) raises.
type ErrorObject struct {
	Message   string
	Irritants []Scmer
}

func (e *ErrorObject) Error() string {
	if len(e.Irritants) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Irritants))
	for i, irritant := range e.Irritants {
		parts[i] = Serialize(irritant)
	}
	return e.Message + " " + strings.Join(parts, " ")
}

// errorf is the evaluator's panic helper for EvaluationError.
func errorf(format string, args ...any) {
	panic(&EvaluationError{Message: fmt.Sprintf(format, args...)})
}

// must turns a returned error into an evaluator panic.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

// asError converts a recovered panic value into an error.
func asError(r any) error {
	switch v := r.(type) {
	case error:
		return v
	case string:
		return &EvaluationError{Message: v}
	default:
		return &EvaluationError{Message: fmt.Sprint(v)}
	}
}
