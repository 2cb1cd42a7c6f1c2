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
import "strconv"
import "strings"
import "testing"

type testPoint struct {
	X     int
	Label string
}

func (p *testPoint) Scale(k int) int { return p.X * k }

func (p *testPoint) Both() (int, string) { return p.X, p.Label }

func newInteropRuntime(t *testing.T) *Runtime {
	t.Helper()
	host := NewHostInterop()
	host.Register("strings", "ToUpper", strings.ToUpper)
	host.Register("strings", "Join", strings.Join)
	host.Register("strconv", "Atoi", strconv.Atoi)
	host.Register("geo", "origin", &testPoint{X: 3, Label: "o"})
	host.Register("geo", "answer", 42)
	opts := DefaultOptions()
	opts.Interop = host
	return newTestRuntime(t, opts)
}

func TestInteropQualifiedNames(t *testing.T) {
	rt := newInteropRuntime(t)
	if got := Serialize(evalString(t, rt, `(strings/ToUpper "abc")`)); got != `"ABC"` {
		t.Fatalf("expected \"ABC\", got %s", got)
	}
	if got := Serialize(evalString(t, rt, `(strings/Join (list "a" "b") "+")`)); got != `"a+b"` {
		t.Fatalf("expected \"a+b\", got %s", got)
	}
	if got := Serialize(evalString(t, rt, `(+ geo/answer 1)`)); got != "43" {
		t.Fatalf("expected 43, got %s", got)
	}
}

func TestInteropUse(t *testing.T) {
	rt := newInteropRuntime(t)
	if err := evalError(t, rt, `(ToUpper "x")`); !errors.Is(err, ErrUnboundSymbol) {
		t.Fatalf("unqualified names need (use strings), got %v", err)
	}
	if got := Serialize(evalString(t, rt, `(use strings) (ToUpper "x")`)); got != `"X"` {
		t.Fatalf("expected \"X\", got %s", got)
	}
	// scheme bindings win over host names
	if got := Serialize(evalString(t, rt, `(define (ToUpper s) 'mine) (ToUpper "x")`)); got != "mine" {
		t.Fatalf("expected mine, got %s", got)
	}
}

func TestInteropErrorResult(t *testing.T) {
	rt := newInteropRuntime(t)
	if got := Serialize(evalString(t, rt, `(strconv/Atoi "42")`)); got != "42" {
		t.Fatalf("expected 42, got %s", got)
	}
	err := evalError(t, rt, `(strconv/Atoi "forty-two")`)
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Fatalf("expected the host error as cause, got %v", err)
	}
	if err := evalError(t, rt, `(strconv/Atoi 42)`); !errors.Is(err, ErrArgumentType) {
		t.Fatalf("expected an argument type mismatch, got %v", err)
	}
}

func TestInteropMembers(t *testing.T) {
	rt := newInteropRuntime(t)
	if got := Serialize(evalString(t, rt, `(.Scale geo/origin 2)`)); got != "6" {
		t.Fatalf("expected 6, got %s", got)
	}
	if got := Serialize(evalString(t, rt, `(.X geo/origin)`)); got != "3" {
		t.Fatalf("expected 3, got %s", got)
	}
	evalString(t, rt, `(.X geo/origin 7)`)
	if got := Serialize(evalString(t, rt, `(call-with-values (lambda () (.Both geo/origin)) list)`)); got != `(7 "o")` {
		t.Fatalf("expected (7 \"o\"), got %s", got)
	}
	if err := evalError(t, rt, `(.Missing geo/origin)`); !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected an evaluation error, got %v", err)
	}
}

func TestMemberAccessWithoutInterop(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	if err := evalError(t, rt, `(.Name 1)`); !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected an evaluation error, got %v", err)
	}
}

// recordingInterop resolves every unknown name to a procedure returning the
// number of its arguments and remembers the arity hints it was asked with.
type recordingInterop struct {
	hints map[string][]int
}

func (r *recordingInterop) TryResolve(scope *Scope, name string, arity int) (Scmer, bool) {
	r.hints[name] = append(r.hints[name], arity)
	return func(a ...Scmer) Scmer { return NewInt(int64(len(a))) }, true
}

func (r *recordingInterop) InvokeMember(scope *Scope, member string, args []Scmer) Scmer {
	return nil
}

func TestInteropArityHint(t *testing.T) {
	host := &recordingInterop{hints: make(map[string][]int)}
	opts := DefaultOptions()
	opts.Interop = host
	rt := newTestRuntime(t, opts)
	if got := Serialize(evalString(t, rt, `(f 1 2)`)); got != "2" {
		t.Fatalf("expected 2, got %s", got)
	}
	evalString(t, rt, `(list g)`)
	if h := host.hints["f"]; len(h) != 1 || h[0] != 2 {
		t.Fatalf("expected arity hint 2 for f, got %v", h)
	}
	if h := host.hints["g"]; len(h) != 1 || h[0] != -1 {
		t.Fatalf("expected arity hint -1 for g, got %v", h)
	}
}

func TestInteropOverloads(t *testing.T) {
	host := NewHostInterop()
	host.Register("calc", "sum", func(a int) int { return a })
	host.Register("calc", "sum", func(a, b int) int { return a + b })
	host.Register("calc", "sum", func(a, b int) int { return 10 * (a + b) })
	opts := DefaultOptions()
	opts.Interop = host
	rt := newTestRuntime(t, opts)
	if got := Serialize(evalString(t, rt, `(list (calc/sum 5) (calc/sum 1 2))`)); got != "(5 30)" {
		t.Fatalf("expected (5 30), got %s", got)
	}
	// without a call site arity the overload is chosen per call
	if got := Serialize(evalString(t, rt, `(map calc/sum '(1 2))`)); got != "(1 2)" {
		t.Fatalf("expected (1 2), got %s", got)
	}
	if err := evalError(t, rt, `(apply calc/sum '(1 2 3))`); !errors.Is(err, ErrArity) {
		t.Fatalf("expected an arity error, got %v", err)
	}
}
