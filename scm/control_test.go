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
import "testing"

func TestCallCC(t *testing.T) {
	expectSerialized(t, `(+ 1 (call/cc (lambda (k) (+ 10 (k 5)))))`, "6")
	expectSerialized(t, `(call-with-current-continuation (lambda (k) 7))`, "7")
	expectSerialized(t, `
(define (find-first pred lst)
  (call/cc (lambda (return)
    (for-each (lambda (x) (if (pred x) (return x))) lst)
    #f)))
(find-first even? '(1 3 4 5 6))`, "4")
}

func TestDynamicWind(t *testing.T) {
	expectSerialized(t, `
(define trail '())
(define (note x) (set! trail (cons x trail)))
(call/cc (lambda (k)
  (dynamic-wind
    (lambda () (note 'before))
    (lambda () (note 'during) (k 'escaped) (note 'unreachable))
    (lambda () (note 'after)))))
(reverse trail)`, "(before during after)")
}

func TestGuard(t *testing.T) {
	expectSerialized(t, `(guard (e (#t (error-object-message e))) (error "boom" 1 2))`, `"boom"`)
	expectSerialized(t, `(guard (e ((error-object? e) (error-object-irritants e))) (error "boom" 1 2))`, "(1 2)")
	expectSerialized(t, `(guard (e ((symbol? e) (list 'caught e))) (raise 'oops))`, "(caught oops)")
	expectSerialized(t, `(guard (e ((string? e) 'string) (else 'other)) (raise 42))`, "other")
	expectSerialized(t, `(guard (e (#t 'recovered)) (car 1))`, "recovered")
}

func TestGuardReraises(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	err := evalError(t, rt, `(guard (e ((string? e) e)) (raise 'oops))`)
	var cond *Condition
	if !errors.As(err, &cond) {
		t.Fatalf("expected a condition, got %v", err)
	}
	if Serialize(cond.Payload) != "oops" {
		t.Fatalf("expected payload oops, got %s", Serialize(cond.Payload))
	}
}

func TestRaiseContinuable(t *testing.T) {
	expectSerialized(t, `
(with-exception-handler
  (lambda (c) 42)
  (lambda () (+ (raise-continuable 'c) 1)))`, "43")
}

func TestHandlerReturningFromRaise(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	err := evalError(t, rt, `(with-exception-handler (lambda (c) 0) (lambda () (raise 'bad)))`)
	if !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected an evaluation error, got %v", err)
	}
}

func TestParameterize(t *testing.T) {
	expectSerialized(t, `
(define p (make-parameter 10))
(list (p) (parameterize ((p 20)) (p)) (p))`, "(10 20 10)")
	expectSerialized(t, `
(define q (make-parameter 1 (lambda (x) (* x 2))))
(list (q) (parameterize ((q 5)) (q)))`, "(2 10)")
}

func TestPromises(t *testing.T) {
	expectSerialized(t, `
(define n 0)
(define p (delay (begin (set! n (+ n 1)) n)))
(force p)
(force p)
n`, "1")
	expectSerialized(t, `(force (make-promise 3))`, "3")
}

func TestExitWithListener(t *testing.T) {
	code := -100
	rt := newTestRuntime(t, Options{ImportStandardLibrary: true, OnExit: func(c int) { code = c }})
	if _, err := rt.EvaluateProgram(`(exit 3)`); err != nil {
		t.Fatalf("exit with a listener must not fail: %v", err)
	}
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
}

func TestExitWithoutListener(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	err := evalError(t, rt, `(exit)`)
	var exit *ExitSignal
	if !errors.As(err, &exit) || exit.Code != 0 {
		t.Fatalf("expected an exit signal with code 0, got %v", err)
	}
	if !errors.Is(err, ErrExit) {
		t.Fatalf("expected ErrExit, got %v", err)
	}
}

func TestExitIsNotCaughtByGuard(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	err := evalError(t, rt, `(guard (e (#t 'caught)) (exit 2))`)
	var exit *ExitSignal
	if !errors.As(err, &exit) || exit.Code != 2 {
		t.Fatalf("expected exit code 2, got %v", err)
	}
}

func TestExitRunsAfterThunks(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	evalString(t, rt, `(define ran #f)`)
	evalError(t, rt, `(dynamic-wind (lambda () #f) (lambda () (exit 1)) (lambda () (set! ran #t)))`)
	if got := evalString(t, rt, `ran`); got != true {
		t.Fatalf("after thunk must run on exit")
	}
}

func TestCaseLambda(t *testing.T) {
	expectSerialized(t, `
(define area
  (case-lambda
    ((r) (* 3 r r))
    ((w h) (* w h))))
(list (area 2) (area 2 5))`, "(12 10)")
}

func TestIncrementMacros(t *testing.T) {
	expectSerialized(t, `(define i 1) (++! i) (++! i 10) (--! i) i`, "11")
}
