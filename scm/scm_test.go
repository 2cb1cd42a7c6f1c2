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

import "bytes"
import "errors"
import "testing"

func newTestRuntime(t *testing.T, opts Options) *Runtime {
	t.Helper()
	if opts.Stdout == nil {
		opts.Stdout = new(bytes.Buffer)
	}
	rt, err := New(opts)
	if err != nil {
		t.Fatalf("cannot create runtime: %v", err)
	}
	return rt
}

func evalString(t *testing.T, rt *Runtime, code string) Scmer {
	t.Helper()
	result, err := rt.EvaluateProgram(code)
	if err != nil {
		t.Fatalf("%s: %v", code, err)
	}
	return result
}

// expectSerialized evaluates code in a fresh runtime and compares the written form of the result.
func expectSerialized(t *testing.T, code, expected string) {
	t.Helper()
	rt := newTestRuntime(t, DefaultOptions())
	if got := Serialize(evalString(t, rt, code)); got != expected {
		t.Fatalf("%s: expected %s, got %s", code, expected, got)
	}
}

func evalError(t *testing.T, rt *Runtime, code string) error {
	t.Helper()
	_, err := rt.EvaluateProgram(code)
	if err == nil {
		t.Fatalf("%s: expected an error", code)
	}
	return err
}

func TestSelfEvaluating(t *testing.T) {
	expectSerialized(t, `42`, "42")
	expectSerialized(t, `"hi"`, `"hi"`)
	expectSerialized(t, `#\a`, `#\a`)
	expectSerialized(t, `#t`, "#t")
	expectSerialized(t, `#(1 2 3)`, "#(1 2 3)")
	expectSerialized(t, `'sym`, "sym")
}

func TestArithmetic(t *testing.T) {
	expectSerialized(t, `(+ 1 2 3)`, "6")
	expectSerialized(t, `(- 10 4 1)`, "5")
	expectSerialized(t, `(* 2 3 4)`, "24")
	expectSerialized(t, `(< 1 2 3)`, "#t")
	expectSerialized(t, `(< 1 3 2)`, "#f")
	expectSerialized(t, `(modulo -7 3)`, "2")
	expectSerialized(t, `(remainder -7 3)`, "-1")
	expectSerialized(t, `(expt 2 100)`, "1267650600228229401496703205376")
	expectSerialized(t, `(number->string 255 16)`, `"ff"`)
	expectSerialized(t, `(string->number "ff" 16)`, "255")
}

func TestTailCallBounded(t *testing.T) {
	rt := newTestRuntime(t, Options{MaxStackDepth: 9, ImportStandardLibrary: true})
	result := evalString(t, rt, `
(define (fact n acc)
  (if (= n 0) acc (fact (- n 1) (* n acc))))
(fact 10 1)`)
	if Serialize(result) != "3628800" {
		t.Fatalf("expected 3628800, got %s", Serialize(result))
	}
}

func TestNonTailRecursionOverflows(t *testing.T) {
	rt := newTestRuntime(t, Options{MaxStackDepth: 9, ImportStandardLibrary: true})
	err := evalError(t, rt, `
(define (fact n)
  (if (= n 0) 1 (* n (fact (- n 1)))))
(fact 10)`)
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("expected a stack overflow, got %v", err)
	}
	var overflow *StackOverflowError
	if !errors.As(err, &overflow) || overflow.Depth != 9 {
		t.Fatalf("expected depth 9 in %v", err)
	}
}

func TestTailPositionsInSpecialForms(t *testing.T) {
	rt := newTestRuntime(t, Options{MaxStackDepth: 20, ImportStandardLibrary: true})
	result := evalString(t, rt, `
(define (count-down n)
  (cond ((= n 0) 'done)
        (else (when #t (begin (count-down (- n 1)))))))
(count-down 1000)`)
	if Serialize(result) != "done" {
		t.Fatalf("expected done, got %s", Serialize(result))
	}
}

func TestClosures(t *testing.T) {
	expectSerialized(t, `
(define (make-counter)
  (let ((n 0))
    (lambda () (set! n (+ n 1)) n)))
(define c1 (make-counter))
(define c2 (make-counter))
(c1) (c1)
(list (c1) (c2))`, "(3 1)")
}

func TestLexicalScope(t *testing.T) {
	expectSerialized(t, `
(define x 'global)
(define (show) x)
(define (shadow x) (show))
(shadow 'local)`, "global")
}

func TestParameterShapes(t *testing.T) {
	expectSerialized(t, `((lambda args args) 1 2 3)`, "(1 2 3)")
	expectSerialized(t, `((lambda (a . rest) (list a rest)) 1 2 3)`, "(1 (2 3))")
	expectSerialized(t, `((lambda (a b) (- a b)) 5 3)`, "2")
}

func TestArityMismatch(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	err := evalError(t, rt, `((lambda (a b) a) 1)`)
	if !errors.Is(err, ErrArity) {
		t.Fatalf("expected an arity error, got %v", err)
	}
}

func TestTypedParameters(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	evalString(t, rt, `(fn square (a: i32) -> i32 (* a a))`)
	if got := Serialize(evalString(t, rt, `(square 7)`)); got != "49" {
		t.Fatalf("expected 49, got %s", got)
	}

	err := evalError(t, rt, `(square "seven")`)
	if !errors.Is(err, ErrArgumentType) {
		t.Fatalf("expected an argument type mismatch, got %v", err)
	}
	var typeErr *TypeCheckError
	if !errors.As(err, &typeErr) || typeErr.Parameter != "a" {
		t.Fatalf("expected the mismatch to name parameter a, got %v", err)
	}
}

func TestReturnTypeCheckedAfterBody(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	evalString(t, rt, `
(define touched #f)
(define (bad x) -> string (set! touched #t) x)`)
	err := evalError(t, rt, `(bad 1)`)
	if !errors.Is(err, ErrReturnType) {
		t.Fatalf("expected a return type mismatch, got %v", err)
	}
	if got := evalString(t, rt, `touched`); got != true {
		t.Fatalf("side effects must not be rolled back, got %s", Serialize(got))
	}
}

func TestUnboundSymbol(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	err := evalError(t, rt, `(undefined-thing 1)`)
	if !errors.Is(err, ErrUnboundSymbol) {
		t.Fatalf("expected an unbound symbol, got %v", err)
	}
}

func TestDuplicateDefinition(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	err := evalError(t, rt, `(define x 1) (define x 2)`)
	if !errors.Is(err, ErrDuplicateBinding) {
		t.Fatalf("expected a duplicate binding, got %v", err)
	}
}

func TestQuasiquote(t *testing.T) {
	expectSerialized(t, "(let ((x 1) (ys '(2 3))) `(a ,x ,@ys b))", "(a 1 2 3 b)")
	expectSerialized(t, "`(1 ,@'() 2)", "(1 2)")
	expectSerialized(t, "`#(1 ,(+ 1 1))", "#(1 2)")
	expectSerialized(t, "`(1 . ,(+ 1 1))", "(1 . 2)")
}

func TestConditionals(t *testing.T) {
	expectSerialized(t, `(cond ((assv 2 '((1 . a) (2 . b))) => cdr) (else 'none))`, "b")
	expectSerialized(t, `(case 3 ((1 2) 'low) ((3 4) 'mid) (else 'high))`, "mid")
	expectSerialized(t, `(and 1 2 3)`, "3")
	expectSerialized(t, `(or #f #f)`, "#f")
	expectSerialized(t, `(if #f #f)`, "()")
	expectSerialized(t, `(if #f 1 #f 2 3)`, "3")
}

func TestLetForms(t *testing.T) {
	expectSerialized(t, `(let* ((x 1) (y (+ x 1))) (list x y))`, "(1 2)")
	expectSerialized(t, `(letrec ((ev? (lambda (n) (if (= n 0) #t (od? (- n 1))))) (od? (lambda (n) (if (= n 0) #f (ev? (- n 1)))))) (ev? 10))`, "#t")
	expectSerialized(t, `(let loop ((i 0) (acc '())) (if (= i 3) acc (loop (+ i 1) (cons i acc))))`, "(2 1 0)")
	expectSerialized(t, `(let-values (((a b) (values 1 2)) ((c) (values 3))) (list a b c))`, "(1 2 3)")
	expectSerialized(t, `(call-with-values (lambda () (values 1 2)) +)`, "3")
}

func TestDo(t *testing.T) {
	expectSerialized(t, `(do ((vec (make-vector 5)) (i 0 (+ i 1))) ((= i 5) vec) (vector-set! vec i i))`, "#(0 1 2 3 4)")
	expectSerialized(t, `(do ((a 1 b) (b 2 a) (n 0 (+ n 1))) ((= n 3) (list a b)))`, "(2 1)")
}

func TestEquivalence(t *testing.T) {
	expectSerialized(t, `(eq? 'a 'a)`, "#t")
	expectSerialized(t, `(eq? (list 1) (list 1))`, "#f")
	expectSerialized(t, `(equal? (list 1 (vector 2 "x")) (list 1 (vector 2 "x")))`, "#t")
	expectSerialized(t, `(eqv? 2 2)`, "#t")
	expectSerialized(t, `(let ((p (list 1 2))) (eq? p p))`, "#t")
}

func TestBracketSugar(t *testing.T) {
	expectSerialized(t, `[1 (+ 1 1) 3]`, "(1 2 3)")
	expectSerialized(t, `(let [x 1 y 2] (+ x y))`, "3")
	expectSerialized(t, `["a" => 1 "b" => 2]`, `(("a" . 1) ("b" . 2))`)
}

func TestStatementBlock(t *testing.T) {
	expectSerialized(t, "(define (f x) {\n(define y (* x 2))\n(+ y 1)\n})\n(f 3)", "7")
}

func TestApplyAndMap(t *testing.T) {
	expectSerialized(t, `(apply + 1 2 '(3 4))`, "10")
	expectSerialized(t, `(map + '(1 2 3) '(10 20 30))`, "(11 22 33)")
	expectSerialized(t, `(let ((acc '())) (for-each (lambda (x) (set! acc (cons x acc))) '(1 2)) acc)`, "(2 1)")
}

func TestPrelude(t *testing.T) {
	expectSerialized(t, `(filter odd? (range 10))`, "(1 3 5 7 9)")
	expectSerialized(t, `(fold-left + 0 '(1 2 3))`, "6")
	expectSerialized(t, `(list (zero? 0) (even? 3) (square 5))`, "(#t #f 25)")
}

func TestNoPrelude(t *testing.T) {
	rt := newTestRuntime(t, Options{})
	err := evalError(t, rt, `(car '(1))`)
	if !errors.Is(err, ErrUnboundSymbol) {
		t.Fatalf("a bare runtime must not know car, got %v", err)
	}
	result := evalString(t, rt, `(import (scheme base)) (car '(1))`)
	if Serialize(result) != "1" {
		t.Fatalf("expected 1 after import, got %s", Serialize(result))
	}
}
