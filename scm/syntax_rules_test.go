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

func TestSyntaxRulesSwap(t *testing.T) {
	expectSerialized(t, `
(define-syntax swap!
  (syntax-rules ()
    ((_ a b) (let ((tmp a)) (set! a b) (set! b tmp)))))
(define tmp 1)
(define other 2)
(swap! tmp other)
(list tmp other)`, "(2 1)")
}

func TestSyntaxRulesHygiene(t *testing.T) {
	expectSerialized(t, `
(define-syntax my-or
  (syntax-rules ()
    ((_) #f)
    ((_ e) e)
    ((_ e r ...) (let ((t e)) (if t t (my-or r ...))))))
(define t 5)
(my-or #f t)`, "5")
	// a user binding of if must not change the expansion
	expectSerialized(t, `
(define-syntax my-unless
  (syntax-rules ()
    ((_ c body ...) (if c #f (begin body ...)))))
(let ((if list))
  (my-unless #f 1 2))`, "2")
}

func TestSyntaxRulesEllipsis(t *testing.T) {
	expectSerialized(t, `
(define-syntax my-let*
  (syntax-rules ()
    ((_ () body ...) (let () body ...))
    ((_ ((x v) rest ...) body ...) (let ((x v)) (my-let* (rest ...) body ...)))))
(my-let* ((a 1) (b (+ a 1))) (list a b))`, "(1 2)")
	expectSerialized(t, `
(define-syntax pairs
  (syntax-rules ()
    ((_ (a b) ...) (list (cons a b) ...))))
(pairs (1 2) (3 4))`, "((1 . 2) (3 . 4))")
}

func TestSyntaxRulesLiterals(t *testing.T) {
	expectSerialized(t, `
(define-syntax arrow
  (syntax-rules (to)
    ((_ a to b) (list 'from a 'to b))
    ((_ a b) 'no-arrow)))
(list (arrow 1 to 2) (arrow 1 2))`, "((from 1 to 2) no-arrow)")
}

func TestSyntaxRulesNoMatch(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	evalString(t, rt, `(define-syntax one (syntax-rules () ((_ x) x)))`)
	err := evalError(t, rt, `(one 1 2)`)
	if !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected an evaluation error, got %v", err)
	}
}

func TestLetSyntax(t *testing.T) {
	expectSerialized(t, `
(let-syntax ((double (syntax-rules () ((_ x) (* 2 x)))))
  (double 21))`, "42")
}

func TestSyntaxRulesArgumentBindings(t *testing.T) {
	// bindings made inside a macro argument shadow the call site
	expectSerialized(t, `
(define x 'outer)
(define-syntax id (syntax-rules () ((_ e) e)))
(id (let ((x 'inner)) x))`, "inner")
	expectSerialized(t, `
(define x 'outer)
(define-syntax id (syntax-rules () ((_ e) e)))
((id (lambda (x) x)) 'inner)`, "inner")
	expectSerialized(t, `
(define a 100)
(define-syntax my-let*
  (syntax-rules ()
    ((_ () body ...) (let () body ...))
    ((_ ((x v) rest ...) body ...) (let ((x v)) (my-let* (rest ...) body ...)))))
(my-let* ((a 1) (b (+ a 1))) (list a b))`, "(1 2)")
}

func TestSyntaxRulesArgumentSet(t *testing.T) {
	expectSerialized(t, `
(define x 'outer)
(define-syntax id (syntax-rules () ((_ e) e)))
(list (id (let ((x 1)) (set! x 2) x)) x)`, "(2 outer)")
}
