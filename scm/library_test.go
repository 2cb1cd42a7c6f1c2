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

func TestImportModifiers(t *testing.T) {
	rt := newTestRuntime(t, Options{})
	evalString(t, rt, `(import (only (scheme base) car cons quote))`)
	if got := Serialize(evalString(t, rt, `(car (cons 1 2))`)); got != "1" {
		t.Fatalf("expected 1, got %s", got)
	}
	if err := evalError(t, rt, `(cdr (cons 1 2))`); !errors.Is(err, ErrUnboundSymbol) {
		t.Fatalf("only must hide cdr, got %v", err)
	}

	rt = newTestRuntime(t, Options{})
	evalString(t, rt, `(import (prefix (only (scheme base) list) base-))`)
	if got := Serialize(evalString(t, rt, `(base-list 1 2)`)); got != "(1 2)" {
		t.Fatalf("expected (1 2), got %s", got)
	}

	rt = newTestRuntime(t, Options{})
	evalString(t, rt, `(import (rename (scheme base) (car first)) (except (scheme char) char-upcase))`)
	if got := Serialize(evalString(t, rt, `(first (list 1 2))`)); got != "1" {
		t.Fatalf("expected 1, got %s", got)
	}
	if err := evalError(t, rt, `(car (list 1 2))`); !errors.Is(err, ErrUnboundSymbol) {
		t.Fatalf("rename must remove the old name, got %v", err)
	}
	if err := evalError(t, rt, `(char-upcase #\a)`); !errors.Is(err, ErrUnboundSymbol) {
		t.Fatalf("except must hide char-upcase, got %v", err)
	}
	if got := Serialize(evalString(t, rt, `(char-downcase #\A)`)); got != `#\a` {
		t.Fatalf("expected #\\a, got %s", got)
	}
}

func TestImportUnknownLibrary(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	err := evalError(t, rt, `(import (no such library))`)
	if !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected an evaluation error, got %v", err)
	}
}

func TestColibriLibrarySeesBase(t *testing.T) {
	rt := newTestRuntime(t, Options{})
	evalString(t, rt, `(import (colibri base))`)
	// the prelude procedures were defined against (scheme base)
	if got := Serialize(evalString(t, rt, `(take (range 5) 2)`)); got != "(0 1)" {
		t.Fatalf("expected (0 1), got %s", got)
	}
}

func TestEnvironmentIsFrozen(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	if got := Serialize(evalString(t, rt, `(eval '(+ 1 2) (environment '(scheme base)))`)); got != "3" {
		t.Fatalf("expected 3, got %s", got)
	}
	err := evalError(t, rt, `(eval '(define x 1) (environment '(scheme base)))`)
	if !errors.Is(err, ErrImmutableBinding) {
		t.Fatalf("expected an immutable binding, got %v", err)
	}
	err = evalError(t, rt, `(eval '(string-upcase "a") (environment '(scheme base)))`)
	if !errors.Is(err, ErrUnboundSymbol) {
		t.Fatalf("(scheme char) was not imported, got %v", err)
	}
}

func TestMutableEnvironment(t *testing.T) {
	expectSerialized(t, `
(define env (mutable-environment '(scheme base)))
(eval '(define x 40) env)
(eval '(+ x 2) env)`, "42")
	expectSerialized(t, `
(define env (freeze-environment (mutable-environment '(scheme base))))
(guard (e (#t 'frozen)) (eval '(define y 1) env))`, "frozen")
}

func TestInteractionEnvironment(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	evalString(t, rt, `(eval '(define z 9) (interaction-environment))`)
	if got := Serialize(evalString(t, rt, `z`)); got != "9" {
		t.Fatalf("expected 9, got %s", got)
	}
	if got := Serialize(evalString(t, rt, `(eval '(* z 2))`)); got != "18" {
		t.Fatalf("expected 18, got %s", got)
	}
}

func TestGlobalScopeIsImmutable(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	err := evalError(t, rt, `(set! car cdr)`)
	if !errors.Is(err, ErrImmutableBinding) {
		t.Fatalf("expected an immutable binding, got %v", err)
	}
	// shadowing in the user scope is allowed
	if got := Serialize(evalString(t, rt, `(define car cdr) (car '(1 2))`)); got != "(2)" {
		t.Fatalf("expected (2), got %s", got)
	}
}

func TestRegisterGlobal(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	if err := rt.RegisterGlobal("answer", NewInt(42)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := Serialize(evalString(t, rt, `answer`)); got != "42" {
		t.Fatalf("expected 42, got %s", got)
	}
	if err := rt.RegisterGlobal("answer", NewInt(1)); !errors.Is(err, ErrDuplicateBinding) {
		t.Fatalf("expected a duplicate binding, got %v", err)
	}
}
