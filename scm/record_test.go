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

const pointDefinition = `
(define-record-type <point>
  (make-point x y)
  point?
  (x point-x set-point-x!)
  (y point-y))`

func TestRecords(t *testing.T) {
	expectSerialized(t, pointDefinition+`
(define p (make-point 1 2))
(set-point-x! p 5)
(list (point? p) (point-x p) (point-y p) (point? 5) (record? p))`, "(#t 5 2 #f #t)")
}

func TestRecordAccessorChecksType(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	evalString(t, rt, pointDefinition)
	err := evalError(t, rt, `(point-x (list 1 2))`)
	if !errors.Is(err, ErrArgumentType) {
		t.Fatalf("expected a type mismatch, got %v", err)
	}
	if err := evalError(t, rt, `(make-point 1)`); !errors.Is(err, ErrArity) {
		t.Fatalf("expected an arity error, got %v", err)
	}
}

func TestRecordTypeAsAnnotation(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	evalString(t, rt, pointDefinition+`
(define (norm1 p: <point>) -> int (+ (abs (point-x p)) (abs (point-y p))))`)
	if got := Serialize(evalString(t, rt, `(norm1 (make-point -3 4))`)); got != "7" {
		t.Fatalf("expected 7, got %s", got)
	}
	err := evalError(t, rt, `(norm1 5)`)
	var typeErr *TypeCheckError
	if !errors.As(err, &typeErr) || typeErr.Parameter != "p" || typeErr.Expected != "point" {
		t.Fatalf("expected a mismatch on p against point, got %v", err)
	}
}

func TestRecordTypesAreNominal(t *testing.T) {
	expectSerialized(t, `
(define-record-type <a> (make-a v) a? (v a-v))
(define-record-type <b> (make-b v) b? (v b-v))
(list (a? (make-b 1)) (b? (make-b 1)) (equal? (make-a 1) (make-a 1)))`, "(#f #t #f)")
	expectSerialized(t, `
(define-record-type <a> (make-a v) a? (v a-v))
(equal? (record-type-id <a>) (record-type-id (make-a 1)))`, "#t")
}
