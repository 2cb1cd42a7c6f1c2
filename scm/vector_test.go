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

import "testing"

func TestVectors(t *testing.T) {
	expectSerialized(t, `(vector 1 "a" #\b)`, `#(1 "a" #\b)`)
	expectSerialized(t, `(make-vector 2)`, "#(#f #f)")
	expectSerialized(t, `(make-vector 3 'x)`, "#(x x x)")
	expectSerialized(t, `(vector-length #(1 2 3))`, "3")
	expectSerialized(t, `(vector-ref '#(a b c) 2)`, "c")
	expectSerialized(t, `(let ((a 5)) (vector-ref #(a 2) 0))`, "5")
	expectSerialized(t, `(vector->list #(1 2 3) 1)`, "(2 3)")
	expectSerialized(t, `(list->vector '(1 2))`, "#(1 2)")
	expectSerialized(t, `(vector->string #(#\a #\b))`, `"ab"`)
	expectSerialized(t, `(string->vector "ab")`, `#(#\a #\b)`)
	expectSerialized(t, `(vector-append #(1) #(2 3))`, "#(1 2 3)")
	expectSerialized(t, `(vector-map + #(1 2) #(10 20))`, "#(11 22)")
	expectSerialized(t, `(let ((v (vector 1 2 3 4))) (vector-fill! v 0 1 3) v)`, "#(1 0 0 4)")
	expectSerialized(t, `(let ((v (vector 1 2 3 4 5))) (vector-copy! v 0 '#(a b) 0 2) v)`, "#(a b 3 4 5)")
	expectSerialized(t, `(let ((v (vector 1 2 3 4 5))) (vector-copy! v 1 v 0 3) v)`, "#(1 1 2 3 5)")
	expectSerialized(t, `(let ((v #(1 2 3))) (eq? v (vector-copy v)))`, "#f")
	expectSerialized(t, `(let ((acc 0)) (vector-for-each (lambda (x) (set! acc (+ acc x))) #(1 2 3)) acc)`, "6")
}

func TestDotProduct(t *testing.T) {
	expectSerialized(t, `(dot #(1 2 3) #(4 5 6))`, "32.0")
	expectSerialized(t, `(dot '(3 0) '(3 4) "EUCLIDEAN")`, "3.0")
	expectSerialized(t, `(dot '(1 0) '(2 0) "COSINE")`, "1.0")
}

func TestBytevectors(t *testing.T) {
	expectSerialized(t, `(bytevector 1 2 255)`, "#u8(1 2 255)")
	expectSerialized(t, `(make-bytevector 2 7)`, "#u8(7 7)")
	expectSerialized(t, `(bytevector-u8-ref #u8(5 6) 1)`, "6")
	expectSerialized(t, `(let ((b (bytevector 1 2 3))) (bytevector-u8-set! b 0 9) b)`, "#u8(9 2 3)")
	expectSerialized(t, `(bytevector-append #u8(1) #u8(2))`, "#u8(1 2)")
	expectSerialized(t, `(bytevector-copy #u8(1 2 3) 1)`, "#u8(2 3)")
	expectSerialized(t, `(utf8->string #u8(206 187))`, `"λ"`)
	expectSerialized(t, `(string->utf8 "λ")`, "#u8(206 187)")
	expectSerialized(t, `(bytevector-length (string->utf8 "abc"))`, "3")
}
