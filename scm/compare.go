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
import "reflect"
import "github.com/nukata/goarith"

// Eq is identity. Symbols compare by name; numbers, chars and booleans by value.
func Eq(a, b Scmer) bool {
	switch a_ := a.(type) {
	case Symbol:
		b_, ok := b.(Symbol)
		return ok && a_.Name == b_.Name
	case NilType:
		_, ok := b.(NilType)
		return ok
	case goarith.Number:
		return Eqv(a, b)
	}
	if !isComparable(a) || !isComparable(b) {
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		return va.Kind() == reflect.Func && vb.Kind() == reflect.Func && va.Pointer() == vb.Pointer()
	}
	return a == b
}

// Eqv extends Eq to numbers of the same exactness and equal value.
func Eqv(a, b Scmer) bool {
	if x, ok := a.(goarith.Number); ok {
		y, ok := b.(goarith.Number)
		if !ok || IsExactInteger(x) != IsExactInteger(y) {
			return false
		}
		return x.Cmp(y) == 0
	}
	return Eq(a, b)
}

func isComparable(v Scmer) bool {
	t := reflect.TypeOf(v)
	return t == nil || t.Comparable()
}

type pairCouple struct {
	a, b any
}

// Equal compares structurally. Cyclic structures terminate: a couple of
// containers that is already under comparison is assumed equal.
func Equal(a, b Scmer) bool {
	return equal(a, b, make(map[pairCouple]bool))
}

func equal(a, b Scmer, visiting map[pairCouple]bool) bool {
	switch a_ := a.(type) {
	case *Pair:
		b_, ok := b.(*Pair)
		if !ok {
			return false
		}
		if a_ == b_ {
			return true
		}
		key := pairCouple{a_, b_}
		if visiting[key] {
			return true
		}
		visiting[key] = true
		return equal(a_.Car, b_.Car, visiting) && equal(a_.Cdr, b_.Cdr, visiting)
	case *Vector:
		b_, ok := b.(*Vector)
		if !ok || len(a_.Items) != len(b_.Items) {
			return false
		}
		if a_ == b_ {
			return true
		}
		key := pairCouple{a_, b_}
		if visiting[key] {
			return true
		}
		visiting[key] = true
		for i := range a_.Items {
			if !equal(a_.Items[i], b_.Items[i], visiting) {
				return false
			}
		}
		return true
	case *Bytevector:
		b_, ok := b.(*Bytevector)
		return ok && bytes.Equal(a_.Bytes, b_.Bytes)
	case string:
		b_, ok := b.(string)
		return ok && a_ == b_
	case *Values:
		b_, ok := b.(*Values)
		if !ok || len(a_.Items) != len(b_.Items) {
			return false
		}
		for i := range a_.Items {
			if !equal(a_.Items[i], b_.Items[i], visiting) {
				return false
			}
		}
		return true
	}
	return Eqv(a, b)
}

// Less orders numbers, strings, chars and symbols; mixed kinds order by kind.
func Less(a, b Scmer) bool {
	switch a_ := a.(type) {
	case goarith.Number:
		if b_, ok := b.(goarith.Number); ok {
			return a_.Cmp(b_) < 0
		}
	case string:
		if b_, ok := b.(string); ok {
			return a_ < b_
		}
	case Char:
		if b_, ok := b.(Char); ok {
			return a_ < b_
		}
	case Symbol:
		if b_, ok := b.(Symbol); ok {
			return a_.Name < b_.Name
		}
	}
	return kindRank(a) < kindRank(b)
}

func kindRank(v Scmer) int {
	switch v.(type) {
	case nil, NilType:
		return 0
	case bool:
		return 1
	case goarith.Number:
		return 2
	case Char:
		return 3
	case string:
		return 4
	case Symbol:
		return 5
	}
	return 6
}
