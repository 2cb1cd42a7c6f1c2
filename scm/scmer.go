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

import "fmt"
import "math/big"
import "github.com/nukata/goarith"

// Scmer is the single representation for syntax and runtime data.
// Atoms are goarith.Number, string, Char and bool.
type Scmer = any

// Pair is a mutable cons cell. Proper lists end in Nil.
type Pair struct {
	Car Scmer
	Cdr Scmer
}

// NilType has exactly one value: Nil.
type NilType struct{}

var Nil = NilType{}

func (NilType) String() string { return "()" }

// Symbol equality is by name; Escaped records the |...| spelling.
type Symbol struct {
	Name    string
	Escaped bool
}

func NewSymbol(name string) Symbol {
	return Symbol{Name: name}
}

func (s Symbol) String() string { return s.Name }

type Char rune

type Vector struct {
	Items []Scmer
}

type Bytevector struct {
	Bytes []byte
}

// Program is a sequence of top level forms; definitions accumulate in the evaluating scope.
type Program struct {
	Source string
	Forms  []Scmer
}

type Quote struct {
	Value Scmer
}

type Quasiquote struct {
	Value Scmer
}

type Unquote struct {
	Value    Scmer
	Splicing bool
}

// BracketList is [a b c]. As an expression it builds a fresh list of the evaluated items.
type BracketList struct {
	Items []Scmer
}

// AssociativeArray is [k => v ...]; it evaluates to an association list.
type AssociativeArray struct {
	Keys   []Scmer
	Values []Scmer
}

// PairwiseBlock regroups a bracket list two by two, e.g. let bindings [x 1 y 2].
type PairwiseBlock struct {
	Pairs []*Pair
}

// StatementBlock is { a b c }: sequential evaluation returning the last value.
type StatementBlock struct {
	Forms []Scmer
}

type RegexLiteral struct {
	Pattern string
	Flags   string
}

// SyntaxBinding ties an identifier to the scope it was written in: the call
// site for transformer arguments, the definition site for identifiers a
// template introduced. The latter carry an Alias that is used instead of the
// name when they are bound, so they cannot capture or be captured by user
// bindings.
type SyntaxBinding struct {
	Symbol Symbol
	Scope  *Scope
	Alias  string
}

// AuxiliarySyntax marks keywords like else and => that are only meaningful inside special forms.
type AuxiliarySyntax struct {
	Name string
}

func (a AuxiliarySyntax) String() string { return a.Name }

type TypedIdentifier struct {
	Ident Symbol
	Type  Scmer
}

// Values carries multiple return values.
type Values struct {
	Items []Scmer
}

func Cons(car, cdr Scmer) *Pair {
	return &Pair{car, cdr}
}

func List(items ...Scmer) Scmer {
	return ListWithTail(items, Nil)
}

func ListWithTail(items []Scmer, tail Scmer) Scmer {
	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		result = &Pair{items[i], result}
	}
	return result
}

// ListToSlice flattens a proper list. ok is false for improper or cyclic input.
func ListToSlice(v Scmer) (result []Scmer, ok bool) {
	if !IsList(v) {
		return nil, false
	}
	result = make([]Scmer, 0, 4)
	for {
		p, isPair := v.(*Pair)
		if !isPair {
			return result, true
		}
		result = append(result, p.Car)
		v = p.Cdr
	}
}

// MustList is ListToSlice for macro bodies: malformed syntax is an evaluation error.
func MustList(v Scmer, who string) []Scmer {
	switch l := v.(type) {
	case *BracketList:
		return l.Items
	case *AssociativeArray:
		// a clause like [x => f] reads as an associative array
		items := make([]Scmer, 0, 3*len(l.Keys))
		for i, k := range l.Keys {
			items = append(items, k, NewSymbol("=>"), l.Values[i])
		}
		return items
	}
	result, ok := ListToSlice(v)
	if !ok {
		panic(&EvaluationError{Message: who + ": expected a proper list, got " + Serialize(v)})
	}
	return result
}

// IsList reports whether v is Nil or a finite Pair chain ending in Nil.
func IsList(v Scmer) bool {
	slow, fast := v, v
	for {
		switch f := fast.(type) {
		case NilType:
			return true
		case *Pair:
			next, ok := f.Cdr.(*Pair)
			if !ok {
				_, isNil := f.Cdr.(NilType)
				return isNil
			}
			fast = next.Cdr
			slow = slow.(*Pair).Cdr
			if fp, ok := fast.(*Pair); ok && fp == slow.(*Pair) {
				return false // cycle
			}
		default:
			return false
		}
	}
}

func IsPair(v Scmer) bool {
	_, ok := v.(*Pair)
	return ok
}

// Length counts the pairs of a proper list; -1 otherwise.
func Length(v Scmer) int {
	if !IsList(v) {
		return -1
	}
	n := 0
	for p, ok := v.(*Pair); ok; p, ok = p.Cdr.(*Pair) {
		n++
	}
	return n
}

// ToBool: only false is false.
func ToBool(v Scmer) bool {
	b, ok := v.(bool)
	return !ok || b
}

// NilEquivalent is true for Nil, the absent value, false and an empty vector.
func NilEquivalent(v Scmer) bool {
	switch x := v.(type) {
	case nil, NilType:
		return true
	case bool:
		return !x
	case *Vector:
		return len(x.Items) == 0
	}
	return false
}

func NewInt(i int64) Scmer {
	return goarith.AsNumber(i)
}

func NewFloat(f float64) Scmer {
	return goarith.AsNumber(f)
}

func NewBigInt(i *big.Int) Scmer {
	return goarith.AsNumber(i)
}

func NewString(s string) Scmer {
	return s
}

func NewBool(b bool) Scmer {
	return b
}

// Pairwise regroups a flat item list into two element lists.
func Pairwise(items []Scmer) *PairwiseBlock {
	if len(items)%2 != 0 {
		panic(&EvaluationError{Message: fmt.Sprintf("pairwise block needs an even number of items, got %d", len(items))})
	}
	result := &PairwiseBlock{Pairs: make([]*Pair, 0, len(items)/2)}
	for i := 0; i < len(items); i += 2 {
		result.Pairs = append(result.Pairs, Cons(items[i], Cons(items[i+1], Nil)))
	}
	return result
}

// Desugar turns the block into the Pair chain ((a 1) (b 2) ...).
func (b *PairwiseBlock) Desugar() Scmer {
	items := make([]Scmer, len(b.Pairs))
	for i, p := range b.Pairs {
		items[i] = p
	}
	return List(items...)
}

// bindingList reads a binding or clause list that may be written as a
// bracket list ([x 1 y 2]) instead of ((x 1) (y 2)).
func bindingList(v Scmer, who string) []Scmer {
	switch b := v.(type) {
	case *BracketList:
		return MustList(Pairwise(b.Items).Desugar(), who)
	case *PairwiseBlock:
		return MustList(b.Desugar(), who)
	}
	return MustList(v, who)
}
