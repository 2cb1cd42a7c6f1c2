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

func readOne(t *testing.T, code string) Scmer {
	t.Helper()
	v, err := ReadDatum("test", code)
	if err != nil {
		t.Fatalf("%s: %v", code, err)
	}
	return v
}

func TestReadRoundTrip(t *testing.T) {
	for _, code := range []string{
		`(a b c)`,
		`(1 . 2)`,
		`(1 2 . 3)`,
		`"line\nbreak \"quoted\""`,
		`#\space`,
		`#\x`,
		`#(1 "two" #\3)`,
		`#u8(0 127 255)`,
		`|hello world|`,
		`(quote x)`,
		`-17`,
		`3.5`,
		`#t`,
		`()`,
	} {
		v := readOne(t, code)
		if got := Serialize(datum(v, nil)); got != code {
			t.Fatalf("round trip of %s gave %s", code, got)
		}
	}
}

func TestReadNumbers(t *testing.T) {
	for code, expected := range map[string]string{
		`#xff`:   "255",
		`#b101`:  "5",
		`#o17`:   "15",
		`1_000`:  "1000",
		`+5`:     "5",
		`1e3`:    "1000.0",
		`123456789012345678901234567890`: "123456789012345678901234567890",
	} {
		if got := Serialize(readOne(t, code)); got != expected {
			t.Fatalf("%s: expected %s, got %s", code, expected, got)
		}
	}
	if _, ok := readOne(t, `-`).(Symbol); !ok {
		t.Fatalf("a lone minus is a symbol")
	}
	if _, ok := readOne(t, `...`).(Symbol); !ok {
		t.Fatalf("... is a symbol")
	}
}

func TestReadQuoteSugar(t *testing.T) {
	if _, ok := readOne(t, `'x`).(*Quote); !ok {
		t.Fatalf("'x must read as a quote node")
	}
	q, ok := readOne(t, "`(a ,b ,@c)").(*Quasiquote)
	if !ok {
		t.Fatalf("expected a quasiquote node")
	}
	items, _ := ListToSlice(q.Value)
	if u, ok := items[2].(*Unquote); !ok || !u.Splicing {
		t.Fatalf("expected a splicing unquote, got %s", Serialize(items[2]))
	}
	if got := Serialize(datum(q, nil)); got != "(quasiquote (a (unquote b) (unquote-splicing c)))" {
		t.Fatalf("unexpected datum %s", got)
	}
}

func TestReadComments(t *testing.T) {
	program, err := Read("test", "; line\n1 #| block #| nested |# |# 2 #;(skipped datum) 3")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(program.Forms) != 3 {
		t.Fatalf("expected 3 forms, got %d", len(program.Forms))
	}
}

func TestReadBrackets(t *testing.T) {
	if _, ok := readOne(t, `[1 2 3]`).(*BracketList); !ok {
		t.Fatalf("expected a bracket list")
	}
	aa, ok := readOne(t, `["a" => 1 "b" => 2]`).(*AssociativeArray)
	if !ok || len(aa.Keys) != 2 {
		t.Fatalf("expected an associative array with two keys")
	}
	block, ok := readOne(t, "{\n(define x 1)\nprint x\n}").(*StatementBlock)
	if !ok || len(block.Forms) != 2 {
		t.Fatalf("expected a statement block with two statements")
	}
	if got := Serialize(datum(block.Forms[1], nil)); got != "(print x)" {
		t.Fatalf("a line of several data is a call, got %s", got)
	}
}

func TestReadTypedIdentifier(t *testing.T) {
	items, ok := ListToSlice(readOne(t, `(a: i32 b)`))
	if !ok || len(items) != 2 {
		t.Fatalf("expected two parameters, got %d", len(items))
	}
	ti, ok := items[0].(TypedIdentifier)
	if !ok || ti.Ident.Name != "a" {
		t.Fatalf("expected a typed identifier for a")
	}
}

func TestReadIncomplete(t *testing.T) {
	for _, code := range []string{`(1 2`, `"open`, `#(1`, `'`, `#| open`} {
		_, err := Read("test", code)
		if !errors.Is(err, ErrIncompleteInput) {
			t.Fatalf("%s: expected incomplete input, got %v", code, err)
		}
	}
}

func TestReadErrors(t *testing.T) {
	for _, code := range []string{`)`, `(1 . )`, `#\nosuchchar`, `#u8(256)`} {
		_, err := Read("test", code)
		var readErr *ReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("%s: expected a read error, got %v", code, err)
		}
		if errors.Is(err, ErrIncompleteInput) {
			t.Fatalf("%s: must not be reported as incomplete", code)
		}
	}
}

func TestPrinterDisplay(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	v := evalString(t, rt, `(list "a" #\b 'c 1.5)`)
	if got := String(v); got != "(a b c 1.5)" {
		t.Fatalf("display form: got %s", got)
	}
	if got := Serialize(v); got != `("a" #\b c 1.5)` {
		t.Fatalf("write form: got %s", got)
	}
}

func TestPrinterCycles(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	v := evalString(t, rt, `(define l (list 1 2)) (set-cdr! (cdr l) l) l`)
	got := Serialize(v)
	if got != "(1 2 . ...)" {
		t.Fatalf("expected a cut cycle, got %s", got)
	}
	if !Equal(v, v) {
		t.Fatalf("a cyclic list must equal itself")
	}
}

func TestPrinterRecordsAndProcedures(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	if got := Serialize(evalString(t, rt, `(define (f) 1) f`)); got != "#<procedure f>" {
		t.Fatalf("unexpected procedure form %s", got)
	}
	if got := Serialize(evalString(t, rt, `(define-record-type <pt> (pt x) pt? (x pt-x)) (pt 1)`)); got != "#<pt x: 1>" {
		t.Fatalf("unexpected record form %s", got)
	}
}
