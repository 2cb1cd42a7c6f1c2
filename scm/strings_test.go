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

func TestStrings(t *testing.T) {
	expectSerialized(t, `(string-length "héllo")`, "5")
	expectSerialized(t, `(string-ref "héllo" 1)`, `#\é`)
	expectSerialized(t, `(substring "hello world" 6 11)`, `"world"`)
	expectSerialized(t, `(string-append "a" "b" "c")`, `"abc"`)
	expectSerialized(t, `(string #\a #\b)`, `"ab"`)
	expectSerialized(t, `(make-string 3 #\z)`, `"zzz"`)
	expectSerialized(t, `(string->list "abc")`, `(#\a #\b #\c)`)
	expectSerialized(t, `(list->string (list #\x #\y))`, `"xy"`)
	expectSerialized(t, `(string->symbol "foo")`, "foo")
	expectSerialized(t, `(symbol->string 'bar)`, `"bar"`)
	expectSerialized(t, `(string-map char-upcase "abc")`, `"ABC"`)
	expectSerialized(t, `(string-copy "hello" 1 3)`, `"el"`)
}

func TestStringComparisons(t *testing.T) {
	expectSerialized(t, `(string=? "a" "a" "a")`, "#t")
	expectSerialized(t, `(string<? "apple" "banana")`, "#t")
	expectSerialized(t, `(string-ci=? "Hello" "hELLO")`, "#t")
	expectSerialized(t, `(char<? #\a #\b #\c)`, "#t")
	expectSerialized(t, `(char-ci=? #\a #\A)`, "#t")
	expectSerialized(t, `(string-collate<? "de" "Äpfel" "Birnen")`, "#t")
}

func TestCharacters(t *testing.T) {
	expectSerialized(t, `(char->integer #\A)`, "65")
	expectSerialized(t, `(integer->char 955)`, `#\λ`)
	expectSerialized(t, `(list (char-alphabetic? #\a) (char-numeric? #\1) (char-whitespace? #\space))`, "(#t #t #t)")
	expectSerialized(t, `(digit-value #\7)`, "7")
	expectSerialized(t, `(digit-value #\a)`, "#f")
	expectSerialized(t, `(string-upcase "straße")`, `"STRASSE"`)
	expectSerialized(t, `(string-foldcase "ΣΑΣ")`, `"σασ"`)
}

func TestStringHelpers(t *testing.T) {
	expectSerialized(t, `(string-split "a,b,c" ",")`, `("a" "b" "c")`)
	expectSerialized(t, `(string-contains? "haystack" "st")`, "#t")
	expectSerialized(t, `(string-join (list "a" "b" "c") "-")`, `"a-b-c"`)
}

func TestRegex(t *testing.T) {
	expectSerialized(t, `(regex-match? #/^[0-9]+$/ "12345")`, "#t")
	expectSerialized(t, `(regex-match? "^a" "banana")`, "#f")
	expectSerialized(t, `(regex-find #/(\w+)@(\w+)/ "mail bob@example now")`, `("bob@example" "bob" "example")`)
	expectSerialized(t, `(regex-replace #/o/ "foo" "0")`, `"f00"`)
	expectSerialized(t, `(regex-match? #/ABC/i "abc")`, "#t")
}

func TestStringIndexErrors(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	if err := evalError(t, rt, `(string-ref "abc" 5)`); !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected an evaluation error, got %v", err)
	}
	if err := evalError(t, rt, `(string-length 5)`); !errors.Is(err, ErrArgumentType) {
		t.Fatalf("expected a type mismatch, got %v", err)
	}
}
