/*
Copyright (C) 2023  Carl-Philip Hänsch
Copyright (C) 2013  Pieter Kelchtermans (originally licensed unter WTFPL 2.0)

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

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nukata/goarith"
	regexp "github.com/wasilibs/go-re2"
)

// String renders v the way display does: strings and chars are written raw.
func String(v Scmer) string {
	p := printer{seen: make(map[any]bool)}
	p.print(v)
	return p.b.String()
}

// Serialize renders v the way write does, so that the reader gets it back.
func Serialize(v Scmer) string {
	p := printer{write: true, seen: make(map[any]bool)}
	p.print(v)
	return p.b.String()
}

// printer keeps the containers on the current path; a container met again
// is a cycle and prints as "...".
type printer struct {
	b     strings.Builder
	write bool
	seen  map[any]bool
}

var characterSpellings = map[rune]string{
	'\a': "alarm",
	'\b': "backspace",
	0x7f: "delete",
	0x1b: "escape",
	'\n': "newline",
	0:    "null",
	'\r': "return",
	' ':  "space",
	'\t': "tab",
}

func (p *printer) enter(container any) bool {
	if p.seen[container] {
		p.b.WriteString("...")
		return false
	}
	p.seen[container] = true
	return true
}

func (p *printer) leave(container any) { delete(p.seen, container) }

func (p *printer) items(open string, items []Scmer, close string) {
	p.b.WriteString(open)
	for i, x := range items {
		if i != 0 {
			p.b.WriteByte(' ')
		}
		p.print(x)
	}
	p.b.WriteString(close)
}

func (p *printer) print(v Scmer) {
	switch x := v.(type) {
	case nil:
		p.b.WriteString("#<unspecified>")
	case NilType:
		p.b.WriteString("()")
	case bool:
		if x {
			p.b.WriteString("#t")
		} else {
			p.b.WriteString("#f")
		}
	case goarith.Number:
		p.b.WriteString(NumberString(x, 10))
	case string:
		if p.write {
			p.quoted(x, '"')
		} else {
			p.b.WriteString(x)
		}
	case Char:
		if !p.write {
			p.b.WriteRune(rune(x))
		} else if name, ok := characterSpellings[rune(x)]; ok {
			p.b.WriteString("#\\" + name)
		} else if !unicode.IsPrint(rune(x)) {
			fmt.Fprintf(&p.b, "#\\x%x", rune(x))
		} else {
			p.b.WriteString("#\\" + string(rune(x)))
		}
	case Symbol:
		if p.write && (x.Escaped || x.Name == "" || strings.IndexFunc(x.Name, isDelimiter) >= 0 || strings.ContainsRune(x.Name, '|')) {
			p.quoted(x.Name, '|')
		} else {
			p.b.WriteString(x.Name)
		}
	case *Pair:
		p.pair(x)
	case *Vector:
		if p.enter(x) {
			p.items("#(", x.Items, ")")
			p.leave(x)
		}
	case *Bytevector:
		p.b.WriteString("#u8(")
		for i, c := range x.Bytes {
			if i != 0 {
				p.b.WriteByte(' ')
			}
			fmt.Fprint(&p.b, c)
		}
		p.b.WriteByte(')')
	case *Values:
		p.items("", x.Items, "")
	case *Program:
		for i, form := range x.Forms {
			if i != 0 {
				p.b.WriteByte('\n')
			}
			p.print(form)
		}
	case *Quote:
		p.b.WriteByte('\'')
		p.print(x.Value)
	case *Quasiquote:
		p.b.WriteByte('`')
		p.print(x.Value)
	case *Unquote:
		if x.Splicing {
			p.b.WriteString(",@")
		} else {
			p.b.WriteByte(',')
		}
		p.print(x.Value)
	case *BracketList:
		p.items("[", x.Items, "]")
	case *AssociativeArray:
		p.b.WriteByte('[')
		for i, k := range x.Keys {
			if i != 0 {
				p.b.WriteByte(' ')
			}
			p.print(k)
			p.b.WriteString(" => ")
			p.print(x.Values[i])
		}
		p.b.WriteByte(']')
	case *PairwiseBlock:
		p.b.WriteByte('[')
		for i, pair := range x.Pairs {
			if i != 0 {
				p.b.WriteByte(' ')
			}
			p.print(pair.Car)
			p.b.WriteByte(' ')
			p.print(pair.Cdr.(*Pair).Car)
		}
		p.b.WriteByte(']')
	case *StatementBlock:
		p.items("{ ", x.Forms, " }")
	case *RegexLiteral:
		p.b.WriteString("#/" + strings.ReplaceAll(x.Pattern, "/", "\\/") + "/" + x.Flags)
	case *regexp.Regexp:
		p.b.WriteString("#/" + strings.ReplaceAll(x.String(), "/", "\\/") + "/")
	case *SyntaxBinding:
		p.print(x.Symbol)
	case AuxiliarySyntax:
		p.b.WriteString(x.Name)
	case TypedIdentifier:
		p.print(x.Ident)
		p.b.WriteString(": ")
		p.print(x.Type)
	case *RecordInstance:
		if p.enter(x) {
			p.b.WriteString("#<" + x.Type.Name)
			for i, f := range x.Type.Fields {
				p.b.WriteString(" " + f + ": ")
				p.print(x.Values[i])
			}
			p.b.WriteByte('>')
			p.leave(x)
		}
	case *Builtin:
		p.b.WriteString("#<procedure " + x.Name + ">")
	case *CaseLambda:
		if x.Name == "" {
			p.b.WriteString("#<procedure>")
		} else {
			p.b.WriteString("#<procedure " + x.Name + ">")
		}
	case func(...Scmer) Scmer:
		p.b.WriteString("#<procedure>")
	case Macro:
		p.b.WriteString("#<syntax>")
	case *SyntaxTransformer:
		p.b.WriteString("#<syntax " + x.Name + ">")
	case *Continuation:
		p.b.WriteString("#<continuation>")
	case *Parameter:
		p.b.WriteString("#<parameter>")
	case *Scope:
		p.b.WriteString("#<environment>")
	case *Library:
		p.b.WriteString("#<library " + x.Name.String() + ">")
	case *ErrorObject:
		p.b.WriteString("#<error ")
		p.quoted(x.Message, '"')
		for _, irritant := range x.Irritants {
			p.b.WriteByte(' ')
			p.print(irritant)
		}
		p.b.WriteByte('>')
	case *Condition:
		p.print(x.Payload)
	case error:
		p.b.WriteString("#<error " + x.Error() + ">")
	case fmt.Stringer:
		p.b.WriteString(x.String())
	default:
		fmt.Fprint(&p.b, x)
	}
}

// pair prints proper and improper lists; the cdr chain is walked iteratively.
func (p *printer) pair(x *Pair) {
	if !p.enter(x) {
		return
	}
	entered := []*Pair{x}
	p.b.WriteByte('(')
	p.print(x.Car)
	var rest Scmer = x.Cdr
	for {
		next, ok := rest.(*Pair)
		if !ok {
			break
		}
		p.b.WriteByte(' ')
		if p.seen[next] {
			p.b.WriteString(". ...")
			rest = Nil
			break
		}
		p.seen[next] = true
		entered = append(entered, next)
		p.print(next.Car)
		rest = next.Cdr
	}
	if _, isNil := rest.(NilType); !isNil {
		p.b.WriteString(" . ")
		p.print(rest)
	}
	p.b.WriteByte(')')
	for _, e := range entered {
		p.leave(e)
	}
}

func (p *printer) quoted(s string, quote rune) {
	p.b.WriteRune(quote)
	for _, r := range s {
		switch r {
		case quote, '\\':
			p.b.WriteByte('\\')
			p.b.WriteRune(r)
		case '\n':
			p.b.WriteString("\\n")
		case '\r':
			p.b.WriteString("\\r")
		case '\t':
			p.b.WriteString("\\t")
		default:
			if unicode.IsPrint(r) || r == ' ' {
				p.b.WriteRune(r)
			} else {
				fmt.Fprintf(&p.b, "\\x%x;", r)
			}
		}
	}
	p.b.WriteRune(quote)
}
