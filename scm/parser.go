/*
Copyright (C) 2023-2026  Carl-Philip Hänsch
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
/*
 * A minimal Scheme interpreter, as seen in lis.py and SICP
 * http://norvig.com/lispy.html
 * http://mitpress.mit.edu/sicp/full-text/sicp/book/node77.html
 *
 * Pieter Kelchtermans 2013
 * LICENSE: WTFPL 2.0
 */

package scm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrIncompleteInput marks read errors caused by input that ended inside a datum.
var ErrIncompleteInput = errors.New("incomplete input")

type SourceInfo struct {
	source string
	line   int
	col    int
}

func (source_info SourceInfo) String() string {
	return fmt.Sprintf("%s:%d:%d", source_info.source, source_info.line, source_info.col)
}

// ReadError is a syntax error in program text.
type ReadError struct {
	Pos        SourceInfo
	Message    string
	Incomplete bool
}

func (e *ReadError) Error() string {
	return e.Pos.String() + ": " + e.Message
}

func (e *ReadError) Unwrap() error {
	if e.Incomplete {
		return ErrIncompleteInput
	}
	return nil
}

type tokenKind int

const (
	tokAtom tokenKind = iota
	tokOpen           // ( [ { #( #u8(
	tokClose          // ) ] }
	tokQuote          // ' ` , ,@
	tokDot
	tokDatumComment // #;
	tokNewline      // only significant inside { }
)

type token struct {
	kind  tokenKind
	text  string
	value Scmer
	pos   SourceInfo
}

// Read parses program text into a Program.
func Read(source, s string) (program *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*ReadError); ok {
				program, err = nil, re
				return
			}
			panic(r)
		}
	}()
	tokens := tokenize(source, s)
	program = &Program{Source: source}
	for {
		tokens.skipNewlines()
		if tokens.done() {
			return program, nil
		}
		if form, ok := readFrom(tokens); ok {
			program.Forms = append(program.Forms, form)
		}
	}
}

// ReadDatum parses exactly one datum, e.g. for string->datum style helpers.
func ReadDatum(source, s string) (Scmer, error) {
	program, err := Read(source, s)
	if err != nil {
		return nil, err
	}
	if len(program.Forms) != 1 {
		return nil, &ReadError{Pos: SourceInfo{source, 1, 1}, Message: fmt.Sprintf("expected one datum, got %d", len(program.Forms))}
	}
	return program.Forms[0], nil
}

type tokenStream struct {
	tokens []token
	end    SourceInfo
}

func (t *tokenStream) done() bool { return len(t.tokens) == 0 }

func (t *tokenStream) peek() token {
	if len(t.tokens) == 0 {
		panic(&ReadError{Pos: t.end, Message: "unexpected end of input", Incomplete: true})
	}
	return t.tokens[0]
}

func (t *tokenStream) pop() token {
	tok := t.peek()
	t.tokens = t.tokens[1:]
	return tok
}

func (t *tokenStream) skipNewlines() {
	for len(t.tokens) > 0 && t.tokens[0].kind == tokNewline {
		t.tokens = t.tokens[1:]
	}
}

// skipTrivia drops newlines and #; datum comments in front of the next token.
func (t *tokenStream) skipTrivia() {
	for {
		t.skipNewlines()
		if len(t.tokens) == 0 || t.tokens[0].kind != tokDatumComment {
			return
		}
		t.pop()
		readFrom(t)
	}
}

func closer(open string) string {
	switch open {
	case "[":
		return "]"
	case "{":
		return "}"
	}
	return ")"
}

// Syntactic Analysis
//
// readFrom reads one datum. ok is false when only a datum comment was consumed.
func readFrom(tokens *tokenStream) (expression Scmer, ok bool) {
	tokens.skipNewlines()
	token := tokens.pop()
	switch token.kind {
	case tokAtom:
		if sym, isSym := token.value.(Symbol); isSym && !sym.Escaped && len(sym.Name) > 1 && strings.HasSuffix(sym.Name, ":") {
			// a: int annotates a parameter
			tokens.skipTrivia()
			typ, _ := readFrom(tokens)
			return TypedIdentifier{NewSymbol(strings.TrimSuffix(sym.Name, ":")), typ}, true
		}
		return token.value, true
	case tokDatumComment:
		readFrom(tokens)
		return nil, false
	case tokQuote:
		tokens.skipTrivia()
		quoted, _ := readFrom(tokens)
		switch token.text {
		case "'":
			return &Quote{quoted}, true
		case "`":
			return &Quasiquote{quoted}, true
		case ",":
			return &Unquote{quoted, false}, true
		}
		return &Unquote{quoted, true}, true
	case tokOpen:
		switch token.text {
		case "(":
			return readList(tokens, token), true
		case "[":
			return bracketNode(readItems(tokens, token)), true
		case "{":
			return readStatements(tokens, token), true
		case "#(":
			return &Vector{readItems(tokens, token)}, true
		case "#u8(":
			items := readItems(tokens, token)
			b := make([]byte, len(items))
			for i, item := range items {
				if !typeNumber.Matches(item) || !IsExactInteger(toNumber(item, "#u8")) || ToInt(item) < 0 || ToInt(item) > 255 {
					panic(&ReadError{Pos: token.pos, Message: "bytevector literals only hold integers 0..255"})
				}
				b[i] = byte(ToInt(item))
			}
			return &Bytevector{b}, true
		}
	case tokDot:
		panic(&ReadError{Pos: token.pos, Message: "unexpected ."})
	case tokClose:
		panic(&ReadError{Pos: token.pos, Message: "unexpected " + token.text})
	}
	panic(&ReadError{Pos: token.pos, Message: "unexpected token " + token.text})
}

func readItems(tokens *tokenStream, open token) []Scmer {
	items := make([]Scmer, 0)
	want := closer(open.text)
	for {
		tokens.skipTrivia()
		if tokens.done() {
			panic(&ReadError{Pos: open.pos, Message: "expecting matching " + want, Incomplete: true})
		}
		next := tokens.peek()
		if next.kind == tokClose {
			tokens.pop()
			if next.text != want {
				panic(&ReadError{Pos: next.pos, Message: "expecting " + want + ", got " + next.text})
			}
			return items
		}
		if next.kind == tokDot {
			panic(&ReadError{Pos: next.pos, Message: "unexpected ."})
		}
		if item, ok := readFrom(tokens); ok {
			items = append(items, item)
		}
	}
}

func readList(tokens *tokenStream, open token) Scmer {
	items := make([]Scmer, 0)
	for {
		tokens.skipTrivia()
		if tokens.done() {
			panic(&ReadError{Pos: open.pos, Message: "expecting matching )", Incomplete: true})
		}
		next := tokens.peek()
		switch next.kind {
		case tokClose:
			tokens.pop()
			if next.text != ")" {
				panic(&ReadError{Pos: next.pos, Message: "expecting ), got " + next.text})
			}
			return List(items...)
		case tokDot:
			tokens.pop()
			if len(items) == 0 {
				panic(&ReadError{Pos: next.pos, Message: "dotted list needs a head"})
			}
			tokens.skipTrivia()
			tail, _ := readFrom(tokens)
			tokens.skipTrivia()
			if end := tokens.pop(); end.kind != tokClose || end.text != ")" {
				panic(&ReadError{Pos: end.pos, Message: "expecting ) after dotted tail"})
			}
			return ListWithTail(items, tail)
		}
		if item, ok := readFrom(tokens); ok {
			items = append(items, item)
		}
	}
}

// bracketNode builds [k => v ...] association arrays and plain bracket lists.
func bracketNode(items []Scmer) Scmer {
	if len(items) == 0 || len(items)%3 != 0 {
		return &BracketList{items}
	}
	result := &AssociativeArray{}
	for i := 0; i < len(items); i += 3 {
		if sym, ok := items[i+1].(Symbol); !ok || sym.Name != "=>" {
			return &BracketList{items}
		}
		result.Keys = append(result.Keys, items[i])
		result.Values = append(result.Values, items[i+2])
	}
	return result
}

// readStatements reads { ... }: one statement per line. A line of several
// data that starts with a name is a call, e.g. { def x 4 } is (def x 4).
func readStatements(tokens *tokenStream, open token) Scmer {
	block := &StatementBlock{Forms: make([]Scmer, 0)}
	for {
		tokens.skipNewlines()
		if tokens.done() {
			panic(&ReadError{Pos: open.pos, Message: "expecting matching }", Incomplete: true})
		}
		line := make([]Scmer, 0)
		start := tokens.peek()
		for !tokens.done() {
			next := tokens.peek()
			if next.kind == tokNewline || next.kind == tokClose {
				break
			}
			if item, ok := readFrom(tokens); ok {
				line = append(line, item)
			}
		}
		switch {
		case len(line) == 1:
			block.Forms = append(block.Forms, line[0])
		case len(line) > 1:
			if _, ok := line[0].(Symbol); !ok {
				panic(&ReadError{Pos: start.pos, Message: "a statement with several expressions must start with a name"})
			}
			block.Forms = append(block.Forms, List(line...))
		}
		if tokens.done() {
			continue
		}
		if next := tokens.peek(); next.kind == tokClose {
			tokens.pop()
			if next.text != "}" {
				panic(&ReadError{Pos: next.pos, Message: "expecting }, got " + next.text})
			}
			return block
		}
	}
}

// Lexical Analysis
func tokenize(source, s string) *tokenStream {
	runes := []rune(s)
	result := &tokenStream{tokens: make([]token, 0)}
	line := 1
	col := 1
	i := 0
	pos := func() SourceInfo { return SourceInfo{source, line, col} }
	advance := func(n int) {
		for ; n > 0 && i < len(runes); n-- {
			if runes[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
		}
	}
	at := func(offset int) rune {
		if i+offset < len(runes) {
			return runes[i+offset]
		}
		return 0
	}
	emit := func(kind tokenKind, text string, value Scmer, p SourceInfo) {
		result.tokens = append(result.tokens, token{kind, text, value, p})
	}
	for i < len(runes) {
		ch := runes[i]
		start := pos()
		switch {
		case ch == '\n':
			if n := len(result.tokens); n == 0 || result.tokens[n-1].kind != tokNewline {
				emit(tokNewline, "\n", nil, start)
			}
			advance(1)
		case unicode.IsSpace(ch):
			advance(1)
		case ch == ';':
			for i < len(runes) && runes[i] != '\n' {
				advance(1)
			}
		case ch == '#' && at(1) == '|':
			depth := 0
			for {
				if i >= len(runes) {
					panic(&ReadError{Pos: start, Message: "unterminated block comment", Incomplete: true})
				}
				if runes[i] == '#' && at(1) == '|' {
					depth++
					advance(2)
				} else if runes[i] == '|' && at(1) == '#' {
					depth--
					advance(2)
					if depth == 0 {
						break
					}
				} else {
					advance(1)
				}
			}
		case ch == '#' && at(1) == ';':
			emit(tokDatumComment, "#;", nil, start)
			advance(2)
		case ch == '(' || ch == '[' || ch == '{':
			emit(tokOpen, string(ch), nil, start)
			advance(1)
		case ch == ')' || ch == ']' || ch == '}':
			emit(tokClose, string(ch), nil, start)
			advance(1)
		case ch == '#' && at(1) == '(':
			emit(tokOpen, "#(", nil, start)
			advance(2)
		case ch == '#' && at(1) == 'u' && at(2) == '8' && at(3) == '(':
			emit(tokOpen, "#u8(", nil, start)
			advance(4)
		case ch == '\'' || ch == '`':
			emit(tokQuote, string(ch), nil, start)
			advance(1)
		case ch == ',':
			if at(1) == '@' {
				emit(tokQuote, ",@", nil, start)
				advance(2)
			} else {
				emit(tokQuote, ",", nil, start)
				advance(1)
			}
		case ch == '"':
			advance(1)
			text := readEscaped(runes, &i, '"', start, advance)
			emit(tokAtom, text, text, start)
		case ch == '|':
			advance(1)
			name := readEscaped(runes, &i, '|', start, advance)
			emit(tokAtom, name, Symbol{Name: name, Escaped: true}, start)
		case ch == '#' && at(1) == '\\':
			advance(2)
			if i >= len(runes) {
				panic(&ReadError{Pos: start, Message: "unterminated character literal", Incomplete: true})
			}
			first := i
			advance(1) // the character itself may be a delimiter, e.g. #\(
			for i < len(runes) && !isDelimiter(runes[i]) {
				advance(1)
			}
			emit(tokAtom, string(runes[first:i]), parseCharacter(string(runes[first:i]), start), start)
		case ch == '#' && at(1) == '/':
			advance(2)
			var pattern strings.Builder
			for {
				if i >= len(runes) {
					panic(&ReadError{Pos: start, Message: "unterminated regex literal", Incomplete: true})
				}
				if runes[i] == '\\' && at(1) == '/' {
					pattern.WriteRune('/')
					advance(2)
					continue
				}
				if runes[i] == '/' {
					advance(1)
					break
				}
				pattern.WriteRune(runes[i])
				advance(1)
			}
			flagStart := i
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				advance(1)
			}
			emit(tokAtom, pattern.String(), &RegexLiteral{pattern.String(), string(runes[flagStart:i])}, start)
		default:
			first := i
			for i < len(runes) && !isDelimiter(runes[i]) {
				advance(1)
			}
			if i == first {
				panic(&ReadError{Pos: start, Message: "unexpected character " + strconv.QuoteRune(ch)})
			}
			text := string(runes[first:i])
			if text == "." {
				emit(tokDot, text, nil, start)
			} else {
				emit(tokAtom, text, parseAtom(text, start), start)
			}
		}
	}
	result.end = SourceInfo{source, line, col}
	return result
}

func isDelimiter(ch rune) bool {
	return unicode.IsSpace(ch) || strings.ContainsRune("()[]{}\";", ch)
}

// readEscaped consumes a "..." or |...| body after the opening quote.
func readEscaped(runes []rune, i *int, quote rune, start SourceInfo, advance func(int)) string {
	var b strings.Builder
	for {
		if *i >= len(runes) {
			panic(&ReadError{Pos: start, Message: "unterminated " + string(quote), Incomplete: true})
		}
		ch := runes[*i]
		if ch == quote {
			advance(1)
			return b.String()
		}
		if ch != '\\' {
			b.WriteRune(ch)
			advance(1)
			continue
		}
		advance(1)
		if *i >= len(runes) {
			continue
		}
		esc := runes[*i]
		advance(1)
		switch esc {
		case 'a':
			b.WriteRune('\a')
		case 'b':
			b.WriteRune('\b')
		case 'f':
			b.WriteRune('\f')
		case 'n':
			b.WriteRune('\n')
		case 'r':
			b.WriteRune('\r')
		case 't':
			b.WriteRune('\t')
		case 'v':
			b.WriteRune('\v')
		case '0':
			b.WriteRune(0)
		case '\\', '"', '|':
			b.WriteRune(esc)
		case 'x', 'u':
			digits := make([]rune, 0, 6)
			for *i < len(runes) && strings.ContainsRune("0123456789abcdefABCDEF", runes[*i]) && (esc == 'x' || len(digits) < 4) {
				digits = append(digits, runes[*i])
				advance(1)
			}
			if esc == 'x' {
				if *i >= len(runes) || runes[*i] != ';' {
					panic(&ReadError{Pos: start, Message: "\\x escapes must end in a semicolon"})
				}
				advance(1)
			}
			code, err := strconv.ParseUint(string(digits), 16, 32)
			if err != nil {
				panic(&ReadError{Pos: start, Message: "invalid hex escape \\" + string(esc) + string(digits)})
			}
			b.WriteRune(rune(code))
		default:
			if unicode.IsSpace(esc) {
				// line continuation: \ <spaces> newline <spaces>
				if esc != '\n' {
					for *i < len(runes) && runes[*i] != '\n' && unicode.IsSpace(runes[*i]) {
						advance(1)
					}
					advance(1)
				}
				for *i < len(runes) && runes[*i] != '\n' && unicode.IsSpace(runes[*i]) {
					advance(1)
				}
				continue
			}
			panic(&ReadError{Pos: start, Message: "unknown string escape \\" + string(esc)})
		}
	}
}

var characterNames = map[string]rune{
	"alarm":     '\a',
	"backspace": '\b',
	"delete":    0x7f,
	"escape":    0x1b,
	"newline":   '\n',
	"null":      0,
	"return":    '\r',
	"space":     ' ',
	"tab":       '\t',
}

func parseCharacter(text string, pos SourceInfo) Scmer {
	runes := []rune(text)
	if len(runes) == 1 {
		return Char(runes[0])
	}
	if r, ok := characterNames[strings.ToLower(text)]; ok {
		return Char(r)
	}
	if runes[0] == 'x' || runes[0] == 'U' || runes[0] == 'u' {
		if code, err := strconv.ParseUint(string(runes[1:]), 16, 32); err == nil {
			return Char(rune(code))
		}
	}
	panic(&ReadError{Pos: pos, Message: "unknown character #\\" + text})
}

// parseAtom classifies a bare token: boolean, number or symbol.
func parseAtom(text string, pos SourceInfo) Scmer {
	switch text {
	case "#t", "#true", "true":
		return true
	case "#f", "#false", "false":
		return false
	}
	radix := 10
	exactness := byte(0)
	s := strings.ReplaceAll(text, "_", "")
	for len(s) >= 2 && s[0] == '#' {
		switch unicode.ToLower(rune(s[1])) {
		case 'x':
			radix = 16
		case 'b':
			radix = 2
		case 'o':
			radix = 8
		case 'd':
			radix = 10
		case 'e':
			exactness = 'e'
		case 'i':
			exactness = 'i'
		default:
			panic(&ReadError{Pos: pos, Message: "unknown syntax " + text})
		}
		s = s[2:]
	}
	n, ok := ParseNumber(s, radix)
	if !ok {
		if strings.HasPrefix(text, "#") {
			panic(&ReadError{Pos: pos, Message: "unknown syntax " + text})
		}
		return NewSymbol(text)
	}
	switch exactness {
	case 'e':
		num := toNumber(n, "reader")
		if !IsExactInteger(num) {
			return NewBigInt(toBig(num, "reader"))
		}
	case 'i':
		return NewFloat(ToFloat(n))
	}
	return n
}
