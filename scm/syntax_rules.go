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
import "sync/atomic"

var renameCounter uint64

// ellipsisMatch holds one binding map per repetition of an ellipsis pattern.
type ellipsisMatch []map[string]Scmer

type syntaxRule struct {
	pattern  Scmer // without the keyword position
	template Scmer
}

type syntaxRules struct {
	ellipsis string
	literals map[string]bool
	rules    []syntaxRule
	scope    *Scope
}

// renames maps template identifiers to their alias for one expansion.
type renames map[string]string

func (r renames) of(name string) string {
	if alias, ok := r[name]; ok {
		return alias
	}
	alias := fmt.Sprintf("%s#%d", name, atomic.AddUint64(&renameCounter, 1))
	r[name] = alias
	return alias
}

func (sr *syntaxRules) isEllipsis(v Scmer) bool {
	name, ok := plainName(v)
	return ok && sr.ellipsis != "" && name == sr.ellipsis
}

// splitSyntax returns the elements of a list-like node and its tail.
// Anything that is not a list is all tail.
func splitSyntax(v Scmer) ([]Scmer, Scmer) {
	switch x := v.(type) {
	case *BracketList:
		return x.Items, Nil
	case NilType:
		return nil, Nil
	case *Pair:
		var items []Scmer
		var tail Scmer = x
		for {
			p, ok := tail.(*Pair)
			if !ok {
				return items, tail
			}
			items = append(items, p.Car)
			tail = p.Cdr
		}
	}
	return nil, v
}

func (sr *syntaxRules) transform(name string, args []Scmer) Scmer {
	form := List(args...)
	for _, rule := range sr.rules {
		b := make(map[string]Scmer)
		if sr.match(rule.pattern, form, b) {
			return sr.expand(rule.template, b, make(renames))
		}
	}
	panic(&EvaluationError{Message: fmt.Sprintf("%s: no syntax rule matches %s", name, Serialize(datum(form, nil)))})
}

func (sr *syntaxRules) match(pattern, form Scmer, b map[string]Scmer) bool {
	switch p := pattern.(type) {
	case Symbol:
		switch {
		case p.Name == "_":
			return true
		case sr.literals[p.Name]:
			name, ok := plainName(form)
			return ok && name == p.Name
		}
		b[p.Name] = form
		return true
	case NilType:
		items, tail := splitSyntax(form)
		_, isNil := tail.(NilType)
		return len(items) == 0 && isNil
	case *Pair, *BracketList:
		return sr.matchList(pattern, form, b)
	case *Vector:
		v, ok := form.(*Vector)
		return ok && sr.match(List(p.Items...), List(v.Items...), b)
	}
	return Equal(pattern, datum(form, nil))
}

func (sr *syntaxRules) matchList(pattern, form Scmer, b map[string]Scmer) bool {
	pitems, ptail := splitSyntax(pattern)
	fitems, ftail := splitSyntax(form)
	e := -1
	for i := 0; i+1 < len(pitems); i++ {
		if sr.isEllipsis(pitems[i+1]) {
			e = i
			break
		}
	}
	if e < 0 {
		if len(fitems) < len(pitems) {
			return false
		}
		for i, p := range pitems {
			if !sr.match(p, fitems[i], b) {
				return false
			}
		}
		return sr.match(ptail, ListWithTail(fitems[len(pitems):], ftail), b)
	}

	before, repeated, after := pitems[:e], pitems[e], pitems[e+2:]
	if len(fitems) < len(before)+len(after) {
		return false
	}
	for i, p := range before {
		if !sr.match(p, fitems[i], b) {
			return false
		}
	}
	reps := fitems[len(before) : len(fitems)-len(after)]
	matches := make(ellipsisMatch, len(reps))
	for i, f := range reps {
		m := make(map[string]Scmer)
		if !sr.match(repeated, f, m) {
			return false
		}
		matches[i] = m
	}
	for _, v := range sr.patternVars(repeated, nil) {
		b[v] = matches
	}
	rest := fitems[len(fitems)-len(after):]
	for i, p := range after {
		if !sr.match(p, rest[i], b) {
			return false
		}
	}
	return sr.match(ptail, ftail, b)
}

func (sr *syntaxRules) patternVars(pattern Scmer, vars []string) []string {
	switch p := pattern.(type) {
	case Symbol:
		if p.Name != "_" && p.Name != sr.ellipsis && !sr.literals[p.Name] {
			vars = append(vars, p.Name)
		}
	case *Vector:
		for _, item := range p.Items {
			vars = sr.patternVars(item, vars)
		}
	case *Pair, *BracketList:
		items, tail := splitSyntax(p)
		for _, item := range items {
			vars = sr.patternVars(item, vars)
		}
		vars = sr.patternVars(tail, vars)
	}
	return vars
}

// templateVars lists the pattern variables a template uses that are bound
// to ellipsis matches at this level.
func (sr *syntaxRules) templateVars(template Scmer, b map[string]Scmer, vars []string) []string {
	switch t := template.(type) {
	case Symbol:
		if _, ok := b[t.Name].(ellipsisMatch); ok {
			for _, v := range vars {
				if v == t.Name {
					return vars
				}
			}
			vars = append(vars, t.Name)
		}
	case *Vector:
		for _, item := range t.Items {
			vars = sr.templateVars(item, b, vars)
		}
	case *StatementBlock:
		for _, item := range t.Forms {
			vars = sr.templateVars(item, b, vars)
		}
	case *Quote:
		vars = sr.templateVars(t.Value, b, vars)
	case *Pair, *BracketList:
		items, tail := splitSyntax(t)
		for _, item := range items {
			vars = sr.templateVars(item, b, vars)
		}
		vars = sr.templateVars(tail, b, vars)
	}
	return vars
}

func (sr *syntaxRules) expand(template Scmer, b map[string]Scmer, r renames) Scmer {
	switch t := template.(type) {
	case Symbol:
		if v, ok := b[t.Name]; ok {
			if _, multi := v.(ellipsisMatch); multi {
				errorf("pattern variable %s is used without ellipsis", t.Name)
			}
			return v
		}
		return &SyntaxBinding{Symbol: t, Scope: sr.scope, Alias: r.of(t.Name)}
	case *Pair:
		if sr.isEllipsis(t.Car) {
			// (... template) inserts the ellipsis literally
			if inner, ok := t.Cdr.(*Pair); ok {
				escaped := *sr
				escaped.ellipsis = ""
				return escaped.expand(inner.Car, b, r)
			}
		}
		items, tail := splitSyntax(t)
		return ListWithTail(sr.expandItems(items, b, r), sr.expand(tail, b, r))
	case *BracketList:
		return &BracketList{sr.expandItems(t.Items, b, r)}
	case *Vector:
		return &Vector{sr.expandItems(t.Items, b, r)}
	case *StatementBlock:
		return &StatementBlock{sr.expandItems(t.Forms, b, r)}
	case *Quote:
		return &Quote{sr.expand(t.Value, b, r)}
	case *Quasiquote:
		return &Quasiquote{sr.expand(t.Value, b, r)}
	case *Unquote:
		return &Unquote{sr.expand(t.Value, b, r), t.Splicing}
	}
	return template
}

func (sr *syntaxRules) expandItems(items []Scmer, b map[string]Scmer, r renames) []Scmer {
	out := make([]Scmer, 0, len(items))
	for i := 0; i < len(items); i++ {
		sub := items[i]
		depth := 0
		for i+1 < len(items) && sr.isEllipsis(items[i+1]) {
			depth++
			i++
		}
		if depth == 0 {
			out = append(out, sr.expand(sub, b, r))
		} else {
			out = append(out, sr.expandEllipsis(sub, depth, b, r)...)
		}
	}
	return out
}

func (sr *syntaxRules) expandEllipsis(sub Scmer, depth int, b map[string]Scmer, r renames) []Scmer {
	vars := sr.templateVars(sub, b, nil)
	if len(vars) == 0 {
		errorf("ellipsis follows a template without pattern variables: %s", Serialize(datum(sub, nil)))
	}
	n := len(b[vars[0]].(ellipsisMatch))
	for _, v := range vars[1:] {
		if len(b[v].(ellipsisMatch)) != n {
			errorf("pattern variables %s and %s repeat a different number of times", vars[0], v)
		}
	}
	var out []Scmer
	for i := 0; i < n; i++ {
		iteration := make(map[string]Scmer, len(b))
		for k, v := range b {
			iteration[k] = v
		}
		for _, v := range vars {
			iteration[v] = b[v].(ellipsisMatch)[i][v]
		}
		if depth > 1 {
			out = append(out, sr.expandEllipsis(sub, depth-1, iteration, r)...)
		} else {
			out = append(out, sr.expand(sub, iteration, r))
		}
	}
	return out
}

// syntaxRulesMacro reads (syntax-rules [ellipsis] (literal...) (pattern template)...).
func syntaxRulesMacro(rt *Runtime, scope *Scope, a []Scmer) Scmer {
	sr := &syntaxRules{ellipsis: "...", literals: make(map[string]bool), scope: scope}
	if name, ok := plainName(a[0]); ok {
		sr.ellipsis = name
		a = a[1:]
		if len(a) == 0 {
			errorf("syntax-rules: missing literal list")
		}
	}
	for _, l := range MustList(a[0], "syntax-rules") {
		name, ok := plainName(l)
		if !ok {
			errorf("syntax-rules: invalid literal %s", Serialize(l))
		}
		sr.literals[name] = true
	}
	for _, rule := range a[1:] {
		parts := MustList(rule, "syntax-rules")
		if len(parts) != 2 {
			errorf("syntax-rules: a rule is (pattern template), got %s", Serialize(rule))
		}
		pattern := datum(parts[0], nil)
		p, ok := pattern.(*Pair)
		if !ok {
			errorf("syntax-rules: pattern must be a list, got %s", Serialize(pattern))
		}
		sr.rules = append(sr.rules, syntaxRule{p.Cdr, parts[1]})
	}
	st := &SyntaxTransformer{Name: "syntax-rules", Scope: scope}
	st.Transform = func(args []Scmer) Scmer {
		return sr.transform(st.Name, args)
	}
	return st
}

func mustTransformer(v Scmer, name string) *SyntaxTransformer {
	st, ok := v.(*SyntaxTransformer)
	if !ok {
		errorf("%s: transformer expected, got %s", name, Serialize(v))
	}
	st.Name = name
	return st
}

func letSyntax(who string, rec bool) Macro {
	return func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
		frame := scope.mustChild()
		env := scope
		if rec {
			env = frame
		}
		for _, b := range bindingList(a[0], who) {
			name, spec := binding(b, who)
			must(frame.Define(name, mustTransformer(rt.Eval(env, spec), name)))
		}
		return rt.evalBody(frame, bodyForms(a[1:]))
	}
}

func init_syntax_rules() {
	DeclareTitle("Macros")

	Declare(libBase, &Declaration{
		"define-syntax", "binds a keyword to a syntax transformer",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"keyword", "symbol", "name of the macro"},
			DeclarationParameter{"transformer", "any", "usually a syntax-rules form"},
		}, "nil",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			name := mustSymbol(a[0], "define-syntax")
			must(scope.Define(name, mustTransformer(rt.Eval(scope, a[1]), name)))
			return Nil
		}),
	})
	Declare(libBase, &Declaration{
		"let-syntax", "binds keywords to transformers for the body",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"bindings", "list", "((keyword transformer)...)"},
			DeclarationParameter{"body...", "any", "body forms"},
		}, "any",
		Macro(letSyntax("let-syntax", false)),
	})
	Declare(libBase, &Declaration{
		"letrec-syntax", "like let-syntax; the transformers can refer to each other",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"bindings", "list", "((keyword transformer)...)"},
			DeclarationParameter{"body...", "any", "body forms"},
		}, "any",
		Macro(letSyntax("letrec-syntax", true)),
	})
	Declare(libBase, &Declaration{
		"syntax-rules", "creates a pattern based transformer. Patterns may use _, literals and trailing or inner ellipses.",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"literals", "list", "identifiers matched literally; an optional custom ellipsis may precede"},
			DeclarationParameter{"rules...", "list", "(pattern template)"},
		}, "func",
		Macro(syntaxRulesMacro),
	})
	Declare(libBase, &Declaration{
		"syntax-error", "reports an error while expanding a macro",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"message", "string", "message"},
			DeclarationParameter{"args...", "any", "syntax to show"},
		}, "nil",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			panic(&ErrorObject{Message: String(a[0]), Irritants: append([]Scmer{}, a[1:]...)})
		}),
	})
}
