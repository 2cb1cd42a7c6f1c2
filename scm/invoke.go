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

// Macro receives its argument syntax unevaluated, plus the calling scope.
// It may return a *TailCall for its tail position.
type Macro func(rt *Runtime, scope *Scope, args []Scmer) Scmer

// SyntaxTransformer is a hygienic macro: it maps argument syntax to a
// replacement node which is then evaluated at the call site.
type SyntaxTransformer struct {
	Name      string
	Scope     *Scope
	Transform func(args []Scmer) Scmer
}

// Invokable is implemented by callables that need the runtime: closures,
// case-lambda, escape continuations, parameter objects and runtime builtins.
type Invokable interface {
	Invoke(rt *Runtime, scope *Scope, args []Scmer) Scmer
}

// Foreign callables have the plain native shape func(...Scmer) Scmer and see
// evaluated arguments only.

// TailCall is the trampoline's pending step. It never escapes Eval.
type TailCall struct {
	Scope *Scope
	Node  *Pair
}

// Builtin is a procedure implemented in Go that calls back into the runtime.
type Builtin struct {
	Name string
	Min  int
	Max  int // -1: unbounded
	Fn   func(rt *Runtime, scope *Scope, args []Scmer) Scmer
}

func (b *Builtin) Invoke(rt *Runtime, scope *Scope, args []Scmer) Scmer {
	checkArity(b.Name, len(args), b.Min, b.Max)
	return b.Fn(rt, scope, args)
}

type Param struct {
	Name string
	Type Scmer // nil when not annotated
}

// Procedure is a closure over its defining scope.
type Procedure struct {
	Name       string
	Params     []Param
	Rest       string // rest parameter of an improper list
	Variadic   bool   // bare identifier: Rest receives all arguments
	Body       []Scmer
	ReturnType Scmer
	Scope      *Scope
}

func (p *Procedure) MinArgs() int { return len(p.Params) }

func (p *Procedure) MaxArgs() int {
	if p.Rest != "" {
		return -1
	}
	return len(p.Params)
}

func (p *Procedure) String() string {
	if p.Name == "" {
		return "#<procedure>"
	}
	return "#<procedure " + p.Name + ">"
}

func (p *Procedure) displayName() string {
	if p.Name == "" {
		return "lambda"
	}
	return p.Name
}

func (p *Procedure) Invoke(rt *Runtime, scope *Scope, args []Scmer) Scmer {
	frame, err := p.Scope.CreateChildAt(scope.depth)
	must(err)
	if Trace != nil {
		Trace.Procedure(p.displayName(), frame.depth, len(args))
	}
	p.bind(rt, frame, args)

	var result Scmer = Nil
	for i, form := range p.Body {
		if i == len(p.Body)-1 && p.ReturnType == nil {
			return rt.Tail(frame, form)
		}
		result = rt.Eval(frame, form)
	}
	if p.ReturnType != nil {
		typ := resolveType(rt, frame, p.ReturnType)
		if !typ.Matches(result) {
			panic(&TypeCheckError{"", typ.TypeName(), TypeName(result)})
		}
	}
	return result
}

func (p *Procedure) bind(rt *Runtime, frame *Scope, args []Scmer) {
	if p.Variadic {
		must(frame.Define(p.Rest, List(args...)))
		return
	}
	checkArity(p.displayName(), len(args), p.MinArgs(), p.MaxArgs())
	for i, param := range p.Params {
		arg := args[i]
		if param.Type != nil {
			typ := resolveType(rt, frame, param.Type)
			if !typ.Matches(arg) {
				panic(&TypeCheckError{param.Name, typ.TypeName(), TypeName(arg)})
			}
		}
		must(frame.Define(param.Name, arg))
	}
	if p.Rest != "" {
		must(frame.Define(p.Rest, List(args[len(p.Params):]...)))
	}
}

// parseParams reads the three parameter spec shapes: a bare identifier, a
// proper list with optional "name: type" annotations, or an improper list.
func (p *Procedure) parseParams(spec Scmer) {
	if name, ok := symbolName(spec); ok {
		p.Variadic = true
		p.Rest = name
		return
	}
	var items []Scmer
	switch s := spec.(type) {
	case NilType:
		return
	case *BracketList:
		items = s.Items
	case *Pair:
		for {
			items = append(items, s.Car)
			next, ok := s.Cdr.(*Pair)
			if !ok {
				if _, isNil := s.Cdr.(NilType); !isNil {
					rest, ok := symbolName(s.Cdr)
					if !ok {
						errorf("invalid rest parameter %s", Serialize(s.Cdr))
					}
					p.Rest = rest
				}
				break
			}
			s = next
		}
	default:
		errorf("invalid parameter list %s", Serialize(spec))
	}
	for i := 0; i < len(items); i++ {
		switch item := items[i].(type) {
		case TypedIdentifier:
			p.Params = append(p.Params, Param{item.Ident.Name, item.Type})
			continue
		}
		name, ok := symbolName(items[i])
		if !ok {
			errorf("invalid parameter %s", Serialize(items[i]))
		}
		if len(name) > 1 && name[len(name)-1] == ':' {
			if i+1 >= len(items) {
				errorf("parameter %s is missing its type", name)
			}
			p.Params = append(p.Params, Param{name[:len(name)-1], items[i+1]})
			i++
			continue
		}
		p.Params = append(p.Params, Param{Name: name})
	}
}

// CaseLambda dispatches on the argument count to the first fitting clause.
type CaseLambda struct {
	Name    string
	Clauses []*Procedure
}

func (c *CaseLambda) Invoke(rt *Runtime, scope *Scope, args []Scmer) Scmer {
	for _, clause := range c.Clauses {
		if len(args) >= clause.MinArgs() && (clause.MaxArgs() < 0 || len(args) <= clause.MaxArgs()) {
			return clause.Invoke(rt, scope, args)
		}
	}
	panic(&ArityError{Name: "case-lambda", Min: 0, Max: -1, Given: len(args)})
}

// Continuation is an escape-only continuation: valid while its call/cc is active.
type Continuation struct {
	active bool
}

type continuationJump struct {
	k      *Continuation
	values []Scmer
}

func (k *Continuation) Invoke(rt *Runtime, scope *Scope, args []Scmer) Scmer {
	if !k.active {
		errorf("continuation invoked outside of its extent")
	}
	panic(&continuationJump{k, args})
}

// Parameter is a dynamically bound value created by make-parameter.
type Parameter struct {
	value     Scmer
	converter Scmer
}

func (p *Parameter) Invoke(rt *Runtime, scope *Scope, args []Scmer) Scmer {
	checkArity("parameter", len(args), 0, 1)
	if len(args) == 1 {
		p.value = args[0]
		return Nil
	}
	return p.value
}

// Tail returns a TailCall for call forms and evaluates everything else directly.
func (rt *Runtime) Tail(scope *Scope, node Scmer) Scmer {
	if p, ok := node.(*Pair); ok {
		return &TailCall{scope, p}
	}
	return rt.Eval(scope, node)
}

// Invoke calls fn with already evaluated arguments. The result may be a *TailCall.
func (rt *Runtime) Invoke(scope *Scope, fn Scmer, args []Scmer) Scmer {
	switch f := fn.(type) {
	case Invokable:
		return f.Invoke(rt, scope, args)
	case func(...Scmer) Scmer:
		return f(args...)
	case Macro:
		return f(rt, scope, args)
	case *SyntaxTransformer:
		errorf("syntax %s cannot be applied to values", f.Name)
	case *RecordTypeDefinition:
		errorf("record type %s is not a procedure", f.Name)
	}
	panic(&EvaluationError{Message: fmt.Sprintf("invalid operation: %s is not a procedure", Serialize(fn))})
}

// InvokeFull is Invoke followed by the trampoline, so the result is a plain value.
func (rt *Runtime) InvokeFull(scope *Scope, fn Scmer, args []Scmer) Scmer {
	base := scope.depth
	result := rt.Invoke(scope, fn, args)
	for {
		tc, ok := result.(*TailCall)
		if !ok {
			return result
		}
		result = rt.evalCall(tc.Scope, tc.Node, base)
	}
}

// IsProcedure reports values that can stand in call position after evaluation.
func IsProcedure(v Scmer) bool {
	switch v.(type) {
	case Invokable, func(...Scmer) Scmer, Macro:
		return true
	}
	return false
}

func symbolName(v Scmer) (string, bool) {
	switch s := v.(type) {
	case Symbol:
		return s.Name, true
	case *SyntaxBinding:
		if s.Alias != "" {
			return s.Alias, true
		}
		return s.Symbol.Name, true
	}
	return "", false
}

// plainName is symbolName without template renaming, for keyword checks.
func plainName(v Scmer) (string, bool) {
	switch s := v.(type) {
	case Symbol:
		return s.Name, true
	case *SyntaxBinding:
		return s.Symbol.Name, true
	}
	return "", false
}

func mustSymbol(v Scmer, who string) string {
	name, ok := symbolName(v)
	if !ok {
		errorf("%s: expected an identifier, got %s", who, Serialize(v))
	}
	return name
}
