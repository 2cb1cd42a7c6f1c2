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

import "strings"
import regexp "github.com/wasilibs/go-re2"

func init() {
	init_syntax()
	init_bindings()
	init_control()
	init_environments()
	init_records()
	init_syntax_rules()
	init_alu()
	init_list()
	init_strings()
	init_vector()
	init_io()
	init_streams()
	init_date()
	init_prelude()
}

// Eval evaluates node in scope and resolves pending tail calls. A call form in
// tail position returns a *TailCall to whoever invoked it, and the loop below
// re-enters invocation with it at the depth of the original call, so tail
// recursion runs in constant native stack and constant scope depth.
//
// Errors are raised as panics; host code uses Evaluate instead.
func (rt *Runtime) Eval(scope *Scope, node Scmer) Scmer {
	return rt.eval(scope, node, -1)
}

func (rt *Runtime) eval(scope *Scope, node Scmer, arity int) Scmer {
	switch n := node.(type) {
	case *Pair:
		base := scope.depth
		result := rt.evalCall(scope, n, -1)
		for {
			tc, ok := result.(*TailCall)
			if !ok {
				return result
			}
			if Trace != nil {
				Trace.TailReentry()
			}
			result = rt.evalCall(tc.Scope, tc.Node, base)
		}
	case Symbol:
		return rt.resolveSymbol(scope, n, arity)
	case *SyntaxBinding:
		if n.Alias != "" {
			if v, ok := scope.TryResolve(n.Alias); ok {
				return v
			}
		} else if frame := scope.frameBelow(n.Scope, n.Symbol.Name); frame != nil {
			// bound by the argument itself, e.g. (id (let ((x 1)) x))
			return frame.vars[n.Symbol.Name]
		}
		if v, ok := rt.tryResolveSymbol(n.Scope, n.Symbol, arity); ok {
			return v
		}
		return rt.resolveSymbol(scope, n.Symbol, arity)
	case *Program:
		var result Scmer = Nil
		for _, form := range n.Forms {
			if Trace != nil {
				Trace.Form(form, func() {
					result = rt.Eval(scope, form)
				})
			} else {
				result = rt.Eval(scope, form)
			}
		}
		return result
	case NilType:
		return Nil
	case *Vector:
		items := make([]Scmer, len(n.Items))
		for i, item := range n.Items {
			if isNode(item) {
				items[i] = rt.Eval(scope, item)
			} else {
				items[i] = item
			}
		}
		return &Vector{items}
	case *Bytevector:
		return n
	case *Quote:
		return datum(n.Value, nil)
	case *Quasiquote:
		return rt.quasiquote(scope, n.Value, 1)
	case *Unquote:
		errorf("unquote is only valid inside quasiquote")
	case *StatementBlock:
		var result Scmer = Nil
		for _, form := range n.Forms {
			result = rt.Eval(scope, form)
		}
		return result
	case *BracketList:
		items := make([]Scmer, len(n.Items))
		for i, item := range n.Items {
			items[i] = rt.Eval(scope, item)
		}
		return List(items...)
	case *AssociativeArray:
		items := make([]Scmer, len(n.Keys))
		for i := range n.Keys {
			items[i] = Cons(rt.Eval(scope, n.Keys[i]), rt.Eval(scope, n.Values[i]))
		}
		return List(items...)
	case *PairwiseBlock:
		errorf("pairwise block is only valid in binding position")
	case *RegexLiteral:
		return compileRegex(n)
	case AuxiliarySyntax:
		errorf("invalid use of auxiliary syntax %s", n.Name)
	case TypedIdentifier:
		errorf("type annotation %s: is only valid in a parameter list", n.Ident.Name)
	}
	return node
}

// isNode reports values that evaluate to something other than themselves.
func isNode(v Scmer) bool {
	switch v.(type) {
	case *Pair, Symbol, *SyntaxBinding, *Quote, *Quasiquote, *Unquote, *StatementBlock,
		*BracketList, *AssociativeArray, *Vector, *RegexLiteral:
		return true
	}
	return false
}

func (rt *Runtime) resolveSymbol(scope *Scope, sym Symbol, arity int) Scmer {
	if v, ok := rt.tryResolveSymbol(scope, sym, arity); ok {
		return v
	}
	panic(&BindingError{UnboundSymbol, sym.Name})
}

func (rt *Runtime) tryResolveSymbol(scope *Scope, sym Symbol, arity int) (Scmer, bool) {
	if !sym.Escaped {
		switch sym.Name {
		case "null":
			return nil, true
		case "nil":
			return Nil, true
		}
	}
	if v, ok := scope.TryResolve(sym.Name); ok {
		if aux, isAux := v.(AuxiliarySyntax); isAux {
			errorf("invalid use of auxiliary syntax %s", aux.Name)
		}
		return v, true
	}
	if rt.interop != nil {
		return rt.interop.TryResolve(scope, sym.Name, arity)
	}
	return nil, false
}

// evalCall dispatches one call form. For a tail re-entry tailDepth is the depth
// of the call the trampoline started from, and the callee is invoked from
// there; it is -1 otherwise.
func (rt *Runtime) evalCall(scope *Scope, pair *Pair, tailDepth int) Scmer {
	if rt.ctx != nil {
		if err := rt.ctx.Err(); err != nil {
			panic(&EvaluationError{Message: "evaluation cancelled", Cause: err})
		}
	}
	switch head := pair.Car.(type) {
	case NilType:
		errorf("nil is not a function")
	case Symbol:
		if isMemberAccess(head) {
			argNodes := MustList(pair.Cdr, head.Name)
			args := make([]Scmer, len(argNodes))
			for i, a := range argNodes {
				args[i] = rt.Eval(scope, a)
			}
			if rt.interop == nil {
				errorf("member access %s: no interop configured", head.Name)
			}
			return rt.interop.InvokeMember(scope, head.Name[1:], args)
		}
	}

	argNodes, proper := ListToSlice(pair.Cdr)
	arity := -1
	if proper {
		arity = len(argNodes)
	}
	op := rt.eval(scope, pair.Car, arity)
	if !proper {
		errorf("improper call form %s", Serialize(pair))
	}

	switch f := op.(type) {
	case Macro:
		return f(rt, scope, argNodes)
	case *SyntaxTransformer:
		bound := make([]Scmer, len(argNodes))
		for i, a := range argNodes {
			bound[i] = bindSyntaxArg(scope, a)
		}
		return rt.Tail(scope, f.Transform(bound))
	}

	args := make([]Scmer, len(argNodes))
	for i, a := range argNodes {
		args[i] = rt.Eval(scope, a)
	}
	if tailDepth > 0 {
		scope = scope.TailFrame(tailDepth)
	}
	return rt.Invoke(scope, op, args)
}

func isMemberAccess(s Symbol) bool {
	return !s.Escaped && len(s.Name) > 1 && s.Name[0] == '.' && s.Name != "..." && s.Name[1] != '.'
}

// bindSyntaxArg marks every identifier of a transformer argument with the call site scope.
func bindSyntaxArg(scope *Scope, node Scmer) Scmer {
	switch n := node.(type) {
	case *SyntaxBinding:
		return n
	case Symbol:
		return &SyntaxBinding{Symbol: n, Scope: scope}
	case *Pair:
		return Cons(bindSyntaxArg(scope, n.Car), bindSyntaxArg(scope, n.Cdr))
	case *BracketList:
		items := make([]Scmer, len(n.Items))
		for i, item := range n.Items {
			items[i] = bindSyntaxArg(scope, item)
		}
		return &BracketList{items}
	}
	return node
}

// datum strips evaluation-only wrappers from quoted syntax: nested quote
// sugar becomes (quote x) lists, bracket lists become lists and syntax
// bindings fall back to their symbols. Unchanged subtrees are shared.
func datum(node Scmer, seen map[*Pair]Scmer) Scmer {
	switch n := node.(type) {
	case *SyntaxBinding:
		return n.Symbol
	case *Quote:
		return List(NewSymbol("quote"), datum(n.Value, seen))
	case *Quasiquote:
		return List(NewSymbol("quasiquote"), datum(n.Value, seen))
	case *Unquote:
		if n.Splicing {
			return List(NewSymbol("unquote-splicing"), datum(n.Value, seen))
		}
		return List(NewSymbol("unquote"), datum(n.Value, seen))
	case *BracketList:
		items := make([]Scmer, len(n.Items))
		for i, item := range n.Items {
			items[i] = datum(item, seen)
		}
		return List(items...)
	case *StatementBlock:
		items := make([]Scmer, len(n.Forms))
		for i, item := range n.Forms {
			items[i] = datum(item, seen)
		}
		return Cons(NewSymbol("begin"), List(items...))
	case *Pair:
		if seen == nil {
			seen = make(map[*Pair]Scmer)
		}
		if v, ok := seen[n]; ok {
			return v
		}
		seen[n] = n
		car := datum(n.Car, seen)
		cdr := datum(n.Cdr, seen)
		if identical(car, n.Car) && identical(cdr, n.Cdr) {
			return n
		}
		result := Cons(car, cdr)
		seen[n] = result
		return result
	}
	return node
}

func identical(a, b Scmer) bool {
	return isComparable(a) && isComparable(b) && a == b
}

type splice struct {
	items []Scmer
}

func (rt *Runtime) quasiquote(scope *Scope, node Scmer, depth int) Scmer {
	switch n := node.(type) {
	case *Unquote:
		if depth == 1 {
			if n.Splicing {
				return rt.spliceValue(rt.Eval(scope, n.Value))
			}
			return rt.Eval(scope, n.Value)
		}
		return &Unquote{rt.quasiquote(scope, n.Value, depth-1), n.Splicing}
	case *Quasiquote:
		return List(NewSymbol("quasiquote"), rt.quasiquote(scope, n.Value, depth+1))
	case *Quote:
		return List(NewSymbol("quote"), rt.quasiquote(scope, n.Value, depth))
	case *Vector:
		items := rt.quasiquoteItems(scope, n.Items, depth)
		return &Vector{items}
	case *BracketList:
		return List(rt.quasiquoteItems(scope, n.Items, depth)...)
	case *Pair:
		if name, ok := plainName(n.Car); ok && IsList(n.Cdr) && Length(n.Cdr) == 1 {
			arg := n.Cdr.(*Pair).Car
			switch name {
			case "unquote":
				return rt.quasiquote(scope, &Unquote{arg, false}, depth)
			case "unquote-splicing":
				return rt.quasiquote(scope, &Unquote{arg, true}, depth)
			case "quasiquote":
				return rt.quasiquote(scope, &Quasiquote{arg}, depth)
			}
		}
		car := rt.quasiquote(scope, n.Car, depth)
		cdr := rt.quasiquote(scope, n.Cdr, depth)
		if s, ok := cdr.(*splice); ok {
			cdr = List(s.items...)
		}
		if s, ok := car.(*splice); ok {
			return ListWithTail(s.items, cdr)
		}
		return Cons(car, cdr)
	}
	return datum(node, nil)
}

func (rt *Runtime) quasiquoteItems(scope *Scope, nodes []Scmer, depth int) []Scmer {
	items := make([]Scmer, 0, len(nodes))
	for _, item := range nodes {
		v := rt.quasiquote(scope, item, depth)
		if s, ok := v.(*splice); ok {
			items = append(items, s.items...)
		} else {
			items = append(items, v)
		}
	}
	return items
}

func (rt *Runtime) spliceValue(v Scmer) *splice {
	switch x := v.(type) {
	case *Vector:
		return &splice{x.Items}
	case NilType:
		return &splice{}
	}
	items, ok := ListToSlice(v)
	if !ok {
		errorf("result of unquote-splicing is not a list: %s", Serialize(v))
	}
	return &splice{items}
}

func compileRegex(n *RegexLiteral) Scmer {
	pattern := n.Pattern
	var flags strings.Builder
	for _, f := range n.Flags {
		if strings.ContainsRune("imsU", f) {
			flags.WriteRune(f)
		}
	}
	if flags.Len() > 0 {
		pattern = "(?" + flags.String() + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic(&EvaluationError{Message: "invalid regex #/" + n.Pattern + "/", Cause: err})
	}
	return re
}
