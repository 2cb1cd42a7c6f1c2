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

// bodyForms unwraps a single { ... } block so its last form stays in tail position.
func bodyForms(forms []Scmer) []Scmer {
	if len(forms) == 1 {
		if b, ok := forms[0].(*StatementBlock); ok {
			return b.Forms
		}
	}
	return forms
}

// evalBody evaluates forms in order; the last one is returned as a tail call.
func (rt *Runtime) evalBody(scope *Scope, forms []Scmer) Scmer {
	if len(forms) == 0 {
		return Nil
	}
	for _, form := range forms[:len(forms)-1] {
		rt.Eval(scope, form)
	}
	return rt.Tail(scope, forms[len(forms)-1])
}

// makeProcedure builds a closure over scope. rest is the optional
// "-> type" annotation followed by the body.
func makeProcedure(scope *Scope, name string, params Scmer, rest []Scmer) *Procedure {
	p := &Procedure{Name: name, Scope: scope}
	p.parseParams(params)
	if len(rest) >= 2 && isKeyword(rest[0], "->") {
		p.ReturnType = rest[1]
		rest = rest[2:]
	}
	p.Body = bodyForms(rest)
	return p
}

func isKeyword(node Scmer, name string) bool {
	n, ok := plainName(node)
	return ok && n == name
}

func defineMacro(rt *Runtime, scope *Scope, a []Scmer) Scmer {
	if target, ok := a[0].(*Pair); ok {
		name := mustSymbol(target.Car, "define")
		must(scope.Define(name, makeProcedure(scope, name, target.Cdr, a[1:])))
		return Nil
	}
	name := mustSymbol(a[0], "define")
	var value Scmer = Nil
	switch len(a) {
	case 1:
	case 2:
		value = rt.Eval(scope, a[1])
	default:
		errorf("define: too many arguments for %s", name)
	}
	if p, ok := value.(*Procedure); ok && p.Name == "" {
		p.Name = name
	}
	must(scope.Define(name, value))
	return Nil
}

func setMacro(rt *Runtime, scope *Scope, a []Scmer) Scmer {
	value := rt.Eval(scope, a[1])
	if sb, ok := a[0].(*SyntaxBinding); ok {
		if sb.Alias != "" && trySet(scope, sb.Alias, value) {
			return Nil
		}
		if sb.Alias == "" {
			if frame := scope.frameBelow(sb.Scope, sb.Symbol.Name); frame != nil {
				must(frame.Set(sb.Symbol.Name, value))
				return Nil
			}
		}
		if trySet(sb.Scope, sb.Symbol.Name, value) {
			return Nil
		}
		must(scope.Set(sb.Symbol.Name, value))
		return Nil
	}
	must(scope.Set(mustSymbol(a[0], "set!"), value))
	return Nil
}

// trySet reports false only when name is unbound in scope.
func trySet(scope *Scope, name string, value Scmer) bool {
	err := scope.Set(name, value)
	if err != nil && !errors.Is(err, ErrUnboundVariable) {
		panic(err)
	}
	return err == nil
}

// condClauses runs cond style clauses. It reports false when no clause matched.
func (rt *Runtime) condClauses(scope *Scope, clauses []Scmer) (Scmer, bool) {
	for i, c := range clauses {
		parts := MustList(c, "cond")
		if len(parts) == 0 {
			errorf("cond: empty clause")
		}
		if isKeyword(parts[0], "else") {
			if i != len(clauses)-1 {
				errorf("cond: else must be the last clause")
			}
			return rt.evalBody(scope, parts[1:]), true
		}
		test := rt.Eval(scope, parts[0])
		if !ToBool(test) {
			continue
		}
		if len(parts) == 1 {
			return test, true
		}
		if isKeyword(parts[1], "=>") {
			if len(parts) != 3 {
				errorf("cond: => expects exactly one recipient")
			}
			return rt.tailApply(scope, rt.Eval(scope, parts[2]), test), true
		}
		return rt.evalBody(scope, parts[1:]), true
	}
	return Nil, false
}

// tailApply calls fn with one already evaluated argument in tail position.
func (rt *Runtime) tailApply(scope *Scope, fn Scmer, arg Scmer) Scmer {
	return &TailCall{scope, Cons(fn, Cons(&Quote{arg}, Nil))}
}

func caseMacro(rt *Runtime, scope *Scope, a []Scmer) Scmer {
	key := rt.Eval(scope, a[0])
	for i, c := range a[1:] {
		parts := MustList(c, "case")
		if len(parts) < 2 {
			errorf("case: clause needs data and a body")
		}
		matched := false
		if isKeyword(parts[0], "else") {
			if i != len(a)-2 {
				errorf("case: else must be the last clause")
			}
			matched = true
		} else {
			for _, d := range MustList(datum(parts[0], nil), "case") {
				if Eqv(key, d) {
					matched = true
					break
				}
			}
		}
		if !matched {
			continue
		}
		if isKeyword(parts[1], "=>") {
			return rt.tailApply(scope, rt.Eval(scope, parts[2]), key)
		}
		return rt.evalBody(scope, parts[1:])
	}
	return Nil
}

func init_syntax() {
	DeclareTitle("Syntax")

	Declare(libBase, &Declaration{
		"quote", "returns its argument as data without evaluating it",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"datum", "any", "syntax to return"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return datum(a[0], nil)
		}),
	})
	Declare(libBase, &Declaration{
		"quasiquote", "builds data from a template; unquote and unquote-splicing insert evaluated values",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"template", "any", "template"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.quasiquote(scope, a[0], 1)
		}),
	})
	Declare(libBase, &Declaration{
		"if", "checks a condition and evaluates either the then or the else branch.\nMore condition/branch pairs may follow: (if c1 a c2 b else)",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"condition", "any", "condition to check"},
			DeclarationParameter{"then", "returntype", "branch taken when condition is not false"},
			DeclarationParameter{"else...", "returntype", "further conditions and branches, or the final else branch"},
		}, "returntype",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			i := 0
			for ; i+1 < len(a); i += 2 {
				if ToBool(rt.Eval(scope, a[i])) {
					return rt.Tail(scope, a[i+1])
				}
			}
			if i < len(a) {
				return rt.Tail(scope, a[i])
			}
			return Nil
		}),
	})
	Declare(libBase, &Declaration{
		"define", "binds a new name in the current scope; (define (name params...) body...) defines a procedure",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"target", "symbol|list", "name or (name params...)"},
			DeclarationParameter{"value...", "any", "value expression or procedure body"},
		}, "nil",
		Macro(defineMacro),
	})
	Declare(libBase, &Declaration{
		"set!", "overwrites an existing binding in the scope that defines it",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"name", "symbol", "variable to change"},
			DeclarationParameter{"value", "any", "new value"},
		}, "nil",
		Macro(setMacro),
	})
	Declare(libBase, &Declaration{
		"lambda", "creates a procedure closing over the current scope.\nParameters may be a symbol (all arguments), a list with optional name: type annotations, or an improper list with a rest parameter. An optional -> type checks the result.",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"params", "symbol|list", "parameter specification"},
			DeclarationParameter{"body...", "any", "body forms; the last one is the result"},
		}, "func",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return makeProcedure(scope, "", a[0], a[1:])
		}),
	})
	Declare(libBase, &Declaration{
		"begin", "evaluates the forms in order and returns the last value",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"forms...", "any", "forms to evaluate"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.evalBody(scope, a)
		}),
	})
	Declare(libBase, &Declaration{
		"cond", "evaluates the body of the first clause whose test is not false.\n(test => recipient) calls recipient with the test value.",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"clauses...", "list", "(test body...) clauses, optionally ending in (else body...)"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			if len(a) == 1 {
				if b, ok := a[0].(*BracketList); ok {
					a = MustList(Pairwise(b.Items).Desugar(), "cond")
				}
			}
			result, _ := rt.condClauses(scope, a)
			return result
		}),
	})
	Declare(libBase, &Declaration{
		"case", "compares a key with eqv? against the data of each clause",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"key", "any", "value to dispatch on"},
			DeclarationParameter{"clauses...", "list", "((datum...) body...) clauses, optionally ending in (else body...)"},
		}, "any",
		Macro(caseMacro),
	})
	Declare(libBase, &Declaration{
		"when", "evaluates the body when the test is not false",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"test", "any", "condition"},
			DeclarationParameter{"body...", "any", "forms"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			if ToBool(rt.Eval(scope, a[0])) {
				return rt.evalBody(scope, a[1:])
			}
			return Nil
		}),
	})
	Declare(libBase, &Declaration{
		"unless", "evaluates the body when the test is false",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"test", "any", "condition"},
			DeclarationParameter{"body...", "any", "forms"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			if !ToBool(rt.Eval(scope, a[0])) {
				return rt.evalBody(scope, a[1:])
			}
			return Nil
		}),
	})
	Declare(libBase, &Declaration{
		"and", "returns the first false value or the last value; true without arguments",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "any", "expressions"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			if len(a) == 0 {
				return true
			}
			for _, x := range a[:len(a)-1] {
				if v := rt.Eval(scope, x); !ToBool(v) {
					return v
				}
			}
			return rt.Tail(scope, a[len(a)-1])
		}),
	})
	Declare(libBase, &Declaration{
		"or", "returns the first value that is not false; false without arguments",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "any", "expressions"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			if len(a) == 0 {
				return false
			}
			for _, x := range a[:len(a)-1] {
				if v := rt.Eval(scope, x); ToBool(v) {
					return v
				}
			}
			return rt.Tail(scope, a[len(a)-1])
		}),
	})

	for _, aux := range []string{"else", "=>", "_", "...", "unquote", "unquote-splicing"} {
		DeclareValue(libBase, aux, AuxiliarySyntax{aux})
	}

	DeclareTitle("Typed procedures")

	Declare(libColibri, &Declaration{
		"fn", "defines a named procedure and returns it: (fn name (a: int b) -> int body...)",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"name", "symbol", "procedure name"},
			DeclarationParameter{"params", "list", "parameters with optional name: type annotations"},
			DeclarationParameter{"body...", "any", "optional -> type, then the body"},
		}, "func",
		Macro(fnMacro),
	})
	Declare(libColibri, &Declaration{
		"defun", "alias of fn",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"name", "symbol", "procedure name"},
			DeclarationParameter{"params", "list", "parameters"},
			DeclarationParameter{"body...", "any", "body"},
		}, "func",
		Macro(fnMacro),
	})
	// list, string, vector and friends stay procedures; annotations find them in builtinTypes
	for _, name := range []string{"any", "int", "integer", "i32", "i64", "number", "real", "f64", "float", "double", "str", "bool", "boolean", "void"} {
		DeclareValue(libColibri, name, builtinTypes[name])
	}
}

func fnMacro(rt *Runtime, scope *Scope, a []Scmer) Scmer {
	name, ok := symbolName(a[0])
	if !ok {
		return makeProcedure(scope, "", a[0], a[1:])
	}
	p := makeProcedure(scope, name, a[1], a[2:])
	must(scope.Define(name, p))
	return p
}
