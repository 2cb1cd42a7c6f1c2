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

// binding reads one (name init) entry of a let style binding list.
func binding(b Scmer, who string) (string, Scmer) {
	parts := MustList(b, who)
	switch len(parts) {
	case 1:
		return mustSymbol(parts[0], who), nil
	case 2:
		return mustSymbol(parts[0], who), parts[1]
	}
	errorf("%s: invalid binding %s", who, Serialize(b))
	return "", nil
}

func (rt *Runtime) evalInit(scope *Scope, init Scmer) Scmer {
	if init == nil {
		return Nil
	}
	return rt.Eval(scope, init)
}

func letMacro(rt *Runtime, scope *Scope, a []Scmer) Scmer {
	if name, ok := symbolName(a[0]); ok {
		if len(a) < 2 {
			errorf("let: named let %s needs bindings", name)
		}
		return rt.namedLet(scope, name, a[1], a[2:])
	}
	bindings := bindingList(a[0], "let")
	names := make([]string, len(bindings))
	values := make([]Scmer, len(bindings))
	for i, b := range bindings {
		name, init := binding(b, "let")
		names[i] = name
		values[i] = rt.evalInit(scope, init)
	}
	frame := scope.mustChild()
	for i, name := range names {
		must(frame.Define(name, values[i]))
	}
	return rt.evalBody(frame, bodyForms(a[1:]))
}

// namedLet binds name to a loop procedure visible only to its own body and
// calls it with the initial values.
func (rt *Runtime) namedLet(scope *Scope, name string, spec Scmer, body []Scmer) Scmer {
	bindings := bindingList(spec, "let")
	params := make([]Scmer, len(bindings))
	values := make([]Scmer, len(bindings))
	for i, b := range bindings {
		param, init := binding(b, "let")
		params[i] = NewSymbol(param)
		values[i] = rt.evalInit(scope, init)
	}
	loopScope := scope.mustChild()
	proc := makeProcedure(loopScope, name, List(params...), body)
	must(loopScope.Define(name, proc))
	return rt.Invoke(scope, proc, values)
}

// sequentialLet covers let*, letrec and letrec*: each init sees the bindings
// before it, and with rec the name itself is already reserved.
func sequentialLet(who string, rec bool) Macro {
	return func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
		bindings := bindingList(a[0], who)
		frame := scope.mustChild()
		if rec {
			for _, b := range bindings {
				name, _ := binding(b, who)
				must(frame.DefineOrSet(name, Nil))
			}
		}
		for _, b := range bindings {
			name, init := binding(b, who)
			value := rt.evalInit(frame, init)
			if p, ok := value.(*Procedure); ok && p.Name == "" {
				p.Name = name
			}
			must(frame.DefineOrSet(name, value))
		}
		return rt.evalBody(frame, bodyForms(a[1:]))
	}
}

// doMacro runs (do ((var init step)...) (test result...) command...). Every
// iteration gets a fresh frame so closures capture that iteration's values;
// all steps are computed before any of them is committed.
func doMacro(rt *Runtime, scope *Scope, a []Scmer) Scmer {
	specs := bindingList(a[0], "do")
	exit := MustList(a[1], "do")
	if len(exit) == 0 {
		errorf("do: missing termination test")
	}
	names := make([]string, len(specs))
	steps := make([]Scmer, len(specs))
	values := make([]Scmer, len(specs))
	for i, s := range specs {
		parts := MustList(s, "do")
		if len(parts) < 2 || len(parts) > 3 {
			errorf("do: invalid variable spec %s", Serialize(s))
		}
		names[i] = mustSymbol(parts[0], "do")
		values[i] = rt.Eval(scope, parts[1])
		if len(parts) == 3 {
			steps[i] = parts[2]
		}
	}
	for {
		frame := scope.mustChild()
		for i, name := range names {
			must(frame.Define(name, values[i]))
		}
		if ToBool(rt.Eval(frame, exit[0])) {
			return rt.evalBody(frame, exit[1:])
		}
		for _, command := range a[2:] {
			rt.Eval(frame, command)
		}
		next := make([]Scmer, len(names))
		for i, name := range names {
			if steps[i] != nil {
				next[i] = rt.Eval(frame, steps[i])
			} else {
				next[i], _ = frame.TryResolve(name)
			}
		}
		values = next
	}
}

// valuesOf spreads a multiple values result into a slice.
func valuesOf(v Scmer) []Scmer {
	if mv, ok := v.(*Values); ok {
		return mv.Items
	}
	return []Scmer{v}
}

// bindFormals binds values into frame following a lambda style formals spec.
func (rt *Runtime) bindFormals(frame *Scope, formals Scmer, values []Scmer, who string) {
	p := &Procedure{Name: who}
	p.parseParams(formals)
	p.bind(rt, frame, values)
}

func letValues(who string, sequential bool) Macro {
	return func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
		frame := scope.mustChild()
		env := scope
		if sequential {
			env = frame
		}
		for _, b := range MustList(a[0], who) {
			parts := MustList(b, who)
			if len(parts) != 2 {
				errorf("%s: invalid binding %s", who, Serialize(b))
			}
			rt.bindFormals(frame, parts[0], valuesOf(rt.Eval(env, parts[1])), who)
		}
		return rt.evalBody(frame, bodyForms(a[1:]))
	}
}

func init_bindings() {
	DeclareTitle("Bindings")

	Declare(libBase, &Declaration{
		"let", "binds names to values evaluated in the enclosing scope, then runs the body.\n(let name ((var init)...) body...) defines a loop procedure name.",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"bindings", "list", "((name init)...) or [name init ...]"},
			DeclarationParameter{"body...", "any", "body forms"},
		}, "any",
		Macro(letMacro),
	})
	Declare(libBase, &Declaration{
		"let*", "like let, but each init sees the previous bindings",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"bindings", "list", "((name init)...)"},
			DeclarationParameter{"body...", "any", "body forms"},
		}, "any",
		Macro(sequentialLet("let*", false)),
	})
	Declare(libBase, &Declaration{
		"letrec", "like let, but the inits can refer to all bound names (mutual recursion)",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"bindings", "list", "((name init)...)"},
			DeclarationParameter{"body...", "any", "body forms"},
		}, "any",
		Macro(sequentialLet("letrec", true)),
	})
	Declare(libBase, &Declaration{
		"letrec*", "like letrec with left to right initialization",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"bindings", "list", "((name init)...)"},
			DeclarationParameter{"body...", "any", "body forms"},
		}, "any",
		Macro(sequentialLet("letrec*", true)),
	})
	Declare(libBase, &Declaration{
		"do", "iterates: binds the variables, stops when test is true and returns the result forms, otherwise runs the commands and steps all variables at once",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"variables", "list", "((var init step)...)"},
			DeclarationParameter{"exit", "list", "(test result...)"},
			DeclarationParameter{"commands...", "any", "loop body"},
		}, "any",
		Macro(doMacro),
	})
	Declare(libBase, &Declaration{
		"define-values", "binds the values returned by an expression",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"formals", "list", "names like a lambda parameter list"},
			DeclarationParameter{"expression", "any", "expression returning multiple values"},
		}, "nil",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			rt.bindFormals(scope, a[0], valuesOf(rt.Eval(scope, a[1])), "define-values")
			return Nil
		}),
	})
	Declare(libBase, &Declaration{
		"let-values", "binds multiple values, all evaluated in the enclosing scope",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"bindings", "list", "((formals expression)...)"},
			DeclarationParameter{"body...", "any", "body forms"},
		}, "any",
		Macro(letValues("let-values", false)),
	})
	Declare(libBase, &Declaration{
		"let*-values", "binds multiple values from left to right",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"bindings", "list", "((formals expression)...)"},
			DeclarationParameter{"body...", "any", "body forms"},
		}, "any",
		Macro(letValues("let*-values", true)),
	})
	Declare(libBase, &Declaration{
		"values", "returns any number of values to its continuation",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "any", "values"},
		}, "any",
		func(a ...Scmer) Scmer {
			if len(a) == 1 {
				return a[0]
			}
			return &Values{a}
		},
	})
	Declare(libBase, &Declaration{
		"call-with-values", "calls producer without arguments and passes its values to consumer",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"producer", "func", "thunk"},
			DeclarationParameter{"consumer", "func", "receives the values"},
		}, "any",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.Invoke(scope, a[1], valuesOf(rt.InvokeFull(scope, a[0], nil)))
		}),
	})

	Declare(libCaseLambda, &Declaration{
		"case-lambda", "creates a procedure that picks the first clause accepting the number of arguments",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"clauses...", "list", "(formals body...) clauses"},
		}, "func",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			c := &CaseLambda{}
			for _, clause := range a {
				parts := MustList(clause, "case-lambda")
				if len(parts) == 0 {
					errorf("case-lambda: empty clause")
				}
				c.Clauses = append(c.Clauses, makeProcedure(scope, "", parts[0], parts[1:]))
			}
			return c
		}),
	})
}
