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

import "github.com/nukata/goarith"

// Promise is the result of delay, delay-force and make-promise.
type Promise struct {
	done  bool
	value Scmer
	scope *Scope
	expr  Scmer
	chain bool // delay-force: expr yields another promise
}

func (p *Promise) String() string { return "#<promise>" }

func (rt *Runtime) force(v Scmer) Scmer {
	p, ok := v.(*Promise)
	if !ok {
		return v
	}
	for !p.done {
		result := rt.Eval(p.scope, p.expr)
		if p.done {
			break
		}
		if !p.chain {
			p.done, p.value = true, result
			break
		}
		inner, ok := result.(*Promise)
		if !ok {
			errorf("delay-force: expression did not return a promise: %s", Serialize(result))
		}
		if inner.done {
			p.done, p.value = true, inner.value
		} else {
			p.scope, p.expr, p.chain = inner.scope, inner.expr, inner.chain
		}
	}
	p.scope, p.expr = nil, nil
	return p.value
}

// catchable reports panics that guard and with-exception-handler may observe.
// Continuation jumps and exit requests pass through.
func catchable(r any) bool {
	switch r.(type) {
	case *continuationJump, *ExitSignal:
		return false
	}
	return true
}

// conditionPayload is the object a handler sees for a recovered panic.
func conditionPayload(r any) Scmer {
	if c, ok := r.(*Condition); ok {
		return c.Payload
	}
	return asError(r)
}

// pushHandler installs h and returns a function restoring the previous stack.
func (rt *Runtime) pushHandler(h Scmer) func() {
	saved := rt.handlers
	rt.handlers = append(saved[:len(saved):len(saved)], h)
	return func() { rt.handlers = saved }
}

func guardMacro(rt *Runtime, scope *Scope, a []Scmer) Scmer {
	spec := MustList(a[0], "guard")
	if len(spec) == 0 {
		errorf("guard: missing condition variable")
	}
	name := mustSymbol(spec[0], "guard")

	var failure any
	result := func() (result Scmer) {
		restore := rt.pushHandler(nil)
		defer func() {
			restore()
			if r := recover(); r != nil {
				if !catchable(r) {
					panic(r)
				}
				failure = r
			}
		}()
		frame := scope.mustChild()
		result = Nil
		for _, form := range bodyForms(a[1:]) {
			result = rt.Eval(frame, form)
		}
		return
	}()
	if failure == nil {
		return result
	}
	frame := scope.mustChild()
	must(frame.Define(name, conditionPayload(failure)))
	if v, ok := rt.condClauses(frame, spec[1:]); ok {
		return v
	}
	panic(failure)
}

func (rt *Runtime) withExceptionHandler(scope *Scope, handler, thunk Scmer) Scmer {
	restore := rt.pushHandler(handler)
	defer func() {
		restore()
		if r := recover(); r != nil {
			if !catchable(r) {
				panic(r)
			}
			rt.InvokeFull(scope, handler, []Scmer{conditionPayload(r)})
			panic(&EvaluationError{Message: "exception handler returned from a non-continuable raise", Cause: asError(r)})
		}
	}()
	return rt.InvokeFull(scope, thunk, nil)
}

func (rt *Runtime) raiseContinuable(scope *Scope, payload Scmer) Scmer {
	n := len(rt.handlers)
	if n == 0 || rt.handlers[n-1] == nil {
		panic(&Condition{Payload: payload, Continuable: true})
	}
	handler := rt.handlers[n-1]
	saved := rt.handlers
	rt.handlers = saved[: n-1 : n-1]
	defer func() { rt.handlers = saved }()
	return rt.InvokeFull(scope, handler, []Scmer{payload})
}

func raise(payload Scmer) {
	if err, ok := payload.(error); ok {
		panic(err)
	}
	panic(&Condition{Payload: payload})
}

func jumpResult(values []Scmer) Scmer {
	switch len(values) {
	case 0:
		return Nil
	case 1:
		return values[0]
	}
	return &Values{values}
}

func (rt *Runtime) callCC(scope *Scope, fn Scmer) (result Scmer) {
	k := &Continuation{active: true}
	defer func() {
		k.active = false
		if r := recover(); r != nil {
			jump, ok := r.(*continuationJump)
			if !ok || jump.k != k {
				panic(r)
			}
			result = jumpResult(jump.values)
		}
	}()
	return rt.InvokeFull(scope, fn, []Scmer{k})
}

func (rt *Runtime) dynamicWind(scope *Scope, before, thunk, after Scmer) Scmer {
	rt.InvokeFull(scope, before, nil)
	left := false
	defer func() {
		if left {
			return
		}
		if r := recover(); r != nil {
			if exit, ok := r.(*ExitSignal); !ok || !exit.Emergency {
				rt.InvokeFull(scope, after, nil)
			}
			panic(r)
		}
	}()
	result := rt.InvokeFull(scope, thunk, nil)
	left = true
	rt.InvokeFull(scope, after, nil)
	return result
}

func parameterizeMacro(rt *Runtime, scope *Scope, a []Scmer) Scmer {
	bindings := bindingList(a[0], "parameterize")
	params := make([]*Parameter, len(bindings))
	values := make([]Scmer, len(bindings))
	for i, b := range bindings {
		parts := MustList(b, "parameterize")
		if len(parts) != 2 {
			errorf("parameterize: invalid binding %s", Serialize(b))
		}
		p, ok := rt.Eval(scope, parts[0]).(*Parameter)
		if !ok {
			errorf("parameterize: %s is not a parameter object", Serialize(parts[0]))
		}
		v := rt.Eval(scope, parts[1])
		if p.converter != nil {
			v = rt.InvokeFull(scope, p.converter, []Scmer{v})
		}
		params[i], values[i] = p, v
	}
	old := make([]Scmer, len(params))
	for i, p := range params {
		old[i] = p.value
		p.value = values[i]
	}
	defer func() {
		for i := len(params) - 1; i >= 0; i-- {
			params[i].value = old[i]
		}
	}()
	frame := scope.mustChild()
	var result Scmer = Nil
	for _, form := range bodyForms(a[1:]) {
		result = rt.Eval(frame, form)
	}
	return result
}

// exitCode reads the optional exit argument: true and none mean success.
func exitCode(a []Scmer) int {
	if len(a) == 0 {
		return 0
	}
	switch v := a[0].(type) {
	case bool:
		if v {
			return 0
		}
		return -1
	case goarith.Number:
		if IsExactInteger(v) {
			return ToInt(v)
		}
	}
	return -1
}

// stepMacro implements ++! and --!: update a numeric variable in place.
func stepMacro(who string, delta int64) Macro {
	return func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
		name := mustSymbol(a[0], who)
		current := rt.Eval(scope, a[0])
		var by Scmer = NewInt(delta)
		if len(a) == 2 {
			by = rt.Eval(scope, a[1])
			if delta < 0 {
				by = Sub(NewInt(0), by)
			}
		}
		next := Add(current, by)
		must(scope.Set(name, next))
		return next
	}
}

func init_control() {
	DeclareTitle("Control")

	Declare(libBase, &Declaration{
		"apply", "calls a procedure with the given arguments; the last argument is a list that is spread",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"procedure", "func", "procedure to call"},
			DeclarationParameter{"args...", "any", "single arguments followed by a list of further arguments"},
		}, "any",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			args := append([]Scmer{}, a[1:]...)
			if len(args) > 0 {
				last := MustList(args[len(args)-1], "apply")
				args = append(args[:len(args)-1], last...)
			}
			return rt.Invoke(scope, a[0], args)
		}),
	})
	Declare(libBase, &Declaration{
		"map", "applies a procedure elementwise and collects the results; stops at the shortest list",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"procedure", "func", "procedure taking one argument per list"},
			DeclarationParameter{"lists...", "list", "lists"},
		}, "list",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			lists := spreadLists(a[1:], "map")
			result := make([]Scmer, 0, len(lists[0]))
			for i := 0; i < shortest(lists); i++ {
				result = append(result, rt.InvokeFull(scope, a[0], column(lists, i)))
			}
			return List(result...)
		}),
	})
	Declare(libBase, &Declaration{
		"for-each", "calls a procedure elementwise for its side effects",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"procedure", "func", "procedure taking one argument per list"},
			DeclarationParameter{"lists...", "list", "lists"},
		}, "nil",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			lists := spreadLists(a[1:], "for-each")
			for i := 0; i < shortest(lists); i++ {
				rt.InvokeFull(scope, a[0], column(lists, i))
			}
			return Nil
		}),
	})
	Declare(libBase, &Declaration{
		"call-with-current-continuation", "calls procedure with an escape continuation; invoking it returns its arguments from this call",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"procedure", "func", "receives the continuation"},
		}, "any",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.callCC(scope, a[0])
		}),
	})
	Declare(libBase, &Declaration{
		"call/cc", "short form of call-with-current-continuation",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"procedure", "func", "receives the continuation"},
		}, "any",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.callCC(scope, a[0])
		}),
	})
	Declare(libBase, &Declaration{
		"dynamic-wind", "calls before, thunk and after; after also runs when thunk is left by an escape or an error",
		3, 3,
		[]DeclarationParameter{
			DeclarationParameter{"before", "func", "thunk run on entry"},
			DeclarationParameter{"thunk", "func", "body"},
			DeclarationParameter{"after", "func", "thunk run on exit"},
		}, "any",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.dynamicWind(scope, a[0], a[1], a[2])
		}),
	})

	DeclareTitle("Exceptions")

	Declare(libBase, &Declaration{
		"guard", "evaluates the body; if it raises, the raised object is bound to var and the cond style clauses are tried. Without a matching clause the object is raised again.",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"clauses", "list", "(var clause...)"},
			DeclarationParameter{"body...", "any", "body forms"},
		}, "any",
		Macro(guardMacro),
	})
	Declare(libBase, &Declaration{
		"with-exception-handler", "calls thunk with handler installed; raise-continuable returns the handler's result",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"handler", "func", "receives the raised object"},
			DeclarationParameter{"thunk", "func", "body"},
		}, "any",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.withExceptionHandler(scope, a[0], a[1])
		}),
	})
	Declare(libBase, &Declaration{
		"raise", "raises an object; it does not return",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"obj", "any", "object to raise"},
		}, "any",
		func(a ...Scmer) Scmer {
			raise(a[0])
			return nil
		},
	})
	Declare(libBase, &Declaration{
		"raise-continuable", "raises an object; the innermost handler's result is returned",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"obj", "any", "object to raise"},
		}, "any",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.raiseContinuable(scope, a[0])
		}),
	})
	Declare(libBase, &Declaration{
		"error", "raises an error object with a message and irritants",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"message", "string", "message"},
			DeclarationParameter{"irritants...", "any", "further objects"},
		}, "any",
		func(a ...Scmer) Scmer {
			msg, ok := a[0].(string)
			if !ok {
				msg = String(a[0])
			}
			panic(&ErrorObject{Message: msg, Irritants: append([]Scmer{}, a[1:]...)})
		},
	})
	Declare(libBase, &Declaration{
		"error-object?", "tells if the value is an error object",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer {
			_, ok := a[0].(error)
			return ok
		},
	})
	Declare(libBase, &Declaration{
		"error-object-message", "returns the message of an error object",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"error", "any", "error object"},
		}, "string",
		func(a ...Scmer) Scmer {
			switch e := a[0].(type) {
			case *ErrorObject:
				return e.Message
			case error:
				return e.Error()
			}
			panic(&TypeCheckError{"error", "error-object", TypeName(a[0])})
		},
	})
	Declare(libBase, &Declaration{
		"error-object-irritants", "returns the irritants of an error object",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"error", "any", "error object"},
		}, "list",
		func(a ...Scmer) Scmer {
			if e, ok := a[0].(*ErrorObject); ok {
				return List(e.Irritants...)
			}
			return Nil
		},
	})
	Declare(libBase, &Declaration{
		"file-error?", "tells if the value is an error caused by a file operation",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer {
			_, ok := a[0].(*SourceError)
			return ok
		},
	})
	Declare(libBase, &Declaration{
		"read-error?", "tells if the value is an error raised by the reader",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer {
			_, ok := a[0].(*ReadError)
			return ok
		},
	})

	DeclareTitle("Parameters")

	Declare(libBase, &Declaration{
		"make-parameter", "creates a parameter object; an optional converter is applied to every new value",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "initial value"},
			DeclarationParameter{"converter", "func", "optional converter"},
		}, "func",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			p := &Parameter{value: a[0]}
			if len(a) == 2 {
				p.converter = a[1]
				p.value = rt.InvokeFull(scope, a[1], []Scmer{a[0]})
			}
			return p
		}),
	})
	Declare(libBase, &Declaration{
		"parameterize", "rebinds parameter objects while the body runs",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"bindings", "list", "((parameter value)...)"},
			DeclarationParameter{"body...", "any", "body forms"},
		}, "any",
		Macro(parameterizeMacro),
	})

	DeclareTitle("Lazy evaluation")

	Declare(libLazy, &Declaration{
		"delay", "returns a promise that evaluates expression once when forced",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"expression", "any", "expression"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return &Promise{scope: scope, expr: a[0]}
		}),
	})
	Declare(libLazy, &Declaration{
		"delay-force", "like delay, for an expression that returns a promise; long chains are forced iteratively",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"expression", "any", "expression yielding a promise"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return &Promise{scope: scope, expr: a[0], chain: true}
		}),
	})
	Declare(libLazy, &Declaration{
		"make-promise", "wraps a value into an already forced promise",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "any",
		func(a ...Scmer) Scmer {
			if p, ok := a[0].(*Promise); ok {
				return p
			}
			return &Promise{done: true, value: a[0]}
		},
	})
	Declare(libLazy, &Declaration{
		"force", "forces a promise and returns its value; other values are returned as is",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"promise", "any", "promise"},
		}, "any",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.force(a[0])
		}),
	})
	Declare(libLazy, &Declaration{
		"promise?", "tells if the value is a promise",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer {
			_, ok := a[0].(*Promise)
			return ok
		},
	})

	DeclareTitle("Process context")

	Declare(libProcessContext, &Declaration{
		"exit", "ends the program after running pending dynamic-wind after thunks; #t or no argument means success",
		0, 1,
		[]DeclarationParameter{
			DeclarationParameter{"code", "int|bool", "exit code"},
		}, "nil",
		func(a ...Scmer) Scmer {
			panic(&ExitSignal{Code: exitCode(a)})
		},
	})
	Declare(libProcessContext, &Declaration{
		"emergency-exit", "ends the program without running dynamic-wind after thunks",
		0, 1,
		[]DeclarationParameter{
			DeclarationParameter{"code", "int|bool", "exit code"},
		}, "nil",
		func(a ...Scmer) Scmer {
			panic(&ExitSignal{Code: exitCode(a), Emergency: true})
		},
	})

	DeclareTitle("Mutation")

	Declare(libColibri, &Declaration{
		"++!", "increments a variable (by 1 or the given amount) and returns the new value",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"variable", "symbol", "variable to change"},
			DeclarationParameter{"amount", "number", "optional amount"},
		}, "number",
		Macro(stepMacro("++!", 1)),
	})
	Declare(libColibri, &Declaration{
		"--!", "decrements a variable (by 1 or the given amount) and returns the new value",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"variable", "symbol", "variable to change"},
			DeclarationParameter{"amount", "number", "optional amount"},
		}, "number",
		Macro(stepMacro("--!", -1)),
	})
}

func spreadLists(args []Scmer, who string) [][]Scmer {
	lists := make([][]Scmer, len(args))
	for i, l := range args {
		lists[i] = MustList(l, who)
	}
	return lists
}

func shortest(lists [][]Scmer) int {
	n := len(lists[0])
	for _, l := range lists[1:] {
		if len(l) < n {
			n = len(l)
		}
	}
	return n
}

func column(lists [][]Scmer, i int) []Scmer {
	args := make([]Scmer, len(lists))
	for j, l := range lists {
		args[j] = l[i]
	}
	return args
}
