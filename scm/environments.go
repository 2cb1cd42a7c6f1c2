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

func mustEnvironment(v Scmer, who string) *Scope {
	env, ok := v.(*Scope)
	if !ok {
		panic(&TypeCheckError{who, "environment", TypeName(v)})
	}
	return env
}

func init_environments() {
	DeclareTitle("Environments")

	Declare(libEval, &Declaration{
		"eval", "evaluates data as code in the given environment (default: the interaction environment)",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"expression", "any", "code as data"},
			DeclarationParameter{"environment", "environment", "optional environment"},
		}, "any",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			env := rt.User
			if len(a) == 2 {
				env = mustEnvironment(a[1], "eval")
			}
			return rt.Tail(env, a[0])
		}),
	})
	Declare(libEval, &Declaration{
		"environment", "returns an immutable environment holding the named libraries, e.g. (environment '(scheme base))",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"import-sets...", "list", "library names or import sets"},
		}, "environment",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.environment(scope, a, true)
		}),
	})
	Declare(libBase, &Declaration{
		"interaction-environment", "returns the mutable environment user programs run in",
		0, 0,
		[]DeclarationParameter{}, "environment",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.User
		}),
	})
	Declare(libColibri, &Declaration{
		"mutable-environment", "like environment, but definitions can be added to the result",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"import-sets...", "list", "library names or import sets"},
		}, "environment",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.environment(scope, a, false)
		}),
	})
	Declare(libColibri, &Declaration{
		"freeze-environment", "makes the top frame of an environment immutable and returns it",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"environment", "environment", "environment to freeze"},
		}, "environment",
		func(a ...Scmer) Scmer {
			env := mustEnvironment(a[0], "freeze-environment")
			env.Freeze()
			return env
		},
	})
	Declare(libColibri, &Declaration{
		"current-environment", "returns the scope the form is evaluated in",
		0, 0,
		[]DeclarationParameter{}, "environment",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return scope
		}),
	})
	Declare(libColibri, &Declaration{
		"environment?", "tells if the value is an environment",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer {
			_, ok := a[0].(*Scope)
			return ok
		},
	})
	Declare(libColibri, &Declaration{
		"use", "makes host namespaces available for unqualified name lookup in the current scope",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"namespaces...", "symbol", "namespace names"},
		}, "nil",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			for _, ns := range a {
				name, ok := plainName(ns)
				if !ok {
					if s, isString := ns.(string); isString {
						name = s
					} else {
						errorf("use: invalid namespace %s", Serialize(ns))
					}
				}
				scope.AddInteropNamespace(name)
			}
			return Nil
		}),
	})
}
