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

import "io"
import "fmt"

// port returns the optional output port argument at position i.
func (rt *Runtime) port(a []Scmer, i int, who string) io.Writer {
	if len(a) <= i {
		return rt.Stdout()
	}
	w, ok := a[i].(io.Writer)
	if !ok {
		panic(&TypeCheckError{who, "output-port", TypeName(a[i])})
	}
	return w
}

func writer(who string, render func(Scmer) string) BuiltinFunc {
	return func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
		io.WriteString(rt.port(a, 1, who), render(a[0]))
		return nil
	}
}

func init_io() {
	DeclareTitle("Output")

	Declare(libWrite, &Declaration{
		"display", "writes a value in human readable form: strings and characters without quotes",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value to print"},
			DeclarationParameter{"port", "output-port", "optional port, default (current-output-port)"},
		}, "nil",
		writer("display", String),
	})
	for _, name := range []string{"write", "write-shared", "write-simple"} {
		Declare(libWrite, &Declaration{
			name, "writes a value in the form read accepts; cycles print as ...",
			1, 2,
			[]DeclarationParameter{
				DeclarationParameter{"value", "any", "value to print"},
				DeclarationParameter{"port", "output-port", "optional port, default (current-output-port)"},
			}, "nil",
			writer(name, Serialize),
		})
	}
	Declare(libBase, &Declaration{
		"newline", "writes a line break",
		0, 1,
		[]DeclarationParameter{
			DeclarationParameter{"port", "output-port", "optional port, default (current-output-port)"},
		}, "nil",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			io.WriteString(rt.port(a, 0, "newline"), "\n")
			return nil
		}),
	})
	Declare(libBase, &Declaration{
		"write-string", "writes a string without quotes",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
			DeclarationParameter{"port", "output-port", "optional port"},
		}, "nil",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			io.WriteString(rt.port(a, 1, "write-string"), mustString(a[0], "write-string"))
			return nil
		}),
	})
	Declare(libBase, &Declaration{
		"write-char", "writes a single character",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"char", "char", "character"},
			DeclarationParameter{"port", "output-port", "optional port"},
		}, "nil",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			io.WriteString(rt.port(a, 1, "write-char"), string(mustChar(a[0], "write-char")))
			return nil
		}),
	})
	Declare(libBase, &Declaration{
		"current-output-port", "returns the port display and write use by default",
		0, 0,
		[]DeclarationParameter{}, "output-port",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.Stdout()
		}),
	})
	Declare(libColibri, &Declaration{
		"print", "displays all arguments followed by a line break",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "any", "values to print"},
		}, "nil",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			for _, v := range a {
				io.WriteString(rt.Stdout(), String(v))
			}
			fmt.Fprintln(rt.Stdout())
			return nil
		}),
	})
	Declare(libColibri, &Declaration{
		"help", "lists all builtins, or describes one",
		0, 1,
		[]DeclarationParameter{
			DeclarationParameter{"topic", "string", "optional name of a builtin"},
		}, "nil",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			topic := ""
			if len(a) == 1 {
				if name, ok := symbolName(a[0]); ok {
					topic = name
				} else {
					topic = mustString(a[0], "help")
				}
			}
			Help(rt.Stdout(), topic)
			return nil
		}),
	})
	Declare(libColibri, &Declaration{
		"read-datum", "parses a string into one datum without evaluating it",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "source text"},
		}, "any",
		func(a ...Scmer) Scmer {
			v, err := ReadDatum("read-datum", mustString(a[0], "read-datum"))
			if err != nil {
				panic(err)
			}
			return datum(v, make(map[*Pair]Scmer))
		},
	})
}
