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

import "sort"

func mustPair(v Scmer, who string) *Pair {
	p, ok := v.(*Pair)
	if !ok {
		panic(&TypeCheckError{who, "pair", TypeName(v)})
	}
	return p
}

// cxr walks a c[ad]+r path right to left.
func cxr(path string) func(a ...Scmer) Scmer {
	name := "c" + path + "r"
	return func(a ...Scmer) Scmer {
		v := a[0]
		for i := len(path) - 1; i >= 0; i-- {
			p := mustPair(v, name)
			if path[i] == 'a' {
				v = p.Car
			} else {
				v = p.Cdr
			}
		}
		return v
	}
}

func cxrPaths(length int) []string {
	if length == 0 {
		return []string{""}
	}
	var result []string
	for _, rest := range cxrPaths(length - 1) {
		result = append(result, "a"+rest, "d"+rest)
	}
	return result
}

// member searches a list with the given equivalence and returns the tail
// starting at the match.
func (rt *Runtime) member(scope *Scope, x, list Scmer, eq func(a, b Scmer) bool, who string) Scmer {
	for v := list; ; {
		p, ok := v.(*Pair)
		if !ok {
			return false
		}
		if eq(x, p.Car) {
			return p
		}
		v = p.Cdr
	}
}

func (rt *Runtime) assoc(scope *Scope, x, alist Scmer, eq func(a, b Scmer) bool, who string) Scmer {
	for v := alist; ; {
		p, ok := v.(*Pair)
		if !ok {
			return false
		}
		entry := mustPair(p.Car, who)
		if eq(x, entry.Car) {
			return entry
		}
		v = p.Cdr
	}
}

// customEq turns an optional comparison procedure argument into a Go predicate.
func (rt *Runtime) customEq(scope *Scope, a []Scmer, fallback func(a, b Scmer) bool) func(a, b Scmer) bool {
	if len(a) < 3 {
		return fallback
	}
	return func(x, y Scmer) bool {
		return ToBool(rt.InvokeFull(scope, a[2], []Scmer{x, y}))
	}
}

func predicate(name, desc string, f func(v Scmer) bool) *Declaration {
	return &Declaration{
		name, desc,
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer { return f(a[0]) },
	}
}

func init_list() {
	DeclareTitle("Lists")

	Declare(libBase, &Declaration{
		"cons", "constructs a pair from a head and a tail",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"car", "any", "new head element"},
			DeclarationParameter{"cdr", "any", "tail, usually a list"},
		}, "list",
		func(a ...Scmer) Scmer {
			return Cons(a[0], a[1])
		},
	})
	Declare(libBase, &Declaration{
		"car", "extracts the head of a pair",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"pair", "pair", "pair"},
		}, "any",
		func(a ...Scmer) Scmer {
			return mustPair(a[0], "car").Car
		},
	})
	Declare(libBase, &Declaration{
		"cdr", "extracts the tail of a pair",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"pair", "pair", "pair"},
		}, "any",
		func(a ...Scmer) Scmer {
			return mustPair(a[0], "cdr").Cdr
		},
	})
	for _, path := range cxrPaths(2) {
		Declare(libBase, &Declaration{
			"c" + path + "r", "nested car/cdr access",
			1, 1,
			[]DeclarationParameter{
				DeclarationParameter{"pair", "pair", "pair"},
			}, "any",
			cxr(path),
		})
	}
	for _, length := range []int{3, 4} {
		for _, path := range cxrPaths(length) {
			Declare(libCxr, &Declaration{
				"c" + path + "r", "nested car/cdr access",
				1, 1,
				[]DeclarationParameter{
					DeclarationParameter{"pair", "pair", "pair"},
				}, "any",
				cxr(path),
			})
		}
	}
	Declare(libBase, &Declaration{
		"set-car!", "replaces the head of a pair",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"pair", "pair", "pair"},
			DeclarationParameter{"value", "any", "new head"},
		}, "nil",
		func(a ...Scmer) Scmer {
			mustPair(a[0], "set-car!").Car = a[1]
			return Nil
		},
	})
	Declare(libBase, &Declaration{
		"set-cdr!", "replaces the tail of a pair",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"pair", "pair", "pair"},
			DeclarationParameter{"value", "any", "new tail"},
		}, "nil",
		func(a ...Scmer) Scmer {
			mustPair(a[0], "set-cdr!").Cdr = a[1]
			return Nil
		},
	})
	Declare(libBase, &Declaration{
		"list", "builds a list of its arguments",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"items...", "any", "elements"},
		}, "list",
		func(a ...Scmer) Scmer {
			return List(a...)
		},
	})
	Declare(libBase, &Declaration{
		"make-list", "builds a list of k elements, all set to fill (default nil)",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"k", "int", "length"},
			DeclarationParameter{"fill", "any", "optional element"},
		}, "list",
		func(a ...Scmer) Scmer {
			items := make([]Scmer, indexArg(a[0], "make-list"))
			for i := range items {
				if len(a) > 1 {
					items[i] = a[1]
				} else {
					items[i] = Nil
				}
			}
			return List(items...)
		},
	})
	Declare(libBase, &Declaration{
		"length", "counts the elements of a proper list",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "list"},
		}, "int",
		func(a ...Scmer) Scmer {
			n := Length(a[0])
			if n < 0 {
				panic(&TypeCheckError{"list", "list", TypeName(a[0])})
			}
			return NewInt(int64(n))
		},
	})
	Declare(libBase, &Declaration{
		"append", "concatenates lists; the last argument is shared, not copied",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"lists...", "list", "lists to concatenate"},
		}, "list",
		func(a ...Scmer) Scmer {
			if len(a) == 0 {
				return Nil
			}
			result := a[len(a)-1]
			for i := len(a) - 2; i >= 0; i-- {
				result = ListWithTail(MustList(a[i], "append"), result)
			}
			return result
		},
	})
	Declare(libBase, &Declaration{
		"reverse", "returns a new list in reverse order",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "list"},
		}, "list",
		func(a ...Scmer) Scmer {
			var result Scmer = Nil
			for _, item := range MustList(a[0], "reverse") {
				result = Cons(item, result)
			}
			return result
		},
	})
	Declare(libBase, &Declaration{
		"list-tail", "drops the first k elements",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "list"},
			DeclarationParameter{"k", "int", "elements to drop"},
		}, "list",
		func(a ...Scmer) Scmer {
			v := a[0]
			for k := indexArg(a[1], "list-tail"); k > 0; k-- {
				v = mustPair(v, "list-tail").Cdr
			}
			return v
		},
	})
	Declare(libBase, &Declaration{
		"list-ref", "returns the k-th element, starting at 0",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "list"},
			DeclarationParameter{"k", "int", "index"},
		}, "any",
		func(a ...Scmer) Scmer {
			v := a[0]
			for k := indexArg(a[1], "list-ref"); k > 0; k-- {
				v = mustPair(v, "list-ref").Cdr
			}
			return mustPair(v, "list-ref").Car
		},
	})
	Declare(libBase, &Declaration{
		"list-set!", "replaces the k-th element",
		3, 3,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "list"},
			DeclarationParameter{"k", "int", "index"},
			DeclarationParameter{"value", "any", "new element"},
		}, "nil",
		func(a ...Scmer) Scmer {
			v := a[0]
			for k := indexArg(a[1], "list-set!"); k > 0; k-- {
				v = mustPair(v, "list-set!").Cdr
			}
			mustPair(v, "list-set!").Car = a[2]
			return Nil
		},
	})
	Declare(libBase, &Declaration{
		"list-copy", "copies the spine of a list",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "list"},
		}, "list",
		func(a ...Scmer) Scmer {
			var items []Scmer
			v := a[0]
			for p, ok := v.(*Pair); ok; p, ok = v.(*Pair) {
				items = append(items, p.Car)
				v = p.Cdr
			}
			return ListWithTail(items, v)
		},
	})
	for _, m := range []struct {
		name string
		eq   func(a, b Scmer) bool
	}{{"memq", Eq}, {"memv", Eqv}, {"member", Equal}} {
		Declare(libBase, &Declaration{
			m.name, "returns the first tail of list whose car is x, or #f",
			2, 3,
			[]DeclarationParameter{
				DeclarationParameter{"x", "any", "element to search"},
				DeclarationParameter{"list", "list", "list"},
				DeclarationParameter{"compare", "func", "optional equivalence"},
			}, "any",
			BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
				return rt.member(scope, a[0], a[1], rt.customEq(scope, a, m.eq), m.name)
			}),
		})
	}
	for _, m := range []struct {
		name string
		eq   func(a, b Scmer) bool
	}{{"assq", Eq}, {"assv", Eqv}, {"assoc", Equal}} {
		Declare(libBase, &Declaration{
			m.name, "returns the first pair of the association list whose car is x, or #f",
			2, 3,
			[]DeclarationParameter{
				DeclarationParameter{"x", "any", "key to search"},
				DeclarationParameter{"alist", "list", "association list"},
				DeclarationParameter{"compare", "func", "optional equivalence"},
			}, "any",
			BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
				return rt.assoc(scope, a[0], a[1], rt.customEq(scope, a, m.eq), m.name)
			}),
		})
	}
	Declare(libColibri, &Declaration{
		"sort", "returns a sorted copy of a list; the optional procedure is the less-than relation",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "list"},
			DeclarationParameter{"less", "func", "optional less-than"},
		}, "list",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			items := append([]Scmer{}, MustList(a[0], "sort")...)
			less := Less
			if len(a) == 2 {
				less = func(x, y Scmer) bool {
					return ToBool(rt.InvokeFull(scope, a[1], []Scmer{x, y}))
				}
			}
			sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
			return List(items...)
		}),
	})

	DeclareTitle("Predicates")

	Declare(libBase, predicate("pair?", "tells if the value is a pair", IsPair))
	Declare(libBase, predicate("list?", "tells if the value is a proper list", IsList))
	Declare(libBase, predicate("null?", "tells if the value is the empty list", func(v Scmer) bool {
		_, ok := v.(NilType)
		return ok
	}))
	Declare(libBase, predicate("symbol?", "tells if the value is a symbol", typeSymbol.Matches))
	Declare(libBase, predicate("boolean?", "tells if the value is #t or #f", typeBool.Matches))
	Declare(libBase, predicate("procedure?", "tells if the value can be called", IsProcedure))
	Declare(libBase, predicate("not", "returns #t for #f and #f for everything else", func(v Scmer) bool {
		return !ToBool(v)
	}))
	Declare(libColibri, predicate("nil?", "tells if the value is nil, null, false or an empty vector", NilEquivalent))
	for _, e := range []struct {
		name, desc string
		eq         func(a, b Scmer) bool
	}{
		{"eq?", "tells if both values are the same object", Eq},
		{"eqv?", "like eq?, but numbers and characters compare by value", Eqv},
		{"equal?", "compares structure recursively; safe on cyclic data", Equal},
	} {
		Declare(libBase, &Declaration{
			e.name, e.desc,
			2, 2,
			[]DeclarationParameter{
				DeclarationParameter{"a", "any", "first value"},
				DeclarationParameter{"b", "any", "second value"},
			}, "bool",
			func(a ...Scmer) Scmer { return e.eq(a[0], a[1]) },
		})
	}
	Declare(libBase, &Declaration{
		"boolean=?", "tells if all arguments are the same boolean",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "bool", "booleans"},
		}, "bool",
		func(a ...Scmer) Scmer {
			for _, v := range a {
				if !typeBool.Matches(v) {
					panic(&TypeCheckError{"values", "boolean", TypeName(v)})
				}
			}
			for _, v := range a[1:] {
				if v != a[0] {
					return false
				}
			}
			return true
		},
	})
	Declare(libBase, &Declaration{
		"symbol=?", "tells if all arguments are the same symbol",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "symbol", "symbols"},
		}, "bool",
		func(a ...Scmer) Scmer {
			first := mustSymbolValue(a[0], "symbol=?")
			for _, v := range a[1:] {
				if mustSymbolValue(v, "symbol=?") != first {
					return false
				}
			}
			return true
		},
	})
}
