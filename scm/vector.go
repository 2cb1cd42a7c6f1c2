/*
Copyright (C) 2025  Carl-Philip Hänsch

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

import "math"
import "strings"
import "unicode/utf8"

func mustVector(v Scmer, who string) *Vector {
	vec, ok := v.(*Vector)
	if !ok {
		panic(&TypeCheckError{who, "vector", TypeName(v)})
	}
	return vec
}

func mustBytevector(v Scmer, who string) *Bytevector {
	bv, ok := v.(*Bytevector)
	if !ok {
		panic(&TypeCheckError{who, "bytevector", TypeName(v)})
	}
	return bv
}

func mustByte(v Scmer, who string) byte {
	i := indexArg(v, who)
	if i > 255 {
		errorf("%s: %d is not a byte", who, i)
	}
	return byte(i)
}

func vectorColumns(args []Scmer, who string) [][]Scmer {
	lists := make([][]Scmer, len(args))
	for i, v := range args {
		lists[i] = mustVector(v, who).Items
	}
	return lists
}

func init_vector() {
	DeclareTitle("Vectors")

	Declare(libBase, predicate("vector?", "tells if the value is a vector", typeVector.Matches))
	Declare(libBase, &Declaration{
		"vector", "builds a vector of its arguments",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"items...", "any", "elements"},
		}, "vector",
		func(a ...Scmer) Scmer {
			return &Vector{append([]Scmer{}, a...)}
		},
	})
	Declare(libBase, &Declaration{
		"make-vector", "builds a vector of k elements, all set to fill (default #f)",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"k", "int", "length"},
			DeclarationParameter{"fill", "any", "optional initial value"},
		}, "vector",
		func(a ...Scmer) Scmer {
			items := make([]Scmer, indexArg(a[0], "make-vector"))
			var fill Scmer = false
			if len(a) == 2 {
				fill = a[1]
			}
			for i := range items {
				items[i] = fill
			}
			return &Vector{items}
		},
	})
	Declare(libBase, &Declaration{
		"vector-length", "returns the number of elements",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"vector", "vector", "vector"},
		}, "int",
		func(a ...Scmer) Scmer { return NewInt(int64(len(mustVector(a[0], "vector-length").Items))) },
	})
	Declare(libBase, &Declaration{
		"vector-ref", "returns element k",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"vector", "vector", "vector"},
			DeclarationParameter{"k", "int", "index"},
		}, "any",
		func(a ...Scmer) Scmer {
			vec := mustVector(a[0], "vector-ref")
			k := indexArg(a[1], "vector-ref")
			if k >= len(vec.Items) {
				errorf("vector-ref: index %d out of range", k)
			}
			return vec.Items[k]
		},
	})
	Declare(libBase, &Declaration{
		"vector-set!", "replaces element k",
		3, 3,
		[]DeclarationParameter{
			DeclarationParameter{"vector", "vector", "vector"},
			DeclarationParameter{"k", "int", "index"},
			DeclarationParameter{"value", "any", "new element"},
		}, "nil",
		func(a ...Scmer) Scmer {
			vec := mustVector(a[0], "vector-set!")
			k := indexArg(a[1], "vector-set!")
			if k >= len(vec.Items) {
				errorf("vector-set!: index %d out of range", k)
			}
			vec.Items[k] = a[2]
			return Nil
		},
	})
	Declare(libBase, &Declaration{
		"vector->list", "returns the elements from start to end as a list",
		1, 3,
		[]DeclarationParameter{
			DeclarationParameter{"vector", "vector", "vector"},
			DeclarationParameter{"start", "int", "optional first index"},
			DeclarationParameter{"end", "int", "optional end index"},
		}, "list",
		func(a ...Scmer) Scmer {
			vec := mustVector(a[0], "vector->list")
			start, end := rangeArgs(a, 1, len(vec.Items), "vector->list")
			return List(vec.Items[start:end]...)
		},
	})
	Declare(libBase, &Declaration{
		"list->vector", "builds a vector from a list",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "elements"},
		}, "vector",
		func(a ...Scmer) Scmer {
			return &Vector{append([]Scmer{}, MustList(a[0], "list->vector")...)}
		},
	})
	Declare(libBase, &Declaration{
		"vector->string", "joins a vector of characters into a string",
		1, 3,
		[]DeclarationParameter{
			DeclarationParameter{"vector", "vector", "characters"},
			DeclarationParameter{"start", "int", "optional first index"},
			DeclarationParameter{"end", "int", "optional end index"},
		}, "string",
		func(a ...Scmer) Scmer {
			vec := mustVector(a[0], "vector->string")
			start, end := rangeArgs(a, 1, len(vec.Items), "vector->string")
			var b strings.Builder
			for _, v := range vec.Items[start:end] {
				b.WriteRune(mustChar(v, "vector->string"))
			}
			return b.String()
		},
	})
	Declare(libBase, &Declaration{
		"string->vector", "splits a string into a vector of characters",
		1, 3,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
			DeclarationParameter{"start", "int", "optional first index"},
			DeclarationParameter{"end", "int", "optional end index"},
		}, "vector",
		func(a ...Scmer) Scmer {
			runes := []rune(mustString(a[0], "string->vector"))
			start, end := rangeArgs(a, 1, len(runes), "string->vector")
			items := make([]Scmer, 0, end-start)
			for _, r := range runes[start:end] {
				items = append(items, Char(r))
			}
			return &Vector{items}
		},
	})
	Declare(libBase, &Declaration{
		"vector-copy", "copies a vector, optionally only from start to end",
		1, 3,
		[]DeclarationParameter{
			DeclarationParameter{"vector", "vector", "vector"},
			DeclarationParameter{"start", "int", "optional first index"},
			DeclarationParameter{"end", "int", "optional end index"},
		}, "vector",
		func(a ...Scmer) Scmer {
			vec := mustVector(a[0], "vector-copy")
			start, end := rangeArgs(a, 1, len(vec.Items), "vector-copy")
			return &Vector{append([]Scmer{}, vec.Items[start:end]...)}
		},
	})
	Declare(libBase, &Declaration{
		"vector-copy!", "copies from[start:end] into to at index at",
		3, 5,
		[]DeclarationParameter{
			DeclarationParameter{"to", "vector", "target"},
			DeclarationParameter{"at", "int", "target index"},
			DeclarationParameter{"from", "vector", "source"},
			DeclarationParameter{"start", "int", "optional first source index"},
			DeclarationParameter{"end", "int", "optional end source index"},
		}, "nil",
		func(a ...Scmer) Scmer {
			to := mustVector(a[0], "vector-copy!")
			at := indexArg(a[1], "vector-copy!")
			from := mustVector(a[2], "vector-copy!")
			start, end := rangeArgs(a, 3, len(from.Items), "vector-copy!")
			if at+end-start > len(to.Items) {
				errorf("vector-copy!: target too short")
			}
			copy(to.Items[at:], from.Items[start:end]) // copy handles overlap
			return Nil
		},
	})
	Declare(libBase, &Declaration{
		"vector-fill!", "sets elements from start to end to fill",
		2, 4,
		[]DeclarationParameter{
			DeclarationParameter{"vector", "vector", "vector"},
			DeclarationParameter{"fill", "any", "value"},
			DeclarationParameter{"start", "int", "optional first index"},
			DeclarationParameter{"end", "int", "optional end index"},
		}, "nil",
		func(a ...Scmer) Scmer {
			vec := mustVector(a[0], "vector-fill!")
			start, end := rangeArgs(a, 2, len(vec.Items), "vector-fill!")
			for i := start; i < end; i++ {
				vec.Items[i] = a[1]
			}
			return Nil
		},
	})
	Declare(libBase, &Declaration{
		"vector-append", "concatenates vectors",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"vectors...", "vector", "vectors"},
		}, "vector",
		func(a ...Scmer) Scmer {
			items := []Scmer{}
			for _, v := range a {
				items = append(items, mustVector(v, "vector-append").Items...)
			}
			return &Vector{items}
		},
	})
	Declare(libBase, &Declaration{
		"vector-map", "applies a procedure elementwise, stopping at the shortest vector",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"procedure", "func", "mapping function"},
			DeclarationParameter{"vectors...", "vector", "vectors"},
		}, "vector",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			lists := vectorColumns(a[1:], "vector-map")
			n := shortest(lists)
			items := make([]Scmer, n)
			for i := 0; i < n; i++ {
				items[i] = rt.InvokeFull(scope, a[0], column(lists, i))
			}
			return &Vector{items}
		}),
	})
	Declare(libBase, &Declaration{
		"vector-for-each", "calls a procedure elementwise",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"procedure", "func", "receives the elements"},
			DeclarationParameter{"vectors...", "vector", "vectors"},
		}, "nil",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			lists := vectorColumns(a[1:], "vector-for-each")
			for i := 0; i < shortest(lists); i++ {
				rt.InvokeFull(scope, a[0], column(lists, i))
			}
			return Nil
		}),
	})
	Declare(libColibri, &Declaration{
		"dot", "produces the dot product of two numeric vectors or lists",
		2, 3,
		[]DeclarationParameter{
			DeclarationParameter{"v1", "list", "vector1"},
			DeclarationParameter{"v2", "list", "vector2"},
			DeclarationParameter{"mode", "string", "DOT, COSINE, EUCLIDEAN, default is DOT"},
		}, "number",
		func(a ...Scmer) Scmer {
			var result float64
			v1 := numericItems(a[0], "dot")
			v2 := numericItems(a[1], "dot")
			mode := "DOT"
			if len(a) > 2 {
				mode = strings.ToUpper(mustString(a[2], "dot"))
			}
			if mode == "COSINE" {
				var lena float64 = 0
				var lenb float64 = 0
				for i := 0; i < len(v1) && i < len(v2); i++ {
					w1 := ToFloat(v1[i])
					w2 := ToFloat(v2[i])
					lena += w1 * w1
					lenb += w2 * w2
					result += w1 * w2
				}
				result = result / math.Sqrt(lena*lenb)
			} else {
				for i := 0; i < len(v1) && i < len(v2); i++ {
					result += ToFloat(v1[i]) * ToFloat(v2[i])
				}
				if mode == "EUCLIDEAN" {
					result = math.Sqrt(result)
				}
			}
			return NewFloat(result)
		},
	})

	DeclareTitle("Bytevectors")

	Declare(libBase, predicate("bytevector?", "tells if the value is a bytevector", typeBytevector.Matches))
	Declare(libBase, &Declaration{
		"bytevector", "builds a bytevector of its arguments",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"bytes...", "int", "values 0..255"},
		}, "bytevector",
		func(a ...Scmer) Scmer {
			b := make([]byte, len(a))
			for i, v := range a {
				b[i] = mustByte(v, "bytevector")
			}
			return &Bytevector{b}
		},
	})
	Declare(libBase, &Declaration{
		"make-bytevector", "builds a bytevector of k bytes set to fill (default 0)",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"k", "int", "length"},
			DeclarationParameter{"fill", "int", "optional byte"},
		}, "bytevector",
		func(a ...Scmer) Scmer {
			b := make([]byte, indexArg(a[0], "make-bytevector"))
			if len(a) == 2 {
				fill := mustByte(a[1], "make-bytevector")
				for i := range b {
					b[i] = fill
				}
			}
			return &Bytevector{b}
		},
	})
	Declare(libBase, &Declaration{
		"bytevector-length", "returns the number of bytes",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"bytevector", "bytevector", "bytevector"},
		}, "int",
		func(a ...Scmer) Scmer { return NewInt(int64(len(mustBytevector(a[0], "bytevector-length").Bytes))) },
	})
	Declare(libBase, &Declaration{
		"bytevector-u8-ref", "returns byte k",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"bytevector", "bytevector", "bytevector"},
			DeclarationParameter{"k", "int", "index"},
		}, "int",
		func(a ...Scmer) Scmer {
			bv := mustBytevector(a[0], "bytevector-u8-ref")
			k := indexArg(a[1], "bytevector-u8-ref")
			if k >= len(bv.Bytes) {
				errorf("bytevector-u8-ref: index %d out of range", k)
			}
			return NewInt(int64(bv.Bytes[k]))
		},
	})
	Declare(libBase, &Declaration{
		"bytevector-u8-set!", "replaces byte k",
		3, 3,
		[]DeclarationParameter{
			DeclarationParameter{"bytevector", "bytevector", "bytevector"},
			DeclarationParameter{"k", "int", "index"},
			DeclarationParameter{"byte", "int", "value 0..255"},
		}, "nil",
		func(a ...Scmer) Scmer {
			bv := mustBytevector(a[0], "bytevector-u8-set!")
			k := indexArg(a[1], "bytevector-u8-set!")
			if k >= len(bv.Bytes) {
				errorf("bytevector-u8-set!: index %d out of range", k)
			}
			bv.Bytes[k] = mustByte(a[2], "bytevector-u8-set!")
			return Nil
		},
	})
	Declare(libBase, &Declaration{
		"bytevector-copy", "copies a bytevector, optionally only from start to end",
		1, 3,
		[]DeclarationParameter{
			DeclarationParameter{"bytevector", "bytevector", "bytevector"},
			DeclarationParameter{"start", "int", "optional first index"},
			DeclarationParameter{"end", "int", "optional end index"},
		}, "bytevector",
		func(a ...Scmer) Scmer {
			bv := mustBytevector(a[0], "bytevector-copy")
			start, end := rangeArgs(a, 1, len(bv.Bytes), "bytevector-copy")
			return &Bytevector{append([]byte{}, bv.Bytes[start:end]...)}
		},
	})
	Declare(libBase, &Declaration{
		"bytevector-copy!", "copies from[start:end] into to at index at",
		3, 5,
		[]DeclarationParameter{
			DeclarationParameter{"to", "bytevector", "target"},
			DeclarationParameter{"at", "int", "target index"},
			DeclarationParameter{"from", "bytevector", "source"},
			DeclarationParameter{"start", "int", "optional first source index"},
			DeclarationParameter{"end", "int", "optional end source index"},
		}, "nil",
		func(a ...Scmer) Scmer {
			to := mustBytevector(a[0], "bytevector-copy!")
			at := indexArg(a[1], "bytevector-copy!")
			from := mustBytevector(a[2], "bytevector-copy!")
			start, end := rangeArgs(a, 3, len(from.Bytes), "bytevector-copy!")
			if at+end-start > len(to.Bytes) {
				errorf("bytevector-copy!: target too short")
			}
			copy(to.Bytes[at:], from.Bytes[start:end])
			return Nil
		},
	})
	Declare(libBase, &Declaration{
		"bytevector-append", "concatenates bytevectors",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"bytevectors...", "bytevector", "bytevectors"},
		}, "bytevector",
		func(a ...Scmer) Scmer {
			b := []byte{}
			for _, v := range a {
				b = append(b, mustBytevector(v, "bytevector-append").Bytes...)
			}
			return &Bytevector{b}
		},
	})
	Declare(libBase, &Declaration{
		"utf8->string", "decodes UTF-8 bytes",
		1, 3,
		[]DeclarationParameter{
			DeclarationParameter{"bytevector", "bytevector", "UTF-8 data"},
			DeclarationParameter{"start", "int", "optional first index"},
			DeclarationParameter{"end", "int", "optional end index"},
		}, "string",
		func(a ...Scmer) Scmer {
			bv := mustBytevector(a[0], "utf8->string")
			start, end := rangeArgs(a, 1, len(bv.Bytes), "utf8->string")
			if !utf8.Valid(bv.Bytes[start:end]) {
				errorf("utf8->string: invalid UTF-8")
			}
			return string(bv.Bytes[start:end])
		},
	})
	Declare(libBase, &Declaration{
		"string->utf8", "encodes a string as UTF-8 bytes",
		1, 3,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
			DeclarationParameter{"start", "int", "optional first character index"},
			DeclarationParameter{"end", "int", "optional end character index"},
		}, "bytevector",
		func(a ...Scmer) Scmer {
			runes := []rune(mustString(a[0], "string->utf8"))
			start, end := rangeArgs(a, 1, len(runes), "string->utf8")
			return &Bytevector{[]byte(string(runes[start:end]))}
		},
	})
}

// numericItems accepts both vectors and lists of numbers.
func numericItems(v Scmer, who string) []Scmer {
	if vec, ok := v.(*Vector); ok {
		return vec.Items
	}
	return MustList(v, who)
}
