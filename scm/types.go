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

import "math"
import "github.com/nukata/goarith"

// Type is what a parameter or return annotation resolves to.
type Type interface {
	TypeName() string
	Matches(v Scmer) bool
}

type PrimitiveType struct {
	Name string
	Pred func(Scmer) bool
}

func (t *PrimitiveType) TypeName() string { return t.Name }

func (t *PrimitiveType) Matches(v Scmer) bool { return t.Pred(v) }

func (t *PrimitiveType) String() string { return "#<type " + t.Name + ">" }

func intRange(lo, hi float64) func(Scmer) bool {
	return func(v Scmer) bool {
		n, ok := v.(goarith.Number)
		if !ok || !IsExactInteger(n) {
			return false
		}
		f := ToFloat(n)
		return f >= lo && f <= hi
	}
}

var (
	typeAny     = &PrimitiveType{"any", func(Scmer) bool { return true }}
	typeInteger = &PrimitiveType{"integer", func(v Scmer) bool {
		n, ok := v.(goarith.Number)
		return ok && IsExactInteger(n)
	}}
	typeI32    = &PrimitiveType{"i32", intRange(math.MinInt32, math.MaxInt32)}
	typeI64    = &PrimitiveType{"i64", intRange(math.MinInt64, math.MaxInt64)}
	typeNumber = &PrimitiveType{"number", func(v Scmer) bool {
		_, ok := v.(goarith.Number)
		return ok
	}}
	typeFloat = &PrimitiveType{"f64", func(v Scmer) bool {
		_, ok := v.(goarith.Float64)
		return ok
	}}
	typeString = &PrimitiveType{"string", func(v Scmer) bool {
		_, ok := v.(string)
		return ok
	}}
	typeChar = &PrimitiveType{"char", func(v Scmer) bool {
		_, ok := v.(Char)
		return ok
	}}
	typeBool = &PrimitiveType{"boolean", func(v Scmer) bool {
		_, ok := v.(bool)
		return ok
	}}
	typeSymbol = &PrimitiveType{"symbol", func(v Scmer) bool {
		_, ok := v.(Symbol)
		return ok
	}}
	typeList      = &PrimitiveType{"list", IsList}
	typePair      = &PrimitiveType{"pair", IsPair}
	typeProcedure = &PrimitiveType{"procedure", IsProcedure}
	typeVector    = &PrimitiveType{"vector", func(v Scmer) bool {
		_, ok := v.(*Vector)
		return ok
	}}
	typeBytevector = &PrimitiveType{"bytevector", func(v Scmer) bool {
		_, ok := v.(*Bytevector)
		return ok
	}}
	typeVoid = &PrimitiveType{"void", func(v Scmer) bool {
		_, isNil := v.(NilType)
		return v == nil || isNil
	}}
)

// builtinTypes are the designators bound in (colibri base). Several spellings
// share one type.
var builtinTypes = map[string]*PrimitiveType{
	"any":        typeAny,
	"int":        typeInteger,
	"integer":    typeInteger,
	"i32":        typeI32,
	"i64":        typeI64,
	"number":     typeNumber,
	"real":       typeNumber,
	"f64":        typeFloat,
	"float":      typeFloat,
	"double":     typeFloat,
	"string":     typeString,
	"str":        typeString,
	"char":       typeChar,
	"bool":       typeBool,
	"boolean":    typeBool,
	"symbol":     typeSymbol,
	"list":       typeList,
	"pair":       typePair,
	"procedure":  typeProcedure,
	"vector":     typeVector,
	"bytevector": typeBytevector,
	"void":       typeVoid,
}

// resolveType evaluates a type designator in the procedure's frame. Names
// like list or string that are also procedures fall back to builtinTypes.
func resolveType(rt *Runtime, frame *Scope, node Scmer) Type {
	var v Scmer = node
	if _, ok := node.(Type); !ok {
		if name, isSym := plainName(node); isSym {
			if bound, ok := frame.TryResolve(name); ok {
				if t, isType := bound.(Type); isType {
					return t
				}
			}
			if t, ok := builtinTypes[name]; ok {
				return t
			}
		}
		v = rt.Eval(frame, node)
	}
	switch t := v.(type) {
	case Type:
		return t
	case NilType:
		return typeVoid
	}
	panic(&EvaluationError{Message: "type designator " + Serialize(node) + " did not resolve to a type"})
}

// TypeName names the dynamic type of v for error messages.
func TypeName(v Scmer) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case NilType:
		return "nil"
	case bool:
		return "boolean"
	case string:
		return "string"
	case Char:
		return "char"
	case Symbol:
		return "symbol"
	case goarith.Number:
		if IsExactInteger(x) {
			return "integer"
		}
		return "real"
	case *Pair:
		return "pair"
	case *Vector:
		return "vector"
	case *Bytevector:
		return "bytevector"
	case *RecordInstance:
		return x.Type.Name
	case *RecordTypeDefinition:
		return "record-type"
	case *Scope:
		return "environment"
	case *Values:
		return "values"
	case Macro, *SyntaxTransformer:
		return "syntax"
	case Invokable, func(...Scmer) Scmer:
		return "procedure"
	case Type:
		return "type"
	}
	return "host object"
}
