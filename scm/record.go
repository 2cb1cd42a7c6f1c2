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

import "strings"
import "github.com/google/uuid"

// RecordTypeDefinition is the value bound to the type name of
// define-record-type. It is also a type designator for annotations.
type RecordTypeDefinition struct {
	Name   string
	ID     uuid.UUID
	Fields []string
}

func (t *RecordTypeDefinition) TypeName() string { return t.Name }

func (t *RecordTypeDefinition) Matches(v Scmer) bool {
	r, ok := v.(*RecordInstance)
	return ok && r.Type == t
}

func (t *RecordTypeDefinition) String() string { return "#<record-type " + t.Name + ">" }

func (t *RecordTypeDefinition) fieldIndex(name string) int {
	for i, f := range t.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

type RecordInstance struct {
	Type   *RecordTypeDefinition
	Values []Scmer
}

func (t *RecordTypeDefinition) check(v Scmer, who string) *RecordInstance {
	r, ok := v.(*RecordInstance)
	if !ok || r.Type != t {
		panic(&TypeCheckError{who, t.Name, TypeName(v)})
	}
	return r
}

// recordTypeName strips the customary angle brackets: <point> names type point.
func recordTypeName(s string) string {
	if len(s) > 2 && strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		return s[1 : len(s)-1]
	}
	return s
}

// defineRecordType implements
// (define-record-type <name> (ctor field...) pred? (field accessor [modifier])...).
func defineRecordType(rt *Runtime, scope *Scope, a []Scmer) Scmer {
	typeSym := mustSymbol(a[0], "define-record-type")
	t := &RecordTypeDefinition{Name: recordTypeName(typeSym), ID: uuid.New()}
	specs := a[3:]
	for _, spec := range specs {
		parts := MustList(spec, "define-record-type")
		if len(parts) == 0 {
			errorf("define-record-type: empty field spec")
		}
		name := mustSymbol(parts[0], "define-record-type")
		if t.fieldIndex(name) >= 0 {
			panic(&BindingError{DuplicateBinding, name})
		}
		t.Fields = append(t.Fields, name)
	}
	must(scope.Define(typeSym, t))

	switch ctor := a[1].(type) {
	case bool:
		// #f: no constructor
	default:
		var ctorName string
		var indexes []int
		if parts, ok := ListToSlice(ctor); ok && len(parts) > 0 {
			ctorName = mustSymbol(parts[0], "define-record-type")
			for _, f := range parts[1:] {
				fname := mustSymbol(f, "define-record-type")
				i := t.fieldIndex(fname)
				if i < 0 {
					errorf("define-record-type: constructor field %s is not a field of %s", fname, t.Name)
				}
				indexes = append(indexes, i)
			}
		} else {
			ctorName = mustSymbol(ctor, "define-record-type")
			for i := range t.Fields {
				indexes = append(indexes, i)
			}
		}
		must(scope.Define(ctorName, func(args ...Scmer) Scmer {
			checkArity(ctorName, len(args), len(indexes), len(indexes))
			r := &RecordInstance{t, make([]Scmer, len(t.Fields))}
			for i := range r.Values {
				r.Values[i] = Nil
			}
			for i, idx := range indexes {
				r.Values[idx] = args[i]
			}
			return r
		}))
	}

	if pred, ok := symbolName(a[2]); ok {
		must(scope.Define(pred, func(args ...Scmer) Scmer {
			checkArity(pred, len(args), 1, 1)
			return t.Matches(args[0])
		}))
	}

	for i, spec := range specs {
		parts := MustList(spec, "define-record-type")
		idx := i
		if len(parts) > 1 {
			accessor := mustSymbol(parts[1], "define-record-type")
			must(scope.Define(accessor, func(args ...Scmer) Scmer {
				checkArity(accessor, len(args), 1, 1)
				return t.check(args[0], accessor).Values[idx]
			}))
		}
		if len(parts) > 2 {
			modifier := mustSymbol(parts[2], "define-record-type")
			must(scope.Define(modifier, func(args ...Scmer) Scmer {
				checkArity(modifier, len(args), 2, 2)
				t.check(args[0], modifier).Values[idx] = args[1]
				return Nil
			}))
		}
	}
	return Nil
}

func init_records() {
	DeclareTitle("Records")

	Declare(libBase, &Declaration{
		"define-record-type", "defines a record type with constructor, predicate, accessors and modifiers",
		3, -1,
		[]DeclarationParameter{
			DeclarationParameter{"name", "symbol", "type name, usable as a type annotation"},
			DeclarationParameter{"constructor", "list", "(make-name field...), a bare name taking all fields, or #f"},
			DeclarationParameter{"predicate", "symbol", "name of the type predicate"},
			DeclarationParameter{"fields...", "list", "(field accessor [modifier])"},
		}, "nil",
		Macro(defineRecordType),
	})
	Declare(libColibri, &Declaration{
		"record?", "tells if the value is a record instance",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer {
			_, ok := a[0].(*RecordInstance)
			return ok
		},
	})
	Declare(libColibri, &Declaration{
		"record-type-id", "returns the unique id of a record type as a string",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"type", "record-type", "record type or instance"},
		}, "string",
		func(a ...Scmer) Scmer {
			switch x := a[0].(type) {
			case *RecordTypeDefinition:
				return x.ID.String()
			case *RecordInstance:
				return x.Type.ID.String()
			}
			panic(&TypeCheckError{"type", "record-type", TypeName(a[0])})
		},
	})
}
