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

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/nukata/goarith"
)

// Interop is the bridge to host values. The evaluator asks it for symbols
// the scope chain does not bind, and hands it (.member target args...) calls.
type Interop interface {
	TryResolve(scope *Scope, name string, arity int) (Scmer, bool)
	InvokeMember(scope *Scope, member string, args []Scmer) Scmer
}

// HostInterop exposes registered Go values as Namespace/Name. Namespaces
// made visible with (use Namespace) can be referred to without prefix.
// Exported methods and fields of any Go value are reachable via member calls.
// Several functions may share a name; they are told apart by parameter count.
type HostInterop struct {
	namespaces map[string]map[string][]any
}

func NewHostInterop() *HostInterop {
	return &HostInterop{namespaces: make(map[string]map[string][]any)}
}

// Register makes value visible as namespace/name. A function registered
// under a taken name adds an overload unless one with the same parameter
// count exists, which it replaces. Any other value replaces the entry.
func (h *HostInterop) Register(namespace, name string, value any) {
	ns, ok := h.namespaces[namespace]
	if !ok {
		ns = make(map[string][]any)
		h.namespaces[namespace] = ns
	}
	t := reflect.TypeOf(value)
	if t == nil || t.Kind() != reflect.Func {
		ns[name] = []any{value}
		return
	}
	overloads := ns[name][:0:0]
	for _, o := range ns[name] {
		ot := reflect.TypeOf(o)
		if ot == nil || ot.Kind() != reflect.Func {
			continue
		}
		if ot.NumIn() == t.NumIn() && ot.IsVariadic() == t.IsVariadic() {
			continue
		}
		overloads = append(overloads, o)
	}
	ns[name] = append(overloads, value)
}

// accepts reports whether a function of type t can take n arguments.
func accepts(t reflect.Type, n int) bool {
	if t.IsVariadic() {
		return n >= t.NumIn()-1
	}
	return n == t.NumIn()
}

// lookup resolves namespace/name. With a known arity the matching overload
// is chosen right away; otherwise the choice is made per call.
func (h *HostInterop) lookup(namespace, name string, arity int) (Scmer, bool) {
	entries, ok := h.namespaces[namespace][name]
	if !ok || len(entries) == 0 {
		return nil, false
	}
	qualified := namespace + "/" + name
	if len(entries) == 1 {
		rv := reflect.ValueOf(entries[0])
		if rv.Kind() == reflect.Func {
			return hostFunc(qualified, rv), true
		}
		return toScheme(rv), true
	}
	if arity >= 0 {
		for _, e := range entries {
			if rv := reflect.ValueOf(e); accepts(rv.Type(), arity) {
				return hostFunc(qualified, rv), true
			}
		}
	}
	return func(a ...Scmer) Scmer {
		for _, e := range entries {
			if rv := reflect.ValueOf(e); accepts(rv.Type(), len(a)) {
				return hostFunc(qualified, rv)(a...)
			}
		}
		min, max := -1, 0
		for _, e := range entries {
			t := reflect.TypeOf(e)
			if n := t.NumIn(); min < 0 || n < min {
				min = n
			}
			if t.IsVariadic() {
				max = -1
			} else if max >= 0 && t.NumIn() > max {
				max = t.NumIn()
			}
		}
		panic(&ArityError{Name: qualified, Min: min, Max: max, Given: len(a)})
	}, true
}

func (h *HostInterop) TryResolve(scope *Scope, name string, arity int) (Scmer, bool) {
	if i := strings.LastIndexByte(name, '/'); i > 0 && i < len(name)-1 {
		return h.lookup(name[:i], name[i+1:], arity)
	}
	for _, ns := range scope.InteropNamespaces() {
		if v, ok := h.lookup(ns, name, arity); ok {
			return v, true
		}
	}
	return nil, false
}

// InvokeMember calls a method, or reads (one argument) or writes (two
// arguments) a field of the first argument.
func (h *HostInterop) InvokeMember(scope *Scope, member string, args []Scmer) Scmer {
	if len(args) == 0 {
		errorf(".%s: missing target", member)
	}
	target := reflect.ValueOf(args[0])
	if !target.IsValid() {
		errorf(".%s: target is null", member)
	}
	if m := target.MethodByName(member); m.IsValid() {
		return hostFunc("."+member, m)(args[1:]...)
	}
	obj := target
	for obj.Kind() == reflect.Pointer || obj.Kind() == reflect.Interface {
		obj = obj.Elem()
	}
	if obj.Kind() == reflect.Struct {
		if field := obj.FieldByName(member); field.IsValid() && field.CanInterface() {
			switch len(args) {
			case 1:
				return toScheme(field)
			case 2:
				if !field.CanSet() {
					errorf(".%s: field is not settable", member)
				}
				field.Set(fromScheme(args[1], field.Type(), "."+member))
				return nil
			}
			checkArity("."+member, len(args)-1, 0, 1)
		}
	}
	panic(&EvaluationError{Message: fmt.Sprintf("%s has no member %s", target.Type(), member)})
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// hostFunc adapts a Go function of any signature to a foreign callable.
// A trailing error result is raised when non-nil.
func hostFunc(name string, fn reflect.Value) func(...Scmer) Scmer {
	t := fn.Type()
	return func(a ...Scmer) Scmer {
		min, max := t.NumIn(), t.NumIn()
		if t.IsVariadic() {
			min, max = t.NumIn()-1, -1
		}
		checkArity(name, len(a), min, max)
		in := make([]reflect.Value, len(a))
		for i, v := range a {
			var pt reflect.Type
			if t.IsVariadic() && i >= t.NumIn()-1 {
				pt = t.In(t.NumIn() - 1).Elem()
			} else {
				pt = t.In(i)
			}
			in[i] = fromScheme(v, pt, name)
		}
		out := fn.Call(in)
		if n := len(out); n > 0 && t.Out(n-1) == errorType {
			if err, _ := out[n-1].Interface().(error); err != nil {
				panic(&EvaluationError{Message: name + " failed", Cause: err})
			}
			out = out[:n-1]
		}
		switch len(out) {
		case 0:
			return nil
		case 1:
			return toScheme(out[0])
		}
		items := make([]Scmer, len(out))
		for i, o := range out {
			items[i] = toScheme(o)
		}
		return &Values{items}
	}
}

func fromScheme(v Scmer, t reflect.Type, who string) reflect.Value {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, ok := v.(goarith.Number); ok && IsExactInteger(n) {
			return reflect.ValueOf(int64(ToInt(n))).Convert(t)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, ok := v.(goarith.Number); ok && IsExactInteger(n) && ToInt(n) >= 0 {
			return reflect.ValueOf(uint64(ToInt(n))).Convert(t)
		}
	case reflect.Float32, reflect.Float64:
		if n, ok := v.(goarith.Number); ok {
			return reflect.ValueOf(ToFloat(n)).Convert(t)
		}
	case reflect.String:
		switch s := v.(type) {
		case string:
			return reflect.ValueOf(s).Convert(t)
		case Symbol:
			return reflect.ValueOf(s.Name).Convert(t)
		}
	case reflect.Bool:
		if b, ok := v.(bool); ok {
			return reflect.ValueOf(b)
		}
	case reflect.Slice:
		if bv, ok := v.(*Bytevector); ok && t.Elem().Kind() == reflect.Uint8 {
			return reflect.ValueOf(bv.Bytes).Convert(t)
		}
		var items []Scmer
		if vec, ok := v.(*Vector); ok {
			items = vec.Items
		} else if l, ok := ListToSlice(v); ok {
			items = l
		} else {
			break
		}
		result := reflect.MakeSlice(t, len(items), len(items))
		for i, item := range items {
			result.Index(i).Set(fromScheme(item, t.Elem(), who))
		}
		return result
	}
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv
	}
	panic(&TypeCheckError{who, t.String(), TypeName(v)})
}

func toScheme(v reflect.Value) Scmer {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInt(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NewInt(int64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		return NewFloat(v.Float())
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Slice:
		if v.IsNil() {
			return Nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return &Bytevector{v.Bytes()}
		}
		items := make([]Scmer, v.Len())
		for i := range items {
			items[i] = toScheme(v.Index(i))
		}
		return List(items...)
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return toScheme(v.Elem())
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}
