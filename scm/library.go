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

import "fmt"
import "strings"
import "github.com/nukata/goarith"

// LibraryName is the list form of a library name, e.g. (scheme base).
type LibraryName []string

func (n LibraryName) String() string {
	return "(" + strings.Join(n, " ") + ")"
}

// Library is a read-only seed table of definitions plus optional Scheme source
// that is evaluated once per runtime on first import.
type Library struct {
	Name        LibraryName
	Definitions map[string]Scmer
	Source      string
}

func newLibrary(name ...string) *Library {
	lib := &Library{Name: LibraryName(name), Definitions: make(map[string]Scmer)}
	standardLibraries = append(standardLibraries, lib)
	return lib
}

var standardLibraries []*Library

var (
	libBase           = newLibrary("scheme", "base")
	libChar           = newLibrary("scheme", "char")
	libCxr            = newLibrary("scheme", "cxr")
	libEval           = newLibrary("scheme", "eval")
	libProcessContext = newLibrary("scheme", "process-context")
	libWrite          = newLibrary("scheme", "write")
	libLazy           = newLibrary("scheme", "lazy")
	libCaseLambda     = newLibrary("scheme", "case-lambda")
	libTime           = newLibrary("scheme", "time")
	libColibri        = newLibrary("colibri", "base")
)

func StandardLibraries() []*Library {
	return standardLibraries
}

type ImportModifierKind int

const (
	ImportOnly ImportModifierKind = iota
	ImportExcept
	ImportPrefix
	ImportRename
)

type ImportModifier struct {
	Kind    ImportModifierKind
	Names   []string
	Prefix  string
	Renames map[string]string
}

// ImportSet is a library plus modifiers, applied innermost first.
type ImportSet struct {
	Library   *Library
	Modifiers []ImportModifier
}

// apply maps exported names to local names.
func (m ImportModifier) apply(names map[string]string) {
	switch m.Kind {
	case ImportOnly:
		keep := make(map[string]bool)
		for _, n := range m.Names {
			keep[n] = true
		}
		for exported, local := range names {
			if !keep[local] {
				delete(names, exported)
			}
		}
	case ImportExcept:
		for _, n := range m.Names {
			for exported, local := range names {
				if local == n {
					delete(names, exported)
				}
			}
		}
	case ImportPrefix:
		for exported, local := range names {
			names[exported] = m.Prefix + local
		}
	case ImportRename:
		for exported, local := range names {
			if to, ok := m.Renames[local]; ok {
				names[exported] = to
			}
		}
	}
}

// ImportLibrary binds the names selected by set into scope.
func (rt *Runtime) ImportLibrary(scope *Scope, set *ImportSet) {
	exports := rt.libraryExports(scope, set.Library)
	names := make(map[string]string, len(exports))
	for k := range exports {
		names[k] = k
	}
	for _, m := range set.Modifiers {
		m.apply(names)
	}
	for exported, local := range names {
		must(scope.DefineOrSet(local, exports[exported]))
	}
}

func (rt *Runtime) libraryExports(scope *Scope, lib *Library) map[string]Scmer {
	if lib.Source == "" {
		return lib.Definitions
	}
	if exports, ok := rt.libCache[lib]; ok {
		return exports
	}
	libScope := NewScope(scope.maxDepth)
	if lib != libBase {
		// library sources are written against (scheme base)
		for k, v := range rt.libraryExports(scope, libBase) {
			libScope.vars[k] = v
		}
	}
	for k, v := range lib.Definitions {
		libScope.vars[k] = v
	}
	src := libScope.mustChild()
	program, err := Read(lib.Name.String(), lib.Source)
	must(err)
	rt.Eval(src, program)
	exports := make(map[string]Scmer, len(lib.Definitions)+len(src.vars))
	for k, v := range lib.Definitions {
		exports[k] = v
	}
	for k, v := range src.vars {
		exports[k] = v
	}
	rt.libCache[lib] = exports
	return exports
}

// parseLibraryName reads (scheme base) style names; numbers are allowed as parts.
func parseLibraryName(v Scmer) LibraryName {
	items, ok := ListToSlice(datum(v, nil))
	if !ok || len(items) == 0 {
		errorf("invalid library name %s", Serialize(v))
	}
	name := make(LibraryName, len(items))
	for i, item := range items {
		switch x := item.(type) {
		case Symbol:
			name[i] = x.Name
		case goarith.Number:
			name[i] = x.String()
		default:
			errorf("invalid library name part %s", Serialize(item))
		}
	}
	return name
}

// parseImportSet reads an import set form: a library name optionally wrapped
// in only, except, prefix or rename.
func parseImportSet(scope *Scope, v Scmer) *ImportSet {
	items := MustList(datum(v, nil), "import")
	if len(items) >= 2 {
		if head, ok := items[0].(Symbol); ok {
			switch head.Name {
			case "only", "except", "prefix", "rename":
				inner := parseImportSet(scope, items[1])
				m := ImportModifier{}
				switch head.Name {
				case "only", "except":
					m.Kind = ImportOnly
					if head.Name == "except" {
						m.Kind = ImportExcept
					}
					for _, n := range items[2:] {
						m.Names = append(m.Names, mustSymbol(n, head.Name))
					}
				case "prefix":
					if len(items) != 3 {
						errorf("prefix expects a library and a prefix")
					}
					m.Kind = ImportPrefix
					m.Prefix = mustSymbol(items[2], "prefix")
				case "rename":
					m.Kind = ImportRename
					m.Renames = make(map[string]string)
					for _, r := range items[2:] {
						pair := MustList(r, "rename")
						if len(pair) != 2 {
							errorf("rename expects (from to) pairs")
						}
						m.Renames[mustSymbol(pair[0], "rename")] = mustSymbol(pair[1], "rename")
					}
				}
				inner.Modifiers = append(inner.Modifiers, m)
				return inner
			}
		}
	}
	name := parseLibraryName(v)
	lib, ok := scope.TryResolveLibrary(name)
	if !ok {
		panic(&EvaluationError{Message: fmt.Sprintf("library %s not found", name)})
	}
	return &ImportSet{Library: lib}
}

func importMacro(rt *Runtime, scope *Scope, args []Scmer) Scmer {
	for _, arg := range args {
		rt.ImportLibrary(scope, parseImportSet(scope, arg))
	}
	return Nil
}

// environment builds a root scope holding the given libraries.
func (rt *Runtime) environment(scope *Scope, names []Scmer, freeze bool) *Scope {
	env := NewScope(scope.maxDepth)
	for _, lib := range StandardLibraries() {
		env.AddLibrary(lib.Name, lib)
	}
	for _, n := range names {
		rt.ImportLibrary(env, parseImportSet(env, n))
	}
	if freeze {
		env.Freeze()
	}
	return env
}
