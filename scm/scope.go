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

import "sort"

// Scope is one frame of the lexical environment chain.
//
// depth counts dynamic nesting, not lexical parents: a procedure frame hangs off
// its defining scope but sits one level deeper than its caller. The ceiling is
// what keeps non-tail recursion from exhausting the native stack.
type Scope struct {
	vars       map[string]Scmer
	parent     *Scope
	depth      int
	maxDepth   int
	frozen     bool
	libraries  map[string]*Library
	namespaces []string
}

// NewScope creates a root frame. maxDepth <= 0 means DefaultMaxStackDepth.
func NewScope(maxDepth int) *Scope {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxStackDepth
	}
	return &Scope{vars: make(map[string]Scmer), depth: 1, maxDepth: maxDepth}
}

func (s *Scope) Parent() *Scope { return s.parent }

func (s *Scope) Depth() int { return s.depth }

func (s *Scope) MaxDepth() int { return s.maxDepth }

func (s *Scope) Frozen() bool { return s.frozen }

// Freeze makes this frame, and only this frame, immutable. There is no way back.
func (s *Scope) Freeze() { s.frozen = true }

func (s *Scope) TryResolve(name string) (Scmer, bool) {
	for en := s; en != nil; en = en.parent {
		if v, ok := en.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *Scope) Resolve(name string) (Scmer, error) {
	if v, ok := s.TryResolve(name); ok {
		return v, nil
	}
	return nil, &BindingError{UnboundVariable, name}
}

// frameBelow finds the frame binding name among the frames that were
// created beneath stop, e.g. by a macro expansion evaluated at stop. It
// gives up on reaching stop or one of stop's ancestors.
func (s *Scope) frameBelow(stop *Scope, name string) *Scope {
	for en := s; en != nil && en != stop; en = en.parent {
		if _, ok := en.vars[name]; ok {
			if stop.hasAncestor(en) {
				return nil
			}
			return en
		}
	}
	return nil
}

func (s *Scope) hasAncestor(frame *Scope) bool {
	for en := s.parent; en != nil; en = en.parent {
		if en == frame {
			return true
		}
	}
	return false
}

// IsDefinedHere reports a binding in this very frame.
func (s *Scope) IsDefinedHere(name string) bool {
	_, ok := s.vars[name]
	return ok
}

func (s *Scope) Define(name string, value Scmer) error {
	if s.frozen {
		return &BindingError{ImmutableBinding, name}
	}
	if _, ok := s.vars[name]; ok {
		return &BindingError{DuplicateBinding, name}
	}
	s.vars[name] = value
	return nil
}

func (s *Scope) DefineOrSet(name string, value Scmer) error {
	if s.frozen {
		return &BindingError{ImmutableBinding, name}
	}
	s.vars[name] = value
	return nil
}

func (s *Scope) Set(name string, value Scmer) error {
	for en := s; en != nil; en = en.parent {
		if _, ok := en.vars[name]; ok {
			if en.parent == nil || en.frozen {
				return &BindingError{ImmutableBinding, name}
			}
			en.vars[name] = value
			return nil
		}
	}
	return &BindingError{UnboundVariable, name}
}

func (s *Scope) CreateChild() (*Scope, error) {
	return s.CreateChildAt(s.depth)
}

// CreateChildAt creates a lexical child of s for a caller running at callerDepth.
func (s *Scope) CreateChildAt(callerDepth int) (*Scope, error) {
	if callerDepth >= s.maxDepth {
		return nil, &StackOverflowError{s.maxDepth}
	}
	return &Scope{vars: make(map[string]Scmer), parent: s, depth: callerDepth + 1, maxDepth: s.maxDepth}, nil
}

// mustChild is CreateChild for macro code.
func (s *Scope) mustChild() *Scope {
	child, err := s.CreateChild()
	must(err)
	return child
}

// TailFrame is the calling frame for a tail call re-entering invocation: an
// empty, transparent child of s that reports the depth of the call the
// trampoline started from. No bindings are shared with any other frame.
func (s *Scope) TailFrame(depth int) *Scope {
	return &Scope{vars: make(map[string]Scmer), parent: s, depth: depth, maxDepth: s.maxDepth}
}

func (s *Scope) AddLibrary(name LibraryName, lib *Library) {
	if s.libraries == nil {
		s.libraries = make(map[string]*Library)
	}
	s.libraries[name.String()] = lib
}

// TryResolveLibrary searches the whole chain; the nearest frame wins.
func (s *Scope) TryResolveLibrary(name LibraryName) (*Library, bool) {
	key := name.String()
	for en := s; en != nil; en = en.parent {
		if lib, ok := en.libraries[key]; ok {
			return lib, true
		}
	}
	return nil, false
}

func (s *Scope) AddInteropNamespace(namespace string) {
	for _, ns := range s.namespaces {
		if ns == namespace {
			return
		}
	}
	s.namespaces = append(s.namespaces, namespace)
}

// InteropNamespaces lists the namespaces of the chain, nearest frame first.
func (s *Scope) InteropNamespaces() []string {
	var result []string
	for en := s; en != nil; en = en.parent {
		result = append(result, en.namespaces...)
	}
	return result
}

// Names returns the sorted, deduplicated names visible from s.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	var result []string
	for en := s; en != nil; en = en.parent {
		for k := range en.vars {
			if !seen[k] {
				seen[k] = true
				result = append(result, k)
			}
		}
	}
	sort.Strings(result)
	return result
}
