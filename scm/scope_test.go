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

import "errors"
import "testing"

func TestScopeDefineResolve(t *testing.T) {
	root := NewScope(0)
	if root.MaxDepth() != DefaultMaxStackDepth {
		t.Fatalf("expected the default ceiling, got %d", root.MaxDepth())
	}
	child, err := root.CreateChild()
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if err := root.Define("x", NewInt(1)); err != nil {
		t.Fatalf("define x: %v", err)
	}
	if err := child.Define("y", NewInt(2)); err != nil {
		t.Fatalf("define y: %v", err)
	}
	if v, err := child.Resolve("x"); err != nil || Serialize(v) != "1" {
		t.Fatalf("expected x to resolve through the parent, got %v %v", v, err)
	}
	if _, ok := root.TryResolve("y"); ok {
		t.Fatalf("a parent must not see child bindings")
	}
	if !child.IsDefinedHere("y") || child.IsDefinedHere("x") {
		t.Fatalf("IsDefinedHere must only look at the frame itself")
	}
	if _, err := child.Resolve("z"); !errors.Is(err, ErrUnboundVariable) {
		t.Fatalf("expected an unbound variable, got %v", err)
	}
}

func TestScopeDuplicateDefine(t *testing.T) {
	s := NewScope(0)
	if err := s.Define("x", NewInt(1)); err != nil {
		t.Fatalf("define: %v", err)
	}
	err := s.Define("x", NewInt(2))
	if !errors.Is(err, ErrDuplicateBinding) {
		t.Fatalf("expected a duplicate binding, got %v", err)
	}
	if err := s.DefineOrSet("x", NewInt(3)); err != nil {
		t.Fatalf("DefineOrSet must overwrite: %v", err)
	}
}

func TestScopeSet(t *testing.T) {
	root := NewScope(0)
	must(root.Define("builtin", NewInt(1)))
	user := root.mustChild()
	must(user.Define("x", NewInt(1)))
	inner := user.mustChild()

	if err := inner.Set("x", NewInt(5)); err != nil {
		t.Fatalf("set x: %v", err)
	}
	if v, _ := user.Resolve("x"); Serialize(v) != "5" {
		t.Fatalf("set must update the defining frame, got %s", Serialize(v))
	}
	if err := inner.Set("nope", NewInt(1)); !errors.Is(err, ErrUnboundVariable) {
		t.Fatalf("expected an unbound variable, got %v", err)
	}
	if err := inner.Set("builtin", NewInt(2)); !errors.Is(err, ErrImmutableBinding) {
		t.Fatalf("root bindings are immutable, got %v", err)
	}
}

func TestScopeFreeze(t *testing.T) {
	root := NewScope(0)
	env := root.mustChild()
	must(env.Define("x", NewInt(1)))
	env.Freeze()
	if !env.Frozen() {
		t.Fatalf("expected a frozen scope")
	}
	if err := env.Define("y", NewInt(1)); !errors.Is(err, ErrImmutableBinding) {
		t.Fatalf("define in a frozen scope: expected immutable, got %v", err)
	}
	if err := env.Set("x", NewInt(2)); !errors.Is(err, ErrImmutableBinding) {
		t.Fatalf("set in a frozen scope: expected immutable, got %v", err)
	}
	child := env.mustChild()
	if err := child.Define("y", NewInt(1)); err != nil {
		t.Fatalf("children of a frozen scope stay mutable: %v", err)
	}
}

func TestScopeDepthCeiling(t *testing.T) {
	s := NewScope(3)
	if s.Depth() != 1 {
		t.Fatalf("a root scope has depth 1, got %d", s.Depth())
	}
	a, err := s.CreateChild()
	if err != nil || a.Depth() != 2 {
		t.Fatalf("expected depth 2, got %v %v", a, err)
	}
	b, err := a.CreateChild()
	if err != nil || b.Depth() != 3 {
		t.Fatalf("expected depth 3, got %v %v", b, err)
	}
	_, err = b.CreateChild()
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("expected a stack overflow, got %v", err)
	}
	// lexical parent and caller depth are independent
	c, err := s.CreateChildAt(2)
	if err != nil || c.Depth() != 3 || c.Parent() != s {
		t.Fatalf("CreateChildAt must keep the lexical parent and take the caller depth")
	}
}

func TestScopeLibrariesAndNamespaces(t *testing.T) {
	root := NewScope(0)
	root.AddLibrary(libBase.Name, libBase)
	child := root.mustChild()
	if lib, ok := child.TryResolveLibrary(LibraryName{"scheme", "base"}); !ok || lib != libBase {
		t.Fatalf("library lookup must search the chain")
	}
	if _, ok := child.TryResolveLibrary(LibraryName{"no", "such"}); ok {
		t.Fatalf("unexpected library")
	}
	root.AddInteropNamespace("strings")
	child.AddInteropNamespace("os")
	child.AddInteropNamespace("os")
	ns := child.InteropNamespaces()
	if len(ns) != 2 || ns[0] != "os" || ns[1] != "strings" {
		t.Fatalf("expected [os strings], got %v", ns)
	}
}
