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

import "context"
import "io"
import "os"
import "github.com/jtolds/gls"

// DefaultMaxStackDepth bounds non-tail nesting when no ceiling is configured.
const DefaultMaxStackDepth = 10000

type Options struct {
	MaxStackDepth         int  // non-tail nesting ceiling; <= 0 means DefaultMaxStackDepth
	ImportStandardLibrary bool // import all standard libraries into the global scope
	Interop               Interop
	OnExit                func(code int) // receives (exit) requests at the outermost boundary
	Stdout                io.Writer
}

func DefaultOptions() Options {
	return Options{ImportStandardLibrary: true}
}

// Runtime owns the global scope and the user scope that programs run in.
// A Runtime is not safe for concurrent use.
type Runtime struct {
	Global *Scope
	User   *Scope

	opts     Options
	interop  Interop
	out      io.Writer
	ctx      context.Context
	level    int
	libCache map[*Library]map[string]Scmer
	handlers []Scmer // with-exception-handler stack; nil entries are guard boundaries
}

var contextManager = gls.NewContextManager()

type runtimeKey struct{}

func New(opts Options) (rt *Runtime, err error) {
	rt = &Runtime{opts: opts, interop: opts.Interop, out: opts.Stdout}
	if rt.out == nil {
		rt.out = os.Stdout
	}
	rt.libCache = make(map[*Library]map[string]Scmer)
	rt.Global = NewScope(opts.MaxStackDepth)
	for _, lib := range StandardLibraries() {
		rt.Global.AddLibrary(lib.Name, lib)
	}
	defer func() {
		if r := recover(); r != nil {
			rt, err = nil, asError(r)
		}
	}()
	// import stays reachable so a bare runtime can still pull libraries in
	must(rt.Global.Define("import", Macro(importMacro)))
	rt.withContext(func() {
		if opts.ImportStandardLibrary {
			for _, lib := range StandardLibraries() {
				rt.ImportLibrary(rt.Global, &ImportSet{Library: lib})
			}
		}
	})
	rt.User, err = rt.Global.CreateChild()
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) Options() Options { return rt.opts }

func (rt *Runtime) Stdout() io.Writer { return rt.out }

// RegisterGlobal binds a host value in the global scope.
func (rt *Runtime) RegisterGlobal(name string, value Scmer) error {
	return rt.Global.Define(name, value)
}

// withContext makes rt the current runtime of this goroutine while f runs.
func (rt *Runtime) withContext(f func()) {
	if cur, ok := contextManager.GetValue(runtimeKey{}); ok && cur == rt {
		f()
		return
	}
	contextManager.SetValues(gls.Values{runtimeKey{}: rt}, f)
}

// Current returns the runtime evaluating on this goroutine, or nil.
func Current() *Runtime {
	if v, ok := contextManager.GetValue(runtimeKey{}); ok {
		return v.(*Runtime)
	}
	return nil
}

// Apply lets native callables invoke Scheme procedures they were handed.
func Apply(fn Scmer, args ...Scmer) Scmer {
	if rt := Current(); rt != nil {
		return rt.InvokeFull(rt.User, fn, args)
	}
	if f, ok := fn.(func(...Scmer) Scmer); ok {
		return f(args...)
	}
	panic(&EvaluationError{Message: "Apply called outside of an evaluation"})
}

func (rt *Runtime) Evaluate(scope *Scope, node Scmer) (Scmer, error) {
	return rt.EvaluateContext(context.Background(), scope, node)
}

// EvaluateContext evaluates node; ctx is checked before every call dispatch.
//
// An (exit) request that reaches the outermost evaluation is handed to
// Options.OnExit. Without a listener it is returned as an *ExitSignal error.
func (rt *Runtime) EvaluateContext(ctx context.Context, scope *Scope, node Scmer) (result Scmer, err error) {
	prevCtx := rt.ctx
	if ctx != nil && ctx.Done() != nil {
		rt.ctx = ctx
	}
	rt.level++
	defer func() {
		rt.level--
		rt.ctx = prevCtx
		if r := recover(); r != nil {
			result, err = nil, asError(r)
			if exit, ok := err.(*ExitSignal); ok && rt.level == 0 && rt.opts.OnExit != nil {
				rt.opts.OnExit(exit.Code)
				result, err = Nil, nil
			}
		}
	}()
	rt.withContext(func() {
		result = rt.Eval(scope, node)
	})
	return result, nil
}

// EvaluateProgram reads text and evaluates it in the user scope.
func (rt *Runtime) EvaluateProgram(text string) (Scmer, error) {
	return rt.EvaluateProgramIn(rt.User, "program", text)
}

func (rt *Runtime) EvaluateProgramIn(scope *Scope, source, text string) (Scmer, error) {
	program, err := Read(source, text)
	if err != nil {
		return nil, err
	}
	return rt.Evaluate(scope, program)
}
