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
import "io"
import "os"
import "path/filepath"
import "strings"

// Declaration documents and registers one builtin. Fn is one of:
// func(...Scmer) Scmer (foreign procedure), BuiltinFunc (procedure that calls
// back into the runtime) or Macro (special form).
type Declaration struct {
	Name         string
	Desc         string
	MinParameter int
	MaxParameter int // -1: unbounded
	Params       []DeclarationParameter
	Returns      string // any | string | number | int | bool | func | list | symbol | nil
	Fn           Scmer
}

type DeclarationParameter struct {
	Name string
	Type string
	Desc string
}

type BuiltinFunc func(rt *Runtime, scope *Scope, args []Scmer) Scmer

type declarationEntry struct {
	title   string
	library *Library
	def     *Declaration
}

var declarationOrder []declarationEntry
var declarations = make(map[string]*Declaration)

func DeclareTitle(title string) {
	declarationOrder = append(declarationOrder, declarationEntry{title: title})
}

// Declare adds def to lib. Every kind is wrapped with its own arity check.
func Declare(lib *Library, def *Declaration) {
	declarationOrder = append(declarationOrder, declarationEntry{library: lib, def: def})
	declarations[def.Name] = def
	name, min, max := def.Name, def.MinParameter, def.MaxParameter
	switch fn := def.Fn.(type) {
	case func(...Scmer) Scmer:
		lib.Definitions[name] = func(a ...Scmer) Scmer {
			checkArity(name, len(a), min, max)
			return fn(a...)
		}
	case BuiltinFunc:
		lib.Definitions[name] = &Builtin{name, min, max, fn}
	case Macro:
		lib.Definitions[name] = Macro(func(rt *Runtime, scope *Scope, args []Scmer) Scmer {
			checkArity(name, len(args), min, max)
			return fn(rt, scope, args)
		})
	case nil:
	default:
		lib.Definitions[name] = fn
	}
}

// DeclareValue binds a plain value (types, auxiliary syntax) without documentation.
func DeclareValue(lib *Library, name string, value Scmer) {
	lib.Definitions[name] = value
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "chapter"
	}
	return b.String()
}

func arityText(def *Declaration) string {
	if def.MaxParameter < 0 {
		return fmt.Sprintf("%d or more", def.MinParameter)
	}
	if def.MinParameter == def.MaxParameter {
		return fmt.Sprint(def.MinParameter)
	}
	return fmt.Sprintf("%d–%d", def.MinParameter, def.MaxParameter)
}

// WriteDocumentation writes index.md plus one markdown file per chapter.
func WriteDocumentation(folder string) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", folder, err)
	}
	type chapter struct {
		title string
		slug  string
		defs  []declarationEntry
	}
	var chapters []*chapter
	for _, e := range declarationOrder {
		if e.def == nil {
			chapters = append(chapters, &chapter{title: e.title, slug: slugify(e.title)})
			continue
		}
		if len(chapters) == 0 {
			chapters = append(chapters, &chapter{title: "General", slug: "general"})
		}
		chapters[len(chapters)-1].defs = append(chapters[len(chapters)-1].defs, e)
	}

	index, err := os.Create(filepath.Join(folder, "index.md"))
	if err != nil {
		return err
	}
	defer index.Close()
	fmt.Fprint(index, "# Documentation\n\n")
	for _, ch := range chapters {
		if len(ch.defs) == 0 {
			continue
		}
		fmt.Fprintf(index, "- [%s](%s.md)\n", ch.title, ch.slug)
		f, err := os.Create(filepath.Join(folder, ch.slug+".md"))
		if err != nil {
			return err
		}
		fmt.Fprintf(f, "# %s\n\n", ch.title)
		for _, e := range ch.defs {
			writeDeclaration(f, e)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func writeDeclaration(w io.Writer, e declarationEntry) {
	def := e.def
	fmt.Fprintf(w, "## %s\n\n", def.Name)
	if def.Desc != "" {
		fmt.Fprintf(w, "%s\n\n", def.Desc)
	}
	fmt.Fprintf(w, "**Library:** `%s`\n\n", e.library.Name)
	fmt.Fprintf(w, "**Allowed number of parameters:** %s\n\n", arityText(def))
	if len(def.Params) > 0 {
		fmt.Fprint(w, "### Parameters\n\n")
		for _, p := range def.Params {
			fmt.Fprintf(w, "- **%s** (`%s`): %s\n", p.Name, p.Type, p.Desc)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "### Returns\n\n`%s`\n\n", def.Returns)
}

// Help prints the list of builtins, or the details of one.
func Help(w io.Writer, topic string) {
	if topic == "" {
		fmt.Fprintln(w, "Available functions:")
		for _, e := range declarationOrder {
			if e.def == nil {
				fmt.Fprintln(w, "\n-- "+e.title+" --")
			} else {
				fmt.Fprintln(w, "  "+e.def.Name+": "+strings.Split(e.def.Desc, "\n")[0])
			}
		}
		fmt.Fprintln(w, "\nget further information by typing (help \"functionname\")")
		return
	}
	def, ok := declarations[topic]
	if !ok {
		errorf("function not found: %s", topic)
	}
	fmt.Fprintln(w, "Help for: "+def.Name)
	fmt.Fprintln(w, "===")
	fmt.Fprintln(w, def.Desc)
	fmt.Fprintln(w, "Allowed number of parameters:", arityText(def))
	for _, p := range def.Params {
		fmt.Fprintln(w, " - "+p.Name+" ("+p.Type+"): "+p.Desc)
	}
}
