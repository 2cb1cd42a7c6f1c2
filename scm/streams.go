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

import "io"
import "os"
import "strings"
import "compress/gzip"
import "path/filepath"
import "github.com/ulikunitz/xz"
import "github.com/pierrec/lz4/v4"

// SourceError reports a source file that could not be opened or decompressed.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string { return "cannot load " + e.Path + ": " + e.Err.Error() }

func (e *SourceError) Unwrap() error { return e.Err }

type sourceReader struct {
	io.Reader
	file *os.File
}

func (s sourceReader) Close() error { return s.file.Close() }

// OpenSource opens a program file. Files ending in .gz, .xz or .lz4 are
// decompressed on the fly.
func OpenSource(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var r io.Reader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		r, err = gzip.NewReader(f)
	case ".xz":
		r, err = xz.NewReader(f)
	case ".lz4":
		r = lz4.NewReader(f)
	default:
		return f, nil
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return sourceReader{r, f}, nil
}

// ReadSource returns the whole decompressed text of a program file.
func ReadSource(path string) (string, error) {
	stream, err := OpenSource(path)
	if err != nil {
		return "", &SourceError{path, err}
	}
	defer stream.Close()
	text, err := io.ReadAll(stream)
	if err != nil {
		return "", &SourceError{path, err}
	}
	return string(text), nil
}

// LoadFile evaluates a program file in scope.
func (rt *Runtime) LoadFile(scope *Scope, path string) (Scmer, error) {
	text, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	return rt.EvaluateProgramIn(scope, path, text)
}

// readInclude parses the files named by include into one form list.
func readInclude(a []Scmer, foldCase bool) []Scmer {
	var forms []Scmer
	for _, arg := range a {
		path, ok := arg.(string)
		if !ok {
			panic(&TypeCheckError{"filename", "string", TypeName(arg)})
		}
		text, err := ReadSource(path)
		must(err)
		if foldCase {
			text = foldCaser.String(text)
		}
		program, err := Read(path, text)
		must(err)
		forms = append(forms, program.Forms...)
	}
	return forms
}

func init_streams() {
	DeclareTitle("Source files")

	Declare(libBase, &Declaration{
		"include", "reads the named files and evaluates their forms in place, as if they were written inside a begin. Compressed files (.gz, .xz, .lz4) are supported.",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"filenames...", "string", "files to include"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.evalBody(scope, readInclude(a, false))
		}),
	})
	Declare(libBase, &Declaration{
		"include-ci", "like include, but folds the case of the source text first",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"filenames...", "string", "files to include"},
		}, "any",
		Macro(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			return rt.evalBody(scope, readInclude(a, true))
		}),
	})
	Declare(libEval, &Declaration{
		"load", "evaluates a program file in the given environment (default: the interaction environment)",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"filename", "string", "file to load"},
			DeclarationParameter{"environment", "environment", "optional target environment"},
		}, "any",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			path, ok := a[0].(string)
			if !ok {
				panic(&TypeCheckError{"filename", "string", TypeName(a[0])})
			}
			env := rt.User
			if len(a) == 2 {
				env = mustEnvironment(a[1], "load")
			}
			text, err := ReadSource(path)
			must(err)
			program, err := Read(path, text)
			must(err)
			return rt.Eval(env, program)
		}),
	})
}
