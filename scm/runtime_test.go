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

import "os"
import "bytes"
import "context"
import "errors"
import "strings"
import "testing"
import "path/filepath"
import "compress/gzip"
import "github.com/ulikunitz/xz"
import "github.com/pierrec/lz4/v4"

func TestOutput(t *testing.T) {
	var out bytes.Buffer
	rt := newTestRuntime(t, Options{ImportStandardLibrary: true, Stdout: &out})
	evalString(t, rt, `(display "a") (write "b") (newline) (write-char #\c) (write-string "d") (print "x" 1 'y)`)
	if got := out.String(); got != "a\"b\"\ncdx1y\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestOutputPortArgument(t *testing.T) {
	var out bytes.Buffer
	rt := newTestRuntime(t, Options{ImportStandardLibrary: true, Stdout: &out})
	evalString(t, rt, `(display '(1 "two") (current-output-port))`)
	if got := out.String(); got != "(1 two)" {
		t.Fatalf("unexpected output %q", got)
	}
	if err := evalError(t, rt, `(display 1 2)`); !errors.Is(err, ErrArgumentType) {
		t.Fatalf("expected a type mismatch for a bad port, got %v", err)
	}
}

func writeCompressed(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	var w interface {
		Write([]byte) (int, error)
		Close() error
	}
	switch filepath.Ext(path) {
	case ".gz":
		w = gzip.NewWriter(f)
	case ".xz":
		w, err = xz.NewWriter(f)
		if err != nil {
			t.Fatalf("xz writer: %v", err)
		}
	case ".lz4":
		w = lz4.NewWriter(f)
	default:
		if _, err := f.WriteString(text); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		return
	}
	if _, err := w.Write([]byte(text)); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"plain.scm", "packed.scm.gz", "packed.scm.xz", "packed.scm.lz4"} {
		path := filepath.Join(dir, name)
		writeCompressed(t, path, "(define loaded-value (* 6 7))\nloaded-value\n")
		rt := newTestRuntime(t, DefaultOptions())
		result, err := rt.LoadFile(rt.User, path)
		if err != nil {
			t.Fatalf("%d %s: %v", i, name, err)
		}
		if Serialize(result) != "42" {
			t.Fatalf("%s: expected 42, got %s", name, Serialize(result))
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	_, err := rt.LoadFile(rt.User, filepath.Join(t.TempDir(), "missing.scm"))
	var srcErr *SourceError
	if !errors.As(err, &srcErr) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a source error wrapping not-exist, got %v", err)
	}
}

func TestIncludeAndLoad(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.scm")
	writeCompressed(t, lib, "(define (triple x) (* 3 x))")
	rt := newTestRuntime(t, DefaultOptions())
	code := `(include "` + filepath.ToSlash(lib) + `") (triple 5)`
	if got := Serialize(evalString(t, rt, code)); got != "15" {
		t.Fatalf("expected 15, got %s", got)
	}

	upper := filepath.Join(dir, "upper.scm")
	writeCompressed(t, upper, "(DEFINE (QUAD X) (* 4 X))")
	rt = newTestRuntime(t, DefaultOptions())
	code = `(include-ci "` + filepath.ToSlash(upper) + `") (quad 2)`
	if got := Serialize(evalString(t, rt, code)); got != "8" {
		t.Fatalf("expected 8, got %s", got)
	}

	rt = newTestRuntime(t, DefaultOptions())
	code = `(load "` + filepath.ToSlash(lib) + `") (triple 2)`
	if got := Serialize(evalString(t, rt, code)); got != "6" {
		t.Fatalf("expected 6, got %s", got)
	}
}

func TestEvaluateContextCancelled(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	program, err := Read("test", `(let loop () (loop))`)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rt.EvaluateContext(ctx, rt.User, program)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	// the runtime stays usable
	if got := Serialize(evalString(t, rt, `(+ 1 1)`)); got != "2" {
		t.Fatalf("expected 2, got %s", got)
	}
}

func TestApplyFromHost(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	must(rt.RegisterGlobal("host-twice", func(a ...Scmer) Scmer {
		return Apply(a[0], Apply(a[0], a[1]))
	}))
	if got := Serialize(evalString(t, rt, `(host-twice (lambda (x) (* x 3)) 2)`)); got != "18" {
		t.Fatalf("expected 18, got %s", got)
	}
	if Current() != nil {
		t.Fatalf("no runtime is current outside an evaluation")
	}
}

func TestHelp(t *testing.T) {
	var out bytes.Buffer
	rt := newTestRuntime(t, Options{ImportStandardLibrary: true, Stdout: &out})
	evalString(t, rt, `(help "string-append")`)
	if !strings.Contains(out.String(), "string-append") {
		t.Fatalf("help output misses the topic: %q", out.String())
	}
	if err := evalError(t, rt, `(help "no-such-function")`); !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected an evaluation error, got %v", err)
	}
}

func TestWriteDocumentation(t *testing.T) {
	dir := t.TempDir()
	if err := WriteDocumentation(dir); err != nil {
		t.Fatalf("write documentation: %v", err)
	}
	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(index), "(strings.md)") {
		t.Fatalf("index misses the strings chapter:\n%s", index)
	}
}

func TestDates(t *testing.T) {
	expectSerialized(t, `(parse-date "2024-03-01")`, "1709251200")
	expectSerialized(t, `(parse-date "01.03.2024" "%d.%m.%Y")`, "1709251200")
	expectSerialized(t, `(parse-date "yesterday")`, "#f")
	expectSerialized(t, `(format-date 1709251200 "%Y/%m/%d %T")`, `"2024/03/01 00:00:00"`)
	expectSerialized(t, `(date-part "2024-03-01 12:30:00" 'minute)`, "30")
	expectSerialized(t, `(format-date (date-add "2024-01-31" 1 'month) "%Y-%m-%d")`, `"2024-03-02"`)
	expectSerialized(t, `(< 0 (current-jiffy) (+ (current-jiffy) (jiffies-per-second)))`, "#t")
}
