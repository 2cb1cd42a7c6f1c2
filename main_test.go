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
package main

import "os"
import "bytes"
import "testing"
import "path/filepath"
import "github.com/dc0d/onexit"
import "github.com/launix-de/colibri/scm"

func TestScriptExitRunsShutdown(t *testing.T) {
	var codes []int
	exitProcess = func(code int) { codes = append(codes, code) }
	defer func() {
		exitProcess = onexit.ForceExit
		exiting.Store(false)
	}()

	script := filepath.Join(t.TempDir(), "exit.scm")
	if err := os.WriteFile(script, []byte(`(display "bye") (exit 4) (display "unreachable")`), 0644); err != nil {
		t.Fatal(err)
	}
	out := new(bytes.Buffer)
	opts := scm.DefaultOptions()
	opts.Stdout = out
	opts.OnExit = shutdown
	rt := newRuntime(opts)
	if !run(rt, script) {
		t.Fatalf("script reported an error")
	}
	if len(codes) != 1 || codes[0] != 4 {
		t.Fatalf("expected one shutdown with code 4, got %v", codes)
	}
	if !exiting.Load() {
		t.Fatalf("shutdown must mark the process as exiting")
	}
	if out.String() != "bye" {
		t.Fatalf("expected output bye, got %q", out.String())
	}
}
