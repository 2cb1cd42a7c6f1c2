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

import "testing"

func completions(c *completer, line string) []string {
	candidates, _ := c.Do([]rune(line), len([]rune(line)))
	var result []string
	for _, cand := range candidates {
		result = append(result, string(cand))
	}
	return result
}

func TestCompleterFollowsScope(t *testing.T) {
	first := newTestRuntime(t, DefaultOptions())
	evalString(t, first, `(define zz-alpha 1)`)
	second := newTestRuntime(t, DefaultOptions())
	evalString(t, second, `(define zz-beta 1)`)

	c := newCompleter(first.User)
	if got := completions(c, "(zz-"); len(got) != 1 || got[0] != "alpha" {
		t.Fatalf("expected [alpha], got %v", got)
	}
	evalString(t, first, `(define zz-gamma 1)`)
	if got := completions(c, "(zz-"); len(got) != 2 || got[0] != "alpha" || got[1] != "gamma" {
		t.Fatalf("expected [alpha gamma], got %v", got)
	}
	// same number of names, different names: stale entries must go
	c.scope = second.User
	evalString(t, second, `(define zz-delta 1)`)
	if got := completions(c, "(zz-"); len(got) != 2 || got[0] != "beta" || got[1] != "delta" {
		t.Fatalf("expected [beta delta], got %v", got)
	}
}
