/*
Copyright (C) 2023  Carl-Philip Hänsch
Copyright (C) 2013  Pieter Kelchtermans (originally licensed unter WTFPL 2.0)

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
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/btree"
)

const newprompt = "\033[32m>\033[0m "
const contprompt = "\033[32m.\033[0m "
const resultprompt = "\033[31m=\033[0m "

// completer offers the names bound in the user scope.
type completer struct {
	scope *Scope
	names *btree.BTreeG[string]
	seen  []string
}

func newCompleter(scope *Scope) *completer {
	return &completer{scope: scope, names: btree.NewG[string](8, func(a, b string) bool { return a < b })}
}

func (c *completer) refresh() {
	names := c.scope.Names()
	if slices.Equal(names, c.seen) {
		return
	}
	c.names.Clear(false)
	for _, n := range names {
		c.names.ReplaceOrInsert(n)
	}
	c.seen = names
}

// Do implements readline.AutoCompleter.
func (c *completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	start := pos
	for start > 0 && !isDelimiter(line[start-1]) && line[start-1] != '\'' {
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}
	c.refresh()
	c.names.AscendGreaterOrEqual(prefix, func(name string) bool {
		if !strings.HasPrefix(name, prefix) {
			return false
		}
		newLine = append(newLine, []rune(name[len(prefix):]))
		return true
	})
	return newLine, len([]rune(prefix))
}

// Repl reads programs line by line and prints their results. Input that ends
// inside a datum continues on the next line.
func Repl(rt *Runtime, historyFile string) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newprompt,
		HistoryFile:       historyFile,
		AutoComplete:      newCompleter(rt.User),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer l.Close()
	l.CaptureExitSignal()

	oldline := ""
	for {
		line, err := l.Readline()
		line = oldline + line
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			oldline = ""
			l.SetPrompt(newprompt)
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		program, err := Read("user prompt", line)
		if errors.Is(err, ErrIncompleteInput) {
			// keep oldline
			oldline = line + "\n"
			l.SetPrompt(contprompt)
			continue
		}
		oldline = ""
		l.SetPrompt(newprompt)
		if err != nil {
			fmt.Fprintln(l.Stderr(), "error:", err)
			continue
		}
		result, err := rt.Evaluate(rt.User, program)
		var exit *ExitSignal
		if errors.As(err, &exit) {
			return exit
		}
		if err != nil {
			fmt.Fprintln(l.Stderr(), "error:", err)
			continue
		}
		if result != nil {
			fmt.Fprintln(l.Stdout(), resultprompt+Serialize(result))
		}
	}
}
