/*
Copyright (C) 2024  Carl-Philip Hänsch

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
import "fmt"
import "sync"
import "time"
import "sync/atomic"
import "encoding/json"
import "path/filepath"

// TraceEvent is one record of the Chrome trace event format.
type TraceEvent struct {
	Name  string         `json:"name"`
	Cat   string         `json:"cat"`
	Phase string         `json:"ph"`
	Ts    int64          `json:"ts"`
	Pid   int            `json:"pid"`
	Tid   int            `json:"tid"`
	Scope string         `json:"s,omitempty"`
	Args  map[string]any `json:"args,omitempty"`
}

// Tracefile records evaluation of top-level forms and procedure entries.
// Load it into chrome://tracing or Perfetto.
type Tracefile struct {
	isFirst   bool
	file      io.WriteCloser
	m         sync.Mutex
	reentries atomic.Int64
}

var Trace *Tracefile // default trace: set to not nil if you want to trace
var TracePrint bool  // whether to print traces to stdout

// SetTrace opens a Chrome trace file in $COLIBRI_TRACEDIR (or the working
// directory) or closes the current one.
func SetTrace(on bool) error {
	if Trace != nil {
		Trace.Close()
		Trace = nil
	}
	if on {
		name := filepath.Join(os.Getenv("COLIBRI_TRACEDIR"), "trace_"+fmt.Sprint(time.Now().Unix())+".json")
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("cannot open trace file: %w", err)
		}
		Trace = NewTrace(f)
	}
	return nil
}

func NewTrace(file io.WriteCloser) *Tracefile {
	file.Write([]byte("["))
	return &Tracefile{file: file, isFirst: true}
}

func (t *Tracefile) Close() {
	t.file.Write([]byte("]"))
	t.file.Close()
}

// Form wraps the evaluation of one top-level form in a begin/end pair. The
// end event counts the trampoline re-entries, i.e. tail calls that ran
// without growing the native stack.
func (t *Tracefile) Form(form Scmer, f func()) {
	name := Serialize(form)
	if len(name) > 80 {
		name = name[:77] + "..."
	}
	before := t.reentries.Load()
	t.Emit(TraceEvent{Name: name, Cat: "program", Phase: "B"})
	defer func() {
		t.Emit(TraceEvent{Name: name, Cat: "program", Phase: "E", Args: map[string]any{
			"tail-calls": t.reentries.Load() - before,
		}})
	}()
	f()
}

// Procedure marks entering a procedure body at the given frame depth.
func (t *Tracefile) Procedure(name string, depth int, argc int) {
	t.Emit(TraceEvent{Name: name, Cat: "procedure", Phase: "i", Scope: "t", Args: map[string]any{
		"depth": depth,
		"args":  argc,
	}})
}

// TailReentry counts one pass of the trampoline loop.
func (t *Tracefile) TailReentry() {
	t.reentries.Add(1)
}

// Emit writes ev; a zero timestamp is replaced by the time since startup.
func (t *Tracefile) Emit(ev TraceEvent) {
	if ev.Ts == 0 {
		ev.Ts = time.Since(start).Microseconds()
	}
	if TracePrint {
		fmt.Printf("trace %s %s %s %dus %v\n", ev.Phase, ev.Cat, ev.Name, ev.Ts, ev.Args)
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	t.m.Lock()
	defer t.m.Unlock()
	if t.isFirst {
		t.isFirst = false
	} else {
		t.file.Write([]byte(",\n"))
	}
	t.file.Write(b)
}

var start time.Time = time.Now()
