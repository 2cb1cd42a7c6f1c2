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

import "bytes"
import "testing"
import "encoding/json"

type closingBuffer struct {
	bytes.Buffer
}

func (b *closingBuffer) Close() error { return nil }

func TestTraceEvents(t *testing.T) {
	rt := newTestRuntime(t, DefaultOptions())
	evalString(t, rt, `(define (loop n) (if (= n 0) 'done (loop (- n 1))))`)
	buf := new(closingBuffer)
	Trace = NewTrace(buf)
	evalString(t, rt, `(loop 5)`)
	Trace.Close()
	Trace = nil

	var events []TraceEvent
	if err := json.Unmarshal(buf.Bytes(), &events); err != nil {
		t.Fatalf("trace is not valid JSON: %v\n%s", err, buf.String())
	}
	entries := 0
	var tailCalls float64 = -1
	for _, ev := range events {
		switch {
		case ev.Cat == "procedure" && ev.Name == "loop":
			entries++
			// tail calls re-enter at the depth of the first call
			if ev.Args["depth"] != float64(3) {
				t.Fatalf("expected depth 3 for every entry, got %v", ev.Args["depth"])
			}
		case ev.Cat == "program" && ev.Phase == "E":
			tailCalls = ev.Args["tail-calls"].(float64)
		}
	}
	if entries != 6 {
		t.Fatalf("expected 6 procedure entries, got %d", entries)
	}
	if tailCalls < 5 {
		t.Fatalf("expected at least 5 trampoline re-entries, got %v", tailCalls)
	}
}
