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
import "math"
import "time"
import "strings"
import "strconv"
import "github.com/launix-de/colibri/scm"

// registerHost exposes a small set of Go packages to scripts, e.g.
// (os/Getenv "HOME") or (use strings) (ToUpper "x").
func registerHost(h *scm.HostInterop) {
	h.Register("os", "Getenv", os.Getenv)
	h.Register("os", "LookupEnv", os.LookupEnv)
	h.Register("os", "Hostname", os.Hostname)
	h.Register("os", "ReadFile", os.ReadFile)
	h.Register("os", "Args", os.Args)

	h.Register("strings", "ToUpper", strings.ToUpper)
	h.Register("strings", "ToLower", strings.ToLower)
	h.Register("strings", "Contains", strings.Contains)
	h.Register("strings", "Split", strings.Split)
	h.Register("strings", "Join", strings.Join)
	h.Register("strings", "TrimSpace", strings.TrimSpace)
	h.Register("strings", "Repeat", strings.Repeat)

	h.Register("strconv", "Itoa", strconv.Itoa)
	h.Register("strconv", "Atoi", strconv.Atoi)

	h.Register("math", "Pow", math.Pow)
	h.Register("math", "Hypot", math.Hypot)
	h.Register("math", "Pi", math.Pi)

	h.Register("time", "Now", time.Now)
	h.Register("time", "Since", time.Since)
}
