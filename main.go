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
/*
	colibri: a Scheme runtime with proper tail calls, hygienic macros
	and typed parameters
*/
package main

import "os"
import "fmt"
import "flag"
import "time"
import "errors"
import "sync/atomic"
import "crypto/rand"
import "github.com/google/uuid"
import "github.com/dc0d/onexit"
import "github.com/fsnotify/fsnotify"
import "github.com/launix-de/colibri/scm"

// workaround for flags package to allow multiple values
type arrayFlags []string

func (i *arrayFlags) String() string {
	return "dummy"
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

var exiting atomic.Bool
var exitProcess = onexit.ForceExit

// shutdown runs the registered onexit handlers and terminates with code.
func shutdown(code int) {
	exiting.Store(true)
	exitProcess(code)
}

func newRuntime(opts scm.Options) *scm.Runtime {
	rt, err := scm.New(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot create runtime:", err)
		os.Exit(1)
	}
	return rt
}

// run evaluates a script; errors are printed, (exit) terminates the process.
func run(rt *scm.Runtime, filename string) bool {
	_, err := rt.LoadFile(rt.User, filename)
	var exit *scm.ExitSignal
	if errors.As(err, &exit) {
		shutdown(exit.Code)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return false
	}
	return true
}

// watch re-evaluates filename in a fresh runtime whenever it changes on disk.
func watch(opts scm.Options, filename string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		panic(err)
	}
	defer watcher.Close()
	run(newRuntime(opts), filename)
	if err = watcher.Add(filename); err != nil {
		panic(err)
	}
	for {
		select {
		case <-watcher.Events:
			// flush all other events
			for {
				time.Sleep(10 * time.Millisecond) // delay a bit, so we don't read empty files
				select {
				case <-watcher.Events:
					// ignore
				default:
					goto to_reread
				}
			}
		to_reread:
			fmt.Println("Reloading " + filename + " ...")
			run(newRuntime(opts), filename)
			watcher.Add(filename) // text editors rename, so we have to rewatch
		case err := <-watcher.Errors:
			fmt.Fprintln(os.Stderr, "watch:", err)
		}
	}
}

func main() {
	// init random generator for UUIDs (record type identities)
	uuid.SetRand(rand.Reader)

	// parse command line options
	var commands arrayFlags
	flag.Var(&commands, "c", "Execute scm command")

	wd, _ := os.Getwd()
	flag.StringVar(&wd, "wd", wd, "Working Directory for (load) and (include) (Default: .)")

	maxDepth := 0
	flag.IntVar(&maxDepth, "max-depth", scm.DefaultMaxStackDepth, "Maximum non-tail recursion depth")

	noPrelude := false
	flag.BoolVar(&noPrelude, "no-prelude", false, "Do not import the standard libraries; only (import ...) is available")

	trace := false
	flag.BoolVar(&trace, "trace", false, "Write a Chrome trace file to $COLIBRI_TRACEDIR")

	docs := ""
	flag.StringVar(&docs, "write-docs", "", "Write the builtin documentation as markdown into this folder and exit")

	watchMode := false
	flag.BoolVar(&watchMode, "watch", false, "Re-evaluate the script whenever it changes")

	flag.Parse()
	scripts := flag.Args()

	if docs != "" {
		if err := scm.WriteDocumentation(docs); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := os.Chdir(wd); err != nil {
		fmt.Fprintln(os.Stderr, "cannot change to working directory:", err)
		os.Exit(1)
	}
	if trace {
		if err := scm.SetTrace(true); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		onexit.Register(func() { scm.SetTrace(false) }) // close trace file on exit
	}

	opts := scm.DefaultOptions()
	opts.MaxStackDepth = maxDepth
	opts.ImportStandardLibrary = !noPrelude
	interop := scm.NewHostInterop()
	registerHost(interop)
	opts.Interop = interop
	opts.OnExit = shutdown

	if watchMode {
		if len(scripts) != 1 {
			fmt.Fprintln(os.Stderr, "-watch needs exactly one script")
			os.Exit(1)
		}
		watch(opts, scripts[0])
		return
	}

	rt := newRuntime(opts)
	ok := true
	for _, script := range scripts {
		ok = run(rt, script) && ok
	}
	for _, command := range commands {
		result, err := rt.EvaluateProgramIn(rt.User, "command line", command)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			ok = false
			continue
		}
		if result != nil {
			fmt.Println(scm.String(result))
		}
	}
	if len(scripts) > 0 || len(commands) > 0 {
		if !ok {
			shutdown(1)
		}
		shutdown(0)
	}

	// onexit runs its handlers on SIGINT/SIGTERM but leaves the process alive
	go func() {
		<-onexit.Done()
		if !exiting.Load() {
			os.Exit(1)
		}
	}()

	fmt.Print(`colibri Copyright (C) 2024-2026   Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;

    Type (help) to show help

`)
	err := scm.Repl(rt, ".colibri-history.tmp")
	var exit *scm.ExitSignal
	if errors.As(err, &exit) {
		shutdown(exit.Code)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		shutdown(1)
	}
	shutdown(0)
}
