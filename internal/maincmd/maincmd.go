// Package maincmd implements the Lox command-line driver: it wires
// lang/scanner, lang/parser, lang/resolver and lang/interp together behind
// a single dispatchable command.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"

	"github.com/loxlang/lox/lang/interp"
)

const binName = "lox"

var (
	shortUsage = fmt.Sprintf("usage: %s [script]\nRun '%[1]s --help' for details.\n", binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [script]
       %[1]s [<option>...] <command> <path>...
       %[1]s -h|--help
       %[1]s -v|--version

Tree-walking interpreter for the Lox programming language.

With no script argument, starts an interactive REPL. With one script
argument, runs that file and exits.

The <command> can be one of, each applied to the given path(s):
       tokenize                  Run the scanner and print the resulting
                                 tokens.
       parse                     Run scanner + parser and print the
                                 resulting syntax tree.
       resolve                   Run scanner + parser + resolver and
                                 print the syntax tree annotated with
                                 resolved variable depths.
       run                       Run scanner + parser + resolver +
                                 interpreter, same as the default
                                 no-command contract, for each path.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)
)

// Exit codes, per spec.md §6: 0 success, 64 usage error, 65 a static
// (scan/parse/resolve) error, 70 a runtime error.
const (
	exitUsage        = mainer.ExitCode(64)
	exitStaticError  = mainer.ExitCode(65)
	exitRuntimeError = mainer.ExitCode(70)
)

// Cmd is the lox command, parsed and dispatched by mainer.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args  []string
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

// SetArgs implements mainer's positional-args hook.
func (c *Cmd) SetArgs(args []string) { c.args = args }

// Validate implements mainer's post-parse validation hook.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 0 {
		if fn, ok := buildCmds(c)[c.args[0]]; ok {
			c.cmdFn = fn
			if len(c.args[1:]) == 0 {
				return fmt.Errorf("%s: at least one file must be provided", c.args[0])
			}
			return nil
		}
	}
	if len(c.args) > 1 {
		return errors.New("too many arguments")
	}
	return nil
}

// Main is the entry point invoked by cmd/lox.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return exitUsage
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if c.cmdFn != nil {
		switch err := c.cmdFn(ctx, stdio, c.args[1:]); {
		case err == nil:
			return mainer.Success
		case errors.As(err, new(*interp.RuntimeError)):
			fmt.Fprintln(stdio.Stderr, err)
			return exitRuntimeError
		default:
			return exitStaticError
		}
	}

	switch len(c.args) {
	case 0:
		RunPrompt(ctx, stdio)
		return mainer.Success
	case 1:
		switch err := RunFile(ctx, stdio, c.args[0]); {
		case err == nil:
			return mainer.Success
		case errors.As(err, new(*scanOrParseOrResolveError)):
			return exitStaticError
		default:
			fmt.Fprintln(stdio.Stderr, err)
			return exitRuntimeError
		}
	default:
		fmt.Fprint(stdio.Stderr, shortUsage)
		return exitUsage
	}
}

// buildCmds builds a reflection-based dispatch table: any exported method
// on v shaped like func(context.Context, mainer.Stdio, []string) error
// becomes a subcommand named after the method, lowercased.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
