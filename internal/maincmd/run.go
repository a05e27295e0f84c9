package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/loxlang/lox/lang/interp"
	"github.com/loxlang/lox/lang/parser"
	"github.com/loxlang/lox/lang/resolver"
	"github.com/loxlang/lox/lang/scanner"
	"github.com/loxlang/lox/lang/token"
)

// scanOrParseOrResolveError reports that at least one static (lexical,
// syntax, or resolution) error was found; it carries no data beyond that,
// since every individual error was already reported to stderr as it was
// found. Kept as its own type (rather than a sentinel error value) purely
// so Main can distinguish it from an *interp.RuntimeError with
// errors.As, per spec.md §6's distinct 65 vs 70 exit codes.
type scanOrParseOrResolveError struct{}

func (*scanOrParseOrResolveError) Error() string { return "static error" }

// runState is the per-run error state spec.md §9 requires to live outside
// any process-wide global, so that a REPL session can track errors across
// lines without one line's mistake poisoning another's exit status.
type runState struct {
	stdio    mainer.Stdio
	hadError bool
}

func (r *runState) reportStatic(line int, where, msg string) {
	r.hadError = true
	fmt.Fprintf(r.stdio.Stderr, "[line %d] Error%s: %s\n", line, where, msg)
}

func (r *runState) reportScanError(line int, msg string) {
	r.reportStatic(line, "", msg)
}

func (r *runState) reportParseError(tok token.Token, msg string) {
	where := " at '" + tok.Lexeme + "'"
	if tok.Kind == token.EOF {
		where = " at end"
	}
	r.reportStatic(tok.Line, where, msg)
}

func (r *runState) reportResolveError(tok token.Token, msg string) {
	r.reportParseError(tok, msg)
}

// RunFile reads and executes the Lox source at path, reporting read and
// static errors to stdio.Stderr. It returns a *scanOrParseOrResolveError if
// any static error was found (execution is skipped in that case), or the
// interpreter's *interp.RuntimeError if the program ran but failed at
// runtime; a runtime error is returned, not printed.
func RunFile(ctx context.Context, stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	it := interp.New()
	it.Stdout = stdio.Stdout
	state := &runState{stdio: stdio}
	if err := state.runSource(ctx, it, path, src); err != nil {
		return err
	}
	if state.hadError {
		return &scanOrParseOrResolveError{}
	}
	return nil
}

// RunPrompt runs an interactive REPL over stdio: it reads one line at a
// time, evaluates it against a single, persistent *interp.Interpreter, and
// prints any error without exiting, so a mistake on one line never ends
// the session. EOF on stdin ends the loop.
func RunPrompt(ctx context.Context, stdio mainer.Stdio) {
	it := interp.New()
	it.Stdout = stdio.Stdout

	stdin := stdio.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	sc := bufio.NewScanner(stdin)

	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !sc.Scan() {
			return
		}
		if err := ctx.Err(); err != nil {
			return
		}

		line := sc.Text()
		state := &runState{stdio: stdio}
		if err := state.runSource(ctx, it, "<stdin>", []byte(line)); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
		}
		// A REPL error, static or runtime, ends only this line; the
		// interpreter (globals and resolutions) survives for the next one.
	}
}

// runSource scans, parses, resolves and (absent any static error) executes
// src against it, reporting static errors through state as it finds them.
func (state *runState) runSource(ctx context.Context, it *interp.Interpreter, filename string, src []byte) error {
	toks := scanner.New(filename, src, state.reportScanError).ScanTokens()

	stmts := parser.Parse(toks, state.reportParseError)

	r := resolver.New(it.Resolve, state.reportResolveError)
	r.Resolve(stmts)

	if state.hadError {
		return nil
	}

	return it.Run(ctx, stmts)
}
