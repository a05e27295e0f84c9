package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/loxlang/lox/lang/ast"
	"github.com/loxlang/lox/lang/interp"
	"github.com/loxlang/lox/lang/parser"
	"github.com/loxlang/lox/lang/resolver"
	"github.com/loxlang/lox/lang/scanner"
)

// Resolve implements the `lox resolve <path>...` developer command: it
// prints the syntax tree for each file annotated with each resolvable
// expression's lexical depth.
func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var hadError bool
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			hadError = true
			continue
		}

		state := &runState{stdio: stdio}
		toks := scanner.New(path, src, state.reportScanError).ScanTokens()
		stmts := parser.Parse(toks, state.reportParseError)

		it := interp.New()
		r := resolver.New(it.Resolve, state.reportResolveError)
		r.Resolve(stmts)

		printer := ast.Printer{
			Output: stdio.Stdout,
			Resolved: func(exprID int) (int, bool) {
				depth, ok := lookupDepth(it, exprID)
				return depth, ok
			},
		}
		if err := printer.Print(stmts); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		hadError = hadError || state.hadError
	}
	if hadError {
		return &scanOrParseOrResolveError{}
	}
	return nil
}

// lookupDepth reads the interpreter's resolution side-table for the
// printer, through Interpreter.LookupDepth.
func lookupDepth(it *interp.Interpreter, exprID int) (int, bool) {
	return it.LookupDepth(exprID)
}
