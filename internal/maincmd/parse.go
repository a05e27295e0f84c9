package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/loxlang/lox/lang/ast"
	"github.com/loxlang/lox/lang/parser"
	"github.com/loxlang/lox/lang/scanner"
)

// Parse implements the `lox parse <path>...` developer command: it prints
// the syntax tree produced for each file, one indented node per line.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
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

		printer := ast.Printer{Output: stdio.Stdout}
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
