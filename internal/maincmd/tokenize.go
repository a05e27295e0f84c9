package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/loxlang/lox/lang/scanner"
)

// Tokenize implements the `lox tokenize <path>...` developer command: it
// prints every token scanned from each file, one per line.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var hadError bool
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			hadError = true
			continue
		}

		toks := scanner.New(path, src, func(line int, msg string) {
			hadError = true
			fmt.Fprintf(stdio.Stderr, "[line %d] Error: %s\n", line, msg)
		}).ScanTokens()

		for _, tok := range toks {
			fmt.Fprintf(stdio.Stdout, "%-10s %-10q", tok.Kind, tok.Lexeme)
			if tok.Literal != nil {
				fmt.Fprintf(stdio.Stdout, " %v", tok.Literal)
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	if hadError {
		return &scanOrParseOrResolveError{}
	}
	return nil
}
