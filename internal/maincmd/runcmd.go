package maincmd

import (
	"context"

	"github.com/mna/mainer"
)

// Run implements the `lox run <path>...` developer command: it runs each
// file in turn, the same as the default no-command contract applied to
// more than one file. The first file to fail, statically or at runtime,
// stops the remaining ones.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, path := range args {
		if err := RunFile(ctx, stdio, path); err != nil {
			return err
		}
	}
	return nil
}
