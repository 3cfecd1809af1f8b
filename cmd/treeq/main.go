// Command treeq loads content trees into SQLite and runs constraint queries
// over them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/treeq/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
