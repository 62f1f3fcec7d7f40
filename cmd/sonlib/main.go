// Command sonlib runs the phylogeny algorithms and the key-value store from
// the command line.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(ctx).Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}
