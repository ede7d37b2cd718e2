// Command finboard runs the personal finance API and its background jobs.
package main

import (
	"context"
	"fmt"
	"os"

	"finboard/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
