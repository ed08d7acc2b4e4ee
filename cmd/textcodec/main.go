// Command textcodec encodes and decodes UTF-8 through the host bridge.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/wippyai/textcodec/cmd/textcodec/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := command.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
