package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scholarled/paper-nft-go/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		if !cli.Reported(err) {
			fmt.Fprintf(os.Stderr, "paperminter: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
