package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cthoyt/robot-obo-tool/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.App().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
