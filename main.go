package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/devjuank/FinanceService/cmd/consolidate"
	"github.com/devjuank/FinanceService/cmd/process"
	"github.com/devjuank/FinanceService/cmd/root"
	"github.com/devjuank/FinanceService/cmd/validate"
)

func init() {
	root.Cmd.AddCommand(consolidate.Cmd)
	root.Cmd.AddCommand(process.Cmd)
	root.Cmd.AddCommand(validate.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
