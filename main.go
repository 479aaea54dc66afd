package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/bookswap/internal/cli"
	"github.com/mrlokans/bookswap/internal/config"
	"github.com/mrlokans/bookswap/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		if err := entrypoint.Run(config.NewConfig(), Version); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	command := os.Args[1]
	switch command {
	case "-h", "--help", "help":
		printUsage()
		return
	case "version":
		fmt.Printf("bookswap %s (%s)\n", Version, Commit)
		return
	}

	cmd, ok := cli.New(command)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err := cmd.ParseFlags(os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cmd.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve          Start the HTTP API server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  login          Sign in and remember the token\n")
	fmt.Fprintf(os.Stderr, "  logout         Revoke the token and forget the session\n")
	fmt.Fprintf(os.Stderr, "  books          List books, optionally filtered\n")
	fmt.Fprintf(os.Stderr, "  conversations  List your conversations\n")
	fmt.Fprintf(os.Stderr, "  thread         Show the messages about a book\n")
	fmt.Fprintf(os.Stderr, "  send           Send a message about a book\n")
	fmt.Fprintf(os.Stderr, "  transactions   List your purchase and exchange requests\n")
	fmt.Fprintf(os.Stderr, "  version        Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
