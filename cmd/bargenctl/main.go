package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bargen/bargen-backend/internal/client"
	"github.com/bargen/bargen-backend/pkg/env"
)

const (
	envBaseURL     = "BARGEN_API_URL"
	envToken       = "BARGEN_TOKEN"
	defaultBaseURL = "http://localhost:8080"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, env *cliEnv, args []string) error
}

// cliEnv carries the session flags shared by every subcommand.
type cliEnv struct {
	baseURL string
	token   string
	out     io.Writer
}

func (e *cliEnv) bind(fs *flag.FlagSet) {
	fs.StringVar(&e.baseURL, "base-url", e.baseURL, "marketplace API base url")
	fs.StringVar(&e.token, "token", e.token, "bearer token, empty for anonymous calls")
	fs.SetOutput(io.Discard)
}

func (e *cliEnv) client() (*client.Client, error) {
	return client.New(
		client.Session{BaseURL: e.baseURL, Token: e.token},
		client.WithRetry(2, 250*time.Millisecond),
	)
}

var commands = []command{
	{name: "token", usage: "mint or revoke a development bearer token (dev only)", run: runToken},
	{name: "browse", usage: "search the catalog", run: runBrowse},
	{name: "bargain", usage: "offer a price for a product", run: runBargain},
	{name: "accept", usage: "accept a pending bargain", run: runAccept},
	{name: "cart", usage: "show the priced cart", run: runCart},
	{name: "watch-chat", usage: "follow the chat about a product until interrupted", run: runWatchChat},
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	cmd, ok := lookup(args[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	cli := &cliEnv{
		baseURL: env.Get(envBaseURL, defaultBaseURL),
		token:   env.Get(envToken, ""),
		out:     stdout,
	}
	if err := cmd.run(ctx, cli, args[1:]); err != nil {
		// Typed API failures get the friendly message; local errors stay raw.
		if client.Classify(err) != client.Other {
			fmt.Fprintln(stderr, client.UserMessage(err))
			if id := client.RequestID(err); id != "" {
				fmt.Fprintf(stderr, "request id: %s\n", id)
			}
		} else {
			fmt.Fprintf(stderr, "%s: %v\n", cmd.name, err)
		}
		return 1
	}
	return 0
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: bargenctl <command> [flags]")
	fmt.Fprintln(w)
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-11s %s\n", cmd.name, cmd.usage)
	}
	fmt.Fprintf(w, "\nsession: -base-url / %s, -token / %s\n", envBaseURL, envToken)
}
