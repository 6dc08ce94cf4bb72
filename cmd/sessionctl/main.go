// Command sessionctl signs in to the auth API and keeps the session on disk.
//
//	sessionctl login -email ada@example.com
//	sessionctl whoami
//	sessionctl get /lessons /users/me
//	sessionctl level intermediate
//	sessionctl logout
//
// Settings come from the environment (and .env): SESSIONKIT_API_URL,
// SESSIONKIT_TOKEN_STORE, SESSIONKIT_TOKEN_FILE and friends.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonasv2/sessionkit"
	"github.com/jonasv2/sessionkit/core/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg sessionkit.Config
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "sessionctl:", err)
		os.Exit(2)
	}

	app := &cli{cfg: cfg, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(app.run(ctx, os.Args[1:]))
}
