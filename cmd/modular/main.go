// Command modular runs the migrations of a modular monolith.
//
// Usage:
//
//	modular migrate --config modular.yaml
//	modular migrate rollback
//	modular migrate status --format json
//	modular make-migration Blog create_posts_table --type create --table posts
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/getpup/modular/internal/cli"
)

func main() {
	// Cancel the running operation on SIGINT/SIGTERM; the migration in flight
	// finishes or rolls back its own transaction.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
