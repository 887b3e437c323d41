// Command shelf is the terminal client of the bookshelf server. It keeps the
// session token and the enriched collection in a local Badger cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"bookshelf/internal/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Stdout, os.Args[1:])
	stop()
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "Not logged in or session expired, run `shelf login` again.")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
