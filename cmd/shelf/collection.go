package main

import (
	"errors"
	"fmt"
	"strconv"

	"bookshelf/internal/client"
	"bookshelf/internal/metadata"

	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	var offline, asJSON bool
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the account and its collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.store.Profile()
			if !offline {
				ctx, cancel := a.context(cmd)
				defer cancel()
				var err error
				if p, err = a.store.Refresh(ctx); err != nil {
					return err
				}
			}
			if asJSON {
				return writeJSON(a.out, p)
			}
			printProfile(a.out, p)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "print the cached collection without contacting the server")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "add <isbn>",
		Short: "Add a book to the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			it, err := a.store.Add(ctx, provider, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %q (%s).\n", it.BookData.Title, it.ISBN)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", metadata.OpenLibrary.String(), "metadata provider: openlibrary, googlebooks or local")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <isbn>",
		Short: "Remove a book from the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			if err := a.store.Remove(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed %s.\n", args[0])
			return nil
		},
	}
}

func newRateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <isbn> <0-5>",
		Short: "Rate a book of the collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("rating must be a number: %q", args[1])
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			it, err := a.store.SetRating(ctx, args[0], rating)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Rated %q %s.\n", it.BookData.Title, stars(it.Rating))
			return nil
		},
	}
}

func newToggleReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-read <isbn>",
		Short: "Flip the read flag of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			it, err := a.store.ToggleRead(ctx, args[0])
			if err != nil {
				if errors.Is(err, client.ErrNotFound) {
					return fmt.Errorf("%s is not in the cached collection, run `shelf profile` to refresh it: %w", args[0], err)
				}
				return err
			}
			state := "unread"
			if it.Read {
				state = "read"
			}
			fmt.Fprintf(a.out, "Marked %q as %s.\n", it.BookData.Title, state)
			return nil
		},
	}
}
