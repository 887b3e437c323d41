package main

import (
	"strings"

	"bookshelf/internal/metadata"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		provider string
		limit    int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search a metadata provider for books to add",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			results, err := a.resolver.Search(ctx, provider, strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, results)
			}
			printSearchResults(a.out, results)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", metadata.OpenLibrary.String(), "provider to search: openlibrary, googlebooks or local")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newLookupCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lookup <provider> <identifier>",
		Short: "Show the metadata of one book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			b := a.resolver.Resolve(ctx, args[0], args[1])
			if asJSON {
				return writeJSON(a.out, b)
			}
			printBook(a.out, b)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
