package main

import (
	"fmt"

	"bookshelf/internal/book"

	"github.com/spf13/cobra"
)

func newBooksCmd(a *app) *cobra.Command {
	books := &cobra.Command{
		Use:   "books",
		Short: "Manage books of the server's local catalog",
	}
	books.AddCommand(newBooksCreateCmd(a), newBooksShowCmd(a))
	return books
}

func newBooksCreateCmd(a *app) *cobra.Command {
	var (
		in  book.CreateCommand
		add bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a local book, optionally adding it to the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			b, err := a.api.CreateBook(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created %q with id %s.\n", b.Title, b.ID)

			if !add {
				return nil
			}
			if _, err := a.store.Add(ctx, book.ProviderKey, b.ID); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Added to the collection.")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "title")
	f.StringVar(&in.Author, "author", "", "author")
	f.StringVar(&in.ISBN, "isbn", "", "ISBN-10 or ISBN-13")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&in.Cover, "cover", "", "cover image URL")
	f.StringVar(&in.PublishedDate, "published", "", "publication date")
	f.IntVar(&in.PageCount, "pages", 0, "number of pages")
	f.BoolVar(&add, "add", false, "also add the new book to the collection")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newBooksShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a local book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			b, err := a.api.GetBook(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, b)
			}
			fmt.Fprintf(a.out, "%s\n  by %s\n  id %s, ISBN %s\n", b.Title, b.Author, b.ID, b.ISBN)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
