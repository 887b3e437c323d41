package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"bookshelf/internal/client"
	"bookshelf/internal/collection"
	"bookshelf/internal/metadata"

	"github.com/goccy/go-json"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stars(rating *int) string {
	if rating == nil {
		return "-"
	}
	n := min(max(*rating, collection.MinRating), collection.MaxRating)
	return strings.Repeat("*", n) + strings.Repeat(".", collection.MaxRating-n)
}

func authorNames(authors []metadata.Author) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func printProfile(w io.Writer, p client.Profile) {
	if p.Username != "" {
		fmt.Fprintf(w, "%s <%s>\n\n", p.Username, p.Email)
	}
	if len(p.Collection) == 0 {
		fmt.Fprintln(w, "The collection is empty.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ISBN\tTITLE\tAUTHOR\tREAD\tRATING")
	for _, it := range p.Collection {
		read := "no"
		if it.Read {
			read = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.ISBN, it.BookData.Title, authorNames(it.BookData.Authors), read, stars(it.Rating))
	}
	_ = tw.Flush()
}

func printSearchResults(w io.Writer, results []metadata.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ISBN\tTITLE\tAUTHOR\tPUBLISHED\tSOURCE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ISBN, r.Title, r.Author, r.PublishDate, r.Source)
	}
	_ = tw.Flush()
}

func printBook(w io.Writer, b metadata.CanonicalBook) {
	fmt.Fprintf(w, "%s\n", b.Title)
	fmt.Fprintf(w, "  by %s\n", authorNames(b.Authors))
	fmt.Fprintf(w, "  ISBN %s, published %s", b.ISBN, b.PublishDate)
	if b.NumberOfPages > 0 {
		fmt.Fprintf(w, ", %d pages", b.NumberOfPages)
	}
	fmt.Fprintln(w)
	if b.Cover.Large != "" {
		fmt.Fprintf(w, "  cover %s\n", b.Cover.Large)
	}
	fmt.Fprintf(w, "\n%s\n", b.Description)
}
