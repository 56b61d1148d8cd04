// ABOUTME: Book commands for the admin CLI: list, show, create, edit and delete
// ABOUTME: Listing reuses the console's filter and pager; deletes go through the same confirmation flow

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/schollz/progressbar/v3"

	"github.com/2389/bookdesk/internal/bookform"
	"github.com/2389/bookdesk/internal/catalog"
	"github.com/2389/bookdesk/internal/deleteflow"
	"github.com/2389/bookdesk/internal/listing"
)

// stdout is where command output goes; tests replace it.
var stdout io.Writer = os.Stdout

// cmdBooks handles books subcommands
func (a *app) cmdBooks(ctx context.Context, args []string) error {
	if err := a.requireToken(); err != nil {
		return err
	}

	// Default to list
	subcmd := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		return a.cmdBooksList(ctx, args)
	case "show", "get":
		return a.cmdBooksShow(ctx, args)
	case "create", "add":
		return a.cmdBooksCreate(ctx, args)
	case "edit", "update":
		return a.cmdBooksEdit(ctx, args)
	case "delete", "rm", "remove":
		return a.cmdBooksDelete(ctx, args)
	default:
		return fmt.Errorf("unknown books subcommand: %s (use list, show, create, edit, delete)", subcmd)
	}
}

func (a *app) cmdBooksList(ctx context.Context, args []string) error {
	p, err := parseArgs(args, []string{"search", "page"}, nil, map[string]string{"-s": "search", "-p": "page"})
	if err != nil {
		return err
	}
	page, err := p.intValue("page", 1)
	if err != nil {
		return err
	}

	books, err := a.client.ListBooks(ctx)
	if err != nil {
		return err
	}

	renderList(stdout, listing.ComputeView(books, p.value("search"), page))
	return nil
}

// renderList prints one page of the list with its summary and pager.
func renderList(out io.Writer, v listing.View) {
	cyan := color.New(color.FgCyan)
	fmt.Fprintln(out)
	cyan.Fprintln(out, "  Books")
	cyan.Fprintln(out, "  -----")

	if v.Empty() {
		if v.Search != "" {
			fmt.Fprintf(out, "  (no books match %q)\n\n", v.Search)
		} else {
			fmt.Fprintln(out, "  (no books)")
			fmt.Fprintln(out)
		}
		return
	}

	if len(v.Visible) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  ID\tTITLE\tGENRE\tAUTHOR\tCREATED")
		fmt.Fprintln(w, "  --\t-----\t-----\t------\t-------")
		for _, b := range v.Visible {
			author := b.AuthorName()
			if author == "" {
				author = "-"
			}
			created := "-"
			if !b.CreatedAt.IsZero() {
				created = b.CreatedAt.Local().Format("Jan 02 2006 15:04")
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
				truncate(b.ID, 24), truncate(b.Title, 32), truncate(b.Genre, 16), truncate(author, 20), created)
		}
		_ = w.Flush()
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "  %s\n", v.Summary())
	if v.TotalPages > 1 {
		fmt.Fprintf(out, "  Page %s of %d\n", pagerLine(v.Page, v.TotalPages), v.TotalPages)
	}
	fmt.Fprintln(out)
}

// pagerLine renders the page strip, e.g. "1 … 4 [5] 6 … 9".
func pagerLine(current, total int) string {
	links := listing.PageLinks(current, total)
	parts := make([]string, 0, len(links))
	for _, l := range links {
		switch {
		case l.Ellipsis:
			parts = append(parts, "…")
		case l.Current:
			parts = append(parts, "["+strconv.Itoa(l.Number)+"]")
		default:
			parts = append(parts, strconv.Itoa(l.Number))
		}
	}
	if len(parts) == 0 {
		// Requested page is past the end; still show where the pages are.
		return strconv.Itoa(current)
	}
	return strings.Join(parts, " ")
}

func (a *app) cmdBooksShow(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: books show <book-id>")
	}

	book, err := a.client.GetBook(ctx, args[0])
	if err != nil {
		return err
	}

	printBook(stdout, book)
	return nil
}

func printBook(out io.Writer, b *catalog.Book) {
	cyan := color.New(color.FgCyan)
	fmt.Fprintln(out)
	cyan.Fprintf(out, "  %s\n", b.Title)
	cyan.Fprintln(out, "  "+strings.Repeat("-", len([]rune(b.Title))))
	fmt.Fprintf(out, "  ID:       %s\n", b.ID)
	fmt.Fprintf(out, "  Genre:    %s\n", b.Genre)
	if name := b.AuthorName(); name != "" {
		fmt.Fprintf(out, "  Author:   %s\n", name)
	}
	if b.CoverImage != "" {
		fmt.Fprintf(out, "  Cover:    %s\n", b.CoverImage)
	}
	if b.File != "" {
		fmt.Fprintf(out, "  File:     %s\n", b.File)
	}
	if !b.CreatedAt.IsZero() {
		fmt.Fprintf(out, "  Created:  %s\n", b.CreatedLabel())
	}
	fmt.Fprintln(out)
}

var bookFlags = []string{"title", "genre", "cover", "file"}

// readUploads loads the --cover and --file paths, validating each against its constraint.
func readUploads(p *parsedArgs) (cover, file *bookform.Payload, err error) {
	var errs []error
	if path := p.value("cover"); path != "" {
		if cover, err = bookform.ReadFile(bookform.CoverImage, path); err != nil {
			errs = append(errs, err)
		}
	}
	if path := p.value("file"); path != "" {
		if file, err = bookform.ReadFile(bookform.BookFile, path); err != nil {
			errs = append(errs, err)
		}
	}
	return cover, file, errors.Join(errs...)
}

func (a *app) cmdBooksCreate(ctx context.Context, args []string) error {
	p, err := parseArgs(args, bookFlags, nil, map[string]string{"-t": "title", "-g": "genre"})
	if err != nil {
		return err
	}

	values := bookform.Values{Title: p.value("title"), Genre: p.value("genre")}
	if values.CoverImage, values.File, err = readUploads(p); err != nil {
		return err
	}

	contentType, body, err := values.Encode(bookform.Create)
	if err != nil {
		return err
	}

	book, err := a.client.CreateBook(ctx, contentType, withProgress(body.Len(), body, "Uploading"))
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(stdout, "✓ Created book: %s\n", book.ID)
	printBook(stdout, book)
	return nil
}

func (a *app) cmdBooksEdit(ctx context.Context, args []string) error {
	p, err := parseArgs(args, bookFlags, nil, map[string]string{"-t": "title", "-g": "genre"})
	if err != nil {
		return err
	}
	if len(p.positional) < 1 {
		return fmt.Errorf("usage: books edit <book-id> [--title t] [--genre g] [--cover path] [--file path]")
	}
	id := p.positional[0]

	// Unchanged text fields keep their current values.
	current, err := a.client.GetBook(ctx, id)
	if err != nil {
		return err
	}
	values := bookform.Values{Title: current.Title, Genre: current.Genre}
	if p.has("title") {
		values.Title = p.value("title")
	}
	if p.has("genre") {
		values.Genre = p.value("genre")
	}
	if values.CoverImage, values.File, err = readUploads(p); err != nil {
		return err
	}

	contentType, body, err := values.Encode(bookform.Edit)
	if err != nil {
		return err
	}

	book, err := a.client.UpdateBook(ctx, id, contentType, withProgress(body.Len(), body, "Uploading"))
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(stdout, "✓ Updated book: %s\n", id)
	if book != nil && book.ID != "" {
		printBook(stdout, book)
	}
	return nil
}

func (a *app) cmdBooksDelete(ctx context.Context, args []string) error {
	p, err := parseArgs(args, nil, []string{"yes"}, map[string]string{"-y": "yes"})
	if err != nil {
		return err
	}
	if len(p.positional) < 1 {
		return fmt.Errorf("usage: books delete <book-id> [--yes]")
	}
	id := p.positional[0]

	book, err := a.client.GetBook(ctx, id)
	if err != nil {
		return err
	}

	flow := deleteflow.New(a.client, nil)
	if err := flow.Request(book.ID, book.Title); err != nil {
		return err
	}

	yellow := color.New(color.FgYellow)
	yellow.Fprintln(stdout, "Are you absolutely sure?")
	fmt.Fprintln(stdout, flow.Snapshot().Message())

	if !p.switchOn("yes") {
		confirmed, err := confirm("Continue? [y/N] ")
		if err != nil || !confirmed {
			_ = flow.Cancel()
			fmt.Fprintln(stdout, "Cancelled.")
			return err
		}
	}

	// The delete is not abandoned if the user interrupts while it is in flight.
	deleted, err := flow.Confirm(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(stdout, "✓ Deleted book: %s\n", deleted.Title)
	return nil
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(question string) (bool, error) {
	in := newPrompter()
	defer func() { _ = in.Close() }()

	answer, err := in.Prompt(question)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return false, nil
		}
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// progressReader reports its total size so the upload keeps a Content-Length.
type progressReader struct {
	io.Reader
	size int
}

func (p *progressReader) Len() int { return p.size }

// withProgress draws a progress bar for bodies over 1MB.
func withProgress(size int, r io.Reader, label string) io.Reader {
	if size < 1<<20 {
		return r
	}
	bar := progressbar.DefaultBytes(int64(size), label)
	return &progressReader{Reader: io.TeeReader(r, bar), size: size}
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
