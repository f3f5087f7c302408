// Binary folio is the command-line front end for the folio reading library.
//
// Usage:
//
//	folio transcribe -title "Title" -author "Author" book.pdf
//	folio text book.pdf
//	folio import https://example.com/article
//	folio list
//	folio search [-book ID] "query"
//	folio wordcount BOOK-ID
//
// Configuration is read from folio.toml (override with FOLIO_CONFIG) and
// FOLIO_* environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	folio "github.com/prasetyo/folio"
	"github.com/prasetyo/folio/blob"
	"github.com/prasetyo/folio/internal/config"
	"github.com/prasetyo/folio/observer"
	"github.com/prasetyo/folio/store/postgres"
	"github.com/prasetyo/folio/store/sqlite"
	"github.com/prasetyo/folio/transcribe"
	"github.com/prasetyo/folio/transcribe/pdfdoc"
	"github.com/prasetyo/folio/webarticle"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := config.Load(os.Getenv("FOLIO_CONFIG"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "transcribe":
		err = cmdTranscribe(ctx, cfg, logger, os.Args[2:])
	case "text":
		err = cmdText(ctx, os.Args[2:])
	case "import":
		err = cmdImport(ctx, cfg, logger, os.Args[2:])
	case "list":
		err = cmdList(ctx, cfg, logger)
	case "search":
		err = cmdSearch(ctx, cfg, logger, os.Args[2:])
	case "wordcount":
		err = cmdWordCount(ctx, cfg, logger, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "cmd", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: folio <command> [flags]

commands:
  transcribe  transcribe a PDF into the library
  text        print a PDF's plain text without storing it
  import      import a web article into the library
  list        list library books
  search      full-text search the library
  wordcount   count words in a stored book`)
}

// openStore builds the configured library store and initializes its schema.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (folio.Store, error) {
	var st folio.Store
	switch cfg.Library.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		st = postgres.New(pool)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Library.Path), 0o755); err != nil {
			return nil, err
		}
		st = sqlite.New(cfg.Library.Path, sqlite.WithLogger(logger))
	}
	if err := st.Init(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return st, nil
}

func cmdTranscribe(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("transcribe", flag.ExitOnError)
	title := fs.String("title", "", "book title (defaults to the file name)")
	author := fs.String("author", "", "book author")
	images := fs.Bool("images", true, "extract embedded images")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one PDF path, got %d arguments", fs.NArg())
	}
	path := fs.Arg(0)

	doc, err := pdfdoc.OpenFile(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if *title == "" {
		*title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	book := folio.Book{
		ID:         folio.NewID(),
		Title:      *title,
		Author:     *author,
		TotalPages: doc.NumPages(),
		Status:     folio.StatusProcessing,
		CreatedAt:  folio.NowUnix(),
		UpdatedAt:  folio.NowUnix(),
	}
	if err := st.SaveBook(ctx, book); err != nil {
		return err
	}

	sinkOpts := []blob.Option{blob.WithLogger(logger)}
	if cfg.Blob.BaseURL != "" {
		sinkOpts = append(sinkOpts, blob.WithBaseURL(cfg.Blob.BaseURL))
	}
	sink := blob.NewLocalStore(cfg.Blob.Root, sinkOpts...)

	progress := []func(folio.TranscriptionProgress){func(p folio.TranscriptionProgress) {
		fmt.Fprintf(os.Stderr, "\rpage %d/%d", p.CurrentPage, p.TotalPages)
		if p.Status == folio.StatusCompleted {
			fmt.Fprintln(os.Stderr)
		}
	}}

	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		var shutdown func(context.Context) error
		inst, shutdown, err = observer.Init(ctx)
		if err != nil {
			return fmt.Errorf("init observer: %w", err)
		}
		defer shutdown(context.Background())
		progress = append(progress, inst.PageProgress())
	}

	engine := transcribe.New(sink,
		transcribe.WithImages(*images),
		transcribe.WithLogger(logger),
		transcribe.WithProgress(func(p folio.TranscriptionProgress) {
			for _, fn := range progress {
				fn(p)
			}
		}),
	)

	var runner observer.Transcriber = engine
	if inst != nil {
		runner = observer.WrapTranscriber(engine, inst)
	}

	pages, err := runner.Transcribe(ctx, doc, book.ID)
	if err != nil {
		_ = st.UpdateBookStatus(ctx, book.ID, folio.StatusFailed)
		return err
	}
	if err := st.SavePages(ctx, book.ID, pages); err != nil {
		return err
	}
	if err := st.UpdateBookStatus(ctx, book.ID, folio.StatusCompleted); err != nil {
		return err
	}

	fmt.Printf("%s  %q  %d pages\n", book.ID, book.Title, len(pages))
	return nil
}

func cmdText(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("text", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one PDF path, got %d arguments", fs.NArg())
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	text, err := pdfdoc.ExtractText(ctx, data)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func cmdImport(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one URL, got %d arguments", fs.NArg())
	}

	article, err := webarticle.New(webarticle.WithLogger(logger)).Import(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	book := folio.Book{
		ID:         folio.NewID(),
		Title:      article.Title,
		Author:     article.Byline,
		TotalPages: len(article.Pages),
		Status:     folio.StatusCompleted,
		CreatedAt:  folio.NowUnix(),
		UpdatedAt:  folio.NowUnix(),
	}
	if err := st.SaveBook(ctx, book); err != nil {
		return err
	}
	if err := st.SavePages(ctx, book.ID, article.Pages); err != nil {
		return err
	}

	fmt.Printf("%s  %q  %d pages\n", book.ID, book.Title, len(article.Pages))
	return nil
}

func cmdList(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	books, err := st.ListBooks(ctx)
	if err != nil {
		return err
	}
	for _, b := range books {
		fmt.Printf("%s  %-10s  %4d pages  %q %s\n", b.ID, b.Status, b.TotalPages, b.Title, b.Author)
	}
	return nil
}

func cmdSearch(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	bookID := fs.String("book", "", "restrict the search to one book")
	limit := fs.Int("limit", cfg.Search.Limit, "maximum results")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one query, got %d arguments", fs.NArg())
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	matches, err := st.SearchPages(ctx, *bookID, fs.Arg(0), *limit)
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Printf("%s p.%d  %s\n", m.BookID, m.PageNumber, m.Snippet)
	}
	return nil
}

func cmdWordCount(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("wordcount", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one book ID, got %d arguments", fs.NArg())
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	pages, err := st.GetPages(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Println(transcribe.WordCount(pages))
	return nil
}
