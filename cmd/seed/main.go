package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/ingest"
	"libraryapi/internal/logger"
	"libraryapi/internal/platform/openlibrary"
	"libraryapi/internal/store"
)

const userAgent = "libraryapi-seed/1.0"

func main() {
	var (
		isbnList  = flag.String("isbns", "", "Comma separated ISBNs to import")
		isbnFile  = flag.String("file", "", "File with one ISBN per line ('-' for stdin)")
		batchSize = flag.Int("batch", 20, "ISBNs per Open Library request")
	)
	flag.Parse()

	if err := run(*isbnList, *isbnFile, *batchSize); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(isbnList, isbnFile string, batchSize int) error {
	isbns := splitISBNs(isbnList)
	if isbnFile != "" {
		fromFile, err := readISBNFile(isbnFile)
		if err != nil {
			return err
		}
		isbns = append(isbns, fromFile...)
	}
	if len(isbns) == 0 {
		return fmt.Errorf("no ISBNs given: use -isbns or -file")
	}

	cfg, err := config.LoadWithoutSecret()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{Production: cfg.IsProduction(), Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	olClient := openlibrary.NewClient(userAgent, cfg.OpenLibraryRPS, cfg.OpenLibraryRetries)
	importer := ingest.NewService(olClient, book.NewService(repo, log, nil), log, ingest.Config{BatchSize: batchSize})

	result, err := importer.Run(ctx, isbns)
	if err != nil {
		log.Error("import aborted", zap.Error(err))
		return err
	}
	fmt.Printf("requested=%d created=%d existing=%d invalid=%d not_found=%d failed=%d\n",
		result.Requested, result.Created, result.Existing, result.Invalid, result.NotFound, result.Failed)
	return nil
}

func splitISBNs(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if isbn := strings.TrimSpace(part); isbn != "" {
			out = append(out, isbn)
		}
	}
	return out
}

func readISBNFile(path string) ([]string, error) {
	if path == "-" {
		return readISBNs(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open isbn file: %w", err)
	}
	defer f.Close()
	return readISBNs(f)
}

// readISBNs returns one ISBN per non-empty line. Lines starting with # are comments.
func readISBNs(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read isbns: %w", err)
	}
	return out, nil
}
