// Package ingest imports books by ISBN from Open Library into the catalog.
package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"libraryapi/internal/book"
	"libraryapi/internal/platform/openlibrary"
)

type Config struct {
	BatchSize int
}

type OpenLibraryClient interface {
	GetBooksByISBN(ctx context.Context, isbns []string) (map[string]openlibrary.BookDetails, error)
}

// BookAdder applies the same validation and duplicate rules as POST /books.
type BookAdder interface {
	Add(ctx context.Context, nb book.NewBook) (book.AddResult, error)
}

type Service struct {
	olClient OpenLibraryClient
	books    BookAdder
	log      *zap.Logger
	cfg      Config
}

func NewService(olClient OpenLibraryClient, books BookAdder, log *zap.Logger, cfg Config) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	return &Service{
		olClient: olClient,
		books:    books,
		log:      log,
		cfg:      cfg,
	}
}

// Run imports isbns in batches. Per-book failures are counted and logged;
// a failed Open Library fetch or a cancelled ctx aborts the run.
func (s *Service) Run(ctx context.Context, isbns []string) (run *Run, err error) {
	run = &Run{
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}

	defer func() {
		run.FinishedAt = time.Now()
		if err != nil {
			run.Status = StatusFailed
			run.Error = err.Error()
		} else {
			run.Status = StatusCompleted
		}
		s.log.Info("import finished",
			zap.String("status", run.Status),
			zap.Int("requested", run.Requested),
			zap.Int("created", run.Created),
			zap.Int("existing", run.Existing),
			zap.Int("invalid", run.Invalid),
			zap.Int("not_found", run.NotFound),
			zap.Int("failed", run.Failed),
			zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)),
		)
	}()

	seen := make(map[string]bool, len(isbns))
	var batch []string
	for _, isbn := range isbns {
		if seen[isbn] {
			continue
		}
		seen[isbn] = true
		run.Requested++

		if !book.ValidateISBN(isbn) {
			run.Invalid++
			s.log.Warn("skipping invalid isbn", zap.String("isbn", isbn))
			continue
		}

		batch = append(batch, isbn)
		if len(batch) >= s.cfg.BatchSize {
			if err := s.importBatch(ctx, run, batch); err != nil {
				return run, err
			}
			batch = nil
		}
	}
	if len(batch) > 0 {
		if err := s.importBatch(ctx, run, batch); err != nil {
			return run, err
		}
	}
	return run, nil
}

func (s *Service) importBatch(ctx context.Context, run *Run, isbns []string) error {
	details, err := s.olClient.GetBooksByISBN(ctx, isbns)
	if err != nil {
		return err
	}

	for _, isbn := range isbns {
		d, ok := details[isbn]
		if !ok {
			run.NotFound++
			s.log.Info("isbn unknown to open library", zap.String("isbn", isbn))
			continue
		}
		run.Fetched++

		result, err := s.books.Add(ctx, toNewBook(isbn, d))
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			run.Failed++
			s.log.Error("import book failed", zap.String("isbn", isbn), zap.Error(err))
		case result == book.AlreadyExists:
			run.Existing++
		default:
			run.Created++
		}
	}
	return nil
}

func toNewBook(isbn string, d openlibrary.BookDetails) book.NewBook {
	nb := book.NewBook{
		ISBN:   isbn,
		Title:  d.Title,
		Author: d.AuthorNames(),
	}
	summary := d.Notes
	if summary == "" {
		summary = d.Subtitle
	}
	if summary != "" {
		nb.Summary = &summary
	}
	if cover := d.CoverURL(); cover != "" {
		nb.CoverURL = &cover
	}
	return nb
}
