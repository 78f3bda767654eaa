package book

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"libraryapi/internal/metrics"
)

// Service provides book-related business logic.
type Service struct {
	repo    Repository
	log     *zap.Logger
	metrics metrics.Recorder
}

// NewService creates a new book service.
func NewService(repo Repository, log *zap.Logger, rec metrics.Recorder) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{repo: repo, log: log, metrics: rec}
}

// GetByISBN returns the book stored under isbn.
// It fails with ErrInvalidISBN before touching the store and with ErrNotFound on a miss.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	if !ValidateISBN(isbn) {
		return Book{}, ErrInvalidISBN
	}
	return s.repo.GetByISBN(ctx, isbn)
}

// List returns every stored book in the store's native order.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Add stores nb unless a book with the same ISBN exists.
// A duplicate is not an error: it yields AlreadyExists, including when a concurrent
// insert wins the race between the lookup and the store's unique constraint.
func (s *Service) Add(ctx context.Context, nb NewBook) (AddResult, error) {
	if !ValidateISBN(nb.ISBN) {
		return 0, ErrInvalidISBN
	}

	_, err := s.repo.GetByISBN(ctx, nb.ISBN)
	switch {
	case err == nil:
		s.metrics.RecordDuplicateISBN()
		return AlreadyExists, nil
	case !errors.Is(err, ErrNotFound):
		return 0, fmt.Errorf("check existing isbn: %w", err)
	}

	created, err := s.repo.Create(ctx, nb)
	if err != nil {
		if errors.Is(err, ErrDuplicateISBN) {
			s.metrics.RecordDuplicateISBN()
			return AlreadyExists, nil
		}
		return 0, fmt.Errorf("create book: %w", err)
	}

	s.metrics.RecordBookCreated()
	s.log.Info("book saved", zap.Int64("id", created.ID), zap.String("isbn", created.ISBN))
	return Created, nil
}

// Ping checks that the underlying store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
