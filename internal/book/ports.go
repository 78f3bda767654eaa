package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
// Create must return ErrDuplicateISBN when the ISBN is already stored.
type Repository interface {
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	List(ctx context.Context) ([]Book, error)
	Create(ctx context.Context, nb NewBook) (Book, error)
	Ping(ctx context.Context) error
}
