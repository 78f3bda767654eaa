package book

import (
	"errors"
)

var (
	// ErrNotFound is returned when no book has the requested ISBN.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicateISBN is returned by a Repository when the ISBN is already stored.
	ErrDuplicateISBN = errors.New("book with the same isbn already exists")
	// ErrInvalidISBN is returned when an ISBN fails ValidateISBN.
	ErrInvalidISBN = errors.New("invalid isbn format")
)

// Book represents a catalog record.
// Status is an opaque flag that defaults to true and is never changed by the API.
type Book struct {
	ID       int64   `json:"id"`
	ISBN     string  `json:"isbn"`
	Author   string  `json:"author"`
	Title    string  `json:"title"`
	Summary  *string `json:"summary"`
	CoverURL *string `json:"cover_url"`
	Status   bool    `json:"status"`
}

// NewBook is the input for Repository.Create. ID and Status are assigned by the store.
type NewBook struct {
	ISBN     string
	Title    string
	Author   string
	Summary  *string
	CoverURL *string
}

// AddBookRequest is the body of POST /books. Only isbn is mandatory.
type AddBookRequest struct {
	ISBN     *string `json:"isbn" validate:"required,isbn13"`
	Title    *string `json:"title"`
	Author   *string `json:"author"`
	Summary  *string `json:"summary"`
	CoverURL *string `json:"cover_url"`
}

// ToNewBook converts the request into store input. Missing title and author become "".
func (r AddBookRequest) ToNewBook() NewBook {
	nb := NewBook{
		Summary:  r.Summary,
		CoverURL: r.CoverURL,
	}
	if r.ISBN != nil {
		nb.ISBN = *r.ISBN
	}
	if r.Title != nil {
		nb.Title = *r.Title
	}
	if r.Author != nil {
		nb.Author = *r.Author
	}
	return nb
}

// AddResult tells whether Service.Add stored a new record.
type AddResult int

const (
	// Created means a new record was persisted.
	Created AddResult = iota
	// AlreadyExists means a record with the ISBN was already stored; nothing changed.
	AlreadyExists
)
