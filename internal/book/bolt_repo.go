package book

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
)

// DefaultBoltBucket holds one JSON-encoded Book per ISBN key.
const DefaultBoltBucket = "books"

// BoltRepo stores books in a single bolt bucket keyed by ISBN.
// Ids come from the bucket sequence, so they increase monotonically.
type BoltRepo struct {
	db     *bolt.DB
	bucket []byte
}

// NewBoltRepo creates the bucket if needed and returns a ready repository.
func NewBoltRepo(db *bolt.DB, bucket string) (*BoltRepo, error) {
	if bucket == "" {
		bucket = DefaultBoltBucket
	}
	err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
			return fmt.Errorf("create %s bucket: %w", bucket, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &BoltRepo{db: db, bucket: []byte(bucket)}, nil
}

func (r *BoltRepo) GetByISBN(_ context.Context, isbn string) (Book, error) {
	var b Book
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(r.bucket).Get([]byte(isbn))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &b)
	})
	if err != nil {
		return Book{}, err
	}
	return b, nil
}

// List walks the bucket cursor, which yields books in ISBN key order.
func (r *BoltRepo) List(_ context.Context) ([]Book, error) {
	books := []Book{}
	err := r.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(r.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var b Book
			if err := json.Unmarshal(v, &b); err != nil {
				return fmt.Errorf("decode book %s: %w", k, err)
			}
			books = append(books, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// Create runs in a single read-write transaction; bolt allows one writer at a time,
// so the existence check and the put cannot interleave with another Create.
func (r *BoltRepo) Create(_ context.Context, nb NewBook) (Book, error) {
	b := Book{
		ISBN:     nb.ISBN,
		Title:    nb.Title,
		Author:   nb.Author,
		Summary:  nb.Summary,
		CoverURL: nb.CoverURL,
		Status:   true,
	}
	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(r.bucket)
		key := []byte(nb.ISBN)
		if bucket.Get(key) != nil {
			return ErrDuplicateISBN
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		b.ID = int64(seq)
		raw, err := json.Marshal(b)
		if err != nil {
			return err
		}
		return bucket.Put(key, raw)
	})
	if err != nil {
		return Book{}, err
	}
	return b, nil
}

func (r *BoltRepo) Ping(_ context.Context) error {
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(r.bucket) == nil {
			return fmt.Errorf("bucket %s missing", r.bucket)
		}
		return nil
	})
}
