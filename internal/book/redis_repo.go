package book

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	redisBooksHash = "library:books"
	redisIDCounter = "library:books:next_id"
)

// RedisRepo keeps every book as a JSON value in one hash, field = ISBN.
type RedisRepo struct {
	client *redis.Client
}

func NewRedisRepo(client *redis.Client) *RedisRepo {
	return &RedisRepo{client: client}
}

func (r *RedisRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	raw, err := r.client.HGet(ctx, redisBooksHash, isbn).Result()
	if err == redis.Nil {
		return Book{}, ErrNotFound
	}
	if err != nil {
		return Book{}, err
	}
	var b Book
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return Book{}, fmt.Errorf("decode book %s: %w", isbn, err)
	}
	return b, nil
}

// List returns books ordered by id. Hash iteration order is not stable in redis.
func (r *RedisRepo) List(ctx context.Context) ([]Book, error) {
	values, err := r.client.HVals(ctx, redisBooksHash).Result()
	if err != nil {
		return nil, err
	}
	books := make([]Book, 0, len(values))
	for _, raw := range values {
		var b Book
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

// Create relies on HSETNX for uniqueness. An id consumed by a losing insert is not reused.
func (r *RedisRepo) Create(ctx context.Context, nb NewBook) (Book, error) {
	id, err := r.client.Incr(ctx, redisIDCounter).Result()
	if err != nil {
		return Book{}, fmt.Errorf("allocate id: %w", err)
	}
	b := Book{
		ID:       id,
		ISBN:     nb.ISBN,
		Title:    nb.Title,
		Author:   nb.Author,
		Summary:  nb.Summary,
		CoverURL: nb.CoverURL,
		Status:   true,
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return Book{}, err
	}
	ok, err := r.client.HSetNX(ctx, redisBooksHash, nb.ISBN, raw).Result()
	if err != nil {
		return Book{}, err
	}
	if !ok {
		return Book{}, ErrDuplicateISBN
	}
	return b, nil
}

func (r *RedisRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
