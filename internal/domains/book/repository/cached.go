package repository

import (
	"book-catalog/internal/domains/book/model"
	"book-catalog/pkg/cache"
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	bookISBNKeyPrefix = "book:isbn:"
	bookIDKeyPrefix   = "book:id:"

	// tombstoneTTL is how long a write blocks cache fills of the keys it touched.
	tombstoneTTL = 30 * time.Second
)

// cacheEntry is the value under book:isbn:<isbn>. A nil Book is a tombstone.
type cacheEntry struct {
	Book *model.Book `json:"book"`
}

// cachedRepository puts a read-through cache in front of FindByISBN.
//
// book:isbn:<isbn> holds the book, book:id:<id> holds the isbn last cached for
// that id so a Save that changes the ISBN can drop the old entry.
// Writes replace the ISBN keys with tombstones and fills use SET NX, so a read
// that started before a write cannot put the old book back.
// Cache failures are logged and never returned.
type cachedRepository struct {
	Repository
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedRepository(next Repository, c cache.Cache, ttl time.Duration) Repository {
	return &cachedRepository{Repository: next, cache: c, ttl: ttl}
}

func (r *cachedRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	var entry cacheEntry
	found, err := r.cache.Get(ctx, bookISBNKeyPrefix+isbn, &entry)
	if err != nil {
		log.Warn().Err(err).Str("isbn", isbn).Msg("Book cache read failed")
	}
	if found && entry.Book != nil {
		return entry.Book, nil
	}

	book, err := r.Repository.FindByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, book)
	return book, nil
}

// FindByISBNForUpdate skips the cache.
func (r *cachedRepository) FindByISBNForUpdate(ctx context.Context, isbn string) (*model.Book, error) {
	return r.Repository.FindByISBNForUpdate(ctx, isbn)
}

func (r *cachedRepository) Save(ctx context.Context, book *model.Book) (*model.Book, error) {
	keys := []string{bookISBNKeyPrefix + book.ISBN}
	if book.ID != "" {
		keys = append(keys, r.previousISBNKey(ctx, book.ID)...)
	}

	r.tombstone(ctx, keys...)
	saved, err := r.Repository.Save(ctx, book)
	// Again after the write: a fill may have landed between the two.
	r.tombstone(ctx, keys...)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *cachedRepository) Delete(ctx context.Context, book *model.Book) error {
	keys := append([]string{bookISBNKeyPrefix + book.ISBN}, r.previousISBNKey(ctx, book.ID)...)

	r.tombstone(ctx, keys...)
	err := r.Repository.Delete(ctx, book)
	r.tombstone(ctx, keys...)
	if derr := r.cache.Delete(ctx, bookIDKeyPrefix+book.ID); derr != nil {
		log.Warn().Err(derr).Str("id", book.ID).Msg("Book cache invalidation failed")
	}
	return err
}

func (r *cachedRepository) fill(ctx context.Context, book *model.Book) {
	stored, err := r.cache.SetNX(ctx, bookISBNKeyPrefix+book.ISBN, cacheEntry{Book: book}, r.ttl)
	if err != nil {
		log.Warn().Err(err).Str("isbn", book.ISBN).Msg("Book cache write failed")
		return
	}
	if !stored {
		return
	}
	// Outlive the book entry so the ISBN can still be found on invalidation.
	if err := r.cache.Set(ctx, bookIDKeyPrefix+book.ID, book.ISBN, r.ttl+time.Minute); err != nil {
		log.Warn().Err(err).Str("id", book.ID).Msg("Book cache write failed")
	}
}

func (r *cachedRepository) previousISBNKey(ctx context.Context, id string) []string {
	var isbn string
	found, err := r.cache.Get(ctx, bookIDKeyPrefix+id, &isbn)
	if err != nil {
		log.Warn().Err(err).Str("id", id).Msg("Book cache read failed")
	}
	if !found || isbn == "" {
		return nil
	}
	return []string{bookISBNKeyPrefix + isbn}
}

func (r *cachedRepository) tombstone(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := r.cache.Set(ctx, key, cacheEntry{}, tombstoneTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Book cache invalidation failed")
		}
	}
}
