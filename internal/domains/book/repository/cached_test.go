package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"book-catalog/internal/domains/book/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is a JSON round-tripping cache.Cache for tests.
type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failGet {
		return false, errors.New("cache down")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memoryCache) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = raw
	return true, nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// hasBook reports whether key holds a cached book rather than a tombstone.
func (m *memoryCache) hasBook(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false
	}
	var entry cacheEntry
	return json.Unmarshal(raw, &entry) == nil && entry.Book != nil
}

// countingRepository counts FindByISBN calls that reach the store.
type countingRepository struct {
	Repository
	finds int
}

func (r *countingRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	r.finds++
	return r.Repository.FindByISBN(ctx, isbn)
}

func newCachedFixture(t *testing.T) (Repository, *countingRepository, *memoryCache) {
	store := &countingRepository{Repository: NewGormRepository(setupTestDB(t))}
	c := newMemoryCache()
	return NewCachedRepository(store, c, time.Minute), store, c
}

func TestCachedRepository_ReadThrough(t *testing.T) {
	ctx := context.Background()
	repo, store, c := newCachedFixture(t)

	saved, err := store.Repository.Save(ctx, newBook("Dune", "9780441013593", "Frank Herbert"))
	require.NoError(t, err)

	first, err := repo.FindByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	second, err := repo.FindByISBN(ctx, "9780441013593")
	require.NoError(t, err)

	assert.Equal(t, 1, store.finds)
	assert.Equal(t, first, second)
	assert.Equal(t, saved.ID, second.ID)
	assert.True(t, c.has(bookIDKeyPrefix+saved.ID))
}

func TestCachedRepository_WriteBlocksFill(t *testing.T) {
	ctx := context.Background()
	repo, store, c := newCachedFixture(t)

	_, err := repo.Save(ctx, newBook("Dune", "9780441013593", "Frank Herbert"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := repo.FindByISBN(ctx, "9780441013593")
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.BookName)
	}
	assert.Equal(t, 2, store.finds, "reads go to the store while the tombstone lives")
	assert.False(t, c.hasBook(bookISBNKeyPrefix+"9780441013593"))
}

func TestCachedRepository_MissesAreNotCached(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := newCachedFixture(t)

	_, err := repo.FindByISBN(ctx, "9780441013593")
	assert.ErrorIs(t, err, ErrBookNotFound)
	_, err = repo.FindByISBN(ctx, "9780441013593")
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.Equal(t, 2, store.finds)
}

func TestCachedRepository_SaveInvalidatesOldAndNewISBN(t *testing.T) {
	ctx := context.Background()
	repo, store, c := newCachedFixture(t)

	saved, err := store.Repository.Save(ctx, newBook("Dune", "9780441013593", "Frank Herbert"))
	require.NoError(t, err)
	_, err = repo.FindByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	require.True(t, c.hasBook(bookISBNKeyPrefix+"9780441013593"))

	saved.ISBN = "9780451524935"
	_, err = repo.Save(ctx, saved)
	require.NoError(t, err)

	assert.False(t, c.hasBook(bookISBNKeyPrefix+"9780441013593"))

	_, err = repo.FindByISBN(ctx, "9780441013593")
	assert.ErrorIs(t, err, ErrBookNotFound, "stale entry must not be served")

	got, err := repo.FindByISBN(ctx, "9780451524935")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}

func TestCachedRepository_UpdateIsVisible(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newCachedFixture(t)

	saved, err := repo.Save(ctx, newBook("Dune", "9780441013593", "Frank Herbert"))
	require.NoError(t, err)
	_, err = repo.FindByISBN(ctx, "9780441013593")
	require.NoError(t, err)

	saved.Quantity = 42
	_, err = repo.Save(ctx, saved)
	require.NoError(t, err)

	got, err := repo.FindByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	assert.Equal(t, 42, got.Quantity)
}

func TestCachedRepository_DeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	repo, _, c := newCachedFixture(t)

	saved, err := repo.Save(ctx, newBook("Dune", "9780441013593", "Frank Herbert"))
	require.NoError(t, err)
	found, err := repo.FindByISBN(ctx, "9780441013593")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, found))
	assert.False(t, c.hasBook(bookISBNKeyPrefix+"9780441013593"))
	assert.False(t, c.has(bookIDKeyPrefix+saved.ID))

	_, err = repo.FindByISBN(ctx, "9780441013593")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestCachedRepository_CacheFailureFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	repo, store, c := newCachedFixture(t)

	_, err := repo.Save(ctx, newBook("Dune", "9780441013593", "Frank Herbert"))
	require.NoError(t, err)

	c.failGet = true
	got, err := repo.FindByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.BookName)
	assert.Equal(t, 1, store.finds)
}

// slowRepository parks the first FindByISBN after it has read the store.
type slowRepository struct {
	Repository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (r *slowRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	book, err := r.Repository.FindByISBN(ctx, isbn)
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return book, err
}

func TestCachedRepository_FillAfterWriteDoesNotRestoreOldBook(t *testing.T) {
	ctx := context.Background()
	slow := &slowRepository{
		Repository: NewGormRepository(setupTestDB(t)),
		read:       make(chan struct{}),
		release:    make(chan struct{}),
	}
	c := newMemoryCache()
	repo := NewCachedRepository(slow, c, time.Minute)

	book := newBook("Dune", "9780441013593", "Frank Herbert")
	book.Quantity = 1
	saved, err := slow.Repository.Save(ctx, book)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = repo.FindByISBN(ctx, "9780441013593")
	}()

	<-slow.read
	saved.Quantity = 4
	_, err = repo.Save(ctx, saved)
	require.NoError(t, err)
	close(slow.release)
	<-done

	assert.False(t, c.hasBook(bookISBNKeyPrefix+"9780441013593"))

	got, err := repo.FindByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
}

func TestCachedRepository_FindForUpdateSkipsCache(t *testing.T) {
	ctx := context.Background()
	repo, store, c := newCachedFixture(t)

	saved, err := repo.Save(ctx, newBook("Dune", "9780441013593", "Frank Herbert"))
	require.NoError(t, err)

	stale := *saved
	stale.Quantity = -100
	c.data[bookISBNKeyPrefix+"9780441013593"], err = json.Marshal(cacheEntry{Book: &stale})
	require.NoError(t, err)

	got, err := repo.FindByISBNForUpdate(ctx, "9780441013593")
	require.NoError(t, err)
	assert.Equal(t, saved.Quantity, got.Quantity)

	cached, err := repo.FindByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	assert.Equal(t, -100, cached.Quantity)
	assert.Zero(t, store.finds)
}
