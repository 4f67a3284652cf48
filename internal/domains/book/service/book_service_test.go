package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/domains/book/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	duneISBN    = "9780441013593"
	messiahISBN = "9780451524935"
)

func setupTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repository.AutoMigrate(db))
	return db
}

func newTestService(t testing.TB) ServiceInterface {
	return NewService(repository.NewGormRepository(setupTestDB(t)))
}

func duneRequest() model.CreateBookRequest {
	return model.CreateBookRequest{
		BookName: "Dune",
		Price:    9.99,
		ISBN:     duneISBN,
		Quantity: 5,
		Author:   &model.Author{AuthorName: "Frank Herbert", Country: "USA"},
	}
}

func requireKind(t *testing.T, err error, kind model.ErrorKind) *model.BookError {
	t.Helper()
	require.Error(t, err)
	var be *model.BookError
	require.ErrorAs(t, err, &be)
	require.Equal(t, kind, be.Kind, "got %v", err)
	return be
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	req := duneRequest()
	created, err := svc.CreateBook(ctx, req)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 0.0, created.Rating)
	assert.Equal(t, 5, created.Quantity)
	assert.Equal(t, "Frank Herbert", created.Author.AuthorName)

	got, err := svc.GetByISBN(ctx, duneISBN)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreateBook_Invalid(t *testing.T) {
	svc := newTestService(t)

	req := duneRequest()
	req.Price = 0
	req.ISBN = "123"
	be := requireKind(t, mustErr(svc.CreateBook(context.Background(), req)), model.KindValidation)
	assert.Equal(t, []string{model.MsgISBNInvalid, model.MsgPricePositive}, be.Messages)
}

func TestCreateBook_Duplicates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateBook(ctx, duneRequest())
	require.NoError(t, err)

	be := requireKind(t, mustErr(svc.CreateBook(ctx, duneRequest())), model.KindConflict)
	assert.NotEmpty(t, be.Detail)

	sameName := duneRequest()
	sameName.ISBN = messiahISBN
	requireKind(t, mustErr(svc.CreateBook(ctx, sameName)), model.KindConflict)
}

func TestCreateBook_HyphenatedISBNIsSameBook(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateBook(ctx, duneRequest())
	require.NoError(t, err)

	hyphenated := duneRequest()
	hyphenated.BookName = "Dune (Reprint)"
	hyphenated.ISBN = "978-0-441-01359-3"
	be := requireKind(t, mustErr(svc.CreateBook(ctx, hyphenated)), model.KindConflict)
	assert.Equal(t, repository.DuplicateISBN, be.Detail)

	got, err := svc.GetByISBN(ctx, "978 0 441 01359 3")
	require.NoError(t, err)
	assert.Equal(t, duneISBN, got.ISBN)
}

// staleCache answers every book lookup with a fixed outdated copy.
type staleCache struct{ book model.Book }

func (c staleCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	if !strings.HasPrefix(key, "book:isbn:") {
		return false, nil
	}
	raw, err := json.Marshal(map[string]interface{}{"book": c.book})
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dest)
}
func (staleCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (staleCache) SetNX(context.Context, string, interface{}, time.Duration) (bool, error) {
	return false, nil
}
func (staleCache) Delete(context.Context, ...string) error { return nil }
func (staleCache) Ping(context.Context) error              { return nil }

func TestUpdates_StartFromStoreNotCache(t *testing.T) {
	ctx := context.Background()
	store := repository.NewGormRepository(setupTestDB(t))

	created, err := NewService(store).CreateBook(ctx, duneRequest())
	require.NoError(t, err)

	stale := model.Book{ID: created.ID, BookName: "Dune", Price: 9.99, ISBN: duneISBN, Quantity: 1,
		Author: model.Author{AuthorName: "Frank Herbert"}}
	svc := NewService(repository.NewCachedRepository(store, staleCache{book: stale}, time.Minute))

	cached, err := svc.GetByISBN(ctx, duneISBN)
	require.NoError(t, err)
	require.Equal(t, 1, cached.Quantity, "reads are served from the cache")

	updated, err := svc.UpdateQuantity(ctx, 1, duneISBN)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Quantity)

	rated, err := svc.UpdateRating(ctx, 4, duneISBN)
	require.NoError(t, err)
	assert.Equal(t, 6, rated.Quantity)
	assert.Equal(t, 2.0, rated.Rating)
}

func TestLookups(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateBook(ctx, duneRequest())
	require.NoError(t, err)

	byName, err := svc.GetByBookName(ctx, "Dune")
	require.NoError(t, err)
	assert.Equal(t, duneISBN, byName.ISBN)

	byAuthor, err := svc.GetByAuthorName(ctx, "Frank Herbert")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)

	be := requireKind(t, mustErr(svc.GetByBookName(ctx, "Missing")), model.KindNotFound)
	assert.Equal(t, FieldBookName, be.Field)
	assert.Equal(t, "Missing", be.Key)

	_, err = svc.GetByAuthorName(ctx, "Nobody")
	be = requireKind(t, err, model.KindNotFound)
	assert.Equal(t, FieldAuthorName, be.Field)

	be = requireKind(t, mustErr(svc.GetByISBN(ctx, "0000000000")), model.KindNotFound)
	assert.Equal(t, FieldISBN, be.Field)
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateBook(ctx, duneRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(ctx, duneISBN))
	requireKind(t, mustErr(svc.GetByISBN(ctx, duneISBN)), model.KindNotFound)

	// Second delete has nothing to remove.
	requireKind(t, svc.DeleteBook(ctx, duneISBN), model.KindNotFound)
}

func TestStoreFailuresAreInternal(t *testing.T) {
	ctx := context.Background()
	svc := NewService(failingRepository{err: errors.New("connection refused")})

	_, err := svc.GetByISBN(ctx, duneISBN)
	require.Error(t, err)
	assert.False(t, model.IsKind(err, model.KindNotFound))
	status, entries := model.Classify(err)
	assert.Equal(t, 500, status)
	assert.Contains(t, entries[0].MoreInfo, "connection refused")

	_, err = svc.GetByAuthorName(ctx, "Frank Herbert")
	status, _ = model.Classify(err)
	assert.Equal(t, 500, status)

	assert.Error(t, svc.Health(ctx))
}

// failingRepository fails every call with err.
type failingRepository struct{ err error }

func (r failingRepository) FindByISBN(context.Context, string) (*model.Book, error) {
	return nil, r.err
}
func (r failingRepository) FindByISBNForUpdate(context.Context, string) (*model.Book, error) {
	return nil, r.err
}
func (r failingRepository) FindByBookName(context.Context, string) (*model.Book, error) {
	return nil, r.err
}
func (r failingRepository) FindByAuthorName(context.Context, string) ([]model.Book, error) {
	return nil, r.err
}
func (r failingRepository) Save(context.Context, *model.Book) (*model.Book, error) {
	return nil, r.err
}
func (r failingRepository) Delete(context.Context, *model.Book) error { return r.err }
func (r failingRepository) Ping(context.Context) error               { return r.err }

// mustErr drops the result of a (value, error) call.
func mustErr(_ interface{}, err error) error { return err }
