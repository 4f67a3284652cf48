package repository

import (
	"book-catalog/internal/domains/book/model"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// BookRecord is the relational row used by the GORM backend.
type BookRecord struct {
	ID            string  `gorm:"primaryKey;size:36"`
	BookName      string  `gorm:"uniqueIndex;not null"`
	ISBN          string  `gorm:"column:isbn;uniqueIndex;not null"`
	Price         float64 `gorm:"not null"`
	Rating        float64 `gorm:"not null;default:0"`
	Quantity      int     `gorm:"not null;default:0"`
	AuthorName    string  `gorm:"index;not null"`
	AuthorCountry string
}

func (BookRecord) TableName() string { return "books" }

func recordFromModel(b *model.Book) BookRecord {
	return BookRecord{
		ID:            b.ID,
		BookName:      b.BookName,
		ISBN:          b.ISBN,
		Price:         b.Price,
		Rating:        b.Rating,
		Quantity:      b.Quantity,
		AuthorName:    b.Author.AuthorName,
		AuthorCountry: b.Author.Country,
	}
}

func (r *BookRecord) toModel() *model.Book {
	return &model.Book{
		ID:       r.ID,
		BookName: r.BookName,
		Price:    r.Price,
		ISBN:     r.ISBN,
		Rating:   r.Rating,
		Quantity: r.Quantity,
		Author: model.Author{
			AuthorName: r.AuthorName,
			Country:    r.AuthorCountry,
		},
	}
}

// gormRepository - embedded SQLite (or PostgreSQL through GORM)
type gormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// AutoMigrate creates or updates the books table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&BookRecord{}); err != nil {
		return fmt.Errorf("books migration failed: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	return r.findOne(ctx, "isbn = ?", isbn)
}

func (r *gormRepository) FindByISBNForUpdate(ctx context.Context, isbn string) (*model.Book, error) {
	return r.FindByISBN(ctx, isbn)
}

func (r *gormRepository) FindByBookName(ctx context.Context, bookName string) (*model.Book, error) {
	return r.findOne(ctx, "book_name = ?", bookName)
}

func (r *gormRepository) FindByAuthorName(ctx context.Context, authorName string) ([]model.Book, error) {
	var records []BookRecord
	err := r.db.WithContext(ctx).
		Where("author_name = ?", authorName).
		Order("book_name").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query books by author: %w", err)
	}

	books := make([]model.Book, 0, len(records))
	for i := range records {
		books = append(books, *records[i].toModel())
	}
	return books, nil
}

func (r *gormRepository) Save(ctx context.Context, book *model.Book) (*model.Book, error) {
	rec := recordFromModel(book)

	var err error
	if rec.ID == "" {
		rec.ID = uuid.NewString()
		err = r.db.WithContext(ctx).Create(&rec).Error
	} else {
		// Save issues an UPDATE of every column and falls back to INSERT when no row matched.
		err = r.db.WithContext(ctx).Save(&rec).Error
	}

	if err != nil {
		if detail, ok := gormConflict(err); ok {
			return nil, model.NewConflict(detail, err)
		}
		return nil, fmt.Errorf("failed to save book: %w", err)
	}

	return rec.toModel(), nil
}

func (r *gormRepository) Delete(ctx context.Context, book *model.Book) error {
	if err := r.db.WithContext(ctx).Delete(&BookRecord{}, "id = ?", book.ID).Error; err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *gormRepository) findOne(ctx context.Context, cond string, arg string) (*model.Book, error) {
	var rec BookRecord
	err := r.db.WithContext(ctx).Where(cond, arg).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	return rec.toModel(), nil
}

// gormConflict recognises unique violations from either dialect.
// SQLite reports "UNIQUE constraint failed: books.isbn", PostgreSQL a 23505 PgError.
func gormConflict(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return duplicateDetail(pgErr.ConstraintName), true
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return duplicateDetail(sqliteColumn(err.Error())), true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return DuplicateBook, true
	}
	return "", false
}

// sqliteColumn returns "books.isbn" from "UNIQUE constraint failed: books.isbn".
func sqliteColumn(msg string) string {
	_, col, _ := strings.Cut(msg, "UNIQUE constraint failed:")
	return strings.TrimSpace(col)
}
