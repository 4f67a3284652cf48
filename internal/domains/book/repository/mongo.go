package repository

import (
	"book-catalog/internal/domains/book/model"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	BookName string             `bson:"book_name"`
	Price    float64            `bson:"price"`
	ISBN     string             `bson:"isbn"`
	Rating   float64            `bson:"rating"`
	Quantity int                `bson:"quantity"`
	Author   authorDocument     `bson:"author"`
}

type authorDocument struct {
	AuthorName string `bson:"author_name"`
	Country    string `bson:"country,omitempty"`
}

func (d *bookDocument) toModel() *model.Book {
	return &model.Book{
		ID:       d.ID.Hex(),
		BookName: d.BookName,
		Price:    d.Price,
		ISBN:     d.ISBN,
		Rating:   d.Rating,
		Quantity: d.Quantity,
		Author: model.Author{
			AuthorName: d.Author.AuthorName,
			Country:    d.Author.Country,
		},
	}
}

func documentFromModel(b *model.Book, id primitive.ObjectID) bookDocument {
	return bookDocument{
		ID:       id,
		BookName: b.BookName,
		Price:    b.Price,
		ISBN:     b.ISBN,
		Rating:   b.Rating,
		Quantity: b.Quantity,
		Author: authorDocument{
			AuthorName: b.Author.AuthorName,
			Country:    b.Author.Country,
		},
	}
}

// mongoRepository - the document store backend
type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) Repository {
	return &mongoRepository{coll: coll}
}

// EnsureIndexes creates the unique indexes on book_name and isbn and the
// author lookup index. Safe to call on every start.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "book_name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isbn", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "author.author_name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create book indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	return r.findOne(ctx, bson.M{"isbn": isbn})
}

func (r *mongoRepository) FindByISBNForUpdate(ctx context.Context, isbn string) (*model.Book, error) {
	return r.FindByISBN(ctx, isbn)
}

func (r *mongoRepository) FindByBookName(ctx context.Context, bookName string) (*model.Book, error) {
	return r.findOne(ctx, bson.M{"book_name": bookName})
}

func (r *mongoRepository) FindByAuthorName(ctx context.Context, authorName string) ([]model.Book, error) {
	cur, err := r.coll.Find(ctx, bson.M{"author.author_name": authorName},
		options.Find().SetSort(bson.D{{Key: "book_name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query books by author: %w", err)
	}
	defer cur.Close(ctx)

	var docs []bookDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	books := make([]model.Book, 0, len(docs))
	for i := range docs {
		books = append(books, *docs[i].toModel())
	}
	return books, nil
}

func (r *mongoRepository) Save(ctx context.Context, book *model.Book) (*model.Book, error) {
	var (
		id  primitive.ObjectID
		err error
	)

	if book.ID == "" {
		id = primitive.NewObjectID()
		_, err = r.coll.InsertOne(ctx, documentFromModel(book, id))
	} else {
		id, err = primitive.ObjectIDFromHex(book.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid book id %q: %w", book.ID, err)
		}
		_, err = r.coll.ReplaceOne(ctx, bson.M{"_id": id}, documentFromModel(book, id),
			options.Replace().SetUpsert(true))
	}

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, model.NewConflict(duplicateDetail(mongoIndexName(err.Error())), err)
		}
		return nil, fmt.Errorf("failed to save book: %w", err)
	}

	saved := *book
	saved.ID = id.Hex()
	return &saved, nil
}

func (r *mongoRepository) Delete(ctx context.Context, book *model.Book) error {
	id, err := primitive.ObjectIDFromHex(book.ID)
	if err != nil {
		return fmt.Errorf("invalid book id %q: %w", book.ID, err)
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

func (r *mongoRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*model.Book, error) {
	var doc bookDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	return doc.toModel(), nil
}

// mongoIndexName returns "isbn_1" from "E11000 duplicate key error collection: catalog.books index: isbn_1 dup key: ...".
func mongoIndexName(msg string) string {
	_, rest, ok := strings.Cut(msg, "index: ")
	if !ok {
		return msg
	}
	name, _, _ := strings.Cut(rest, " ")
	return name
}
