package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDB owns the client of the document store.
type MongoDB struct {
	Client *mongo.Client
	URI    string
	DBName string
	// Timeout bounds both connect and the initial ping.
	Timeout time.Duration
}

func NewMongoDB(uri, dbName string, timeout time.Duration) *MongoDB {
	return &MongoDB{URI: uri, DBName: dbName, Timeout: timeout}
}

func (m *MongoDB) Connect(ctx context.Context) error {
	log.Info().Str("db", m.DBName).Msg("Connecting to MongoDB")

	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(m.URI).
		SetServerSelectionTimeout(m.Timeout))
	if err != nil {
		return fmt.Errorf("mongo connect failed: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("mongo ping failed: %w", err)
	}

	m.Client = client
	log.Info().Msg("MongoDB connected")
	return nil
}

// Collection returns a handle on name in the configured database.
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.Client.Database(m.DBName).Collection(name)
}

func (m *MongoDB) Close(ctx context.Context) error {
	if m.Client == nil {
		return nil
	}
	err := m.Client.Disconnect(ctx)
	m.Client = nil
	return err
}
