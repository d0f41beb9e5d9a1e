package database

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultDatabaseName = "flodiary"

var Client *mongo.Client
var DB *mongo.Database

// Connect establishes the MongoDB connection and pings it. The database
// name is taken from the URI path when present, else "flodiary".
func Connect(mongoURI string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return err
	}

	Client = client
	DB = client.Database(databaseNameFromURI(mongoURI))

	log.Println("✅ Connected to MongoDB")
	return nil
}

// databaseNameFromURI extracts the database name from a connection string of
// the form mongodb://host:port/name?params.
func databaseNameFromURI(uri string) string {
	parts := strings.Split(uri, "/")
	if len(parts) < 4 {
		return defaultDatabaseName
	}
	name := strings.Split(parts[len(parts)-1], "?")[0]
	if name == "" {
		return defaultDatabaseName
	}
	return name
}

// Disconnect closes the MongoDB connection.
func Disconnect() error {
	if Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}
