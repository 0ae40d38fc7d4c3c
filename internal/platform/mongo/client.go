// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mongo provides a managed MongoDB client for the document store driver.

It mirrors the postgres package: connect with a bounded timeout, ping before
returning, and log the outcome. Index creation for the todoapi collections
lives here too so that both repositories can assume their constraints exist.
*/
package mongo

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	CollectionUsers = "users"
	CollectionTodos = "todos"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 2 * time.Second
	maxPoolSize    = 10
)

// Connect opens a client for uri and verifies the primary is reachable.
//
// # Parameters
//   - context: Context for the initial connection attempt.
//   - uri: A mongodb:// or mongodb+srv:// connection string.
//   - logger: Structured logger for connection events.
func Connect(context stdctx.Context, uri string, logger *slog.Logger) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(maxPoolSize).
		SetConnectTimeout(connectTimeout)

	connectCtx, cancel := stdctx.WithTimeout(context, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo: failed to connect: %w", err)
	}

	if err := Ping(context, client); err != nil {
		_ = client.Disconnect(stdctx.Background())
		return nil, err
	}

	logger.Info("mongo client connected", slog.Uint64("max_pool_size", maxPoolSize))
	return client, nil
}

// Ping verifies that the primary node answers.
func Ping(context stdctx.Context, client *mongo.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: ping failed: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
//
// users.email is unique so concurrent registrations surface as duplicate-key
// errors; todos.creator serves the per-owner listing.
func EnsureIndexes(context stdctx.Context, database *mongo.Database) error {
	_, err := database.Collection(CollectionUsers).Indexes().CreateOne(context, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("mongo: create users index: %w", err)
	}

	_, err = database.Collection(CollectionTodos).Indexes().CreateOne(context, mongo.IndexModel{
		Keys:    bson.D{{Key: "creator", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("todos_creator_createdat"),
	})
	if err != nil {
		return fmt.Errorf("mongo: create todos index: %w", err)
	}

	return nil
}
