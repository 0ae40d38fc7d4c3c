// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todos

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taibuivan/todoapi/internal/platform/dberr"
	mongostore "github.com/taibuivan/todoapi/internal/platform/mongo"
)

// todoDocument is the stored shape of a [Todo] in the todos collection.
type todoDocument struct {
	ID          string    `bson:"_id"`
	Text        string    `bson:"text"`
	Completed   bool      `bson:"completed"`
	CompletedAt *int64    `bson:"completedAt"`
	Creator     string    `bson:"creator"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func (document *todoDocument) toTodo() *Todo {
	return &Todo{
		ID:          document.ID,
		Text:        document.Text,
		Completed:   document.Completed,
		CompletedAt: document.CompletedAt,
		Creator:     document.Creator,
		CreatedAt:   document.CreatedAt,
	}
}

// MongoRepository implements [Repository] on a MongoDB collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a [Repository] backed by database's todos collection.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(mongostore.CollectionTodos)}
}

func ownedFilter(id, creator string) bson.M {
	return bson.M{"_id": id, "creator": creator}
}

func (repository *MongoRepository) Create(context context.Context, todo *Todo) error {
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now().UTC()
	}

	_, err := repository.collection.InsertOne(context, todoDocument{
		ID:          todo.ID,
		Text:        todo.Text,
		Completed:   todo.Completed,
		CompletedAt: todo.CompletedAt,
		Creator:     todo.Creator,
		CreatedAt:   todo.CreatedAt,
	})
	return dberr.Wrap(err, "mongo_todo_repo_create_failed")
}

func (repository *MongoRepository) ListByCreator(context context.Context, creator string) ([]*Todo, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := repository.collection.Find(context, bson.M{"creator": creator}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo_todo_repo_list_failed: %w", err)
	}
	defer cursor.Close(context)

	result := make([]*Todo, 0)
	for cursor.Next(context) {
		var document todoDocument
		if err := cursor.Decode(&document); err != nil {
			return nil, fmt.Errorf("mongo_todo_repo_decode_failed: %w", err)
		}
		result = append(result, document.toTodo())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo_todo_repo_cursor_failed: %w", err)
	}
	return result, nil
}

func (repository *MongoRepository) FindOwned(context context.Context, id, creator string) (*Todo, error) {
	var document todoDocument
	if err := repository.collection.FindOne(context, ownedFilter(id, creator)).Decode(&document); err != nil {
		return nil, dberr.Wrap(err, "mongo_todo_repo_find_failed")
	}
	return document.toTodo(), nil
}

func (repository *MongoRepository) UpdateOwned(context context.Context, id, creator string, patch Patch) (*Todo, error) {
	set := bson.M{
		"completed":   patch.Completed,
		"completedAt": patch.CompletedAt,
	}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}

	updateOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var document todoDocument
	err := repository.collection.FindOneAndUpdate(context, ownedFilter(id, creator), bson.M{"$set": set}, updateOptions).Decode(&document)
	if err != nil {
		return nil, dberr.Wrap(err, "mongo_todo_repo_update_failed")
	}
	return document.toTodo(), nil
}

func (repository *MongoRepository) DeleteOwned(context context.Context, id, creator string) (*Todo, error) {
	var document todoDocument
	if err := repository.collection.FindOneAndDelete(context, ownedFilter(id, creator)).Decode(&document); err != nil {
		return nil, dberr.Wrap(err, "mongo_todo_repo_delete_failed")
	}
	return document.toTodo(), nil
}
