// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/todoapi/internal/platform/dberr"
	mongostore "github.com/taibuivan/todoapi/internal/platform/mongo"
	"github.com/taibuivan/todoapi/internal/platform/sec"
)

// userDocument is the stored shape of a [User] in the users collection.
type userDocument struct {
	ID           string         `bson:"_id"`
	Email        string         `bson:"email"`
	PasswordHash string         `bson:"passwordHash"`
	Tokens       []SessionToken `bson:"tokens"`
	CreatedAt    time.Time      `bson:"createdAt"`
	UpdatedAt    time.Time      `bson:"updatedAt"`
}

func (document *userDocument) toUser() *User {
	return &User{
		ID:           document.ID,
		Email:        document.Email,
		PasswordHash: document.PasswordHash,
		Tokens:       document.Tokens,
		CreatedAt:    document.CreatedAt,
		UpdatedAt:    document.UpdatedAt,
	}
}

// MongoRepository implements [Repository] on a MongoDB collection.
//
// Token append and removal use $push and $pull, each a single-document
// atomic update.
type MongoRepository struct {
	collection *mongo.Collection
	hasher     *sec.Hasher
}

// NewMongoRepository creates a [Repository] backed by database's users collection.
func NewMongoRepository(database *mongo.Database, hasher *sec.Hasher) *MongoRepository {
	return &MongoRepository{
		collection: database.Collection(mongostore.CollectionUsers),
		hasher:     hasher,
	}
}

func (repository *MongoRepository) Create(context context.Context, user *User) error {
	if err := hashIfChanged(repository.hasher, user); err != nil {
		return err
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	tokens := user.Tokens
	if tokens == nil {
		tokens = []SessionToken{}
	}

	_, err := repository.collection.InsertOne(context, userDocument{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Tokens:       tokens,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	return dberr.Wrap(err, "mongo_user_repo_create_failed")
}

func (repository *MongoRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, bson.M{"_id": id}, "mongo_user_repo_find_by_id_failed")
}

func (repository *MongoRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, bson.M{"email": email}, "mongo_user_repo_find_by_email_failed")
}

func (repository *MongoRepository) FindByIDAndToken(context context.Context, id, access, token string) (*User, error) {
	filter := bson.M{
		"_id":    id,
		"tokens": bson.M{"$elemMatch": bson.M{"access": access, "token": token}},
	}
	return repository.findOne(context, filter, "mongo_user_repo_find_by_token_failed")
}

func (repository *MongoRepository) AppendToken(context context.Context, userID string, token SessionToken) error {
	update := bson.M{
		"$push": bson.M{"tokens": token},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := repository.collection.UpdateByID(context, userID, update)
	if err != nil {
		return dberr.Wrap(err, "mongo_user_repo_append_token_failed")
	}
	if result.MatchedCount == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *MongoRepository) RemoveToken(context context.Context, userID, token string) error {
	update := bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": token}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	_, err := repository.collection.UpdateByID(context, userID, update)
	return dberr.Wrap(err, "mongo_user_repo_remove_token_failed")
}

func (repository *MongoRepository) findOne(context context.Context, filter bson.M, action string) (*User, error) {
	var document userDocument
	if err := repository.collection.FindOne(context, filter).Decode(&document); err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return document.toUser(), nil
}
