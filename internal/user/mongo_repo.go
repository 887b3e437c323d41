package user

import (
	"context"
	"errors"
	"time"

	"bookshelf/internal/platform/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRepo(db *mongo.Database, timeout time.Duration) *MongoRepo {
	return &MongoRepo{coll: db.Collection(database.UsersCollection), timeout: timeout}
}

func (r *MongoRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *MongoRepo) Create(ctx context.Context, u *User) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.coll.InsertOne(timeoutCtx, u)
	if database.IsUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (r *MongoRepo) getOne(ctx context.Context, filter bson.M) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u User
	if err := r.coll.FindOne(timeoutCtx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, bson.M{"email": email})
}

func (r *MongoRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return r.getOne(ctx, bson.M{"username": username})
}
