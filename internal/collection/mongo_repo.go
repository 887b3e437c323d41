package collection

import (
	"context"
	"errors"
	"time"

	"bookshelf/internal/platform/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRepo(db *mongo.Database, timeout time.Duration) *MongoRepo {
	return &MongoRepo{coll: db.Collection(database.CollectionCollection), timeout: timeout}
}

func (r *MongoRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *MongoRepo) Create(ctx context.Context, e *Entry) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.coll.InsertOne(timeoutCtx, e)
	if database.IsUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *MongoRepo) Get(ctx context.Context, userID, isbn string) (Entry, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var e Entry
	if err := r.coll.FindOne(timeoutCtx, bson.M{"userId": userID, "isbn": isbn}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *MongoRepo) ListByUser(ctx context.Context, userID string) ([]Entry, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(timeoutCtx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(timeoutCtx)

	var out []Entry
	if err := cur.All(timeoutCtx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepo) Update(ctx context.Context, e *Entry) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	set := bson.M{"read": e.Read, "updatedAt": e.UpdatedAt}
	update := bson.M{"$set": set}
	if e.Rating != nil {
		set["rating"] = *e.Rating
	} else {
		update["$unset"] = bson.M{"rating": ""}
	}

	res, err := r.coll.UpdateOne(timeoutCtx, bson.M{"userId": e.UserID, "isbn": e.ISBN}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, userID, isbn string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(timeoutCtx, bson.M{"userId": userID, "isbn": isbn})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
