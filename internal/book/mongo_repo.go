package book

import (
	"context"
	"errors"
	"regexp"
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
	return &MongoRepo{coll: db.Collection(database.BooksCollection), timeout: timeout}
}

func (r *MongoRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

var mongoSortFields = map[string]string{
	SortTitle:         "title",
	SortAuthor:        "author",
	SortPublishedDate: "publishedDate",
	SortRating:        "avgRating",
}

func searchFilter(text string) bson.M {
	re := bson.M{"$regex": regexp.QuoteMeta(text), "$options": "i"}
	return bson.M{"$or": bson.A{
		bson.M{"title": re},
		bson.M{"author": re},
		bson.M{"isbn": re},
		bson.M{"description": re},
	}}
}

func (r *MongoRepo) Search(ctx context.Context, q Query) ([]Book, int, error) {
	filter := searchFilter(q.Q)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	total, err := r.coll.CountDocuments(timeoutCtx, filter)
	if err != nil {
		return nil, 0, err
	}

	dir := 1
	if q.Desc() {
		dir = -1
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	if q.Sort == SortRating {
		// $avg skips entries without a rating.
		pipeline = append(pipeline,
			bson.D{{Key: "$lookup", Value: bson.M{
				"from":         database.CollectionCollection,
				"localField":   "_id",
				"foreignField": "isbn",
				"as":           "entries",
			}}},
			bson.D{{Key: "$addFields", Value: bson.M{
				"avgRating": bson.M{"$ifNull": bson.A{
					bson.M{"$avg": bson.M{"$map": bson.M{
						"input": bson.M{"$filter": bson.M{
							"input": "$entries",
							"as":    "e",
							"cond":  bson.M{"$eq": bson.A{"$$e.provider", ProviderKey}},
						}},
						"as": "e",
						"in": "$$e.rating",
					}}},
					0,
				}},
			}}},
			bson.D{{Key: "$project", Value: bson.M{"entries": 0}}},
		)
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: mongoSortFields[q.Sort], Value: dir},
			{Key: "title", Value: 1},
			{Key: "_id", Value: 1},
		}}},
		bson.D{{Key: "$skip", Value: int64(q.Offset)}},
		bson.D{{Key: "$limit", Value: int64(q.Limit)}},
	)

	cur, err := r.coll.Aggregate(timeoutCtx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(timeoutCtx)

	var out []Book
	if err := cur.All(timeoutCtx, &out); err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var b Book
	if err := r.coll.FindOne(timeoutCtx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *MongoRepo) Create(ctx context.Context, b *Book) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.coll.InsertOne(timeoutCtx, b)
	return err
}

func (r *MongoRepo) CountByCreator(ctx context.Context, userID string) (int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	n, err := r.coll.CountDocuments(timeoutCtx, bson.M{"createdBy": userID})
	return int(n), err
}
