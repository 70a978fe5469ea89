package comments

import (
	"context"
	"stanza/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentRepoMongo struct {
	collection common.CollectionHelper
}

func NewCommentsRepoMongo(db *mongo.Database) *CommentRepoMongo {
	return &CommentRepoMongo{collection: &common.MongoCollection{Collection: db.Collection("comments")}}
}

// GetByPostID returns the thread oldest first. No pagination: the 24h
// post lifetime keeps threads naturally small.
func (repo *CommentRepoMongo) GetByPostID(ctx context.Context, id interface{}) ([]*Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: 1}})
	cur, err := repo.collection.Find(ctx, bson.M{"postID": id}, opts)
	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	var items []*Comment
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (repo *CommentRepoMongo) Add(ctx context.Context, comment *Comment) (interface{}, error) {
	res, err := repo.collection.InsertOne(ctx, comment)
	if err != nil {
		return nil, err
	}

	return res.GetInsertedID(), nil
}
