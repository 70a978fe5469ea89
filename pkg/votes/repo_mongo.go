package votes

import (
	"context"
	"stanza/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type VotesRepoMongo struct {
	collection common.CollectionHelper
}

func NewVotesRepoMongo(db *mongo.Database) *VotesRepoMongo {
	return &VotesRepoMongo{collection: &common.MongoCollection{Collection: db.Collection("votes")}}
}

// EnsureIndexes creates the unique compound index that makes the
// check-and-insert in Add a single atomic storage operation.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("votes").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "postID", Value: 1}, {Key: "deviceID", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return err
}

func (r *VotesRepoMongo) HasVoted(ctx context.Context, postID interface{}, deviceID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"postID": postID, "deviceID": deviceID})
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// Add records the vote. Two concurrent calls for the same
// (post, device) pair race on the unique index: exactly one insert
// lands, the other comes back as ErrAlreadyVoted.
func (r *VotesRepoMongo) Add(ctx context.Context, v *Vote) error {
	_, err := r.collection.InsertOne(ctx, v)
	if common.IsDuplicateKey(err) {
		return ErrAlreadyVoted
	}

	return err
}

// IDsByDevice lets a client reconcile its local voted-posts cache with
// the ledger, which stays the source of truth.
func (r *VotesRepoMongo) IDsByDevice(ctx context.Context, deviceID string) ([]string, error) {
	cur, err := r.collection.Find(ctx, bson.M{"deviceID": deviceID})
	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	var items []*Vote
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, v := range items {
		if oid, ok := v.PostID.(primitive.ObjectID); ok {
			ids = append(ids, oid.Hex())
			continue
		}
		if s, ok := v.PostID.(string); ok {
			ids = append(ids, s)
		}
	}

	return ids, nil
}
