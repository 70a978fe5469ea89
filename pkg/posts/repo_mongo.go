package posts

import (
	"context"
	"stanza/pkg/common"
	"stanza/pkg/expiry"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostsRepoMongo struct {
	collection common.CollectionHelper
}

func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

func NewPostsRepoMongo(db *mongo.Database) *PostsRepoMongo {
	return &PostsRepoMongo{collection: &common.MongoCollection{Collection: db.Collection("posts")}}
}

// GetLive returns unexpired posts, newest first. Expired posts stay in
// the collection; liveness is purely a read-time filter.
func (r *PostsRepoMongo) GetLive(ctx context.Context, now time.Time) ([]*Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})
	cur, err := r.collection.Find(ctx, bson.M{"expires": bson.M{"$gt": now}}, opts)
	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	var items []*Post
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *PostsRepoMongo) GetByID(ctx context.Context, id interface{}, now time.Time) (*Post, error) {
	res := r.collection.FindOne(ctx, bson.M{"_id": id})

	post := &Post{}
	err := res.Decode(post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if !expiry.IsLive(post.Expires, now) {
		return nil, ErrNotFound
	}

	return post, nil
}

func (r *PostsRepoMongo) Add(ctx context.Context, p *Post) (interface{}, error) {
	res, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}

	return res.GetInsertedID(), nil
}

// IncVotes bumps the cached vote counter with a server-side $inc and
// returns the new value. The increment is a single document operation,
// so concurrent voters can never lose updates.
func (r *PostsRepoMongo) IncVotes(ctx context.Context, id interface{}) (int64, error) {
	return r.inc(ctx, id, "votes")
}

func (r *PostsRepoMongo) IncCommentCount(ctx context.Context, id interface{}) (int64, error) {
	return r.inc(ctx, id, "commentCount")
}

func (r *PostsRepoMongo) ParseID(in string) (interface{}, error) {
	return primitive.ObjectIDFromHex(in)
}

func (r *PostsRepoMongo) inc(ctx context.Context, id interface{}, field string) (int64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: field, Value: 1}}},
		}, opts)

	post := &Post{}
	err := res.Decode(post)
	if err == mongo.ErrNoDocuments {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if field == "votes" {
		return post.Votes, nil
	}

	return post.CommentCount, nil
}
