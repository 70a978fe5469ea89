package posts

import (
	"errors"
	"time"
)

// ErrNotFound covers both absent and expired posts: an expired post is
// indistinguishable from a missing one to callers.
var ErrNotFound = errors.New("post not found")

type Post struct {
	ID           interface{} `bson:"_id,omitempty" json:"id"`
	Title        string      `bson:"title" json:"title"`
	Description  string      `bson:"description" json:"description"`
	ImageURL     string      `bson:"imageURL,omitempty" json:"imageUrl,omitempty"`
	AuthorID     int64       `bson:"authorID" json:"authorId"`
	AuthorName   string      `bson:"authorName" json:"authorName"`
	Created      time.Time   `bson:"created" json:"createdAt"`
	Expires      time.Time   `bson:"expires" json:"expiresAt"`
	Votes        int64       `bson:"votes" json:"votes"`
	CommentCount int64       `bson:"commentCount" json:"commentCount"`
}
