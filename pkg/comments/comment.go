package comments

import "time"

// AuthorName is a snapshot of the display name at write time, not a
// live join against the users table.
type Comment struct {
	ID         interface{} `bson:"_id,omitempty" json:"id"`
	PostID     interface{} `bson:"postID" json:"postId"`
	AuthorID   int64       `bson:"authorID" json:"authorId"`
	AuthorName string      `bson:"authorName" json:"authorName"`
	Content    string      `bson:"content" json:"content"`
	Created    time.Time   `bson:"created" json:"createdAt"`
}

const MaxContentLength = 2000
