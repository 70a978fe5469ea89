package votes

import (
	"errors"
	"time"
)

var ErrAlreadyVoted = errors.New("already voted")

// Uniqueness is on (PostID, DeviceID). IPAddress is advisory metadata
// only and never part of the key: a device may move networks.
type Vote struct {
	ID        interface{} `bson:"_id,omitempty"`
	PostID    interface{} `bson:"postID"`
	DeviceID  string      `bson:"deviceID"`
	IPAddress string      `bson:"ipAddress,omitempty"`
	Created   time.Time   `bson:"created"`
}
