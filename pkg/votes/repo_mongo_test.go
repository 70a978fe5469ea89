package votes

import (
	"context"
	"errors"
	"reflect"
	"stanza/pkg/common"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var postID = primitive.NewObjectID()

func fixtureVote() *Vote {
	return &Vote{
		PostID:    postID,
		DeviceID:  "device-abc",
		IPAddress: "203.0.113.7",
		Created:   time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestHasVoted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	collection := common.NewMockCollectionHelper(ctrl)
	repo := &VotesRepoMongo{collection: collection}

	collection.EXPECT().CountDocuments(gomock.Any(), gomock.Any()).Return(int64(1), nil)

	fact, err := repo.HasVoted(context.Background(), postID, "device-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fact {
		t.Fatal("expected voted=true")
	}

	collection.EXPECT().CountDocuments(gomock.Any(), gomock.Any()).Return(int64(0), nil)

	fact, err = repo.HasVoted(context.Background(), postID, "device-other")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fact {
		t.Fatal("expected voted=false")
	}
}

func TestAddVote(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	collection := common.NewMockCollectionHelper(ctrl)
	insertRes := common.NewMockInsertOneResultHelper(ctrl)
	repo := &VotesRepoMongo{collection: collection}

	v := fixtureVote()

	collection.EXPECT().InsertOne(gomock.Any(), v).Return(insertRes, nil)

	if err := repo.Add(context.Background(), v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddVoteDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	collection := common.NewMockCollectionHelper(ctrl)
	insertRes := common.NewMockInsertOneResultHelper(ctrl)
	repo := &VotesRepoMongo{collection: collection}

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}

	collection.EXPECT().InsertOne(gomock.Any(), gomock.Any()).Return(insertRes, dup)

	if err := repo.Add(context.Background(), fixtureVote()); err != ErrAlreadyVoted {
		t.Fatalf("expected ErrAlreadyVoted but was %v", err)
	}
}

func TestAddVoteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	collection := common.NewMockCollectionHelper(ctrl)
	insertRes := common.NewMockInsertOneResultHelper(ctrl)
	repo := &VotesRepoMongo{collection: collection}

	collection.EXPECT().InsertOne(gomock.Any(), gomock.Any()).Return(insertRes, errors.New("db_error"))

	if err := repo.Add(context.Background(), fixtureVote()); err == nil || err == ErrAlreadyVoted {
		t.Fatalf("expected storage error but was %v", err)
	}
}

func TestIDsByDevice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	collection := common.NewMockCollectionHelper(ctrl)
	cursor := common.NewMockCursorHelper(ctrl)
	repo := &VotesRepoMongo{collection: collection}

	other := primitive.NewObjectID()
	stored := []*Vote{
		{PostID: postID, DeviceID: "device-abc"},
		{PostID: other, DeviceID: "device-abc"},
	}

	collection.EXPECT().Find(gomock.Any(), gomock.Any()).Return(cursor, nil)
	cursor.EXPECT().All(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, results interface{}) error {
			*results.(*[]*Vote) = stored
			return nil
		})
	cursor.EXPECT().Close(gomock.Any()).Return(nil)

	fact, err := repo.IDsByDevice(context.Background(), "device-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{postID.Hex(), other.Hex()}
	if !reflect.DeepEqual(expected, fact) {
		t.Fatalf("expected %v but was %v", expected, fact)
	}
}
