package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
)

// CompletionStore keeps one completions document per user.
type CompletionStore struct {
	DB *mongo.Database
}

type completionsDoc struct {
	Type      string    `bson:"type"`
	UserID    string    `bson:"userId"`
	Data      bson.Raw  `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (s *CompletionStore) coll() *mongo.Collection {
	return s.DB.Collection(CompletionsCollection)
}

// Init creates the unique userId index.
func (s *CompletionStore) Init(ctx context.Context) error {
	const op errors.Op = "CompletionStore.Init"

	_, err := s.coll().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.E(op, mongoErr(err))
	}
	return nil
}

// Save upserts the user's completions document, replacing data wholesale.
func (s *CompletionStore) Save(ctx context.Context, doc todocal.CompletionsDocument) error {
	const op errors.Op = "CompletionStore.Save"

	_, err := s.coll().UpdateOne(ctx,
		bson.M{"userId": string(doc.UserID)},
		bson.M{"$set": bson.M{
			"type":      todocal.CompletionsType,
			"userId":    string(doc.UserID),
			"data":      map[string]interface{}(doc.Data),
			"updatedAt": doc.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errors.E(op, doc.UserID, mongoErr(err))
	}
	return nil
}

// Get retrieves the user's completions.
func (s *CompletionStore) Get(ctx context.Context, userID todocal.UserID) (todocal.CompletionsDocument, error) {
	const op errors.Op = "CompletionStore.Get"

	var d completionsDoc
	err := s.coll().FindOne(ctx, bson.M{"userId": string(userID)}).Decode(&d)
	if err != nil {
		return todocal.CompletionsDocument{}, errors.E(op, userID, mongoErr(err))
	}

	doc := todocal.CompletionsDocument{
		Type:      d.Type,
		UserID:    todocal.UserID(d.UserID),
		UpdatedAt: d.UpdatedAt,
	}
	if err := decodeJSON(d.Data, &doc.Data); err != nil {
		return doc, errors.E(op, userID, errors.Internal, err)
	}
	return doc, nil
}
