package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
)

// TaskStore stores TaskDocuments in the tasks collection, one document per
// task.
type TaskStore struct {
	DB *mongo.Database
}

type taskDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	DateKey   string             `bson:"dateKey"`
	Task      bson.Raw           `bson:"task"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d taskDoc) toTaskDocument() (todocal.TaskDocument, error) {
	doc := todocal.TaskDocument{
		ID:        d.ID.Hex(),
		UserID:    todocal.UserID(d.UserID),
		DateKey:   d.DateKey,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	err := decodeJSON(d.Task, &doc.Task)
	return doc, err
}

func (s *TaskStore) coll() *mongo.Collection {
	return s.DB.Collection(TasksCollection)
}

// Init creates the collection's indexes.
func (s *TaskStore) Init(ctx context.Context) error {
	const op errors.Op = "TaskStore.Init"

	_, err := s.coll().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "dateKey", Value: 1}, {Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "task.id", Value: 1}, {Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	if err != nil {
		return errors.E(op, mongoErr(err))
	}
	return nil
}

// Create inserts doc and returns its ObjectID in hex.
func (s *TaskStore) Create(ctx context.Context, doc todocal.TaskDocument) (string, error) {
	const op errors.Op = "TaskStore.Create"

	res, err := s.coll().InsertOne(ctx, bson.M{
		"userId":    string(doc.UserID),
		"dateKey":   doc.DateKey,
		"task":      map[string]interface{}(doc.Task),
		"createdAt": doc.CreatedAt,
		"updatedAt": doc.UpdatedAt,
	})
	if err != nil {
		return "", errors.E(op, doc.UserID, mongoErr(err))
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.E(op, doc.UserID, errors.Internal, errors.Errorf("unexpected id type %T", res.InsertedID))
	}
	return id.Hex(), nil
}

// Update replaces the payload of the first task in the bucket whose id
// matches task's id.
func (s *TaskStore) Update(ctx context.Context, userID todocal.UserID, dateKey string, task todocal.Task, now time.Time) error {
	const op errors.Op = "TaskStore.Update"

	taskID, ok := task.ID()
	if !ok {
		return errors.E(op, userID, errors.Invalid, "task has no id")
	}

	res, err := s.coll().UpdateOne(ctx,
		bson.M{"userId": string(userID), "dateKey": dateKey, "task.id": taskID},
		bson.M{"$set": bson.M{
			"task":      map[string]interface{}(task),
			"updatedAt": now,
		}},
	)
	if err != nil {
		return errors.E(op, userID, mongoErr(err))
	}
	if res.MatchedCount == 0 {
		return errors.E(op, userID, errors.NotExist, "task not found")
	}
	return nil
}

// Delete removes one of the user's documents by id.
func (s *TaskStore) Delete(ctx context.Context, userID todocal.UserID, id string) error {
	const op errors.Op = "TaskStore.Delete"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.E(op, userID, errors.NotExist, err)
	}

	res, err := s.coll().DeleteOne(ctx, bson.M{"_id": oid, "userId": string(userID)})
	if err != nil {
		return errors.E(op, userID, mongoErr(err))
	}
	if res.DeletedCount == 0 {
		return errors.E(op, userID, errors.NotExist, "task not found")
	}
	return nil
}

// ListForUser returns all of a user's tasks in natural order.
func (s *TaskStore) ListForUser(ctx context.Context, userID todocal.UserID) ([]todocal.TaskDocument, error) {
	return s.find(ctx, bson.M{"userId": string(userID)}, options.Find())
}

// ListBucket returns a user's tasks for one date key sorted by task id.
func (s *TaskStore) ListBucket(ctx context.Context, userID todocal.UserID, dateKey string) ([]todocal.TaskDocument, error) {
	return s.find(ctx,
		bson.M{"userId": string(userID), "dateKey": dateKey},
		options.Find().SetSort(bson.D{{Key: "task.id", Value: 1}, {Key: "_id", Value: 1}}))
}

func (s *TaskStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]todocal.TaskDocument, error) {
	cur, err := s.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.E(errors.Op("TaskStore.find"), mongoErr(err))
	}
	defer cur.Close(ctx)

	docs := []todocal.TaskDocument{}
	for cur.Next(ctx) {
		var d taskDoc
		if err := cur.Decode(&d); err != nil {
			return nil, errors.E(errors.Internal, "decode task", err)
		}
		doc, err := d.toTaskDocument()
		if err != nil {
			return nil, errors.E(errors.Internal, "decode task", err)
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, mongoErr(err)
	}

	return docs, nil
}
