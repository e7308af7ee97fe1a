// Package mongodb stores tasks, completions and user profiles in MongoDB,
// one collection each. Every query filters on userId.
package mongodb

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Binwin6724/todo-calender-be/errors"
)

// Collection names.
const (
	TasksCollection       = "tasks"
	CompletionsCollection = "completions"
	UsersCollection       = "users"
)

// Options tune the client's connection pool and timeouts.
type Options struct {
	MaxPoolSize            uint64
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
}

// DefaultOptions are used for zero fields of the Options passed to Connect.
var DefaultOptions = Options{
	MaxPoolSize:            10,
	ConnectTimeout:         10 * time.Second,
	ServerSelectionTimeout: 5 * time.Second,
	SocketTimeout:          45 * time.Second,
}

// Connect opens a client for uri and checks that the server answers.
func Connect(ctx context.Context, uri string, opts Options) (*mongo.Client, error) {
	const op errors.Op = "mongodb.Connect"

	if opts.MaxPoolSize == 0 {
		opts.MaxPoolSize = DefaultOptions.MaxPoolSize
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = DefaultOptions.ConnectTimeout
	}
	if opts.ServerSelectionTimeout == 0 {
		opts.ServerSelectionTimeout = DefaultOptions.ServerSelectionTimeout
	}
	if opts.SocketTimeout == 0 {
		opts.SocketTimeout = DefaultOptions.SocketTimeout
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(opts.MaxPoolSize).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ServerSelectionTimeout).
		SetSocketTimeout(opts.SocketTimeout))
	if err != nil {
		return nil, errors.E(op, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, errors.E(op, "ping", err)
	}

	return client, nil
}

// Ping returns a health check function for client.
func Ping(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

// Init creates the indexes for every store in db.
func Init(ctx context.Context, db *mongo.Database) error {
	const op errors.Op = "mongodb.Init"

	for _, initStore := range []func(context.Context) error{
		(&TaskStore{DB: db}).Init,
		(&CompletionStore{DB: db}).Init,
		(&UserStore{DB: db}).Init,
	} {
		if err := initStore(ctx); err != nil {
			return errors.E(op, err)
		}
	}
	return nil
}

// mongoErr converts a driver error into a domain error. All collection calls
// in package mongodb should return errors wrapped by mongoErr.
func mongoErr(err error) error {
	switch {
	case err == mongo.ErrNoDocuments:
		return errors.E(errors.NotExist)
	case mongo.IsDuplicateKeyError(err):
		return errors.E(errors.Exist, err)
	case err == context.Canceled:
		return errors.E(context.Canceled)
	case mongo.IsTimeout(err):
		return errors.E(errors.Internal, "timeout", err)
	}
	return err
}

// decodeJSON converts a stored BSON document back into the JSON-shaped value
// the client sent.
func decodeJSON(raw bson.Raw, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	js, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return err
	}
	return json.Unmarshal(js, out)
}
