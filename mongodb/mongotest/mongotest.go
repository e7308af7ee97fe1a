// Package mongotest creates throwaway MongoDB databases for the store tests.
// Tests are skipped unless MONGO_TEST_URL names a server.
package mongotest

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewDB returns a fresh database that's dropped when the test finishes.
func NewDB(t testing.TB) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URL")
	if uri == "" {
		t.Skip("MONGO_TEST_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatal(err)
	}

	name := fmt.Sprintf("todocal_mongotest_%d_%d", time.Now().Unix(), rand.Int31())
	db := client.Database(name)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db.Drop(ctx)
		client.Disconnect(ctx)
	})

	return db
}
