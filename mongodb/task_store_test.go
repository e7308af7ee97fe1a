package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/go-test/deep"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
	"github.com/Binwin6724/todo-calender-be/mongodb/mongotest"
)

func newTaskStore(t *testing.T) *TaskStore {
	t.Helper()

	store := &TaskStore{DB: mongotest.NewDB(t)}
	if err := store.Init(context.Background()); err != nil {
		t.Fatal("init: ", err)
	}
	return store
}

func TestTaskStoreCreateList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTaskStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	for _, task := range []todocal.Task{
		{"id": 2.0, "title": "B", "tags": []interface{}{"x"}},
		{"id": 1.0, "title": "A", "done": false},
	} {
		_, err := store.Create(ctx, todocal.TaskDocument{
			UserID: "u1", DateKey: "2024-01-05", Task: task, CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatal("create: ", err)
		}
	}
	if _, err := store.Create(ctx, todocal.TaskDocument{
		UserID: "u2", DateKey: "2024-01-05", Task: todocal.Task{"id": 9.0}, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatal("create: ", err)
	}

	docs, err := store.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatal("list: ", err)
	}
	if got, want := len(docs), 2; got != want {
		t.Fatalf("got %d docs, want %d", got, want)
	}

	bucket, err := store.ListBucket(ctx, "u1", "2024-01-05")
	if err != nil {
		t.Fatal("list bucket: ", err)
	}
	var got []todocal.Task
	for _, doc := range bucket {
		got = append(got, doc.Task)
	}
	want := []todocal.Task{
		{"id": 1.0, "title": "A", "done": false},
		{"id": 2.0, "title": "B", "tags": []interface{}{"x"}},
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatal(diff)
	}
}

func TestTaskStoreUpdateDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTaskStore(t)
	now := time.Now()

	id, err := store.Create(ctx, todocal.TaskDocument{
		UserID: "u1", DateKey: "d", Task: todocal.Task{"id": "a", "title": "old"}, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatal("create: ", err)
	}

	err = store.Update(ctx, "u1", "d", todocal.Task{"id": "a", "title": "new"}, now)
	if err != nil {
		t.Fatal("update: ", err)
	}
	err = store.Update(ctx, "u2", "d", todocal.Task{"id": "a", "title": "stolen"}, now)
	if !errors.Is(errors.NotExist, err) {
		t.Fatalf("update other user's task: err = %v, want NotExist", err)
	}

	bucket, err := store.ListBucket(ctx, "u1", "d")
	if err != nil {
		t.Fatal("list bucket: ", err)
	}
	if got, want := bucket[0].Task["title"], "new"; got != want {
		t.Fatalf("title = %v, want %v", got, want)
	}

	if err := store.Delete(ctx, "u2", id); !errors.Is(errors.NotExist, err) {
		t.Fatalf("delete other user's task: err = %v, want NotExist", err)
	}
	if err := store.Delete(ctx, "u1", id); err != nil {
		t.Fatal("delete: ", err)
	}
	if err := store.Delete(ctx, "u1", id); !errors.Is(errors.NotExist, err) {
		t.Fatalf("second delete: err = %v, want NotExist", err)
	}
	if err := store.Delete(ctx, "u1", "not-an-object-id"); !errors.Is(errors.NotExist, err) {
		t.Fatalf("delete bad id: err = %v, want NotExist", err)
	}
}
