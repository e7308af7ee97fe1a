// Package mem implements the task backend's stores in process memory. It
// backs the "memory://" database URL for local development and the handler
// tests. Nothing survives a restart.
package mem

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
)

// TaskStore keeps TaskDocuments in insertion order.
type TaskStore struct {
	mu   sync.Mutex
	docs []todocal.TaskDocument
}

// ListForUser returns the user's tasks in insertion order.
func (s *TaskStore) ListForUser(ctx context.Context, userID todocal.UserID) ([]todocal.TaskDocument, error) {
	return s.list(func(d todocal.TaskDocument) bool {
		return d.UserID == userID
	}), nil
}

// ListBucket returns one date bucket sorted by task id.
func (s *TaskStore) ListBucket(ctx context.Context, userID todocal.UserID, dateKey string) ([]todocal.TaskDocument, error) {
	docs := s.list(func(d todocal.TaskDocument) bool {
		return d.UserID == userID && d.DateKey == dateKey
	})
	sort.SliceStable(docs, func(i, j int) bool {
		a, _ := docs[i].Task.ID()
		b, _ := docs[j].Task.ID()
		return compareIDs(a, b) < 0
	})
	return docs, nil
}

func (s *TaskStore) list(match func(todocal.TaskDocument) bool) []todocal.TaskDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := []todocal.TaskDocument{}
	for _, d := range s.docs {
		if match(d) {
			d.Task = cloneJSON(d.Task)
			docs = append(docs, d)
		}
	}
	return docs
}

// Create stores doc under a new UUID.
func (s *TaskStore) Create(ctx context.Context, doc todocal.TaskDocument) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.ID = uuid.New().String()
	doc.Task = cloneJSON(doc.Task)
	s.docs = append(s.docs, doc)
	return doc.ID, nil
}

// Update replaces the first task in the bucket with the same id as task.
func (s *TaskStore) Update(ctx context.Context, userID todocal.UserID, dateKey string, task todocal.Task, now time.Time) error {
	const op errors.Op = "mem.TaskStore.Update"

	want, ok := task.IDJSON()
	if !ok {
		return errors.E(op, errors.Invalid, "task has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.docs {
		d := &s.docs[i]
		if d.UserID != userID || d.DateKey != dateKey {
			continue
		}
		if got, ok := d.Task.IDJSON(); ok && got == want {
			d.Task = cloneJSON(task)
			d.UpdatedAt = now
			return nil
		}
	}
	return errors.E(op, userID, errors.NotExist)
}

// Delete removes a document by id.
func (s *TaskStore) Delete(ctx context.Context, userID todocal.UserID, id string) error {
	const op errors.Op = "mem.TaskStore.Delete"

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.docs {
		if d.ID == id && d.UserID == userID {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return errors.E(op, userID, errors.NotExist)
}

// CompletionStore keeps one CompletionsDocument per user.
type CompletionStore struct {
	mu   sync.Mutex
	docs map[todocal.UserID]todocal.CompletionsDocument
}

// Get returns the user's completions.
func (s *CompletionStore) Get(ctx context.Context, userID todocal.UserID) (todocal.CompletionsDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[userID]
	if !ok {
		return doc, errors.E(errors.Op("mem.CompletionStore.Get"), userID, errors.NotExist)
	}
	doc.Data = cloneJSON(doc.Data)
	return doc, nil
}

// Save replaces the user's completions.
func (s *CompletionStore) Save(ctx context.Context, doc todocal.CompletionsDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs == nil {
		s.docs = map[todocal.UserID]todocal.CompletionsDocument{}
	}
	doc.Data = cloneJSON(doc.Data)
	s.docs[doc.UserID] = doc
	return nil
}

// UserStore keeps user profiles by id.
type UserStore struct {
	mu    sync.Mutex
	users map[todocal.UserID]todocal.User
}

// GetByID returns a user's profile.
func (s *UserStore) GetByID(ctx context.Context, userID todocal.UserID) (todocal.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return user, errors.E(errors.Op("mem.UserStore.GetByID"), userID, errors.NotExist)
	}
	return user, nil
}

// Create adds a profile, failing if the user already has one.
func (s *UserStore) Create(ctx context.Context, user todocal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users == nil {
		s.users = map[todocal.UserID]todocal.User{}
	}
	if _, ok := s.users[user.ID]; ok {
		return errors.E(errors.Op("mem.UserStore.Create"), user.ID, errors.Exist)
	}
	s.users[user.ID] = user
	return nil
}

// SetImage replaces the user's image and picture URL.
func (s *UserStore) SetImage(ctx context.Context, userID todocal.UserID, pictureURL string, img *todocal.ProfileImage, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return errors.E(errors.Op("mem.UserStore.SetImage"), userID, errors.NotExist)
	}
	if img != nil {
		stored := *img
		img = &stored
	}
	user.ProfileImage = img
	user.GooglePictureURL = pictureURL
	user.UpdatedAt = now
	s.users[userID] = user
	return nil
}

func cloneJSON[M ~map[string]interface{}](m M) M {
	if m == nil {
		return nil
	}
	js, err := json.Marshal(m)
	if err != nil {
		return m
	}
	var out M
	if err := json.Unmarshal(js, &out); err != nil {
		return m
	}
	return out
}

// compareIDs orders task ids the way MongoDB sorts mixed values: missing,
// numbers, strings (bytewise), objects, arrays, booleans. Ids of the same
// non-scalar type compare by JSON text.
func compareIDs(a, b interface{}) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	switch {
	case string(ja) < string(jb):
		return -1
	case string(ja) > string(jb):
		return 1
	}
	return 0
}

func rank(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case float64:
		return 1
	case string:
		return 2
	case map[string]interface{}:
		return 3
	case []interface{}:
		return 4
	case bool:
		return 5
	}
	return 6
}
