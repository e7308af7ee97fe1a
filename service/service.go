package service

import (
	"context"
	"sync"
	"time"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/auth"
)

// Time mocks out time.Now for testing
type Time interface {
	Now() time.Time
}

// Service is a programmatic API to the task backend. Every operation is scoped
// to the user in the request context. It's built once at startup and shared by
// all requests.
type Service struct {
	TaskStore       TaskStore
	CompletionStore CompletionStore
	UserStore       UserStore

	// Ping checks the database connection for health reports.
	Ping func(ctx context.Context) error

	ImageFetcher ImageFetcher
	// ImageTimeout bounds a single background image refresh.
	ImageTimeout time.Duration
	// MaxImageFetches bounds the number of concurrent image downloads.
	MaxImageFetches int
	// ImageBaseURL prefixes the local image URLs handed to clients. Empty
	// means host-relative URLs.
	ImageBaseURL string

	Time Time

	Auth auth.Provider

	imagesOnce sync.Once
	images     *imageRefresher
}

// TaskStore persists TaskDocuments.
type TaskStore interface {
	// ListForUser returns every task the user owns.
	ListForUser(ctx context.Context, userID todocal.UserID) ([]todocal.TaskDocument, error)
	// ListBucket returns the tasks in one date bucket sorted by task id.
	ListBucket(ctx context.Context, userID todocal.UserID, dateKey string) ([]todocal.TaskDocument, error)
	// Create inserts doc and returns its generated id.
	Create(ctx context.Context, doc todocal.TaskDocument) (string, error)
	// Update replaces the payload of one task matching (userID, dateKey,
	// task id). It returns a NotExist error when nothing matches.
	Update(ctx context.Context, userID todocal.UserID, dateKey string, task todocal.Task, now time.Time) error
	// Delete removes a document by id. It returns a NotExist error when the
	// document is gone.
	Delete(ctx context.Context, userID todocal.UserID, id string) error
}

// CompletionStore persists one CompletionsDocument per user.
type CompletionStore interface {
	// Get returns a NotExist error when the user never saved completions.
	Get(ctx context.Context, userID todocal.UserID) (todocal.CompletionsDocument, error)
	Save(ctx context.Context, doc todocal.CompletionsDocument) error
}

// UserStore persists user profiles.
type UserStore interface {
	// GetByID returns a NotExist error when there's no profile.
	GetByID(ctx context.Context, userID todocal.UserID) (todocal.User, error)
	// Create inserts a profile. It returns an Exist error when one is
	// already stored for the user.
	Create(ctx context.Context, user todocal.User) error
	// SetImage replaces the stored image and picture URL. A nil image clears it.
	SetImage(ctx context.Context, userID todocal.UserID, pictureURL string, img *todocal.ProfileImage, now time.Time) error
}

// ImageFetcher downloads a profile image.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*todocal.ProfileImage, error)
}

func (s *Service) now() time.Time {
	if s.Time != nil {
		return s.Time.Now()
	}
	return time.Now()
}

// Wait blocks until background image refreshes have finished.
func (s *Service) Wait() {
	s.refresher().wait()
}
