// Package e2e contains end-to-end tests for the task backend. They test from
// the rest interface all the way down to the database layer.
package e2e

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/auth"
	"github.com/Binwin6724/todo-calender-be/avatar"
	"github.com/Binwin6724/todo-calender-be/pg"
	"github.com/Binwin6724/todo-calender-be/pg/pgtest"
	"github.com/Binwin6724/todo-calender-be/rest"
	"github.com/Binwin6724/todo-calender-be/service"
)

// stubServer starts a new httptest.Server with a stubbed out Service. The
// server is closed when the test finishes.
func stubServer(t *testing.T) (*httptest.Server, *service.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc := stubService(ctx, t)
	srv := httptest.NewServer(rest.New(svc))
	t.Cleanup(func() {
		srv.Close()
		svc.Wait()
	})

	return srv, svc
}

// stubService returns a Service where all the external dependencies have been
// stubbed out, and the database is backed by a pgtest temp db.
func stubService(ctx context.Context, t *testing.T) *service.Service {
	db := pgtest.NewDB(t)

	if err := pg.Init(ctx, db); err != nil {
		t.Fatal(err)
	}

	return &service.Service{
		TaskStore:       &pg.TaskStore{DB: db},
		CompletionStore: &pg.CompletionStore{DB: db},
		UserStore:       &pg.UserStore{DB: db},
		Ping:            db.PingContext,

		ImageFetcher: stubImageFetcher{},

		Time: stubTime(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)),

		Auth: stubAuth{},
	}
}

// stubImageFetcher serves a fixed PNG for any URL except those containing
// "/fail".
type stubImageFetcher struct{}

var stubPNG = []byte("\x89PNG\r\n\x1a\nstub")

func (stubImageFetcher) Fetch(ctx context.Context, url string) (*todocal.ProfileImage, error) {
	if strings.Contains(url, "/fail") {
		return nil, errors.New("stub fetch failed")
	}
	hash := avatar.Digest(stubPNG)
	return &todocal.ProfileImage{
		Data:        stubPNG,
		ContentType: "image/png",
		Hash:        hash,
		Size:        int64(len(stubPNG)),
	}, nil
}

// StubTime mocks out the time with a fixed time.
type stubTime time.Time

func (s stubTime) Now() time.Time {
	return time.Time(s)
}

// StubAuth is a fake auth.Provider that takes the bearer token as the current
// user's id. The token "expired" fails verification, and a token of the form
// "<id>|<picture>" also sets the avatar URL.
type stubAuth struct{}

func (s stubAuth) FromRequest(r *http.Request) (auth.Info, error) {
	var info auth.Info

	header := r.Header.Get("Authorization")
	if header == "" {
		return info, nil
	}

	authParts := strings.Split(header, " ")
	if len(authParts) != 2 {
		return info, errors.New("malformed Authorization header")
	}

	token := authParts[1]
	if token == "expired" {
		return info, auth.ErrExpired
	}

	id, picture, _ := strings.Cut(token, "|")
	return auth.Info{
		ID:      id,
		Email:   id + "@example.com",
		Name:    id,
		Picture: picture,
	}, nil
}
