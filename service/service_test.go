package service

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/auth"
	"github.com/Binwin6724/todo-calender-be/mem"
)

type stubTime time.Time

func (s stubTime) Now() time.Time {
	return time.Time(s)
}

var testNow = time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

// fakeFetcher returns a fixed image for every URL except those containing
// "/fail", which fail. It records every URL it was asked for.
type fakeFetcher struct {
	// release, when set, blocks every fetch until it's closed.
	release chan struct{}

	mu        sync.Mutex
	calls     []string
	active    int
	maxActive int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*todocal.ProfileImage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if strings.Contains(url, "/fail") {
		return nil, stderrors.New("fetch failed")
	}
	return &todocal.ProfileImage{
		Data:        []byte("img:" + url),
		ContentType: "image/png",
		Hash:        "hash:" + url,
		Size:        int64(len("img:" + url)),
	}, nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestService() (*Service, *fakeFetcher) {
	fetcher := &fakeFetcher{}
	return &Service{
		TaskStore:       &mem.TaskStore{},
		CompletionStore: &mem.CompletionStore{},
		UserStore:       &mem.UserStore{},
		ImageFetcher:    fetcher,
		Time:            stubTime(testNow),
	}, fetcher
}

func userCtx(id string) context.Context {
	return auth.Context(context.Background(), auth.ID(id))
}

func intp(i int) *int { return &i }
