package service

import (
	"context"
	"sync"
	"time"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/log"
	"github.com/Binwin6724/todo-calender-be/prom"
	"go.uber.org/zap"
)

// Defaults for the background image refresh limits.
const (
	DefaultImageTimeout    = 10 * time.Second
	DefaultMaxImageFetches = 4

	imageStoreTimeout = 10 * time.Second
)

// imageRefresher tracks background image downloads. At most one download per
// user is in flight, and at most cap(sem) run at once.
type imageRefresher struct {
	sem chan struct{}
	wg  sync.WaitGroup

	mu       sync.Mutex
	inflight map[todocal.UserID]bool
}

func (s *Service) refresher() *imageRefresher {
	s.imagesOnce.Do(func() {
		n := s.MaxImageFetches
		if n <= 0 {
			n = DefaultMaxImageFetches
		}
		s.images = &imageRefresher{
			sem:      make(chan struct{}, n),
			inflight: map[todocal.UserID]bool{},
		}
	})
	return s.images
}

func (r *imageRefresher) start(userID todocal.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inflight[userID] {
		return false
	}
	r.inflight[userID] = true
	r.wg.Add(1)
	return true
}

func (r *imageRefresher) done(userID todocal.UserID) {
	r.mu.Lock()
	delete(r.inflight, userID)
	r.mu.Unlock()

	r.wg.Done()
}

func (r *imageRefresher) wait() {
	r.wg.Wait()
}

// refreshImage downloads pictureURL in the background and stores the result
// as the user's profile image. It returns immediately. A failed download
// stores no image, so the next login tries again.
func (s *Service) refreshImage(ctx context.Context, userID todocal.UserID, pictureURL string) {
	if s.ImageFetcher == nil {
		return
	}

	r := s.refresher()
	if !r.start(userID) {
		prom.ObserveImageFetch(prom.ImageFetchSkipped)
		return
	}

	ctx = log.Detach(ctx)
	logger := log.FromContext(ctx).With(zap.String("image_url", pictureURL))
	ctx = log.ToContext(ctx, logger)

	timeout := s.ImageTimeout
	if timeout <= 0 {
		timeout = DefaultImageTimeout
	}

	go func() {
		defer r.done(userID)

		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		select {
		case r.sem <- struct{}{}:
			defer func() { <-r.sem }()
		case <-fetchCtx.Done():
			logger.Warn("profile image refresh timed out waiting for a slot")
			prom.ObserveImageFetch(prom.ImageFetchSkipped)
			return
		}

		img, err := s.ImageFetcher.Fetch(fetchCtx, pictureURL)
		if err != nil {
			logger.Warn("profile image download failed", zap.Error(err))
			prom.ObserveImageFetch(prom.ImageFetchFailed)
			img = nil
		} else {
			prom.ObserveImageFetch(prom.ImageFetchOK)
		}

		storeCtx, cancel := context.WithTimeout(ctx, imageStoreTimeout)
		defer cancel()

		if err := s.UserStore.SetImage(storeCtx, userID, pictureURL, img, s.now()); err != nil {
			logger.Error("store profile image failed", zap.Error(err))
		}
	}()
}
