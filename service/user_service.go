package service

import (
	"context"
	"net/url"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/auth"
	"github.com/Binwin6724/todo-calender-be/errors"
	"github.com/Binwin6724/todo-calender-be/log"
	"go.uber.org/zap"
)

// UserResolve makes sure the authenticated user has a profile and returns the
// identity clients see.
//
// A first login creates the profile. When the provider's avatar URL is new,
// or the stored image is missing, the image is downloaded in the background;
// the login never waits for it or fails because of it.
func (s *Service) UserResolve(ctx context.Context) (todocal.UserView, error) {
	const op errors.Op = "Service.UserResolve"

	info := auth.User(ctx)
	if info.ID == "" {
		return todocal.UserView{}, errors.E(op, errors.NotLoggedIn)
	}
	userID := todocal.UserID(info.ID)

	user, err := s.UserStore.GetByID(ctx, userID)
	switch {
	case errors.Is(errors.NotExist, err):
		user, err = s.createUser(ctx, info)
		if err != nil {
			return todocal.UserView{}, errors.E(op, userID, errors.Internal, err)
		}

	case err != nil:
		return todocal.UserView{}, errors.E(op, userID, errors.Internal, err)

	case needsImageRefresh(user, info.Picture):
		log.FromContext(ctx).Info("refreshing profile image",
			zap.String("previous_url", user.GooglePictureURL),
			zap.Bool("had_image", user.HasImage()))
		s.refreshImage(ctx, userID, info.Picture)
	}

	return s.userView(user, info.Picture), nil
}

func (s *Service) createUser(ctx context.Context, info auth.Info) (todocal.User, error) {
	now := s.now()
	user := todocal.User{
		ID:               todocal.UserID(info.ID),
		Email:            info.Email,
		Name:             info.Name,
		GooglePictureURL: info.Picture,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.UserStore.Create(ctx, user)
	if errors.Is(errors.Exist, err) {
		// A concurrent login created it first.
		return s.UserStore.GetByID(ctx, user.ID)
	}
	if err != nil {
		return user, err
	}

	log.FromContext(ctx).Info("created user profile")

	if info.Picture != "" {
		s.refreshImage(ctx, user.ID, info.Picture)
	}

	return user, nil
}

// needsImageRefresh reports whether the stored image is stale for the
// provider's current avatar URL.
func needsImageRefresh(user todocal.User, pictureURL string) bool {
	if pictureURL == "" {
		return false
	}
	return pictureURL != user.GooglePictureURL || !user.HasImage()
}

func (s *Service) userView(user todocal.User, pictureURL string) todocal.UserView {
	view := todocal.UserView{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Picture: pictureURL,
	}
	if view.Picture == "" {
		view.Picture = user.GooglePictureURL
	}
	if user.HasImage() {
		view.Picture = s.ImageURL(user.ID)
		view.HasStoredImage = true
	}
	return view
}

// ImageURL returns the URL the user's stored profile image is served from.
func (s *Service) ImageURL(userID todocal.UserID) string {
	return s.ImageBaseURL + "/api/user/image/" + url.PathEscape(string(userID))
}

// UserImage returns a user's stored profile image. It doesn't require
// authentication: image URLs are handed to browsers as plain <img> sources.
func (s *Service) UserImage(ctx context.Context, userID todocal.UserID) (todocal.ProfileImage, error) {
	const op errors.Op = "Service.UserImage"

	user, err := s.UserStore.GetByID(ctx, userID)
	if errors.Is(errors.NotExist, err) {
		return todocal.ProfileImage{}, errors.E(op, userID, err)
	}
	if err != nil {
		return todocal.ProfileImage{}, errors.E(op, userID, errors.Internal, err)
	}

	if !user.HasImage() {
		return todocal.ProfileImage{}, errors.E(op, userID, errors.NotExist, "no stored image")
	}

	return *user.ProfileImage, nil
}
