package pg

import (
	"context"
	"testing"
	"time"

	"github.com/go-test/deep"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
	"github.com/Binwin6724/todo-calender-be/pg/pgtest"
)

func TestUserStore(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := pgtest.NewDB(t)
	store := &UserStore{DB: db}
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}

	const userID = "user1"

	_, err := store.GetByID(ctx, userID)
	if got, want := err, errors.E(errors.NotExist); !errors.Match(want, got) {
		t.Fatalf("GetByID error=%v, want %v", got, want)
	}

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	user := todocal.User{
		ID:               userID,
		Email:            "u1@example.com",
		Name:             "User One",
		GooglePictureURL: "http://x/img.png",
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	if err := store.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = store.Create(ctx, user)
	if got, want := err, errors.E(errors.Exist); !errors.Is(errors.Exist, got) {
		t.Fatalf("second Create error=%v, want %v", got, want)
	}

	got, err := store.GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	got.CreatedAt, got.UpdatedAt = got.CreatedAt.UTC(), got.UpdatedAt.UTC()
	if diff := deep.Equal(got, user); diff != nil {
		t.Fatalf("GetByID() != created user; %v", diff)
	}
	if got.HasImage() {
		t.Fatal("new user has an image")
	}

	img := &todocal.ProfileImage{
		Data:        []byte("png bytes"),
		ContentType: "image/png",
		Hash:        "abc123",
		Size:        9,
	}
	updated := created.Add(time.Hour)
	if err := store.SetImage(ctx, userID, "http://x/new.png", img, updated); err != nil {
		t.Fatalf("SetImage: %v", err)
	}

	got, err = store.GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if diff := deep.Equal(got.ProfileImage, img); diff != nil {
		t.Fatalf("stored image: %v", diff)
	}
	if got, want := got.GooglePictureURL, "http://x/new.png"; got != want {
		t.Fatalf("GooglePictureURL = %q, want %q", got, want)
	}

	// A failed download clears the image.
	if err := store.SetImage(ctx, userID, "http://x/broken.png", nil, updated); err != nil {
		t.Fatalf("SetImage(nil): %v", err)
	}
	got, err = store.GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ProfileImage != nil {
		t.Fatalf("ProfileImage = %+v, want nil", got.ProfileImage)
	}

	err = store.SetImage(ctx, "nobody", "", nil, updated)
	if !errors.Is(errors.NotExist, err) {
		t.Fatalf("SetImage(nobody) err = %v, want NotExist", err)
	}
}
