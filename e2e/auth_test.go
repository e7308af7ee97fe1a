package e2e

import (
	"context"
	"testing"

	"github.com/go-test/deep"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
	"github.com/Binwin6724/todo-calender-be/rest/client"
)

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	srv, _ := stubServer(t)
	ctx := context.Background()

	anon := client.New("")
	anon.BaseURL = srv.URL
	if _, err := anon.Tasks.List(ctx); !errors.Is(errors.NotLoggedIn, err) {
		t.Fatalf("list without token: err = %v, want NotLoggedIn", err)
	}

	expired := client.New("expired")
	expired.BaseURL = srv.URL
	if _, err := expired.Auth.Verify(ctx); !errors.Is(errors.Permission, err) {
		t.Fatalf("verify expired token: err = %v, want Permission", err)
	}
}

func TestVerifyStoresProfileImage(t *testing.T) {
	t.Parallel()

	srv, svc := stubServer(t)
	ctx := context.Background()

	c := client.New("user|http://img/ok.png")
	c.BaseURL = srv.URL

	reply, err := c.Auth.Verify(ctx)
	if err != nil {
		t.Fatal("verify: ", err)
	}
	want := todocal.UserView{
		ID:      "user",
		Email:   "user@example.com",
		Name:    "user",
		Picture: "http://img/ok.png",
	}
	if diff := deep.Equal(reply.User, want); diff != nil {
		t.Fatal(diff)
	}

	svc.Wait()

	reply, err = c.Auth.Verify(ctx)
	if err != nil {
		t.Fatal("verify: ", err)
	}
	if !reply.User.HasStoredImage {
		t.Fatalf("HasStoredImage = false after refresh")
	}
	if got, want := reply.User.Picture, "/api/user/image/user"; got != want {
		t.Fatalf("picture = %q, want %q", got, want)
	}

	anon := client.New("")
	anon.BaseURL = srv.URL
	img, err := anon.Users.Image(ctx, "user")
	if err != nil {
		t.Fatal("get image: ", err)
	}
	if got, want := string(img.Data), string(stubPNG); got != want {
		t.Fatalf("image data = %q, want %q", got, want)
	}
	if got, want := img.ContentType, "image/png"; got != want {
		t.Fatalf("content type = %q, want %q", got, want)
	}

	if _, err := anon.Users.Image(ctx, "nobody"); !errors.Is(errors.NotExist, err) {
		t.Fatalf("image for unknown user: err = %v, want NotExist", err)
	}
}

func TestVerifyFailedImageDownload(t *testing.T) {
	t.Parallel()

	srv, svc := stubServer(t)
	ctx := context.Background()

	c := client.New("user|http://img/fail.png")
	c.BaseURL = srv.URL

	if _, err := c.Auth.Verify(ctx); err != nil {
		t.Fatal("verify: ", err)
	}
	svc.Wait()

	reply, err := c.Auth.Verify(ctx)
	if err != nil {
		t.Fatal("verify after failed download: ", err)
	}
	if reply.User.HasStoredImage || reply.User.Picture != "http://img/fail.png" {
		t.Fatalf("user = %+v, want provider picture and no stored image", reply.User)
	}

	anon := client.New("")
	anon.BaseURL = srv.URL
	if _, err := anon.Users.Image(ctx, "user"); !errors.Is(errors.NotExist, err) {
		t.Fatalf("image after failed download: err = %v, want NotExist", err)
	}
}
