package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-test/deep"
	"google.golang.org/api/idtoken"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/auth"
	"github.com/Binwin6724/todo-calender-be/mem"
	"github.com/Binwin6724/todo-calender-be/service"
)

// stubAuth treats the bearer token as the user id. The token "bad" fails
// verification.
type stubAuth struct{}

func (stubAuth) FromRequest(r *http.Request) (auth.Info, error) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	switch token {
	case "":
		return auth.Info{}, nil
	case "bad":
		return auth.Info{}, errors.New("signature mismatch")
	}
	return auth.Info{ID: token, Email: token + "@example.com", Name: token}, nil
}

func newTestHandler() (*Handler, *service.Service) {
	svc := &service.Service{
		TaskStore:       &mem.TaskStore{},
		CompletionStore: &mem.CompletionStore{},
		UserStore:       &mem.UserStore{},
		Auth:            stubAuth{},
	}
	return New(svc), svc
}

func do(t *testing.T, h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var v map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestShiftPath(t *testing.T) {
	tests := []struct {
		in, head, tail string
	}{
		{"/", "", "/"},
		{"/api", "api", "/"},
		{"/api/tasks", "api", "/tasks"},
		{"/api/tasks/", "api", "/tasks"},
		{"api/../health", "health", "/"},
	}
	for _, tt := range tests {
		head, tail := ShiftPath(tt.in)
		if head != tt.head || tail != tt.tail {
			t.Errorf("ShiftPath(%q) = %q, %q, want %q, %q", tt.in, head, tail, tt.head, tt.tail)
		}
	}
}

func TestAuthErrors(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()

	tests := []struct {
		method, target, token string
		status                int
	}{
		{"GET", "/api/tasks", "", http.StatusUnauthorized},
		{"POST", "/api/auth/verify", "", http.StatusUnauthorized},
		{"GET", "/api/tasks", "bad", http.StatusForbidden},
		{"POST", "/api/auth/verify", "bad", http.StatusForbidden},
		{"POST", "/api/completions", "bad", http.StatusForbidden},
		{"GET", "/api/nothing", "u1", http.StatusNotFound},
		{"GET", "/nothing", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := do(t, h, tt.method, tt.target, tt.token, "")
		if w.Code != tt.status {
			t.Errorf("%s %s with token %q: status %d, want %d", tt.method, tt.target, tt.token, w.Code, tt.status)
		}
	}

	w := do(t, h, "GET", "/api/tasks", "bad", "")
	body := decode(t, w)
	if body["success"] != false || body["error"] != "invalid or expired token" {
		t.Fatalf("body = %v", body)
	}
}

func TestTasksEndpoints(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()

	w := do(t, h, "POST", "/api/tasks", "u1", `{"dateKey":"2024-01-05","task":{"id":2,"title":"b"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create: status %d: %s", w.Code, w.Body)
	}
	if body := decode(t, w); body["success"] != true || body["id"] == "" || body["message"] != "Task created successfully" {
		t.Fatalf("create body = %v", body)
	}
	do(t, h, "POST", "/api/tasks", "u1", `{"dateKey":"2024-01-05","task":{"id":1,"title":"a"}}`)

	w = do(t, h, "POST", "/api/tasks", "u1", `{"task":{"id":3}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create without dateKey: status %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "dateKey and task are required" {
		t.Fatalf("create without dateKey: error = %v", body["error"])
	}
	w = do(t, h, "POST", "/api/tasks", "u1", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create with bad json: status %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "malformed request body" {
		t.Fatalf("create with bad json: error = %v", body["error"])
	}

	w = do(t, h, "PUT", "/api/tasks", "u1", `{"dateKey":"2024-01-05","taskIndex":9,"task":{"id":1,"title":"a2"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d: %s", w.Code, w.Body)
	}
	w = do(t, h, "PUT", "/api/tasks", "u1", `{"dateKey":"2024-01-05","task":{"id":1}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("update without taskIndex: status %d", w.Code)
	}
	w = do(t, h, "PUT", "/api/tasks", "u1", `{"dateKey":"2024-01-05","taskIndex":0,"task":{"id":42}}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("update unknown id: status %d", w.Code)
	}

	w = do(t, h, "DELETE", "/api/tasks", "u1", `{"dateKey":"2024-01-05","taskIndex":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d: %s", w.Code, w.Body)
	}
	w = do(t, h, "DELETE", "/api/tasks", "u1", `{"dateKey":"2024-01-05","taskIndex":1}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete out of range: status %d", w.Code)
	}

	w = do(t, h, "POST", "/api/completions", "u1", `{"completions":{"2024-01-05":{"1":true}}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("save completions: status %d: %s", w.Code, w.Body)
	}
	w = do(t, h, "POST", "/api/completions", "u1", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("save empty completions: status %d", w.Code)
	}

	w = do(t, h, "GET", "/api/tasks", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d: %s", w.Code, w.Body)
	}
	want := map[string]interface{}{
		"2024-01-05":  []interface{}{map[string]interface{}{"id": 1.0, "title": "a2"}},
		"completions": map[string]interface{}{"2024-01-05": map[string]interface{}{"1": true}},
	}
	if diff := deep.Equal(decode(t, w), want); diff != nil {
		t.Fatal(diff)
	}

	w = do(t, h, "GET", "/api/tasks", "u2", "")
	if diff := deep.Equal(decode(t, w), map[string]interface{}{}); diff != nil {
		t.Fatal("other user: ", diff)
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()

	w := do(t, h, "POST", "/api/auth/verify", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("verify: status %d: %s", w.Code, w.Body)
	}
	want := map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":             "u1",
			"email":          "u1@example.com",
			"name":           "u1",
			"picture":        "",
			"hasStoredImage": false,
		},
	}
	if diff := deep.Equal(decode(t, w), want); diff != nil {
		t.Fatal(diff)
	}
}

func TestUserImage(t *testing.T) {
	t.Parallel()

	h, svc := newTestHandler()
	ctx := context.Background()

	w := do(t, h, "GET", "/api/user/image/u1", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("no profile: status %d", w.Code)
	}

	if err := svc.UserStore.Create(ctx, todocal.User{ID: "u1"}); err != nil {
		t.Fatal(err)
	}
	w = do(t, h, "GET", "/api/user/image/u1", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("no image: status %d", w.Code)
	}

	img := &todocal.ProfileImage{Data: []byte("GIF89a"), ContentType: "image/gif", Hash: "abc", Size: 6}
	if err := svc.UserStore.SetImage(ctx, "u1", "http://pic", img, time.Now()); err != nil {
		t.Fatal(err)
	}

	w = do(t, h, "GET", "/api/user/image/u1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("image: status %d", w.Code)
	}
	wantHeaders := map[string]string{
		"Content-Type":   "image/gif",
		"Content-Length": "6",
		"Cache-Control":  "public, max-age=31536000, immutable",
		"ETag":           `"abc"`,
	}
	for k, v := range wantHeaders {
		if got := w.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if got := w.Body.String(); got != "GIF89a" {
		t.Fatalf("body = %q", got)
	}

	r := httptest.NewRequest("GET", "/api/user/image/u1", nil)
	r.Header.Set("If-None-Match", `"abc"`)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNotModified {
		t.Fatalf("If-None-Match: status %d, want 304", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("304 body = %q", w.Body)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()

	w := do(t, h, "GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	body := decode(t, w)
	if body["status"] != "ok" || body["database"] != "connected" || body["timestamp"] == nil {
		t.Fatalf("body = %v", body)
	}
}

func TestBareBearerIsUnauthorized(t *testing.T) {
	t.Parallel()

	h, svc := newTestHandler()
	h.Auth = &auth.GoogleProvider{
		Audience: "client-1",
		Validate: func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
			return nil, errors.New("no token should reach the validator")
		},
	}
	svc.Auth = h.Auth

	r := httptest.NewRequest("GET", "/api/tasks", nil)
	r.Header.Set("Authorization", "Bearer")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401: %s", w.Code, w.Body)
	}
}
