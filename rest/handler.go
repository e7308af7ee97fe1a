// Package rest contains a REST handler for the task backend. It wraps Service
// in a web-accessible API.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/auth"
	"github.com/Binwin6724/todo-calender-be/errors"
	"github.com/Binwin6724/todo-calender-be/log"
	"github.com/Binwin6724/todo-calender-be/prom"
	"github.com/Binwin6724/todo-calender-be/service"
)

// New creates a new REST service wrapping a Service.
func New(service *service.Service) *Handler {
	return &Handler{
		Auth:    service.Auth,
		Service: service,

		TasksHandler:       newTasksHandler(service),
		CompletionsHandler: newCompletionsHandler(service),
		AuthHandler:        newAuthHandler(service),
		UsersHandler:       newUsersHandler(service),
		HealthHandler:      newHealthHandler(service),
	}
}

// Handler is an http.Handler that provides a REST interface for the task
// backend. Everything under /api except /api/user requires a bearer token.
type Handler struct {
	Auth    auth.Provider
	Service *service.Service

	TasksHandler       *TasksHandler
	CompletionsHandler *CompletionsHandler
	AuthHandler        *AuthHandler
	UsersHandler       *UsersHandler
	HealthHandler      http.Handler
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var head string
	head, r.URL.Path = ShiftPath(r.URL.Path)

	switch head {
	case "api":
		h.serveAPI(w, r)

	case "health":
		if h.HealthHandler != nil {
			h.HealthHandler.ServeHTTP(w, r)
		} else {
			http.NotFound(w, r)
		}

	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) serveAPI(w http.ResponseWriter, r *http.Request) {
	var head string
	head, r.URL.Path = ShiftPath(r.URL.Path)

	if head == "user" {
		// Image URLs are loaded by browsers without credentials.
		if h.UsersHandler != nil {
			h.UsersHandler.ServeHTTP(w, r)
		} else {
			http.NotFound(w, r)
		}
		return
	}

	next := h.protected(head)
	if next == nil {
		http.NotFound(w, r)
		return
	}

	r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	next.ServeHTTP(w, r)
}

// protected returns the handler for an authenticated /api resource, or nil.
func (h *Handler) protected(head string) http.Handler {
	switch head {
	case "tasks":
		if h.TasksHandler != nil {
			return h.TasksHandler
		}
	case "completions":
		if h.CompletionsHandler != nil {
			return h.CompletionsHandler
		}
	case "auth":
		if h.AuthHandler != nil {
			return h.AuthHandler
		}
	}
	return nil
}

// authenticate verifies the request's bearer token and resolves the caller's
// profile. On failure it writes the error response and returns false.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	// Retrieve the logger from HTTP middleware, if set.
	ctx := r.Context()
	logger := log.FromContext(ctx)

	user, err := h.Auth.FromRequest(r)
	if err != nil {
		logger.Warn("verify token failed", zap.Error(err))
		writeErrorResp(w, errors.ResponseForError(errors.E(errors.Permission, err)))
		return r, false
	}
	if user.ID == "" {
		writeErrorResp(w, errors.ResponseForError(errors.E(errors.NotLoggedIn)))
		return r, false
	}
	ctx = user.WithContext(ctx)

	// Decorate the logger with the user id
	logger = logger.With(zap.String("userid", user.ID))
	ctx = log.ToContext(ctx, logger)

	view, err := h.Service.UserResolve(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return r, false
	}
	ctx = withProfile(ctx, view)

	return r.WithContext(ctx), true
}

// newHealthHandler wraps Service.Health. It's public and never fails.
func newHealthHandler(service *service.Service) http.Handler {
	return prom.InstrumentHandler("Health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
			return service.Health(ctx), nil
		})
	}))
}

type profileKey struct{}

func withProfile(ctx context.Context, view todocal.UserView) context.Context {
	return context.WithValue(ctx, profileKey{}, view)
}

func profileFromContext(ctx context.Context) (todocal.UserView, bool) {
	view, ok := ctx.Value(profileKey{}).(todocal.UserView)
	return view, ok
}

// ShiftPath splits off the first component of p, which will be cleaned of
// relative components before processing. head will never contain a slash and
// tail will always be a rooted path without trailing slash.
func ShiftPath(p string) (head, tail string) {
	p = path.Clean("/" + p)
	i := strings.Index(p[1:], "/") + 1
	if i <= 0 {
		return p[1:], "/"
	}
	return p[1:i], p[i:]
}

func handleJSON(w http.ResponseWriter, r *http.Request, f func(context.Context) (interface{}, error)) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	resp, err := f(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	js, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		logger.Error("write json failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(js)
}

// writeError logs err and writes its client-facing Response.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := log.FromContext(ctx)

	errResp := errors.ResponseForError(err)
	if errResp.Status >= 500 {
		logger.Error("internal server error", zap.Error(err))
	} else {
		logger.Warn("handler failed", zap.Error(err))
	}

	writeErrorResp(w, errResp)
}

func writeErrorResp(w http.ResponseWriter, resp errors.Response) {
	js, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.Status)
	w.Write(js)
}
