package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/avatar"
	"github.com/Binwin6724/todo-calender-be/prom"
	"github.com/Binwin6724/todo-calender-be/service"
)

// imageCacheControl lets browsers keep images forever. A new image gets a new
// hash, and clients learn about it through the identity they fetch on login.
const imageCacheControl = "public, max-age=31536000, immutable"

// UsersHandler serves stored profile images. It doesn't require
// authentication.
type UsersHandler struct {
	http.Handler // router

	service *service.Service
}

func newUsersHandler(service *service.Service) *UsersHandler {
	h := &UsersHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/image/{userId}",
		prom.InstrumentHandler("UserImage", http.HandlerFunc(h.HandleImage)),
	).Methods("GET", "HEAD")
	h.Handler = m

	return h
}

// HandleImage wraps Service.UserImage, writing the raw image bytes.
func (h *UsersHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mux.Vars(r)["userId"]

	img, err := h.service.UserImage(ctx, todocal.UserID(userID))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	etag := avatar.ETag(img.Hash)
	w.Header().Set("Cache-Control", imageCacheControl)
	w.Header().Set("ETag", etag)

	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	if r.Method == http.MethodHead {
		return
	}
	w.Write(img.Data)
}

// etagMatch reports whether an If-None-Match header value names etag.
func etagMatch(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}
