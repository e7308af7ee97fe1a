package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/prom"
	"github.com/Binwin6724/todo-calender-be/service"
)

// AuthHandler lets clients check a token and fetch their resolved identity.
type AuthHandler struct {
	http.Handler // router

	service *service.Service
}

func newAuthHandler(service *service.Service) *AuthHandler {
	h := &AuthHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/verify",
		prom.InstrumentHandler("AuthVerify", http.HandlerFunc(h.HandleVerify)),
	).Methods("POST")
	h.Handler = m

	return h
}

// HandleVerify returns the profile resolved while authenticating the request.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		view, ok := profileFromContext(ctx)
		if !ok {
			var err error
			if view, err = h.service.UserResolve(ctx); err != nil {
				return nil, err
			}
		}
		return todocal.VerifyReply{Success: true, User: view}, nil
	})
}
