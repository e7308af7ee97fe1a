package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/prom"
	"github.com/Binwin6724/todo-calender-be/service"
)

// CompletionsHandler provides a REST interface to the completion state.
type CompletionsHandler struct {
	http.Handler // router

	service *service.Service
}

func newCompletionsHandler(service *service.Service) *CompletionsHandler {
	h := &CompletionsHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/",
		prom.InstrumentHandler("CompletionsSave", http.HandlerFunc(h.HandleSave)),
	).Methods("POST")
	h.Handler = m

	return h
}

// HandleSave wraps Service.CompletionsSave in a REST interface
func (h *CompletionsHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var req todocal.CompletionsSaveRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return h.service.CompletionsSave(ctx, req)
	})
}
