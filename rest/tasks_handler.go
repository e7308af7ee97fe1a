package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
	"github.com/Binwin6724/todo-calender-be/log"
	"github.com/Binwin6724/todo-calender-be/prom"
	"github.com/Binwin6724/todo-calender-be/service"
)

// TasksHandler provides a REST interface to the task functions. All four
// operations share the collection path; DELETE carries a JSON body.
type TasksHandler struct {
	http.Handler // router

	service *service.Service
}

func newTasksHandler(service *service.Service) *TasksHandler {
	h := &TasksHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/",
		prom.InstrumentHandler("TaskList", http.HandlerFunc(h.HandleList)),
	).Methods("GET")
	m.Handle(
		"/",
		prom.InstrumentHandler("TaskCreate", http.HandlerFunc(h.HandleCreate)),
	).Methods("POST")
	m.Handle(
		"/",
		prom.InstrumentHandler("TaskUpdate", http.HandlerFunc(h.HandleUpdate)),
	).Methods("PUT")
	m.Handle(
		"/",
		prom.InstrumentHandler("TaskDelete", http.HandlerFunc(h.HandleDelete)),
	).Methods("DELETE")
	h.Handler = m

	return h
}

// HandleList wraps Service.TaskList in a REST interface
func (h *TasksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.TaskList(ctx)
	})
}

// HandleCreate wraps Service.TaskCreate in a REST interface
func (h *TasksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var req todocal.TaskCreateRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return h.service.TaskCreate(ctx, req)
	})
}

// HandleUpdate wraps Service.TaskUpdate in a REST interface
func (h *TasksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var req todocal.TaskUpdateRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return h.service.TaskUpdate(ctx, req)
	})
}

// HandleDelete wraps Service.TaskDelete in a REST interface
func (h *TasksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var req todocal.TaskDeleteRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return h.service.TaskDelete(ctx, req)
	})
}

// decodeBody reads a JSON request body into v. A missing or malformed body is
// an Invalid error.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.E(errors.Invalid, "request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.FromContext(r.Context()).Info("decode request body failed", zap.Error(err))
		return errors.E(errors.Invalid, "malformed request body")
	}
	return nil
}
