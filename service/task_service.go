package service

import (
	"context"
	"encoding/json"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/auth"
	"github.com/Binwin6724/todo-calender-be/errors"
)

// currentUser returns the authenticated user's id, or a NotLoggedIn error.
func currentUser(ctx context.Context, op errors.Op) (todocal.UserID, error) {
	id := auth.User(ctx).ID
	if id == "" {
		return "", errors.E(op, errors.NotLoggedIn)
	}
	return todocal.UserID(id), nil
}

// TaskList returns the user's tasks grouped by date key, with the user's
// completions under todocal.CompletionsKey when they have any.
func (s *Service) TaskList(ctx context.Context) (todocal.TaskList, error) {
	const op errors.Op = "Service.TaskList"

	userID, err := currentUser(ctx, op)
	if err != nil {
		return nil, err
	}

	docs, err := s.TaskStore.ListForUser(ctx, userID)
	if err != nil {
		return nil, errors.E(op, userID, errors.Internal, err)
	}

	buckets := map[string][]todocal.Task{}
	for _, doc := range docs {
		buckets[doc.DateKey] = append(buckets[doc.DateKey], doc.Task)
	}

	list := todocal.TaskList{}
	for dateKey, tasks := range buckets {
		list[dateKey] = tasks
	}

	completions, err := s.CompletionStore.Get(ctx, userID)
	if err != nil && !errors.Is(errors.NotExist, err) {
		return nil, errors.E(op, userID, errors.Internal, "get completions", err)
	}
	if err == nil && completions.Data != nil {
		list[todocal.CompletionsKey] = completions.Data
	}

	return list, nil
}

// TaskCreate adds a task to a date bucket. Task ids aren't checked for
// uniqueness.
func (s *Service) TaskCreate(ctx context.Context, req todocal.TaskCreateRequest) (todocal.MutationReply, error) {
	const op errors.Op = "Service.TaskCreate"

	userID, err := currentUser(ctx, op)
	if err != nil {
		return todocal.MutationReply{}, err
	}

	if req.DateKey == "" || len(req.Task) == 0 {
		return todocal.MutationReply{}, errors.E(op, userID, errors.Invalid, "dateKey and task are required")
	}

	now := s.now()
	id, err := s.TaskStore.Create(ctx, todocal.TaskDocument{
		UserID:    userID,
		DateKey:   req.DateKey,
		Task:      req.Task,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return todocal.MutationReply{}, errors.E(op, userID, errors.Internal, err)
	}

	return todocal.MutationReply{
		Success: true,
		ID:      id,
		Message: "Task created successfully",
	}, nil
}

// TaskUpdate replaces the task whose id matches req.Task's id. req.TaskIndex
// must be present but plays no part in finding the task.
func (s *Service) TaskUpdate(ctx context.Context, req todocal.TaskUpdateRequest) (todocal.MutationReply, error) {
	const op errors.Op = "Service.TaskUpdate"

	userID, err := currentUser(ctx, op)
	if err != nil {
		return todocal.MutationReply{}, err
	}

	if req.DateKey == "" || req.TaskIndex == nil || len(req.Task) == 0 {
		return todocal.MutationReply{}, errors.E(op, userID, errors.Invalid, "dateKey, taskIndex and task are required")
	}
	if _, ok := req.Task.ID(); !ok {
		return todocal.MutationReply{}, errors.E(op, userID, errors.Invalid, "task.id is required")
	}

	err = s.TaskStore.Update(ctx, userID, req.DateKey, req.Task, s.now())
	if errors.Is(errors.NotExist, err) {
		return todocal.MutationReply{}, errors.E(op, userID, err)
	}
	if err != nil {
		return todocal.MutationReply{}, errors.E(op, userID, errors.Internal, err)
	}

	return todocal.MutationReply{
		Success: true,
		Message: "Task updated successfully",
	}, nil
}

// TaskDelete removes one task from a date bucket. The bucket is sorted by task
// id and the task is chosen by req.TaskID when set, otherwise by position.
//
// There's no transaction between reading the bucket and deleting: a
// concurrent change to the bucket can shift positions under the caller.
func (s *Service) TaskDelete(ctx context.Context, req todocal.TaskDeleteRequest) (todocal.MutationReply, error) {
	const op errors.Op = "Service.TaskDelete"

	userID, err := currentUser(ctx, op)
	if err != nil {
		return todocal.MutationReply{}, err
	}

	if req.DateKey == "" || (req.TaskIndex == nil && req.TaskID == nil) {
		return todocal.MutationReply{}, errors.E(op, userID, errors.Invalid, "dateKey and taskIndex are required")
	}

	docs, err := s.TaskStore.ListBucket(ctx, userID, req.DateKey)
	if err != nil {
		return todocal.MutationReply{}, errors.E(op, userID, errors.Internal, err)
	}

	var target *todocal.TaskDocument
	if req.TaskID != nil {
		target = findByTaskID(docs, req.TaskID)
	} else if i := *req.TaskIndex; i >= 0 && i < len(docs) {
		target = &docs[i]
	}
	if target == nil {
		return todocal.MutationReply{}, errors.E(op, userID, errors.NotExist, "task not found")
	}

	err = s.TaskStore.Delete(ctx, userID, target.ID)
	if errors.Is(errors.NotExist, err) {
		return todocal.MutationReply{}, errors.E(op, userID, err)
	}
	if err != nil {
		return todocal.MutationReply{}, errors.E(op, userID, errors.Internal, err)
	}

	return todocal.MutationReply{
		Success: true,
		Message: "Task deleted successfully",
	}, nil
}

// findByTaskID returns the first document whose task id encodes to the same
// JSON as id, so 1 and 1.0 compare equal.
func findByTaskID(docs []todocal.TaskDocument, id interface{}) *todocal.TaskDocument {
	want, err := json.Marshal(id)
	if err != nil {
		return nil
	}
	for i := range docs {
		if got, ok := docs[i].Task.IDJSON(); ok && got == string(want) {
			return &docs[i]
		}
	}
	return nil
}
