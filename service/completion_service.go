package service

import (
	"context"

	todocal "github.com/Binwin6724/todo-calender-be"
	"github.com/Binwin6724/todo-calender-be/errors"
)

// CompletionsSave replaces the user's completion state. The last save wins;
// nothing is merged.
func (s *Service) CompletionsSave(ctx context.Context, req todocal.CompletionsSaveRequest) (todocal.MutationReply, error) {
	const op errors.Op = "Service.CompletionsSave"

	userID, err := currentUser(ctx, op)
	if err != nil {
		return todocal.MutationReply{}, err
	}

	if req.Completions == nil {
		return todocal.MutationReply{}, errors.E(op, userID, errors.Invalid, "completions are required")
	}

	err = s.CompletionStore.Save(ctx, todocal.CompletionsDocument{
		Type:      todocal.CompletionsType,
		UserID:    userID,
		Data:      req.Completions,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return todocal.MutationReply{}, errors.E(op, userID, errors.Internal, err)
	}

	return todocal.MutationReply{
		Success: true,
		Message: "Completions saved successfully",
	}, nil
}
