package service

import (
	"context"
	"log/slog"
	"strings"

	"taskboard/internal/access"
	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/telemetry"
)

// AddComment appends a comment to a task on a board the actor belongs to.
func (s *Service) AddComment(ctx context.Context, actor models.User, taskID int64, content string) (_ models.Comment, err error) {
	ctx, span := s.tracer.Start(ctx, "comments.Add")
	defer telemetry.End(span, &err)

	task, _, err := s.accessibleTask(ctx, actor, taskID)
	if err != nil {
		return models.Comment{}, err
	}
	if strings.TrimSpace(content) == "" {
		return models.Comment{}, apperr.Validation(apperr.CodeEmptyComment, "Comment content must not be empty.").WithField("content")
	}
	return s.store.CreateComment(ctx, task.ID, actor.ID, content)
}

// ListComments returns a task's comments oldest first.
func (s *Service) ListComments(ctx context.Context, actor models.User, taskID int64) (_ []models.Comment, err error) {
	ctx, span := s.tracer.Start(ctx, "comments.List")
	defer telemetry.End(span, &err)

	task, _, err := s.accessibleTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, task.ID)
}

// DeleteComment removes a comment. A non-zero taskID additionally requires
// the comment to belong to that task.
func (s *Service) DeleteComment(ctx context.Context, actor models.User, taskID, commentID int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "comments.Delete")
	defer telemetry.End(span, &err)

	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if taskID != 0 && comment.TaskID != taskID {
		return apperr.NotFound("comment not found")
	}
	task, err := s.store.GetTask(ctx, comment.TaskID)
	if err != nil {
		return err
	}
	board, err := s.store.GetBoard(ctx, task.BoardID)
	if err != nil {
		return err
	}
	if !access.CanDeleteComment(actor, comment, board, s.commentPolicy) {
		return apperr.Permission("Only the author can delete this comment.")
	}
	if err := s.store.DeleteComment(ctx, comment.ID); err != nil {
		return err
	}
	s.logger.Info("comment deleted", slog.Int64("comment_id", comment.ID), slog.Int64("actor_id", actor.ID))
	return nil
}
