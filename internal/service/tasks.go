package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"taskboard/internal/access"
	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/storage/sqlite"
	"taskboard/internal/telemetry"
)

// TaskInput carries the fields of a new task. Empty status and priority take
// their defaults.
type TaskInput struct {
	BoardID     int64
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	AssigneeID  *int64
	ReviewerID  *int64
	DueDate     string
}

// TaskPatch carries a partial task update. Nil fields are left alone; the
// Set flags distinguish an explicit null from an absent field.
type TaskPatch struct {
	BoardID     *int64
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *string
	AssigneeSet bool
	AssigneeID  *int64
	ReviewerSet bool
	ReviewerID  *int64
}

// TaskFilter selects the tasks listed for the actor.
type TaskFilter = sqlite.TaskFilter

const (
	TasksInvolving = sqlite.TasksInvolving
	TasksAssigned  = sqlite.TasksAssigned
	TasksReviewing = sqlite.TasksReviewing
)

// CreateTask adds a task to a board the actor belongs to.
func (s *Service) CreateTask(ctx context.Context, actor models.User, in TaskInput) (_ models.Task, err error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Create")
	defer telemetry.End(span, &err)

	board, err := s.store.GetBoard(ctx, in.BoardID)
	if err != nil {
		return models.Task{}, err
	}
	if !access.IsBoardMember(actor, board) {
		return models.Task{}, apperr.Permission("You must be a member of the board to create tasks.")
	}

	title, err := validTitle(in.Title)
	if err != nil {
		return models.Task{}, err
	}
	if err := validDescription(in.Description); err != nil {
		return models.Task{}, err
	}
	task := models.Task{
		BoardID:     board.ID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		ReviewerID:  in.ReviewerID,
		CreatedBy:   actor.ID,
	}
	if task.Status == "" {
		task.Status = models.StatusToDo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if err := validEnums(task.Status, task.Priority); err != nil {
		return models.Task{}, err
	}
	if strings.TrimSpace(in.DueDate) == "" {
		return models.Task{}, apperr.Validation(apperr.CodeInvalidInput, "Due date is required.").WithField("due_date")
	}
	if task.DueDate, err = validDueDate(in.DueDate); err != nil {
		return models.Task{}, err
	}
	if err := checkOnBoard(board, in.AssigneeID, "assignee_id"); err != nil {
		return models.Task{}, err
	}
	if err := checkOnBoard(board, in.ReviewerID, "reviewer_id"); err != nil {
		return models.Task{}, err
	}

	created, err := s.store.CreateTask(ctx, task)
	if err != nil {
		return models.Task{}, err
	}
	span.SetAttributes(attribute.Int64("task.id", created.ID), attribute.Int64("board.id", board.ID))
	s.logger.Info("task created", slog.Int64("task_id", created.ID), slog.Int64("board_id", board.ID), slog.Int64("actor_id", actor.ID))
	return created, nil
}

// GetTask returns a task to a member of its board.
func (s *Service) GetTask(ctx context.Context, actor models.User, taskID int64) (_ models.Task, err error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Get")
	defer telemetry.End(span, &err)

	task, _, err := s.accessibleTask(ctx, actor, taskID)
	return task, err
}

// UpdateTask applies patch to a task. Any board member may update.
func (s *Service) UpdateTask(ctx context.Context, actor models.User, taskID int64, patch TaskPatch) (_ models.Task, err error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Update")
	defer telemetry.End(span, &err)

	task, board, err := s.accessibleTask(ctx, actor, taskID)
	if err != nil {
		return models.Task{}, err
	}

	if patch.BoardID != nil && *patch.BoardID != task.BoardID {
		return models.Task{}, apperr.Validation(apperr.CodeInvalidInput, "A task cannot be moved to another board.").WithField("board")
	}
	ch := sqlite.TaskChanges{
		Status:      patch.Status,
		Priority:    patch.Priority,
		AssigneeSet: patch.AssigneeSet,
		AssigneeID:  patch.AssigneeID,
		ReviewerSet: patch.ReviewerSet,
		ReviewerID:  patch.ReviewerID,
	}
	if patch.Title != nil {
		title, err := validTitle(*patch.Title)
		if err != nil {
			return models.Task{}, err
		}
		ch.Title = &title
	}
	if patch.Description != nil {
		if err := validDescription(*patch.Description); err != nil {
			return models.Task{}, err
		}
		ch.Description = patch.Description
	}
	status, priority := task.Status, task.Priority
	if patch.Status != nil {
		status = *patch.Status
	}
	if patch.Priority != nil {
		priority = *patch.Priority
	}
	if err := validEnums(status, priority); err != nil {
		return models.Task{}, err
	}
	if patch.DueDate != nil {
		due, err := validDueDate(*patch.DueDate)
		if err != nil {
			return models.Task{}, err
		}
		ch.DueDate = &due
	}
	if patch.AssigneeSet {
		if err := checkOnBoard(board, patch.AssigneeID, "assignee_id"); err != nil {
			return models.Task{}, err
		}
	}
	if patch.ReviewerSet {
		if err := checkOnBoard(board, patch.ReviewerID, "reviewer_id"); err != nil {
			return models.Task{}, err
		}
	}

	return s.store.UpdateTask(ctx, task.ID, ch)
}

// DeleteTask removes a task. Allowed for the board creator and the task's
// creator.
func (s *Service) DeleteTask(ctx context.Context, actor models.User, taskID int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Delete")
	defer telemetry.End(span, &err)

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	board, err := s.store.GetBoard(ctx, task.BoardID)
	if err != nil {
		return err
	}
	if !access.CanDeleteTask(actor, task, board) {
		return apperr.Permission("Only the board creator or the task creator can delete this task.")
	}
	if err := s.store.DeleteTask(ctx, task.ID); err != nil {
		return err
	}
	s.logger.Info("task deleted", slog.Int64("task_id", task.ID), slog.Int64("actor_id", actor.ID))
	return nil
}

// ListBoardTasks lists the tasks of a board the actor belongs to.
func (s *Service) ListBoardTasks(ctx context.Context, actor models.User, boardID int64) (_ []models.Task, err error) {
	ctx, span := s.tracer.Start(ctx, "tasks.ListBoard")
	defer telemetry.End(span, &err)

	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !access.IsBoardMember(actor, board) {
		return nil, apperr.Permission("You are not a member of this board.")
	}
	return s.store.ListBoardTasks(ctx, board.ID)
}

// ListMyTasks lists the actor's tasks matching filter.
func (s *Service) ListMyTasks(ctx context.Context, actor models.User, filter TaskFilter) (_ []models.Task, err error) {
	ctx, span := s.tracer.Start(ctx, "tasks.ListMine")
	defer telemetry.End(span, &err)

	return s.store.ListUserTasks(ctx, actor.ID, filter)
}

// accessibleTask loads a task and its board and checks the actor may use it.
func (s *Service) accessibleTask(ctx context.Context, actor models.User, taskID int64) (models.Task, models.Board, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return models.Task{}, models.Board{}, err
	}
	board, err := s.store.GetBoard(ctx, task.BoardID)
	if err != nil {
		return models.Task{}, models.Board{}, err
	}
	if !access.CanAccessTask(actor, task, board) {
		return models.Task{}, models.Board{}, apperr.Permission("You are not a member of this task's board.")
	}
	return task, board, nil
}

func checkOnBoard(board models.Board, userID *int64, field string) error {
	if userID == nil {
		return nil
	}
	if !access.IsMemberID(*userID, board) {
		return apperr.Validation(apperr.CodeNotMember, fmt.Sprintf("User %d is not a member of this board.", *userID)).WithField(field)
	}
	return nil
}

func validEnums(status models.TaskStatus, priority models.TaskPriority) error {
	if !status.Valid() {
		return apperr.Validation(apperr.CodeInvalidInput, fmt.Sprintf("Unknown status %q.", status)).WithField("status")
	}
	if !priority.Valid() {
		return apperr.Validation(apperr.CodeInvalidInput, fmt.Sprintf("Unknown priority %q.", priority)).WithField("priority")
	}
	return nil
}

func validDescription(raw string) error {
	if len([]rune(strings.TrimSpace(raw))) > maxDescriptionLength {
		return apperr.Validation(apperr.CodeInvalidInput, fmt.Sprintf("Description must be at most %d characters.", maxDescriptionLength)).WithField("description")
	}
	return nil
}

func validDueDate(raw string) (string, error) {
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", apperr.Validation(apperr.CodeInvalidInput, "Due date must be formatted as YYYY-MM-DD.").WithField("due_date")
	}
	return d.Format(models.DateLayout), nil
}
