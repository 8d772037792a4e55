package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"taskboard/internal/access"
	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/storage/sqlite"
	"taskboard/internal/telemetry"
)

// BoardInput carries the fields of a new board.
type BoardInput struct {
	Title     string
	MemberIDs []int64
}

// BoardPatch carries a partial board update. A nil MemberIDs leaves the
// roster unchanged; a non-nil slice replaces the non-creator members.
type BoardPatch struct {
	Title     *string
	MemberIDs *[]int64
}

// ListBoards returns the boards the actor created or belongs to.
func (s *Service) ListBoards(ctx context.Context, actor models.User) (_ []models.BoardSummary, err error) {
	ctx, span := s.tracer.Start(ctx, "boards.List")
	defer telemetry.End(span, &err)

	return s.store.ListBoardSummaries(ctx, actor.ID)
}

// CreateBoard creates a board owned by actor. The creator is always part of
// the roster.
func (s *Service) CreateBoard(ctx context.Context, actor models.User, in BoardInput) (_ models.BoardSummary, err error) {
	ctx, span := s.tracer.Start(ctx, "boards.Create")
	defer telemetry.End(span, &err)

	title, err := validTitle(in.Title)
	if err != nil {
		return models.BoardSummary{}, err
	}
	if err := s.checkUsersExist(ctx, in.MemberIDs, "members"); err != nil {
		return models.BoardSummary{}, err
	}

	board, err := s.store.CreateBoard(ctx, actor.ID, title, in.MemberIDs)
	if err != nil {
		return models.BoardSummary{}, err
	}
	span.SetAttributes(attribute.Int64("board.id", board.ID))
	s.logger.Info("board created", slog.Int64("board_id", board.ID), slog.Int64("owner_id", actor.ID))
	return s.store.GetBoardSummary(ctx, board.ID)
}

// GetBoard returns the detail view of a board to one of its members.
func (s *Service) GetBoard(ctx context.Context, actor models.User, boardID int64) (_ models.BoardDetail, err error) {
	ctx, span := s.tracer.Start(ctx, "boards.Get")
	defer telemetry.End(span, &err)

	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return models.BoardDetail{}, err
	}
	if !access.IsBoardMember(actor, board) {
		return models.BoardDetail{}, apperr.Permission("You are not a member of this board.")
	}
	members, err := s.store.BoardMembers(ctx, board.ID)
	if err != nil {
		return models.BoardDetail{}, err
	}
	tasks, err := s.store.ListBoardTasks(ctx, board.ID)
	if err != nil {
		return models.BoardDetail{}, err
	}
	return models.BoardDetail{
		ID:      board.ID,
		Title:   board.Title,
		OwnerID: board.OwnerID,
		Members: members,
		Tasks:   tasks,
	}, nil
}

// UpdateBoard renames a board and/or replaces its members. Creator only.
func (s *Service) UpdateBoard(ctx context.Context, actor models.User, boardID int64, patch BoardPatch) (_ models.BoardOwnerView, err error) {
	ctx, span := s.tracer.Start(ctx, "boards.Update")
	defer telemetry.End(span, &err)

	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return models.BoardOwnerView{}, err
	}
	if !access.IsBoardCreator(actor, board) {
		return models.BoardOwnerView{}, apperr.Permission("Only the board creator can modify this board.")
	}

	var upd sqlite.BoardUpdate
	if patch.Title != nil {
		title, err := validTitle(*patch.Title)
		if err != nil {
			return models.BoardOwnerView{}, err
		}
		upd.Title = &title
	}
	if patch.MemberIDs != nil {
		if err := s.checkUsersExist(ctx, *patch.MemberIDs, "members"); err != nil {
			return models.BoardOwnerView{}, err
		}
		upd.MemberIDs = *patch.MemberIDs
		upd.ReplaceMembers = true
	}

	if _, err := s.store.UpdateBoard(ctx, board.ID, upd); err != nil {
		return models.BoardOwnerView{}, err
	}
	members, err := s.store.BoardMembers(ctx, board.ID)
	if err != nil {
		return models.BoardOwnerView{}, err
	}
	view := models.BoardOwnerView{ID: board.ID, Title: board.Title, MembersData: members}
	if upd.Title != nil {
		view.Title = *upd.Title
	}
	for _, m := range members {
		if m.ID == board.OwnerID {
			view.OwnerData = m
		}
	}
	return view, nil
}

// DeleteBoard removes a board with its tasks and comments. Creator only.
func (s *Service) DeleteBoard(ctx context.Context, actor models.User, boardID int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "boards.Delete")
	defer telemetry.End(span, &err)

	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}
	if !access.IsBoardCreator(actor, board) {
		return apperr.Permission("Only the board creator can delete this board.")
	}
	if err := s.store.DeleteBoard(ctx, board.ID); err != nil {
		return err
	}
	s.logger.Info("board deleted", slog.Int64("board_id", board.ID), slog.Int64("actor_id", actor.ID))
	return nil
}

// BoardMembers lists the roster, creator first.
func (s *Service) BoardMembers(ctx context.Context, actor models.User, boardID int64) (_ []models.UserCompact, err error) {
	ctx, span := s.tracer.Start(ctx, "boards.Members")
	defer telemetry.End(span, &err)

	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !access.IsBoardMember(actor, board) {
		return nil, apperr.Permission("You are not a member of this board.")
	}
	return s.store.BoardMembers(ctx, board.ID)
}

// AddMember puts targetID on the roster. Creator only.
func (s *Service) AddMember(ctx context.Context, actor models.User, boardID, targetID int64) (_ []models.UserCompact, err error) {
	ctx, span := s.tracer.Start(ctx, "boards.AddMember")
	defer telemetry.End(span, &err)

	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !access.IsBoardCreator(actor, board) {
		return nil, apperr.Permission("Only the board creator can add members.")
	}
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return nil, err
	}
	if access.IsMemberID(targetID, board) {
		return nil, apperr.Conflict(apperr.CodeAlreadyMember, "User is already a board member.").WithField("user_id")
	}
	if err := s.store.AddMember(ctx, board.ID, targetID); err != nil {
		return nil, err
	}
	return s.store.BoardMembers(ctx, board.ID)
}

// RemoveMember takes targetID off the roster. Creator only; the creator
// cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, actor models.User, boardID, targetID int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "boards.RemoveMember")
	defer telemetry.End(span, &err)

	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}
	if !access.IsBoardCreator(actor, board) {
		return apperr.Permission("Only the board creator can remove members.")
	}
	if targetID == board.OwnerID {
		return apperr.Validation(apperr.CodeCreatorRemoval, "The board creator cannot be removed.").WithField("user_id")
	}
	if !access.IsMemberID(targetID, board) {
		return apperr.NotFound("user is not a board member")
	}
	return s.store.RemoveMember(ctx, board.ID, targetID)
}

func (s *Service) checkUsersExist(ctx context.Context, ids []int64, field string) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.store.MissingUsers(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperr.Validation(apperr.CodeInvalidInput, fmt.Sprintf("Unknown user id %d.", missing[0])).WithField(field)
	}
	return nil
}

func validTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", apperr.Validation(apperr.CodeInvalidInput, "Title is required.").WithField("title")
	}
	if len([]rune(title)) > maxTitleLength {
		return "", apperr.Validation(apperr.CodeInvalidInput, fmt.Sprintf("Title must be at most %d characters.", maxTitleLength)).WithField("title")
	}
	return title, nil
}
