package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/service"
)

type taskRequest struct {
	Board       *int64 `json:"board"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	AssigneeID  *int64 `json:"assignee_id"`
	ReviewerID  *int64 `json:"reviewer_id"`
	DueDate     string `json:"due_date"`
}

func (r taskRequest) input(boardID int64) service.TaskInput {
	return service.TaskInput{
		BoardID:     boardID,
		Title:       r.Title,
		Description: r.Description,
		Status:      models.TaskStatus(r.Status),
		Priority:    models.TaskPriority(r.Priority),
		AssigneeID:  r.AssigneeID,
		ReviewerID:  r.ReviewerID,
		DueDate:     r.DueDate,
	}
}

type taskPatchRequest struct {
	Board       *int64     `json:"board"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssigneeID  optionalID `json:"assignee_id"`
	ReviewerID  optionalID `json:"reviewer_id"`
	DueDate     *string    `json:"due_date"`
}

func (r taskPatchRequest) patch() service.TaskPatch {
	p := service.TaskPatch{
		BoardID:     r.Board,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		AssigneeSet: r.AssigneeID.Set,
		AssigneeID:  r.AssigneeID.Value,
		ReviewerSet: r.ReviewerID.Set,
		ReviewerID:  r.ReviewerID.Value,
	}
	if r.Status != nil {
		status := models.TaskStatus(*r.Status)
		p.Status = &status
	}
	if r.Priority != nil {
		priority := models.TaskPriority(*r.Priority)
		p.Priority = &priority
	}
	return p
}

// handleListBoardTasks lists the tasks of one board.
func (s *Server) handleListBoardTasks(c *gin.Context) {
	boardID, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	tasks, err := s.svc.ListBoardTasks(c.Request.Context(), actor(c), boardID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleCreateBoardTask creates a task on the board named in the path.
func (s *Server) handleCreateBoardTask(c *gin.Context) {
	boardID, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	var req taskRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	if req.Board != nil && *req.Board != boardID {
		s.respondError(c, apperr.Validation(apperr.CodeInvalidInput, "Board in the body does not match the path.").WithField("board"))
		return
	}
	s.createTask(c, req.input(boardID))
}

// handleCreateTask creates a task on the board named in the body.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	if req.Board == nil {
		s.respondError(c, apperr.Validation(apperr.CodeInvalidInput, "This field is required: board.").WithField("board"))
		return
	}
	s.createTask(c, req.input(*req.Board))
}

func (s *Server) createTask(c *gin.Context, in service.TaskInput) {
	task, err := s.svc.CreateTask(c.Request.Context(), actor(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, task)
}

// handleListMyTasks lists tasks the caller created, works on or reviews.
func (s *Server) handleListMyTasks(c *gin.Context) {
	s.listMyTasks(c, service.TasksInvolving)
}

// handleAssignedToMe lists tasks assigned to the caller.
func (s *Server) handleAssignedToMe(c *gin.Context) {
	s.listMyTasks(c, service.TasksAssigned)
}

// handleReviewing lists tasks the caller reviews.
func (s *Server) handleReviewing(c *gin.Context) {
	s.listMyTasks(c, service.TasksReviewing)
}

func (s *Server) listMyTasks(c *gin.Context, filter service.TaskFilter) {
	tasks, err := s.svc.ListMyTasks(c.Request.Context(), actor(c), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleGetTask returns one task.
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	task, err := s.svc.GetTask(c.Request.Context(), actor(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleUpdateTask updates task fields such as status or assignee.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	var req taskPatchRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	task, err := s.svc.UpdateTask(c.Request.Context(), actor(c), id, req.patch())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleDeleteTask removes a task and its comments.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	if err := s.svc.DeleteTask(c.Request.Context(), actor(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
