package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Content string `json:"content"`
}

// handleListComments lists a task's comments oldest first.
func (s *Server) handleListComments(c *gin.Context) {
	taskID, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	comments, err := s.svc.ListComments(c.Request.Context(), actor(c), taskID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, comments)
}

// handleAddComment appends a comment to a task.
func (s *Server) handleAddComment(c *gin.Context) {
	taskID, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	comment, err := s.svc.AddComment(c.Request.Context(), actor(c), taskID, req.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, comment)
}

// handleDeleteTaskComment deletes a comment addressed through its task.
func (s *Server) handleDeleteTaskComment(c *gin.Context) {
	taskID, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := s.parseID(c, "comment_id")
	if !ok {
		return
	}
	s.deleteComment(c, taskID, commentID)
}

// handleDeleteComment deletes a comment by id.
func (s *Server) handleDeleteComment(c *gin.Context) {
	commentID, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	s.deleteComment(c, 0, commentID)
}

func (s *Server) deleteComment(c *gin.Context, taskID, commentID int64) {
	if err := s.svc.DeleteComment(c.Request.Context(), actor(c), taskID, commentID); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
