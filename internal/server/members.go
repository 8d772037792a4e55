package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type memberRequest struct {
	UserID int64 `json:"user_id" binding:"required,gt=0"`
}

// handleListMembers lists the board roster, creator first.
func (s *Server) handleListMembers(c *gin.Context) {
	boardID, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	members, err := s.svc.BoardMembers(c.Request.Context(), actor(c), boardID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, members)
}

// handleAddMember puts a user on the board roster.
func (s *Server) handleAddMember(c *gin.Context) {
	boardID, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	var req memberRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	members, err := s.svc.AddMember(c.Request.Context(), actor(c), boardID, req.UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, members)
}

// handleRemoveMember takes a user off the board roster.
func (s *Server) handleRemoveMember(c *gin.Context) {
	boardID, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := s.parseID(c, "user_id")
	if !ok {
		return
	}

	if err := s.svc.RemoveMember(c.Request.Context(), actor(c), boardID, userID); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
