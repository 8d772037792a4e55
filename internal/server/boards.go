package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/service"
)

type boardRequest struct {
	Title   string  `json:"title"`
	Members []int64 `json:"members"`
}

type boardPatchRequest struct {
	Title   *string  `json:"title"`
	Members *[]int64 `json:"members"`
}

// handleListBoards lists the boards of the caller.
func (s *Server) handleListBoards(c *gin.Context) {
	boards, err := s.svc.ListBoards(c.Request.Context(), actor(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, boards)
}

// handleCreateBoard creates a board owned by the caller.
func (s *Server) handleCreateBoard(c *gin.Context) {
	var req boardRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	board, err := s.svc.CreateBoard(c.Request.Context(), actor(c), service.BoardInput{
		Title:     req.Title,
		MemberIDs: req.Members,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, board)
}

// handleGetBoard returns a board with its members and tasks.
func (s *Server) handleGetBoard(c *gin.Context) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	board, err := s.svc.GetBoard(c.Request.Context(), actor(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, board)
}

// handleUpdateBoard renames a board or replaces its members.
func (s *Server) handleUpdateBoard(c *gin.Context) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	var req boardPatchRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	view, err := s.svc.UpdateBoard(c.Request.Context(), actor(c), id, service.BoardPatch{
		Title:     req.Title,
		MemberIDs: req.Members,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, view)
}

// handleDeleteBoard removes a board and everything on it.
func (s *Server) handleDeleteBoard(c *gin.Context) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	if err := s.svc.DeleteBoard(c.Request.Context(), actor(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
