package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/service"
)

type registerRequest struct {
	Fullname         string `json:"fullname" binding:"required,max=150"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required"`
	RepeatedPassword string `json:"repeated_password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func sessionResponse(sess service.Session) gin.H {
	return gin.H{
		"token":      sess.Token,
		"fullname":   sess.User.Fullname,
		"email":      sess.User.Email,
		"user_id":    sess.User.ID,
		"expires_at": sess.ExpiresAt,
	}
}

// handleRegister creates an account and returns a token for it.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	sess, err := s.svc.Register(c.Request.Context(), service.RegisterInput{
		Fullname:         req.Fullname,
		Email:            req.Email,
		Password:         req.Password,
		RepeatedPassword: req.RepeatedPassword,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, sessionResponse(sess))
}

// handleLogin exchanges credentials for a token.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	sess, err := s.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, sessionResponse(sess))
}

// handleLogout revokes the presented token.
func (s *Server) handleLogout(c *gin.Context) {
	if err := s.svc.Logout(c.Request.Context(), principal(c)); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}

// handleMe returns the authenticated user.
func (s *Server) handleMe(c *gin.Context) {
	user := actor(c)
	respondSuccess(c, http.StatusOK, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"fullname": user.Fullname,
		"initials": user.Initials(),
	})
}

// handleEmailCheck looks up a user by email, typically before adding them to
// a board.
func (s *Server) handleEmailCheck(c *gin.Context) {
	user, err := s.svc.EmailCheck(c.Request.Context(), actor(c), c.Query("email"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user.Compact())
}
