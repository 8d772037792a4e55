package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskboard/internal/apperr"
	"taskboard/internal/service"
)

// Server provides HTTP handlers for the task board backend.
type Server struct {
	engine    *gin.Engine
	svc       *service.Service
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(svc *service.Service, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	registerJSONFieldNames()
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(limitBody(maxBodyBytes))
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:    router,
		svc:       svc,
		logger:    logger,
		staticDir: staticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.POST("/registration", s.handleRegister)
		api.POST("/login", s.handleLogin)

		authed := api.Group("", s.authenticate())
		authed.POST("/logout", s.handleLogout)
		authed.GET("/me", s.handleMe)
		authed.GET("/email-check", s.handleEmailCheck)

		boards := authed.Group("/boards")
		{
			boards.GET("", s.handleListBoards)
			boards.POST("", s.handleCreateBoard)
			boards.GET(":id", s.handleGetBoard)
			boards.PATCH(":id", s.handleUpdateBoard)
			boards.DELETE(":id", s.handleDeleteBoard)
			boards.GET(":id/members", s.handleListMembers)
			boards.POST(":id/members", s.handleAddMember)
			boards.DELETE(":id/members/:user_id", s.handleRemoveMember)
			boards.GET(":id/tasks", s.handleListBoardTasks)
			boards.POST(":id/tasks", s.handleCreateBoardTask)
		}

		tasks := authed.Group("/tasks")
		{
			tasks.GET("", s.handleListMyTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.GET("/assigned-to-me", s.handleAssignedToMe)
			tasks.GET("/reviewing", s.handleReviewing)
			tasks.GET(":id", s.handleGetTask)
			tasks.PATCH(":id", s.handleUpdateTask)
			tasks.DELETE(":id", s.handleDeleteTask)
			tasks.GET(":id/comments", s.handleListComments)
			tasks.POST(":id/comments", s.handleAddComment)
			tasks.DELETE(":id/comments/:comment_id", s.handleDeleteTaskComment)
		}

		authed.DELETE("/comments/:id", s.handleDeleteComment)
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.svc.Ping(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func (s *Server) parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.respondError(c, apperr.NotFound("invalid identifier"))
		return 0, false
	}
	return id, true
}

// respondError logs the error and returns a JSON payload. The status follows
// the error kind; unclassified errors become 500 without leaking details.
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	body := gin.H{}
	e, ok := apperr.As(err)
	if ok && e.Kind != apperr.KindInternal {
		body["error"] = e.Message
		body["code"] = e.Code
		if e.Field != "" {
			body["field"] = e.Field
		}
	} else {
		body["error"] = "internal server error"
		body["code"] = apperr.CodeInternal
	}

	attrs := []any{
		slog.String("path", c.FullPath()),
		slog.Int("status", status),
		slog.Any("code", body["code"]),
		slog.String("error", err.Error()),
		slog.String("request_id", c.GetString(requestIDKey)),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", attrs...)
	} else {
		s.logger.Warn("request failed", attrs...)
	}
	c.AbortWithStatusJSON(status, body)
}

// respondSuccess writes payload, or only the status when payload is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
