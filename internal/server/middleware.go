package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard/internal/apperr"
	"taskboard/internal/auth"
	"taskboard/internal/models"
	"taskboard/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	principalKey    = "principal"

	maxBodyBytes = 1 << 20
)

// requestID tags every request with an id, reusing the caller's when given.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// limitBody caps how much of a request body handlers may read.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// authenticate resolves the bearer token and stores the principal on the
// context. Requests without a valid token stop here with 401.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			s.respondError(c, apperr.Wrap(apperr.KindAuth, apperr.CodeUnauthenticated,
				"Authentication credentials were not provided.", err))
			return
		}
		p, err := s.svc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func principal(c *gin.Context) service.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(service.Principal)
	return p
}

// actor is the authenticated user of the request.
func actor(c *gin.Context) models.User {
	return principal(c).User
}
