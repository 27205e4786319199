package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/platemart/platemart/internal/core/platemart"
)

var errUnauthorize = errors.New("unauthorized")

func (s *Server) Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := s.checkAuth(c)
		if err != nil {
			c.Writer.WriteHeader(http.StatusUnauthorized)
			c.Abort()
		}

		c.Next()
	}
}

// AdminOnly gates administrative routes on the caller's stored role.
func (s *Server) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := s.checkAuth(c)
		if err != nil {
			c.Writer.WriteHeader(http.StatusUnauthorized)
			c.Abort()
			return
		}

		if _, err := s.service.RequireAdmin(c.Request.Context(), userID); err != nil {
			if errors.Is(err, platemart.ErrRoleNotAllowed) || errors.Is(err, platemart.ErrUserNotFound) {
				c.Writer.WriteHeader(http.StatusForbidden)
				c.Abort()
				return
			}
			s.log.Error("failed check role", zap.Error(err))
			c.Writer.WriteHeader(http.StatusInternalServerError)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (s *Server) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info(
			"Request",
			zap.String("uri", c.Request.RequestURI),
			zap.Duration("duration", time.Since(start)),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
		)
	}
}
