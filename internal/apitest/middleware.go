package apitest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/branchd-dev/storefront/internal/models"
)

const (
	bearerPrefix = "Bearer "
	userKey      = "user"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
)

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// jwtAuthMiddleware validates the bearer token and loads its user
func (s *Server) jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			var message string
			switch err {
			case ErrMissingAuthHeader:
				message = "Missing authorization header"
			case ErrInvalidAuthFormat:
				message = "Invalid authorization header format"
			case ErrEmptyToken:
				message = "Empty token"
			}
			fail(c, http.StatusUnauthorized, message)
			return
		}

		claims, err := s.issuer.ValidateToken(token)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to validate JWT token")
			fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.Lock()
		acc, found := s.accounts[claims.UserID]
		var user models.User
		if found {
			user = acc.user
		}
		s.mu.Unlock()

		if !found {
			fail(c, http.StatusUnauthorized, "User not found")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// adminOnly ensures the authenticated user is an admin
func (s *Server) adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := currentUser(c)
		if !exists {
			fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !user.IsAdmin() {
			fail(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (models.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
