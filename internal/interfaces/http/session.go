package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

const userContextKey = "billed.user"

// TokenParser verifies session tokens
type TokenParser interface {
	Parse(token string) (entity.User, error)
}

// sessionMiddleware resolves the user from the session cookie or a Bearer
// token. Missing or invalid tokens yield the anonymous user.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(s.config.CookieName)
		}

		var user entity.User
		if token != "" && s.deps.Tokens != nil {
			parsed, err := s.deps.Tokens.Parse(token)
			if err != nil {
				s.logger.Warn("Ignoring invalid session token", "path", c.Request.URL.Path, "error", err)
			} else {
				user = parsed
				c.Request = c.Request.WithContext(port.ContextWithToken(c.Request.Context(), token))
			}
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// requireUser rejects anonymous API calls
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: "authentication required"})
			return
		}
		c.Next()
	}
}

// requirePageUser rejects anonymous page requests with the error page so
// that no page ever lists bills for an empty email
func (s *Server) requirePageUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).IsAnonymous() {
			s.renderError(c, activeBills, &entity.StatusError{StatusCode: http.StatusUnauthorized, Detail: "no session"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) entity.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(entity.User); ok {
			return user
		}
	}
	return entity.User{}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
