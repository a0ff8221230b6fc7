package middlewares

import (
	"context"
	"net/http"

	"github.com/anylearn/anylearn/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie the login handler sets and this middleware
// reads.
const SessionCookie = "anylearn_session"

// Keep this small interface so tests can fake it easily.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (session.Session, error)
}

type SessionMiddleware struct {
	sessions SessionVerifier
}

func NewSessionMiddleware(sessions SessionVerifier) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// RequireSession resolves the session cookie against the server-side
// store and loads identity into the request context.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)

		if err != nil || token == "" {
			abortUnauthorized(c, "Missing session")
			return
		}

		sess, err := m.sessions.Verify(c.Request.Context(), token)

		if err != nil {
			abortUnauthorized(c, "Session is invalid or expired")
			return
		}

		c.Set(CtxUserID, sess.AccountID)
		c.Set(CtxRole, sess.Role)
		c.Set(CtxToken, token)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}
