package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookie names the cookie holding the session token
const SessionCookie = "ra_session"

const sessionIDKey = "session_id"

// SessionIssuer creates and validates session tokens
type SessionIssuer interface {
	Issue() (id string, token string, err error)
	Validate(token string) (string, error)
}

// SessionOptions control the session cookie
type SessionOptions struct {
	Secure bool
	MaxAge int
}

// Session resolves the caller's session from its cookie, starting a new one
// when the cookie is missing or invalid.
func Session(issuer SessionIssuer, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			if id, err := issuer.Validate(token); err == nil {
				c.Set(sessionIDKey, id)
				c.Next()
				return
			}
		}

		id, token, err := issuer.Issue()
		if err != nil {
			AbortWithError(c, http.StatusInternalServerError, "failed to start session")
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, token, opts.MaxAge, "/", "", opts.Secure, true)
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// GetSessionID returns the session id resolved by Session.
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
