package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parseview/internal/config"
	"parseview/internal/domain"
)

const (
	ContextKeySessionID = "session_id"
	HeaderSessionID     = "X-Session-ID"
)

// Session resolves the caller's session from the X-Session-ID header or the
// session cookie. Missing or malformed identifiers are replaced with a fresh one.
// The resolved identifier is echoed in the response header and cookie.
func Session(cfg *config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderSessionID)
		if id == "" {
			id, _ = c.Cookie(cfg.CookieName)
		}
		if domain.ValidateSessionID(id) != nil {
			id = domain.NewSessionID()
		}

		c.Set(ContextKeySessionID, id)
		c.Header(HeaderSessionID, id)
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     cfg.CookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(cfg.MaxAge.Seconds()),
			Secure:   cfg.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		c.Next()
	}
}

// GetSessionID extracts the session ID from the Gin context.
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}
