package middleware

import (
	"github.com/gin-gonic/gin"

	"cookiejar/creator/internal/session"
)

const sessionContextKey = "session"

// Session resolves the request's session once and stores it on the context.
// It never aborts; gates further down the chain decide what to do with an
// unauthenticated session.
func Session(provider *session.Provider, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.TokenFromRequest(c.Request, cookieName)
		c.Set(sessionContextKey, provider.Resolve(c.Request.Context(), token))
		c.Next()
	}
}

// CurrentSession returns the resolved session, or an unauthenticated one if
// the Session middleware did not run.
func CurrentSession(c *gin.Context) session.Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if s, ok := v.(session.Session); ok {
			return s
		}
	}
	return session.Session{}
}
