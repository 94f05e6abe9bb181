package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cookiejar/creator/internal/admission"
	"cookiejar/creator/internal/models"
)

func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireAdmission gates an API group with the same admission table the
// dashboard page at pagePath uses. Where the page would redirect or block,
// the API answers with 401 or 403 JSON instead.
func RequireAdmission(pagePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		decision := admission.DecidePage(sess.Session, pagePath)

		switch {
		case decision.Kind == admission.Render:
			c.Next()
		case decision.Kind == admission.Redirect && decision.Path == admission.SignInPath:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		case decision.Kind == admission.Redirect:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":         "creator_not_approved",
				"creatorStatus": sess.Claims.CreatorStatus,
				"redirect":      decision.Path,
			})
		case decision.Screen == admission.ScreenSpinner:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session_loading"})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "creator_access_required"})
		}
	}
}

func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if !sess.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if _, ok := roleSet[models.UserRole(sess.Token.Role)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
