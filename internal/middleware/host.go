package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"cookiejar/creator/internal/routing"
)

// HostRouter sends each request to the face of the site that serves it.
// Redirects are 302 and keep the query string. Dev hosts keep the scheme
// the request arrived with; other hosts use the configured scheme.
func HostRouter(router *routing.Router, scheme string) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := router.Route(c.Request.Host, c.Request.URL.Path)
		if decision.Kind != routing.Redirect {
			c.Next()
			return
		}

		target := url.URL{
			Scheme:   scheme,
			Host:     decision.Host,
			Path:     decision.Path,
			RawQuery: c.Request.URL.RawQuery,
		}
		if router.IsDevHost(decision.Host) {
			target.Scheme = requestScheme(c.Request)
		}
		c.Redirect(http.StatusFound, target.String())
		c.Abort()
	}
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
