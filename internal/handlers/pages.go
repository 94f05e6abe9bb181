package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"cookiejar/creator/internal/admission"
	"cookiejar/creator/internal/middleware"
)

const accessDeniedMessage = "This dashboard is for game creators. Sign up as a creator to publish games."

// Landing is the public marketing page. The creator host never reaches it.
func (h HandlerSet) Landing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":          "landing",
		"creatorPortal": h.siteURL(h.cfg.Hosts.Creator, admission.OverviewPath),
	})
}

func (h HandlerSet) DashboardIndex(c *gin.Context) {
	c.Redirect(http.StatusFound, admission.OverviewPath)
}

// DashboardPage applies the admission table to a dashboard page.
func (h HandlerSet) DashboardPage(c *gin.Context) {
	path := "/dashboard/" + c.Param("page")
	sess := middleware.CurrentSession(c)
	decision := admission.DecidePage(sess.Session, path)

	switch decision.Kind {
	case admission.Render:
		page, ok := admission.LookupPage(path)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "page_not_found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"page":    page.Name,
			"path":    page.Path,
			"session": toSession(sess),
		})
	case admission.Redirect:
		c.Redirect(http.StatusFound, decision.Path)
	default:
		h.writeBlock(c, decision.Screen)
	}
}

// Admission lets a client ask what a page would do for the current session
// without loading it.
func (h HandlerSet) Admission(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "path is required"})
		return
	}

	decision := admission.DecidePage(middleware.CurrentSession(c).Session, path)
	resp := gin.H{"decision": decision.Kind.String()}
	switch decision.Kind {
	case admission.Redirect:
		resp["path"] = decision.Path
	case admission.Block:
		resp["screen"] = string(decision.Screen)
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) writeBlock(c *gin.Context, screen admission.Screen) {
	if screen == admission.ScreenSpinner {
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"screen": string(screen)})
		return
	}
	c.JSON(http.StatusForbidden, gin.H{
		"screen":  string(screen),
		"message": accessDeniedMessage,
		"homeUrl": h.siteURL(h.cfg.Hosts.Public, "/"),
	})
}

func (h HandlerSet) siteURL(host, path string) string {
	scheme := h.cfg.Hosts.Scheme
	if scheme == "" {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: host, Path: path}
	return u.String()
}
