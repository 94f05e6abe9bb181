package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cookiejar/creator/internal/admission"
	"cookiejar/creator/internal/middleware"
	"cookiejar/creator/internal/service"
	"cookiejar/creator/internal/session"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Creator  bool   `json:"creator"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Profile profileResponse `json:"profile"`
}

func (h HandlerSet) SignUp(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Creator:  req.Creator,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.sendAuth(c, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.sendAuth(c, http.StatusOK, result)
}

func (h HandlerSet) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := h.auth.Logout(c.Request.Context(), sess.Token); err != nil {
		h.writeError(c, err)
		return
	}

	http.SetCookie(c.Writer, session.ExpiredCookie(h.cfg.Security.SessionCookie, h.cfg.SecureCookies()))
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) CurrentSession(c *gin.Context) {
	c.JSON(http.StatusOK, toSession(middleware.CurrentSession(c)))
}

// RefreshSession re-reads the profile and re-issues the session so the
// cached creator status matches the stored one.
func (h HandlerSet) RefreshSession(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	result, err := h.auth.Refresh(c.Request.Context(), sess.Token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.sendAuth(c, http.StatusOK, result)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess := middleware.CurrentSession(c)
	err := h.auth.ChangePassword(c.Request.Context(), sess.Claims.UserID, service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SignIn serves the sign-in page, or skips it for a signed-in visitor.
func (h HandlerSet) SignIn(c *gin.Context) {
	if middleware.CurrentSession(c).Authenticated() {
		c.Redirect(http.StatusFound, admission.OverviewPath)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": "signin"})
}

func (h HandlerSet) sendAuth(c *gin.Context, status int, result service.AuthResult) {
	http.SetCookie(c.Writer, session.NewCookie(
		h.cfg.Security.SessionCookie,
		result.Token,
		h.sessions.TTL(),
		h.cfg.SecureCookies(),
	))
	c.JSON(status, authResponse{
		Token:   result.Token,
		Profile: toProfile(result.Profile),
	})
}
