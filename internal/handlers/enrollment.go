package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cookiejar/creator/internal/middleware"
	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/service"
)

type applicationRequest struct {
	Bio              string `json:"bio"`
	YearsExperience  string `json:"yearsExperience"`
	PortfolioURL     string `json:"portfolioUrl"`
	Twitter          string `json:"twitter"`
	YouTube          string `json:"youtube"`
	Itchio           string `json:"itchio"`
	AgreedToTerms    bool   `json:"agreedToTerms"`
	AgreedToReview   bool   `json:"agreedToReview"`
	AgreedToOriginal bool   `json:"agreedToOriginal"`
}

// BeginEnrollment marks a signed-in non-creator as a creator in the user
// state so the enrollment form becomes reachable.
func (h HandlerSet) BeginEnrollment(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	profile, err := h.enrollment.Begin(c.Request.Context(), sess.Claims.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.sendProfileWithSession(c, profile)
}

// SubmitApplication moves the creator from user to pending. The session is
// re-issued on success so the next dashboard request sees the new status.
func (h HandlerSet) SubmitApplication(c *gin.Context) {
	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess := middleware.CurrentSession(c)
	profile, err := h.enrollment.Submit(c.Request.Context(), sess.Claims.UserID, service.ApplicationInput{
		Bio:              req.Bio,
		YearsExperience:  req.YearsExperience,
		PortfolioURL:     req.PortfolioURL,
		Twitter:          req.Twitter,
		YouTube:          req.YouTube,
		Itchio:           req.Itchio,
		AgreedToTerms:    req.AgreedToTerms,
		AgreedToReview:   req.AgreedToReview,
		AgreedToOriginal: req.AgreedToOriginal,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.sendProfileWithSession(c, profile)
}

// sendProfileWithSession answers with the stored profile and, when it can,
// a session carrying the same creator state. A failed re-issue leaves the
// old session in place; the next refresh picks up the change.
func (h HandlerSet) sendProfileWithSession(c *gin.Context, profile models.Profile) {
	sess := middleware.CurrentSession(c)
	result, err := h.auth.Refresh(c.Request.Context(), sess.Token)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", profile.ID).Msg("session re-issue failed")
		c.JSON(http.StatusOK, gin.H{"profile": toProfile(profile)})
		return
	}
	h.sendAuth(c, http.StatusOK, service.AuthResult{Token: result.Token, Claims: result.Claims, Profile: profile})
}
